package models

import (
	"time"
)

// FailedEmail 通知死信表（重试耗尽的邮件任务落库待人工处理）
type FailedEmail struct {
	ID        uint      `gorm:"primarykey" json:"id"`                       // 主键
	TaskType  string    `gorm:"type:varchar(64);not null" json:"task_type"` // 任务类型
	OrderID   uint      `gorm:"index" json:"order_id"`                      // 关联订单ID
	Recipient string    `gorm:"not null" json:"recipient"`                  // 收件人
	Subject   string    `gorm:"not null" json:"subject"`                    // 主题
	Body      string    `gorm:"type:text" json:"body"`                      // 正文
	LastError string    `gorm:"type:text" json:"last_error"`                // 最后一次错误
	Attempts  int       `gorm:"not null;default:0" json:"attempts"`         // 已尝试次数
	CreatedAt time.Time `gorm:"index" json:"created_at"`                    // 创建时间
}

// TableName 指定表名
func (FailedEmail) TableName() string {
	return "failed_emails"
}
