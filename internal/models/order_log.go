package models

import (
	"time"
)

// OrderLog 订单状态变更记录（仅追加，不允许更新或删除）
type OrderLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`                        // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`              // 订单ID
	ChangedBy string    `gorm:"type:varchar(64);not null" json:"changed_by"` // 操作者
	OldStatus string    `gorm:"type:varchar(20);default:''" json:"old_status"` // 原状态（创建时为空）
	NewStatus string    `gorm:"type:varchar(20);not null" json:"new_status"` // 新状态
	Note      string    `gorm:"type:varchar(500);default:''" json:"note"`    // 备注
	CreatedAt time.Time `gorm:"index" json:"created_at"`                     // 创建时间
}

// TableName 指定表名
func (OrderLog) TableName() string {
	return "order_logs"
}
