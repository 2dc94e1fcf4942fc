package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                  // 主键
	Reference        string         `gorm:"uniqueIndex;not null" json:"reference"`                 // 结算引用（幂等键，UUID）
	UserID           *uint          `gorm:"index" json:"user_id,omitempty"`                        // 用户ID（游客网关订单为 nil）
	Email            string         `gorm:"index;not null" json:"email"`                           // 收货邮箱
	Name             string         `gorm:"default:''" json:"name"`                                // 收货姓名
	Phone            string         `gorm:"type:varchar(32);default:''" json:"phone"`              // 收货电话
	City             string         `gorm:"type:varchar(64);default:''" json:"city"`               // 收货城市
	Subtotal         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"` // 商品小计
	Discount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount"` // 优惠金额
	Total            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total"`    // 实付金额
	CouponID         *uint          `gorm:"index" json:"coupon_id,omitempty"`                      // 优惠券ID
	Status           string         `gorm:"index;not null" json:"status"`                          // 订单状态（pending/completed/cancelled）
	PaymentMethod    string         `gorm:"type:varchar(20);not null" json:"payment_method"`       // 支付方式（wallet/paystack）
	PaymentReference string         `gorm:"index;default:''" json:"payment_reference"`             // 网关交易引用
	Paid             bool           `gorm:"not null;default:false;index" json:"paid"`              // 是否已支付
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                               // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	Logs  []OrderLog  `gorm:"foreignKey:OrderID" json:"logs,omitempty"`  // 状态变更记录
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
