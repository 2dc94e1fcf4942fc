package models

import (
	"encoding/json"
	"time"
)

// PendingCartLine 待支付购物车快照行
type PendingCartLine struct {
	ProductID uint   `json:"product_id"` // 商品ID
	Title     string `json:"title"`      // 标题快照
	Quantity  int    `json:"quantity"`   // 数量
	UnitPrice Money  `json:"unit_price"` // 单价快照
}

// PendingPayment 待支付记录，衔接网关发起与回调两个请求
type PendingPayment struct {
	ID        uint       `gorm:"primarykey" json:"id"`                                  // 主键
	Reference string     `gorm:"uniqueIndex;not null" json:"reference"`                 // 结算引用（与网关交易引用一致）
	UserID    *uint      `gorm:"index" json:"user_id,omitempty"`                        // 用户ID（游客为 nil）
	Email     string     `gorm:"not null" json:"email"`                                 // 客户邮箱
	Name      string     `gorm:"default:''" json:"name"`                                // 姓名
	Phone     string     `gorm:"type:varchar(32);default:''" json:"phone"`              // 电话
	City      string     `gorm:"type:varchar(64);default:''" json:"city"`               // 城市
	Subtotal  Money      `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"` // 小计
	Discount  Money      `gorm:"type:decimal(20,2);not null;default:0" json:"discount"` // 优惠金额
	Total     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total"`    // 实付金额
	CartJSON  string     `gorm:"type:text;not null" json:"-"`                           // 购物车快照（JSON）
	CartToken string     `gorm:"type:varchar(64);default:''" json:"-"`                  // 购物车会话令牌（回调后清空购物车用）
	CouponID  *uint      `gorm:"index" json:"coupon_id,omitempty"`                      // 优惠券ID
	ExpiresAt time.Time  `gorm:"index;not null" json:"expires_at"`                      // 过期时间
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt time.Time  `json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (PendingPayment) TableName() string {
	return "pending_payments"
}

// CartLines 解析购物车快照
func (p *PendingPayment) CartLines() ([]PendingCartLine, error) {
	if p.CartJSON == "" {
		return nil, nil
	}
	var lines []PendingCartLine
	if err := json.Unmarshal([]byte(p.CartJSON), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// SetCartLines 序列化购物车快照
func (p *PendingPayment) SetCartLines(lines []PendingCartLine) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	p.CartJSON = string(raw)
	return nil
}
