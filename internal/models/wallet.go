package models

import (
	"time"
)

// Wallet 钱包账户（每个用户一条，余额不允许为负）
type Wallet struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                 // 主键
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`                  // 用户ID
	Balance   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // 余额
	CreatedAt time.Time `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                              // 更新时间
}

// TableName 指定表名
func (Wallet) TableName() string {
	return "wallets"
}

// WalletTransaction 钱包流水（按 Reference 幂等）
type WalletTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                        // 主键
	WalletID      uint      `gorm:"index;not null" json:"wallet_id"`                             // 钱包ID
	Type          string    `gorm:"type:varchar(20);not null" json:"type"`                       // 类型（debit/credit）
	Amount        Money     `gorm:"type:decimal(20,2);not null" json:"amount"`                   // 金额
	BalanceBefore Money     `gorm:"type:decimal(20,2);not null" json:"balance_before"`           // 变动前余额
	BalanceAfter  Money     `gorm:"type:decimal(20,2);not null" json:"balance_after"`            // 变动后余额
	Reference     string    `gorm:"uniqueIndex;not null" json:"reference"`                       // 业务引用（幂等键）
	Note          string    `gorm:"type:varchar(255);default:''" json:"note"`                    // 备注
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                     // 创建时间
}

// TableName 指定表名
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
