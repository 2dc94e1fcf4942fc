package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                // 主键
	Title       string         `gorm:"not null" json:"title"`                               // 商品标题
	Description string         `gorm:"type:text" json:"description"`                        // 商品描述
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`  // 单价（非负）
	ImageURL    string         `gorm:"default:''" json:"image_url"`                         // 图片地址
	Stock       int            `gorm:"not null;default:0" json:"stock"`                     // 库存数量
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                 // 是否上架
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                   // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                          // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
