package repository

import (
	"github.com/cyberworld360/cyberworld-store/internal/models"

	"gorm.io/gorm"
)

// OrderLogRepository 订单变更记录数据访问接口（仅追加）
type OrderLogRepository interface {
	Create(log *models.OrderLog) error
	ListByOrderID(orderID uint) ([]models.OrderLog, error)
	WithTx(tx *gorm.DB) *GormOrderLogRepository
}

// GormOrderLogRepository GORM 实现
type GormOrderLogRepository struct {
	db *gorm.DB
}

// NewOrderLogRepository 创建订单变更记录仓库
func NewOrderLogRepository(db *gorm.DB) *GormOrderLogRepository {
	return &GormOrderLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderLogRepository) WithTx(tx *gorm.DB) *GormOrderLogRepository {
	if tx == nil {
		return r
	}
	return &GormOrderLogRepository{db: tx}
}

// Create 追加一条变更记录
func (r *GormOrderLogRepository) Create(log *models.OrderLog) error {
	return r.db.Create(log).Error
}

// ListByOrderID 按订单查询变更记录
func (r *GormOrderLogRepository) ListByOrderID(orderID uint) ([]models.OrderLog, error) {
	var logs []models.OrderLog
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
