package repository

import (
	"errors"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/models"

	"gorm.io/gorm"
)

// PendingPaymentRepository 待支付记录数据访问接口
type PendingPaymentRepository interface {
	Create(pending *models.PendingPayment) error
	GetByReference(reference string) (*models.PendingPayment, error)
	DeleteByReference(reference string) error
	DeleteExpired(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormPendingPaymentRepository
}

// GormPendingPaymentRepository GORM 实现
type GormPendingPaymentRepository struct {
	db *gorm.DB
}

// NewPendingPaymentRepository 创建待支付记录仓库
func NewPendingPaymentRepository(db *gorm.DB) *GormPendingPaymentRepository {
	return &GormPendingPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPendingPaymentRepository) WithTx(tx *gorm.DB) *GormPendingPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPendingPaymentRepository{db: tx}
}

// Create 写入待支付记录
func (r *GormPendingPaymentRepository) Create(pending *models.PendingPayment) error {
	return r.db.Create(pending).Error
}

// GetByReference 按结算引用获取待支付记录
func (r *GormPendingPaymentRepository) GetByReference(reference string) (*models.PendingPayment, error) {
	if reference == "" {
		return nil, nil
	}
	var pending models.PendingPayment
	if err := r.db.Where("reference = ?", reference).First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pending, nil
}

// DeleteByReference 按结算引用删除待支付记录
func (r *GormPendingPaymentRepository) DeleteByReference(reference string) error {
	if reference == "" {
		return nil
	}
	return r.db.Where("reference = ?", reference).Delete(&models.PendingPayment{}).Error
}

// DeleteExpired 清理已过期的待支付记录，返回清理行数
func (r *GormPendingPaymentRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&models.PendingPayment{})
	return result.RowsAffected, result.Error
}
