package repository

import (
	"github.com/cyberworld360/cyberworld-store/internal/models"

	"gorm.io/gorm"
)

// FailedEmailRepository 通知死信数据访问接口
type FailedEmailRepository interface {
	Create(failed *models.FailedEmail) error
	List(filter FailedEmailListFilter) ([]models.FailedEmail, int64, error)
	Delete(id uint) error
}

// GormFailedEmailRepository GORM 实现
type GormFailedEmailRepository struct {
	db *gorm.DB
}

// NewFailedEmailRepository 创建通知死信仓库
func NewFailedEmailRepository(db *gorm.DB) *GormFailedEmailRepository {
	return &GormFailedEmailRepository{db: db}
}

// Create 写入死信
func (r *GormFailedEmailRepository) Create(failed *models.FailedEmail) error {
	return r.db.Create(failed).Error
}

// List 分页查询死信
func (r *GormFailedEmailRepository) List(filter FailedEmailListFilter) ([]models.FailedEmail, int64, error) {
	query := r.db.Model(&models.FailedEmail{})
	if filter.TaskType != "" {
		query = query.Where("task_type = ?", filter.TaskType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var failed []models.FailedEmail
	if err := query.Order("id desc").Find(&failed).Error; err != nil {
		return nil, 0, err
	}
	return failed, total, nil
}

// Delete 删除死信
func (r *GormFailedEmailRepository) Delete(id uint) error {
	return r.db.Delete(&models.FailedEmail{}, id).Error
}
