package service

import (
	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/logger"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/queue"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"gorm.io/gorm"
)

// allowedTransitions 订单状态机：pending 可终结为 completed 或 cancelled，
// 终态不再流转。
var allowedTransitions = map[string][]string{
	constants.OrderStatusPending: {constants.OrderStatusCompleted, constants.OrderStatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderService 订单查询与状态管理服务
type OrderService struct {
	orderRepo    repository.OrderRepository
	orderLogRepo repository.OrderLogRepository
	queueClient  *queue.Client
}

// NewOrderService 创建订单服务实例
func NewOrderService(orderRepo repository.OrderRepository, orderLogRepo repository.OrderLogRepository, queueClient *queue.Client) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		orderLogRepo: orderLogRepo,
		queueClient:  queueClient,
	}
}

// GetOrder 获取订单详情（含订单项与状态记录）
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderForUser 获取用户自己的订单，归属不符按不存在处理
func (s *OrderService) GetOrderForUser(id, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByReference 按结算引用获取订单
func (s *OrderService) GetOrderByReference(reference string) (*models.Order, error) {
	order, err := s.orderRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListUserOrders 用户订单列表
func (s *OrderService) ListUserOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// ListAdminOrders 管理端订单列表
func (s *OrderService) ListAdminOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// UpdateStatus 管理端变更订单状态。状态机之外的流转拒绝，
// 变更与状态记录同事务写入，成功后异步通知客户。
func (s *OrderService) UpdateStatus(id uint, newStatus, changedBy, note string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	oldStatus := order.Status
	if !transitionAllowed(oldStatus, newStatus) {
		return nil, ErrOrderStatusInvalid
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).UpdateStatus(order.ID, newStatus); err != nil {
			return err
		}
		return s.orderLogRepo.WithTx(tx).Create(&models.OrderLog{
			OrderID:   order.ID,
			ChangedBy: changedBy,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Note:      note,
		})
	})
	if err != nil {
		return nil, err
	}
	order.Status = newStatus

	logger.Infow("order_status_changed",
		"order_id", order.ID,
		"old_status", oldStatus,
		"new_status", newStatus,
		"changed_by", changedBy,
	)

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
			OrderID:   order.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
		}); err != nil {
			logger.Warnw("order_status_email_enqueue_failed", "order_id", order.ID, "error", err)
		}
	}
	return order, nil
}

// ListOrderLogs 订单状态记录
func (s *OrderService) ListOrderLogs(orderID uint) ([]models.OrderLog, error) {
	return s.orderLogRepo.ListByOrderID(orderID)
}
