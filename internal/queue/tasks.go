package queue

import (
	"encoding/json"

	"github.com/cyberworld360/cyberworld-store/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmEmail 下单成功邮件通知任务
	TaskOrderConfirmEmail = constants.TaskOrderConfirmEmail
	// TaskOrderStatusEmail 订单状态变更邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
)

// OrderConfirmEmailPayload 下单成功邮件任务载荷
type OrderConfirmEmailPayload struct {
	OrderID uint `json:"order_id"`
}

// OrderStatusEmailPayload 订单状态变更邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID   uint   `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// NewOrderConfirmEmailTask 创建下单成功邮件任务
func NewOrderConfirmEmailTask(payload OrderConfirmEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirmEmail, body), nil
}

// NewOrderStatusEmailTask 创建订单状态变更邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEmail, body), nil
}
