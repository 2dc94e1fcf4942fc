package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/logger"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/provider"
	"github.com/cyberworld360/cyberworld-store/internal/queue"
	"github.com/cyberworld360/cyberworld-store/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmEmail, c.handleOrderConfirmEmail)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
}

func (c *Consumer) handleOrderConfirmEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_confirm_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderConfirmEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirm_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_confirm_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_confirm_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_confirm_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_order_confirm_email_skip_email_service_nil", "order_id", order.ID)
		return nil
	}
	if strings.TrimSpace(order.Email) == "" {
		logger.Debugw("worker_order_confirm_email_skip_empty_receiver", "order_id", order.ID)
		return nil
	}

	if err := c.EmailService.SendOrderConfirmedEmail(order, constants.LocaleEnUS); err != nil {
		if isPermanentEmailError(err) {
			logger.Debugw("worker_order_confirm_email_skip_permanent", "order_id", order.ID, "error", err)
			return nil
		}
		logger.Warnw("worker_order_confirm_email_send_failed",
			"order_id", order.ID,
			"reference", order.Reference,
			"error", err,
		)
		c.recordFailureIfExhausted(ctx, queue.TaskOrderConfirmEmail, order, err)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderStatusEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_status_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_order_status_email_skip_email_service_nil", "order_id", order.ID)
		return nil
	}
	if strings.TrimSpace(order.Email) == "" {
		logger.Debugw("worker_order_status_email_skip_empty_receiver", "order_id", order.ID)
		return nil
	}

	status := strings.TrimSpace(payload.NewStatus)
	if status == "" {
		status = order.Status
	}
	if err := c.EmailService.SendOrderStatusEmail(order, status, constants.LocaleEnUS); err != nil {
		if isPermanentEmailError(err) {
			logger.Debugw("worker_order_status_email_skip_permanent", "order_id", order.ID, "error", err)
			return nil
		}
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"reference", order.Reference,
			"status", status,
			"error", err,
		)
		c.recordFailureIfExhausted(ctx, queue.TaskOrderStatusEmail, order, err)
		return err
	}
	return nil
}

// recordFailureIfExhausted 重试耗尽时把失败邮件落入死信表，留待人工处理
func (c *Consumer) recordFailureIfExhausted(ctx context.Context, taskType string, order *models.Order, sendErr error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	if retried < maxRetry {
		return
	}
	if c.FailedEmailRepo == nil {
		return
	}
	failed := &models.FailedEmail{
		TaskType:  taskType,
		OrderID:   order.ID,
		Recipient: order.Email,
		LastError: sendErr.Error(),
		Attempts:  retried + 1,
	}
	if err := c.FailedEmailRepo.Create(failed); err != nil {
		logger.Errorw("worker_failed_email_record_failed", "order_id", order.ID, "error", err)
		return
	}
	logger.Warnw("worker_failed_email_recorded", "order_id", order.ID, "task_type", taskType)
}

// isPermanentEmailError 配置类失败重试无意义，直接放弃
func isPermanentEmailError(err error) bool {
	return errors.Is(err, service.ErrEmailServiceDisabled) ||
		errors.Is(err, service.ErrEmailServiceNotConfigured) ||
		errors.Is(err, service.ErrInvalidEmail)
}
