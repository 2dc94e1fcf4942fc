package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/config"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/provider"
	"github.com/cyberworld360/cyberworld-store/internal/queue"
	"github.com/cyberworld360/cyberworld-store/internal/repository"
	"github.com/cyberworld360/cyberworld-store/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.FailedEmail{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	c := &provider.Container{
		OrderRepo:       repository.NewOrderRepository(db),
		FailedEmailRepo: repository.NewFailedEmailRepository(db),
		// 未启用 SMTP 的邮件服务，发送路径会命中永久失败分支
		EmailService: service.NewEmailService(&config.EmailConfig{Enabled: false}, "GHS"),
	}
	return NewConsumer(c), db
}

func createWorkerTestOrder(t *testing.T, db *gorm.DB, reference, email string) *models.Order {
	t.Helper()
	order := &models.Order{
		Reference: reference,
		Email:     email,
		Total:     models.NewMoneyFromDecimal(decimal.NewFromInt(130)),
		Status:    "pending",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestHandleOrderConfirmEmailBadPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskOrderConfirmEmail, []byte("{not json"))
	if err := consumer.handleOrderConfirmEmail(context.Background(), task); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestHandleOrderConfirmEmailSkipPaths(t *testing.T) {
	consumer, db := setupConsumerTest(t)
	ctx := context.Background()

	// order_id 为零：无效载荷，直接丢弃
	task, err := queue.NewOrderConfirmEmailTask(queue.OrderConfirmEmailPayload{OrderID: 0})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderConfirmEmail(ctx, task); err != nil {
		t.Fatalf("zero order id should be skipped, got: %v", err)
	}

	// 订单不存在：不重试
	task, err = queue.NewOrderConfirmEmailTask(queue.OrderConfirmEmailPayload{OrderID: 9999})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderConfirmEmail(ctx, task); err != nil {
		t.Fatalf("missing order should be skipped, got: %v", err)
	}

	// 收件人为空：不重试
	order := createWorkerTestOrder(t, db, "WK-REF-1", "   ")
	task, err = queue.NewOrderConfirmEmailTask(queue.OrderConfirmEmailPayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderConfirmEmail(ctx, task); err != nil {
		t.Fatalf("empty receiver should be skipped, got: %v", err)
	}
}

func TestHandleOrderConfirmEmailPermanentFailureNotRetried(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	// 邮件服务被禁用属于配置类失败，任务应直接结束而不是进入重试
	order := createWorkerTestOrder(t, db, "WK-REF-2", "buyer@example.com")
	task, err := queue.NewOrderConfirmEmailTask(queue.OrderConfirmEmailPayload{OrderID: order.ID})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderConfirmEmail(context.Background(), task); err != nil {
		t.Fatalf("permanent failure should not be retried, got: %v", err)
	}

	var failedCount int64
	if err := db.Model(&models.FailedEmail{}).Count(&failedCount).Error; err != nil {
		t.Fatalf("count failed emails failed: %v", err)
	}
	if failedCount != 0 {
		t.Fatalf("permanent failure should not be recorded, got %d rows", failedCount)
	}
}

func TestHandleOrderStatusEmailSkipPaths(t *testing.T) {
	consumer, db := setupConsumerTest(t)
	ctx := context.Background()

	task, err := queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{OrderID: 0})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderStatusEmail(ctx, task); err != nil {
		t.Fatalf("zero order id should be skipped, got: %v", err)
	}

	order := createWorkerTestOrder(t, db, "WK-REF-3", "buyer@example.com")
	task, err = queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{
		OrderID:   order.ID,
		OldStatus: "pending",
		NewStatus: "completed",
	})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderStatusEmail(ctx, task); err != nil {
		t.Fatalf("permanent failure should not be retried, got: %v", err)
	}
}

func TestIsPermanentEmailError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{service.ErrEmailServiceDisabled, true},
		{service.ErrEmailServiceNotConfigured, true},
		{service.ErrInvalidEmail, true},
		{fmt.Errorf("send failed: %w", service.ErrEmailServiceDisabled), true},
		{errors.New("dial tcp: connection refused"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := isPermanentEmailError(tc.err); got != tc.want {
			t.Fatalf("isPermanentEmailError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
