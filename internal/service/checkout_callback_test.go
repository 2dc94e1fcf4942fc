package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/payment/paystack"

	"github.com/shopspring/decimal"
)

func beginGatewayCheckoutForTest(t *testing.T, svc *CheckoutService, productID uint, quantity int, couponID *uint) string {
	t.Helper()
	result, err := svc.BeginGatewayCheckout(context.Background(), CheckoutInput{
		Email:    "guest@example.com",
		Name:     "Guest",
		City:     "Accra",
		Lines:    []CheckoutLine{{ProductID: productID, Quantity: quantity}},
		CouponID: couponID,
	})
	if err != nil {
		t.Fatalf("begin gateway checkout failed: %v", err)
	}
	return result.Reference
}

func TestHandleGatewayCallbackCreatesOrder(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupCheckoutServiceTest(t, gateway)
	product := createCheckoutProduct(t, db, "Smart Watch", 65, true)

	reference := beginGatewayCheckoutForTest(t, svc, product.ID, 2, nil)
	gateway.verify = &paystack.VerifyResult{
		Success:       true,
		AmountMinor:   13000,
		Currency:      "GHS",
		CustomerEmail: "guest@example.com",
	}

	order, err := svc.HandleGatewayCallback(context.Background(), reference)
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending || !order.Paid {
		t.Fatalf("order should be pending and paid: %+v", order)
	}
	if order.PaymentMethod != constants.PaymentMethodPaystack {
		t.Fatalf("payment method want paystack, got %s", order.PaymentMethod)
	}
	if order.PaymentReference != reference {
		t.Fatalf("payment reference want %s, got %s", reference, order.PaymentReference)
	}
	if !order.Total.Decimal.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("total want 130, got %s", order.Total.String())
	}

	// 入账后待支付记录必须清除
	var pendingCount int64
	db.Model(&models.PendingPayment{}).Where("reference = ?", reference).Count(&pendingCount)
	if pendingCount != 0 {
		t.Fatalf("pending payment should be deleted after settlement")
	}
}

func TestHandleGatewayCallbackIdempotent(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupCheckoutServiceTest(t, gateway)
	product := createCheckoutProduct(t, db, "Smart Watch", 65, true)

	reference := beginGatewayCheckoutForTest(t, svc, product.ID, 1, nil)
	gateway.verify = &paystack.VerifyResult{
		Success:       true,
		AmountMinor:   6500,
		CustomerEmail: "guest@example.com",
	}

	first, err := svc.HandleGatewayCallback(context.Background(), reference)
	if err != nil {
		t.Fatalf("first callback failed: %v", err)
	}
	second, err := svc.HandleGatewayCallback(context.Background(), reference)
	if err != nil {
		t.Fatalf("replayed callback failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("replayed callback should return the same order: %d vs %d", first.ID, second.ID)
	}

	var orderCount int64
	db.Model(&models.Order{}).Where("reference = ?", reference).Count(&orderCount)
	if orderCount != 1 {
		t.Fatalf("exactly one order per reference, got %d", orderCount)
	}
}

func TestHandleGatewayCallbackAmountMismatch(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupCheckoutServiceTest(t, gateway)
	product := createCheckoutProduct(t, db, "Smart Watch", 65, true)

	reference := beginGatewayCheckoutForTest(t, svc, product.ID, 2, nil)
	// 网关实收 1.00，订单应收 130.00
	gateway.verify = &paystack.VerifyResult{
		Success:       true,
		AmountMinor:   100,
		CustomerEmail: "guest@example.com",
	}

	_, err := svc.HandleGatewayCallback(context.Background(), reference)
	if !errors.Is(err, ErrPaymentMismatch) {
		t.Fatalf("want ErrPaymentMismatch, got: %v", err)
	}

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("mismatched payment must not create an order, got %d", orderCount)
	}
}

func TestHandleGatewayCallbackGatewayUnreachable(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupCheckoutServiceTest(t, gateway)
	product := createCheckoutProduct(t, db, "Smart Watch", 65, true)

	reference := beginGatewayCheckoutForTest(t, svc, product.ID, 1, nil)
	gateway.verifyErr = fmt.Errorf("%w: connection refused", paystack.ErrRequestFailed)

	_, err := svc.HandleGatewayCallback(context.Background(), reference)
	if !errors.Is(err, ErrPaymentPending) {
		t.Fatalf("unreachable gateway want ErrPaymentPending, got: %v", err)
	}

	// 重试窗口内待支付记录保持原样
	var pendingCount int64
	db.Model(&models.PendingPayment{}).Where("reference = ?", reference).Count(&pendingCount)
	if pendingCount != 1 {
		t.Fatalf("pending payment should survive an unreachable gateway")
	}
}

func TestHandleGatewayCallbackCouponExhaustedStillPersists(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupCheckoutServiceTest(t, gateway)
	product := createCheckoutProduct(t, db, "Earphones", 130, true)

	coupon := fixedCoupon("SAVE13", 13, 100)
	coupon.MaxUses = 1
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	result, err := svc.BeginGatewayCheckout(context.Background(), CheckoutInput{
		Email:    "guest@example.com",
		Lines:    []CheckoutLine{{ProductID: product.ID, Quantity: 1}},
		CouponID: &coupon.ID,
	})
	if err != nil {
		t.Fatalf("begin gateway checkout failed: %v", err)
	}

	// 授权页停留期间另一笔结算用光了优惠券额度
	if err := db.Model(&models.Coupon{}).Where("id = ?", coupon.ID).
		Update("current_uses", coupon.MaxUses).Error; err != nil {
		t.Fatalf("exhaust coupon failed: %v", err)
	}

	gateway.verify = &paystack.VerifyResult{
		Success:       true,
		AmountMinor:   11700,
		CustomerEmail: "guest@example.com",
	}

	// 客户已被网关扣款，优惠券触顶不允许吞掉订单
	order, err := svc.HandleGatewayCallback(context.Background(), result.Reference)
	if err != nil {
		t.Fatalf("callback with exhausted coupon failed: %v", err)
	}
	if !order.Total.Decimal.Equal(decimal.NewFromInt(117)) {
		t.Fatalf("total want 117, got %s", order.Total.String())
	}
	if order.CouponID == nil || *order.CouponID != coupon.ID {
		t.Fatalf("order should keep its coupon association: %+v", order.CouponID)
	}

	// 额度不超兑：触顶后不再自增
	var stored models.Coupon
	if err := db.First(&stored, coupon.ID).Error; err != nil {
		t.Fatalf("load coupon failed: %v", err)
	}
	if stored.CurrentUses != coupon.MaxUses {
		t.Fatalf("current_uses must stay %d, got %d", coupon.MaxUses, stored.CurrentUses)
	}

	// 重放回调返回同一订单
	replayed, err := svc.HandleGatewayCallback(context.Background(), result.Reference)
	if err != nil {
		t.Fatalf("replayed callback failed: %v", err)
	}
	if replayed.ID != order.ID {
		t.Fatalf("replay should return the same order: %d vs %d", order.ID, replayed.ID)
	}
}

func TestHandleGatewayCallbackGatewayRejected(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupCheckoutServiceTest(t, gateway)
	product := createCheckoutProduct(t, db, "Smart Watch", 65, true)

	reference := beginGatewayCheckoutForTest(t, svc, product.ID, 1, nil)
	// 网关明确拒绝（4xx/5xx）不是"尚未确认"，不应引导重查
	gateway.verifyErr = fmt.Errorf("%w: status 404", paystack.ErrGatewayRejected)

	_, err := svc.HandleGatewayCallback(context.Background(), reference)
	if !errors.Is(err, ErrPaymentVerifyFailed) {
		t.Fatalf("rejected verify want ErrPaymentVerifyFailed, got: %v", err)
	}

	var orderCount int64
	db.Model(&models.Order{}).Count(&orderCount)
	if orderCount != 0 {
		t.Fatalf("rejected verify must not create an order, got %d", orderCount)
	}
}

func TestHandleGatewayCallbackClearsCart(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupCheckoutServiceTest(t, gateway)
	product := createCheckoutProduct(t, db, "Smart Watch", 65, true)
	ctx := context.Background()

	token := svc.cartSvc.NewToken()
	if err := svc.cartSvc.SetItem(ctx, token, product.ID, 2); err != nil {
		t.Fatalf("set cart item failed: %v", err)
	}
	lines, err := svc.cartSvc.Lines(ctx, token)
	if err != nil {
		t.Fatalf("load cart lines failed: %v", err)
	}

	result, err := svc.BeginGatewayCheckout(ctx, CheckoutInput{
		Email:     "guest@example.com",
		Lines:     lines,
		CartToken: token,
	})
	if err != nil {
		t.Fatalf("begin gateway checkout failed: %v", err)
	}

	// 发起阶段购物车保持原样，客户可能中途放弃支付
	view, err := svc.cartSvc.View(ctx, token)
	if err != nil {
		t.Fatalf("view cart failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("cart must survive initialize, got %d items", len(view.Items))
	}

	gateway.verify = &paystack.VerifyResult{
		Success:       true,
		AmountMinor:   13000,
		CustomerEmail: "guest@example.com",
	}
	if _, err := svc.HandleGatewayCallback(ctx, result.Reference); err != nil {
		t.Fatalf("callback failed: %v", err)
	}

	view, err = svc.cartSvc.View(ctx, token)
	if err != nil {
		t.Fatalf("view cart after callback failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("cart should be cleared after settlement, got %d items", len(view.Items))
	}
}

func TestHandleGatewayCallbackVerifyNotSuccessful(t *testing.T) {
	gateway := &fakeGateway{}
	svc, _ := setupCheckoutServiceTest(t, gateway)
	product := createCheckoutProduct(t, models.DB, "Smart Watch", 65, true)

	reference := beginGatewayCheckoutForTest(t, svc, product.ID, 1, nil)
	gateway.verify = &paystack.VerifyResult{Success: false}

	_, err := svc.HandleGatewayCallback(context.Background(), reference)
	if !errors.Is(err, ErrPaymentVerifyFailed) {
		t.Fatalf("failed verify want ErrPaymentVerifyFailed, got: %v", err)
	}
}

func TestHandleGatewayCallbackRebuildsFromVerifyMetadata(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupCheckoutServiceTest(t, gateway)
	product := createCheckoutProduct(t, db, "Smart Watch", 65, true)

	reference := beginGatewayCheckoutForTest(t, svc, product.ID, 2, nil)

	// 模拟待支付记录先被清理掉的迟到回调
	if _, err := svc.pendingRepo.DeleteExpired(time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	gateway.verify = &paystack.VerifyResult{
		Success:       true,
		AmountMinor:   13000,
		CustomerEmail: "guest@example.com",
		Metadata: paystack.Metadata{
			Name: "Guest",
			City: "Accra",
			Cart: []paystack.CartLine{
				{ProductID: product.ID, Title: "Smart Watch", Quantity: 2, UnitPrice: "65"},
			},
		},
	}

	order, err := svc.HandleGatewayCallback(context.Background(), reference)
	if err != nil {
		t.Fatalf("callback with rebuilt snapshot failed: %v", err)
	}
	if !order.Total.Decimal.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("rebuilt total want 130, got %s", order.Total.String())
	}
	if order.Email != "guest@example.com" {
		t.Fatalf("rebuilt email mismatch: %s", order.Email)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("rebuilt items mismatch: %+v", order.Items)
	}
}

func TestHandleGatewayCallbackUnrecoverable(t *testing.T) {
	gateway := &fakeGateway{}
	svc, _ := setupCheckoutServiceTest(t, gateway)

	// 没有待支付记录，verify 里也没有可重建的快照
	gateway.verify = &paystack.VerifyResult{
		Success:     true,
		AmountMinor: 1000,
	}
	_, err := svc.HandleGatewayCallback(context.Background(), "ref-without-snapshot")
	if !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("want ErrPendingNotFound, got: %v", err)
	}
}

func TestHandleGatewayCallbackEmptyReference(t *testing.T) {
	gateway := &fakeGateway{}
	svc, _ := setupCheckoutServiceTest(t, gateway)

	if _, err := svc.HandleGatewayCallback(context.Background(), "   "); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("blank reference want ErrOrderNotFound, got: %v", err)
	}
}

func TestSweepExpiredPending(t *testing.T) {
	gateway := &fakeGateway{}
	svc, db := setupCheckoutServiceTest(t, gateway)

	expired := &models.PendingPayment{
		Reference: "expired-ref",
		Email:     "guest@example.com",
		Subtotal:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Total:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	live := &models.PendingPayment{
		Reference: "live-ref",
		Email:     "guest@example.com",
		Subtotal:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Total:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("create expired pending failed: %v", err)
	}
	if err := db.Create(live).Error; err != nil {
		t.Fatalf("create live pending failed: %v", err)
	}

	removed, err := svc.SweepExpiredPending()
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("sweep should remove exactly the expired row, got %d", removed)
	}

	var remaining int64
	db.Model(&models.PendingPayment{}).Count(&remaining)
	if remaining != 1 {
		t.Fatalf("live pending should survive, remaining %d", remaining)
	}
}
