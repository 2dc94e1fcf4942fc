package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/logger"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/payment/paystack"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HandleGatewayCallback 网关回调对账。以 Reference 为幂等键：
// 订单已存在时直接返回既有订单，否则向网关 verify 后落库。
// 回调可能乱序、重放或在待支付记录过期后才到达，这里都要给出确定结果。
func (s *CheckoutService) HandleGatewayCallback(ctx context.Context, reference string) (*models.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrOrderNotFound
	}
	if s.gateway == nil {
		return nil, ErrPaymentVerifyFailed
	}

	// 重放回调：同一引用的订单只会有一条
	if existing, err := s.orderRepo.GetByReference(reference); err != nil {
		return nil, err
	} else if existing != nil {
		logger.Infow("gateway_callback_replayed", "reference", reference, "order_id", existing.ID)
		return existing, nil
	}

	verify, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		// 网关不可达不代表支付失败，交由客户或清理任务稍后重试；
		// 网关明确拒绝（4xx/5xx）则是确定性的核验失败
		if errors.Is(err, paystack.ErrRequestFailed) {
			logger.Warnw("gateway_verify_unreachable", "reference", reference, "error", err)
			return nil, ErrPaymentPending
		}
		logger.Warnw("gateway_verify_rejected", "reference", reference, "error", err)
		return nil, ErrPaymentVerifyFailed
	}
	if !verify.Success {
		logger.Infow("gateway_verify_not_successful", "reference", reference)
		return nil, ErrPaymentVerifyFailed
	}

	pending, err := s.pendingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		// 待支付记录可能已被清理（回调迟到），退化为从网关核验结果重建
		pending = s.rebuildPendingFromVerify(reference, verify)
		if pending == nil {
			logger.Errorw("gateway_callback_unrecoverable", "reference", reference)
			return nil, ErrPendingNotFound
		}
		logger.Warnw("gateway_callback_rebuilt_from_verify", "reference", reference)
	}

	// 金额以最小货币单位逐分核对，防止授权页被篡改后少付
	if verify.AmountMinor != pending.Total.MinorUnits() {
		logger.Errorw("gateway_amount_mismatch",
			"reference", reference,
			"expected_minor", pending.Total.MinorUnits(),
			"actual_minor", verify.AmountMinor,
		)
		return nil, ErrPaymentMismatch
	}

	order, err := s.persistGatewayOrder(pending, reference)
	if err != nil {
		return nil, err
	}

	s.clearCartAfterCheckout(ctx, pending.CartToken)
	s.notifyOrderConfirmed(order)
	return order, nil
}

// persistGatewayOrder 落库网关订单。并发回调撞到唯一索引时
// 回 fetch 既有订单，保证两个并发回调得到同一结果。
func (s *CheckoutService) persistGatewayOrder(pending *models.PendingPayment, reference string) (*models.Order, error) {
	lines, err := pending.CartLines()
	if err != nil {
		return nil, err
	}
	cart, err := s.cartFromPending(pending, lines)
	if err != nil {
		return nil, err
	}

	input := CheckoutInput{
		UserID: pending.UserID,
		Email:  pending.Email,
		Name:   pending.Name,
		Phone:  pending.Phone,
		City:   pending.City,
	}
	order := s.buildOrder(input, cart, reference, constants.PaymentMethodPaystack, reference)

	// 客户已在网关完成扣款，优惠券核销触顶不允许毁掉这笔订单
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.persistOrder(tx, order, cart, pending.Email, "Order created via gateway callback", false); err != nil {
			return err
		}
		return s.pendingRepo.WithTx(tx).DeleteByReference(reference)
	})
	if err != nil {
		// 并发回调竞争：另一个请求先行落库，返回它的结果
		if existing, fetchErr := s.orderRepo.GetByReference(reference); fetchErr == nil && existing != nil {
			logger.Infow("gateway_callback_lost_race", "reference", reference, "order_id", existing.ID)
			return existing, nil
		}
		return nil, err
	}
	return order, nil
}

// cartFromPending 从待支付快照还原定价结果。金额直接取快照值，
// 不重新定价：客户支付的是发起时刻的价格。
func (s *CheckoutService) cartFromPending(pending *models.PendingPayment, lines []models.PendingCartLine) (*pricedCart, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		lineSubtotal := line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  models.NewMoneyFromDecimal(lineSubtotal),
		})
	}

	cart := &pricedCart{
		Items:    items,
		Subtotal: pending.Subtotal.Decimal,
		Discount: pending.Discount.Decimal,
		Total:    pending.Total.Decimal,
	}
	if pending.CouponID != nil {
		coupon, err := s.couponRepo.GetByID(*pending.CouponID)
		if err != nil {
			return nil, err
		}
		// 优惠券在发起后被删除时照常入账，折扣已在发起时锁定
		cart.Coupon = coupon
	}
	return cart, nil
}

// rebuildPendingFromVerify 从网关核验结果重建待支付记录（不落库）。
// 只有发起时随 metadata 送出的快照完整时才可恢复。
func (s *CheckoutService) rebuildPendingFromVerify(reference string, verify *paystack.VerifyResult) *models.PendingPayment {
	if len(verify.Metadata.Cart) == 0 || verify.CustomerEmail == "" {
		return nil
	}

	lines := make([]models.PendingCartLine, 0, len(verify.Metadata.Cart))
	subtotal := decimal.Zero
	for _, raw := range verify.Metadata.Cart {
		unitPrice, err := models.NewMoneyFromString(raw.UnitPrice)
		if err != nil {
			return nil
		}
		if raw.Quantity < 1 {
			return nil
		}
		lines = append(lines, models.PendingCartLine{
			ProductID: raw.ProductID,
			Title:     raw.Title,
			Quantity:  raw.Quantity,
			UnitPrice: unitPrice,
		})
		subtotal = subtotal.Add(unitPrice.Decimal.Mul(decimal.NewFromInt(int64(raw.Quantity)))).Round(2)
	}

	discount := decimal.Zero
	if verify.Metadata.Discount != "" {
		parsed, err := decimal.NewFromString(verify.Metadata.Discount)
		if err != nil {
			return nil
		}
		discount = parsed.Round(2)
	}
	total := subtotal.Sub(discount)
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}

	pending := &models.PendingPayment{
		Reference: reference,
		Email:     verify.CustomerEmail,
		Name:      verify.Metadata.Name,
		Phone:     verify.Metadata.Phone,
		City:      verify.Metadata.City,
		Subtotal:  models.NewMoneyFromDecimal(subtotal),
		Discount:  models.NewMoneyFromDecimal(discount),
		Total:     models.NewMoneyFromDecimal(total),
		CouponID:  verify.Metadata.CouponID,
		ExpiresAt: time.Now(),
	}
	if err := pending.SetCartLines(lines); err != nil {
		return nil
	}
	return pending
}

// SweepExpiredPending 清理过期待支付记录，由 worker 周期调用
func (s *CheckoutService) SweepExpiredPending() (int64, error) {
	removed, err := s.pendingRepo.DeleteExpired(time.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logger.Infow("pending_payments_swept", "removed", removed)
	}
	return removed, nil
}
