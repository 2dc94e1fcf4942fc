package service

import (
	"context"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/config"
	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/logger"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/payment/paystack"
	"github.com/cyberworld360/cyberworld-store/internal/queue"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentGateway 支付网关抽象（initialize/verify 两个无状态调用）
type PaymentGateway interface {
	Initialize(ctx context.Context, input paystack.InitializeInput) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

// CheckoutService 结算服务：把购物车对账为恰好一条已入账订单。
// 钱包路径在单事务内完成借记与落库；网关路径经 initialize/callback
// 两个请求衔接，以 PendingPayment 为持久桥梁，回调按 Reference 幂等。
type CheckoutService struct {
	cfg          *config.Config
	productRepo  repository.ProductRepository
	couponRepo   repository.CouponRepository
	orderRepo    repository.OrderRepository
	orderLogRepo repository.OrderLogRepository
	pendingRepo  repository.PendingPaymentRepository
	walletSvc    *WalletService
	cartSvc      *CartService
	gateway      PaymentGateway
	queueClient  *queue.Client
}

// NewCheckoutService 创建结算服务实例
func NewCheckoutService(
	cfg *config.Config,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	orderRepo repository.OrderRepository,
	orderLogRepo repository.OrderLogRepository,
	pendingRepo repository.PendingPaymentRepository,
	walletSvc *WalletService,
	cartSvc *CartService,
	gateway PaymentGateway,
	queueClient *queue.Client,
) *CheckoutService {
	return &CheckoutService{
		cfg:          cfg,
		productRepo:  productRepo,
		couponRepo:   couponRepo,
		orderRepo:    orderRepo,
		orderLogRepo: orderLogRepo,
		pendingRepo:  pendingRepo,
		walletSvc:    walletSvc,
		cartSvc:      cartSvc,
		gateway:      gateway,
		queueClient:  queueClient,
	}
}

// CheckoutLine 结算购物车行
type CheckoutLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CheckoutInput 结算输入。CartToken 非空时结算成功后清空对应购物车。
type CheckoutInput struct {
	UserID    *uint
	Email     string
	Name      string
	Phone     string
	City      string
	Lines     []CheckoutLine
	CouponID  *uint
	CartToken string
}

// pricedCart 定价结果：单价一律以商品目录当前价为准，不信任调用方传入的价格。
type pricedCart struct {
	Items    []models.OrderItem
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Coupon   *models.Coupon
}

func (s *CheckoutService) priceCart(input CheckoutInput) (*pricedCart, error) {
	if len(input.Lines) == 0 {
		return nil, ErrCartEmpty
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, ErrQuantityInvalid
		}
		product, err := s.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, ErrProductUnavailable
		}
		lineSubtotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Title:     product.Title,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Subtotal:  models.NewMoneyFromDecimal(lineSubtotal),
		})
		subtotal = subtotal.Add(lineSubtotal)
	}
	subtotal = subtotal.Round(2)

	result := &pricedCart{
		Items:    items,
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Total:    subtotal,
	}

	// 优惠券校验失败中止整个结算，而不是静默忽略
	if input.CouponID != nil {
		coupon, err := s.couponRepo.GetByID(*input.CouponID)
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, ErrCouponInvalid
		}
		if err := ValidateCoupon(coupon, subtotal); err != nil {
			return nil, err
		}
		result.Coupon = coupon
		result.Discount = CouponDiscount(coupon, subtotal)
		result.Total = subtotal.Sub(result.Discount)
		if result.Total.LessThan(decimal.Zero) {
			result.Total = decimal.Zero
		}
	}
	return result, nil
}

// CheckoutWallet 钱包路径结算。余额不足返回 ErrInsufficientBalance，
// 调用方可引导客户改走网关路径重新进入结算。
func (s *CheckoutService) CheckoutWallet(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if input.UserID == nil || *input.UserID == 0 {
		return nil, ErrWalletNotFound
	}
	if input.Email == "" {
		return nil, ErrEmailRequired
	}

	cart, err := s.priceCart(input)
	if err != nil {
		return nil, err
	}

	// 先做余额预检，避免无谓开启事务；真正的余额裁决在事务内的行锁借记处
	wallet, err := s.walletSvc.GetWallet(*input.UserID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	if wallet.Balance.Decimal.LessThan(cart.Total) {
		return nil, ErrInsufficientBalance
	}

	reference := uuid.NewString()
	order := s.buildOrder(input, cart, reference, constants.PaymentMethodWallet, "")

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if cart.Total.GreaterThan(decimal.Zero) {
			if _, err := s.walletSvc.DebitInTx(tx, *input.UserID, cart.Total, "order:"+reference, "order payment"); err != nil {
				return err
			}
		}
		return s.persistOrder(tx, order, cart, input.Email, "Order created via wallet", true)
	})
	if err != nil {
		return nil, err
	}

	s.clearCartAfterCheckout(ctx, input.CartToken)
	s.notifyOrderConfirmed(order)
	return order, nil
}

// GatewayCheckoutResult 网关路径发起结果
type GatewayCheckoutResult struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

// BeginGatewayCheckout 网关路径发起：先定价再向网关 initialize，
// 成功后持久化待支付记录并返回授权跳转地址。此时尚无订单行。
func (s *CheckoutService) BeginGatewayCheckout(ctx context.Context, input CheckoutInput) (*GatewayCheckoutResult, error) {
	if s.gateway == nil {
		return nil, ErrPaymentInitFailed
	}
	if input.Email == "" {
		return nil, ErrEmailRequired
	}
	cart, err := s.priceCart(input)
	if err != nil {
		return nil, err
	}

	reference := uuid.NewString()
	metadata := paystack.Metadata{
		Name:     input.Name,
		Phone:    input.Phone,
		City:     input.City,
		Discount: models.NewMoneyFromDecimal(cart.Discount).String(),
		Cart:     buildMetadataCart(cart.Items),
	}
	if cart.Coupon != nil {
		metadata.CouponID = &cart.Coupon.ID
	}

	initResult, err := s.gateway.Initialize(ctx, paystack.InitializeInput{
		Reference:   reference,
		AmountMinor: models.NewMoneyFromDecimal(cart.Total).MinorUnits(),
		Email:       input.Email,
		Metadata:    metadata,
	})
	if err != nil {
		logger.Errorw("gateway_initialize_failed", "reference", reference, "error", err)
		return nil, ErrPaymentInitFailed
	}

	pending := &models.PendingPayment{
		Reference: reference,
		UserID:    input.UserID,
		CartToken: input.CartToken,
		Email:     input.Email,
		Name:      input.Name,
		Phone:     input.Phone,
		City:      input.City,
		Subtotal:  models.NewMoneyFromDecimal(cart.Subtotal),
		Discount:  models.NewMoneyFromDecimal(cart.Discount),
		Total:     models.NewMoneyFromDecimal(cart.Total),
		ExpiresAt: time.Now().Add(s.pendingTTL()),
	}
	if cart.Coupon != nil {
		pending.CouponID = &cart.Coupon.ID
	}
	if err := pending.SetCartLines(buildPendingCart(cart.Items)); err != nil {
		return nil, err
	}
	if err := s.pendingRepo.Create(pending); err != nil {
		return nil, err
	}

	logger.Infow("gateway_checkout_initialized",
		"reference", reference,
		"email", input.Email,
		"total", pending.Total.String(),
	)
	return &GatewayCheckoutResult{
		AuthorizationURL: initResult.AuthorizationURL,
		Reference:        reference,
	}, nil
}

func (s *CheckoutService) buildOrder(input CheckoutInput, cart *pricedCart, reference, method, paymentReference string) *models.Order {
	now := time.Now()
	order := &models.Order{
		Reference:        reference,
		UserID:           input.UserID,
		Email:            input.Email,
		Name:             input.Name,
		Phone:            input.Phone,
		City:             input.City,
		Subtotal:         models.NewMoneyFromDecimal(cart.Subtotal),
		Discount:         models.NewMoneyFromDecimal(cart.Discount),
		Total:            models.NewMoneyFromDecimal(cart.Total),
		Status:           constants.OrderStatusPending,
		PaymentMethod:    method,
		PaymentReference: paymentReference,
		Paid:             true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if cart.Coupon != nil {
		order.CouponID = &cart.Coupon.ID
	}
	return order
}

// persistOrder 在事务内落库订单、订单项与创建记录，并核销优惠券。
// 优惠券核销走受 max_uses 约束的原子自增。enforceCouponLimit 为真时
// 并发触顶回滚整个事务（钱包路径，尚未动到客户资金）；为假时只记录
// 超兑并照常落库（回调路径，客户已在网关完成扣款，订单不能丢）。
func (s *CheckoutService) persistOrder(tx *gorm.DB, order *models.Order, cart *pricedCart, actor, note string, enforceCouponLimit bool) error {
	orderRepo := s.orderRepo.WithTx(tx)
	if err := orderRepo.Create(order, cart.Items); err != nil {
		return err
	}
	order.Items = cart.Items

	logEntry := &models.OrderLog{
		OrderID:   order.ID,
		ChangedBy: actor,
		OldStatus: "",
		NewStatus: order.Status,
		Note:      note,
	}
	if err := s.orderLogRepo.WithTx(tx).Create(logEntry); err != nil {
		return err
	}

	if cart.Coupon != nil {
		ok, err := s.couponRepo.WithTx(tx).IncrementUsedCountWithLimit(cart.Coupon.ID)
		if err != nil {
			return err
		}
		if !ok {
			if enforceCouponLimit {
				return ErrCouponUsageLimit
			}
			logger.Warnw("coupon_budget_exhausted_on_settlement",
				"coupon_id", cart.Coupon.ID,
				"order_reference", order.Reference,
			)
		}
	}
	return nil
}

// clearCartAfterCheckout 结算入账后清空购物车。清理失败只记录日志，
// 购物车是临时状态，不值得影响已入账的订单。
func (s *CheckoutService) clearCartAfterCheckout(ctx context.Context, cartToken string) {
	if s.cartSvc == nil || cartToken == "" {
		return
	}
	if err := s.cartSvc.Clear(ctx, cartToken); err != nil {
		logger.Warnw("cart_clear_after_checkout_failed", "error", err)
	}
}

// notifyOrderConfirmed 通知下单成功。入队失败只记录日志，绝不影响结算结果。
func (s *CheckoutService) notifyOrderConfirmed(order *models.Order) {
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueOrderConfirmEmail(queue.OrderConfirmEmailPayload{OrderID: order.ID}); err != nil {
		logger.Warnw("order_confirm_email_enqueue_failed",
			"order_id", order.ID,
			"reference", order.Reference,
			"error", err,
		)
	}
}

func (s *CheckoutService) pendingTTL() time.Duration {
	minutes := 30
	if s.cfg != nil && s.cfg.Checkout.PendingTTLMinutes > 0 {
		minutes = s.cfg.Checkout.PendingTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func buildMetadataCart(items []models.OrderItem) []paystack.CartLine {
	lines := make([]paystack.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, paystack.CartLine{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		})
	}
	return lines
}

func buildPendingCart(items []models.OrderItem) []models.PendingCartLine {
	lines := make([]models.PendingCartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.PendingCartLine{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return lines
}
