package service

import "errors"

// 校验类错误（无副作用，直接返回给调用方）
var (
	ErrCartEmpty            = errors.New("cart is empty")
	ErrQuantityInvalid      = errors.New("quantity must be at least 1")
	ErrProductUnavailable   = errors.New("product is unavailable")
	ErrProductTitleRequired = errors.New("product title is required")
	ErrAmountInvalid        = errors.New("amount must be positive")
	ErrEmailRequired        = errors.New("email is required")
)

// 优惠券错误
var (
	ErrCouponInvalid    = errors.New("coupon is invalid")
	ErrCouponInactive   = errors.New("coupon is not active")
	ErrCouponExpired    = errors.New("coupon has expired")
	ErrCouponUsageLimit = errors.New("coupon usage limit reached")
	ErrCouponMinAmount  = errors.New("order total below coupon minimum")
)

// 钱包错误
var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrWalletTxnDuplicated = errors.New("wallet transaction reference already used")
)

// 订单错误
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderStatusInvalid = errors.New("invalid order status transition")
)

// 支付网关错误
var (
	ErrPaymentInitFailed   = errors.New("payment initialize failed")
	ErrPaymentVerifyFailed = errors.New("payment verify failed")
	ErrPaymentPending      = errors.New("payment not yet confirmed")
	ErrPaymentMismatch     = errors.New("payment amount mismatch")
	ErrPendingNotFound     = errors.New("pending payment not found")
)

// 认证错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooShort   = errors.New("password too short")
)

// 邮件错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
)
