package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// 支付方式常量
const (
	PaymentMethodWallet   = "wallet"
	PaymentMethodPaystack = "paystack"
)

// 优惠券类型常量
const (
	CouponTypeFixed   = "fixed"
	CouponTypePercent = "percent"
)

// 钱包交易类型常量
const (
	WalletTxnTypeDebit  = "debit"
	WalletTxnTypeCredit = "credit"
)

// 用户角色常量
const (
	RoleGuest    = "guest"
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskOrderConfirmEmail = "order:confirm_email"
	TaskOrderStatusEmail  = "order:status_email"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "cws"
)

// 币种常量
const (
	SiteCurrencyDefault = "GHS"
)

// 站点语言常量
const (
	LocaleEnUS = "en-US"
	LocaleFrFR = "fr-FR"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleEnUS, LocaleFrFR}
