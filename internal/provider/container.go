package provider

import (
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/cache"
	"github.com/cyberworld360/cyberworld-store/internal/config"
	"github.com/cyberworld360/cyberworld-store/internal/logger"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/payment/paystack"
	"github.com/cyberworld360/cyberworld-store/internal/queue"
	"github.com/cyberworld360/cyberworld-store/internal/repository"
	"github.com/cyberworld360/cyberworld-store/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo       repository.AdminRepository
	UserRepo        repository.UserRepository
	ProductRepo     repository.ProductRepository
	CouponRepo      repository.CouponRepository
	OrderRepo       repository.OrderRepository
	OrderLogRepo    repository.OrderLogRepository
	WalletRepo      repository.WalletRepository
	PendingRepo     repository.PendingPaymentRepository
	FailedEmailRepo repository.FailedEmailRepository

	// Services
	AuthService     *service.AuthService
	UserAuthService *service.UserAuthService
	EmailService    *service.EmailService
	ProductService  *service.ProductService
	CouponService   *service.CouponService
	WalletService   *service.WalletService
	CartService     *service.CartService
	OrderService    *service.OrderService
	CheckoutService *service.CheckoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.OrderLogRepo = repository.NewOrderLogRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
	c.PendingRepo = repository.NewPendingPaymentRepository(db)
	c.FailedEmailRepo = repository.NewFailedEmailRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.EmailService = service.NewEmailService(&c.Config.Email, c.Config.Checkout.Currency)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo)
	c.WalletService = service.NewWalletService(c.WalletRepo)
	c.CartService = service.NewCartService(c.ProductRepo, c.Config.Checkout.CartTTLMinutes)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.OrderLogRepo, c.QueueClient)

	var gateway service.PaymentGateway
	client, err := paystack.NewClient(&paystack.Config{
		SecretKey:   c.Config.Paystack.SecretKey,
		BaseURL:     c.Config.Paystack.BaseURL,
		CallbackURL: c.Config.Paystack.CallbackURL,
		Timeout:     time.Duration(c.Config.Paystack.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		// 网关未配置时结算网关路径不可用，钱包路径不受影响
		logger.Warnw("provider_init_paystack_failed", "error", err)
	} else {
		gateway = client
	}
	c.CheckoutService = service.NewCheckoutService(
		c.Config,
		c.ProductRepo,
		c.CouponRepo,
		c.OrderRepo,
		c.OrderLogRepo,
		c.PendingRepo,
		c.WalletService,
		c.CartService,
		gateway,
		c.QueueClient,
	)
}
