package router

import (
	"fmt"
	"strings"

	"github.com/cyberworld360/cyberworld-store/internal/cache"
	"github.com/cyberworld360/cyberworld-store/internal/config"
	"github.com/cyberworld360/cyberworld-store/internal/constants"
	adminhandlers "github.com/cyberworld360/cyberworld-store/internal/http/handlers/admin"
	publichandlers "github.com/cyberworld360/cyberworld-store/internal/http/handlers/public"
	"github.com/cyberworld360/cyberworld-store/internal/logger"
	"github.com/cyberworld360/cyberworld-store/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 装配所有路由与中间件
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	userSecret := cfg.UserJWT.SecretKey
	if userSecret == "" {
		userSecret = cfg.JWT.SecretKey
	}

	api := r.Group("/api/v1")
	{
		// 商品目录与优惠券预检，无需登录
		public := api.Group("/public")
		{
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/coupons/validate", publicHandler.ValidateCoupon)

			public.POST("/cart/session", publicHandler.NewCartSession)
			public.GET("/cart", publicHandler.GetCart)
			public.POST("/cart/items", publicHandler.SetCartItem)
			public.DELETE("/cart", publicHandler.ClearCart)

			// 网关结算对游客开放，已登录用户通过可选鉴权关联订单
			checkout := public.Group("")
			checkout.Use(OptionalUserJWTMiddleware(userSecret, c.UserRepo))
			{
				checkout.POST("/checkout/gateway", publicHandler.GatewayCheckout)
			}

			// 支付网关回调同时注册 GET/POST：部分网关跳转用 GET，webhook 用 POST
			public.GET("/checkout/gateway/callback", publicHandler.GatewayCallback)
			public.POST("/checkout/gateway/callback", publicHandler.GatewayCallback)
			public.GET("/orders/by-reference/:reference", publicHandler.GetOrderByReference)
		}

		guest := api.Group("/auth")
		{
			guest.POST("/register",
				RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")),
				publicHandler.UserRegister)
			guest.POST("/login",
				RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")),
				publicHandler.UserLogin)
		}

		user := api.Group("/user")
		user.Use(UserJWTAuthMiddleware(userSecret, c.UserRepo))
		{
			user.GET("/me", publicHandler.UserProfile)
			user.POST("/checkout/wallet", publicHandler.WalletCheckout)
			user.GET("/orders", publicHandler.UserOrders)
			user.GET("/orders/:id", publicHandler.UserOrderDetail)
			user.GET("/wallet", publicHandler.UserWallet)
			user.GET("/wallet/transactions", publicHandler.UserWalletTransactions)
		}

		api.POST("/admin/login",
			RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")),
			adminHandler.Login)

		admin := api.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
		{
			admin.POST("/password", adminHandler.ChangePassword)

			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)
			admin.GET("/orders/:id/logs", adminHandler.GetOrderLogs)

			admin.GET("/coupons", adminHandler.ListCoupons)
			admin.GET("/coupons/:id", adminHandler.GetCoupon)
			admin.POST("/coupons", adminHandler.CreateCoupon)
			admin.PUT("/coupons/:id", adminHandler.UpdateCoupon)
			admin.DELETE("/coupons/:id", adminHandler.DeleteCoupon)

			admin.GET("/products", adminHandler.ListProducts)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)

			admin.POST("/wallet/credit", adminHandler.CreditWallet)
			admin.GET("/users/:user_id/wallet", adminHandler.GetUserWallet)

			admin.GET("/failed-emails", adminHandler.ListFailedEmails)
			admin.DELETE("/failed-emails/:id", adminHandler.DeleteFailedEmail)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
