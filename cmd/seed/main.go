package main

import (
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/config"
	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/logger"
	"github.com/cyberworld360/cyberworld-store/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 演示商品
	products := []models.Product{
		{
			Title:       "Wireless Bluetooth Earphones",
			Description: "High quality sound, long battery life, comfortable to wear",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			ImageURL:    "https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800",
			Stock:       120,
			IsActive:    true,
			SortOrder:   100,
		},
		{
			Title:       "Smart Watch",
			Description: "Health monitoring, fitness tracking, message notifications",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(199.99)),
			ImageURL:    "https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=800",
			Stock:       60,
			IsActive:    true,
			SortOrder:   90,
		},
		{
			Title:       "Portable Power Bank",
			Description: "High capacity, fast charging, multi-device compatible",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(49.99)),
			ImageURL:    "https://images.unsplash.com/photo-1609091839311-d5365f9ff1c5?w=800",
			Stock:       200,
			IsActive:    true,
			SortOrder:   80,
		},
		{
			Title:       "Multi-function Backpack",
			Description: "Large capacity, waterproof and anti-theft, USB charging port",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(79.99)),
			ImageURL:    "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=800",
			Stock:       45,
			IsActive:    true,
			SortOrder:   70,
		},
		{
			Title:       "Demo Product - Sold Out",
			Description: "For out-of-stock badge demo.",
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(29.90)),
			ImageURL:    "https://images.unsplash.com/photo-1512499617640-c74ae3a79d37?w=800",
			Stock:       0,
			IsActive:    true,
			SortOrder:   10,
		},
	}

	for _, p := range products {
		product := p
		var existing models.Product
		if err := models.DB.Where("title = ?", product.Title).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Title, err)
			} else {
				stdLog.Printf("Created product: %s", product.Title)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Title)
		}
	}

	// 演示优惠券
	nextMonth := time.Now().AddDate(0, 1, 0)
	coupons := []models.Coupon{
		{
			Code:      "SAVE10",
			Type:      constants.CouponTypeFixed,
			Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			MinAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
			MaxUses:   100,
			ExpiresAt: &nextMonth,
			IsActive:  true,
		},
		{
			Code:        "WELCOME15",
			Type:        constants.CouponTypePercent,
			Value:       models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			MinAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			MaxDiscount: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			MaxUses:     0,
			ExpiresAt:   &nextMonth,
			IsActive:    true,
		},
	}

	for _, c := range coupons {
		coupon := c
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&coupon).Error; err != nil {
				stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			} else {
				stdLog.Printf("Created coupon: %s", coupon.Code)
			}
		} else {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
		}
	}

	stdLog.Printf("Seed completed")
}
