package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCouponServiceTest(t *testing.T) (*CouponService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:coupon_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Coupon{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewCouponService(repository.NewCouponRepository(db)), db
}

func fixedCoupon(code string, value, minAmount int64) *models.Coupon {
	return &models.Coupon{
		Code:      code,
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(value)),
		MinAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(minAmount)),
		IsActive:  true,
	}
}

func TestValidateCoupon(t *testing.T) {
	subtotal := decimal.NewFromInt(130)

	if err := ValidateCoupon(nil, subtotal); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("nil coupon want ErrCouponInvalid, got: %v", err)
	}

	inactive := fixedCoupon("OFF10", 10, 0)
	inactive.IsActive = false
	if err := ValidateCoupon(inactive, subtotal); !errors.Is(err, ErrCouponInactive) {
		t.Fatalf("inactive coupon want ErrCouponInactive, got: %v", err)
	}

	expired := fixedCoupon("OFF10", 10, 0)
	past := time.Now().UTC().Add(-time.Hour)
	expired.ExpiresAt = &past
	if err := ValidateCoupon(expired, subtotal); !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("expired coupon want ErrCouponExpired, got: %v", err)
	}

	exhausted := fixedCoupon("OFF10", 10, 0)
	exhausted.MaxUses = 3
	exhausted.CurrentUses = 3
	if err := ValidateCoupon(exhausted, subtotal); !errors.Is(err, ErrCouponUsageLimit) {
		t.Fatalf("exhausted coupon want ErrCouponUsageLimit, got: %v", err)
	}

	// 150 的订单达不到 200 的使用门槛
	belowMin := fixedCoupon("OFF10", 10, 200)
	if err := ValidateCoupon(belowMin, decimal.NewFromInt(150)); !errors.Is(err, ErrCouponMinAmount) {
		t.Fatalf("below min amount want ErrCouponMinAmount, got: %v", err)
	}

	ok := fixedCoupon("OFF10", 10, 100)
	if err := ValidateCoupon(ok, subtotal); err != nil {
		t.Fatalf("valid coupon should pass, got: %v", err)
	}
}

func TestCouponDiscountFixed(t *testing.T) {
	coupon := fixedCoupon("SAVE13", 13, 0)

	got := CouponDiscount(coupon, decimal.NewFromInt(130))
	if !got.Equal(decimal.NewFromInt(13)) {
		t.Fatalf("fixed discount want 13, got %s", got)
	}

	// 固定金额超过订单金额时收敛到订单金额
	got = CouponDiscount(coupon, decimal.NewFromInt(5))
	if !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("fixed discount should clamp to amount, got %s", got)
	}
}

func TestCouponDiscountPercent(t *testing.T) {
	coupon := &models.Coupon{
		Code:     "PCT10",
		Type:     constants.CouponTypePercent,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		IsActive: true,
	}

	got := CouponDiscount(coupon, decimal.NewFromInt(130))
	if !got.Equal(decimal.NewFromInt(13)) {
		t.Fatalf("percent discount want 13, got %s", got)
	}

	// 达到 MaxDiscount 上限后按上限计
	coupon.MaxDiscount = models.NewMoneyFromDecimal(decimal.NewFromInt(8))
	got = CouponDiscount(coupon, decimal.NewFromInt(130))
	if !got.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("percent discount should cap at 8, got %s", got)
	}

	got = CouponDiscount(coupon, decimal.Zero)
	if !got.Equal(decimal.Zero) {
		t.Fatalf("zero amount should yield zero discount, got %s", got)
	}

	unknown := &models.Coupon{Code: "X", Type: "mystery", Value: models.NewMoneyFromDecimal(decimal.NewFromInt(10))}
	got = CouponDiscount(unknown, decimal.NewFromInt(100))
	if !got.Equal(decimal.Zero) {
		t.Fatalf("unknown type should yield zero discount, got %s", got)
	}
}

func TestCouponPreview(t *testing.T) {
	svc, db := setupCouponServiceTest(t)

	coupon := fixedCoupon("SAVE10", 10, 50)
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	preview, err := svc.Preview("SAVE10", decimal.NewFromInt(130))
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !preview.Valid {
		t.Fatalf("preview should be valid")
	}
	if !preview.Discount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("discount want 10, got %s", preview.Discount.String())
	}
	if !preview.FinalTotal.Decimal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("final total want 120, got %s", preview.FinalTotal.String())
	}

	if _, err := svc.Preview("MISSING", decimal.NewFromInt(130)); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("unknown code want ErrCouponInvalid, got: %v", err)
	}

	if _, err := svc.Preview("SAVE10", decimal.NewFromInt(30)); !errors.Is(err, ErrCouponMinAmount) {
		t.Fatalf("below threshold want ErrCouponMinAmount, got: %v", err)
	}
}

func TestCouponIncrementUsedCountWithLimit(t *testing.T) {
	_, db := setupCouponServiceTest(t)

	coupon := fixedCoupon("LIMIT2", 5, 0)
	coupon.MaxUses = 2
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	repo := repository.NewCouponRepository(db)
	for i := 0; i < 2; i++ {
		ok, err := repo.IncrementUsedCountWithLimit(coupon.ID)
		if err != nil {
			t.Fatalf("increment %d failed: %v", i, err)
		}
		if !ok {
			t.Fatalf("increment %d should succeed", i)
		}
	}

	ok, err := repo.IncrementUsedCountWithLimit(coupon.ID)
	if err != nil {
		t.Fatalf("increment beyond limit errored: %v", err)
	}
	if ok {
		t.Fatalf("increment beyond max_uses should report failure")
	}

	var reloaded models.Coupon
	if err := db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.CurrentUses != 2 {
		t.Fatalf("current_uses want 2, got %d", reloaded.CurrentUses)
	}
}
