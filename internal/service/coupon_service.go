package service

import (
	"strings"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponService 优惠券服务
type CouponService struct {
	couponRepo repository.CouponRepository
}

// NewCouponService 创建优惠券服务实例
func NewCouponService(couponRepo repository.CouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo}
}

// ValidateCoupon 校验优惠券对给定小计是否可用。纯校验，不产生副作用。
func ValidateCoupon(coupon *models.Coupon, subtotal decimal.Decimal) error {
	if coupon == nil {
		return ErrCouponInvalid
	}
	if !coupon.IsActive {
		return ErrCouponInactive
	}
	if coupon.MaxUses > 0 && coupon.CurrentUses >= coupon.MaxUses {
		return ErrCouponUsageLimit
	}
	if coupon.ExpiresAt != nil {
		// 无时区的过期时间按 UTC 处理
		if time.Now().UTC().After(coupon.ExpiresAt.UTC()) {
			return ErrCouponExpired
		}
	}
	if subtotal.LessThan(coupon.MinAmount.Decimal) {
		return ErrCouponMinAmount
	}
	return nil
}

// CouponDiscount 计算优惠金额。结果始终落在 [0, amount] 区间内。
func CouponDiscount(coupon *models.Coupon, amount decimal.Decimal) decimal.Decimal {
	if coupon == nil || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.Type {
	case constants.CouponTypePercent:
		discount = amount.Mul(coupon.Value.Decimal).Div(decimal.NewFromInt(100)).Round(2)
		if coupon.MaxDiscount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
			discount = coupon.MaxDiscount.Decimal
		}
	case constants.CouponTypeFixed:
		discount = coupon.Value.Decimal
	default:
		return decimal.Zero
	}

	if discount.GreaterThan(amount) {
		discount = amount
	}
	if discount.LessThan(decimal.Zero) {
		discount = decimal.Zero
	}
	return discount.Round(2)
}

// CouponPreview 优惠券试算结果
type CouponPreview struct {
	Valid      bool         `json:"valid"`
	CouponID   uint         `json:"coupon_id,omitempty"`
	Type       string       `json:"discount_type,omitempty"`
	Value      models.Money `json:"discount_value,omitempty"`
	Discount   models.Money `json:"discount"`
	FinalTotal models.Money `json:"final_total"`
}

// Preview 按优惠码与订单金额试算优惠，只读不核销。
func (s *CouponService) Preview(code string, total decimal.Decimal) (*CouponPreview, error) {
	coupon, err := s.couponRepo.GetByCode(strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponInvalid
	}
	if err := ValidateCoupon(coupon, total); err != nil {
		return nil, err
	}

	discount := CouponDiscount(coupon, total)
	finalTotal := total.Sub(discount)
	if finalTotal.LessThan(decimal.Zero) {
		finalTotal = decimal.Zero
	}
	return &CouponPreview{
		Valid:      true,
		CouponID:   coupon.ID,
		Type:       coupon.Type,
		Value:      coupon.Value,
		Discount:   models.NewMoneyFromDecimal(discount),
		FinalTotal: models.NewMoneyFromDecimal(finalTotal),
	}, nil
}

// GetByID 根据ID获取优惠券
func (s *CouponService) GetByID(id uint) (*models.Coupon, error) {
	return s.couponRepo.GetByID(id)
}

// GetByCode 根据优惠码获取优惠券
func (s *CouponService) GetByCode(code string) (*models.Coupon, error) {
	return s.couponRepo.GetByCode(strings.TrimSpace(code))
}

// CreateCoupon 管理端创建优惠券
func (s *CouponService) CreateCoupon(coupon *models.Coupon) error {
	coupon.Code = strings.TrimSpace(coupon.Code)
	if coupon.Type != constants.CouponTypeFixed && coupon.Type != constants.CouponTypePercent {
		return ErrCouponInvalid
	}
	return s.couponRepo.Create(coupon)
}

// UpdateCoupon 管理端更新优惠券
func (s *CouponService) UpdateCoupon(coupon *models.Coupon) error {
	return s.couponRepo.Update(coupon)
}

// DeleteCoupon 管理端删除优惠券
func (s *CouponService) DeleteCoupon(id uint) error {
	return s.couponRepo.Delete(id)
}

// ListCoupons 管理端分页查询优惠券
func (s *CouponService) ListCoupons(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.couponRepo.List(filter)
}
