package admin

import (
	"errors"
	"strconv"
	"time"

	handlershared "github.com/cyberworld360/cyberworld-store/internal/http/handlers/shared"
	"github.com/cyberworld360/cyberworld-store/internal/http/response"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/repository"
	"github.com/cyberworld360/cyberworld-store/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponRequest 优惠券写入请求
type CouponRequest struct {
	Code        string       `json:"code" binding:"required"`
	Type        string       `json:"type" binding:"required"`
	Value       models.Money `json:"value"`
	MinAmount   models.Money `json:"min_amount"`
	MaxDiscount models.Money `json:"max_discount"`
	MaxUses     int          `json:"max_uses"`
	ExpiresAt   *time.Time   `json:"expires_at"`
	IsActive    *bool        `json:"is_active"`
}

// ListCoupons 优惠券列表
func (h *Handler) ListCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	coupons, total, err := h.CouponService.ListCoupons(repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     c.Query("code"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, coupons, response.Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// GetCoupon 优惠券详情
func (h *Handler) GetCoupon(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponService.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if coupon == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}
	response.Success(c, coupon)
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon := &models.Coupon{
		Code:        req.Code,
		Type:        req.Type,
		Value:       req.Value,
		MinAmount:   req.MinAmount,
		MaxDiscount: req.MaxDiscount,
		MaxUses:     req.MaxUses,
		ExpiresAt:   req.ExpiresAt,
		IsActive:    true,
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if err := h.CouponService.CreateCoupon(coupon); err != nil {
		if errors.Is(err, service.ErrCouponInvalid) {
			respondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon, err := h.CouponService.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if coupon == nil {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}

	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	coupon.Code = req.Code
	coupon.Type = req.Type
	coupon.Value = req.Value
	coupon.MinAmount = req.MinAmount
	coupon.MaxDiscount = req.MaxDiscount
	coupon.MaxUses = req.MaxUses
	coupon.ExpiresAt = req.ExpiresAt
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if err := h.CouponService.UpdateCoupon(coupon); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CouponService.DeleteCoupon(uint(id)); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
