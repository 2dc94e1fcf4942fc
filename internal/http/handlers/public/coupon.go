package public

import (
	"strings"

	"github.com/cyberworld360/cyberworld-store/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ValidateCoupon 优惠券试算：按券码与订单金额返回折扣与应付金额
func (h *Handler) ValidateCoupon(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "error.coupon_invalid", nil)
		return
	}
	total, err := decimal.NewFromString(strings.TrimSpace(c.Query("total")))
	if err != nil || total.LessThan(decimal.Zero) {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", err)
		return
	}

	preview, err := h.CouponService.Preview(code, total)
	if err != nil {
		respondWithMappedError(c, err, couponCommonErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, preview)
}
