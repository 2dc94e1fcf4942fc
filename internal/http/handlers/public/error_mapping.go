package public

import (
	"errors"

	"github.com/cyberworld360/cyberworld-store/internal/http/response"
	"github.com/cyberworld360/cyberworld-store/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrQuantityInvalid, code: response.CodeBadRequest, key: "error.quantity_invalid"},
	{target: service.ErrProductUnavailable, code: response.CodeBadRequest, key: "error.product_unavailable"},
}

var couponCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, key: "error.coupon_invalid"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, key: "error.coupon_inactive"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, key: "error.coupon_expired"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, key: "error.coupon_usage_limit"},
	{target: service.ErrCouponMinAmount, code: response.CodeBadRequest, key: "error.coupon_min_amount"},
}

var checkoutCommonErrorRules = concatMappedHandlerErrors(
	cartCommonErrorRules,
	couponCommonErrorRules,
	[]mappedHandlerError{
		{target: service.ErrEmailRequired, code: response.CodeBadRequest, key: "error.email_required"},
	},
)

var gatewayCheckoutErrorRules = concatMappedHandlerErrors(
	checkoutCommonErrorRules,
	[]mappedHandlerError{
		{target: service.ErrPaymentInitFailed, code: response.CodeInternal, key: "error.payment_init_failed"},
	},
)

var gatewayCallbackErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentPending, code: response.CodeBadRequest, key: "error.payment_pending"},
	{target: service.ErrPaymentVerifyFailed, code: response.CodeBadRequest, key: "error.payment_verify_failed"},
	{target: service.ErrPaymentMismatch, code: response.CodeBadRequest, key: "error.payment_mismatch"},
	{target: service.ErrPendingNotFound, code: response.CodeNotFound, key: "error.pending_not_found"},
	{target: service.ErrOrderNotFound, code: response.CodeBadRequest, key: "error.order_not_found"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, key: "error.coupon_usage_limit"},
}
