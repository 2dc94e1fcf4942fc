package public

import (
	"errors"
	"strings"

	"github.com/cyberworld360/cyberworld-store/internal/http/response"
	"github.com/cyberworld360/cyberworld-store/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutLineRequest 结算行请求
type CheckoutLineRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// GatewayCheckoutRequest 网关结算请求。行列表与购物车令牌二选一，
// 都给出时以行列表为准。
type GatewayCheckoutRequest struct {
	Email     string                `json:"email" binding:"required"`
	Name      string                `json:"name"`
	Phone     string                `json:"phone"`
	City      string                `json:"city"`
	Lines     []CheckoutLineRequest `json:"lines"`
	CartToken string                `json:"cart_token"`
	CouponID  *uint                 `json:"coupon_id"`
}

// resolveCheckoutLines 解析结算行。行来自购物车时一并返回其令牌，
// 结算成功后按该令牌清空购物车；显式传入行列表时不动购物车。
func (h *Handler) resolveCheckoutLines(c *gin.Context, lines []CheckoutLineRequest, cartToken string) ([]service.CheckoutLine, string, error) {
	if len(lines) > 0 {
		resolved := make([]service.CheckoutLine, 0, len(lines))
		for _, line := range lines {
			resolved = append(resolved, service.CheckoutLine{ProductID: line.ProductID, Quantity: line.Quantity})
		}
		return resolved, "", nil
	}
	token := strings.TrimSpace(cartToken)
	if token == "" {
		token = h.cartToken(c)
	}
	if token == "" {
		return nil, "", service.ErrCartEmpty
	}
	resolved, err := h.CartService.Lines(c.Request.Context(), token)
	if err != nil {
		return nil, "", err
	}
	return resolved, token, nil
}

// GatewayCheckout 发起网关支付：定价后向网关 initialize，返回授权跳转地址
func (h *Handler) GatewayCheckout(c *gin.Context) {
	var req GatewayCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	checkoutLines, cartToken, err := h.resolveCheckoutLines(c, req.Lines, req.CartToken)
	if err != nil {
		respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.internal")
		return
	}

	input := service.CheckoutInput{
		Email:     strings.TrimSpace(req.Email),
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		City:      strings.TrimSpace(req.City),
		Lines:     checkoutLines,
		CouponID:  req.CouponID,
		CartToken: cartToken,
	}
	if userID, ok := optionalUserID(c); ok {
		input.UserID = &userID
	}

	result, err := h.CheckoutService.BeginGatewayCheckout(c.Request.Context(), input)
	if err != nil {
		respondWithMappedError(c, err, gatewayCheckoutErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, result)
}

// WalletCheckoutRequest 钱包结算请求
type WalletCheckoutRequest struct {
	Name      string                `json:"name"`
	Phone     string                `json:"phone"`
	City      string                `json:"city"`
	Lines     []CheckoutLineRequest `json:"lines"`
	CartToken string                `json:"cart_token"`
	CouponID  *uint                 `json:"coupon_id"`
}

// WalletCheckout 钱包路径结算。余额不足时按配置提示网关兜底，
// 不会自动改道：改走网关由客户显式重新发起。
func (h *Handler) WalletCheckout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req WalletCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, err := h.UserAuthService.GetProfile(userID)
	if err != nil {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", err)
		return
	}

	checkoutLines, cartToken, err := h.resolveCheckoutLines(c, req.Lines, req.CartToken)
	if err != nil {
		respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.internal")
		return
	}

	input := service.CheckoutInput{
		UserID:    &userID,
		Email:     user.Email,
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		City:      strings.TrimSpace(req.City),
		Lines:     checkoutLines,
		CouponID:  req.CouponID,
		CartToken: cartToken,
	}
	if input.Name == "" {
		input.Name = user.Name
	}
	if input.Phone == "" {
		input.Phone = user.Phone
	}
	if input.City == "" {
		input.City = user.City
	}

	order, err := h.CheckoutService.CheckoutWallet(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientBalance) && h.Config.Checkout.AllowWalletFallback {
			respondErrorWithData(c, response.CodeBadRequest, "error.insufficient_balance",
				gin.H{"fallback": "gateway"}, nil)
			return
		}
		rules := concatMappedHandlerErrors(checkoutCommonErrorRules, []mappedHandlerError{
			{target: service.ErrInsufficientBalance, code: response.CodeBadRequest, key: "error.insufficient_balance"},
			{target: service.ErrWalletNotFound, code: response.CodeBadRequest, key: "error.wallet_not_found"},
		})
		respondWithMappedError(c, err, rules, response.CodeInternal, "error.internal")
		return
	}

	response.Success(c, order)
}

// GatewayCallback 网关回调对账。GET 为客户跳转回站点，POST 为网关服务端通知，
// 两者同样语义：按引用核验并幂等落库。
func (h *Handler) GatewayCallback(c *gin.Context) {
	reference := strings.TrimSpace(c.Query("reference"))
	if reference == "" {
		reference = strings.TrimSpace(c.Query("trxref"))
	}
	if reference == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.CheckoutService.HandleGatewayCallback(c.Request.Context(), reference)
	if err != nil {
		respondWithMappedError(c, err, gatewayCallbackErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, order)
}

// GetOrderByReference 按结算引用查询订单（客户回跳后轮询用）
func (h *Handler) GetOrderByReference(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	order, err := h.OrderService.GetOrderByReference(reference)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, order)
}

// optionalUserID 读取可选的登录用户（网关结算对游客开放）
func optionalUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	if id, ok := value.(uint); ok && id > 0 {
		return id, true
	}
	return 0, false
}
