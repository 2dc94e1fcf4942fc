package public

import (
	"strings"

	"github.com/cyberworld360/cyberworld-store/internal/http/response"

	"github.com/gin-gonic/gin"
)

const cartTokenHeader = "X-Session-Token"

func (h *Handler) cartToken(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(cartTokenHeader))
}

// NewCartSession 签发购物车会话令牌
func (h *Handler) NewCartSession(c *gin.Context) {
	response.Success(c, gin.H{"token": h.CartService.NewToken()})
}

// GetCart 查看购物车（按商品现价定价）
func (h *Handler) GetCart(c *gin.Context) {
	token := h.cartToken(c)
	if token == "" {
		respondError(c, response.CodeBadRequest, "error.cart_token_required", nil)
		return
	}
	view, err := h.CartService.View(c.Request.Context(), token)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, view)
}

// SetCartItemRequest 设置购物车项请求
type SetCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// SetCartItem 设置购物车项数量（0 表示移除）
func (h *Handler) SetCartItem(c *gin.Context) {
	token := h.cartToken(c)
	if token == "" {
		respondError(c, response.CodeBadRequest, "error.cart_token_required", nil)
		return
	}
	var req SetCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.SetItem(c.Request.Context(), token, req.ProductID, req.Quantity); err != nil {
		respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.internal")
		return
	}
	view, err := h.CartService.View(c.Request.Context(), token)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	token := h.cartToken(c)
	if token == "" {
		respondError(c, response.CodeBadRequest, "error.cart_token_required", nil)
		return
	}
	if err := h.CartService.Clear(c.Request.Context(), token); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
