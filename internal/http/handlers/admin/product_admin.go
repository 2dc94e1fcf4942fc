package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/cyberworld360/cyberworld-store/internal/http/handlers/shared"
	"github.com/cyberworld360/cyberworld-store/internal/http/response"
	"github.com/cyberworld360/cyberworld-store/internal/repository"
	"github.com/cyberworld360/cyberworld-store/internal/service"

	"github.com/gin-gonic/gin"
)

func respondProductWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductTitleRequired):
		respondError(c, response.CodeBadRequest, "error.product_title_required", nil)
	case errors.Is(err, service.ErrAmountInvalid):
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
	case errors.Is(err, service.ErrProductUnavailable):
		respondError(c, response.CodeNotFound, "error.product_unavailable", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}

// ListProducts 商品列表（含下架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("keyword"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, products, response.Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Create(input)
	if err != nil {
		respondProductWriteError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var input service.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Update(uint(id), input)
	if err != nil {
		respondProductWriteError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.ProductService.Delete(uint(id)); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
