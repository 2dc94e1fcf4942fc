package public

import (
	"strconv"

	handlershared "github.com/cyberworld360/cyberworld-store/internal/http/handlers/shared"
	"github.com/cyberworld360/cyberworld-store/internal/http/response"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/gin-gonic/gin"
)

// UserWallet 当前用户钱包余额
func (h *Handler) UserWallet(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	wallet, err := h.WalletService.GetOrCreateWallet(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, wallet)
}

// UserWalletTransactions 当前用户钱包流水
func (h *Handler) UserWalletTransactions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	wallet, err := h.WalletService.GetOrCreateWallet(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	txns, total, err := h.WalletService.ListTransactions(repository.WalletTransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		WalletID: wallet.ID,
		Type:     c.Query("type"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, txns, response.Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}
