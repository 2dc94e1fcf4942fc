package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/cyberworld360/cyberworld-store/internal/http/handlers/shared"
	"github.com/cyberworld360/cyberworld-store/internal/http/response"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/repository"
	"github.com/cyberworld360/cyberworld-store/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletCreditRequest 钱包充值请求。reference 可选，缺省生成；
// 同一 reference 重复提交等价于回放，不会重复入账。
type WalletCreditRequest struct {
	UserID    uint         `json:"user_id" binding:"required"`
	Amount    models.Money `json:"amount" binding:"required"`
	Reference string       `json:"reference"`
	Note      string       `json:"note"`
}

// CreditWallet 管理端为用户钱包充值
func (h *Handler) CreditWallet(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req WalletCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if req.Amount.Decimal.LessThanOrEqual(decimal.Zero) {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = "admin-credit:" + uuid.NewString()
	}
	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = "admin credit by admin:" + strconv.FormatUint(uint64(adminID), 10)
	}

	txn, err := h.WalletService.AdminCredit(req.UserID, req.Amount.Decimal, reference, note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAmountInvalid):
			respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		case errors.Is(err, service.ErrWalletNotFound):
			respondError(c, response.CodeNotFound, "error.wallet_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	response.Success(c, txn)
}

// GetUserWallet 查看用户钱包与流水
func (h *Handler) GetUserWallet(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	wallet, err := h.WalletService.GetWallet(uint(userID))
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if wallet == nil {
		respondError(c, response.CodeNotFound, "error.wallet_not_found", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	txns, total, err := h.WalletService.ListTransactions(repository.WalletTransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		WalletID: wallet.ID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, gin.H{
		"wallet":       wallet,
		"transactions": txns,
	}, response.Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}
