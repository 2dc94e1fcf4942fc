package admin

import (
	"strconv"

	handlershared "github.com/cyberworld360/cyberworld-store/internal/http/handlers/shared"
	"github.com/cyberworld360/cyberworld-store/internal/http/response"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListFailedEmails 通知死信列表
func (h *Handler) ListFailedEmails(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	failed, total, err := h.FailedEmailRepo.List(repository.FailedEmailListFilter{
		Page:     page,
		PageSize: pageSize,
		TaskType: c.Query("task_type"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, failed, response.Pagination{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// DeleteFailedEmail 删除已处理的死信记录
func (h *Handler) DeleteFailedEmail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.FailedEmailRepo.Delete(uint(id)); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
