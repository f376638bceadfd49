package admin

import (
	"errors"

	handlershared "github.com/roofdash/internal/http/handlers/shared"
	"github.com/roofdash/internal/http/response"
	"github.com/roofdash/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// respondReconcileError 将对账服务错误映射为响应码
func respondReconcileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
	case errors.Is(err, service.ErrTeamNotFound):
		respondError(c, response.CodeNotFound, "error.team_not_found", nil)
	case errors.Is(err, service.ErrInvalidLimit):
		respondError(c, response.CodeBadRequest, "error.limit_invalid", nil)
	case errors.Is(err, service.ErrReconcileInProgress):
		respondError(c, response.CodeConflict, "error.reconcile_in_progress", nil)
	case errors.Is(err, service.ErrLedgerSourceMissing), errors.Is(err, service.ErrLedgerLoadFailed):
		respondError(c, response.CodeServiceUnavailable, "error.ledger_unavailable", err)
	default:
		respondError(c, response.CodeInternal, "error.reconcile_failed", err)
	}
}
