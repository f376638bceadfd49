package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/roofdash/internal/http/handlers/shared"
	"github.com/roofdash/internal/http/response"
	"github.com/roofdash/internal/queue"
	"github.com/roofdash/internal/repository"
	"github.com/roofdash/internal/service"

	"github.com/gin-gonic/gin"
)

// GetReconcileReport 获取完整对账报告
func (h *Handler) GetReconcileReport(c *gin.Context) {
	report, err := h.ReconcileService.Run(c.Request.Context(), service.ReconcileInput{
		ForceRefresh: parseForceRefresh(c),
	})
	if err != nil {
		respondReconcileError(c, err)
		return
	}
	response.Success(c, report)
}

// GetReconcileStatus 获取最近一次对账摘要
func (h *Handler) GetReconcileStatus(c *gin.Context) {
	state, err := h.ReconcileService.LastRun(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.run_state_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"last_run": state})
}

// GetUserBalances 获取全部用户余额
func (h *Handler) GetUserBalances(c *gin.Context) {
	report, err := h.ReconcileService.Run(c.Request.Context(), service.ReconcileInput{
		ForceRefresh: parseForceRefresh(c),
	})
	if err != nil {
		respondReconcileError(c, err)
		return
	}
	response.Success(c, report.Users)
}

// GetUserBalance 获取单个用户余额
func (h *Handler) GetUserBalance(c *gin.Context) {
	userID, ok := parseUintParam(c, "user_id", "error.user_id_invalid")
	if !ok {
		return
	}
	balance, err := h.ReconcileService.GetUserBalance(c.Request.Context(), userID, parseForceRefresh(c))
	if err != nil {
		respondReconcileError(c, err)
		return
	}
	response.Success(c, balance)
}

// GetCompanyBalance 获取公司汇总余额
func (h *Handler) GetCompanyBalance(c *gin.Context) {
	company, err := h.ReconcileService.GetCompanyBalance(c.Request.Context(), parseForceRefresh(c))
	if err != nil {
		respondReconcileError(c, err)
		return
	}
	response.Success(c, company)
}

// GetTopPerformers 获取业绩排行
func (h *Handler) GetTopPerformers(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.limit_invalid", nil)
			return
		}
		limit = parsed
	}
	performers, err := h.ReconcileService.GetTopPerformers(c.Request.Context(), limit, parseForceRefresh(c))
	if err != nil {
		respondReconcileError(c, err)
		return
	}
	response.Success(c, performers)
}

// GetUserMetric 获取单个用户业绩指标
func (h *Handler) GetUserMetric(c *gin.Context) {
	userID, ok := parseUintParam(c, "user_id", "error.user_id_invalid")
	if !ok {
		return
	}
	metric, err := h.ReconcileService.GetUserMetric(c.Request.Context(), userID, parseForceRefresh(c))
	if err != nil {
		respondReconcileError(c, err)
		return
	}
	response.Success(c, metric)
}

// GetTeamRoster 获取团队名单、名单差异与余额汇总
func (h *Handler) GetTeamRoster(c *gin.Context) {
	teamID, ok := parseUintParam(c, "team_id", "error.team_id_invalid")
	if !ok {
		return
	}
	summary, err := h.ReconcileService.GetTeamRoster(c.Request.Context(), teamID, parseForceRefresh(c))
	if err != nil {
		respondReconcileError(c, err)
		return
	}
	response.Success(c, summary)
}

// GetTeamMembershipEvents 分页查询团队成员事件（仅本地镜像库）
func (h *Handler) GetTeamMembershipEvents(c *gin.Context) {
	teamID, ok := parseUintParam(c, "team_id", "error.team_id_invalid")
	if !ok {
		return
	}
	if h.LedgerRepo == nil {
		respondError(c, response.CodeServiceUnavailable, "error.ledger_unavailable", nil)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("user_id")), 10, 64)
	onlyOpen, _ := strconv.ParseBool(strings.TrimSpace(c.Query("only_open")))

	events, total, err := h.LedgerRepo.ListMembershipEventsPage(c.Request.Context(), repository.MembershipEventListFilter{
		Page:     page,
		PageSize: pageSize,
		TeamID:   teamID,
		UserID:   uint(userID),
		OnlyOpen: onlyOpen,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.membership_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, events, response.BuildPagination(page, pageSize, total))
}

// RefreshReconcile 强制重新对账，async=1 时投递到任务队列
func (h *Handler) RefreshReconcile(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	async, _ := strconv.ParseBool(strings.TrimSpace(c.Query("async")))
	if async {
		requestedBy := getAdminUsername(c)
		if requestedBy == "" {
			requestedBy = strconv.FormatUint(uint64(adminID), 10)
		}
		err := h.QueueClient.EnqueueReconcileRun(queue.ReconcileRunPayload{
			Trigger:     queue.ReconcileTriggerManual,
			RequestedBy: requestedBy,
			RequestedAt: time.Now(),
		})
		if err != nil {
			if errors.Is(err, queue.ErrQueueDisabled) {
				respondError(c, response.CodeServiceUnavailable, "error.queue_unavailable", nil)
				return
			}
			respondError(c, response.CodeInternal, "error.enqueue_failed", err)
			return
		}
		requestLog(c).Infow("admin_reconcile_enqueued", "admin_id", adminID, "requested_by", requestedBy)
		response.SuccessWithMsg(c, "queued", gin.H{"queued": true})
		return
	}

	report, err := h.ReconcileService.Refresh(c.Request.Context())
	if err != nil {
		respondReconcileError(c, err)
		return
	}
	requestLog(c).Infow("admin_reconcile_refreshed",
		"admin_id", adminID,
		"run_id", report.RunID,
		"degraded_users", len(report.DegradedUsers),
	)
	response.Success(c, report)
}

func parseForceRefresh(c *gin.Context) bool {
	force, _ := strconv.ParseBool(strings.TrimSpace(c.Query("refresh")))
	return force
}

func parseUintParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || value == 0 {
		respondError(c, response.CodeBadRequest, invalidKey, nil)
		return 0, false
	}
	return uint(value), true
}
