package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roofdash/internal/cache"
	"github.com/roofdash/internal/config"
	adminhandlers "github.com/roofdash/internal/http/handlers/admin"
	"github.com/roofdash/internal/http/response"
	"github.com/roofdash/internal/logger"
	"github.com/roofdash/internal/provider"

	"github.com/gin-gonic/gin"
)

const adminRoutePrefix = "/api/v1/admin/"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "rd"
	}
	refreshRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:reconcile_refresh", redisPrefix),
		WindowSeconds: cfg.Reconcile.RefreshRateLimit.WindowSeconds,
		MaxRequests:   cfg.Reconcile.RefreshRateLimit.MaxRequests,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, cfg.JWT.Issuer))
		{
			reconcile := admin.Group("/reconcile")
			{
				reconcile.GET("/report", adminHandler.GetReconcileReport)
				reconcile.GET("/status", adminHandler.GetReconcileStatus)
				reconcile.GET("/balances", adminHandler.GetUserBalances)
				reconcile.GET("/balances/:user_id", adminHandler.GetUserBalance)
				reconcile.GET("/company", adminHandler.GetCompanyBalance)
				reconcile.GET("/top-performers", adminHandler.GetTopPerformers)
				reconcile.GET("/metrics/:user_id", adminHandler.GetUserMetric)
				reconcile.GET("/teams/:team_id/roster", adminHandler.GetTeamRoster)
				reconcile.GET("/teams/:team_id/events", adminHandler.GetTeamMembershipEvents)
				reconcile.POST("/refresh", RateLimitMiddleware(cache.Client(), refreshRule, KeyByAdminID), adminHandler.RefreshReconcile)
			}

			admin.GET("/routes", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminRouteCatalog(r))
			})
		}
	}

	if cfg.Metrics.Enabled && c.Metrics != nil {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(c.Metrics.Handler()))
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminRouteCatalogItem struct {
	Module string `json:"module"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// buildAdminRouteCatalog 列出后台已注册的接口，供看板前端做能力探测
func buildAdminRouteCatalog(engine *gin.Engine) []adminRouteCatalogItem {
	if engine == nil {
		return []adminRouteCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminRouteCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, adminRoutePrefix) {
			continue
		}
		key := method + ":" + item.Path
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		items = append(items, adminRouteCatalogItem{
			Module: deriveAdminRouteModule(item.Path),
			Method: method,
			Path:   item.Path,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Path == items[j].Path {
				return items[i].Method < items[j].Method
			}
			return items[i].Path < items[j].Path
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminRouteModule(path string) string {
	normalized := strings.Trim(strings.TrimPrefix(strings.TrimSpace(path), adminRoutePrefix), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if segments[0] == "reconcile" && len(segments) > 1 {
		switch segments[1] {
		case "teams":
			return "teams"
		case "balances", "company", "top-performers":
			return "balances"
		}
	}
	return segments[0]
}
