package shared

// 错误提示文案，按 key 取值，未登记的 key 原样返回
var messages = map[string]string{
	"error.unauthorized":            "未授权",
	"error.jwt_secret_missing":      "JWT 密钥未配置",
	"error.auth_header_missing":     "缺少 Authorization 请求头",
	"error.auth_header_invalid":     "Authorization 格式错误",
	"error.token_invalid":           "无效的 token",
	"error.admin_id_invalid":        "管理员 ID 无效",
	"error.admin_id_type_invalid":   "管理员 ID 类型错误",
	"error.bad_request":             "请求参数错误",
	"error.user_id_invalid":         "用户 ID 无效",
	"error.team_id_invalid":         "团队 ID 无效",
	"error.limit_invalid":           "数量参数超出范围",
	"error.user_not_found":          "用户不存在",
	"error.team_not_found":          "团队不存在",
	"error.reconcile_in_progress":   "对账正在进行中",
	"error.reconcile_failed":        "对账失败",
	"error.ledger_unavailable":      "账本数据源不可用",
	"error.queue_unavailable":       "任务队列不可用",
	"error.enqueue_failed":          "对账任务投递失败",
	"error.run_state_fetch_failed":  "获取对账状态失败",
	"error.membership_fetch_failed": "获取团队成员记录失败",
	"error.rate_limit_unavailable":  "限流服务不可用",
	"error.rate_limited":            "请求过于频繁，请 %d 秒后再试",
}

// Message 返回 key 对应的文案
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
