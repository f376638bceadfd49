package crm

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/roofdash/internal/models"

	"github.com/shopspring/decimal"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func normalizeUser(raw map[string]interface{}) models.User {
	return models.User{
		ID:         readUint(raw, "id"),
		Name:       readString(raw, "name"),
		Email:      readString(raw, "email"),
		Role:       readString(raw, "role"),
		YearlyGoal: readMoney(raw, "yearly_goal"),
	}
}

func normalizeJob(raw map[string]interface{}) models.Job {
	return models.Job{
		ID:                  readUint(raw, "id"),
		CustomerName:        readString(raw, "customer_name"),
		Status:              readString(raw, "status"),
		TotalJobPrice:       readMoney(raw, "total_job_price"),
		InitialScopePrice:   readMoney(raw, "initial_scope_price"),
		SalesmanID:          readOptionalUint(raw, "salesman_id"),
		ManagerID:           readOptionalUint(raw, "manager_id"),
		SupplementerID:      readOptionalUint(raw, "supplementer_id"),
		SupplementManagerID: readOptionalUint(raw, "supplement_manager_id"),
		ReferrerID:          readOptionalUint(raw, "referrer_id"),
	}
}

func normalizeRealizedCommission(raw map[string]interface{}) models.RealizedCommission {
	return models.RealizedCommission{
		ID:               readUint(raw, "id"),
		UserID:           readUint(raw, "user_id"),
		CustomerID:       readUint(raw, "customer_id"),
		CommissionAmount: readMoney(raw, "commission_amount"),
		IsPaid:           readBool(raw, "is_paid"),
		AdminModified:    readBool(raw, "admin_modified"),
		BuildDate:        readOptionalTime(raw, "build_date"),
	}
}

func normalizePayment(raw map[string]interface{}) models.Payment {
	return models.Payment{
		ID:          readUint(raw, "id"),
		UserID:      readUint(raw, "user_id"),
		Amount:      readMoney(raw, "amount"),
		PaymentType: readString(raw, "payment_type"),
		PaymentDate: readOptionalTime(raw, "payment_date"),
		Notes:       readString(raw, "notes"),
	}
}

func normalizeTeam(raw map[string]interface{}) models.Team {
	id := readUint(raw, "team_id")
	if id == 0 {
		id = readUint(raw, "id")
	}
	return models.Team{
		ID:              id,
		TeamName:        readString(raw, "team_name"),
		TeamType:        readString(raw, "team_type"),
		ManagerID:       readOptionalUint(raw, "manager_id"),
		SalesmanIDs:     readUintList(raw, "salesman_ids"),
		SupplementerIDs: readUintList(raw, "supplementer_ids"),
	}
}

func normalizeMembershipEvent(raw map[string]interface{}) models.MembershipEvent {
	event := models.MembershipEvent{
		ID:     readUint(raw, "id"),
		UserID: readUint(raw, "user_id"),
		TeamID: readUint(raw, "team_id"),
		LeftAt: readOptionalTime(raw, "left_at"),
	}
	if joined := readOptionalTime(raw, "joined_at"); joined != nil {
		event.JoinedAt = *joined
	}
	return event
}

func normalizePotentialCommission(raw map[string]interface{}) models.PotentialCommission {
	jobID := readUint(raw, "customer_id")
	if jobID == 0 {
		jobID = readUint(raw, "job_id")
	}
	return models.PotentialCommission{
		JobID:  jobID,
		Amount: readMoney(raw, "amount"),
	}
}

func readString(raw map[string]interface{}, key string) string {
	if raw == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return strings.TrimSpace(typed.String())
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

// readDecimal 解析数字或数字字符串，非法值返回 false
func readDecimal(value interface{}) (decimal.Decimal, bool) {
	switch typed := value.(type) {
	case json.Number:
		d, err := decimal.NewFromString(typed.String())
		return d, err == nil
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(typed), true
	case string:
		trimmed := strings.TrimSpace(strings.ReplaceAll(typed, ",", ""))
		trimmed = strings.TrimPrefix(trimmed, "$")
		if trimmed == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(trimmed)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// readMoney 金额字段，缺失或非数字按 0 处理
func readMoney(raw map[string]interface{}, key string) models.Money {
	if raw == nil {
		return models.ZeroMoney()
	}
	d, ok := readDecimal(raw[key])
	if !ok {
		return models.ZeroMoney()
	}
	return models.NewMoneyFromDecimal(d)
}

func parseUint(value interface{}) (uint, bool) {
	d, ok := readDecimal(value)
	if !ok || d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, false
	}
	return uint(d.IntPart()), true
}

func readUint(raw map[string]interface{}, key string) uint {
	if raw == nil {
		return 0
	}
	id, _ := parseUint(raw[key])
	return id
}

// readOptionalUint 可选外键，缺失、空值或 0 返回 nil
func readOptionalUint(raw map[string]interface{}, key string) *uint {
	id := readUint(raw, key)
	if id == 0 {
		return nil
	}
	return &id
}

func readBool(raw map[string]interface{}, key string) bool {
	if raw == nil {
		return false
	}
	switch typed := raw[key].(type) {
	case bool:
		return typed
	case json.Number:
		return typed.String() != "0"
	case float64:
		return typed != 0
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		return err == nil && parsed
	default:
		return false
	}
}

func readOptionalTime(raw map[string]interface{}, key string) *time.Time {
	value := readString(raw, key)
	if value == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}
	return nil
}

// readUintList 兼容数组、JSON 字符串与逗号分隔字符串
func readUintList(raw map[string]interface{}, key string) models.UintList {
	result := models.UintList{}
	if raw == nil {
		return result
	}
	var entries []interface{}
	switch typed := raw[key].(type) {
	case []interface{}:
		entries = typed
	case string:
		trimmed := strings.TrimSpace(typed)
		if strings.HasPrefix(trimmed, "[") {
			var decoded []interface{}
			decoder := json.NewDecoder(strings.NewReader(trimmed))
			decoder.UseNumber()
			if err := decoder.Decode(&decoded); err == nil {
				entries = decoded
			}
		} else if trimmed != "" {
			for _, part := range strings.Split(trimmed, ",") {
				entries = append(entries, part)
			}
		}
	}
	for _, entry := range entries {
		if id, ok := parseUint(entry); ok && id > 0 {
			result = append(result, id)
		}
	}
	return result.Sorted()
}
