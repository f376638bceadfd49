package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/roofdash/internal/models"
)

var (
	ErrConfigInvalid   = errors.New("crm config invalid")
	ErrRequestFailed   = errors.New("crm request failed")
	ErrResponseInvalid = errors.New("crm response invalid")
)

const defaultTimeout = 10 * time.Second

const (
	pathUsers            = "/api/users"
	pathCustomers        = "/api/customers"
	pathCommissions      = "/api/commissions"
	pathPayments         = "/api/payments"
	pathTeams            = "/api/teams"
	pathMembershipEvents = "/api/teams/%d/membership-events"
	pathPotential        = "/api/commissions/potential"
)

// Config 远端 CRM 配置
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	parsed, err := url.ParseRequestURI(base)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("%w: base_url is invalid", ErrConfigInvalid)
	}
	return nil
}

// Client 远端 CRM 客户端
// 说明：同时提供账本只读数据与潜在佣金计算能力，是唯一的数据规范化边界。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建 CRM 客户端
func NewClient(cfg Config) (*Client, error) {
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ListUsers 获取用户
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	items, err := c.fetchList(ctx, http.MethodGet, pathUsers, nil)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(items))
	for _, raw := range items {
		users = append(users, normalizeUser(raw))
	}
	return users, nil
}

// ListJobs 获取工单（客户）
func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	items, err := c.fetchList(ctx, http.MethodGet, pathCustomers, nil)
	if err != nil {
		return nil, err
	}
	jobs := make([]models.Job, 0, len(items))
	for _, raw := range items {
		jobs = append(jobs, normalizeJob(raw))
	}
	return jobs, nil
}

// ListRealizedCommissions 获取已实现佣金
func (c *Client) ListRealizedCommissions(ctx context.Context) ([]models.RealizedCommission, error) {
	items, err := c.fetchList(ctx, http.MethodGet, pathCommissions, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]models.RealizedCommission, 0, len(items))
	for _, raw := range items {
		rows = append(rows, normalizeRealizedCommission(raw))
	}
	return rows, nil
}

// ListPayments 获取佣金发放记录
func (c *Client) ListPayments(ctx context.Context) ([]models.Payment, error) {
	items, err := c.fetchList(ctx, http.MethodGet, pathPayments, nil)
	if err != nil {
		return nil, err
	}
	payments := make([]models.Payment, 0, len(items))
	for _, raw := range items {
		payments = append(payments, normalizePayment(raw))
	}
	return payments, nil
}

// ListTeams 获取团队
func (c *Client) ListTeams(ctx context.Context) ([]models.Team, error) {
	items, err := c.fetchList(ctx, http.MethodGet, pathTeams, nil)
	if err != nil {
		return nil, err
	}
	teams := make([]models.Team, 0, len(items))
	for _, raw := range items {
		teams = append(teams, normalizeTeam(raw))
	}
	return teams, nil
}

// ListMembershipEvents 获取团队成员事件
func (c *Client) ListMembershipEvents(ctx context.Context, teamID uint) ([]models.MembershipEvent, error) {
	items, err := c.fetchList(ctx, http.MethodGet, fmt.Sprintf(pathMembershipEvents, teamID), nil)
	if err != nil {
		return nil, err
	}
	events := make([]models.MembershipEvent, 0, len(items))
	for _, raw := range items {
		event := normalizeMembershipEvent(raw)
		if event.TeamID == 0 {
			event.TeamID = teamID
		}
		events = append(events, event)
	}
	return events, nil
}

// CalculatePotentialCommissions 批量计算用户在指定工单上的潜在佣金
func (c *Client) CalculatePotentialCommissions(ctx context.Context, jobIDs []uint, userID uint) ([]models.PotentialCommission, error) {
	if len(jobIDs) == 0 {
		return []models.PotentialCommission{}, nil
	}
	payload := map[string]interface{}{
		"customer_ids": jobIDs,
		"user_id":      userID,
	}
	items, err := c.fetchList(ctx, http.MethodPost, pathPotential, payload)
	if err != nil {
		return nil, err
	}
	result := make([]models.PotentialCommission, 0, len(items))
	for _, raw := range items {
		item := normalizePotentialCommission(raw)
		if item.JobID == 0 {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

// fetchList 请求并解析列表响应，兼容裸数组与 {"data": [...]} 两种格式
func (c *Client) fetchList(ctx context.Context, method, path string, payload interface{}) ([]map[string]interface{}, error) {
	body, status, err := c.doJSONRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %s %s status %d", ErrRequestFailed, method, path, status)
	}
	return decodeList(body)
}

func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func decodeList(body []byte) ([]map[string]interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	if envelope, ok := raw.(map[string]interface{}); ok {
		data, exists := envelope["data"]
		if !exists {
			return nil, fmt.Errorf("%w: missing data field", ErrResponseInvalid)
		}
		raw = data
	}
	if raw == nil {
		return []map[string]interface{}{}, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected array", ErrResponseInvalid)
	}
	items := make([]map[string]interface{}, 0, len(list))
	for _, entry := range list {
		if item, ok := entry.(map[string]interface{}); ok {
			items = append(items, item)
		}
	}
	return items, nil
}
