package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	runStateKey = "reconcile:last_run"
	runLockKey  = "reconcile:lock"
)

// releaseLockScript 仅持有者可释放锁
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunState 最近一次对账运行摘要
type RunState struct {
	RunID         string    `json:"run_id"`
	Result        string    `json:"result"`
	GeneratedAt   time.Time `json:"generated_at"`
	DurationMS    int64     `json:"duration_ms"`
	DegradedUsers int       `json:"degraded_users"`
	OrphanRecords int       `json:"orphan_records"`
	Error         string    `json:"error,omitempty"`
}

// SetRunState 写入最近一次对账摘要
func SetRunState(ctx context.Context, state *RunState, ttl time.Duration) error {
	if state == nil {
		return nil
	}
	return SetJSON(ctx, runStateKey, state, ttl)
}

// GetRunState 读取最近一次对账摘要
func GetRunState(ctx context.Context) (*RunState, bool, error) {
	var state RunState
	hit, err := GetJSON(ctx, runStateKey, &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// AcquireRunLock 获取对账互斥锁
// 未启用 Redis 时视为获取成功。返回的 release 可重复调用。
func AcquireRunLock(ctx context.Context, ttl time.Duration) (bool, func(), error) {
	noop := func() {}
	if !Enabled() {
		return true, noop, nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	token := uuid.NewString()
	key := buildKey(runLockKey)
	ok, err := redisClient.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, noop, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return false, noop, nil
	}
	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseLockScript.Run(releaseCtx, redisClient, []string{key}, token).Err()
	}
	return true, release, nil
}
