package queue

import (
	"encoding/json"
	"time"

	"github.com/roofdash/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReconcileRun 对账任务
	TaskReconcileRun = constants.TaskReconcileRun
)

// 对账触发来源
const (
	ReconcileTriggerManual   = "manual"
	ReconcileTriggerSchedule = "schedule"
)

// ReconcileRunPayload 对账任务载荷
type ReconcileRunPayload struct {
	Trigger     string    `json:"trigger"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewReconcileRunTask 创建对账任务
func NewReconcileRunTask(payload ReconcileRunPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileRun, body), nil
}

// ParseReconcileRunPayload 解析对账任务载荷
func ParseReconcileRunPayload(task *asynq.Task) (ReconcileRunPayload, error) {
	var payload ReconcileRunPayload
	if task == nil || len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}
