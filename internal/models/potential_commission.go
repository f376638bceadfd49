package models

// PotentialCommission 潜在佣金计算结果（单个工单）
// 说明：金额可能为零或负数，聚合时由调用方裁剪。
type PotentialCommission struct {
	JobID  uint  `json:"job_id"`
	Amount Money `json:"amount"`
}
