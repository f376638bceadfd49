package service

import (
	"strings"

	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/models"
)

// ClassifyJobStatus 根据工单状态划分生命周期
// Finalized -> finalized；Lost - * -> lost；其余（含空/未知状态）-> active
func ClassifyJobStatus(status string) string {
	switch strings.TrimSpace(status) {
	case constants.JobStatusFinalized:
		return constants.JobLifecycleFinalized
	case constants.JobStatusLostReclaimable, constants.JobStatusLostUnreclaimable:
		return constants.JobLifecycleLost
	default:
		return constants.JobLifecycleActive
	}
}

// ClassifyJob 划分工单生命周期
func ClassifyJob(job models.Job) string {
	return ClassifyJobStatus(job.Status)
}

// IsJobFinalized 工单是否已完结
func IsJobFinalized(job models.Job) bool {
	return ClassifyJob(job) == constants.JobLifecycleFinalized
}

// IsJobActive 工单是否进行中
func IsJobActive(job models.Job) bool {
	return ClassifyJob(job) == constants.JobLifecycleActive
}
