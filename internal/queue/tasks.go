package queue

import (
	"encoding/json"

	"github.com/keyan-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskStatsRefresh 统计快照刷新任务
	TaskStatsRefresh = constants.TaskStatsRefresh
)

// StatsRefreshPayload 统计刷新任务载荷
type StatsRefreshPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewStatsRefreshTask 创建统计刷新任务
func NewStatsRefreshTask(payload StatsRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsRefresh, body), nil
}
