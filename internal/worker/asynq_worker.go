package worker

import (
	"context"
	"encoding/json"

	"github.com/keyan-next/internal/logger"
	"github.com/keyan-next/internal/provider"
	"github.com/keyan-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskStatsRefresh, c.handleStatsRefresh)
}

func (c *Consumer) handleStatsRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_stats_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StatsRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_stats_refresh_unmarshal_failed", "error", err)
		return err
	}
	if err := c.StatsService.Refresh(ctx); err != nil {
		logger.Warnw("worker_stats_refresh_failed", "reason", payload.Reason, "error", err)
		return err
	}
	logger.Infow("worker_stats_refresh_done", "reason", payload.Reason)
	return nil
}
