package app

import (
	"os"
	"time"

	"github.com/keyan-next/internal/config"
	"github.com/keyan-next/internal/logger"

	"go.uber.org/zap"
)

// 运行模式：同进程可只跑 API、只跑 worker，或两者都跑
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// withDefaults 补齐未设置的启动参数
func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}
