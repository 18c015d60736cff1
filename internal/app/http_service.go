package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// HTTPService 以 Service 形态封装 HTTP 监听，接入统一的启停编排
type HTTPService struct {
	srv *http.Server
}

// NewHTTPService 创建 HTTP 服务
func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	return &HTTPService{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Name 服务名称
func (s *HTTPService) Name() string {
	return "http"
}

// Start 启动监听，正常关闭不算错误
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return errors.New("http server not initialized")
	}
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop 优雅停机，等待在途请求完成
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
