package server

import (
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/pine_pulse/internal/config"
)

// NewHTTPServer 注册页面、报告生成、历史与健康检查路由
func NewHTTPServer(c config.ServerConfig, s *ReportService) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			opts = append(opts, http.Timeout(d))
		}
	}

	srv := http.NewServer(opts...)

	srv.HandleFunc("/", s.Index)
	srv.HandleFunc("/report", s.Report)
	srv.HandleFunc("/history", s.History)
	srv.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte("ok"))
	})

	return srv
}
