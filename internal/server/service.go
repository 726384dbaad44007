package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/pine_pulse/internal/analysis"
	"github.com/iWorld-y/pine_pulse/internal/config"
	"github.com/iWorld-y/pine_pulse/internal/dataset"
	"github.com/iWorld-y/pine_pulse/internal/engine"
	"github.com/iWorld-y/pine_pulse/internal/model"
	"github.com/iWorld-y/pine_pulse/internal/render"
)

//go:embed assets/*
var assets embed.FS

var indexTpl = template.Must(template.ParseFS(assets, "assets/index.html"))

const (
	// ReasonNoDataset 既没有上传文件也没有选择预置数据集
	ReasonNoDataset = "NO_DATASET"
	// ReasonHistoryDisabled 未配置数据库
	ReasonHistoryDisabled = "HISTORY_DISABLED"
	// ReasonUploadTooLarge 请求体超过上限
	ReasonUploadTooLarge = "UPLOAD_TOO_LARGE"

	maxUploadSize   = 32 << 20
	maxMemory       = 8 << 20
	defaultPageSize = 20
	maxHistoryLimit = 100
)

// ReportGenerator 报告生成
type ReportGenerator interface {
	Generate(ctx context.Context, opts engine.Options) (*model.Report, error)
}

// HistoryLister 报告历史查询
type HistoryLister interface {
	ListRuns(ctx context.Context, limit int) ([]model.ReportRun, error)
}

// ReportService HTTP 页面与接口
type ReportService struct {
	cfg       *config.Config
	generator ReportGenerator
	history   HistoryLister // 为 nil 时 /history 不可用
	maxUpload int64
	log       *log.Helper
}

func NewReportService(cfg *config.Config, generator ReportGenerator, history HistoryLister, logger log.Logger) *ReportService {
	return &ReportService{
		cfg:       cfg,
		generator: generator,
		history:   history,
		maxUpload: maxUploadSize,
		log:       log.NewHelper(logger),
	}
}

// Index 数据源与时间窗口选择页
func (s *ReportService) Index(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.URL.Path != "/" {
		nethttp.NotFound(w, r)
		return
	}

	presets := make([]string, 0, len(s.cfg.Datasets))
	for _, d := range s.cfg.Datasets {
		presets = append(presets, d.Name)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTpl.Execute(w, map[string]any{
		"Presets":       presets,
		"Windows":       analysis.Windows,
		"DefaultWindow": s.cfg.Report.WindowDays,
	})
	if err != nil {
		s.log.Errorf("render index: %v", err)
	}
}

// Report 根据上传文件或预置数据集生成报告
func (s *ReportService) Report(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodPost {
		w.Header().Set("Allow", nethttp.MethodPost)
		nethttp.Error(w, "method not allowed", nethttp.StatusMethodNotAllowed)
		return
	}

	r.Body = nethttp.MaxBytesReader(w, r.Body, s.maxUpload)
	table, window, err := s.parseRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, err := s.generator.Generate(r.Context(), engine.Options{
		Table:      table,
		WindowDays: window,
		Now:        time.Now(),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.HTML(w, report); err != nil {
		s.log.Errorf("render report %s: %v", report.RunID, err)
	}
}

func (s *ReportService) parseRequest(r *nethttp.Request) (*model.Table, int, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil && err != nethttp.ErrNotMultipart {
		var tooLarge *nethttp.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, 0, errors.New(nethttp.StatusRequestEntityTooLarge, ReasonUploadTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
		}
		return nil, 0, errors.BadRequest("INVALID_FORM", err.Error())
	}

	window, err := strconv.Atoi(r.FormValue("window"))
	if err != nil {
		window = s.cfg.Report.WindowDays
	}
	if err := analysis.ValidateWindow(window); err != nil {
		return nil, 0, err
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, 0, fmt.Errorf("read upload: %w", err)
		}
		table, err := dataset.LoadBytes(header.Filename, data)
		return table, window, err
	}

	preset := r.FormValue("preset")
	if preset == "" {
		return nil, 0, errors.BadRequest(ReasonNoDataset, "upload a file or choose a preset dataset")
	}
	table, err := dataset.LoadPreset(s.cfg, preset)
	return table, window, err
}

// History 最近的报告记录
func (s *ReportService) History(w nethttp.ResponseWriter, r *nethttp.Request) {
	if s.history == nil {
		s.writeError(w, errors.ServiceUnavailable(ReasonHistoryDisabled, "report history requires a database"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	runs, err := s.history.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []model.ReportRun{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"runs": runs})
}

// writeError 4xx 返回 kratos 错误原因，其余按 500 处理
func (s *ReportService) writeError(w nethttp.ResponseWriter, err error) {
	e := errors.FromError(err)
	code := int(e.Code)
	if code < 400 || code >= 600 {
		code = nethttp.StatusInternalServerError
	}
	if code >= 500 {
		s.log.Errorf("request failed: %v", err)
	} else {
		s.log.Warnf("bad request: %s %s", e.Reason, e.Message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"reason":  e.Reason,
		"message": e.Message,
	})
}
