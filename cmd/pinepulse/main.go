package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-kratos/kratos/v2"
	klog "github.com/go-kratos/kratos/v2/log"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/iWorld-y/pine_pulse/internal/config"
	"github.com/iWorld-y/pine_pulse/internal/dataset"
	"github.com/iWorld-y/pine_pulse/internal/engine"
	"github.com/iWorld-y/pine_pulse/internal/logger"
	"github.com/iWorld-y/pine_pulse/internal/model"
	"github.com/iWorld-y/pine_pulse/internal/render"
	"github.com/iWorld-y/pine_pulse/internal/server"
	"github.com/iWorld-y/pine_pulse/internal/storage"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 服务名称
	Name = "pinepulse"
	// Version 版本号
	Version string
	// flagconf 配置文件路径
	flagconf string

	id, _ = os.Hostname()
)

func main() {
	root := &cobra.Command{
		Use:          Name,
		Short:        "Retail sales and inventory insight reports",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: --conf config.yaml")

	root.AddCommand(newReportCmd(), newServeCmd(), newDatasetsCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// app 启动时创建一次的服务句柄
type app struct {
	cfg    *config.Config
	engine *engine.Engine
	store  *storage.Storage
}

func setup(ctx context.Context) (*app, func(), error) {
	// 1. 加载配置
	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		return nil, nil, fmt.Errorf("无法加载配置文件: %w", err)
	}

	// 2. 初始化日志
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, nil, fmt.Errorf("无法初始化日志: %w", err)
	}

	// 3. 数据库，可选
	var store *storage.Storage
	if cfg.DB.Enabled() {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 将不保存历史与向量索引。", err)
		} else {
			store = s
			logger.Log.Info("已成功连接到数据库")
		}
	} else {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
	}

	// 4. LLM、向量化与限流
	eng, completer, err := engine.Build(ctx, cfg, store)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		completer.Close()
		if store != nil {
			store.Close()
		}
	}
	return &app{cfg: cfg, engine: eng, store: store}, cleanup, nil
}

func newReportCmd() *cobra.Command {
	var (
		presetName string
		file       string
		window     int
		nowFlag    string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a report from a preset dataset or a local file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (presetName == "") == (file == "") {
				return fmt.Errorf("exactly one of --dataset or --file is required")
			}

			now := time.Now()
			if nowFlag != "" {
				t, err := time.Parse(time.RFC3339, nowFlag)
				if err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
				now = t
			}

			ctx := cmd.Context()
			a, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if window == 0 {
				window = a.cfg.Report.WindowDays
			}
			if outDir == "" {
				outDir = a.cfg.Report.OutputDir
			}

			var table *model.Table
			if file != "" {
				table, err = dataset.LoadFile(file)
			} else {
				table, err = dataset.LoadPreset(a.cfg, presetName)
			}
			if err != nil {
				return err
			}

			report, err := a.engine.Generate(ctx, engine.Options{Table: table, WindowDays: window, Now: now})
			if err != nil {
				return err
			}

			render.Table(cmd.OutOrStdout(), report)

			path, err := render.WriteHTMLFile(outDir, report)
			if err != nil {
				return err
			}
			logger.Log.Infof("✅ 报告生成完毕: %s", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&presetName, "dataset", "", "preset dataset name from config")
	cmd.Flags().StringVar(&file, "file", "", "path to a .csv or .xlsx file")
	cmd.Flags().IntVar(&window, "window", 0, "time window in days (7, 14 or 30)")
	cmd.Flags().StringVar(&nowFlag, "now", "", "reference time in RFC3339, defaults to the current time")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory for the HTML report")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP report service",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			kl := klog.With(klog.NewStdLogger(os.Stdout),
				"ts", klog.DefaultTimestamp,
				"caller", klog.DefaultCaller,
				"service.id", id,
				"service.name", Name,
				"service.version", Version,
			)

			var history server.HistoryLister
			if a.store != nil {
				history = a.store
			}
			svc := server.NewReportService(a.cfg, a.engine, history, kl)
			hs := server.NewHTTPServer(a.cfg.Server, svc)

			app := kratos.New(
				kratos.ID(id),
				kratos.Name(Name),
				kratos.Version(Version),
				kratos.Metadata(map[string]string{}),
				kratos.Logger(kl),
				kratos.Server(hs),
			)
			logger.Log.Infof("HTTP 服务启动: %s", a.cfg.Server.Addr)
			return app.Run()
		},
	}
}

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List preset datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flagconf)
			if err != nil {
				return fmt.Errorf("无法加载配置文件: %w", err)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Name", "Path", "Status"})
			for _, d := range cfg.Datasets {
				status := "ok"
				if _, err := os.Stat(d.Path); err != nil {
					status = "missing"
				}
				table.Append([]string{d.Name, d.Path, status})
			}
			table.Render()
			return nil
		},
	}
}
