package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teamspeak-exporter/cmd/server"
	"github.com/teamspeak-exporter/pkg/config"
	"github.com/teamspeak-exporter/pkg/logger"
	"github.com/teamspeak-exporter/pkg/registers"
	"github.com/teamspeak-exporter/pkg/signal"
	"github.com/teamspeak-exporter/pkg/util"
)

const shutdownTimeout = 10 * time.Second

var defaultCfg = config.NewDefaultConfig()

// NewRootCmd 创建根命令并注册分组 flag
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "teamspeak-exporter",
		Short:        "Prometheus exporter for TeamSpeak 3 virtual server statistics (ServerQuery)",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfigWithCli(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "-> Optional YAML config file | 配置文件路径（可选）")
	initTeamSpeakFlags(root)
	initServerFlags(root)
	initMonitorFlags(root)
	initLogFlags(root)
	return root
}

func Execute() {
	root := NewRootCmd()
	cobra.CheckErr(root.ExecuteContext(context.Background()))
}

func runServer(ctx context.Context, cfg *config.Config) error {
	if _, err := logger.InitLogger(&cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	util.PrintBanner(os.Stdout, "TS3 Exporter", "ColorBlue")
	logSettings(cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	registry, agent, err := registers.InitPromRegistry(cfg)
	if err != nil {
		return fmt.Errorf("init metric registry: %w", err)
	}

	httpServer := server.NewHTTPServer(&cfg.Server, registry, agent)
	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("start HTTP server: %w", err)
	}

	if err := agent.Start(ctx); err != nil {
		_ = httpServer.Shutdown()
		return fmt.Errorf("start collector agent: %w", err)
	}

	// 关闭顺序：HTTP服务 → 采集循环
	return signal.WaitForShutdown(ctx, shutdownTimeout, func(ctx context.Context) error {
		return errors.Join(httpServer.Shutdown(), agent.Shutdown(ctx))
	})
}

// logSettings 启动时输出最终生效的连接参数
func logSettings(cfg *config.Config) {
	logger.Info("teamspeak settings",
		zap.String("host", cfg.TeamSpeak.Host),
		zap.Int("port", cfg.TeamSpeak.Port),
		zap.String("username", cfg.TeamSpeak.Username),
		zap.String("password", maskPassword(cfg.TeamSpeak.Password, cfg.TeamSpeak.ShowPassword)),
		zap.Duration("timeout", cfg.TeamSpeak.Timeout))
	logger.Info("exporter settings",
		zap.Int("metrics_port", cfg.Server.Port),
		zap.Duration("interval", cfg.Monitor.Interval),
		zap.Bool("host_collector", cfg.Monitor.Collectors.Host.Enable))
}

// maskPassword 默认不输出明文密码
func maskPassword(password string, show bool) string {
	if show || password == "" {
		return password
	}
	return strings.Repeat("*", 8)
}
