package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	cload "github.com/shirou/gopsutil/v3/load"
	"go.uber.org/zap"

	"github.com/teamspeak-exporter/pkg/config"
	"github.com/teamspeak-exporter/pkg/logger"
	"github.com/teamspeak-exporter/pkg/metrics"
	"github.com/teamspeak-exporter/pkg/monitor"
)

// HostCollector 宿主机 CPU 使用率与负载采集器（可选，默认关闭）
type HostCollector struct {
	name    string
	cfg     config.HostCollectorConfig
	metrics monitor.HostCollectorMetrics
	agent   monitor.AgentMetrics

	cpuPercent func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	loadAvg    func(ctx context.Context) (*cload.AvgStat, error)
}

// NewHostCollector 创建宿主机采集器
func NewHostCollector(cfg config.HostCollectorConfig, factory *metrics.MetricFactory, agent monitor.AgentMetrics) *HostCollector {
	return &HostCollector{
		name: "host",
		cfg:  cfg,
		metrics: monitor.HostCollectorMetrics{
			UsageRatio: factory.NewHostCPUUsageRatio(),
			Load1:      factory.NewHostLoad1(),
			Load5:      factory.NewHostLoad5(),
			Load15:     factory.NewHostLoad15(),
		},
		agent:      agent,
		cpuPercent: cpu.PercentWithContext,
		loadAvg:    cload.AvgWithContext,
	}
}

// Name 返回采集器名称
func (c *HostCollector) Name() string { return c.name }

// Init 预检查CPU可用性
func (c *HostCollector) Init() error {
	if _, err := cpu.Counts(true); err != nil {
		logger.Error("failed to get CPU counts", zap.Error(err))
		return err
	}
	// interval=0 的首次调用只记录基准值
	_, _ = c.cpuPercent(context.Background(), 0, c.cfg.CollectPerCore)
	return nil
}

// Collect 采集 CPU 使用率与 1/5/15 分钟负载
func (c *HostCollector) Collect(ctx context.Context) error {
	start := time.Now()
	defer func() {
		c.agent.CollectDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}()

	usageList, err := c.cpuPercent(ctx, 0, c.cfg.CollectPerCore)
	if err != nil {
		c.agent.CollectErrors.WithLabelValues(c.name, "cpu").Inc()
		return fmt.Errorf("get cpu usage: %w", err)
	}
	if c.cfg.CollectPerCore {
		for i, usage := range usageList {
			c.metrics.UsageRatio.WithLabelValues(fmt.Sprintf("cpu%d", i)).Set(usage / 100)
		}
	} else if len(usageList) > 0 {
		c.metrics.UsageRatio.WithLabelValues("total").Set(usageList[0] / 100)
	}

	load, err := c.loadAvg(ctx)
	if err != nil {
		logger.Warn("failed to get load average", zap.Error(err))
		c.agent.CollectErrors.WithLabelValues(c.name, "load").Inc()
		return nil
	}
	c.metrics.Load1.Set(load.Load1)
	c.metrics.Load5.Set(load.Load5)
	c.metrics.Load15.Set(load.Load15)
	logger.Debug("collected host metrics",
		zap.Float64("load1", load.Load1),
		zap.Float64("load5", load.Load5),
		zap.Float64("load15", load.Load15))
	return nil
}

func (c *HostCollector) Close() error {
	return nil
}
