package registers

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/teamspeak-exporter/pkg/collector"
	"github.com/teamspeak-exporter/pkg/config"
	"github.com/teamspeak-exporter/pkg/logger"
	"github.com/teamspeak-exporter/pkg/metrics"
	"github.com/teamspeak-exporter/pkg/monitor"
)

type Module struct {
	Enabled bool
	Name    string
	NewFunc func() (Collector, error)
}

// InitPromRegistry 创建指标注册器并注册采集器（调度由调用方 Start）
// 返回值：
//
//	*prometheus.Registry  供 /metrics 暴露
//	Agent                 Start 后周期执行采集器，退出时调用 Shutdown
//	error                 注册失败（如重复注册）
func InitPromRegistry(cfg *config.Config) (*prometheus.Registry, Agent, error) {
	promReg := prometheus.NewRegistry()
	// 仅注册进程指标（可选），不注册Go指标
	if cfg.Monitor.EnableProcess {
		promReg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}

	metricFactory := metrics.NewMetricFactory(metrics.NewPromRegistry(promReg))
	agent := NewAgent(cfg.Monitor.Interval)

	if _, err := RegisterCollectors(agent, cfg, metricFactory); err != nil {
		logger.Error("failed to register collectors", zap.Error(err))
		return nil, nil, err
	}
	return promReg, agent, nil
}

// RegisterCollectors 采集器注册统一入口，新增采集器只需在 modules 列表添加一条
func RegisterCollectors(agent Agent, cfg *config.Config, metricFactory *metrics.MetricFactory) ([]Collector, error) {
	agentMetrics := monitor.AgentMetrics{
		CollectErrors:   metricFactory.NewAgentCollectErrorsTotal(),
		CollectDuration: metricFactory.NewAgentCollectDurationSeconds(),
	}

	modules := []Module{
		{
			Enabled: true,
			Name:    "teamspeak",
			NewFunc: func() (Collector, error) {
				return collector.NewTeamSpeakCollector(cfg.TeamSpeak, metricFactory, agentMetrics)
			},
		},
		{
			Enabled: cfg.Monitor.Collectors.Host.Enable,
			Name:    "host",
			NewFunc: func() (Collector, error) {
				return collector.NewHostCollector(cfg.Monitor.Collectors.Host, metricFactory, agentMetrics), nil
			},
		},
	}

	var registered []Collector
	for _, m := range modules {
		if !m.Enabled {
			logger.Debug("collector disabled", zap.String("name", m.Name))
			continue
		}
		c, err := m.NewFunc()
		if err != nil {
			return nil, fmt.Errorf("create collector %s: %w", m.Name, err)
		}
		agent.Register(c)
		registered = append(registered, c)
		logger.Debug("registered collector", zap.String("name", m.Name))
	}

	var names []string
	for _, c := range registered {
		names = append(names, c.Name())
	}
	logger.Info("all enabled collectors registered", zap.Strings("enabled_collectors", names))
	return registered, nil
}
