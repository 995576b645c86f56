package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewHostCPUUsageRatio 宿主机 CPU 使用率（0-1），cpu 标签为 "total" 或 "cpuN"
func (m *MetricFactory) NewHostCPUUsageRatio() *prometheus.GaugeVec {
	return promauto.With(m.reg).NewGaugeVec(prometheus.GaugeOpts{
		Name: "host_cpu_usage_ratio",
		Help: "Host CPU usage ratio",
	}, []string{"cpu"})
}

func (m *MetricFactory) NewHostLoad1() prometheus.Gauge {
	return m.newHostLoad("host_load1", "1 minute load average")
}

func (m *MetricFactory) NewHostLoad5() prometheus.Gauge {
	return m.newHostLoad("host_load5", "5 minute load average")
}

func (m *MetricFactory) NewHostLoad15() prometheus.Gauge {
	return m.newHostLoad("host_load15", "15 minute load average")
}

func (m *MetricFactory) newHostLoad(name, help string) prometheus.Gauge {
	return promauto.With(m.reg).NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}
