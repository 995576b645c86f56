package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/teamspeak-exporter/pkg/metrics"
)

// -------------------------- 采集器公共指标 --------------------------
type AgentMetrics struct {
	CollectErrors   *prometheus.CounterVec   // 采集错误数（按采集器/步骤）
	CollectDuration *prometheus.HistogramVec // 单次采集耗时
}

// -------------------------- TeamSpeak 采集器指标 --------------------------
type TeamSpeakCollectorMetrics struct {
	Stats          *metrics.VirtualServerMetrics // teamspeak_<stat>{virtualserver_name}
	VirtualServers prometheus.Gauge              // 最近一次枚举到的虚拟服务器数
}

// -------------------------- 宿主机采集器指标 --------------------------
type HostCollectorMetrics struct {
	UsageRatio *prometheus.GaugeVec // CPU使用率（0-1）
	Load1      prometheus.Gauge     // 1分钟负载
	Load5      prometheus.Gauge     // 5分钟负载
	Load15     prometheus.Gauge     // 15分钟负载
}
