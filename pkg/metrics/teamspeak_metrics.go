package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/teamspeak-exporter/pkg/logger"
)

const (
	// StatPrefix 虚拟服务器统计指标名前缀
	StatPrefix = "teamspeak_"
	// VirtualServerLabel 唯一标签，取值为虚拟服务器名称
	VirtualServerLabel = "virtualserver_name"
)

// StatNames serverinfo 中导出的统计字段（顺序即注册顺序）
var StatNames = []string{
	"connection_bandwidth_received_last_minute_total",
	"connection_bandwidth_received_last_second_total",
	"connection_bandwidth_sent_last_minute_total",
	"connection_bandwidth_sent_last_second_total",
	"connection_bytes_received_control",
	"connection_bytes_received_keepalive",
	"connection_bytes_received_speech",
	"connection_bytes_received_total",
	"connection_bytes_sent_control",
	"connection_bytes_sent_keepalive",
	"connection_bytes_sent_speech",
	"connection_bytes_sent_total",
	"connection_filetransfer_bandwidth_received",
	"connection_filetransfer_bandwidth_sent",
	"connection_filetransfer_bytes_received_total",
	"connection_filetransfer_bytes_sent_total",
	"connection_packets_received_control",
	"connection_packets_received_keepalive",
	"connection_packets_received_speech",
	"connection_packets_received_total",
	"connection_packets_sent_control",
	"connection_packets_sent_keepalive",
	"connection_packets_sent_speech",
	"connection_packets_sent_total",
	"virtualserver_channelsonline",
	"virtualserver_client_connections",
	"virtualserver_clientsonline",
	"virtualserver_maxclients",
	"virtualserver_month_bytes_downloaded",
	"virtualserver_month_bytes_uploaded",
	"virtualserver_query_client_connections",
	"virtualserver_queryclientsonline",
	"virtualserver_reserved_slots",
	"virtualserver_total_bytes_downloaded",
	"virtualserver_total_bytes_uploaded",
	"virtualserver_total_packetloss_control",
	"virtualserver_total_packetloss_keepalive",
	"virtualserver_total_packetloss_speech",
	"virtualserver_total_packetloss_total",
	"virtualserver_total_ping",
	"virtualserver_uptime",
}

// VirtualServerMetrics 每个统计字段一个 GaugeVec，进程生命周期内只创建一次
type VirtualServerMetrics struct {
	gauges map[string]*prometheus.GaugeVec
}

// NewVirtualServerMetrics 注册全部统计 gauge，重复注册返回错误（启动期致命）
func (m *MetricFactory) NewVirtualServerMetrics() (*VirtualServerMetrics, error) {
	v := &VirtualServerMetrics{gauges: make(map[string]*prometheus.GaugeVec, len(StatNames))}
	for _, stat := range StatNames {
		name := StatPrefix + stat
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: name,
		}, []string{VirtualServerLabel})
		if err := m.reg.Register(g); err != nil {
			return nil, fmt.Errorf("register gauge %s: %w", name, err)
		}
		v.gauges[stat] = g
		logger.Info("initialized gauge", zap.String("metric", name))
	}
	return v, nil
}

// Set 写入单个样本，后写覆盖先写；未知统计名属于程序错误
func (v *VirtualServerMetrics) Set(stat, virtualServer string, value float64) {
	g, ok := v.gauges[stat]
	if !ok {
		panic(fmt.Sprintf("metrics: unknown statistic %q", stat))
	}
	g.WithLabelValues(virtualServer).Set(value)
}

// Publish 按 StatNames 顺序写入同一虚拟服务器一次快照中的值，不在 StatNames 中的键被忽略
func (v *VirtualServerMetrics) Publish(virtualServer string, values map[string]float64) {
	for _, stat := range StatNames {
		if value, ok := values[stat]; ok {
			v.Set(stat, virtualServer, value)
		}
	}
}

// NewVirtualServerCount 最近一次枚举到的虚拟服务器数量
func (m *MetricFactory) NewVirtualServerCount() prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "teamspeak_exporter_virtualservers",
		Help: "Number of virtual servers returned by the last successful serverlist",
	})
	m.reg.MustRegister(g)
	return g
}
