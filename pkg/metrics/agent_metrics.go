package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewAgentCollectErrorsTotal 创建「采集错误总数」指标
// 指标类型：Counter，进程重启后归零
// 标签说明：
//
//	collector: 采集器名称（如 "teamspeak"、"host"）
//	step: 出错的采集步骤（如 "open"、"list"、"select"、"fetch"、"parse"）
func (m *MetricFactory) NewAgentCollectErrorsTotal() *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_collect_errors_total",
		Help: "Total collection errors by collector and step",
	}, []string{"collector", "step"})
	m.reg.MustRegister(c)
	return c
}

// NewAgentCollectDurationSeconds 创建「单次采集耗时」直方图
// 分桶：0.01s ~ 5.12s 指数分布，覆盖本地与跨机房 ServerQuery 往返
func (m *MetricFactory) NewAgentCollectDurationSeconds() *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agent_collect_duration_seconds",
		Help:    "Collection cycle duration per collector",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"collector"})
	m.reg.MustRegister(h)
	return h
}
