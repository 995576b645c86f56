package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	cload "github.com/shirou/gopsutil/v3/load"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamspeak-exporter/pkg/config"
	"github.com/teamspeak-exporter/pkg/metrics"
)

func newTestHostCollector(cfg config.HostCollectorConfig, usage []float64, errOnCPU, errOnLoad error) *HostCollector {
	factory := metrics.NewMetricFactory(metrics.NewPromRegistry(prometheus.NewRegistry()))
	collr := NewHostCollector(cfg, factory, newAgentMetrics(factory))
	collr.cpuPercent = func(context.Context, time.Duration, bool) ([]float64, error) {
		return usage, errOnCPU
	}
	collr.loadAvg = func(context.Context) (*cload.AvgStat, error) {
		if errOnLoad != nil {
			return nil, errOnLoad
		}
		return &cload.AvgStat{Load1: 0.5, Load5: 0.75, Load15: 1.5}, nil
	}
	return collr
}

func TestHostCollector_Collect(t *testing.T) {
	collr := newTestHostCollector(config.HostCollectorConfig{}, []float64{42}, nil, nil)

	require.NoError(t, collr.Collect(context.Background()))

	assert.Equal(t, 0.42, testutil.ToFloat64(collr.metrics.UsageRatio.WithLabelValues("total")))
	assert.Equal(t, 0.5, testutil.ToFloat64(collr.metrics.Load1))
	assert.Equal(t, 0.75, testutil.ToFloat64(collr.metrics.Load5))
	assert.Equal(t, 1.5, testutil.ToFloat64(collr.metrics.Load15))
}

func TestHostCollector_CollectPerCore(t *testing.T) {
	collr := newTestHostCollector(config.HostCollectorConfig{CollectPerCore: true}, []float64{10, 20}, nil, nil)

	require.NoError(t, collr.Collect(context.Background()))

	assert.Equal(t, 0.1, testutil.ToFloat64(collr.metrics.UsageRatio.WithLabelValues("cpu0")))
	assert.Equal(t, 0.2, testutil.ToFloat64(collr.metrics.UsageRatio.WithLabelValues("cpu1")))
	assert.Equal(t, 2, testutil.CollectAndCount(collr.metrics.UsageRatio))
}

func TestHostCollector_Errors(t *testing.T) {
	t.Run("cpu failure", func(t *testing.T) {
		collr := newTestHostCollector(config.HostCollectorConfig{}, nil, errors.New("boom"), nil)
		assert.Error(t, collr.Collect(context.Background()))
		assert.Equal(t, 1.0, testutil.ToFloat64(collr.agent.CollectErrors.WithLabelValues("host", "cpu")))
	})

	t.Run("load failure is counted only", func(t *testing.T) {
		collr := newTestHostCollector(config.HostCollectorConfig{}, []float64{1}, nil, errors.New("not implemented"))
		assert.NoError(t, collr.Collect(context.Background()))
		assert.Equal(t, 1.0, testutil.ToFloat64(collr.agent.CollectErrors.WithLabelValues("host", "load")))
	})
}
