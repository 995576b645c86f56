package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teamspeak-exporter/pkg/config"
	"github.com/teamspeak-exporter/pkg/logger"
	"github.com/teamspeak-exporter/pkg/metrics"
	"github.com/teamspeak-exporter/pkg/monitor"
	"github.com/teamspeak-exporter/pkg/serverquery"
)

const (
	stepOpen   = "open"
	stepList   = "list"
	stepSelect = "select"
	stepFetch  = "fetch"
	stepParse  = "parse"

	// authLogEvery 连续认证失败时 error 级日志的最小间隔
	authLogEvery = time.Minute
)

// TeamSpeakCollector 每个周期连接 ServerQuery，逐个虚拟服务器读取 serverinfo 并写入 gauge
type TeamSpeakCollector struct {
	name    string
	cfg     config.TeamSpeakConfig
	metrics monitor.TeamSpeakCollectorMetrics
	agent   monitor.AgentMetrics

	newSession func(config.TeamSpeakConfig) querySession
	now        func() time.Time

	authFailures int
	lastAuthLog  time.Time
}

// NewTeamSpeakCollector 创建采集器并注册全部统计 gauge
func NewTeamSpeakCollector(cfg config.TeamSpeakConfig, factory *metrics.MetricFactory, agent monitor.AgentMetrics) (*TeamSpeakCollector, error) {
	stats, err := factory.NewVirtualServerMetrics()
	if err != nil {
		return nil, err
	}
	return &TeamSpeakCollector{
		name: "teamspeak",
		cfg:  cfg,
		metrics: monitor.TeamSpeakCollectorMetrics{
			Stats:          stats,
			VirtualServers: factory.NewVirtualServerCount(),
		},
		agent:      agent,
		newSession: newClientSession,
		now:        time.Now,
	}, nil
}

// Name 返回采集器名称
func (c *TeamSpeakCollector) Name() string { return c.name }

// Init 校验连接参数
func (c *TeamSpeakCollector) Init() error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("teamspeak collector: %w", err)
	}
	return nil
}

// Collect 执行一个采集周期
// 建连或枚举失败返回错误；单个虚拟服务器失败只记录日志，不影响其他服务器
func (c *TeamSpeakCollector) Collect(ctx context.Context) error {
	start := time.Now()
	defer func() {
		c.agent.CollectDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}()

	cycle := zap.String("cycle", uuid.NewString())
	logger.Debug("fetching metrics", cycle, zap.String("address", c.cfg.Address()))

	sess := c.newSession(c.cfg)
	if err := sess.open(ctx); err != nil {
		c.agent.CollectErrors.WithLabelValues(c.name, stepOpen).Inc()
		if errors.Is(err, serverquery.ErrAuthentication) {
			c.logAuthFailure(cycle, err)
		} else {
			logger.Error("failed to connect to serverquery", cycle, zap.String("step", stepOpen), zap.Error(err))
		}
		return fmt.Errorf("open serverquery session: %w", err)
	}
	c.authFailures = 0
	defer func() {
		if err := sess.close(); err != nil {
			logger.Debug("failed to close serverquery session", cycle, zap.Error(err))
		}
	}()

	servers, err := sess.listVirtualServers()
	if err != nil {
		c.agent.CollectErrors.WithLabelValues(c.name, stepList).Inc()
		logger.Error("failed to list virtual servers", cycle, zap.String("step", stepList), zap.Error(err))
		return fmt.Errorf("list virtual servers: %w", err)
	}
	c.metrics.VirtualServers.Set(float64(len(servers)))

	for _, server := range servers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		id, err := server.Int("virtualserver_id")
		if err != nil {
			c.agent.CollectErrors.WithLabelValues(c.name, stepList).Inc()
			logger.Warn("skipping virtual server without id", cycle, zap.String("step", stepList), zap.Error(err))
			continue
		}
		if err := c.collectVirtualServer(sess, cycle, id); errors.Is(err, serverquery.ErrConnection) {
			logger.Error("serverquery connection lost, skipping remaining virtual servers", cycle, zap.Int("virtualserver_id", id), zap.Error(err))
			break
		}
	}

	logger.Debug("collection cycle finished", cycle,
		zap.Int("virtualservers", len(servers)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// collectVirtualServer 读取单个虚拟服务器，解析完成后一次性写入
func (c *TeamSpeakCollector) collectVirtualServer(sess querySession, cycle zap.Field, id int) error {
	vs := zap.Int("virtualserver_id", id)

	if err := sess.selectVirtualServer(id); err != nil {
		c.agent.CollectErrors.WithLabelValues(c.name, stepSelect).Inc()
		logger.Error("failed to select virtual server", cycle, vs, zap.String("step", stepSelect), zap.Error(err))
		return err
	}

	info, err := sess.fetchInfo()
	if err != nil {
		c.agent.CollectErrors.WithLabelValues(c.name, stepFetch).Inc()
		logger.Error("failed to fetch serverinfo", cycle, vs, zap.String("step", stepFetch), zap.Error(err))
		return err
	}

	name, err := info.String("virtualserver_name")
	if err != nil {
		c.agent.CollectErrors.WithLabelValues(c.name, stepFetch).Inc()
		logger.Error("serverinfo has no virtual server name", cycle, vs, zap.String("step", stepFetch), zap.Error(err))
		return err
	}
	if !utf8.ValidString(name) {
		// 标签值必须是合法 UTF-8，否则 WithLabelValues 会 panic
		c.agent.CollectErrors.WithLabelValues(c.name, stepFetch).Inc()
		err := fmt.Errorf("%w: virtualserver_name is not valid UTF-8", serverquery.ErrProtocol)
		logger.Error("skipping virtual server with invalid name", cycle, vs,
			zap.String("step", stepFetch),
			zap.String("virtualserver_name", strings.ToValidUTF8(name, "\ufffd")),
			zap.Error(err))
		return err
	}

	values := make(map[string]float64, len(metrics.StatNames))
	for _, stat := range metrics.StatNames {
		v, err := info.Float(stat)
		if err != nil {
			// 缺失或非数值的字段保留上次的值
			c.agent.CollectErrors.WithLabelValues(c.name, stepParse).Inc()
			logger.Warn("skipping statistic", cycle, vs, zap.String("statistic", stat), zap.Error(err))
			continue
		}
		values[stat] = v
	}

	c.metrics.Stats.Publish(name, values)
	logger.Debug("published virtual server statistics", cycle, vs,
		zap.String("virtualserver_name", name),
		zap.Int("statistics", len(values)))
	return nil
}

// logAuthFailure 首次失败记 error，之后每 authLogEvery 最多一条 error，其余降为 debug
func (c *TeamSpeakCollector) logAuthFailure(cycle zap.Field, err error) {
	now := c.now()
	c.authFailures++
	fields := []zap.Field{cycle, zap.String("step", stepOpen), zap.Int("consecutive_failures", c.authFailures), zap.Error(err)}

	if c.authFailures == 1 || now.Sub(c.lastAuthLog) >= authLogEvery {
		c.lastAuthLog = now
		logger.Error("serverquery authentication failed", fields...)
		return
	}
	logger.Debug("serverquery authentication failed", fields...)
}

// Close 会话按周期关闭，这里无需释放资源
func (c *TeamSpeakCollector) Close() error {
	return nil
}
