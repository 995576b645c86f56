package registers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teamspeak-exporter/pkg/logger"
)

const agentName = "collector-agent"

// AgentImpl 实现 Agent：单 goroutine 串行执行采集周期，周期之间固定休眠 interval
type AgentImpl struct {
	collectors []Collector
	interval   time.Duration
	state      atomic.Int32

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

// NewAgent 创建采集调度器
func NewAgent(interval time.Duration) *AgentImpl {
	return &AgentImpl{
		collectors: make([]Collector, 0),
		interval:   interval,
	}
}

// Register 注册采集器
func (r *AgentImpl) Register(c Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors = append(r.collectors, c)
}

// State 返回当前调度状态
func (r *AgentImpl) State() State {
	return State(r.state.Load())
}

// InitAll 初始化所有采集器，任一失败即返回
func (r *AgentImpl) InitAll() error {
	for _, coll := range r.collectors {
		if err := coll.Init(); err != nil {
			return fmt.Errorf("collector %s init failed: %w", coll.Name(), err)
		}
		logger.Debug("collector initialized successfully", zap.String("name", coll.Name()))
	}
	return nil
}

// Start 初始化采集器并启动采集循环（首个周期立即执行）
func (r *AgentImpl) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		return errors.New("collector agent already started")
	}
	if err := r.InitAll(); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	logger.Info("collector agent started", zap.String("name", agentName),
		zap.Duration("interval", r.interval),
		zap.Int("registered_collectors", len(r.collectors)))

	go r.loop(runCtx)
	return nil
}

// loop 采集结束后才开始计时，周期之间不会重叠
func (r *AgentImpl) loop(ctx context.Context) {
	defer close(r.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("collector agent stopped", zap.String("name", agentName), zap.Error(ctx.Err()))
			return
		case <-timer.C:
			r.state.Store(int32(StatePolling))
			if err := r.CollectAll(ctx); err != nil {
				logger.Warn("collection cycle failed", zap.String("name", agentName), zap.Error(err))
			}
			r.state.Store(int32(StateIdle))
			timer.Reset(r.interval)
		}
	}
}

// Shutdown 停止采集循环，等待当前周期结束后关闭所有采集器
func (r *AgentImpl) Shutdown(ctx context.Context) error {
	logger.Info("starting to shutdown collector agent", zap.String("name", agentName))

	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("wait for collection cycle: %w", ctx.Err())
		}
	}
	return r.CloseAll()
}

// CollectAll 依次执行所有采集器，错误合并返回
func (r *AgentImpl) CollectAll(ctx context.Context) error {
	var errs []error
	for _, collector := range r.collectors {
		if err := collector.Collect(ctx); err != nil {
			logger.Warn("collection failed", zap.String("name", collector.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", collector.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// CloseAll 关闭所有采集器，不因单个失败中断
func (r *AgentImpl) CloseAll() error {
	var errs []error
	for _, collector := range r.collectors {
		logger.Debug("closing collector", zap.String("name", collector.Name()))
		if err := collector.Close(); err != nil {
			logger.Error("failed to close collector", zap.String("name", collector.Name()), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
