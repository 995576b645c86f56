package registers

import "context"

// State 调度循环状态
type State int32

const (
	StateIdle State = iota
	StatePolling
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	default:
		return "idle"
	}
}

// Agent 采集调度器（注册采集器、串行周期执行、优雅停止）
type Agent interface {
	Register(collector Collector)       // 注册采集器
	Start(ctx context.Context) error    // 初始化并启动采集循环（非阻塞）
	Shutdown(ctx context.Context) error // 停止循环并关闭采集器
	State() State                       // 当前是否处于采集中
}

// Collector 采集器核心接口（所有采集器必须实现）
type Collector interface {
	Name() string                      // 采集器名称（唯一标识）
	Init() error                       // 初始化（预检查资源）
	Collect(ctx context.Context) error // 执行一个采集周期（更新指标）
	Close() error                      // 关闭（释放资源）
}
