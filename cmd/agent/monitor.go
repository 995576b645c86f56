package agent

import (
	"github.com/spf13/cobra"
)

func initMonitorFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.Duration("monitor.interval", defaultCfg.Monitor.Interval, "-> Sleep between collection cycles | 采集间隔")
	f.Bool("monitor.enable-process", defaultCfg.Monitor.EnableProcess, "-> Expose exporter process metrics | 暴露进程指标")

	f.Bool("collectors.host.enable", defaultCfg.Monitor.Collectors.Host.Enable, "-> Enable host CPU/load collector | 启用宿主机采集器")
	f.Bool("collectors.host.per-core", defaultCfg.Monitor.Collectors.Host.CollectPerCore, "-> Per-core CPU usage | 按核心采集CPU使用率")
}
