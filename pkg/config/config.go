package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var valid = validator.New()

// Config 全局配置结构体（聚合所有核心模块）
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server" comment:"指标HTTP服务配置"`
	TeamSpeak TeamSpeakConfig `yaml:"teamspeak" mapstructure:"teamspeak" comment:"TeamSpeak ServerQuery 连接配置"`
	Monitor   MonitorConfig   `yaml:"monitor" mapstructure:"monitor" comment:"监控采集配置"`
	Log       ZapLogConfig    `yaml:"log" mapstructure:"log" comment:"日志配置"`
}

// ServerConfig 指标HTTP服务配置（超时统一为time.Duration，支持"30s"解析）
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port" env:"METRICS_PORT" validate:"min=1,max=65535" comment:"/metrics 监听端口"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"required,gt=0" comment:"读取超时时间（如5s）"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"required,gt=0" comment:"写入超时时间（如10s）"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"required,gt=0" comment:"空闲连接超时时间（如15s）"`
}

// TeamSpeakConfig ServerQuery 连接参数，启动时解析一次，运行期不可变
type TeamSpeakConfig struct {
	Host         string        `yaml:"host" mapstructure:"host" env:"TEAMSPEAK_HOST" validate:"required" comment:"ServerQuery 主机名或IP"`
	Port         int           `yaml:"port" mapstructure:"port" env:"TEAMSPEAK_PORT" validate:"min=1,max=65535" comment:"ServerQuery 端口"`
	Username     string        `yaml:"username" mapstructure:"username" env:"TEAMSPEAK_USERNAME" validate:"required" comment:"ServerQuery 用户名"`
	Password     string        `yaml:"password" mapstructure:"password" env:"TEAMSPEAK_PASSWORD" comment:"ServerQuery 密码"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"required,gt=0" comment:"建连/单次请求超时"`
	ShowPassword bool          `yaml:"show_password" mapstructure:"show_password" comment:"启动时是否打印明文密码"`
}

// Address 返回 host:port 形式的 ServerQuery 地址
func (t TeamSpeakConfig) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Addr 返回 HTTP 监听地址（":port"）
func (s ServerConfig) Addr() string {
	return net.JoinHostPort("", strconv.Itoa(s.Port))
}

// MonitorConfig 监控采集全局配置
type MonitorConfig struct {
	Interval      time.Duration   `yaml:"interval" mapstructure:"interval" validate:"required,gt=0" comment:"两次采集之间的休眠间隔（如5s）" default:"5s"`
	EnableProcess bool            `yaml:"enable_process" mapstructure:"enable_process" comment:"是否暴露exporter自身进程指标" default:"true"`
	Collectors    CollectorConfig `yaml:"collectors" mapstructure:"collectors" comment:"可选采集器配置"`
}

// CollectorConfig 可选采集器配置
type CollectorConfig struct {
	Host HostCollectorConfig `yaml:"host" mapstructure:"host" comment:"宿主机 CPU/负载 采集器"`
}

// HostCollectorConfig 宿主机采集器配置
type HostCollectorConfig struct {
	Enable         bool `yaml:"enable" mapstructure:"enable" comment:"是否启用宿主机采集器" default:"false"`
	CollectPerCore bool `yaml:"collect_per_core" mapstructure:"collect_per_core" comment:"是否按每核心采集CPU使用率" default:"false"`
}

// ZapLogConfig 日志配置
type ZapLogConfig struct {
	Level     string `yaml:"level" mapstructure:"level" validate:"required,oneof=debug info warn error" comment:"日志级别" default:"info"`
	Format    string `yaml:"format" mapstructure:"format" validate:"required,oneof=json console" comment:"控制台日志格式（json/console）" default:"console"`
	Path      string `yaml:"path" mapstructure:"path" comment:"日志存储路径，为空时仅输出到控制台" default:"./logs"`
	MaxSize   int    `yaml:"max_size" mapstructure:"max_size" validate:"gt=0" comment:"单个日志文件最大大小（MB）" default:"100"`
	MaxBackup int    `yaml:"max_backup" mapstructure:"max_backup" validate:"gte=0" comment:"日志文件最大备份数（0表示按天数清理）" default:"0"`
	MaxAge    int    `yaml:"max_age" mapstructure:"max_age" validate:"gte=0" comment:"日志文件最大保存天数" default:"7"`
}

// NewDefaultConfig 创建默认配置（所有字段兜底，避免空指针/非法值）
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8000,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  15 * time.Second,
		},
		TeamSpeak: TeamSpeakConfig{
			Host:     "localhost",
			Port:     10011,
			Username: "serveradmin",
			Password: "",
			Timeout:  5 * time.Second,
		},
		Monitor: MonitorConfig{
			Interval:      5 * time.Second,
			EnableProcess: true,
			Collectors: CollectorConfig{
				Host: HostCollectorConfig{
					Enable:         false,
					CollectPerCore: false,
				},
			},
		},
		Log: ZapLogConfig{
			Level:     "info",
			Format:    "console",
			Path:      "./logs",
			MaxSize:   100,
			MaxBackup: 0,
			MaxAge:    7,
		},
	}
}

// legacyFlagKeys 兼容原有命令行参数名（--ts3host 等）到配置键的映射
var legacyFlagKeys = map[string]string{
	"ts3host":         "teamspeak.host",
	"ts3port":         "teamspeak.port",
	"ts3username":     "teamspeak.username",
	"ts3password":     "teamspeak.password",
	"ts3timeout":      "teamspeak.timeout",
	"ts3showpassword": "teamspeak.show_password",
	"metricsport":     "server.port",
}

// envOverrides 环境变量覆盖（优先级高于命令行参数）
var envOverrides = map[string]string{
	"teamspeak.host":     "TEAMSPEAK_HOST",
	"teamspeak.port":     "TEAMSPEAK_PORT",
	"teamspeak.username": "TEAMSPEAK_USERNAME",
	"teamspeak.password": "TEAMSPEAK_PASSWORD",
	"server.port":        "METRICS_PORT",
}

// FlagKey 返回命令行参数对应的配置键
// 例：ts3host -> teamspeak.host，collectors.host.per-core -> monitor.collectors.host.collect_per_core
func FlagKey(name string) string {
	if key, ok := legacyFlagKeys[name]; ok {
		return key
	}
	switch name {
	case "collectors.host.enable":
		return "monitor.collectors.host.enable"
	case "collectors.host.per-core":
		return "monitor.collectors.host.collect_per_core"
	}
	return strings.ReplaceAll(name, "-", "_")
}

// LoadConfigWithCli 加载配置（优先级：环境变量 > 命令行参数 > 配置文件 > 默认值）
func LoadConfigWithCli(cmd *cobra.Command) (*Config, error) {
	cfg := NewDefaultConfig()
	v := viper.New()

	// 1. 绑定 Cobra Flags → Viper（flag 默认值作为 viper 默认值参与合并）
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" || f.Name == "help" {
			return
		}
		if err := v.BindPFlag(FlagKey(f.Name), f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	// 2. 解析配置文件 (--config)
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	// 3. 绑定环境变量 ENV -> Viper （LOG_LEVEL -> log.level）
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// 4. 固定环境变量最后覆盖，确保高于命令行参数
	applyEnvOverrides(v)

	// 5. 解码反序列化到结构体（支持 time.Duration）
	decoderConfig := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 6. 校验配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides 显式 Set 的值在 viper 中优先级最高
// 空字符串也视为已设置（TEAMSPEAK_PASSWORD= 表示空密码）
func applyEnvOverrides(v *viper.Viper) {
	env := viper.New()
	env.AllowEmptyEnv(true)
	for key, name := range envOverrides {
		_ = env.BindEnv(key, name)
		if env.IsSet(key) {
			v.Set(key, env.Get(key))
		}
	}
}

// Validate 配置校验
func (c *Config) Validate() error {
	if err := valid.Struct(c); err != nil {
		return err
	}
	// 	1，校验Server服务配置
	if err := c.Server.Validate(); err != nil {
		return err
	}
	// 	2，校验 TeamSpeak 连接配置
	if err := c.TeamSpeak.Validate(); err != nil {
		return err
	}
	// 	3，校验采集配置
	if err := c.Monitor.Validate(); err != nil {
		return err
	}
	// 	4，校验日志配置
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
