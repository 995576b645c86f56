package agent

import (
	"github.com/spf13/cobra"
)

// initTeamSpeakFlags ServerQuery 连接参数（环境变量 TEAMSPEAK_* 优先于这些 flag）
func initTeamSpeakFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.String(
		"ts3host",
		defaultCfg.TeamSpeak.Host,
		"-> Hostname or ip address of TS3 server | TS3 服务器地址 [env TEAMSPEAK_HOST]")
	f.Int(
		"ts3port",
		defaultCfg.TeamSpeak.Port,
		"-> ServerQuery port of TS3 server | ServerQuery 端口 [env TEAMSPEAK_PORT]")
	f.String(
		"ts3username",
		defaultCfg.TeamSpeak.Username,
		"-> ServerQuery username | ServerQuery 用户名 [env TEAMSPEAK_USERNAME]")
	f.String(
		"ts3password",
		defaultCfg.TeamSpeak.Password,
		"-> ServerQuery password | ServerQuery 密码 [env TEAMSPEAK_PASSWORD]")
	f.Duration(
		"ts3timeout",
		defaultCfg.TeamSpeak.Timeout,
		"-> Dial and per-request timeout | 建连及单次请求超时")
	f.Bool(
		"ts3showpassword",
		defaultCfg.TeamSpeak.ShowPassword,
		"-> Log the plaintext password at startup | 启动日志输出明文密码")
}
