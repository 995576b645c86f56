package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate 指标HTTP服务配置校验
func (s *ServerConfig) Validate() error {
	if err := valid.Struct(s); err != nil {
		return fmt.Errorf("server config invalid: %w", err)
	}
	// 	端口非法直接视为启动失败
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port)
	}
	return nil
}

// Validate ServerQuery 连接配置校验
func (t *TeamSpeakConfig) Validate() error {
	if err := valid.Struct(t); err != nil {
		return fmt.Errorf("teamspeak config invalid: %w", err)
	}
	if strings.TrimSpace(t.Host) == "" {
		return errors.New("teamspeak.host cannot be empty")
	}
	if strings.ContainsAny(t.Username, "\r\n") || strings.ContainsAny(t.Password, "\r\n") {
		return errors.New("teamspeak credentials must not contain line breaks")
	}
	return nil
}

// Validate 采集配置校验
func (m *MonitorConfig) Validate() error {
	if err := valid.Struct(m); err != nil {
		return err
	}
	if m.Interval < time.Second || m.Interval > 3600*time.Second {
		return fmt.Errorf("monitor.interval must be between 1 and 3600 seconds, got %s", m.Interval)
	}
	return nil
}
