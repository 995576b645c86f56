package collector

import (
	"context"

	"github.com/teamspeak-exporter/pkg/config"
	"github.com/teamspeak-exporter/pkg/serverquery"
)

// querySession 一次采集周期内的 ServerQuery 会话
type querySession interface {
	open(ctx context.Context) error
	listVirtualServers() ([]serverquery.Record, error)
	selectVirtualServer(id int) error
	fetchInfo() (serverquery.Record, error)
	close() error
}

// clientSession 基于 serverquery.Client 的会话实现
type clientSession struct {
	cfg    config.TeamSpeakConfig
	client *serverquery.Client
}

func newClientSession(cfg config.TeamSpeakConfig) querySession {
	return &clientSession{cfg: cfg}
}

func (s *clientSession) open(ctx context.Context) error {
	client, err := serverquery.Dial(ctx, s.cfg.Address(), s.cfg.Timeout)
	if err != nil {
		return err
	}
	if err := client.Login(s.cfg.Username, s.cfg.Password); err != nil {
		_ = client.Close()
		return err
	}
	s.client = client
	return nil
}

func (s *clientSession) listVirtualServers() ([]serverquery.Record, error) {
	return s.client.ServerList()
}

func (s *clientSession) selectVirtualServer(id int) error {
	return s.client.Use(id)
}

func (s *clientSession) fetchInfo() (serverquery.Record, error) {
	return s.client.ServerInfo()
}

func (s *clientSession) close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
