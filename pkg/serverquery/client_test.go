package serverquery

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	statusOK       = "error id=0 msg=ok"
	statusBadLogin = `error id=520 msg=invalid\sloginname\sor\spassword`
)

// fakeServer 模拟 ServerQuery：按命令返回预置响应行
type fakeServer struct {
	ln       net.Listener
	greeting string
	replies  map[string][]string
	received chan string
}

func newFakeServer(t *testing.T, replies map[string][]string) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeServer{
		ln:       ln,
		greeting: "TS3\n\rWelcome to the TeamSpeak 3 ServerQuery interface.\n\r",
		replies:  replies,
		received: make(chan string, 64),
	}
	t.Cleanup(func() { _ = ln.Close() })
	return s
}

func (s *fakeServer) addr() string { return s.ln.Addr().String() }

func (s *fakeServer) serve() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	_, _ = conn.Write([]byte(s.greeting))
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		cmd := strings.TrimSpace(sc.Text())
		s.received <- cmd
		if cmd == "quit" {
			return
		}
		verb, _, _ := strings.Cut(cmd, " ")
		lines, ok := s.replies[verb]
		if !ok {
			lines = []string{statusOK}
		}
		for _, l := range lines {
			_, _ = conn.Write([]byte(l + "\n\r"))
		}
	}
}

func (s *fakeServer) commands() []string {
	var out []string
	for {
		select {
		case c := <-s.received:
			out = append(out, c)
		case <-time.After(200 * time.Millisecond):
			return out
		}
	}
}

func dialFake(t *testing.T, s *fakeServer) *Client {
	t.Helper()
	go s.serve()
	c, err := Dial(context.Background(), s.addr(), time.Second)
	require.NoError(t, err)
	return c
}

func TestClient_Session(t *testing.T) {
	srv := newFakeServer(t, map[string][]string{
		"serverlist": {
			`virtualserver_id=1 virtualserver_port=9987 virtualserver_name=Alpha|virtualserver_id=2 virtualserver_port=9988 virtualserver_name=Beta\sServer`,
			statusOK,
		},
		"serverinfo": {
			`notifycliententerview cfid=0 ctid=1`,
			`virtualserver_name=Alpha\p\/Team virtualserver_clientsonline=3 virtualserver_uptime=3600`,
			statusOK,
		},
	})
	c := dialFake(t, srv)

	require.NoError(t, c.Login("serveradmin", "pa ss|word"))

	servers, err := c.ServerList()
	require.NoError(t, err)
	require.Len(t, servers, 2)
	id, err := servers[1].Int("virtualserver_id")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	assert.Equal(t, "Beta Server", servers[1]["virtualserver_name"])

	require.NoError(t, c.Use(1))

	info, err := c.ServerInfo()
	require.NoError(t, err)
	name, err := info.String("virtualserver_name")
	require.NoError(t, err)
	assert.Equal(t, "Alpha|/Team", name)
	v, err := info.Float("virtualserver_clientsonline")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.Equal(t, []string{
		`login serveradmin pa\sss\pword`,
		"serverlist",
		"use sid=1",
		"serverinfo",
		"quit",
	}, srv.commands())
}

func TestClient_LoginRejected(t *testing.T) {
	srv := newFakeServer(t, map[string][]string{
		"login": {statusBadLogin},
	})
	c := dialFake(t, srv)
	defer c.Close()

	err := c.Login("serveradmin", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.NotErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "invalid loginname or password")
}

func TestClient_ProtocolError(t *testing.T) {
	srv := newFakeServer(t, map[string][]string{
		"serverlist": {`error id=1024 msg=invalid\sserverID`},
		"use":        {`error id=1024 msg=invalid\sserverID`},
	})
	c := dialFake(t, srv)
	defer c.Close()

	_, err := c.ServerList()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)

	var qerr *Error
	require.True(t, errors.As(err, &qerr))
	assert.Equal(t, 1024, qerr.ID)
	assert.Equal(t, "invalid serverID", qerr.Msg)

	assert.ErrorIs(t, c.Use(7), ErrProtocol)
}

func TestClient_ExecAfterClose(t *testing.T) {
	srv := newFakeServer(t, nil)
	c := dialFake(t, srv)
	require.NoError(t, c.Close())

	_, err := c.Exec("serverlist")
	assert.ErrorIs(t, err, ErrConnection)
}

func TestDial_Errors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		require.NoError(t, ln.Close())

		_, err = Dial(context.Background(), addr, time.Second)
		assert.ErrorIs(t, err, ErrConnection)
	})

	t.Run("unexpected greeting", func(t *testing.T) {
		srv := newFakeServer(t, nil)
		srv.greeting = "SSH-2.0-OpenSSH\n"
		go srv.serve()

		_, err := Dial(context.Background(), srv.addr(), time.Second)
		assert.ErrorIs(t, err, ErrConnection)
	})

	t.Run("peer closes mid request", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()
		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_, _ = conn.Write([]byte("TS3\n\rWelcome\n\r"))
			_ = conn.Close()
		}()

		c, err := Dial(context.Background(), ln.Addr().String(), time.Second)
		require.NoError(t, err)
		defer c.Close()

		_, err = c.ServerList()
		assert.ErrorIs(t, err, ErrConnection)
	})
}
