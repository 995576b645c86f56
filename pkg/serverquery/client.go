package serverquery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

const greeting = "TS3"

// Client ServerQuery 文本协议客户端（单连接，串行请求）
type Client struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// Dial 建立连接并读取欢迎信息，timeout 同时作为单次请求的读写超时
func Dial(ctx context.Context, address string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, address, err)
	}

	c := &Client{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}
	if err := c.readGreeting(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return c, nil
}

// readGreeting 欢迎信息为 "TS3" 加一行说明文字
func (c *Client) readGreeting() error {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	line, err := c.readLine()
	if err != nil {
		return err
	}
	if line != greeting {
		return fmt.Errorf("%w: unexpected greeting %q", ErrConnection, line)
	}
	if _, err := c.readLine(); err != nil {
		return err
	}
	return nil
}

// readLine 读取一行非空内容，行尾为 "\n\r"
func (c *Client) readLine() (string, error) {
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("%w: read: %v", ErrConnection, err)
		}
		if line = strings.Trim(line, "\r\n"); line != "" {
			return line, nil
		}
	}
}

// Exec 发送一条命令并读取到状态行为止
func (c *Client) Exec(cmd string) ([]Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("%w: client closed", ErrConnection)
	}
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		return nil, fmt.Errorf("%w: write: %v", ErrConnection, err)
	}

	var records []Record
	for {
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		switch {
		case strings.HasPrefix(line, "error "):
			if err := parseStatus(line); err != nil {
				return nil, err
			}
			return records, nil
		case strings.HasPrefix(line, "notify"):
			continue
		default:
			records = append(records, parseRecords(line)...)
		}
	}
}

// Login 认证，服务端拒绝时返回 ErrAuthentication
func (c *Client) Login(username, password string) error {
	_, err := c.Exec("login " + Escape(username) + " " + Escape(password))
	var qerr *Error
	if errors.As(err, &qerr) {
		return fmt.Errorf("%w: %s (id=%d)", ErrAuthentication, qerr.Msg, qerr.ID)
	}
	return err
}

// ServerList 枚举虚拟服务器
func (c *Client) ServerList() ([]Record, error) {
	return c.Exec("serverlist")
}

// Use 切换当前虚拟服务器
func (c *Client) Use(id int) error {
	_, err := c.Exec("use sid=" + strconv.Itoa(id))
	return err
}

// ServerInfo 读取当前虚拟服务器详情
func (c *Client) ServerInfo() (Record, error) {
	records, err := c.Exec("serverinfo")
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty serverinfo response", ErrProtocol)
	}
	return records[0], nil
}

// Close 发送 quit 后关闭连接，可重复调用
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	_, _ = c.conn.Write([]byte("quit\n"))
	return c.conn.Close()
}
