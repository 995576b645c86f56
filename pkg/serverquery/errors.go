package serverquery

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection 建连、握手或传输失败
	ErrConnection = errors.New("serverquery: connection error")
	// ErrAuthentication 登录被拒绝
	ErrAuthentication = errors.New("serverquery: authentication failed")
	// ErrProtocol 服务端返回非 ok 状态或响应无法解析
	ErrProtocol = errors.New("serverquery: protocol error")
	// ErrMissingField 响应中缺少期望的字段，属于 ErrProtocol
	ErrMissingField = fmt.Errorf("%w: missing field", ErrProtocol)
)

// Error 服务端状态行 "error id=N msg=..." 中的非零状态
type Error struct {
	ID  int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("serverquery: error id=%d msg=%s", e.ID, e.Msg)
}

// Is 使 errors.Is(err, ErrProtocol) 成立
func (e *Error) Is(target error) bool {
	return target == ErrProtocol
}
