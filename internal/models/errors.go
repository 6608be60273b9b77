package models

import (
	"errors"
	"fmt"
)

// ErrorKind 错误分类
type ErrorKind string

const (
	KindTransport   ErrorKind = "transport"   // 网络/上游不可用
	KindParse       ErrorKind = "parse"       // 上游数据格式错误
	KindValidation  ErrorKind = "validation"  // 用户输入错误
	KindNotFound    ErrorKind = "not_found"   // 项目或地址不存在
	KindUnsupported ErrorKind = "unsupported" // 解析服务不支持该操作
)

// Error carries the failure kind of an upstream or user-input operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
