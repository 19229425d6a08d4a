package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FileKind 粗粒度文件类型标记
type FileKind string

const (
	KindContract FileKind = "contract"
	KindOther    FileKind = "other"
)

// SourceFile 流水线只消费路径、原始文本和类型标记，
// 不关心文件是怎么取到的。
type SourceFile struct {
	Path    string
	Content string
	Kind    FileKind
}

// Provider 源码提供方
type Provider interface {
	ListFiles(ctx context.Context, ref string) ([]SourceFile, error)
}

// KindOf 按扩展名判断文件类型
func KindOf(path string) FileKind {
	if strings.HasSuffix(strings.ToLower(path), ".sol") {
		return KindContract
	}
	return KindOther
}

// Category 面向用户的失败分类
type Category string

const (
	CategoryRateLimited        Category = "rate_limited"
	CategoryNotFound           Category = "not_found"
	CategoryInvalidCredentials Category = "invalid_credentials"
	CategoryNetwork            Category = "network"
	CategoryInvalidReference   Category = "invalid_reference"
)

// Error 带用户可读解释的分类错误
type Error struct {
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

func newError(cat Category, err error, format string, v ...interface{}) *Error {
	return &Error{Category: cat, Message: fmt.Sprintf(format, v...), Err: err}
}

// Classify 把提供方的原始错误映射成带解释的用户可见分类。
// 已经分类过的错误原样返回。
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return newError(CategoryNetwork, err,
			"Network failure while contacting the source host; check connectivity and any access restrictions")
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") || strings.Contains(msg, "max rate"):
		return newError(CategoryRateLimited, err,
			"The source host is rate-limiting requests; wait a moment or configure an API key")
	case strings.Contains(msg, "not found") || strings.Contains(msg, "404") || strings.Contains(msg, "no such file"):
		return newError(CategoryNotFound, err,
			"The requested source could not be found; verify the reference")
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") || strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return newError(CategoryInvalidCredentials, err,
			"The source host rejected the credentials; check the configured API key")
	default:
		return newError(CategoryNetwork, err,
			"Failed to reach the source host: %v", err)
	}
}
