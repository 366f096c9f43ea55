package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSeeds 没有配置入口URL
	ErrNoSeeds = errors.New("至少需要一个入口URL")

	// ErrFrontierFull Frontier已达容量上限
	ErrFrontierFull = errors.New("frontier已满")
)

// 失败类型,用于报告统计
const (
	FailureFetch           = "fetch_error"
	FailureHTTPStatus      = "http_status"
	FailureRobotsBlocked   = "robots_blocked"
	FailureForbiddenDomain = "forbidden_domain"
	FailureParse           = "parse_error"
	FailureCancelled       = "cancelled"
)

// FetchError 抓取错误(网络错误、非2xx状态码、超时、robots拒绝、域名不允许)
type FetchError struct {
	URL        string
	StatusCode int    // 0表示未收到响应
	Kind       string // Failure* 常量
	Cause      error
}

// Error 实现error接口
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("抓取失败 [%s]: HTTP %d: %v", e.URL, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("抓取失败 [%s]: %v", e.URL, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ParseError 页面无法解析为HTML文档树
type ParseError struct {
	URL   string
	Cause error
}

// Error 实现error接口
func (e *ParseError) Error() string {
	return fmt.Sprintf("解析失败 [%s]: %v", e.URL, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// FailureKind 将错误归类为报告中的失败类型
func FailureKind(err error) string {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Kind != "" {
			return fetchErr.Kind
		}
		return FailureFetch
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return FailureParse
	}
	return FailureFetch
}
