package utils

import (
	"net/http"
	"sort"
	"strings"
)

// SensitiveKeywords 敏感请求头名称关键字
var SensitiveKeywords = []string{
	"authorization",
	"cookie",
	"token",
	"key",
	"secret",
	"password",
}

// IsSensitiveHeader 按名称关键字判断是否为敏感请求头
func IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range SensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// RedactHeaderValue 脱敏单个请求头的值
func RedactHeaderValue(name, value string) string {
	if !IsSensitiveHeader(name) {
		return value
	}
	if strings.HasPrefix(value, "Bearer ") {
		return "Bearer ***"
	}
	if len(value) > 8 {
		return value[:4] + "***" + value[len(value)-4:]
	}
	return "***"
}

// RedactHeaders 返回脱敏后的请求头字符串,用于日志
// 格式: "Name: value, Name: value",按名称排序
func RedactHeaders(headers http.Header) string {
	names := make([]string, 0, len(headers))
	for name, values := range headers {
		if len(values) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+RedactHeaderValue(name, headers[name][0]))
	}
	return strings.Join(parts, ", ")
}
