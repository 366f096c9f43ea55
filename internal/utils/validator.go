package utils

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/keiriina/marvelrivals-chat/internal/models"
)

// MaxHeaderValueLength 请求头值最大长度(8KB)
const MaxHeaderValueLength = 8192

// ForbiddenHeaders 由HTTP客户端管理、不允许自定义的请求头
var ForbiddenHeaders = []string{
	"Host",
	"Content-Length",
	"Transfer-Encoding",
	"Connection",
}

var (
	// RFC 7230 token
	headerNameRegex = regexp.MustCompile("^[!#$%&'*+\\-.^_`|~0-9A-Za-z]+$")
	// 可打印ASCII + 空格/制表符
	headerValueRegex = regexp.MustCompile(`^[\x20-\x7E\t]*$`)
)

// HeaderValidator 请求头验证器
type HeaderValidator struct {
	forbidden map[string]bool
}

// NewHeaderValidator 创建验证器
func NewHeaderValidator() *HeaderValidator {
	forbidden := make(map[string]bool, len(ForbiddenHeaders))
	for _, h := range ForbiddenHeaders {
		forbidden[strings.ToLower(h)] = true
	}
	return &HeaderValidator{forbidden: forbidden}
}

// IsForbidden 是否为禁止自定义的请求头
func (hv *HeaderValidator) IsForbidden(name string) bool {
	return hv.forbidden[strings.ToLower(name)]
}

// ValidateHeader 验证单个请求头
func (hv *HeaderValidator) ValidateHeader(name, value string) error {
	switch {
	case name == "":
		return &models.ValidationError{Field: "header", Value: name, Reason: "头部名称不能为空"}
	case hv.IsForbidden(name):
		return &models.ValidationError{Field: "header", Value: name, Reason: "此头部由HTTP客户端自动管理,不允许自定义"}
	case !headerNameRegex.MatchString(name):
		return &models.ValidationError{Field: "header", Value: name, Reason: "头部名称包含非法字符"}
	case len(value) > MaxHeaderValueLength:
		return &models.ValidationError{
			Field:  name,
			Value:  value[:32] + "...",
			Reason: fmt.Sprintf("头部值过长: %d 字节 (最大 %d)", len(value), MaxHeaderValueLength),
		}
	case !headerValueRegex.MatchString(value):
		return &models.ValidationError{Field: name, Value: value, Reason: "头部值包含非法字符(仅允许可打印ASCII)"}
	}
	return nil
}

// Validate 验证全部请求头,返回第一个错误
func (hv *HeaderValidator) Validate(headers http.Header) error {
	for name, values := range headers {
		for _, value := range values {
			if err := hv.ValidateHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
