package unit

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/keiriina/marvelrivals-chat/internal/models"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
)

func TestHeaderValidator_ValidateHeader(t *testing.T) {
	validator := utils.NewHeaderValidator()

	tests := []struct {
		name        string
		headerName  string
		headerValue string
		expectError bool
	}{
		{"合法头部", "User-Agent", "Mozilla/5.0", false},
		{"合法名称-数字", "X-Request-ID-123", "abc", false},
		{"合法名称-下划线", "X_Custom", "v", false},
		{"合法值-空字符串", "X-Empty", "", false},
		{"合法值-最大长度", "X-Long", strings.Repeat("a", utils.MaxHeaderValueLength), false},
		{"禁止头部-Host", "Host", "example.com", true},
		{"禁止头部-Content-Length", "Content-Length", "123", true},
		{"禁止头部不区分大小写", "connection", "close", true},
		{"非法名称-空格", "User Agent", "v", true},
		{"非法名称-特殊字符", "User@Agent", "v", true},
		{"非法名称-空字符串", "", "v", true},
		{"非法值-超长", "X-TooLong", strings.Repeat("a", utils.MaxHeaderValueLength+1), true},
		{"非法值-控制字符", "X-Bad", "value\x00with\x01null", true},
		{"非法值-中文", "X-Lang", "中文", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateHeader(tt.headerName, tt.headerValue)
			if (err != nil) != tt.expectError {
				t.Errorf("期望错误=%v, 实际错误=%v", tt.expectError, err)
			}
			if err != nil {
				var validationErr *models.ValidationError
				if !errors.As(err, &validationErr) {
					t.Errorf("期望ValidationError, 得到 %T", err)
				}
			}
		})
	}
}

func TestHeaderValidator_Validate(t *testing.T) {
	validator := utils.NewHeaderValidator()

	ok := http.Header{}
	ok.Set("Accept-Language", "en-US")
	ok.Set("X-Wiki", "marvel")
	if err := validator.Validate(ok); err != nil {
		t.Errorf("合法头部不应报错: %v", err)
	}

	bad := http.Header{}
	bad.Set("Accept-Language", "en-US")
	bad.Set("Host", "evil.example")
	if err := validator.Validate(bad); err == nil {
		t.Error("包含禁止头部应报错")
	}
}

func TestRedactHeaders(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"Authorization", "Bearer abcdefghijklmn", "Bearer ***"},
		{"X-Api-Key", "1234567890abcdef", "1234***cdef"},
		{"Cookie", "short", "***"},
		{"Accept-Language", "en-US", "en-US"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := utils.RedactHeaderValue(tt.name, tt.value); got != tt.want {
				t.Errorf("RedactHeaderValue(%s) = %q, 期望 %q", tt.name, got, tt.want)
			}
		})
	}

	t.Run("整体脱敏按名称排序", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Token", "secret-token-value")
		headers.Set("Accept", "text/html")

		got := utils.RedactHeaders(headers)
		want := "Accept: text/html, X-Token: secr***alue"
		if got != want {
			t.Errorf("RedactHeaders = %q, 期望 %q", got, want)
		}
		if strings.Contains(got, "secret-token-value") {
			t.Error("敏感值不应出现在日志字符串中")
		}
	})
}
