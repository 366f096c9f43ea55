package core

import (
	"net/http"
	"sync"

	"github.com/keiriina/marvelrivals-chat/internal/models"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
)

const (
	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "Mozilla/5.0 (compatible; wikicrawl/1.0; +https://github.com/keiriina/marvelrivals-chat)"
)

// HeaderManager 管理HTTP请求头
// 优先级: 默认 < 配置文件(crawl.headers) < 命令行(-H)
// 实现 models.HeaderProvider 接口
type HeaderManager struct {
	defaults http.Header
	config   http.Header
	cli      http.Header

	validator *utils.HeaderValidator

	// 合并结果只计算一次
	once   sync.Once
	merged http.Header
	err    error
}

// NewHeaderManager 创建头部管理器
// 参数:
//   - configHeaders: 配置文件中的 crawl.headers
//   - userAgent: 配置的User-Agent,为空则使用默认值
//   - cliHeaders: 命令行传递的 "Name: Value" 列表
func NewHeaderManager(configHeaders map[string]string, userAgent string, cliHeaders []string) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults:  getDefaultHeaders(userAgent),
		config:    make(http.Header),
		cli:       make(http.Header),
		validator: utils.NewHeaderValidator(),
	}

	for name, value := range configHeaders {
		hm.config.Set(name, value)
	}

	if len(cliHeaders) > 0 {
		parsed, err := models.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, err
		}
		hm.cli = parsed
	}

	if err := hm.Validate(); err != nil {
		return nil, err
	}
	return hm, nil
}

// getDefaultHeaders 返回系统默认头部
func getDefaultHeaders(userAgent string) http.Header {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return http.Header{
		"User-Agent":      []string{userAgent},
		"Accept":          []string{"text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"},
		"Accept-Encoding": []string{"gzip, deflate, br"},
	}
}

// Validate 验证所有头部的合法性
// 验证顺序: 默认 → 配置 → 命令行
func (hm *HeaderManager) Validate() error {
	if err := hm.validator.Validate(hm.defaults); err != nil {
		utils.Errorf("默认头部验证失败: %v", err)
		return err
	}
	if err := hm.validator.Validate(hm.config); err != nil {
		utils.Errorf("配置文件头部验证失败: %v", err)
		return err
	}
	if err := hm.validator.Validate(hm.cli); err != nil {
		utils.Errorf("命令行头部验证失败: %v", err)
		return err
	}
	return nil
}

// GetMergedHeaders 按优先级合并头部
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, layer := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range layer {
			result[name] = values
		}
	}
	return result
}

// SafeString 脱敏后的头部,用于日志
func (hm *HeaderManager) SafeString() string {
	return utils.RedactHeaders(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider 接口
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	hm.once.Do(func() {
		hm.err = hm.Validate()
		if hm.err == nil {
			hm.merged = hm.GetMergedHeaders()
			utils.Debugf("请求头: %s", hm.SafeString())
		}
	})
	return hm.merged, hm.err
}
