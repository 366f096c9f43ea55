package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ValidateURL 验证URL
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("无效的URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL必须是HTTP或HTTPS协议")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL必须包含主机名")
	}
	return nil
}

// CanonicalURL 将href基于base解析为绝对URL,并去掉 # 之后的部分
// 同一目标的不同写法(相对路径、不同锚点)得到相同结果
func CanonicalURL(base *url.URL, href string) (string, error) {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("无效的链接 [%s]: %w", href, err)
	}
	if base == nil {
		if !ref.IsAbs() {
			return "", fmt.Errorf("相对链接缺少base: %s", href)
		}
		return ref.String(), nil
	}
	abs := base.ResolveReference(ref)
	abs.Fragment = ""
	abs.RawFragment = ""
	return abs.String(), nil
}

// GenerateID 生成唯一ID
func GenerateID() string {
	return uuid.New().String()
}
