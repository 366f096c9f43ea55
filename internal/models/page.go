package models

import (
	"net/url"
	"strings"
)

// PageKind 页面类型,每个URL抓取前判定一次
type PageKind int

const (
	// PageArticle 普通文章页: 提取内容 + 提取链接
	PageArticle PageKind = iota
	// PageListing 分类/列表页: 先从成员列表区域提取链接,再做通用链接提取
	PageListing
)

// String 实现fmt.Stringer
func (k PageKind) String() string {
	switch k {
	case PageArticle:
		return "article"
	case PageListing:
		return "listing"
	default:
		return "unknown"
	}
}

// ClassifyPage 根据URL路径判定页面类型
// 路径中包含categoryMarker(如 "Category:")即为列表页
func ClassifyPage(rawURL string, categoryMarker string) PageKind {
	if categoryMarker == "" {
		return PageArticle
	}

	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		path = parsed.Path
	}

	if strings.Contains(path, categoryMarker) {
		return PageListing
	}
	return PageArticle
}

// LinkScope 链接范围过滤器
// 只接受以ArticlePrefix开头、且不属于排除命名空间的href
type LinkScope struct {
	ArticlePrefix string
	excluded      []string // 完整前缀,如 /wiki/Category:
}

// NewLinkScope 创建链接范围过滤器
func NewLinkScope(articlePrefix string, excludedNamespaces []string) LinkScope {
	excluded := make([]string, 0, len(excludedNamespaces))
	for _, ns := range excludedNamespaces {
		ns = strings.TrimSuffix(strings.TrimSpace(ns), ":")
		if ns == "" {
			continue
		}
		excluded = append(excluded, articlePrefix+ns+":")
	}
	return LinkScope{
		ArticlePrefix: articlePrefix,
		excluded:      excluded,
	}
}

// Allows 判断原始href是否在爬取范围内
func (s LinkScope) Allows(href string) bool {
	if s.ArticlePrefix == "" || !strings.HasPrefix(href, s.ArticlePrefix) {
		return false
	}
	for _, prefix := range s.excluded {
		if strings.HasPrefix(href, prefix) {
			return false
		}
	}
	return true
}

// ExcludedPrefixes 返回排除的完整前缀列表(副本)
func (s LinkScope) ExcludedPrefixes() []string {
	return append([]string(nil), s.excluded...)
}
