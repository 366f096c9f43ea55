package crawlers

import (
	"iter"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/keiriina/marvelrivals-chat/internal/models"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
)

// LinkExtractor 链接提取器
// 职责: 按文档顺序扫描<a href>,过滤出范围内的文章链接并规范化
type LinkExtractor struct {
	scope models.LinkScope
}

// NewLinkExtractor 创建链接提取器实例
func NewLinkExtractor(scope models.LinkScope) *LinkExtractor {
	return &LinkExtractor{scope: scope}
}

// InScope 判断原始href是否在爬取范围内
func (e *LinkExtractor) InScope(href string) bool {
	return e.scope.Allows(href)
}

// ExtractLinks 从选区中按文档顺序惰性产出规范化URL
// 结果可能重复,去重由Frontier负责; 序列只能遍历一次
// 格式错误的href直接跳过
func (e *LinkExtractor) ExtractLinks(sel *goquery.Selection, base *url.URL) iter.Seq[string] {
	return func(yield func(string) bool) {
		if sel == nil {
			return
		}
		sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if !e.scope.Allows(href) {
				return true
			}

			link, err := models.CanonicalURL(base, href)
			if err != nil {
				utils.Debugf("跳过无效链接: %s: %v", href, err)
				return true
			}

			return yield(link)
		})
	}
}

// ExtractFromDocument 对整个页面做通用链接提取
func (e *LinkExtractor) ExtractFromDocument(page *PageDocument) iter.Seq[string] {
	return e.ExtractLinks(page.Doc.Selection, page.URL)
}

// ExtractFromRegion 只在selector匹配的区域内提取链接(分类页成员列表)
func (e *LinkExtractor) ExtractFromRegion(page *PageDocument, selector string) iter.Seq[string] {
	if selector == "" {
		return func(func(string) bool) {}
	}
	return e.ExtractLinks(page.Doc.Find(selector), page.URL)
}
