package crawlers

import (
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/keiriina/marvelrivals-chat/internal/models"
	"golang.org/x/net/html"
)

// BlockTags 正文容器直接子元素中参与提取的标签
var BlockTags = []string{"p", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6", "div", "table"}

// 段内含换行的空白统一为单个换行,保证段内不出现 \n\n
var lineBreakRun = regexp.MustCompile(`[ \t\r\f\v]*\n[\s\v]*`)

// ContentExtractor 文章内容提取器
// 职责: 从文章页提取标题、信息框和正文段落,生成ArticleRecord
type ContentExtractor struct {
	cfg       models.ExtractConfig
	blockTags map[string]struct{}
}

// NewContentExtractor 创建内容提取器实例
func NewContentExtractor(cfg models.ExtractConfig) *ContentExtractor {
	tags := make(map[string]struct{}, len(BlockTags))
	for _, tag := range BlockTags {
		tags[tag] = struct{}{}
	}
	if cfg.TitleSelector == "" {
		cfg.TitleSelector = "h1"
	}
	return &ContentExtractor{
		cfg:       cfg,
		blockTags: tags,
	}
}

// ExtractArticle 提取文章记录
// 处理流程:
//  1. 标题: 第一个h1中的第一个非空文本节点,没有则为nil
//  2. 信息框: 全部文本作为第一段,加 "INFOBOX: " 前缀
//  3. 正文: 正文容器的直接子元素(p/ul/ol/h1-h6/div/table),按文档顺序
//  4. 段落非空且与已收集段落不完全相同才加入
//
// 缺少标题或信息框不算错误
func (e *ContentExtractor) ExtractArticle(page *PageDocument) models.ArticleRecord {
	doc := page.Doc
	var segments segmentList

	if e.cfg.InfoboxSelector != "" {
		if infobox := doc.Find(e.cfg.InfoboxSelector); infobox.Length() > 0 {
			if text := collectText(infobox); text != "" {
				segments.add(models.InfoboxPrefix + text)
			}
		}
	}

	doc.Find(e.cfg.ContentSelector).Children().Each(func(_ int, block *goquery.Selection) {
		if _, ok := e.blockTags[goquery.NodeName(block)]; !ok {
			return
		}
		segments.add(collectText(block))
	})

	return models.NewArticleRecord(e.extractTitle(doc), page.CanonicalURL, segments)
}

// extractTitle 取第一个标题元素中的第一个非空文本节点
func (e *ContentExtractor) extractTitle(doc *goquery.Document) *string {
	for _, node := range doc.Find(e.cfg.TitleSelector).Nodes {
		if title, ok := firstText(node); ok {
			return &title
		}
	}
	return nil
}

// segmentList 页内段落列表,按精确字符串去重
type segmentList []string

// add 非空且未出现过才追加,段落数量很少,线性扫描即可
func (s *segmentList) add(segment string) bool {
	if segment == "" || slices.Contains(*s, segment) {
		return false
	}
	*s = append(*s, segment)
	return true
}

// collectText 以单个空格连接选区内所有文本节点,去掉首尾空白
// script/style中的文本不计入
func collectText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			parts = append(parts, n.Data)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}

	text := strings.Join(parts, " ")
	text = lineBreakRun.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// firstText 深度优先查找第一个非空文本节点
func firstText(n *html.Node) (string, bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if text := strings.TrimSpace(c.Data); text != "" {
				return text, true
			}
		case html.ElementNode:
			if c.Data == "script" || c.Data == "style" {
				continue
			}
			if text, ok := firstText(c); ok {
				return text, true
			}
		}
	}
	return "", false
}
