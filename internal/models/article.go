package models

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const (
	// ContentSeparator 段落分隔符
	ContentSeparator = "\n\n"

	// InfoboxPrefix 信息框段落前缀
	InfoboxPrefix = "INFOBOX: "
)

// ArticleRecord 文章记录,每个成功抓取的文章页输出一条
// 创建后不可修改
type ArticleRecord struct {
	Title         *string `json:"title"`          // 页面标题,可能为空
	URL           string  `json:"url"`            // 规范化URL
	Content       string  `json:"content"`        // 以 \n\n 连接的段落
	ContentLength int     `json:"content_length"` // content字符数
	SectionsCount int     `json:"sections_count"` // 段落数(含信息框)
}

// NewArticleRecord 由已去重的段落列表构造文章记录
func NewArticleRecord(title *string, pageURL string, segments []string) ArticleRecord {
	content := strings.Join(segments, ContentSeparator)
	return ArticleRecord{
		Title:         title,
		URL:           pageURL,
		Content:       content,
		ContentLength: utf8.RuneCountInString(content),
		SectionsCount: len(segments),
	}
}

// TitleText 返回标题文本,无标题时返回空字符串
func (r ArticleRecord) TitleText() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

// Segments 按分隔符拆分content,忽略空段
func (r ArticleRecord) Segments() []string {
	if r.Content == "" {
		return nil
	}
	parts := strings.Split(r.Content, ContentSeparator)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// HasInfobox 第一段是否为信息框
func (r ArticleRecord) HasInfobox() bool {
	return strings.HasPrefix(r.Content, InfoboxPrefix)
}

// ToJSON 序列化为单行JSON
func (r ArticleRecord) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
