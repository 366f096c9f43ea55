package crawlers

import (
	"strings"
	"testing"

	"github.com/keiriina/marvelrivals-chat/internal/models"
)

func TestExtractArticle(t *testing.T) {
	e := NewContentExtractor(models.DefaultExtractConfig())

	t.Run("标题+信息框+正文", func(t *testing.T) {
		page := newTestPage(t, "https://marvelrivals.fandom.com/wiki/Spider-Man", `
<html><body>
<h1 class="page-header__title">Spider-Man</h1>
<div class="mw-parser-output">
  <aside class="portable-infobox">Health: 275</aside>
  <p>Spider-Man is a hero.</p>
</div>
</body></html>`)

		record := e.ExtractArticle(page)

		if record.TitleText() != "Spider-Man" {
			t.Errorf("标题 = %q, 期望 Spider-Man", record.TitleText())
		}
		wantContent := "INFOBOX: Health: 275\n\nSpider-Man is a hero."
		if record.Content != wantContent {
			t.Errorf("content = %q, 期望 %q", record.Content, wantContent)
		}
		if record.ContentLength != 43 {
			t.Errorf("content_length = %d, 期望 43", record.ContentLength)
		}
		if record.SectionsCount != 2 {
			t.Errorf("sections_count = %d, 期望 2", record.SectionsCount)
		}
		if record.URL != "https://marvelrivals.fandom.com/wiki/Spider-Man" {
			t.Errorf("url = %q", record.URL)
		}
	})

	t.Run("缺少标题和信息框", func(t *testing.T) {
		page := newTestPage(t, "https://example.com/wiki/NoTitle", `
<div class="mw-parser-output"><p>Only body.</p></div>`)

		record := e.ExtractArticle(page)
		if record.Title != nil {
			t.Errorf("没有h1时标题应为nil, 得到 %q", *record.Title)
		}
		if record.HasInfobox() {
			t.Error("不应包含信息框段落")
		}
		if record.Content != "Only body." || record.SectionsCount != 1 {
			t.Errorf("记录不符: %+v", record)
		}
	})

	t.Run("空页面", func(t *testing.T) {
		page := newTestPage(t, "https://example.com/wiki/Empty", `<html><body></body></html>`)
		record := e.ExtractArticle(page)
		if record.Content != "" || record.ContentLength != 0 || record.SectionsCount != 0 {
			t.Errorf("空页面应得到空记录: %+v", record)
		}
	})

	t.Run("段落精确去重", func(t *testing.T) {
		page := newTestPage(t, "https://example.com/wiki/Dup", `
<h1>Dup</h1>
<div class="mw-parser-output">
  <p>Same text.</p>
  <p>Same text.</p>
  <p>Same text!</p>
  <p>  Same text.  </p>
  <p>same text.</p>
</div>`)

		record := e.ExtractArticle(page)
		want := []string{"Same text.", "Same text!", "same text."}
		got := record.Segments()
		if len(got) != len(want) {
			t.Fatalf("段落数 = %d, 期望 %d: %q", len(got), len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("第%d段 = %q, 期望 %q", i, got[i], want[i])
			}
		}
	})

	t.Run("只取正文容器的直接子元素", func(t *testing.T) {
		page := newTestPage(t, "https://example.com/wiki/Nested", `
<div class="mw-parser-output">
  <div><p>Inner one.</p><p>Inner two.</p></div>
  <span>Span text.</span>
  <blockquote>Quote.</blockquote>
  <h2>Abilities</h2>
  <ul><li>Web Swing</li><li>Spider Sense</li></ul>
  <table><tr><td>HP</td><td>275</td></tr></table>
</div>`)

		record := e.ExtractArticle(page)
		segments := record.Segments()
		want := []string{
			"Inner one. Inner two.",
			"Abilities",
			"Web Swing Spider Sense",
			"HP 275",
		}
		if len(segments) != len(want) {
			t.Fatalf("段落 = %q, 期望 %q", segments, want)
		}
		for i := range want {
			if segments[i] != want[i] {
				t.Errorf("第%d段 = %q, 期望 %q", i, segments[i], want[i])
			}
		}
		if strings.Contains(record.Content, "Span text.") || strings.Contains(record.Content, "Quote.") {
			t.Errorf("非块级标签不应被提取: %q", record.Content)
		}
	})

	t.Run("空白段落被忽略", func(t *testing.T) {
		page := newTestPage(t, "https://example.com/wiki/Blank", `
<div class="mw-parser-output"><p>   </p><div></div><p>Text.</p></div>`)
		record := e.ExtractArticle(page)
		if record.SectionsCount != 1 || record.Content != "Text." {
			t.Errorf("记录不符: %+v", record)
		}
	})

	t.Run("段内不出现段落分隔符", func(t *testing.T) {
		page := newTestPage(t, "https://example.com/wiki/Lines", `
<div class="mw-parser-output"><div>Line one.

Line two.</div><p>Next.</p></div>`)
		record := e.ExtractArticle(page)
		if record.SectionsCount != 2 {
			t.Fatalf("sections_count = %d, 期望 2: %q", record.SectionsCount, record.Content)
		}
		if got := len(record.Segments()); got != record.SectionsCount {
			t.Errorf("按分隔符拆分得到 %d 段, 期望 %d", got, record.SectionsCount)
		}

		for _, body := range []string{"<p>a\n\v\nb</p><p>c</p>", "<p>a\n\f\nb</p><p>c</p>", "<p>a \v\n\f \n\tb</p><p>c</p>"} {
			page := newTestPage(t, "https://example.com/wiki/Ws", `<div class="mw-parser-output">`+body+`</div>`)
			record := e.ExtractArticle(page)
			if record.SectionsCount != 2 {
				t.Fatalf("sections_count = %d, 期望 2: %q", record.SectionsCount, record.Content)
			}
			if got := len(strings.Split(record.Content, models.ContentSeparator)); got != record.SectionsCount {
				t.Errorf("%q: 按分隔符拆分得到 %d 段, 期望 %d", record.Content, got, record.SectionsCount)
			}
			if record.Content != "a\nb\n\nc" {
				t.Errorf("content = %q, 期望 %q", record.Content, "a\nb\n\nc")
			}
		}
	})

	t.Run("脚本和样式不计入文本", func(t *testing.T) {
		page := newTestPage(t, "https://example.com/wiki/Script", `
<div class="mw-parser-output"><div>Visible.<script>var x = 1;</script><style>.a{}</style></div></div>`)
		record := e.ExtractArticle(page)
		if record.Content != "Visible." {
			t.Errorf("content = %q, 期望 Visible.", record.Content)
		}
	})

	t.Run("标题取第一个非空文本", func(t *testing.T) {
		page := newTestPage(t, "https://example.com/wiki/T", `
<h1>  <span> </span><span>Hela</span> extra</h1><h1>Second</h1>`)
		record := e.ExtractArticle(page)
		if record.TitleText() != "Hela" {
			t.Errorf("标题 = %q, 期望 Hela", record.TitleText())
		}
	})

	t.Run("多个信息框合并为一段", func(t *testing.T) {
		page := newTestPage(t, "https://example.com/wiki/Multi", `
<div class="mw-parser-output">
  <aside class="portable-infobox">Role Duelist</aside>
  <aside class="infobox">Health 250</aside>
  <p>Body.</p>
</div>`)
		record := e.ExtractArticle(page)
		segments := record.Segments()
		if len(segments) != 2 {
			t.Fatalf("段落 = %q", segments)
		}
		if segments[0] != "INFOBOX: Role Duelist Health 250" {
			t.Errorf("信息框段落 = %q", segments[0])
		}
	})
}
