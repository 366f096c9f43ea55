package core

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/keiriina/marvelrivals-chat/internal/crawlers"
	"github.com/keiriina/marvelrivals-chat/internal/models"
	"github.com/keiriina/marvelrivals-chat/internal/output"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
)

const wikiBase = "https://marvelrivals.fandom.com"

type mapFetcher map[string]string

func (m mapFetcher) Fetch(ctx context.Context, rawURL string) (*crawlers.PageDocument, error) {
	body, ok := m[rawURL]
	if !ok {
		return nil, &models.FetchError{URL: rawURL, StatusCode: 404, Kind: models.FailureHTTPStatus, Cause: errors.New("Not Found")}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &models.ParseError{URL: rawURL, Cause: err}
	}
	u, _ := url.Parse(rawURL)
	return &crawlers.PageDocument{CanonicalURL: rawURL, URL: u, StatusCode: 200, Doc: doc}, nil
}

func wikiFetcher() mapFetcher {
	return mapFetcher{
		wikiBase + "/wiki/Heroes": `<h1>Heroes</h1><div class="mw-parser-output"><p>All heroes.</p>
			<a href="/wiki/Hela">Hela</a><a href="/wiki/Gone">Gone</a></div>`,
		wikiBase + "/wiki/Hela": `<h1>Hela</h1><div class="mw-parser-output"><p>Hela is a Duelist.</p></div>`,
	}
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	crawl := models.DefaultCrawlConfig()
	crawl.SeedURLs = []string{wikiBase + "/wiki/Heroes"}
	crawl.RequestDelaySeconds = 0
	return &Config{
		Crawl:   crawl,
		Extract: models.DefaultExtractConfig(),
		Output: OutputConfig{
			Format:     output.FormatJSONL,
			Path:       output.StdoutPath,
			ReportDir:  t.TempDir(),
			BufferSize: 1,
		},
	}
}

type errSink struct{ err error }

func (s errSink) Write(models.ArticleRecord) error { return s.err }
func (s errSink) Close() error                     { return nil }

func TestCrawl(t *testing.T) {
	config := testConfig(t)
	var buf bytes.Buffer
	sink := output.NewJSONLSink(&buf)

	crawler, err := NewCrawler(config, wikiFetcher(), sink)
	if err != nil {
		t.Fatalf("创建爬取器失败: %v", err)
	}

	report, err := crawler.Crawl(context.Background())
	if err != nil {
		t.Fatalf("爬取失败: %v", err)
	}

	var urls []string
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var record models.ArticleRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("无效的JSONL行 %q: %v", scanner.Text(), err)
		}
		urls = append(urls, record.URL)
	}
	want := []string{wikiBase + "/wiki/Heroes", wikiBase + "/wiki/Hela"}
	if strings.Join(urls, ",") != strings.Join(want, ",") {
		t.Errorf("输出 %v, 期望 %v", urls, want)
	}

	if report.TaskID != crawler.TaskID() || report.FinalState != models.StateDone {
		t.Errorf("报告状态不符: %+v", report)
	}
	if report.Stats.EmittedRecords != 2 || report.Stats.FailedURLs != 1 {
		t.Errorf("统计不符: %+v", report.Stats)
	}
	if report.FailureKinds[models.FailureHTTPStatus] != 1 {
		t.Errorf("FailureKinds = %v", report.FailureKinds)
	}

	data, err := os.ReadFile(filepath.Join(config.Output.ReportDir, utils.ReportFileName))
	if err != nil {
		t.Fatalf("报告文件未生成: %v", err)
	}
	var saved models.CrawlReport
	if err := saved.FromJSON(data); err != nil {
		t.Fatalf("解析报告失败: %v", err)
	}
	if saved.Stats.EmittedRecords != 2 {
		t.Errorf("报告文件统计不符: %+v", saved.Stats)
	}
}

func TestCrawlSinkError(t *testing.T) {
	config := testConfig(t)
	sinkErr := errors.New("disk full")

	crawler, err := NewCrawler(config, wikiFetcher(), errSink{err: sinkErr})
	if err != nil {
		t.Fatalf("创建爬取器失败: %v", err)
	}

	_, err = crawler.Crawl(context.Background())
	if !errors.Is(err, sinkErr) {
		t.Errorf("期望输出端错误, 得到 %v", err)
	}
}

func TestCrawlCancelled(t *testing.T) {
	config := testConfig(t)
	var buf bytes.Buffer

	crawler, err := NewCrawler(config, wikiFetcher(), output.NewJSONLSink(&buf))
	if err != nil {
		t.Fatalf("创建爬取器失败: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := crawler.Crawl(ctx)
	if err != nil {
		t.Errorf("取消应视为正常停止, 得到 %v", err)
	}
	if report.Stats.EmittedRecords != 0 || buf.Len() != 0 {
		t.Errorf("取消后不应输出记录: %+v", report.Stats)
	}
	if _, err := os.Stat(filepath.Join(config.Output.ReportDir, utils.ReportFileName)); err != nil {
		t.Errorf("取消后仍应生成报告: %v", err)
	}
}

func TestNewCrawler(t *testing.T) {
	config := testConfig(t)

	if _, err := NewCrawler(config, wikiFetcher(), nil); err == nil {
		t.Error("空输出端应报错")
	}

	config.Crawl.SeedURLs = []string{"https://example.org/wiki/A"}
	if _, err := NewCrawler(config, wikiFetcher(), output.NewJSONLSink(&bytes.Buffer{})); err == nil {
		t.Error("域名外的入口应报错")
	}
}
