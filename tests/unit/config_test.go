package unit

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/keiriina/marvelrivals-chat/internal/core"
	"github.com/keiriina/marvelrivals-chat/internal/models"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := core.LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("加载空配置失败: %v", err)
	}

	crawl := config.GetCrawlConfig()
	if crawl.AllowedDomain != models.DefaultAllowedDomain {
		t.Errorf("AllowedDomain = %s", crawl.AllowedDomain)
	}
	if !slices.Equal(crawl.SeedURLs, []string{models.DefaultSeedURL}) {
		t.Errorf("SeedURLs = %v", crawl.SeedURLs)
	}
	if !slices.Equal(crawl.ExcludedNamespaces, models.DefaultExcludedNamespaces) {
		t.Errorf("ExcludedNamespaces = %v", crawl.ExcludedNamespaces)
	}
	if crawl.RequestDelaySeconds != 1 || crawl.MaxConcurrentPerDomain != 1 || !crawl.RespectRobotsTxt {
		t.Errorf("礼貌策略默认值错误: %+v", crawl)
	}
	if crawl.Extract != models.DefaultExtractConfig() {
		t.Errorf("Extract = %+v", crawl.Extract)
	}
	if config.Output.Format != "jsonl" || config.Output.Path != "-" || config.Output.BufferSize != 16 {
		t.Errorf("Output = %+v", config.Output)
	}
	if err := crawl.Validate(); err != nil {
		t.Errorf("默认配置应合法: %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
crawl:
  allowed_domain: wiki.example.org
  seed_urls:
    - https://wiki.example.org/wiki/Main_Page
  excluded_namespace_prefixes: [Category, Talk]
  request_delay_seconds: 2.5
  max_pages: 100
  headers:
    Accept-Language: en-US
extract:
  content_selector: "#content"
logging:
  level: debug
output:
  format: both
  sqlite_path: out/articles.db
`)

	config, err := core.LoadConfig(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	crawl := config.GetCrawlConfig()
	if crawl.AllowedDomain != "wiki.example.org" || crawl.MaxPages != 100 || crawl.RequestDelaySeconds != 2.5 {
		t.Errorf("爬取配置不符: %+v", crawl)
	}
	if !slices.Equal(crawl.ExcludedNamespaces, []string{"Category", "Talk"}) {
		t.Errorf("ExcludedNamespaces = %v", crawl.ExcludedNamespaces)
	}
	if crawl.Extract.ContentSelector != "#content" {
		t.Errorf("ContentSelector = %s", crawl.Extract.ContentSelector)
	}
	// 未设置的提取键保持默认
	if crawl.Extract.ArticlePrefix != "/wiki/" {
		t.Errorf("ArticlePrefix = %s", crawl.Extract.ArticlePrefix)
	}
	if len(crawl.Headers) != 1 {
		t.Errorf("Headers = %v", crawl.Headers)
	}
	if config.Logging.Level != "debug" || config.Output.Format != "both" {
		t.Errorf("日志/输出配置不符: %+v %+v", config.Logging, config.Output)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("WIKICRAWL_CRAWL_MAX_PAGES", "7")
	t.Setenv("WIKICRAWL_OUTPUT_FORMAT", "sqlite")

	config, err := core.LoadConfig(writeConfig(t, "crawl:\n  max_pages: 100\n"))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if config.Crawl.MaxPages != 7 {
		t.Errorf("环境变量应覆盖配置文件: MaxPages = %d", config.Crawl.MaxPages)
	}
	if config.Output.Format != "sqlite" {
		t.Errorf("Output.Format = %s", config.Output.Format)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	if _, err := core.LoadConfig(writeConfig(t, "crawl: [unclosed")); err == nil {
		t.Error("格式错误的配置文件应报错")
	}
}

func TestMergeCLIFlags(t *testing.T) {
	config, err := core.LoadConfig(writeConfig(t, "crawl:\n  max_pages: 100\n  max_depth: 3\n"))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	t.Run("未指定的参数保留配置值", func(t *testing.T) {
		config.MergeCLIFlags(core.UnsetCLIFlags())
		if config.Crawl.MaxPages != 100 || config.Crawl.MaxDepth != 3 || config.Crawl.RequestDelaySeconds != 1 {
			t.Errorf("配置被意外覆盖: %+v", config.Crawl)
		}
	})

	t.Run("命令行优先", func(t *testing.T) {
		flags := core.UnsetCLIFlags()
		flags.SeedURLs = []string{"https://marvelrivals.fandom.com/wiki/Heroes"}
		flags.Delay = 0
		flags.MaxPages = 0
		flags.NoRobots = true
		flags.Format = "sqlite"
		flags.LogLevel = "warn"
		config.MergeCLIFlags(flags)

		if !slices.Equal(config.Crawl.SeedURLs, flags.SeedURLs) {
			t.Errorf("SeedURLs = %v", config.Crawl.SeedURLs)
		}
		if config.Crawl.RequestDelaySeconds != 0 || config.Crawl.MaxPages != 0 {
			t.Errorf("显式的0值应生效: %+v", config.Crawl)
		}
		if config.Crawl.RespectRobotsTxt {
			t.Error("--no-robots 应关闭robots.txt")
		}
		if config.Output.Format != "sqlite" || config.Logging.Level != "warn" {
			t.Errorf("输出/日志配置不符: %+v %+v", config.Output, config.Logging)
		}
	})
}

func TestCrawlConfig_Validate(t *testing.T) {
	base := func() models.CrawlConfig { return models.DefaultCrawlConfig() }

	tests := []struct {
		name    string
		mutate  func(*models.CrawlConfig)
		wantErr bool
	}{
		{"默认配置", func(c *models.CrawlConfig) {}, false},
		{"空域名", func(c *models.CrawlConfig) { c.AllowedDomain = "" }, true},
		{"没有入口", func(c *models.CrawlConfig) { c.SeedURLs = nil }, true},
		{"入口不在域名内", func(c *models.CrawlConfig) { c.SeedURLs = []string{"https://other.example/wiki/A"} }, true},
		{"入口不是HTTP", func(c *models.CrawlConfig) { c.SeedURLs = []string{"ftp://marvelrivals.fandom.com/wiki/A"} }, true},
		{"间隔为负", func(c *models.CrawlConfig) { c.RequestDelaySeconds = -1 }, true},
		{"并发为0", func(c *models.CrawlConfig) { c.MaxConcurrentPerDomain = 0 }, true},
		{"上限为负", func(c *models.CrawlConfig) { c.MaxPages = -1 }, true},
		{"缺少正文选择器", func(c *models.CrawlConfig) { c.Extract.ContentSelector = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadURLsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.txt")
	content := `# 入口列表
https://marvelrivals.fandom.com/wiki/Heroes

not-a-url
https://marvelrivals.fandom.com/wiki/Maps
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}

	urls, err := utils.ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	want := []string{
		"https://marvelrivals.fandom.com/wiki/Heroes",
		"https://marvelrivals.fandom.com/wiki/Maps",
	}
	if !slices.Equal(urls, want) {
		t.Errorf("得到 %v, 期望 %v", urls, want)
	}

	t.Run("没有有效URL", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty.txt")
		os.WriteFile(empty, []byte("# only comments\n"), 0644)
		if _, err := utils.ReadURLsFromFile(empty); err == nil {
			t.Error("没有有效URL应报错")
		}
	})
}
