package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CrawlState 爬取驱动器状态
type CrawlState string

const (
	StateIdle     CrawlState = "idle"     // 未启动
	StateRunning  CrawlState = "running"  // 爬取中
	StateDraining CrawlState = "draining" // 队列已空或收到停止信号,收尾中
	StateDone     CrawlState = "done"     // 已结束
)

const (
	// DefaultAllowedDomain 默认允许爬取的域名
	DefaultAllowedDomain = "marvelrivals.fandom.com"

	// DefaultSeedURL 默认入口URL
	DefaultSeedURL = "https://marvelrivals.fandom.com/wiki/Marvel_Rivals_Wiki"

	// DefaultRequestDelaySeconds 同域名请求最小间隔(秒)
	DefaultRequestDelaySeconds = 1.0

	// DefaultMaxConcurrentPerDomain 单域名最大并发请求数
	DefaultMaxConcurrentPerDomain = 1

	// DefaultRequestTimeoutSeconds 单次请求超时(秒)
	DefaultRequestTimeoutSeconds = 30
)

// DefaultExcludedNamespaces 默认排除的命名空间前缀(/wiki/<prefix>:...)
var DefaultExcludedNamespaces = []string{
	"Category", "Talk", "File", "Help", "Template", "Special", "User",
}

// TaskStats 任务统计
type TaskStats struct {
	SeedURLs        int     `json:"seed_urls"`        // 入口URL数
	VisitedURLs     int     `json:"visited_urls"`     // 发起抓取的URL数
	FetchedPages    int     `json:"fetched_pages"`    // 成功抓取的页面数
	ArticlePages    int     `json:"article_pages"`    // 文章页数
	ListingPages    int     `json:"listing_pages"`    // 分类/列表页数
	EmittedRecords  int     `json:"emitted_records"`  // 输出记录数
	DiscoveredLinks int     `json:"discovered_links"` // 提取到的候选链接数(含重复)
	ScheduledURLs   int     `json:"scheduled_urls"`   // 新加入队列的URL数
	FailedURLs      int     `json:"failed_urls"`      // 被丢弃的URL数
	Duration        float64 `json:"duration"`         // 总耗时(秒)
}

// ExtractConfig 页面结构相关配置(选择器与路径标记)
type ExtractConfig struct {
	ArticlePrefix   string `mapstructure:"article_prefix" json:"article_prefix"`     // 文章链接前缀,如 /wiki/
	CategoryMarker  string `mapstructure:"category_marker" json:"category_marker"`   // 分类页路径标记,如 Category:
	ContentSelector string `mapstructure:"content_selector" json:"content_selector"` // 正文容器
	InfoboxSelector string `mapstructure:"infobox_selector" json:"infobox_selector"` // 信息框
	ListingSelector string `mapstructure:"listing_selector" json:"listing_selector"` // 分类页成员列表区域
	TitleSelector   string `mapstructure:"title_selector" json:"title_selector"`     // 标题
}

// DefaultExtractConfig 返回针对Fandom/MediaWiki页面的默认提取配置
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		ArticlePrefix:   "/wiki/",
		CategoryMarker:  "Category:",
		ContentSelector: ".mw-parser-output",
		InfoboxSelector: ".portable-infobox, .infobox",
		ListingSelector: ".category-page__members, #mw-pages",
		TitleSelector:   "h1",
	}
}

// CrawlConfig 爬取配置
type CrawlConfig struct {
	AllowedDomain          string            `mapstructure:"allowed_domain" json:"allowed_domain"`                           // 允许爬取的域名
	SeedURLs               []string          `mapstructure:"seed_urls" json:"seed_urls"`                                     // 入口URL列表(有序)
	ExcludedNamespaces     []string          `mapstructure:"excluded_namespace_prefixes" json:"excluded_namespace_prefixes"` // 排除的命名空间
	RequestDelaySeconds    float64           `mapstructure:"request_delay_seconds" json:"request_delay_seconds"`             // 同域名请求间隔(默认:1)
	MaxConcurrentPerDomain int               `mapstructure:"max_concurrent_per_domain" json:"max_concurrent_per_domain"`     // 单域名并发(默认:1)
	RespectRobotsTxt       bool              `mapstructure:"respect_robots_txt" json:"respect_robots_txt"`                   // 遵守robots.txt(默认:true)
	RequestTimeoutSeconds  int               `mapstructure:"request_timeout_seconds" json:"request_timeout_seconds"`         // 请求超时(默认:30)
	MaxPages               int               `mapstructure:"max_pages" json:"max_pages"`                                     // 最多抓取页面数,0表示不限
	MaxFrontierSize        int               `mapstructure:"max_frontier_size" json:"max_frontier_size"`                     // Frontier容量上限,0表示不限
	MaxDepth               int               `mapstructure:"max_depth" json:"max_depth"`                                     // 最大链接深度,0表示不限
	UserAgent              string            `mapstructure:"user_agent" json:"user_agent"`                                   // User-Agent
	Headers                map[string]string `mapstructure:"headers" json:"-"`                                               // 自定义请求头

	Extract ExtractConfig `mapstructure:"-" json:"extract"`
}

// DefaultCrawlConfig 返回默认爬取配置
func DefaultCrawlConfig() CrawlConfig {
	return CrawlConfig{
		AllowedDomain:          DefaultAllowedDomain,
		SeedURLs:               []string{DefaultSeedURL},
		ExcludedNamespaces:     append([]string(nil), DefaultExcludedNamespaces...),
		RequestDelaySeconds:    DefaultRequestDelaySeconds,
		MaxConcurrentPerDomain: DefaultMaxConcurrentPerDomain,
		RespectRobotsTxt:       true,
		RequestTimeoutSeconds:  DefaultRequestTimeoutSeconds,
		Extract:                DefaultExtractConfig(),
	}
}

// RequestDelay 请求间隔
func (c *CrawlConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelaySeconds * float64(time.Second))
}

// RequestTimeout 请求超时
func (c *CrawlConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeoutSeconds * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// LinkScope 根据配置构造链接范围过滤器
func (c *CrawlConfig) LinkScope() LinkScope {
	return NewLinkScope(c.Extract.ArticlePrefix, c.ExcludedNamespaces)
}

// Validate 验证配置
func (c *CrawlConfig) Validate() error {
	if strings.TrimSpace(c.AllowedDomain) == "" {
		return fmt.Errorf("allowed_domain不能为空")
	}
	if len(c.SeedURLs) == 0 {
		return ErrNoSeeds
	}
	for _, seed := range c.SeedURLs {
		if err := ValidateURL(seed); err != nil {
			return fmt.Errorf("无效的入口URL [%s]: %w", seed, err)
		}
		parsed, _ := url.Parse(seed)
		if !strings.EqualFold(parsed.Hostname(), c.AllowedDomain) {
			return fmt.Errorf("入口URL不在允许的域名内: %s (允许: %s)", seed, c.AllowedDomain)
		}
	}
	if c.RequestDelaySeconds < 0 || c.RequestDelaySeconds > 60 {
		return fmt.Errorf("请求间隔必须在0-60秒之间")
	}
	if c.MaxConcurrentPerDomain < 1 || c.MaxConcurrentPerDomain > 100 {
		return fmt.Errorf("单域名并发数必须在1-100之间")
	}
	if c.MaxPages < 0 || c.MaxFrontierSize < 0 || c.MaxDepth < 0 {
		return fmt.Errorf("max_pages/max_frontier_size/max_depth不能为负数")
	}
	if c.Extract.ArticlePrefix == "" || c.Extract.ContentSelector == "" {
		return fmt.Errorf("article_prefix和content_selector不能为空")
	}
	return nil
}
