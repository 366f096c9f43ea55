package crawlers

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/keiriina/marvelrivals-chat/internal/models"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
)

// Crawler 爬取驱动器
// 状态: Idle → Running → Draining → Done
// 单个调度循环: 取URL → 抓取 → 提取链接 → 去重入队 → 文章页提取内容并立即输出
type Crawler struct {
	config   models.CrawlConfig
	fetcher  Fetcher
	frontier *Frontier
	links    *LinkExtractor
	content  *ContentExtractor

	state     models.CrawlState
	stats     models.TaskStats
	failed    []models.FailedURLInfo
	startTime time.Time
	endTime   time.Time
	mu        sync.RWMutex

	frontierFullLogged bool
}

// NewCrawler 创建爬取驱动器
func NewCrawler(config models.CrawlConfig, fetcher Fetcher) (*Crawler, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher不能为空")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("无效的爬取配置: %w", err)
	}

	return &Crawler{
		config:   config,
		fetcher:  fetcher,
		frontier: NewFrontier(config.MaxFrontierSize),
		links:    NewLinkExtractor(config.LinkScope()),
		content:  NewContentExtractor(config.Extract),
		state:    models.StateIdle,
	}, nil
}

// Run 执行爬取,文章记录逐条写入out,结束时关闭out
// 单个URL的抓取/解析失败只记录并丢弃,不会中止爬取
// ctx取消后进入Draining,当前页面处理完即结束,返回ctx.Err()
func (c *Crawler) Run(ctx context.Context, out chan<- models.ArticleRecord) error {
	defer close(out)

	c.mu.Lock()
	if c.state != models.StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("爬取器状态为%s,只能运行一次", c.state)
	}
	c.state = models.StateRunning
	c.startTime = time.Now()
	c.mu.Unlock()

	utils.Infof("🚀 开始爬取: 域名=%s, 入口=%d个", c.config.AllowedDomain, len(c.config.SeedURLs))
	c.seed()

	for ctx.Err() == nil {
		if c.reachedPageLimit() {
			utils.Infof("已达到最大抓取页面数: %d", c.config.MaxPages)
			break
		}

		item, ok := c.frontier.Next()
		if !ok {
			break
		}

		c.processURL(ctx, item, out)
	}

	c.finish()

	if err := ctx.Err(); err != nil {
		utils.Warnf("爬取被中断: %v", err)
		return err
	}
	return nil
}

// seed 标记并调度入口URL,重复的入口只调度一次
func (c *Crawler) seed() {
	for _, seed := range c.config.SeedURLs {
		canonical, err := models.CanonicalURL(nil, seed)
		if err != nil {
			utils.Warnf("跳过无效的入口URL [%s]: %v", seed, err)
			continue
		}
		if !c.frontier.MarkSeed(canonical) {
			utils.Debugf("重复的入口URL: %s", canonical)
			continue
		}

		c.frontier.Schedule(models.URLItem{
			URL:   canonical,
			Depth: 0,
			Kind:  models.ClassifyPage(canonical, c.config.Extract.CategoryMarker),
		})

		c.mu.Lock()
		c.stats.SeedURLs++
		c.stats.ScheduledURLs++
		c.mu.Unlock()
	}
}

// processURL 抓取单个URL并分派到对应的提取路径
func (c *Crawler) processURL(ctx context.Context, item models.URLItem, out chan<- models.ArticleRecord) {
	c.mu.Lock()
	c.stats.VisitedURLs++
	c.mu.Unlock()

	page, err := c.fetcher.Fetch(ctx, item.URL)
	if err != nil {
		c.recordFailure(item, err)
		return
	}

	c.mu.Lock()
	c.stats.FetchedPages++
	if item.Kind == models.PageListing {
		c.stats.ListingPages++
	} else {
		c.stats.ArticlePages++
	}
	c.mu.Unlock()

	if c.config.MaxDepth == 0 || item.Depth < c.config.MaxDepth {
		if item.Kind == models.PageListing {
			c.enqueue(c.links.ExtractFromRegion(page, c.config.Extract.ListingSelector), item)
		}
		c.enqueue(c.links.ExtractFromDocument(page), item)
	}

	if item.Kind != models.PageArticle {
		return
	}

	record := c.content.ExtractArticle(page)
	select {
	case out <- record:
		c.mu.Lock()
		c.stats.EmittedRecords++
		c.mu.Unlock()
		utils.Infof("Scraped: %s - %d sections", record.TitleText(), record.SectionsCount)
	case <-ctx.Done():
	}
}

// enqueue 对每个候选链接调用MarkIfNew,新链接加入调度队列
func (c *Crawler) enqueue(links iter.Seq[string], parent models.URLItem) {
	discovered, scheduled := 0, 0
	for link := range links {
		discovered++
		if !c.frontier.MarkIfNew(link) {
			if !c.frontierFullLogged && c.frontier.Full() {
				c.frontierFullLogged = true
				utils.Warnf("%v (上限=%d),不再调度新URL", models.ErrFrontierFull, c.config.MaxFrontierSize)
			}
			continue
		}
		c.frontier.Schedule(models.URLItem{
			URL:       link,
			Depth:     parent.Depth + 1,
			Kind:      models.ClassifyPage(link, c.config.Extract.CategoryMarker),
			SourceURL: parent.URL,
		})
		scheduled++
	}

	c.mu.Lock()
	c.stats.DiscoveredLinks += discovered
	c.stats.ScheduledURLs += scheduled
	c.mu.Unlock()

	if scheduled > 0 {
		utils.Debugf("发现链接: %s (候选=%d, 新增=%d, 待抓取=%d)",
			parent.URL, discovered, scheduled, c.frontier.PendingCount())
	}
}

// recordFailure 记录被丢弃的URL,不重试
func (c *Crawler) recordFailure(item models.URLItem, err error) {
	info := models.FailedURLInfo{
		URL:       item.URL,
		ErrorType: models.FailureKind(err),
		ErrorMsg:  err.Error(),
		Depth:     item.Depth,
	}
	var fetchErr *models.FetchError
	if errors.As(err, &fetchErr) {
		info.StatusCode = fetchErr.StatusCode
	}

	c.mu.Lock()
	c.stats.FailedURLs++
	c.failed = append(c.failed, info)
	c.mu.Unlock()

	utils.Warnf("丢弃URL [%s] (%s): %v", item.URL, info.ErrorType, err)
}

// reachedPageLimit 是否已达到max_pages
func (c *Crawler) reachedPageLimit() bool {
	if c.config.MaxPages <= 0 {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.VisitedURLs >= c.config.MaxPages
}

// finish Running → Draining → Done
func (c *Crawler) finish() {
	c.mu.Lock()
	c.state = models.StateDraining
	c.mu.Unlock()

	pending := c.frontier.PendingCount()

	c.mu.Lock()
	c.endTime = time.Now()
	c.stats.Duration = c.endTime.Sub(c.startTime).Seconds()
	c.state = models.StateDone
	stats := c.stats
	c.mu.Unlock()

	utils.Infof("✅ 爬取完成: 抓取=%d, 输出=%d, 失败=%d, 未抓取=%d, 耗时=%.2f秒",
		stats.FetchedPages, stats.EmittedRecords, stats.FailedURLs, pending, stats.Duration)
}

// State 当前状态
func (c *Crawler) State() models.CrawlState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// GetStats 获取统计信息
func (c *Crawler) GetStats() models.TaskStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// FailedURLs 获取被丢弃的URL列表
func (c *Crawler) FailedURLs() []models.FailedURLInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.FailedURLInfo(nil), c.failed...)
}

// Frontier 返回本次爬取的Frontier
func (c *Crawler) Frontier() *Frontier {
	return c.frontier
}

// Report 生成爬取报告
func (c *Crawler) Report(taskID string, outputPath string) models.CrawlReport {
	c.mu.RLock()
	defer c.mu.RUnlock()

	failed := append([]models.FailedURLInfo(nil), c.failed...)
	return models.CrawlReport{
		TaskID:        taskID,
		AllowedDomain: c.config.AllowedDomain,
		SeedURLs:      append([]string(nil), c.config.SeedURLs...),
		FinalState:    c.state,
		StartTime:     c.startTime,
		EndTime:       c.endTime,
		Duration:      c.stats.Duration,
		Stats:         c.stats,
		FailureKinds:  models.CountFailureKinds(failed),
		FailedURLs:    failed,
		OutputPath:    outputPath,
		Config:        c.config,
	}
}
