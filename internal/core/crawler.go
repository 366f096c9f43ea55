package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/keiriina/marvelrivals-chat/internal/crawlers"
	"github.com/keiriina/marvelrivals-chat/internal/models"
	"github.com/keiriina/marvelrivals-chat/internal/output"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
	"golang.org/x/sync/errgroup"
)

// Crawler 主爬取器协调器
// 负责把抓取器、爬取驱动器和输出端串起来,并在结束后生成报告
type Crawler struct {
	config *Config
	sink   output.RecordSink
	driver *crawlers.Crawler

	taskID       string
	showProgress bool
}

// NewCrawler 创建主爬取器
// sink由调用方打开和关闭
func NewCrawler(config *Config, fetcher crawlers.Fetcher, sink output.RecordSink) (*Crawler, error) {
	if sink == nil {
		return nil, fmt.Errorf("输出端不能为空")
	}

	driver, err := crawlers.NewCrawler(config.GetCrawlConfig(), fetcher)
	if err != nil {
		return nil, err
	}

	return &Crawler{
		config: config,
		sink:   sink,
		driver: driver,
		taskID: models.GenerateID(),
	}, nil
}

// NewCollyCrawler 使用Colly抓取器创建主爬取器
func NewCollyCrawler(config *Config, headerProvider models.HeaderProvider, sink output.RecordSink) (*Crawler, error) {
	fetcher, err := crawlers.NewCollyFetcher(config.GetCrawlConfig(), headerProvider)
	if err != nil {
		return nil, fmt.Errorf("创建抓取器失败: %w", err)
	}
	return NewCrawler(config, fetcher, sink)
}

// SetProgress 是否在stderr显示进度
func (c *Crawler) SetProgress(show bool) {
	c.showProgress = show
}

// TaskID 本次运行的ID
func (c *Crawler) TaskID() string {
	return c.taskID
}

// Driver 返回爬取驱动器
func (c *Crawler) Driver() *crawlers.Crawler {
	return c.driver
}

// Crawl 执行爬取任务
// 执行流程:
//  1. 驱动器与输出端各一个goroutine,通过有界通道连接
//  2. 输出端写入失败时取消驱动器
//  3. ctx被取消视为正常停止,已输出的记录保留
//  4. 生成爬取报告
func (c *Crawler) Crawl(ctx context.Context) (models.CrawlReport, error) {
	bufferSize := c.config.Output.BufferSize
	if bufferSize <= 0 {
		bufferSize = 16
	}
	records := make(chan models.ArticleRecord, bufferSize)

	utils.Infof("任务ID: %s", c.taskID)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.driver.Run(gctx, records)
	})

	g.Go(func() error {
		return c.consume(records)
	})

	err := g.Wait()
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		utils.Warnf("⚠️ 爬取已停止,已输出 %d 篇文章", c.driver.GetStats().EmittedRecords)
		err = nil
	}

	report := c.driver.Report(c.taskID, c.config.Output.Path)
	if c.config.Output.ReportDir != "" {
		if _, reportErr := utils.NewReporter(c.config.Output.ReportDir).GenerateReport(report); reportErr != nil {
			utils.Warnf("生成报告失败: %v", reportErr)
		}
	}

	return report, err
}

// consume 把记录写入输出端,直到通道关闭
func (c *Crawler) consume(records <-chan models.ArticleRecord) error {
	var add func()
	if c.showProgress {
		bar := utils.NewProgressBar(-1, "抓取文章")
		defer bar.Finish()
		add = func() { _ = bar.Add(1) }
	}

	for record := range records {
		if err := c.sink.Write(record); err != nil {
			utils.Errorf("写入记录失败: %v", err)
			return fmt.Errorf("写入记录失败: %w", err)
		}
		if add != nil {
			add()
		}
	}
	return nil
}
