package main

import (
	"fmt"

	"github.com/keiriina/marvelrivals-chat/internal/core"
	"github.com/keiriina/marvelrivals-chat/internal/output"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
	"github.com/spf13/cobra"
)

// collectFlags 收集用户显式指定的命令行参数
// 未指定的参数不覆盖配置文件
func collectFlags(cmd *cobra.Command) (core.CLIFlags, error) {
	flags := core.UnsetCLIFlags()
	changed := cmd.Flags().Changed

	if changed("url") {
		flags.SeedURLs = append(flags.SeedURLs, seedURLs...)
	}
	if seedFile != "" {
		urls, err := utils.ReadURLsFromFile(seedFile)
		if err != nil {
			return flags, fmt.Errorf("读取入口URL文件失败: %w", err)
		}
		flags.SeedURLs = append(flags.SeedURLs, urls...)
	}

	if changed("domain") {
		flags.Domain = domain
	}
	if changed("delay") {
		if delay < 0 {
			return flags, fmt.Errorf("请求间隔不能为负数,当前值: %v", delay)
		}
		flags.Delay = delay
	}
	if changed("concurrency") {
		if concurrency < 1 {
			return flags, fmt.Errorf("并发数必须大于0,当前值: %d", concurrency)
		}
		flags.Concurrency = concurrency
	}
	flags.NoRobots = noRobots
	if changed("max-pages") {
		if maxPages < 0 {
			return flags, fmt.Errorf("--max-pages 不能为负数")
		}
		flags.MaxPages = maxPages
	}
	if changed("max-frontier") {
		if maxFrontier < 0 {
			return flags, fmt.Errorf("--max-frontier 不能为负数")
		}
		flags.MaxFrontier = maxFrontier
	}
	if changed("max-depth") {
		if maxDepth < 0 {
			return flags, fmt.Errorf("--max-depth 不能为负数")
		}
		flags.MaxDepth = maxDepth
	}
	flags.UserAgent = userAgent
	flags.Output = outputPath
	flags.Format = format
	flags.ReportDir = reportDir

	return flags, nil
}

// ValidateConfig 验证合并后的配置
func ValidateConfig(config *core.Config) error {
	crawlConfig := config.GetCrawlConfig()
	if err := crawlConfig.Validate(); err != nil {
		return fmt.Errorf("无效的爬取配置: %w", err)
	}

	switch config.Output.Format {
	case output.FormatJSONL, output.FormatSQLite, output.FormatBoth:
	default:
		return fmt.Errorf("无效的输出格式: %s (有效值: jsonl, sqlite, both)", config.Output.Format)
	}

	if config.Output.BufferSize < 0 {
		return fmt.Errorf("output.buffer_size 不能为负数")
	}
	return nil
}
