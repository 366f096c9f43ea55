package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keiriina/marvelrivals-chat/internal/core"
	"github.com/keiriina/marvelrivals-chat/internal/output"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers        []string
	validateConfig bool

	// 爬取参数
	seedURLs    []string
	seedFile    string
	domain      string
	delay       float64
	concurrency int
	noRobots    bool
	maxPages    int
	maxFrontier int
	maxDepth    int
	userAgent   string

	// 输出参数
	outputPath string
	format     string
	reportDir  string
	noProgress bool
)

// 由PersistentPreRunE加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "wikicrawl",
	Short: "Fandom/MediaWiki 百科爬取工具",
	Long: `wikicrawl - 将Fandom/MediaWiki百科爬取为扁平的文章记录流

从入口页面出发,沿 /wiki/ 文章链接遍历单个域名,每篇文章输出一条记录:
  {"title", "url", "content", "content_length", "sections_count"}

  • 分类页先提取成员列表再做通用链接提取
  • 每个URL只抓取一次,失败的URL记录后跳过
  • 遵守robots.txt,单域名1个并发,请求间隔1秒(可配置)
  • 输出JSONL(默认stdout)或SQLite

示例:
  # 使用默认入口爬取,JSONL写到stdout
  wikicrawl > articles.jsonl

  # 指定入口与输出文件,最多抓取100页
  wikicrawl -u https://marvelrivals.fandom.com/wiki/Heroes -o output/articles.jsonl --max-pages 100

  # 同时写入SQLite
  wikicrawl --format both -o output/articles.jsonl

  # 自定义请求头
  wikicrawl -H "Accept-Language: en-US"

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		if logLevel != "" {
			config.Logging.Level = logLevel
		} else if verbose {
			config.Logging.Level = "debug"
		}

		if err := utils.InitLogger(config.GetLogConfig()); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		appConfig = config
		return nil
	},
	RunE: runCrawl,
}

func runCrawl(cmd *cobra.Command, args []string) error {
	flags, err := collectFlags(cmd)
	if err != nil {
		return err
	}
	appConfig.MergeCLIFlags(flags)

	crawlConfig := appConfig.GetCrawlConfig()
	if err := ValidateConfig(appConfig); err != nil {
		return err
	}

	headerManager, err := core.NewHeaderManager(crawlConfig.Headers, crawlConfig.UserAgent, headers)
	if err != nil {
		return fmt.Errorf("HTTP头部配置无效: %w", err)
	}

	if validateConfig {
		utils.Info("✅ 配置验证通过!")
		utils.Infof("域名: %s", crawlConfig.AllowedDomain)
		utils.Infof("入口: %v", crawlConfig.SeedURLs)
		utils.Infof("请求头: %s", headerManager.SafeString())
		return nil
	}

	sink, err := output.Open(appConfig.GetOutputOptions())
	if err != nil {
		return fmt.Errorf("打开输出失败: %w", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			utils.Errorf("关闭输出失败: %v", err)
		}
	}()

	crawler, err := core.NewCollyCrawler(appConfig, headerManager, sink)
	if err != nil {
		return fmt.Errorf("创建爬取器失败: %w", err)
	}
	crawler.SetProgress(!noProgress && appConfig.Output.Path != output.StdoutPath)

	// Ctrl+C 停止调度,当前页面处理完后输出报告
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := crawler.Crawl(ctx)
	if err != nil {
		return fmt.Errorf("爬取失败: %w", err)
	}

	stats := report.Stats
	fmt.Fprintln(os.Stderr, "\n==================================================")
	fmt.Fprintln(os.Stderr, "📊 爬取统计")
	fmt.Fprintln(os.Stderr, "==================================================")
	fmt.Fprintf(os.Stderr, "✅ 抓取页面: %d (文章 %d, 分类 %d)\n", stats.FetchedPages, stats.ArticlePages, stats.ListingPages)
	fmt.Fprintf(os.Stderr, "✅ 输出文章: %d\n", stats.EmittedRecords)
	fmt.Fprintf(os.Stderr, "🔗 发现链接: %d (新增 %d)\n", stats.DiscoveredLinks, stats.ScheduledURLs)
	fmt.Fprintf(os.Stderr, "❌ 丢弃URL: %d %v\n", stats.FailedURLs, report.FailureKinds)
	fmt.Fprintf(os.Stderr, "⏱️  总耗时: %.2f秒\n", stats.Duration)
	fmt.Fprintln(os.Stderr, "==================================================")

	utils.Info("✨ 爬取任务完成!")
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wikicrawl %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式(等同 --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.Flags().BoolVar(&validateConfig, "validate-config", false, "只验证配置,不爬取")

	// 爬取参数
	rootCmd.Flags().StringSliceVarP(&seedURLs, "url", "u", nil, "入口URL,可多次指定")
	rootCmd.Flags().StringVarP(&seedFile, "seed-file", "f", "", "入口URL列表文件(每行一个)")
	rootCmd.Flags().StringVar(&domain, "domain", "", "允许爬取的域名")
	rootCmd.Flags().Float64Var(&delay, "delay", 1, "同域名请求间隔(秒)")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 1, "单域名最大并发请求数")
	rootCmd.Flags().BoolVar(&noRobots, "no-robots", false, "不遵守robots.txt")
	rootCmd.Flags().IntVar(&maxPages, "max-pages", 0, "最多抓取页面数 (0表示不限)")
	rootCmd.Flags().IntVar(&maxFrontier, "max-frontier", 0, "最多发现URL数 (0表示不限)")
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", 0, "最大链接深度 (0表示不限)")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent")

	// 输出参数
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "JSONL输出路径 ('-' 表示stdout)")
	rootCmd.Flags().StringVar(&format, "format", "", "输出格式 (jsonl|sqlite|both)")
	rootCmd.Flags().StringVar(&reportDir, "report-dir", "", "爬取报告目录")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "不显示进度")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
