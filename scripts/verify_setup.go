package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/keiriina/marvelrivals-chat/internal/core"
	"github.com/keiriina/marvelrivals-chat/internal/models"
	"github.com/keiriina/marvelrivals-chat/internal/output"
)

func main() {
	fmt.Println("==============================================")
	fmt.Println("  wikicrawl 环境验证")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	// 检查Go版本
	goVersion := runtime.Version()
	fmt.Printf("✅ Go版本: %s\n", goVersion)
	if strings.HasPrefix(goVersion, "go1.21") || strings.HasPrefix(goVersion, "go1.22") {
		fmt.Println("⚠️  警告: 需要Go 1.23+版本(使用了iter包)")
		allOK = false
	}

	fmt.Printf("✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// 检查项目结构
	fmt.Println()
	fmt.Println("检查项目结构...")
	requiredDirs := []string{
		"cmd/wikicrawl",
		"internal/core",
		"internal/crawlers",
		"internal/models",
		"internal/output",
		"internal/utils",
		"configs",
	}
	for _, dir := range requiredDirs {
		if _, err := os.Stat(dir); err == nil {
			fmt.Printf("✅ %s/\n", dir)
		} else {
			fmt.Printf("❌ %s/ 不存在\n", dir)
			allOK = false
		}
	}

	// 检查配置
	fmt.Println()
	fmt.Println("检查配置...")
	config, err := core.LoadConfig("")
	if err != nil {
		fmt.Printf("❌ 加载配置失败: %v\n", err)
		allOK = false
	} else {
		crawl := config.GetCrawlConfig()
		if err := crawl.Validate(); err != nil {
			fmt.Printf("❌ 配置无效: %v\n", err)
			allOK = false
		} else {
			fmt.Printf("✅ 配置有效: 域名=%s, 入口=%d个\n", crawl.AllowedDomain, len(crawl.SeedURLs))
		}
	}

	// 检查SQLite驱动
	fmt.Println()
	fmt.Println("检查SQLite输出...")
	tmpDir, err := os.MkdirTemp("", "wikicrawl-verify-")
	if err != nil {
		fmt.Printf("❌ 创建临时目录失败: %v\n", err)
		allOK = false
	} else {
		defer os.RemoveAll(tmpDir)
		if err := checkSQLite(filepath.Join(tmpDir, "verify.db")); err != nil {
			fmt.Printf("❌ SQLite不可用: %v\n", err)
			allOK = false
		} else {
			fmt.Println("✅ SQLite读写正常")
		}
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ 环境验证通过!")
		fmt.Println()
		fmt.Println("下一步:")
		fmt.Println("  1. 运行 'go build ./cmd/wikicrawl' 构建项目")
		fmt.Println("  2. 运行 './wikicrawl --validate-config' 检查配置")
		fmt.Println("  3. 运行 './wikicrawl --max-pages 10' 试爬")
	} else {
		fmt.Println("❌ 环境验证失败,请解决上述问题。")
		os.Exit(1)
	}
}

// checkSQLite 写入并读回一条记录
func checkSQLite(path string) error {
	sink, err := output.OpenSQLiteSink(path)
	if err != nil {
		return err
	}
	defer sink.Close()

	title := "Verify"
	record := models.NewArticleRecord(&title, "https://example.org/wiki/Verify", []string{"ok"})
	if err := sink.Write(record); err != nil {
		return err
	}
	got, err := sink.Get(record.URL)
	if err != nil {
		return err
	}
	if got.Content != record.Content {
		return fmt.Errorf("读回内容不一致: %q", got.Content)
	}
	return nil
}
