package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keiriina/marvelrivals-chat/internal/models"
	"github.com/keiriina/marvelrivals-chat/internal/output"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀,如 WIKICRAWL_CRAWL_MAX_PAGES
const EnvPrefix = "WIKICRAWL"

// Config 应用程序配置
type Config struct {
	Crawl   models.CrawlConfig   `mapstructure:"crawl"`
	Extract models.ExtractConfig `mapstructure:"extract"`
	Logging LoggingConfig        `mapstructure:"logging"`
	Output  OutputConfig         `mapstructure:"output"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	NoColor  bool           `mapstructure:"no_color"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Format     string `mapstructure:"format"`      // jsonl | sqlite | both
	Path       string `mapstructure:"path"`        // JSONL路径,"-"表示stdout
	SQLitePath string `mapstructure:"sqlite_path"` // SQLite数据库路径
	ReportDir  string `mapstructure:"report_dir"`  // 爬取报告目录,为空则不生成
	BufferSize int    `mapstructure:"buffer_size"` // 驱动器与输出端之间的通道容量
}

// LoadConfig 加载配置文件
// 查找顺序: 指定路径 > ./configs/config.yaml > ./config.yaml > ~/.wikicrawl/config.yaml
// 配置文件不存在时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".wikicrawl"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
	} else {
		utils.Debugf("使用配置文件: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: fmt.Errorf("解析配置失败: %w", err)}
	}

	return &config, nil
}

// setDefaults 设置默认配置值
// 每个键都需要默认值,AutomaticEnv才能覆盖到
func setDefaults(v *viper.Viper) {
	crawl := models.DefaultCrawlConfig()
	v.SetDefault("crawl.allowed_domain", crawl.AllowedDomain)
	v.SetDefault("crawl.seed_urls", crawl.SeedURLs)
	v.SetDefault("crawl.excluded_namespace_prefixes", crawl.ExcludedNamespaces)
	v.SetDefault("crawl.request_delay_seconds", crawl.RequestDelaySeconds)
	v.SetDefault("crawl.max_concurrent_per_domain", crawl.MaxConcurrentPerDomain)
	v.SetDefault("crawl.respect_robots_txt", crawl.RespectRobotsTxt)
	v.SetDefault("crawl.request_timeout_seconds", crawl.RequestTimeoutSeconds)
	v.SetDefault("crawl.max_pages", 0)
	v.SetDefault("crawl.max_frontier_size", 0)
	v.SetDefault("crawl.max_depth", 0)
	v.SetDefault("crawl.user_agent", "")
	v.SetDefault("crawl.headers", map[string]string{})

	extract := models.DefaultExtractConfig()
	v.SetDefault("extract.article_prefix", extract.ArticlePrefix)
	v.SetDefault("extract.category_marker", extract.CategoryMarker)
	v.SetDefault("extract.content_selector", extract.ContentSelector)
	v.SetDefault("extract.infobox_selector", extract.InfoboxSelector)
	v.SetDefault("extract.listing_selector", extract.ListingSelector)
	v.SetDefault("extract.title_selector", extract.TitleSelector)

	logging := utils.DefaultLogConfig()
	v.SetDefault("logging.level", logging.Level)
	v.SetDefault("logging.log_dir", logging.LogDir)
	v.SetDefault("logging.no_color", false)
	v.SetDefault("logging.rotation.max_size", logging.MaxSize)
	v.SetDefault("logging.rotation.max_backups", logging.MaxBackups)
	v.SetDefault("logging.rotation.max_age", logging.MaxAge)
	v.SetDefault("logging.rotation.compress", logging.Compress)

	v.SetDefault("output.format", output.FormatJSONL)
	v.SetDefault("output.path", output.StdoutPath)
	v.SetDefault("output.sqlite_path", output.DefaultSQLitePath)
	v.SetDefault("output.report_dir", "output")
	v.SetDefault("output.buffer_size", 16)
}

// GetCrawlConfig 返回合并了提取配置的爬取配置
func (c *Config) GetCrawlConfig() models.CrawlConfig {
	crawl := c.Crawl
	crawl.Extract = c.Extract
	return crawl
}

// GetLogConfig 转换为日志配置
func (c *Config) GetLogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
		NoColor:    c.Logging.NoColor,
	}
}

// GetOutputOptions 转换为输出端配置
func (c *Config) GetOutputOptions() output.Options {
	return output.Options{
		Format:     c.Output.Format,
		Path:       c.Output.Path,
		SQLitePath: c.Output.SQLitePath,
	}
}

// CLIFlags 命令行参数
// 零值/空值表示未指定,保留配置文件中的值
type CLIFlags struct {
	SeedURLs    []string
	Domain      string
	Delay       float64 // <0 表示未指定
	Concurrency int
	NoRobots    bool
	MaxPages    int // <0 表示未指定
	MaxFrontier int // <0 表示未指定
	MaxDepth    int // <0 表示未指定
	UserAgent   string
	Output      string
	Format      string
	ReportDir   string
	LogLevel    string
}

// MergeCLIFlags 合并命令行参数到配置,命令行优先于配置文件
func (c *Config) MergeCLIFlags(flags CLIFlags) {
	if len(flags.SeedURLs) > 0 {
		c.Crawl.SeedURLs = flags.SeedURLs
	}
	if flags.Domain != "" {
		c.Crawl.AllowedDomain = flags.Domain
	}
	if flags.Delay >= 0 {
		c.Crawl.RequestDelaySeconds = flags.Delay
	}
	if flags.Concurrency > 0 {
		c.Crawl.MaxConcurrentPerDomain = flags.Concurrency
	}
	if flags.NoRobots {
		c.Crawl.RespectRobotsTxt = false
	}
	if flags.MaxPages >= 0 {
		c.Crawl.MaxPages = flags.MaxPages
	}
	if flags.MaxFrontier >= 0 {
		c.Crawl.MaxFrontierSize = flags.MaxFrontier
	}
	if flags.MaxDepth >= 0 {
		c.Crawl.MaxDepth = flags.MaxDepth
	}
	if flags.UserAgent != "" {
		c.Crawl.UserAgent = flags.UserAgent
	}
	if flags.Output != "" {
		c.Output.Path = flags.Output
	}
	if flags.Format != "" {
		c.Output.Format = flags.Format
	}
	if flags.ReportDir != "" {
		c.Output.ReportDir = flags.ReportDir
	}
	if flags.LogLevel != "" {
		c.Logging.Level = flags.LogLevel
	}
}

// UnsetCLIFlags 返回所有字段都表示"未指定"的CLIFlags
func UnsetCLIFlags() CLIFlags {
	return CLIFlags{Delay: -1, MaxPages: -1, MaxFrontier: -1, MaxDepth: -1}
}
