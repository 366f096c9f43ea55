package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
	"github.com/keiriina/marvelrivals-chat/internal/models"
	"github.com/keiriina/marvelrivals-chat/internal/utils"
	"golang.org/x/net/html"
)

// colly上下文中使用的键
const (
	ctxKeyStdContext = "std_ctx"
	ctxKeyResponse   = "response"
	ctxKeyStatus     = "status"
)

// PageDocument 抓取并解析后的页面
// 由Fetcher创建,爬取核心只读,不在提取调用之外保留
type PageDocument struct {
	// CanonicalURL 请求时使用的规范化URL(Frontier中的键)
	CanonicalURL string

	// URL 最终响应URL(重定向之后),用于解析相对链接
	URL *url.URL

	// StatusCode HTTP状态码
	StatusCode int

	// Doc 文档树
	Doc *goquery.Document
}

// Fetcher 页面抓取器
// 实现方负责域名白名单、robots.txt、同域名并发与请求间隔
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*PageDocument, error)
}

// CollyFetcher 基于Colly的同步抓取器
type CollyFetcher struct {
	collector *colly.Collector

	// HTTP头部提供者
	headerProvider models.HeaderProvider
}

// NewCollyFetcher 创建抓取器
// 礼貌策略全部交给Colly:
//   - AllowedDomains: 只允许配置的域名
//   - IgnoreRobotsTxt: 由respect_robots_txt控制
//   - LimitRule: 单域名并发数 + 请求间隔
//
// 去重只由Frontier负责,因此开启AllowURLRevisit
func NewCollyFetcher(config models.CrawlConfig, headerProvider models.HeaderProvider) (*CollyFetcher, error) {
	options := []colly.CollectorOption{
		colly.AllowedDomains(config.AllowedDomain),
		colly.AllowURLRevisit(),
	}
	if config.UserAgent != "" {
		options = append(options, colly.UserAgent(config.UserAgent))
	}

	c := colly.NewCollector(options...)
	c.IgnoreRobotsTxt = !config.RespectRobotsTxt
	c.SetRequestTimeout(config.RequestTimeout())

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: config.MaxConcurrentPerDomain,
		Delay:       config.RequestDelay(),
	}); err != nil {
		return nil, fmt.Errorf("设置并发限制失败: %w", err)
	}

	utils.Debugf("抓取器: 域名=%s, 并发=%d, 间隔=%v, robots=%v",
		config.AllowedDomain, config.MaxConcurrentPerDomain, config.RequestDelay(), config.RespectRobotsTxt)

	f := &CollyFetcher{
		collector:      c,
		headerProvider: headerProvider,
	}
	f.setupCallbacks()
	return f, nil
}

// setupCallbacks 设置Colly回调
// 结果通过请求上下文传回Fetch
func (f *CollyFetcher) setupCallbacks() {
	f.collector.OnRequest(func(r *colly.Request) {
		if stdCtx, ok := r.Ctx.GetAny(ctxKeyStdContext).(context.Context); ok && stdCtx.Err() != nil {
			r.Abort()
			return
		}

		// 应用自定义HTTP头部
		if f.headerProvider != nil {
			headers, err := f.headerProvider.GetHeaders()
			if err != nil {
				utils.Warnf("获取HTTP头部失败: %v", err)
			} else {
				for name, values := range headers {
					if len(values) > 0 {
						r.Headers.Set(name, values[0])
					}
				}
			}
		}

		utils.Debugf("访问: %s", r.URL.String())
	})

	f.collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxKeyResponse, r)
	})

	f.collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.Ctx != nil {
			r.Ctx.Put(ctxKeyStatus, r.StatusCode)
		}
	})
}

// Fetch 抓取并解析页面
// 返回的错误为 *models.FetchError 或 *models.ParseError
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (*PageDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, &models.FetchError{URL: rawURL, Kind: models.FailureCancelled, Cause: err}
	}

	cctx := colly.NewContext()
	cctx.Put(ctxKeyStdContext, ctx)

	if err := f.collector.Request(http.MethodGet, rawURL, nil, cctx, nil); err != nil {
		status, _ := cctx.GetAny(ctxKeyStatus).(int)
		return nil, classifyFetchError(rawURL, status, err)
	}

	resp, ok := cctx.GetAny(ctxKeyResponse).(*colly.Response)
	if !ok {
		// OnRequest中被中止
		if ctx.Err() != nil {
			return nil, &models.FetchError{URL: rawURL, Kind: models.FailureCancelled, Cause: ctx.Err()}
		}
		return nil, &models.FetchError{URL: rawURL, Kind: models.FailureFetch, Cause: errors.New("没有收到响应")}
	}

	return parseResponse(rawURL, resp)
}

// parseResponse 解压响应体并解析为文档树
func parseResponse(rawURL string, resp *colly.Response) (*PageDocument, error) {
	contentType := resp.Headers.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		return nil, &models.ParseError{URL: rawURL, Cause: fmt.Errorf("不是HTML页面: %s", contentType)}
	}

	body := resp.Body
	if encoding := resp.Headers.Get("Content-Encoding"); encoding != "" {
		decompressed, err := decompressBody(encoding, resp.Body)
		if err != nil {
			return nil, &models.ParseError{URL: rawURL, Cause: err}
		}
		body = decompressed
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &models.ParseError{URL: rawURL, Cause: err}
	}

	pageURL := resp.Request.URL
	if pageURL == nil {
		pageURL, err = url.Parse(rawURL)
		if err != nil {
			return nil, &models.ParseError{URL: rawURL, Cause: err}
		}
	}

	return &PageDocument{
		CanonicalURL: rawURL,
		URL:          pageURL,
		StatusCode:   resp.StatusCode,
		Doc:          goquery.NewDocumentFromNode(root),
	}, nil
}

// classifyFetchError 将Colly返回的错误归类
func classifyFetchError(rawURL string, status int, err error) *models.FetchError {
	kind := models.FailureFetch
	switch {
	case errors.Is(err, colly.ErrRobotsTxtBlocked):
		kind = models.FailureRobotsBlocked
	case errors.Is(err, colly.ErrForbiddenDomain), errors.Is(err, colly.ErrForbiddenURL):
		kind = models.FailureForbiddenDomain
	case status > 0:
		kind = models.FailureHTTPStatus
	}
	return &models.FetchError{URL: rawURL, StatusCode: status, Kind: kind, Cause: err}
}

// decompressBody 根据Content-Encoding头部解压响应体
// gzip通常已由Colly解压,这里只在数据仍带gzip头时处理
func decompressBody(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body, nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()
		return readAll(reader, "gzip")

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()
		return readAll(reader, "deflate")

	case "br":
		return readAll(brotli.NewReader(bytes.NewReader(body)), "brotli")

	case "identity":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}

func readAll(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s读取失败: %w", name, err)
	}
	return data, nil
}
