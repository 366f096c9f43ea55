// Package crawlers 提供百科站点的爬取核心
//
// # 概述
//
// crawlers包从若干入口页面出发,沿文章链接遍历单个域名,
// 对每个文章页输出一条扁平的文章记录(models.ArticleRecord)。
// 每个URL在一次爬取中最多抓取一次,单个页面失败不会中止爬取。
//
// # 核心组件
//
// ## Frontier
//
// 已发现URL集合 + 先进先出调度队列。MarkIfNew在同一临界区内完成检查与插入,
// 同一规范化URL在一次爬取中最多返回一次true。
//
//	frontier := NewFrontier(0)
//	if frontier.MarkIfNew(link) {
//	    frontier.Schedule(models.URLItem{URL: link, Depth: 1})
//	}
//
// ## LinkExtractor
//
// 按文档顺序扫描<a href>,只保留 /wiki/ 开头且不属于排除命名空间的链接,
// 基于页面URL解析为绝对地址并去掉 # 之后的部分。结果是惰性序列(iter.Seq),
// 可能包含重复,去重交给Frontier。
//
//	for link := range extractor.ExtractFromDocument(page) {
//	    ...
//	}
//
// ## ContentExtractor
//
// 从文章页提取标题、信息框和正文容器直接子元素的文本,
// 段落按精确字符串去重后以 "\n\n" 连接。
//
// ## Fetcher / CollyFetcher
//
// 抓取接口。CollyFetcher负责域名白名单、robots.txt、
// 单域名并发与请求间隔,返回 *models.FetchError 或 *models.ParseError。
//
// ## Crawler
//
// 爬取驱动器,状态 Idle → Running → Draining → Done。
// 分类页(路径含 Category:)先对成员列表区域做链接提取,再做通用提取;
// 文章页额外提取内容并立即写入输出通道。
//
//	crawler, err := NewCrawler(config, fetcher)
//	records := make(chan models.ArticleRecord, 16)
//	go crawler.Run(ctx, records)
//	for record := range records {
//	    ...
//	}
//
// # 并发安全
//
//   - Frontier: sync.Mutex
//   - Crawler: 单个调度循环,统计信息由sync.RWMutex保护
//   - CollyFetcher: 并发与间隔由Colly的LimitRule控制
package crawlers
