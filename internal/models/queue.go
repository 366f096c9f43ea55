package models

// URLItem 表示队列中的一个URL项
// 用途:
//   - 在Frontier调度队列中传递URL和深度信息
//   - 记录发现来源,便于排查
type URLItem struct {
	// URL 规范化后的完整URL
	URL string

	// Depth URL的深度层级
	//   - 0: 入口URL
	//   - 1: 从入口页面发现的链接
	//   - 以此类推...
	Depth int

	// Kind 页面类型(入队时判定一次)
	Kind PageKind

	// SourceURL 发现此URL的源页面(入口URL为空)
	SourceURL string
}
