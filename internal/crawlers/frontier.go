package crawlers

import (
	"sync"

	"github.com/keiriina/marvelrivals-chat/internal/models"
)

// Frontier 已发现URL集合 + 待抓取调度队列
// 职责:
//   - MarkIfNew: 检查并插入,保证同一URL在一次爬取中最多返回一次true
//   - Schedule/Next: 先进先出的待抓取队列
//
// 每个Crawler实例持有自己的Frontier,生命周期为一次爬取
type Frontier struct {
	// 已发现URL标记集合,只增不减
	seen map[string]struct{}

	// 待抓取队列(FIFO)
	pending []models.URLItem
	head    int

	// 容量上限,0表示不限
	maxSize int

	// 保护seen和pending的互斥锁
	// 检查与插入必须在同一临界区内完成
	mu sync.Mutex
}

// NewFrontier 创建Frontier实例
func NewFrontier(maxSize int) *Frontier {
	if maxSize < 0 {
		maxSize = 0
	}
	return &Frontier{
		seen:    make(map[string]struct{}),
		pending: make([]models.URLItem, 0, 64),
		maxSize: maxSize,
	}
}

// MarkIfNew 原子地检查URL是否已存在,不存在则插入
// 返回true表示调用方应该调度该URL
// 达到容量上限后新URL一律返回false
func (f *Frontier) MarkIfNew(canonicalURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markLocked(canonicalURL)
}

func (f *Frontier) markLocked(canonicalURL string) bool {
	if _, exists := f.seen[canonicalURL]; exists {
		return false
	}
	if f.maxSize > 0 && len(f.seen) >= f.maxSize {
		return false
	}
	f.seen[canonicalURL] = struct{}{}
	return true
}

// MarkSeed 标记入口URL,不受容量上限限制
// 返回false表示该入口URL已存在(重复的入口)
func (f *Frontier) MarkSeed(canonicalURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.seen[canonicalURL]; exists {
		return false
	}
	f.seen[canonicalURL] = struct{}{}
	return true
}

// Seen 检查URL是否已在集合中
func (f *Frontier) Seen(canonicalURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, exists := f.seen[canonicalURL]
	return exists
}

// Full 是否已达容量上限
func (f *Frontier) Full() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxSize > 0 && len(f.seen) >= f.maxSize
}

// Len 已发现URL数量
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// Schedule 加入待抓取队列
// 调用方需先通过MarkIfNew/MarkSeed确认URL是新的
func (f *Frontier) Schedule(item models.URLItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, item)
}

// Next 取出下一个待抓取URL,队列为空时返回false
func (f *Frontier) Next() (models.URLItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head >= len(f.pending) {
		return models.URLItem{}, false
	}
	item := f.pending[f.head]
	f.pending[f.head] = models.URLItem{}
	f.head++

	// 已消费部分过半时压缩底层数组
	if f.head > 1024 && f.head*2 > len(f.pending) {
		f.pending = append(f.pending[:0:0], f.pending[f.head:]...)
		f.head = 0
	}
	return item, true
}

// PendingCount 待抓取URL数量
func (f *Frontier) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending) - f.head
}

// Reset 清空所有状态,为下一次爬取准备
func (f *Frontier) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = make(map[string]struct{})
	f.pending = f.pending[:0]
	f.head = 0
}
