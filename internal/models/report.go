package models

import (
	"encoding/json"
	"time"
)

// CrawlReport 爬取报告
type CrawlReport struct {
	// 任务信息
	TaskID        string     `json:"task_id"`
	AllowedDomain string     `json:"allowed_domain"`
	SeedURLs      []string   `json:"seed_urls"`
	FinalState    CrawlState `json:"final_state"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	Stats        TaskStats      `json:"stats"`
	FailureKinds map[string]int `json:"failure_kinds"` // 失败类型 -> 数量

	// 失败列表
	FailedURLs []FailedURLInfo `json:"failed_urls"`

	// 输出位置
	OutputPath string `json:"output_path"`

	// 配置快照
	Config CrawlConfig `json:"config"`
}

// FailedURLInfo 被丢弃的URL
type FailedURLInfo struct {
	URL        string `json:"url"`
	ErrorType  string `json:"error_type"` // Failure* 常量
	ErrorMsg   string `json:"error_msg"`
	StatusCode int    `json:"status_code,omitempty"`
	Depth      int    `json:"depth"`
}

// CountFailureKinds 按失败类型汇总
func CountFailureKinds(failed []FailedURLInfo) map[string]int {
	counts := make(map[string]int)
	for _, f := range failed {
		counts[f.ErrorType]++
	}
	return counts
}

// ToJSON 序列化为JSON
func (r *CrawlReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *CrawlReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
