// Package output 文章记录的输出端
//
// 爬取驱动器只负责产出记录,写到哪里由RecordSink决定:
//   - JSONLSink: 每行一条JSON记录(stdout或文件)
//   - SQLiteSink: 按URL去重写入SQLite表
//   - MultiSink: 同时写入多个输出端
package output

import (
	"errors"
	"fmt"

	"github.com/keiriina/marvelrivals-chat/internal/models"
)

// 输出格式
const (
	FormatJSONL  = "jsonl"
	FormatSQLite = "sqlite"
	FormatBoth   = "both"
)

// RecordSink 文章记录输出端
type RecordSink interface {
	Write(record models.ArticleRecord) error
	Close() error
}

// Options 输出配置
type Options struct {
	Format     string // jsonl | sqlite | both
	Path       string // JSONL输出路径,"-"表示stdout
	SQLitePath string
}

// Open 按配置创建输出端
func Open(opts Options) (RecordSink, error) {
	switch opts.Format {
	case "", FormatJSONL:
		jsonl, err := OpenJSONLFile(opts.Path)
		if err != nil {
			return nil, err
		}
		return jsonl, nil
	case FormatSQLite:
		db, err := OpenSQLiteSink(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case FormatBoth:
		jsonl, err := OpenJSONLFile(opts.Path)
		if err != nil {
			return nil, err
		}
		db, err := OpenSQLiteSink(opts.SQLitePath)
		if err != nil {
			_ = jsonl.Close()
			return nil, err
		}
		return NewMultiSink(jsonl, db), nil
	default:
		return nil, fmt.Errorf("不支持的输出格式: %s (可选: jsonl, sqlite, both)", opts.Format)
	}
}

// MultiSink 将每条记录依次写入多个输出端
type MultiSink struct {
	sinks []RecordSink
}

// NewMultiSink 创建组合输出端
func NewMultiSink(sinks ...RecordSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Write 写入所有输出端,遇到第一个错误即返回
func (m *MultiSink) Write(record models.ArticleRecord) error {
	for _, s := range m.sinks {
		if err := s.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Close 关闭所有输出端,返回合并后的错误
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
