package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/keiriina/marvelrivals-chat/internal/models"
)

// StdoutPath 表示写到标准输出的路径
const StdoutPath = "-"

// JSONLSink 每行一条JSON记录
type JSONLSink struct {
	buf     *bufio.Writer
	encoder *json.Encoder
	closer  io.Closer // stdout时为nil
	mu      sync.Mutex
	count   int
}

// NewJSONLSink 写入任意io.Writer,Close不会关闭w
func NewJSONLSink(w io.Writer) *JSONLSink {
	buf := bufio.NewWriter(w)
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	return &JSONLSink{buf: buf, encoder: encoder}
}

// OpenJSONLFile 打开JSONL输出文件,"-"或空路径表示stdout
// 已存在的文件会被覆盖
func OpenJSONLFile(path string) (*JSONLSink, error) {
	if path == "" || path == StdoutPath {
		return NewJSONLSink(os.Stdout), nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("创建输出文件失败: %w", err)
	}

	sink := NewJSONLSink(file)
	sink.closer = file
	return sink, nil
}

// Write 写入一条记录并立即刷新,保证中断时已输出的记录完整
func (s *JSONLSink) Write(record models.ArticleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.encoder.Encode(record); err != nil {
		return fmt.Errorf("编码记录失败 [%s]: %w", record.URL, err)
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("写入记录失败 [%s]: %w", record.URL, err)
	}
	s.count++
	return nil
}

// Count 已写入记录数
func (s *JSONLSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close 刷新缓冲并关闭文件
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("刷新输出失败: %w", err)
	}
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}
