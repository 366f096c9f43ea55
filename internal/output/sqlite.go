package output

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keiriina/marvelrivals-chat/internal/models"
	_ "modernc.org/sqlite"
)

// DefaultSQLitePath 默认数据库文件
const DefaultSQLitePath = "output/articles.db"

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	url            TEXT PRIMARY KEY,
	title          TEXT,
	content        TEXT NOT NULL,
	content_length INTEGER NOT NULL,
	sections_count INTEGER NOT NULL,
	scraped_at     DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_articles_title ON articles(title);
`

const upsertArticle = `
INSERT INTO articles (url, title, content, content_length, sections_count)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	title          = excluded.title,
	content        = excluded.content,
	content_length = excluded.content_length,
	sections_count = excluded.sections_count,
	scraped_at     = CURRENT_TIMESTAMP
`

// SQLiteSink 将记录写入SQLite的articles表,URL为主键
// 重复运行时同一URL的记录被覆盖
type SQLiteSink struct {
	db   *sql.DB
	stmt *sql.Stmt
	path string
}

// OpenSQLiteSink 打开或创建数据库并初始化表结构
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("设置journal_mode失败: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}

	stmt, err := db.Prepare(upsertArticle)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("准备写入语句失败: %w", err)
	}

	return &SQLiteSink{db: db, stmt: stmt, path: path}, nil
}

// Write 写入或覆盖一条记录
func (s *SQLiteSink) Write(record models.ArticleRecord) error {
	var title sql.NullString
	if record.Title != nil {
		title = sql.NullString{String: *record.Title, Valid: true}
	}
	if _, err := s.stmt.Exec(record.URL, title, record.Content, record.ContentLength, record.SectionsCount); err != nil {
		return fmt.Errorf("写入数据库失败 [%s]: %w", record.URL, err)
	}
	return nil
}

// Count 表中记录数
func (s *SQLiteSink) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&n); err != nil {
		return 0, fmt.Errorf("统计记录失败: %w", err)
	}
	return n, nil
}

// Get 按URL读取记录,不存在时返回sql.ErrNoRows
func (s *SQLiteSink) Get(url string) (models.ArticleRecord, error) {
	var (
		record models.ArticleRecord
		title  sql.NullString
	)
	err := s.db.QueryRow(
		"SELECT url, title, content, content_length, sections_count FROM articles WHERE url = ?", url,
	).Scan(&record.URL, &title, &record.Content, &record.ContentLength, &record.SectionsCount)
	if err != nil {
		return models.ArticleRecord{}, err
	}
	if title.Valid {
		record.Title = &title.String
	}
	return record, nil
}

// Path 数据库文件路径
func (s *SQLiteSink) Path() string {
	return s.path
}

// Close 关闭数据库
func (s *SQLiteSink) Close() error {
	if s.stmt != nil {
		_ = s.stmt.Close()
		s.stmt = nil
	}
	return s.db.Close()
}
