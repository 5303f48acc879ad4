package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wonny/propopol/internal/contracts"
)

// FileChannel overwrites a local markdown file (README.md by default)
type FileChannel struct {
	path string
}

// NewFileChannel creates a file channel
func NewFileChannel(path string) *FileChannel {
	return &FileChannel{path: path}
}

// Name implements contracts.Channel
func (f *FileChannel) Name() string {
	return "file"
}

// Publish replaces the file atomically via a temp file in the same directory
func (f *FileChannel) Publish(ctx context.Context, _ *contracts.Report, markdown string) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".report-*.md")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(markdown); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// Latest keeps the most recent report in memory for the status API
type Latest struct {
	mu       sync.RWMutex
	report   *contracts.Report
	markdown string
}

// NewLatest creates an empty holder
func NewLatest() *Latest {
	return &Latest{}
}

// Name implements contracts.Channel
func (l *Latest) Name() string {
	return "memory"
}

// Publish stores the report
func (l *Latest) Publish(ctx context.Context, r *contracts.Report, markdown string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.report = r
	l.markdown = markdown
	return nil
}

// Get returns the last published report, or nil
func (l *Latest) Get() (*contracts.Report, string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.report, l.markdown
}
