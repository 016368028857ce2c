package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// snapshotTimeLayout names snapshot files by run timestamp.
const snapshotTimeLayout = "20060102_150405"

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileSystemSink buffers the whole SearchResult in memory and writes it once
// as a single timestamped file. Serialization failure aborts the write
// entirely; no partial or truncated file is ever produced.
type FileSystemSink struct {
	root   string
	clock  Clock
	logger *zap.Logger
}

// NewFileSystemSink returns a sink rooted at dir, creating it if absent.
func NewFileSystemSink(root string, clock Clock, logger *zap.Logger) (*FileSystemSink, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create sink dir %s: %w", root, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemSink{
		root:   root,
		clock:  clock,
		logger: logger,
	}, nil
}

// Save writes the result as one new, independently named artifact and
// returns its path. There is no update-in-place and no cross-run merge.
func (s *FileSystemSink) Save(ctx context.Context, result SearchResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: marshal result: %v", ErrSerialization, err)
	}

	target := filepath.Join(s.root, s.filename(result.Query))
	if err := os.WriteFile(target, payload, 0o600); err != nil {
		return "", fmt.Errorf("%w: write snapshot %s: %v", ErrSerialization, target, err)
	}

	s.logger.Info("snapshot written",
		zap.String("path", target),
		zap.Int("venues", len(result.Places)),
	)
	return target, nil
}

func (s *FileSystemSink) filename(query string) string {
	safe := invalidFilenameChars.ReplaceAllString(strings.TrimSpace(query), "_")
	if safe == "" {
		safe = "search"
	}
	return fmt.Sprintf("places_%s_%s.json", safe, s.clock.Now().Format(snapshotTimeLayout))
}
