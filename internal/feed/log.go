package feed

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bublenz/feedpulse/internal/models"
	"github.com/sirupsen/logrus"
)

// Log is the durable append-only post log: newline-delimited JSON, one
// post per line, never rewritten or compacted. Appends are serialized by
// a mutex so the serve mode's handlers can share one Log.
type Log struct {
	path string
	mu   sync.Mutex
}

// NewLog opens (or creates) the raw log at path.
func NewLog(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &Log{path: path}, nil
}

// Append writes one post to the end of the log.
func (l *Log) Append(post models.Post) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open raw log: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal post %s: %w", post.ID, err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append to raw log: %w", err)
	}

	return nil
}

// ReadAll replays the whole log. Malformed lines are logged and skipped;
// a bad record never aborts the replay.
func (l *Log) ReadAll() ([]models.Post, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open raw log: %w", err)
	}
	defer f.Close()

	var posts []models.Post

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var post models.Post
		if err := json.Unmarshal([]byte(line), &post); err != nil {
			logrus.Warnf("Skipping malformed raw log line: %v", err)
			continue
		}
		if post.ObservedAt.IsZero() {
			logrus.Warnf("Skipping raw log record %s without timestamp", post.ID)
			continue
		}

		posts = append(posts, post)
	}

	if err := scanner.Err(); err != nil {
		return posts, fmt.Errorf("failed to read raw log: %w", err)
	}

	return posts, nil
}
