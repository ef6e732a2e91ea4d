package infra

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"rates_go/internal/domain"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileChatLog appends one line per inbound message to a rotating text file.
type FileChatLog struct {
	mu  sync.Mutex
	out *lumberjack.Logger
}

// NewFileChatLog opens (or creates) the chat log at path.
func NewFileChatLog(path string, maxSizeMB, maxBackups int) (*FileChatLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create chat log directory: %w", err)
		}
	}
	return &FileChatLog{
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		},
	}, nil
}

// Append writes the entry's line. The write has completed when Append returns.
func (l *FileChatLog) Append(ctx context.Context, entry domain.ChatLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write([]byte(entry.Line() + "\n")); err != nil {
		return fmt.Errorf("append chat log: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *FileChatLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.Close()
}

// TeeSink fans one entry out to several sinks. Every sink is attempted.
type TeeSink []domain.ChatLogSink

func (t TeeSink) Append(ctx context.Context, entry domain.ChatLogEntry) error {
	var errs []error
	for _, sink := range t {
		if err := sink.Append(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
