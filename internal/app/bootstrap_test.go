package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rates_go/internal/domain"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	b := NewBootstrap(filepath.Join(t.TempDir(), "absent.yaml"))
	if err := b.LoadConfig(); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if b.Config.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", b.Config.Server.Port)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	b := NewBootstrap(writeConfig(t, dir, "server:\n  port: 0\n"))
	if err := b.LoadConfig(); err == nil {
		t.Error("expected validation error")
	}
}

func TestInitialize(t *testing.T) {
	dir := t.TempDir()
	chatLog := filepath.Join(dir, "server-log.log")
	path := writeConfig(t, dir, `
chat_log:
  path: `+chatLog+`
  archive: true
storage:
  path: `+filepath.Join(dir, "chat.db")+`
logging:
  dir: `+filepath.Join(dir, "logs")+`
`)

	b := NewBootstrap(path)
	if err := b.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if b.Server == nil || b.Aggregator == nil || b.Storage == nil || b.Metrics == nil {
		t.Fatal("expected server, aggregator, storage and metrics to be wired")
	}

	if got := b.Server.Dispatch(context.Background(), "hi"); got != "hi" {
		t.Errorf("Dispatch = %q", got)
	}
	entry := domain.ChatLogEntry{Timestamp: time.Now(), Sender: "A", Message: "hi"}
	if err := b.ChatLog.Append(context.Background(), entry); err != nil {
		t.Fatalf("chat log append failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(chatLog)
	if err != nil {
		t.Fatalf("chat log not written: %v", err)
	}
	if !strings.HasSuffix(string(data), ": A - hi\n") {
		t.Errorf("unexpected chat log %q", data)
	}
}
