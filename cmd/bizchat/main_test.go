package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"bizchat/internal/config"
	"bizchat/internal/types"
)

func TestOpenLoggerCreatesDataDirOnFirstRun(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	log, closeLog, err := openLogger(config.DefaultConfig())
	if err != nil {
		t.Fatalf("openLogger: %v", err)
	}
	defer closeLog()
	if log == nil {
		t.Fatalf("expected a logger")
	}

	path, err := config.LogPath()
	if err != nil {
		t.Fatalf("LogPath: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file should exist after openLogger: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("data dir should exist after openLogger: %v", err)
	}
}

func TestPrintConversationsTruncatesMultibytePreviewCleanly(t *testing.T) {
	preview := strings.Repeat("héllo wörld ", 10)
	entries := []types.ChatHistoryEntry{{
		ID:              1,
		SenderUserID:    9,
		RecipientUserID: 7,
		Preview:         preview,
		UpdatedAt:       time.Now(),
		Sender:          types.Party{ID: 9, FirstName: "Ava", LastName: "Chen"},
		Recipient:       types.Party{ID: 7, FirstName: "Noor", LastName: "Haddad"},
	}}

	var buf bytes.Buffer
	printConversations(&buf, entries, 7)

	out := buf.String()
	if !utf8.ValidString(out) {
		t.Fatalf("truncation split a rune: %q", out)
	}
	if !strings.Contains(out, "Ava Chen") {
		t.Fatalf("partner name missing from listing: %q", out)
	}
	if !strings.Contains(out, "...") {
		t.Fatalf("long preview should be truncated: %q", out)
	}
}
