package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReportKey(t *testing.T) {
	raw := []byte("<html/>")

	a := ReportKey(raw, "esef", "xml")
	if !strings.HasPrefix(a, keyPrefix) {
		t.Errorf("Expected key prefix %q, got %s", keyPrefix, a)
	}
	if a != ReportKey(raw, "esef", "xml") {
		t.Error("Expected stable key for identical input")
	}

	variants := map[string]string{
		"profile": ReportKey(raw, "generic", "xml"),
		"parser":  ReportKey(raw, "esef", "html"),
		"content": ReportKey([]byte("<html></html>"), "esef", "xml"),
		// settings are separated, so shifting a byte between them changes the key
		"boundary": ReportKey(raw, "esefx", "ml"),
	}
	for name, key := range variants {
		if key == a {
			t.Errorf("Expected %s change to produce a different key", name)
		}
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	value := []byte("report")
	if err := c.Set("k", value, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'X'

	got, ok := c.Get("k")
	if !ok || string(got) != "report" {
		t.Errorf("Expected stored copy 'report', got %q (found=%v)", got, ok)
	}

	got[0] = 'Y'
	if again, _ := c.Get("k"); string(again) != "report" {
		t.Errorf("Expected Get to return a copy, got %q", again)
	}

	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected miss after Delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), time.Millisecond)

	time.Sleep(10 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(filepath.Join(dir, "reports"), time.Hour)

	key := ReportKey([]byte("filing"), "esef", "xml")
	if err := c.Set(key, []byte(`{"valid":true}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get(key)
	if !ok || string(got) != `{"valid":true}` {
		t.Errorf("Unexpected value %q (found=%v)", got, ok)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || strings.Contains(entries[0].Name(), ":") {
		t.Errorf("Expected one entry file without colons, got %v", entries)
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Expected deleting a missing key to succeed, got %v", err)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set("k", []byte("v"), time.Millisecond)

	time.Sleep(10 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Expected expired entry to miss")
	}
}

func TestDiskCache_ClearKeepsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(other, []byte("keep"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c := NewDiskCache(dir, time.Hour)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Expected a to be cleared")
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("Expected unrelated file to survive Clear: %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	first := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := first.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A fresh process shares only the disk layer
	second := NewLayeredCache(time.Minute, dir, time.Hour)
	if _, ok := second.memory.Get("k"); ok {
		t.Fatal("Expected empty memory layer")
	}

	got, ok := second.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("Expected disk hit, got %q (found=%v)", got, ok)
	}
	if _, ok := second.memory.Get("k"); !ok {
		t.Error("Expected disk hit to be promoted to memory")
	}

	if err := second.Clear(); err != nil {
		t.Errorf("Clear failed: %v", err)
	}
	if _, ok := first.disk.Get("k"); ok {
		t.Error("Expected disk layer to be cleared")
	}
}
