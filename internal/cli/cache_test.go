package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 << 30, "5.0 GB"},
	}

	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCacheUsage(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "ab"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.json"), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ab", "b.json"), make([]byte, 50), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, size := cacheUsage(dir)
	if entries != 2 {
		t.Errorf("entries = %d, want 2", entries)
	}
	if size != 150 {
		t.Errorf("size = %d, want 150", size)
	}
}

func TestCacheUsageMissingDir(t *testing.T) {
	entries, size := cacheUsage(filepath.Join(t.TempDir(), "absent"))
	if entries != 0 || size != 0 {
		t.Errorf("usage of missing dir = (%d, %d), want (0, 0)", entries, size)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "ab"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.json", filepath.Join("ab", "b.json")} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	cfgToml := fmt.Sprintf("[cache]\nbackend = \"file\"\ndir = %q\n", dir)
	if err := os.WriteFile(cfgPath, []byte(cfgToml), 0o644); err != nil {
		t.Fatal(err)
	}

	c := testCLI()
	c.ConfigPath = cfgPath

	cmd := c.cacheClearCommand()
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	entries, size := cacheUsage(dir)
	if entries != 0 || size != 0 {
		t.Errorf("after clear: %d entries, %d bytes", entries, size)
	}
}

func TestCacheCommandSubcommands(t *testing.T) {
	cmd := testCLI().cacheCommand()

	want := map[string]bool{"info": false, "clear": false, "path": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("cache command is missing %q", name)
		}
	}
}
