package logtail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

var sample = []string{
	"noise before the first record",
	"mutation products/setProducts @ 10:00:00.000 prev=... mutation={} next=...",
	"action cart/addProductToCart @ 10:00:01.000",
	"  action:     {\"type\":\"cart/addProductToCart\"}",
	"  state:      ...",
	"",
	"mutation cart/pushProductToCart @ 10:00:01.001 prev=... mutation={} next=...",
	"mutation increment @ 10:00:02.000 prev=... mutation={} next=...",
}

func TestParseGroupsDetailLines(t *testing.T) {
	entries := Parse(sample)
	if len(entries) != 4 {
		t.Fatalf("Parse returned %d entries, want 4", len(entries))
	}
	act := entries[1]
	if act.Kind != "action" || act.Type != "cart/addProductToCart" || act.At != "10:00:01.000" {
		t.Fatalf("entry = %+v", act)
	}
	if len(act.Lines) != 3 {
		t.Fatalf("action lines = %d, want 3", len(act.Lines))
	}
}

func TestFilterMatch(t *testing.T) {
	entries := Parse(sample)
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"products/setProducts", "cart/addProductToCart", "cart/pushProductToCart", "increment"}},
		{"mutations", Filter{Kind: "mutation"}, []string{"products/setProducts", "cart/pushProductToCart", "increment"}},
		{"namespace", Filter{Type: "cart/"}, []string{"cart/addProductToCart", "cart/pushProductToCart"}},
		{"exact", Filter{Type: "increment"}, []string{"increment"}},
		{"kind and namespace", Filter{Kind: "action", Type: "products/"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, e := range tt.filter.Apply(entries) {
				got = append(got, e.Type)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Apply = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorizeKeepsText(t *testing.T) {
	line := "mutation increment @ 10:00:02.000 prev=1 mutation={} next=2"
	got := Colorize(line)
	for _, part := range []string{"mutation", "increment", "10:00:02.000", "next=2"} {
		if !strings.Contains(got, part) {
			t.Fatalf("Colorize dropped %q: %q", part, got)
		}
	}
	if got := Colorize("plain"); got != "plain" {
		t.Fatalf("Colorize(plain) = %q", got)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mutations.log")
	if err := os.WriteFile(path, []byte("old line\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var mu sync.Mutex
	var got []string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	offset := Size(path)
	go func() {
		done <- Follow(ctx, path, offset, 5*time.Millisecond, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, _ = f.WriteString("first\nsec")
	_ = f.Sync()
	time.Sleep(20 * time.Millisecond)
	_, _ = f.WriteString("ond\n")
	_ = f.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Fatalf("Follow emitted %q, want [first second]", got)
	}
}
