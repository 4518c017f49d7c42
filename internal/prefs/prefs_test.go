package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTheme string
		wantDemo  string
	}{
		{"theme and demo", "theme = \"Slate\"\nlast_demo = \"chat\"\n", "Slate", "chat"},
		{"trims values", "theme = \"  Nord \"\nlast_demo = \" cart \"\n", "Nord", "cart"},
		{"empty theme", "theme = \"\"\n", defaultTheme, ""},
		{"invalid toml", "not valid toml {{{\n", defaultTheme, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			p, err := Load(path)
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if p.Theme != tt.wantTheme || p.LastDemo != tt.wantDemo {
				t.Fatalf("Load = %+v, want theme %q demo %q", p, tt.wantTheme, tt.wantDemo)
			}
		})
	}
}

func TestLoad_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "statekit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte("theme = \"Slate\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want Slate", p.Theme)
	}
}

func TestRemember_KeepsTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	if err := Save(path, Prefs{Theme: "Slate"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := Remember(path, "todo"); err != nil {
		t.Fatalf("Remember returned error: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" || p.LastDemo != "todo" {
		t.Fatalf("Load = %+v, want Slate/todo", p)
	}
}

func TestSetTheme_KeepsLastDemo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := Remember(path, "chat"); err != nil {
		t.Fatalf("Remember returned error: %v", err)
	}
	if err := SetTheme(path, "Kanagawa"); err != nil {
		t.Fatalf("SetTheme returned error: %v", err)
	}

	p, _ := Load(path)
	if p.Theme != "Kanagawa" || p.LastDemo != "chat" {
		t.Fatalf("Load = %+v, want Kanagawa/chat", p)
	}
}

func TestUpdate_NoChangeSkipsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := Update(path, func(p *Prefs) { p.Theme = "  " }); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Stat error = %v, want not exist", err)
	}
}
