package msgcat

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := c.Render("status.your_turn", map[string]any{"Player": "Player A", "Name": "alice"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(got, "alice") || !strings.Contains(got, "Player A") {
		t.Fatalf("unexpected text %q", got)
	}
	if rules := c.Text("rules.lines", nil); !strings.Contains(rules, "lowest empty row") {
		t.Fatalf("rules text missing: %q", rules)
	}
}

func TestMissingKeyAndField(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.Render("nope.nothing", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := c.Render("notice.rejected", map[string]any{}); err == nil {
		t.Fatalf("missing template field should fail")
	}
	if got := c.Text("nope.nothing", nil); got != "nope.nothing" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("title: \"Vier gewinnt\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("title: nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := c.Text("title", nil); got != "Vier gewinnt" {
		t.Fatalf("title = %q", got)
	}
	// untouched keys keep their defaults
	if got := c.Text("status.draw", nil); !strings.Contains(got, "draw") {
		t.Fatalf("draw = %q", got)
	}
}

func TestOverrideDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("notice:\n  peer_lost: \"x\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate override key") {
		t.Fatalf("err = %v", err)
	}
}

func TestNonStringLeafRejected(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("count: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("numeric leaf should be rejected")
	}
}
