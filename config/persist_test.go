package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPersistAppendsNewDirective(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".minishellrc")
	if err := Persist(path, "alias", "ll", "ls -la"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(got)) != "alias ll=ls -la" {
		t.Fatalf("content = %q", got)
	}
}

func TestPersistRewritesExistingDirective(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".minishellrc")
	if err := os.WriteFile(path, []byte("alias ll=ls -l\nexport EDITOR=vim\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Persist(path, "alias", "ll", "ls -la"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(got)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "alias ll=ls -la" {
		t.Fatalf("lines[0] = %q", lines[0])
	}
	if lines[1] != "export EDITOR=vim" {
		t.Fatalf("lines[1] = %q", lines[1])
	}
}
