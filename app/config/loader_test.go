package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	options, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if options.DefaultAuthor.Login != "admin" {
		t.Errorf("Expected default author login 'admin', got '%s'", options.DefaultAuthor.Login)
	}
	if !options.ShouldPromoteOrphans() {
		t.Error("Expected orphan promotion enabled by default")
	}
	if options.Media.Domain != "" || options.Media.LocalDir != "" {
		t.Errorf("Expected empty media options, got %+v", options.Media)
	}
}

func TestLoadFromFile(t *testing.T) {
	localDir := t.TempDir()
	content := `
default_author:
  login: "editor"
  email: "editor@example.com"
  display_name: "The Editor"

comments:
  promote_orphans: false

media:
  domain: "myblog.example.com"
  local_dir: "` + localDir + `"
`
	path := filepath.Join(t.TempDir(), "options.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	options, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if options.DefaultAuthor.Login != "editor" {
		t.Errorf("Expected author login 'editor', got '%s'", options.DefaultAuthor.Login)
	}
	if options.DefaultAuthor.DisplayName != "The Editor" {
		t.Errorf("Expected display name 'The Editor', got '%s'", options.DefaultAuthor.DisplayName)
	}
	if options.ShouldPromoteOrphans() {
		t.Error("Expected orphan promotion disabled")
	}
	if options.Media.Domain != "myblog.example.com" {
		t.Errorf("Expected media domain, got '%s'", options.Media.Domain)
	}
	if options.Media.LocalDir != localDir {
		t.Errorf("Expected local dir %s, got '%s'", localDir, options.Media.LocalDir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/options.yml"); err == nil {
		t.Error("Expected error for missing options file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yml")
	if err := os.WriteFile(path, []byte("default_author: [not: valid"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadRejectsMissingLocalDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yml")
	content := `
media:
  local_dir: "/does/not/exist"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for nonexistent local_dir")
	}
}
