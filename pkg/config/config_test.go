package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Root  string `yaml:"root"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 1 {
		return errors.New("count must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SITE_ROOT", "/srv/site")
	p := writeConfig(t, "root: ${SITE_ROOT}\ncount: 3\n")
	var s sample
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Root != "/srv/site" || s.Count != 3 {
		t.Errorf("config = %+v", s)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	p := writeConfig(t, "count: 0\n")
	var s sample
	if err := Load(p, &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOptional_MissingKeepsDefaults(t *testing.T) {
	s := sample{Root: ".", Count: 7}
	loaded, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if loaded || s.Root != "." || s.Count != 7 {
		t.Errorf("loaded=%v config=%+v", loaded, s)
	}
}

func TestLoadOptional_OverlaysDefaults(t *testing.T) {
	s := sample{Root: ".", Count: 7}
	p := writeConfig(t, "root: site\n")
	loaded, err := LoadOptional(p, &s)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if !loaded || s.Root != "site" || s.Count != 7 {
		t.Errorf("loaded=%v config=%+v", loaded, s)
	}
}
