package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadConfigFile_YAML(t *testing.T) {
	p := writeFile(t, "p2p.yaml", `
listingID: 829
baseURL: http://mirror.local/deals
output:
  json: out.json
  pdf: out.pdf
fetch:
  maxAttempts: 5
  timeout: 3s
cache:
  dir: /tmp/p2p
  maxAge: 24h
  strictPerms: true
server:
  listen: 127.0.0.1:9000
verbose: true
`)
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.ListingID != 829 || fc.Output.PDF != "out.pdf" || fc.Fetch.Timeout != 3*time.Second || fc.Cache.MaxAge != 24*time.Hour {
		t.Fatalf("unexpected file config %+v", fc)
	}
}

func TestLoadConfigFile_JSONAndErrors(t *testing.T) {
	p := writeFile(t, "p2p.json", `{"input":"page.html","output":{"json":"x.json"}}`)
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Input != "page.html" || fc.Output.JSON != "x.json" {
		t.Fatalf("unexpected %+v", fc)
	}
	if _, err := LoadConfigFile(writeFile(t, "bad.yaml", "listingID: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
	var fc FileConfig
	fc.ListingID = 829
	fc.Output.JSON = "file.json"
	fc.Fetch.MaxAttempts = 7
	fc.Cache.Dir = "/file/cache"
	fc.Server.Listen = "127.0.0.1:9000"

	cfg := Config{
		OutputPath:  DefaultOutputPath,
		MaxAttempts: 2,
		CacheDir:    DefaultCacheDir,
		Listen:      DefaultListen,
	}
	ApplyFileConfig(&cfg, fc)
	if cfg.ListingID != 829 || cfg.OutputPath != "file.json" || cfg.CacheDir != "/file/cache" || cfg.Listen != "127.0.0.1:9000" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.MaxAttempts != 2 {
		t.Fatalf("explicit flag overwritten: %d", cfg.MaxAttempts)
	}
	ApplyFileConfig(nil, fc)
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"file", Config{InputPath: "a.html", OutputPath: "-"}, true},
		{"id", Config{ListingID: 829, OutputPath: "-"}, true},
		{"serve", Config{Serve: true, Listen: DefaultListen}, true},
		{"no source", Config{OutputPath: "-"}, false},
		{"both", Config{InputPath: "a.html", ListingID: 1, OutputPath: "-"}, false},
		{"no output", Config{InputPath: "a.html"}, false},
		{"serve no listen", Config{Serve: true}, false},
		{"negative", Config{ListingID: 1, OutputPath: "-", MaxAttempts: -1}, false},
	}
	for _, tc := range cases {
		err := ValidateConfig(tc.cfg)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: err=%v, want ok=%v", tc.name, err, tc.ok)
		}
	}
	if err := ValidateConfig(Config{OutputPath: "-"}); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}
