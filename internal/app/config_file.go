package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema.
type FileConfig struct {
	Input     string `yaml:"input" json:"input"`
	ListingID int    `yaml:"listingID" json:"listingID"`
	BaseURL   string `yaml:"baseURL" json:"baseURL"`

	Output struct {
		JSON    string `yaml:"json" json:"json"`
		PDF     string `yaml:"pdf" json:"pdf"`
		PDFFont string `yaml:"pdfFont" json:"pdfFont"`
	} `yaml:"output" json:"output"`

	Fetch struct {
		UserAgent    string        `yaml:"userAgent" json:"userAgent"`
		MaxAttempts  int           `yaml:"maxAttempts" json:"maxAttempts"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
		IgnoreRobots bool          `yaml:"ignoreRobots" json:"ignoreRobots"`
	} `yaml:"fetch" json:"fetch"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		Bypass      bool          `yaml:"bypass" json:"bypass"`
	} `yaml:"cache" json:"cache"`

	Server struct {
		Enable bool   `yaml:"enable" json:"enable"`
		Listen string `yaml:"listen" json:"listen"`
	} `yaml:"server" json:"server"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig, choosing by extension
// and trying YAML then JSON for anything else.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays file values onto cfg fields that are unset or still
// hold their flag default, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.InputPath == "" && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if cfg.ListingID == 0 && fc.ListingID > 0 {
		cfg.ListingID = fc.ListingID
	}
	if cfg.BaseURL == "" && fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}

	if (cfg.OutputPath == "" || cfg.OutputPath == DefaultOutputPath) && fc.Output.JSON != "" {
		cfg.OutputPath = fc.Output.JSON
	}
	if cfg.OutputPDFPath == "" && fc.Output.PDF != "" {
		cfg.OutputPDFPath = fc.Output.PDF
	}
	if cfg.PDFFontPath == "" && fc.Output.PDFFont != "" {
		cfg.PDFFontPath = fc.Output.PDFFont
	}

	if (cfg.UserAgent == "" || cfg.UserAgent == DefaultUserAgent) && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if (cfg.MaxAttempts == 0 || cfg.MaxAttempts == DefaultMaxAttempts) && fc.Fetch.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.Fetch.MaxAttempts
	}
	if (cfg.RequestTimeout == 0 || cfg.RequestTimeout == DefaultRequestTimeout) && fc.Fetch.Timeout > 0 {
		cfg.RequestTimeout = fc.Fetch.Timeout
	}

	if !cfg.IgnoreRobots && fc.Fetch.IgnoreRobots {
		cfg.IgnoreRobots = true
	}

	if (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
	if !cfg.BypassCache && fc.Cache.Bypass {
		cfg.BypassCache = true
	}

	if !cfg.Serve && fc.Server.Enable {
		cfg.Serve = true
	}
	if (cfg.Listen == "" || cfg.Listen == DefaultListen) && fc.Server.Listen != "" {
		cfg.Listen = fc.Server.Listen
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig rejects configurations that cannot run.
func ValidateConfig(cfg Config) error {
	if cfg.Serve {
		if strings.TrimSpace(cfg.Listen) == "" {
			return errors.New("config: listen address is required in serve mode")
		}
	} else {
		hasInput := strings.TrimSpace(cfg.InputPath) != ""
		switch {
		case !hasInput && cfg.ListingID == 0:
			return ErrNoSource
		case hasInput && cfg.ListingID != 0:
			return errors.New("config: input file and listing id are mutually exclusive")
		}
		if strings.TrimSpace(cfg.OutputPath) == "" {
			return errors.New("config: output path is required")
		}
	}
	if cfg.ListingID < 0 {
		return errors.New("config: listing id must be positive")
	}
	if cfg.MaxAttempts < 0 || cfg.RequestTimeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
