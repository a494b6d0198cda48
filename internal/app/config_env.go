package app

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig fills unset fields of cfg from P2P_* environment
// variables. HOST and PORT, kept for existing deployments, form the
// listen address when P2P_LISTEN is absent.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, def string, key string) {
		if *dst != "" && *dst != def {
			return
		}
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&cfg.BaseURL, "", "P2P_BASE_URL")
	setString(&cfg.UserAgent, DefaultUserAgent, "P2P_USER_AGENT")
	setString(&cfg.CacheDir, DefaultCacheDir, "P2P_CACHE_DIR")
	setString(&cfg.Listen, DefaultListen, "P2P_LISTEN")

	if cfg.Listen == "" || cfg.Listen == DefaultListen {
		host, port := os.Getenv("HOST"), os.Getenv("PORT")
		if host != "" || port != "" {
			if host == "" {
				host = "0.0.0.0"
			}
			if port == "" {
				port = "8002"
			}
			cfg.Listen = net.JoinHostPort(host, port)
		}
	}

	if cfg.CacheMaxAge == 0 {
		if d, err := time.ParseDuration(os.Getenv("P2P_CACHE_MAX_AGE")); err == nil {
			cfg.CacheMaxAge = d
		}
	}
	if cfg.MaxAttempts == 0 || cfg.MaxAttempts == DefaultMaxAttempts {
		if n, err := strconv.Atoi(os.Getenv("P2P_MAX_ATTEMPTS")); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}

	setBool := func(dst *bool, key string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.Verbose, "P2P_VERBOSE")
	setBool(&cfg.CacheClear, "P2P_CACHE_CLEAR")
	setBool(&cfg.BypassCache, "P2P_CACHE_BYPASS")
	setBool(&cfg.CacheStrictPerms, "P2P_CACHE_STRICT_PERMS")
	setBool(&cfg.IgnoreRobots, "P2P_IGNORE_ROBOTS")
}
