package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "voiceflow.api_key", typ: kString, env: "VFKB_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Voiceflow.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Voiceflow.APIKey },
	},
	{
		key: "voiceflow.project_id", typ: kString, env: "VFKB_PROJECT_ID",
		apply:   func(cfg *Config, v any) { cfg.Voiceflow.ProjectID = v.(string) },
		extract: func(cfg Config) any { return cfg.Voiceflow.ProjectID },
	},
	{
		key: "voiceflow.base_url", typ: kString, env: "VFKB_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Voiceflow.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Voiceflow.BaseURL },
	},
	{
		key: "voiceflow.query_url", typ: kString, env: "VFKB_QUERY_URL",
		apply:   func(cfg *Config, v any) { cfg.Voiceflow.QueryURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Voiceflow.QueryURL },
	},
	{
		key: "http.timeout_seconds", typ: kInt, env: "VFKB_HTTP_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.HTTP.TimeoutSeconds = v.(int) },
		extract: func(cfg Config) any { return cfg.HTTP.TimeoutSeconds },
	},
	{
		key: "server.port", typ: kInt, env: "VFKB_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "log.level", typ: kString, env: "VFKB_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
