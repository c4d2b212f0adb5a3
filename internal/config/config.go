package config

import "fmt"

type Config struct {
	Voiceflow VoiceflowConfig
	HTTP      HTTPConfig
	Server    ServerConfig
	Log       LogConfig
}

type VoiceflowConfig struct {
	APIKey    string
	ProjectID string
	BaseURL   string
	QueryURL  string
}

type HTTPConfig struct {
	TimeoutSeconds int
}

type ServerConfig struct {
	Port int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Voiceflow: VoiceflowConfig{
			BaseURL:  "https://api.voiceflow.com",
			QueryURL: "https://general-runtime.voiceflow.com",
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
		},
		Server: ServerConfig{
			Port: 4600,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/vfkb/config.json, then applies VFKB_* environment
// overrides. Credentials carry no built-in defaults; commands that talk to
// the service must call RequireCredentials first.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// RequireCredentials fails when the API key or project ID is missing,
// naming every place either can be supplied.
func (c Config) RequireCredentials() error {
	if c.Voiceflow.APIKey == "" {
		return fmt.Errorf("missing required config: API key. " +
			"Set --api-key, the VFKB_API_KEY environment variable, " +
			"or run `vfkb config set voiceflow.api_key <key>`")
	}
	if c.Voiceflow.ProjectID == "" {
		return fmt.Errorf("missing required config: project ID. " +
			"Set --project-id, the VFKB_PROJECT_ID environment variable, " +
			"or run `vfkb config set voiceflow.project_id <id>`")
	}
	return nil
}
