package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv         = "CAFETERIA_SCANNER_CONFIG"
	logLevelEnv           = "LOG_LEVEL"
	extractionEndpointEnv = "EXTRACTION_ENDPOINT"
	extractionModelEnv    = "EXTRACTION_MODEL"
	extractionAPIKeyEnv   = "EXTRACTION_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Sync       SyncConfig       `yaml:"sync"`
	Mailbox    MailboxConfig    `yaml:"mailbox"`
}

// LoggingConfig controls the console logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ExtractionConfig defines how to contact the extraction model API.
type ExtractionConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"apiKey"`
	SystemPrompt   string `yaml:"systemPrompt"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// SyncConfig tunes the polling scheduler and derived views.
type SyncConfig struct {
	PollIntervalSeconds   int `yaml:"pollIntervalSeconds"`
	ManualSyncDelayMillis int `yaml:"manualSyncDelayMillis"`
	ChartWindowDays       int `yaml:"chartWindowDays"`
}

// MailboxConfig describes the simulated notification feed: the mailbox
// contents at startup and how often a new message "arrives" per poll.
type MailboxConfig struct {
	ArrivalProbability float64       `yaml:"arrivalProbability"`
	Seed               []SeedMessage `yaml:"seed"`
}

// SeedMessage is one pre-existing notification in the simulated mailbox.
type SeedMessage struct {
	Sender  string `yaml:"sender"`
	Subject string `yaml:"subject"`
	Date    string `yaml:"date"`
	Body    string `yaml:"body"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Mailbox.Seed) == 0 {
		cfg.Mailbox.Seed = defaultConfig().Mailbox.Seed
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(extractionEndpointEnv); v != "" {
		c.Extraction.Endpoint = v
	}

	if v := os.Getenv(extractionModelEnv); v != "" {
		c.Extraction.Model = v
	}

	if v := os.Getenv(extractionAPIKeyEnv); v != "" {
		c.Extraction.APIKey = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Extraction.Endpoint != "" {
		base.Extraction.Endpoint = override.Extraction.Endpoint
	}
	if override.Extraction.Model != "" {
		base.Extraction.Model = override.Extraction.Model
	}
	if override.Extraction.APIKey != "" {
		base.Extraction.APIKey = override.Extraction.APIKey
	}
	if override.Extraction.SystemPrompt != "" {
		base.Extraction.SystemPrompt = override.Extraction.SystemPrompt
	}
	if override.Extraction.TimeoutSeconds > 0 {
		base.Extraction.TimeoutSeconds = override.Extraction.TimeoutSeconds
	}

	if override.Sync.PollIntervalSeconds > 0 {
		base.Sync.PollIntervalSeconds = override.Sync.PollIntervalSeconds
	}
	if override.Sync.ManualSyncDelayMillis > 0 {
		base.Sync.ManualSyncDelayMillis = override.Sync.ManualSyncDelayMillis
	}
	if override.Sync.ChartWindowDays > 0 {
		base.Sync.ChartWindowDays = override.Sync.ChartWindowDays
	}

	if override.Mailbox.ArrivalProbability > 0 {
		base.Mailbox.ArrivalProbability = override.Mailbox.ArrivalProbability
	}
	if len(override.Mailbox.Seed) > 0 {
		base.Mailbox.Seed = override.Mailbox.Seed
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Extraction: ExtractionConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			APIKey:   "",
			SystemPrompt: "You extract structured cafeteria order data from notification messages. " +
				`Reply with bare JSON of the shape {"date":"YYYY-MM-DD","items":[{"name":"...","isUdon":false}]}. ` +
				"Mark isUdon true only for udon dishes.",
			TimeoutSeconds: 20,
		},
		Sync: SyncConfig{
			PollIntervalSeconds:   30,
			ManualSyncDelayMillis: 800,
			ChartWindowDays:       14,
		},
		Mailbox: MailboxConfig{
			ArrivalProbability: 0.3,
			Seed: []SeedMessage{
				{
					Sender:  "cafeteria@example.co.jp",
					Subject: "【社食】ご注文ありがとうございます",
					Date:    "2024-03-15 11:42",
					Body:    "本日の注文内容\n・きつねうどん\n・おにぎり",
				},
				{
					Sender:  "cafeteria@example.co.jp",
					Subject: "【社食】ご注文ありがとうございます",
					Date:    "2024-03-18 11:30",
					Body:    "本日の注文内容\n・カレーライス\n・サラダ",
				},
				{
					Sender:  "cafeteria@example.co.jp",
					Subject: "【社食】ご注文ありがとうございます",
					Date:    "2024-03-20 12:05",
					Body:    "<html><body><p>本日の注文内容</p><ul><li>肉うどん</li><li>みそ汁</li></ul></body></html>",
				},
			},
		},
	}
}
