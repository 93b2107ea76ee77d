package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] for JSON files, where
// durations are written as strings ("30s") or nanosecond numbers.
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey     string   `json:"token_sign_key"`
		TokenIssuer      string   `json:"token_issuer"`
		SessionDuration  Duration `json:"session_duration"`
		PasswordHashCost int      `json:"password_hash_cost"`
		ResetTokenTTL    Duration `json:"reset_token_ttl"`
		PageSize         int      `json:"page_size"`
		Version          string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Redis struct {
			URL string `json:"url"`
		} `json:"redis,omitempty"`

		Media struct {
			UploadDir string `json:"upload_dir"`
		} `json:"media,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
		TemplatesDir   string   `json:"templates_dir"`
		PublicHost     string   `json:"public_host"`
		RateLimit      struct {
			PerMinute int `json:"per_minute"`
			Burst     int `json:"burst"`
		} `json:"rate_limit,omitempty"`
	} `json:"server,omitempty"`

	Mail struct {
		RelayURL string   `json:"relay_url"`
		APIKey   string   `json:"api_key"`
		From     string   `json:"from"`
		Timeout  Duration `json:"timeout"`
	} `json:"mail,omitempty"`

	Workers struct {
		SessionCleanupInterval Duration `json:"session_cleanup_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:     jsonCfg.App.TokenSignKey,
			TokenIssuer:      jsonCfg.App.TokenIssuer,
			SessionDuration:  time.Duration(jsonCfg.App.SessionDuration),
			PasswordHashCost: jsonCfg.App.PasswordHashCost,
			ResetTokenTTL:    time.Duration(jsonCfg.App.ResetTokenTTL),
			PageSize:         jsonCfg.App.PageSize,
			Version:          jsonCfg.App.Version,
		},
		Storage: Storage{
			DB:    DB{DSN: jsonCfg.Storage.DB.DSN},
			Redis: Redis{URL: jsonCfg.Storage.Redis.URL},
			Media: Media{UploadDir: jsonCfg.Storage.Media.UploadDir},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			GRPCAddress:    jsonCfg.Server.GRPCAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
			TemplatesDir:   jsonCfg.Server.TemplatesDir,
			PublicHost:     jsonCfg.Server.PublicHost,
			RateLimit: RateLimit{
				PerMinute: jsonCfg.Server.RateLimit.PerMinute,
				Burst:     jsonCfg.Server.RateLimit.Burst,
			},
		},
		Mail: Mail{
			RelayURL: jsonCfg.Mail.RelayURL,
			APIKey:   jsonCfg.Mail.APIKey,
			From:     jsonCfg.Mail.From,
			Timeout:  time.Duration(jsonCfg.Mail.Timeout),
		},
		Workers: Workers{
			SessionCleanupInterval: time.Duration(jsonCfg.Workers.SessionCleanupInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
