package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	sharedErrors "github.com/reshetovitsme/keyword-share-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	TelegramBotToken string            `koanf:"telegram_bot_token"`
	TelegramAPIURL   string            `koanf:"telegram_api_url"`
	BotUsername      string            `koanf:"bot_username"`
	AdminID          int64             `koanf:"admin_id"`
	SourceChannelID  int64             `koanf:"source_channel_id"`
	LogChannelID     int64             `koanf:"log_channel_id"`
	RequiredChannels []RequiredChannel `koanf:"-"`
	HTTPPort         string            `koanf:"http_port"`
	PageSize         int               `koanf:"page_size"`
	SendInterval     time.Duration     `koanf:"send_interval"`
	Store            StoreConfig       `koanf:"store"`
	KeepAlive        KeepAliveConfig   `koanf:"keepalive"`
	Log              LogConfig         `koanf:"log"`
	AppEnv           AppEnv            `koanf:"app_env"`
}

// RequiredChannel is a channel users must join before content is released
type RequiredChannel struct {
	ID   int64  `koanf:"id"`
	Name string `koanf:"name"`
	Link string `koanf:"link"`
}

type StoreConfig struct {
	Driver           StoreDriver `koanf:"driver"`
	MongoURI         string      `koanf:"mongo_uri"`
	Database         string      `koanf:"database"`
	Collection       string      `koanf:"collection"`
	DocumentID       string      `koanf:"document_id"`
	FirestoreProject string      `koanf:"firestore_project"`
	CredentialsFile  string      `koanf:"credentials_file"`
	FilePath         string      `koanf:"file_path"`
}

type KeepAliveConfig struct {
	URL      string        `koanf:"url"`
	Interval time.Duration `koanf:"interval"`
}

type LogConfig struct {
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

var defaults = map[string]any{
	"telegram_api_url":   "https://api.telegram.org",
	"http_port":          "8080",
	"page_size":          10,
	"send_interval":      "100ms",
	"store.driver":       "mongo",
	"store.database":     "filter_bot",
	"store.collection":   "bot_data",
	"store.document_id":  "bot_data",
	"store.file_path":    "./data/state.json",
	"keepalive.interval": "10m",
	"log.max_size_mb":    50,
	"log.max_backups":    3,
	"app_env":            "production",
}

func Load() (*Config, error) {
	// .env is optional; real environment variables still win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.With("context", "loading .env").Wrap(err)
	}

	k := koanf.New(".")

	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// STORE__DRIVER becomes store.driver
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if raw := k.Get("required_channels"); raw != nil {
		switch v := raw.(type) {
		case string:
			cfg.RequiredChannels = ParseRequiredChannels(v)
		case []interface{}:
			cfg.RequiredChannels = lo.FilterMap(v, func(item interface{}, _ int) (RequiredChannel, bool) {
				m, ok := item.(map[string]interface{})
				if !ok {
					return RequiredChannel{}, false
				}
				id, err := strconv.ParseInt(strings.TrimSpace(toString(m["id"])), 10, 64)
				if err != nil {
					return RequiredChannel{}, false
				}
				return RequiredChannel{ID: id, Name: toString(m["name"]), Link: toString(m["link"])}, true
			})
		}
	}

	if appEnv, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = appEnv
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	driver, err := ParseStoreDriver(k.String("store.driver"))
	if err != nil {
		return nil, oops.With("store_driver", k.String("store.driver")).Wrap(err)
	}
	cfg.Store.Driver = driver

	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}

	if cfg.TelegramBotToken == "" {
		return nil, sharedErrors.ErrMissingBotToken
	}
	if cfg.AdminID == 0 {
		return nil, sharedErrors.ErrMissingAdmin
	}

	return &cfg, nil
}

// ParseRequiredChannels parses "id|name|link;id|name|link" into channels.
// Entries with an unparsable id are skipped.
func ParseRequiredChannels(s string) []RequiredChannel {
	if strings.TrimSpace(s) == "" {
		return []RequiredChannel{}
	}
	return lo.FilterMap(strings.Split(s, ";"), func(entry string, _ int) (RequiredChannel, bool) {
		parts := strings.SplitN(strings.TrimSpace(entry), "|", 3)
		if len(parts) == 0 || parts[0] == "" {
			return RequiredChannel{}, false
		}
		id, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return RequiredChannel{}, false
		}
		ch := RequiredChannel{ID: id}
		if len(parts) > 1 {
			ch.Name = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			ch.Link = strings.TrimSpace(parts[2])
		}
		return ch, true
	})
}

// IsAdmin reports whether userID is the configured administrator
func (c *Config) IsAdmin(userID int64) bool {
	return c.AdminID != 0 && c.AdminID == userID
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatInt(int64(val), 10)
	default:
		return ""
	}
}
