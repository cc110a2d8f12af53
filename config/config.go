// path: config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        int
	CORSOrigins string
	LogLevel    string

	Mongo Mongo

	// IdentityHeader carries the opaque user id set by the upstream
	// authenticator (API gateway / auth proxy).
	IdentityHeader string
	RoleTimeout    time.Duration
	StoreRetries   int
	StoreBackoff   time.Duration
	StoreTimeout   time.Duration
}

type Mongo struct {
	Mode      string
	URI       string
	URILocal  string
	URIRemote string
	DBName    string
	Debug     bool
}

// Load reads config.yaml (optional) from the working directory or path,
// then lets the environment override every key.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
	}

	v.SetDefault("port", 3005)
	v.SetDefault("cors_origins", "http://localhost:3000, http://localhost:3001, http://localhost:3002")
	v.SetDefault("log_level", "info")
	v.SetDefault("mongo_mode", "auto")
	v.SetDefault("mongo_uri_local", "mongodb://localhost:27017")
	v.SetDefault("mongo_db", "reliefhub")
	v.SetDefault("identity_header", "X-User-Sub")
	v.SetDefault("role_timeout", 3*time.Second)
	v.SetDefault("store_retries", 3)
	v.SetDefault("store_backoff", 100*time.Millisecond)
	v.SetDefault("store_timeout", 8*time.Second)

	// MONGO_URI, MONGO_MODE, PORT ... map straight onto the keys above.
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range []string{"mongo_uri", "mongo_uri_remote", "mongo_debug"} {
		_ = v.BindEnv(k)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	cfg := Config{
		Port:           v.GetInt("port"),
		CORSOrigins:    v.GetString("cors_origins"),
		LogLevel:       strings.ToLower(v.GetString("log_level")),
		IdentityHeader: v.GetString("identity_header"),
		RoleTimeout:    v.GetDuration("role_timeout"),
		StoreRetries:   v.GetInt("store_retries"),
		StoreBackoff:   v.GetDuration("store_backoff"),
		StoreTimeout:   v.GetDuration("store_timeout"),
		Mongo: Mongo{
			Mode:      strings.ToLower(strings.TrimSpace(v.GetString("mongo_mode"))),
			URI:       strings.TrimSpace(v.GetString("mongo_uri")),
			URILocal:  strings.TrimSpace(v.GetString("mongo_uri_local")),
			URIRemote: strings.TrimSpace(v.GetString("mongo_uri_remote")),
			DBName:    v.GetString("mongo_db"),
			Debug:     v.GetString("mongo_debug") != "",
		},
	}
	if cfg.StoreRetries < 1 {
		cfg.StoreRetries = 1
	}
	return cfg, nil
}
