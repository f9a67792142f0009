package core

import (
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string
		WorkDir  string

		FrontendBaseURL  string
		DefaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string

		API      APIConfig
		Callback CallbackConfig
		Storage  StorageConfig
	}

	// APIConfig points at the external NAPPS backend.
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	// CallbackConfig configures the local payment-callback server.
	CallbackConfig struct {
		Host            string
		Port            int
		ShutdownTimeout time.Duration
	}

	StorageConfig struct {
		Path string // SQLite file holding the per-profile drafts; empty = in-memory
	}
)

func (c *Config) DefaultFromEmailAddr() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

func (c CallbackConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and environment variables (in increasing precedence).
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "getting working directory")
	}

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "NAPPS Portal")
	v.SetDefault("workDir", wd)
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@nappsnasarawa.com")
	v.SetDefault("apiBaseUrl", "https://api.nappsnasarawa.com/api/v1")
	v.SetDefault("apiTimeout", 30*time.Second)
	v.SetDefault("callbackHost", "127.0.0.1")
	v.SetDefault("callbackPort", 8560)
	v.SetDefault("callbackShutdownTimeout", 5*time.Second)
	v.SetDefault("storagePath", filepath.Join(wd, "napps.db"))

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		WorkDir:          v.GetString("workDir"),
		FrontendBaseURL:  v.GetString("frontendBaseUrl"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL: v.GetString("apiBaseUrl"),
			Timeout: v.GetDuration("apiTimeout"),
		},
		Callback: CallbackConfig{
			Host:            v.GetString("callbackHost"),
			Port:            v.GetInt("callbackPort"),
			ShutdownTimeout: v.GetDuration("callbackShutdownTimeout"),
		},
		Storage: StorageConfig{
			Path: v.GetString("storagePath"),
		},
	}
	return conf, nil
}
