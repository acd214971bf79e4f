package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the SDK settings shared by every component.
type Config struct {
	// APIHost is the base URL of the surveys API, e.g. "https://app.glimpse.dev".
	APIHost string
	// Token is the project API token sent with every surveys request.
	Token string
	// RequestTimeout bounds a single surveys fetch.
	RequestTimeout time.Duration
	// DisableSurveys turns the whole feature off; every query returns an
	// empty list without touching the network.
	DisableSurveys bool
	// StoragePath is the SQLite file backing local persistence.
	// Empty means in-memory only.
	StoragePath string
	Debug       bool
}

func (cfg Config) Validate() (err error) {
	if cfg.APIHost == "" {
		err = errors.New("missing parameter api-host")
		return
	}
	if cfg.Token == "" {
		err = errors.New("missing parameter token")
	}
	return
}

// FromEnv reads the configuration from the environment, loading a .env file
// first when one is present.
func FromEnv() (cfg Config, err error) {
	_ = godotenv.Load()

	cfg.APIHost = os.Getenv("GLIMPSE_API_HOST")
	cfg.Token = os.Getenv("GLIMPSE_TOKEN")
	cfg.StoragePath = os.Getenv("GLIMPSE_STORAGE")
	cfg.DisableSurveys = envBool("GLIMPSE_DISABLE_SURVEYS")
	cfg.Debug = envBool("GLIMPSE_DEBUG")

	cfg.RequestTimeout = 10 * time.Second
	if raw := os.Getenv("GLIMPSE_TIMEOUT_SECONDS"); raw != "" {
		var secs uint64
		secs, err = strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return
		}
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	}

	err = cfg.Validate()
	return
}

// ParseFlags builds the configuration from command line flags, with
// environment values as defaults. Meant for binaries, not library use.
func ParseFlags() (cfg Config, err error) {
	_ = godotenv.Load()

	flag.StringVar(&cfg.APIHost, "api-host", os.Getenv("GLIMPSE_API_HOST"), "base URL of the surveys API")
	flag.StringVar(&cfg.Token, "token", os.Getenv("GLIMPSE_TOKEN"), "project API token")
	flag.StringVar(&cfg.StoragePath, "storage", os.Getenv("GLIMPSE_STORAGE"), "path to SQLite storage file (default in-memory)")
	var timeout uint
	flag.UintVar(&timeout, "timeout", 10, "surveys request timeout in seconds")
	flag.BoolVar(&cfg.DisableSurveys, "disable-surveys", envBool("GLIMPSE_DISABLE_SURVEYS"), "disable survey delivery entirely")
	flag.BoolVar(&cfg.Debug, "debug", envBool("GLIMPSE_DEBUG"), "log at DEBUG level")
	flag.Parse()

	cfg.RequestTimeout = time.Duration(timeout) * time.Second

	err = cfg.Validate()
	return
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
