package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment keys. All are optional except the bot credential.
const (
	KeyToken         = "TOKEN"
	KeyRegex         = "REGEX"
	KeyTempDir       = "TEMPDIR"
	KeyFormats       = "FORMATS"
	KeyProxy         = "PROXY"
	KeyFallbackProxy = "PROXY2"
	KeyLogChannel    = "LOG_CHANNEL"
	KeyMaxFilesize   = "MAX_FILESIZE"
	KeyMaxParallel   = "MAX_PARALLEL"
	KeyDebug         = "DEBUG"
)

// Default values
const (
	DefaultLinkPattern = `\bhttps?://\S*\b`
	DefaultTempDir     = "/tmp/tg-mediabot"
	DefaultMaxFilesize = 52428800 // 50 MiB, the upload ceiling for bots
	DefaultMaxParallel = 4
)

// DefaultFormats is the fallback-tiered format selector. It prefers m4a
// audio (mp4 often comes back "Forbidden"), a target ~800px envelope in
// either orientation under the size ceiling, then progressively drops the
// size constraint for sites that don't expose file sizes, then quality.
const DefaultFormats = " (ba[ext=m4a] / ba)" +
	"    + bv[width>=800][height<=800][filesize<50M]" +
	"/(ba[ext=m4a] / ba)" +
	"    + bv[width<=800][height>=800][filesize<50M]" +
	"/   best[width>=800][height<=800][filesize<50M]" +
	"/   best[width<=800][height>=800][filesize<50M]" +

	"/(ba[ext=m4a] / ba)" +
	"    + bv[width<=800][height<=800][filesize<50M]" +
	"/   best[width<=800][height<=800][filesize<50M]" +

	"/(ba[ext=m4a] / ba)" +
	"    + bv[width>=800][height<=800]" +
	"/(ba[ext=m4a] / ba)" +
	"    + bv[width<=800][height>=800]" +
	"/   best[width>=800][height<=800]" +
	"/   best[width<=800][height>=800]" +

	"/ba + bv[width<=800][height<=800]" +
	"/   best[width<=800][height<=800]"

// Settings is the immutable configuration loaded once at startup and
// passed into constructors, never re-read per message
type Settings struct {
	Token         string
	LinkPattern   *regexp.Regexp
	TempDir       string
	Formats       string
	Proxy         string
	FallbackProxy string
	LogChannel    int64 // 0 routes notifications to the originating chat
	MaxFilesize   int64 // bytes
	MaxParallel   int   // concurrently processed messages
	Debug         bool
}

// Load reads settings from the environment, with .env support
func Load() (*Settings, error) {
	_ = godotenv.Load()

	token := os.Getenv(KeyToken)
	if token == "" {
		return nil, errors.New("specify TOKEN in an .env file or an environment variable")
	}

	pattern := getenv(KeyRegex, DefaultLinkPattern)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern %q: %w", KeyRegex, pattern, err)
	}

	logChannel, err := getenvInt64(KeyLogChannel, 0)
	if err != nil {
		return nil, err
	}
	maxFilesize, err := getenvInt64(KeyMaxFilesize, DefaultMaxFilesize)
	if err != nil {
		return nil, err
	}
	maxParallel, err := getenvInt64(KeyMaxParallel, DefaultMaxParallel)
	if err != nil {
		return nil, err
	}
	if maxParallel < 1 {
		maxParallel = 1
	}

	return &Settings{
		Token:         token,
		LinkPattern:   re,
		TempDir:       getenv(KeyTempDir, DefaultTempDir),
		Formats:       getenv(KeyFormats, DefaultFormats),
		Proxy:         os.Getenv(KeyProxy),
		FallbackProxy: os.Getenv(KeyFallbackProxy),
		LogChannel:    logChannel,
		MaxFilesize:   maxFilesize,
		MaxParallel:   int(maxParallel),
		Debug:         getenvBool(KeyDebug),
	}, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func getenvBool(key string) bool {
	v := os.Getenv(key)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true // any non-empty, non-boolean value counts as enabled
	}
	return b
}
