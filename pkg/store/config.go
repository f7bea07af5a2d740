package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config exposes the settings shared by the CLI and the daemon.
type Config interface {
	DatabasePath() string
	MediaPath() string
	DaemonAddr() string
	ExactAlarms() bool
	InexactWindow() time.Duration
	NotificationsEnabled() bool
	LogLevel() string
	LogFormat() string
}

const (
	defaultHome          = "~/.notes"
	defaultDaemonAddr    = "127.0.0.1:7788"
	defaultInexactWindow = time.Minute
)

// LoadConfig reads .notes.yaml from $NOTES_CONFIG_PATH, the working directory or
// ~/.notes, then applies NOTES_* environment overrides. A .env file in the
// working directory is loaded first when present.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("store: load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("path", filepath.Join(defaultHome, "notes.db"))
	v.SetDefault("media", filepath.Join(defaultHome, "media"))
	v.SetDefault("daemon.addr", defaultDaemonAddr)
	v.SetDefault("alarms.exact", true)
	v.SetDefault("alarms.inexact_window", defaultInexactWindow.String())
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName(".notes") // .yaml is implicit
	v.SetEnvPrefix("NOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("NOTES_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Expand(defaultHome); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: reading config file: %w", err)
		}
	}

	return newFileConfig(v)
}

func newFileConfig(v *viper.Viper) (*fileConfig, error) {
	dbPath, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	mediaPath, err := homedir.Expand(v.GetString("media"))
	if err != nil {
		return nil, fmt.Errorf("store: expand media path: %w", err)
	}
	window, err := time.ParseDuration(v.GetString("alarms.inexact_window"))
	if err != nil {
		return nil, fmt.Errorf("store: alarms.inexact_window: %w", err)
	}
	if window <= 0 {
		window = defaultInexactWindow
	}
	return &fileConfig{
		Path:          dbPath,
		Media:         mediaPath,
		Addr:          v.GetString("daemon.addr"),
		Exact:         v.GetBool("alarms.exact"),
		Window:        window,
		Notifications: v.GetBool("notifications.enabled"),
		Level:         v.GetString("log.level"),
		Format:        v.GetString("log.format"),
	}, nil
}

type fileConfig struct {
	Path          string        `json:"path"`
	Media         string        `json:"media"`
	Addr          string        `json:"daemonAddr"`
	Exact         bool          `json:"exactAlarms"`
	Window        time.Duration `json:"inexactWindow"`
	Notifications bool          `json:"notifications"`
	Level         string        `json:"logLevel"`
	Format        string        `json:"logFormat"`
}

func (f *fileConfig) DatabasePath() string         { return f.Path }
func (f *fileConfig) MediaPath() string            { return f.Media }
func (f *fileConfig) DaemonAddr() string           { return f.Addr }
func (f *fileConfig) ExactAlarms() bool            { return f.Exact }
func (f *fileConfig) InexactWindow() time.Duration { return f.Window }
func (f *fileConfig) NotificationsEnabled() bool   { return f.Notifications }
func (f *fileConfig) LogLevel() string             { return f.Level }
func (f *fileConfig) LogFormat() string            { return f.Format }
