// Package config provides configuration management for the Heimdex Editor.
// Values come from an optional TOML file, then environment variables, with
// sensible defaults for everything.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// Default values
	DefaultPort            = 8788
	DefaultLogLevel        = "info"
	DefaultDataDir         = ".heimdex-editor"
	DefaultProjectID       = "default"
	DefaultUndoLimit       = 50
	DefaultPixelsPerSecond = 50.0
	DefaultSyncQueueSize   = 256
	DefaultSyncTimeout     = 10 * time.Second

	// Environment variable names
	EnvConfigFile      = "HEIMDEX_EDITOR_CONFIG"
	EnvPort            = "HEIMDEX_PORT"
	EnvLogLevel        = "HEIMDEX_LOG_LEVEL"
	EnvDataDir         = "HEIMDEX_DATA_DIR"
	EnvAuthToken       = "HEIMDEX_AUTH_TOKEN"
	EnvProjectID       = "HEIMDEX_PROJECT_ID"
	EnvUndoLimit       = "HEIMDEX_UNDO_LIMIT"
	EnvPixelsPerSecond = "HEIMDEX_PIXELS_PER_SECOND"
	EnvSnapDisabled    = "HEIMDEX_SNAP_DISABLED"
	EnvMediaDir        = "HEIMDEX_MEDIA_DIR"
	EnvSuggestionsFile = "HEIMDEX_SUGGESTIONS_FILE"
	EnvCloudURL        = "HEIMDEX_CLOUD_URL"
	EnvCloudToken      = "HEIMDEX_CLOUD_TOKEN"
	EnvFrameRate       = "HEIMDEX_FRAME_RATE"

	// Filenames inside the data directory
	DBFilename     = "editor.db"
	LockFilename   = "editor.lock"
	ConfigFilename = "editor.toml"

	DefaultFrameRate = 30
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	LockPath() string
	AuthToken() string
	ProjectID() string
	UndoLimit() int
	PixelsPerSecond() float64
	SnapEnabled() bool
	MediaDir() string
	SuggestionsPath() string
	CloudURL() string
	CloudToken() string
	SyncQueueSize() int
	SyncTimeout() time.Duration
	FrameRate() int
	ConfigFile() string
}

// fileConfig is the on-disk shape of editor.toml.
type fileConfig struct {
	Server struct {
		Port      int    `toml:"port"`
		AuthToken string `toml:"auth_token"`
		LogLevel  string `toml:"log_level"`
	} `toml:"server"`
	Editor struct {
		ProjectID       string  `toml:"project_id"`
		UndoLimit       int     `toml:"undo_limit"`
		PixelsPerSecond float64 `toml:"pixels_per_second"`
		Snap            *bool   `toml:"snap"`
		FrameRate       int     `toml:"frame_rate"`
	} `toml:"editor"`
	Paths struct {
		MediaDir    string `toml:"media_dir"`
		Suggestions string `toml:"suggestions"`
	} `toml:"paths"`
	Sync struct {
		QueueSize      int    `toml:"queue_size"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		CloudURL       string `toml:"cloud_url"`
		CloudToken     string `toml:"cloud_token"`
	} `toml:"sync"`
}

// EnvConfig holds resolved configuration values
type EnvConfig struct {
	port            int
	logLevel        string
	dataDir         string
	authToken       string
	projectID       string
	undoLimit       int
	pixelsPerSecond float64
	snapEnabled     bool
	mediaDir        string
	suggestionsPath string
	cloudURL        string
	cloudToken      string
	syncQueueSize   int
	syncTimeout     time.Duration
	frameRate       int
	configFile      string
}

// New creates a new EnvConfig with defaults, the optional config file, and
// environment variable overrides, in that order of precedence.
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		projectID:       DefaultProjectID,
		undoLimit:       DefaultUndoLimit,
		pixelsPerSecond: DefaultPixelsPerSecond,
		snapEnabled:     true,
		syncQueueSize:   DefaultSyncQueueSize,
		syncTimeout:     DefaultSyncTimeout,
		frameRate:       DefaultFrameRate,
	}

	// The data directory decides where the default config file lives
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	path := os.Getenv(EnvConfigFile)
	if path == "" {
		path = filepath.Join(cfg.dataDir, ConfigFilename)
	}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EnvConfig) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	if err := toml.NewDecoder(f).Decode(&fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.configFile = path

	if fc.Server.Port != 0 {
		if err := validPort(fc.Server.Port); err != nil {
			return fmt.Errorf("invalid server.port: %w", err)
		}
		c.port = fc.Server.Port
	}
	setString(&c.authToken, fc.Server.AuthToken)
	setString(&c.logLevel, fc.Server.LogLevel)
	setString(&c.projectID, fc.Editor.ProjectID)
	if fc.Editor.UndoLimit > 0 {
		c.undoLimit = fc.Editor.UndoLimit
	}
	if fc.Editor.PixelsPerSecond > 0 {
		c.pixelsPerSecond = fc.Editor.PixelsPerSecond
	}
	if fc.Editor.Snap != nil {
		c.snapEnabled = *fc.Editor.Snap
	}
	if fc.Editor.FrameRate > 0 {
		c.frameRate = fc.Editor.FrameRate
	}
	setString(&c.mediaDir, fc.Paths.MediaDir)
	setString(&c.suggestionsPath, fc.Paths.Suggestions)
	if fc.Sync.QueueSize > 0 {
		c.syncQueueSize = fc.Sync.QueueSize
	}
	if fc.Sync.TimeoutSeconds > 0 {
		c.syncTimeout = time.Duration(fc.Sync.TimeoutSeconds) * time.Second
	}
	setString(&c.cloudURL, fc.Sync.CloudURL)
	setString(&c.cloudToken, fc.Sync.CloudToken)
	return nil
}

func (c *EnvConfig) loadEnv() error {
	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if err := validPort(port); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.port = port
	}

	if v := os.Getenv(EnvUndoLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid %s: must be a positive integer", EnvUndoLimit)
		}
		c.undoLimit = n
	}

	if v := os.Getenv(EnvPixelsPerSecond); v != "" {
		pps, err := strconv.ParseFloat(v, 64)
		if err != nil || pps <= 0 {
			return fmt.Errorf("invalid %s: must be a positive number", EnvPixelsPerSecond)
		}
		c.pixelsPerSecond = pps
	}

	if v := os.Getenv(EnvFrameRate); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil || fps < 1 {
			return fmt.Errorf("invalid %s: must be a positive integer", EnvFrameRate)
		}
		c.frameRate = fps
	}

	if v := os.Getenv(EnvSnapDisabled); v != "" {
		off, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSnapDisabled, err)
		}
		c.snapEnabled = !off
	}

	setString(&c.logLevel, os.Getenv(EnvLogLevel))
	setString(&c.authToken, os.Getenv(EnvAuthToken))
	setString(&c.projectID, os.Getenv(EnvProjectID))
	setString(&c.mediaDir, os.Getenv(EnvMediaDir))
	setString(&c.suggestionsPath, os.Getenv(EnvSuggestionsFile))
	setString(&c.cloudURL, os.Getenv(EnvCloudURL))
	setString(&c.cloudToken, os.Getenv(EnvCloudToken))
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func validPort(port int) error {
	if port < 1 || port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// LockPath returns the file locked while an editor owns the data directory
func (c *EnvConfig) LockPath() string {
	return filepath.Join(c.dataDir, LockFilename)
}

// AuthToken returns the bearer token required by the API. Empty disables auth.
func (c *EnvConfig) AuthToken() string {
	return c.authToken
}

func (c *EnvConfig) ProjectID() string {
	return c.projectID
}

func (c *EnvConfig) UndoLimit() int {
	return c.undoLimit
}

func (c *EnvConfig) PixelsPerSecond() float64 {
	return c.pixelsPerSecond
}

func (c *EnvConfig) SnapEnabled() bool {
	return c.snapEnabled
}

// MediaDir returns the root that media requests are served from. It
// defaults to <data_dir>/media.
func (c *EnvConfig) MediaDir() string {
	if c.mediaDir != "" {
		return c.mediaDir
	}
	return filepath.Join(c.dataDir, "media")
}

// SuggestionsPath returns the markers file watched for suggestions. It
// defaults to <data_dir>/suggestions.json.
func (c *EnvConfig) SuggestionsPath() string {
	if c.suggestionsPath != "" {
		return c.suggestionsPath
	}
	return filepath.Join(c.dataDir, "suggestions.json")
}

// CloudURL returns the cloud project API base URL. Empty disables cloud sync.
func (c *EnvConfig) CloudURL() string {
	return c.cloudURL
}

func (c *EnvConfig) CloudToken() string {
	return c.cloudToken
}

func (c *EnvConfig) SyncQueueSize() int {
	return c.syncQueueSize
}

func (c *EnvConfig) SyncTimeout() time.Duration {
	return c.syncTimeout
}

// FrameRate is used for EDL timecodes
func (c *EnvConfig) FrameRate() int {
	return c.frameRate
}

// ConfigFile returns the config file that was loaded, or "" when none was.
func (c *EnvConfig) ConfigFile() string {
	return c.configFile
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
