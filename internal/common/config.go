package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" yaml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server" yaml:"server"`
	Content     ContentConfig   `toml:"content" yaml:"content"`
	Viewer      ViewerConfig    `toml:"viewer" yaml:"viewer"`
	Logging     LoggingConfig   `toml:"logging" yaml:"logging"`
	WebSocket   WebSocketConfig `toml:"websocket" yaml:"websocket"`
	Metrics     MetricsConfig   `toml:"metrics" yaml:"metrics"`
}

type ServerConfig struct {
	Port int    `toml:"port" yaml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" yaml:"host" validate:"required"`
}

// ContentConfig locates the tag corpus and the files it describes.
// Root may be a directory, an http(s):// URL or an s3://bucket/prefix URL.
type ContentConfig struct {
	Root           string        `toml:"root" yaml:"root" validate:"required"`
	TagsFile       string        `toml:"tags_file" yaml:"tags_file" validate:"required"` // Relative to Root
	RequestTimeout time.Duration `toml:"request_timeout" yaml:"request_timeout" validate:"gte=0"`
	PrefetchText   bool          `toml:"prefetch_text" yaml:"prefetch_text"` // Fetch every text body right after corpus load
	S3             S3Config      `toml:"s3" yaml:"s3"`
}

// S3Config is used only when Content.Root has the s3:// scheme
type S3Config struct {
	Endpoint        string `toml:"endpoint" yaml:"endpoint"` // Custom endpoint (MinIO etc.), empty for AWS
	Region          string `toml:"region" yaml:"region"`
	AccessKeyID     string `toml:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key" yaml:"secret_access_key"`
	UsePathStyle    bool   `toml:"use_path_style" yaml:"use_path_style"`
}

// ViewerConfig controls the 3D preview session
type ViewerConfig struct {
	FrameRate     int `toml:"frame_rate" yaml:"frame_rate" validate:"min=1,max=240"`
	SurfaceWidth  int `toml:"surface_width" yaml:"surface_width" validate:"min=1"`
	SurfaceHeight int `toml:"surface_height" yaml:"surface_height" validate:"min=1"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output" yaml:"output"` // "stdout", "file"
}

// WebSocketConfig contains configuration for pushing viewer and text events to clients
type WebSocketConfig struct {
	ProgressThrottle time.Duration `toml:"progress_throttle" yaml:"progress_throttle"` // Min interval between viewer_progress messages, 0 disables
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Content: ContentConfig{
			Root:           "./data",
			TagsFile:       "tags.json",
			RequestTimeout: 30 * time.Second,
			PrefetchText:   true,
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Viewer: ViewerConfig{
			FrameRate:     60,
			SurfaceWidth:  800,
			SurfaceHeight: 600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		WebSocket: WebSocketConfig{
			ProgressThrottle: 100 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env.
// Later files override earlier files. Files ending in .yaml/.yml are parsed as YAML, everything else as TOML.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, config)
		default:
			err = toml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the struct-level constraints declared on the config tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TAGVIEW_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("TAGVIEW_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TAGVIEW_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Content configuration
	if root := os.Getenv("TAGVIEW_CONTENT_ROOT"); root != "" {
		config.Content.Root = root
	}
	if tagsFile := os.Getenv("TAGVIEW_CONTENT_TAGS_FILE"); tagsFile != "" {
		config.Content.TagsFile = tagsFile
	}
	if timeout := os.Getenv("TAGVIEW_CONTENT_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Content.RequestTimeout = d
		}
	}
	if prefetch := os.Getenv("TAGVIEW_CONTENT_PREFETCH_TEXT"); prefetch != "" {
		if b, err := strconv.ParseBool(prefetch); err == nil {
			config.Content.PrefetchText = b
		}
	}
	if endpoint := os.Getenv("TAGVIEW_S3_ENDPOINT"); endpoint != "" {
		config.Content.S3.Endpoint = endpoint
	}
	if region := os.Getenv("TAGVIEW_S3_REGION"); region != "" {
		config.Content.S3.Region = region
	}
	if key := os.Getenv("TAGVIEW_S3_ACCESS_KEY_ID"); key != "" {
		config.Content.S3.AccessKeyID = key
	}
	if secret := os.Getenv("TAGVIEW_S3_SECRET_ACCESS_KEY"); secret != "" {
		config.Content.S3.SecretAccessKey = secret
	}

	// Viewer configuration
	if frameRate := os.Getenv("TAGVIEW_VIEWER_FRAME_RATE"); frameRate != "" {
		if fr, err := strconv.Atoi(frameRate); err == nil {
			config.Viewer.FrameRate = fr
		}
	}

	// Logging configuration
	if level := os.Getenv("TAGVIEW_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("TAGVIEW_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if throttle := os.Getenv("TAGVIEW_WEBSOCKET_PROGRESS_THROTTLE"); throttle != "" {
		if d, err := time.ParseDuration(throttle); err == nil {
			config.WebSocket.ProgressThrottle = d
		}
	}

	if enabled := os.Getenv("TAGVIEW_METRICS_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Metrics.Enabled = b
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string, contentRoot string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if contentRoot != "" {
		config.Content.Root = contentRoot
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// FrameInterval converts the configured frame rate into a render loop tick interval
func (c *ViewerConfig) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FrameRate)
}
