package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB
	DefaultOCRLanguage = "eng"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the EasyFill extraction server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Extraction configuration
	Tesseract   string // OCR binary name or absolute path
	OCRLanguage string // single fixed recognition language model
	MaxFileSize int64  // Maximum document size in bytes

	// Archive configuration
	DataDirectory string // extraction archive location; empty disables archiving

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:          ModeStdio, // Default to stdio mode for MCP compatibility
		Host:          DefaultHost,
		Port:          DefaultPort,
		Tesseract:     "tesseract",
		OCRLanguage:   DefaultOCRLanguage,
		MaxFileSize:   DefaultMaxFileSize,
		DataDirectory: "",
		Version:       "1.0.0",
		ServerName:    "easyfill",
		LogLevel:      DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand the archive path if one was given
	if cfg.DataDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.DataDirectory); err == nil {
			cfg.DataDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("EASYFILL")
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("tesseract", cfg.Tesseract)
	viper.SetDefault("ocrlang", cfg.OCRLanguage)
	viper.SetDefault("datadir", cfg.DataDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("tesseract", cfg.Tesseract, "Tesseract binary name or absolute path")
	pflag.String("ocrlang", cfg.OCRLanguage, "OCR recognition language model")
	pflag.String("datadir", cfg.DataDirectory, "Extraction archive directory (empty disables archiving)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum document size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("tesseract", pflag.Lookup("tesseract"))
	_ = viper.BindPFlag("ocrlang", pflag.Lookup("ocrlang"))
	_ = viper.BindPFlag("datadir", pflag.Lookup("datadir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEasyFill - extracts text from documents and infers editable form fields\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # stdio mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --datadir=~/.easyfill             # stdio mode with extraction archive\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --ocrlang=deu                     # recognize German text\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  EASYFILL_MODE        Server mode\n")
		fmt.Fprintf(os.Stderr, "  EASYFILL_HOST        Server host\n")
		fmt.Fprintf(os.Stderr, "  EASYFILL_PORT        Server port\n")
		fmt.Fprintf(os.Stderr, "  EASYFILL_TESSERACT   Tesseract binary\n")
		fmt.Fprintf(os.Stderr, "  EASYFILL_OCRLANG     OCR language\n")
		fmt.Fprintf(os.Stderr, "  EASYFILL_DATADIR     Archive directory\n")
		fmt.Fprintf(os.Stderr, "  EASYFILL_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  EASYFILL_MAXFILESIZE Maximum document size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.Tesseract = viper.GetString("tesseract")
	cfg.OCRLanguage = viper.GetString("ocrlang")
	cfg.DataDirectory = viper.GetString("datadir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate OCR settings
	if c.Tesseract == "" {
		return errors.New("tesseract binary cannot be empty")
	}
	if c.OCRLanguage == "" {
		return errors.New("OCR language cannot be empty")
	}

	// The archive is optional; create its directory when configured
	if c.DataDirectory != "" {
		if _, err := os.Stat(c.DataDirectory); os.IsNotExist(err) {
			if err := os.MkdirAll(c.DataDirectory, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create archive directory %s: %w", c.DataDirectory, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access archive directory %s: %w", c.DataDirectory, err)
		}
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// ArchiveEnabled reports whether extraction results should be persisted
func (c *Config) ArchiveEnabled() bool {
	return c.DataDirectory != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, Tesseract: %s, OCRLanguage: %s, DataDirectory: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.Tesseract, c.OCRLanguage, c.DataDirectory, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
