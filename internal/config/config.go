package config

import (
	"fmt"
	"strings"
)

// Config carries the settings of one weight-loading run. The command-line
// flags map onto it one to one.
type Config struct {
	ModelPath  string
	Manifest   string
	Parts      int   // expected part count, 0 means discover the numbered siblings
	DataOffset int64 // where tensor records start in every part
	PreferMmap bool  // memory-map mmap-capable containers instead of buffered reads

	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("invalid model path: must not be empty")
	}
	if c.Parts < 0 {
		return fmt.Errorf("invalid parts: %d (must be non-negative)", c.Parts)
	}
	if c.DataOffset < 0 {
		return fmt.Errorf("invalid data offset: %d (must be non-negative)", c.DataOffset)
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %q", c.LogFormat)
	}
	return nil
}

func Default() Config {
	return Config{
		PreferMmap:  true,
		LogLevel:    "INFO",
		LogFormat:   "console",
		MetricsAddr: ":9090",
	}
}
