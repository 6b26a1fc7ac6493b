package config

import "github.com/ziadkadry99/ollamachat/internal/contextbuilder"

// DefaultConfig returns a Config with sensible defaults for a local setup.
func DefaultConfig() *Config {
	return &Config{
		OllamaURL:       "http://localhost:11434",
		Host:            "127.0.0.1",
		Port:            8000,
		StaticDir:       "static",
		OpenBrowser:     true,
		AllowAllOrigins: true,
		Context: ContextConfig{
			TreeDepth:   contextbuilder.DefaultTreeDepth,
			ScanDepth:   contextbuilder.DefaultScanDepth,
			MaxFileSize: contextbuilder.DefaultMaxFileSize,
		},
	}
}
