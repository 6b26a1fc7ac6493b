package config

// Config is the top-level ollamachat configuration, corresponding to
// .ollamachat.yml.
type Config struct {
	OllamaURL       string        `yaml:"ollama_url" koanf:"ollama_url"`
	Host            string        `yaml:"host" koanf:"host"`
	Port            int           `yaml:"port" koanf:"port"`
	DefaultModel    string        `yaml:"default_model" koanf:"default_model"`
	SystemPrompt    string        `yaml:"system_prompt" koanf:"system_prompt"`
	StaticDir       string        `yaml:"static_dir" koanf:"static_dir"`
	OpenBrowser     bool          `yaml:"open_browser" koanf:"open_browser"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	Context         ContextConfig `yaml:"context" koanf:"context"`
}

// ContextConfig bounds project-context assembly.
type ContextConfig struct {
	TreeDepth   int      `yaml:"tree_depth" koanf:"tree_depth"`
	ScanDepth   int      `yaml:"scan_depth" koanf:"scan_depth"`
	MaxFileSize int64    `yaml:"max_file_size" koanf:"max_file_size"`
	Ignore      []string `yaml:"ignore" koanf:"ignore"`
}
