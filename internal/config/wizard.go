package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to ollamachat! Let's configure your local setup.")
	fmt.Println()

	cfg := DefaultConfig()

	urlPrompt := promptui.Prompt{
		Label:   "Ollama base URL",
		Default: cfg.OllamaURL,
	}
	ollamaURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("ollama url: %w", err)
	}
	cfg.OllamaURL = ollamaURL

	portPrompt := promptui.Prompt{
		Label:   "Listen port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	modelPrompt := promptui.Prompt{
		Label:   "Default model (blank for none)",
		Default: cfg.DefaultModel,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("default model: %w", err)
	}
	cfg.DefaultModel = model

	browserPrompt := promptui.Select{
		Label: "Open the browser on startup",
		Items: []string{"yes", "no"},
	}
	_, browser, err := browserPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("browser selection: %w", err)
	}
	cfg.OpenBrowser = browser == "yes"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
