package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ollamachat/internal/config"
	"github.com/ziadkadry99/ollamachat/internal/ollama"
	"github.com/ziadkadry99/ollamachat/internal/relay"
	"github.com/ziadkadry99/ollamachat/internal/server"
)

var (
	servePort      int
	serveHost      string
	serveNoBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server",
	Long: `Starts the HTTP server exposing the OpenAI-compatible chat API, the
project context endpoints, and the bundled web frontend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if cmd.Flags().Changed("host") {
			cfg.Host = serveHost
		}
		if serveNoBrowser {
			cfg.OpenBrowser = false
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		client := ollama.NewClient(cfg.OllamaURL)
		defer client.Close()

		rly := relay.New(client, cfg.SystemPrompt)

		srv := server.New(server.Config{
			Host:        cfg.Host,
			Port:        cfg.Port,
			StaticDir:   cfg.StaticDir,
			AllowAll:    cfg.AllowAllOrigins,
			TreeDepth:   cfg.Context.TreeDepth,
			ScanDepth:   cfg.Context.ScanDepth,
			MaxFileSize: cfg.Context.MaxFileSize,
			Ignore:      cfg.Context.Ignore,
		}, rly)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
			}
		}()

		url := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
		fmt.Fprintf(os.Stderr, "ollamachat v%s starting on %s\n", Version, url)
		fmt.Fprintf(os.Stderr, "  Ollama backend: %s\n", cfg.OllamaURL)

		if cfg.OpenBrowser {
			go openBrowser(url)
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// openBrowser launches the default browser after a short delay so the
// server is listening by the time the page loads.
func openBrowser(url string) {
	time.Sleep(500 * time.Millisecond)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "could not open browser: %v\n", err)
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "port to listen on")
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "host to bind to")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "do not open the browser on start")
	rootCmd.AddCommand(serveCmd)
}
