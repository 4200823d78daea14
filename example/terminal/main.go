// Terminal demo: a virtualized grid browsed from the shell.
//
//	go run ./example/terminal/ --total 50000 --latency 150ms
//
// Configuration is layered: defaults, then an optional JWCC config file
// (JSON with comments and trailing commas), then command-line flags.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/go-theft-auto/vgrid"
	"github.com/go-theft-auto/vgrid/backend/terminal"
)

// Config holds the demo's tunables.
type Config struct {
	Total       int     `json:"total"`
	PageSize    int     `json:"page_size"`
	Latency     string  `json:"latency,omitempty"`
	FailureRate float64 `json:"failure_rate,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Total:    100_000,
		PageSize: 40,
		Latency:  "120ms",
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("vgrid-terminal", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to a JWCC config file")
	total := fs.Int("total", 0, "number of items in the collection")
	pageSize := fs.Int("page-size", 0, "items fetched per page")
	latency := fs.Duration("latency", 0, "artificial fetch latency per page")
	failureRate := fs.Float64("failure-rate", -1, "fraction of page fetches that fail (0..1)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	// Flags override the file.
	if fs.Changed("total") {
		cfg.Total = *total
	}
	if fs.Changed("page-size") {
		cfg.PageSize = *pageSize
	}
	if fs.Changed("latency") {
		cfg.Latency = latency.String()
	}
	if fs.Changed("failure-rate") {
		cfg.FailureRate = *failureRate
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	delay, err := time.ParseDuration(cfg.Latency)
	if err != nil {
		return fmt.Errorf("invalid latency %q: %w", cfg.Latency, err)
	}

	model := terminal.New(cfg.Total, cfg.PageSize,
		newProvider(delay, cfg.FailureRate),
		func(v string) string { return v },
		vgrid.WithRetry[string](3, 100*time.Millisecond))

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// loadConfig reads and standardizes a JWCC config file. An empty path keeps
// the defaults.
func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JWCC in %s: %w", path, err)
	}
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.Total < 0 {
		return fmt.Errorf("total must be >= 0, got %d", cfg.Total)
	}
	if cfg.PageSize < 1 {
		return fmt.Errorf("page-size must be >= 1, got %d", cfg.PageSize)
	}
	if cfg.FailureRate < 0 || cfg.FailureRate > 1 {
		return fmt.Errorf("failure-rate must be in [0,1], got %v", cfg.FailureRate)
	}
	return nil
}

var adjectives = []string{
	"amber", "brisk", "coral", "dusty", "eager", "fuzzy", "grand", "hazel",
	"ivory", "jolly", "keen", "lunar", "mossy", "noble", "oaken", "plush",
}

var nouns = []string{
	"anchor", "beacon", "canyon", "delta", "ember", "fjord", "grove",
	"harbor", "inlet", "jetty", "knoll", "lagoon", "mesa", "nook",
}

// newProvider builds a synthetic page provider with the given latency and
// failure rate. Names are derived from the index, so a refetched page always
// resolves to the same items.
func newProvider(delay time.Duration, failureRate float64) vgrid.Provider[string] {
	return func(ctx context.Context, page, size int) ([]string, error) {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if failureRate > 0 && rand.Float64() < failureRate {
			return nil, fmt.Errorf("page %d temporarily unavailable", page)
		}
		items := make([]string, size)
		for i := range items {
			index := page*size + i
			items[i] = fmt.Sprintf("%s-%s",
				adjectives[index%len(adjectives)],
				nouns[(index/len(adjectives))%len(nouns)])
		}
		return items, nil
	}
}
