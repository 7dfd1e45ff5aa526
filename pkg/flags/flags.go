package flags

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Config holds all command-line configuration
type Config struct {
	Port     string
	MenuPath string
	Baseline string
	Help     bool
}

// DefaultConfig returns default configuration values
func DefaultConfig() Config {
	return Config{
		Port:     "8080",
		MenuPath: "menu.toml",
		Baseline: "",
		Help:     false,
	}
}

// Parse parses command-line flags and returns configuration
func Parse() Config {
	config := DefaultConfig()

	var (
		port     = flag.String("port", config.Port, "Port number")
		menuPath = flag.String("menu", config.MenuPath, "Path to the menu/recipe dataset")
		baseline = flag.String("baseline", config.Baseline, "Path to a baseline inventory file to seed on startup")
		help     = flag.Bool("help", false, "Show this screen")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Tandoor Restaurant Operations Backend\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  tandoor [--port <N>] [--menu <path>] [--baseline <path>]\n")
		fmt.Fprintf(os.Stderr, "  tandoor --help\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --help            Show this screen.\n")
		fmt.Fprintf(os.Stderr, "  --port N          Port number (1-65535).\n")
		fmt.Fprintf(os.Stderr, "  --menu path       Menu/recipe TOML dataset (default menu.toml).\n")
		fmt.Fprintf(os.Stderr, "  --baseline path   Baseline inventory file to seed on startup.\n")
	}

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	config.Port = *port
	config.MenuPath = *menuPath
	config.Baseline = *baseline
	return config
}

// Validate checks the parsed configuration
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	if c.MenuPath == "" {
		return fmt.Errorf("menu dataset path cannot be empty")
	}
	return nil
}
