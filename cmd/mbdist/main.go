package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/chrissnell/mbdist/internal/app"
	"github.com/chrissnell/mbdist/internal/log"
	"github.com/chrissnell/mbdist/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "", "Path to configuration source:\n\t\t\t  YAML: figures.yaml\n\t\t\t  SQLite: figures.db\n\t\t\t  Use 'config-convert' tool to convert YAML→SQLite\n\t\t\t  Empty renders the built-in Hintereisferner figure")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	figureName := flag.String("figure", "", "Render only the named figure (default: all)")
	input := flag.String("input", "", "Override the input mass-balance file of every figure")
	outputDir := flag.String("output-dir", "", "Override the output directory of every figure")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mbdist %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	provider, err := loadProvider(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	defer provider.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(provider, log.GetSugaredLogger(), app.Options{
		Figure:    *figureName,
		Input:     *input,
		OutputDir: *outputDir,
	})
	if err := application.Run(ctx); err != nil {
		log.Errorw("mbdist failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func loadProvider(cfgFile, cfgBackend string) (config.ConfigProvider, error) {
	if cfgFile == "" {
		return config.NewDefaultProvider(), nil
	}

	filename, _ := filepath.Abs(cfgFile)

	switch cfgBackend {
	case "yaml":
		return config.NewYAMLProvider(filename), nil
	case "sqlite":
		if _, err := os.Stat(filename); err != nil {
			return nil, fmt.Errorf("error opening SQLite config: %w", err)
		}
		provider, err := config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		if err := provider.Migrate(log.GetSugaredLogger()); err != nil {
			provider.Close()
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
}
