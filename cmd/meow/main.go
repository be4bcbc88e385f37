package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/meow/internal"
	"github.com/starford/meow/internal/apperr"
	pkgconfig "github.com/starford/meow/pkg/config"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

const defaultConfigFile = "meow.yaml"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	configPath := cmd.String("config")
	load := pkgconfig.LoadOptional[internal.Config]
	if cmd.IsSet("config") {
		load = pkgconfig.Load[internal.Config]
	}
	if err := load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if cmd.Bool("no-browser") {
		cfg.Preview.OpenBrowser = false
	}
	if cmd.Bool("no-watch") {
		cfg.Preview.Watch = false
	}
	cfg.App.Verbosity(cmd.Bool("quiet"), cmd.Bool("debug"))

	// Flags may have pushed values out of range.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func documentOptions(cmd *cli.Command) ([]internal.Option, error) {
	path := cmd.Args().First()
	if path == "" {
		return nil, errors.New("missing FILE argument")
	}
	if cmd.Args().Len() > 1 {
		return nil, fmt.Errorf("expected one FILE, got %d arguments", cmd.Args().Len())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithDocument(path),
		internal.WithFiletype(cmd.String("filetype")),
		internal.WithVersion(version),
	}, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	opts, err := documentOptions(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("mcp") {
		return internal.ServeMCP(ctx, opts...)
	}

	if output := cmd.String("output"); output != "" {
		if err := internal.Export(ctx, append(opts, internal.WithOutput(output))...); err != nil {
			return fmt.Errorf("export error: %w", err)
		}
		return nil
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "meow",
		Usage:     "Live preview of a markdown, textile or reStructuredText file in the browser",
		Version:   version,
		ArgsUsage: "FILE",
		Action:    run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigFile,
				Value:       defaultConfigFile,
				Sources:     cli.EnvVars("MEOW_CONFIG_FILE"),
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to serve the preview on",
				Value:   7777,
				Sources: cli.EnvVars("MEOW_PORT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the rendered page to this file and exit instead of serving",
			},
			&cli.StringFlag{
				Name:  "filetype",
				Usage: "Markup kind to use instead of detecting it from the extension (e.g. md, rst, textile)",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log debug messages",
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Do not open the preview in a browser",
			},
			&cli.BoolFlag{
				Name:  "no-watch",
				Usage: "Disable file watching and push notifications; rely on polling only",
			},
			&cli.BoolFlag{
				Name:  "mcp",
				Usage: "Serve the document to MCP clients over stdio instead of HTTP",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		var unsupported *apperr.UnsupportedMarkupError
		if errors.As(err, &unsupported) {
			fmt.Fprintln(os.Stderr, unsupported.Error())
			fmt.Fprintln(os.Stderr, "Use --filetype to pick a kind, or install the missing backend.")
		}
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
