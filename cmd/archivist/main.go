package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/archivist/internal"
	"github.com/starford/archivist/internal/apperr"
	"github.com/starford/archivist/internal/report"
	pkgconfig "github.com/starford/archivist/pkg/config"
)

// loadConfig reads the config file. The default path may be absent; an
// explicitly named file must exist.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")
	cfg := internal.NewDefaultConfig()

	if cmd.IsSet("config") {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// --root wins over the file.
	if root := cmd.String("root"); root != "" {
		cfg.Tree.Root = root
	}
	return cfg, nil
}

func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithOutput(os.Stdout),
		internal.WithReferenceDate(cmd.String("date")),
	}, nil
}

func archive(mode internal.Mode) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		dryRun := cmd.Bool("dry-run")
		if mode == internal.ModeBulk && dryRun == cmd.Bool("execute") {
			_ = cli.ShowSubcommandHelp(cmd)
			return fmt.Errorf("%w: pass exactly one of --dry-run or --execute", apperr.ErrUsage)
		}
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		return internal.Archive(ctx, mode, dryRun, opts...)
	}
}

func rebuild(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.Rebuild(ctx, cmd.Bool("scaffold"), opts...)
}

func watchTree(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.Watch(ctx, opts...)
}

func history(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.History(ctx, int(cmd.Int("limit")), opts...)
}

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Report what would happen without touching the tree",
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "archivist",
		Usage: "Roll dated lesson folders into month and year archives and rebuild their indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("ARCHIVIST_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Site root (overrides tree.root)",
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "Reference date YYYY-MM-DD (default: today)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "archive",
				Usage:  "Archive every past month and every past year",
				Action: archive(internal.ModeBulk),
				Flags: []cli.Flag{
					dryRunFlag(),
					&cli.BoolFlag{
						Name:  "execute",
						Usage: "Actually move folders",
					},
				},
			},
			{
				Name:   "daily",
				Usage:  "Archive yesterday's lesson into its month",
				Action: archive(internal.ModeDaily),
				Flags:  []cli.Flag{dryRunFlag()},
			},
			{
				Name:   "monthly",
				Usage:  "Archive last month into its year",
				Action: archive(internal.ModeMonthly),
				Flags:  []cli.Flag{dryRunFlag()},
			},
			{
				Name:   "rebuild",
				Usage:  "Rebuild the generated regions of every index document",
				Action: rebuild,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "scaffold",
						Usage: "Create missing month and year index documents",
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "Rebuild indexes whenever the tree changes",
				Action: watchTree,
			},
			{
				Name:   "history",
				Usage:  "Show journaled runs",
				Action: history,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of runs to show",
						Value: 10,
					},
				},
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, apperr.ErrUsage) {
			report.New(os.Stderr).Failure("%v", err)
		}
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
