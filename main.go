package main

import (
	"fmt"
	"os"

	"library-catalog/config"
	"library-catalog/library"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	configPath string
	seedPath   string
	logLevel   string

	cfg    *config.Config
	logger *log.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "library",
		Short:         "In-memory library catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runShell(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a TOML config file (default ./"+config.DefaultPath+" if present)")
	root.PersistentFlags().StringVar(&a.seedPath, "seed", "", "TOML seed file loaded into the catalog at startup")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive catalog shell",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.runShell(cmd)
			},
		},
		&cobra.Command{
			Use:   "demo",
			Short: "Run the sample catalog scenario",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				runDemo(cmd.OutOrStdout(), a.logger)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init-config [path]",
			Short: "Write the example configuration file",
			Args:  cobra.MaximumNArgs(1),
			PersistentPreRunE: func(*cobra.Command, []string) error {
				return nil
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				path := config.DefaultPath
				if len(args) == 1 {
					path = args[0]
				}
				if err := config.CreateConfigFile(path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			},
		},
	)
	return root
}

// load resolves configuration: --config, then ./library.toml, then the
// embedded defaults. Flags override file values.
func (a *app) load() error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return err
	}
	if a.seedPath != "" {
		cfg.Catalog.Seed = a.seedPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	a.cfg = cfg
	a.logger = cfg.NewLogger(os.Stderr)
	return nil
}

// catalog builds the in-memory library, importing the configured seed.
func (a *app) catalog() (*library.Library, error) {
	lib := library.New(library.WithLogger(a.logger))
	if a.cfg.Catalog.Seed == "" {
		return lib, nil
	}
	seed, err := library.LoadSeedFile(a.cfg.Catalog.Seed)
	if err != nil {
		a.logger.Error("seed import failed", "path", a.cfg.Catalog.Seed, "err", err)
		return nil, err
	}
	lib.Import(seed)
	return lib, nil
}

func (a *app) runShell(cmd *cobra.Command) error {
	lib, err := a.catalog()
	if err != nil {
		return err
	}

	sh := NewShell(lib, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger)
	sh.prompt = a.cfg.Shell.Prompt
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		sh.interactive = term.IsTerminal(int(f.Fd()))
	}
	return sh.Run()
}
