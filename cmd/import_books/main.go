package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"library-catalog/config"
	"library-catalog/library"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func main() {
	if err := newImportCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var configPath, logLevel string

	cmd := &cobra.Command{
		Use:           "import_books [seed.toml]",
		Short:         "Load a TOML seed into a catalog and print what was imported",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seedPath := "books.toml"
			if len(args) == 1 {
				seedPath = args[0]
			}

			logger, err := newLogger(configPath, logLevel)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error loading config: %v\n", err)
				return err
			}

			lib := library.New(library.WithLogger(logger))
			if err := importSeed(cmd.OutOrStdout(), lib, seedPath); err != nil {
				logger.Error("import failed", "path", seedPath, "err", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file (default ./"+config.DefaultPath+" if present)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	return cmd
}

// newLogger resolves configuration the same way the library CLI does.
func newLogger(configPath, logLevel string) (*log.Logger, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.NewLogger(os.Stderr), nil
}

// importSeed loads the seed at path into lib and prints a summary table.
func importSeed(out io.Writer, lib *library.Library, path string) error {
	fmt.Fprintf(out, "Importing books from %s...\n", path)

	seed, err := library.LoadSeedFile(path)
	if err != nil {
		return err
	}

	books, users := lib.Import(seed)

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d books, %d users\n", books, users)

	if books > 0 {
		fmt.Fprintln(out, "\nImported books:")
		fmt.Fprintf(out, "%s %s %s\n", truncateString("ISBN", 14), truncateString("Title", 50), "Author")
		fmt.Fprintln(out, strings.Repeat("-", 95))
		for _, b := range lib.Books() {
			fmt.Fprintf(out, "%s %s %s\n", truncateString(b.ISBN, 14), truncateString(b.Title, 50), truncateString(b.Author, 30))
		}
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	return runewidth.FillRight(runewidth.Truncate(s, maxLen, "..."), maxLen)
}
