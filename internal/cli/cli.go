package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kdeps/pkg/buildinfo"
	"github.com/matzehuels/kdeps/pkg/cache"
	"github.com/matzehuels/kdeps/pkg/config"
	"github.com/matzehuels/kdeps/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "kdeps"

	// exitInterrupted is the shell convention for a SIGINT-terminated run.
	exitInterrupted = 130
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself resolves and downloads artifacts.
func (c *CLI) RootCommand() *cobra.Command {
	opts := &fetchOptions{}
	root := &cobra.Command{
		Use:   "kdeps [-f coordinates.txt] [-o lib]",
		Short: "kdeps downloads Maven artifacts with their transitive dependencies",
		Long: `kdeps reads group:artifact:version coordinates (one per line, from a file or stdin),
downloads each artifact from a Maven 2 repository and follows the dependencies
declared in its POM until the whole graph is local.`,
		Version:      buildinfo.Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd, opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	opts.register(root)

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// ExitCode maps the error returned by the root command to a process exit
// status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return exitInterrupted
	default:
		return 1
	}
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the metadata cache described by cfg. A Redis URL takes
// precedence over the local file cache.
func newCache(ctx context.Context, cfg config.Cache) (cache.Cache, error) {
	if cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Redis != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis, appName+":")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "redis cache")
		}
		return cache.Instrument(rc, "redis"), nil
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "cache directory %s", dir)
	}
	return cache.Instrument(fc, "file"), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/kdeps/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
