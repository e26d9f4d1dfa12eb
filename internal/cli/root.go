// Package cli implements the cursorkeep command line.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/cursorkeep/internal/config"
	"github.com/dshills/cursorkeep/internal/logging"
	"github.com/dshills/cursorkeep/internal/position"
)

// Build information, set by main.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "cursorkeep",
	Short: "Remember cursor positions across editor sessions",
	Long: `cursorkeep records the cursor position of every file you edit and puts
the cursor back when you reopen the file.

Positions are kept in a JSON file (by default ~/mycode/cursor-positions.json).
Settings live in the [cursorkeep] table of the config file and can be
overridden with CURSORKEEP_* environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the per-user cursorkeep/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
}

// SetVersion sets the build information reported by the version command.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// session is what every subcommand starts from.
type session struct {
	cfg    *config.Config
	logger *logging.Logger
	closer io.Closer
}

func (s *session) Close() error {
	var err error
	if s.cfg != nil {
		err = s.cfg.Close()
	}
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// open builds the logger and loads the configuration. fallback is the log
// output used when --log-file is not set.
func open(fallback io.Writer) (*session, error) {
	s := &session{}

	out := fallback
	if logFile != "" {
		f, err := logging.OpenFile(logFile)
		if err != nil {
			return nil, err
		}
		out = f
		s.closer = f
	}
	if out == nil {
		s.logger = logging.Discard()
	} else {
		lc := logging.DefaultConfig()
		lc.Level = logging.ParseLevel(logLevel)
		lc.Output = out
		s.logger = logging.New(lc)
	}

	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			s.logger.Warn("no default config path: %v", err)
		}
		path = p
	}

	s.cfg = config.New(
		config.WithPath(path),
		config.WithLogger(s.logger.WithComponent("config")),
	)
	if err := s.cfg.Load(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return s, nil
}

// store opens the position store selected by the settings.
func (s *session) store() (*position.Store, error) {
	settings := s.cfg.Settings()
	path, err := settings.StoragePath()
	if err != nil {
		return nil, err
	}
	st := position.NewStore(path,
		position.WithCap(settings.MaxFilesPerDocument),
		position.WithLogger(s.logger.WithComponent("store")),
	)
	if err := st.Load(); err != nil {
		return nil, err
	}
	return st, nil
}

// withStore runs fn with a loaded session and store. Logs go to the
// command's error stream.
func withStore(cmd *cobra.Command, fn func(s *session, st *position.Store) error) error {
	s, err := open(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.store()
	if err != nil {
		return err
	}
	return fn(s, st)
}
