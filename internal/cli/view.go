package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/cursorkeep/internal/event"
	"github.com/dshills/cursorkeep/internal/keeper"
	"github.com/dshills/cursorkeep/internal/position"
	"github.com/dshills/cursorkeep/internal/script"
	viewer "github.com/dshills/cursorkeep/internal/term"
)

// isTerminal reports whether fd is a terminal. Replaced in tests.
var isTerminal = term.IsTerminal

var viewNoInit bool

var viewCmd = &cobra.Command{
	Use:   "view <file>...",
	Short: "Open files in the terminal viewer with position tracking",
	Long: `Open files read-only in a terminal viewer. The cursor position of each
file is recorded while you move and restored when you come back to it.

Keys:
  arrows, hjkl, PgUp/PgDn, Home/End   move
  Tab, Shift-Tab                      next/previous file
  s  save now        r  restore       t  toggle tips
  e  toggle enabled  C  clear all     ?  show status
  q, Esc, Ctrl-C     quit

Logs are discarded unless --log-file is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal(int(os.Stdout.Fd())) {
			return errors.New("view requires a terminal")
		}

		docs := make([]*viewer.Document, 0, len(args))
		for _, arg := range args {
			doc, err := viewer.LoadDocument(arg)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}

		s, err := open(nil)
		if err != nil {
			return err
		}
		defer s.Close()

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("creating screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("initializing screen: %w", err)
		}
		defer screen.Fini()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runViewer(ctx, s, screen, docs)
	},
}

func init() {
	viewCmd.Flags().BoolVar(&viewNoInit, "no-init", false, "do not run init.lua")
	rootCmd.AddCommand(viewCmd)
}

// runViewer wires the viewer, keeper and init script together and blocks
// until the viewer exits.
func runViewer(ctx context.Context, s *session, screen tcell.Screen, docs []*viewer.Document) error {
	bus := event.NewBus(event.WithErrorHandler(func(err error) {
		s.logger.Warn("event handler: %v", err)
	}))
	defer bus.Close()

	v, err := viewer.New(screen, bus, docs, viewer.WithLogger(s.logger.WithComponent("term")))
	if err != nil {
		return err
	}

	store := position.NewStore("", position.WithLogger(s.logger.WithComponent("store")))
	k := keeper.New(v, bus, s.cfg, store, keeper.WithLogger(s.logger.WithComponent("keeper")))
	if err := k.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := k.Dispose(); err != nil {
			s.logger.Error("final save: %v", err)
		}
	}()
	v.SetCommandRunner(k.Execute)

	if err := s.cfg.Watch(); err != nil {
		s.logger.Warn("not watching config: %v", err)
	}

	if !viewNoInit && s.cfg.Path() != "" {
		runInitScript(ctx, s, k)
	}

	err = v.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runInitScript(ctx context.Context, s *session, k *keeper.Keeper) {
	st := script.NewState(script.WithLogger(s.logger.WithComponent("lua")))
	defer st.Close()

	path := script.InitPath(s.cfg.Path())
	if _, err := script.RunInit(ctx, st, script.NewModule(ctx, k), path); err != nil {
		s.logger.Error("%v", err)
	}
}
