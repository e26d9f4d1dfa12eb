package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/cursorkeep/internal/keeper"
	"github.com/dshills/cursorkeep/internal/position"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [open-file...]",
	Short: "Print the cursorkeep status line",
	Long: `Print the same one-line summary as the showStatus command. Files given
as arguments are counted as open.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *session, st *position.Store) error {
			open := make([]string, 0, len(args))
			for _, arg := range args {
				path, err := absPath(arg)
				if err != nil {
					return err
				}
				open = append(open, path)
			}

			status := keeper.StatusOf(s.cfg.Settings(), st, open)
			out := cmd.OutOrStdout()
			if !statusJSON {
				fmt.Fprintln(out, status.String())
				return nil
			}

			doc := "{}"
			var err error
			for _, kv := range []struct {
				key   string
				value any
			}{
				{"enabled", status.Enabled},
				{"saveInterval", status.SaveInterval},
				{"trackedFiles", status.TrackedFiles},
				{"openTracked", status.OpenTracked},
				{"fileSize", status.FileSize},
				{"tipMode", string(status.TipMode)},
				{"maxFilesPerDocument", status.Cap},
				{"location", status.Location},
				{"path", status.Path},
			} {
				if doc, err = sjson.Set(doc, kv.key, kv.value); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(out, doc)
			return err
		})
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print JSON")
	rootCmd.AddCommand(statusCmd)
}

func absPath(p string) (string, error) {
	return filepath.Abs(p)
}
