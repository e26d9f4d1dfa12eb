package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/cursorkeep/internal/position"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <file>",
	Short: "Show the stored position history of a file",
	Long: `Show the stored position history of a file, newest first.
Relative paths are resolved against the current directory. Positions are
printed one-based as line:column.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		return withStore(cmd, func(_ *session, st *position.Store) error {
			hist := st.History(path)
			out := cmd.OutOrStdout()

			if lookupJSON {
				doc, err := sjson.Set(`{"history":[]}`, "path", path)
				if err != nil {
					return err
				}
				for _, rec := range hist {
					entry, err := recordJSON(rec)
					if err != nil {
						return err
					}
					if doc, err = sjson.SetRaw(doc, "history.-1", entry); err != nil {
						return err
					}
				}
				_, err = fmt.Fprintln(out, doc)
				return err
			}

			if len(hist) == 0 {
				return fmt.Errorf("no position stored for %s", path)
			}
			for _, rec := range hist {
				fmt.Fprintf(out, "%s\t%s\n", rec.Position(), formatTime(rec.Time()))
			}
			return nil
		})
	},
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print JSON")
	rootCmd.AddCommand(lookupCmd)
}
