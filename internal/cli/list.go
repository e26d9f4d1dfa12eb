package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/cursorkeep/internal/position"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked files with their newest position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(_ *session, st *position.Store) error {
			out := cmd.OutOrStdout()
			if listJSON {
				doc, err := listDocument(st)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, doc)
				return err
			}

			if st.Len() == 0 {
				fmt.Fprintln(out, "no positions stored")
				return nil
			}
			for _, path := range st.Paths() {
				rec, _ := st.Lookup(path)
				fmt.Fprintf(out, "%s\t%s\t%s\n", path, rec.Position(), formatTime(rec.Time()))
			}
			return nil
		})
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
	rootCmd.AddCommand(listCmd)
}

func listDocument(st *position.Store) (string, error) {
	doc := `{"files":[]}`
	for _, path := range st.Paths() {
		rec, _ := st.Lookup(path)
		entry, err := recordJSON(rec)
		if err != nil {
			return "", err
		}
		if entry, err = sjson.Set(entry, "path", path); err != nil {
			return "", err
		}
		if doc, err = sjson.SetRaw(doc, "files.-1", entry); err != nil {
			return "", err
		}
	}
	return sjson.Set(doc, "count", st.Len())
}

func recordJSON(rec position.Record) (string, error) {
	entry := "{}"
	var err error
	for _, kv := range []struct {
		key   string
		value any
	}{
		{"line", rec.Line},
		{"character", rec.Character},
		{"timestamp", rec.Timestamp},
	} {
		if entry, err = sjson.Set(entry, kv.key, kv.value); err != nil {
			return "", err
		}
	}
	return entry, nil
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
