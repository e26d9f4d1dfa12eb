package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/cursorkeep/internal/position"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear [file...]",
	Short: "Forget stored positions",
	Long: `Forget stored positions. With file arguments only those files are
forgotten; without arguments every position is removed, which requires --force.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(s *session, st *position.Store) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if !clearForce && st.Len() > 0 {
					return fmt.Errorf("refusing to clear %d files without --force", st.Len())
				}
				st.Clear()
			} else {
				for _, arg := range args {
					path, err := absPath(arg)
					if err != nil {
						return err
					}
					if !st.Forget(path) {
						fmt.Fprintf(out, "%s: not tracked\n", path)
					}
				}
			}

			res, err := st.Save()
			if err != nil {
				return err
			}
			s.logger.Info("cleared positions, %d files remain", res.Files)
			fmt.Fprintf(out, "%d files tracked in %s\n", res.Files, res.Path)
			return nil
		})
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "clear every position")
	rootCmd.AddCommand(clearCmd)
}
