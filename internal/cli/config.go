package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/cursorkeep/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := open(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close()

		settings := s.cfg.Settings()
		out := cmd.OutOrStdout()
		for _, key := range config.Keys {
			v, _ := settings.Get(key)
			fmt.Fprintf(out, "%-20s %v\n", key, v)
		}
		if path, err := settings.StoragePath(); err == nil {
			fmt.Fprintf(out, "%-20s %s\n", "storagePath", path)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := open(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close()

		if s.cfg.Path() == "" {
			return config.ErrNoConfigFile
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.cfg.Path())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting and write it to the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.Close()

		key, value := args[0], args[1]
		if err := s.cfg.Set(key, value); err != nil {
			if errors.Is(err, config.ErrUnknownSetting) {
				return fmt.Errorf("%w (known: %v)", err, config.Keys)
			}
			return err
		}
		v, _ := s.cfg.Get(key)
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, v)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
