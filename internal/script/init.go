package script

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// InitFileName is the user script run at startup, next to the config file.
const InitFileName = "init.lua"

// InitPath returns the init script path for a config file path.
func InitPath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), InitFileName)
}

// RunInit runs the script at path with ks.cursorkeep installed. A missing
// file is not an error; ran reports whether a script was executed.
func RunInit(ctx context.Context, s *State, m *Module, path string) (ran bool, err error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	m.Install(s)
	if err := s.DoFile(ctx, path); err != nil {
		return true, fmt.Errorf("running %s: %w", path, err)
	}
	s.logger.Info("ran %s", path)
	return true, nil
}
