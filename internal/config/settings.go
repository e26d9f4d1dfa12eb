package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Setting keys recognized in the "cursorkeep" section.
const (
	KeyEnabled             = "enabled"
	KeySaveInterval        = "saveInterval"
	KeyTipMode             = "tipMode"
	KeySaveLocation        = "saveLocation"
	KeyAlternateDir        = "alternateDir"
	KeyStorageFile         = "storageFile"
	KeyEnableStatusBar     = "enableStatusBar"
	KeyShowStartupMessage  = "showStartupMessage"
	KeyMaxFilesPerDocument = "maxFilesPerDocument"
)

// SectionName is the config file table that holds cursorkeep settings.
const SectionName = "cursorkeep"

// Keys lists every recognized setting in display order.
var Keys = []string{
	KeyEnabled,
	KeySaveInterval,
	KeyTipMode,
	KeySaveLocation,
	KeyAlternateDir,
	KeyStorageFile,
	KeyEnableStatusBar,
	KeyShowStartupMessage,
	KeyMaxFilesPerDocument,
}

// envMapping maps environment variables to setting keys.
var envMapping = map[string]string{
	"CURSORKEEP_ENABLED":                KeyEnabled,
	"CURSORKEEP_SAVE_INTERVAL":          KeySaveInterval,
	"CURSORKEEP_TIP_MODE":               KeyTipMode,
	"CURSORKEEP_SAVE_LOCATION":          KeySaveLocation,
	"CURSORKEEP_ALTERNATE_DIR":          KeyAlternateDir,
	"CURSORKEEP_STORAGE_FILE":           KeyStorageFile,
	"CURSORKEEP_ENABLE_STATUS_BAR":      KeyEnableStatusBar,
	"CURSORKEEP_SHOW_STARTUP_MESSAGE":   KeyShowStartupMessage,
	"CURSORKEEP_MAX_FILES_PER_DOCUMENT": KeyMaxFilesPerDocument,
}

// TipMode selects how often, and where, rotating tips are shown.
type TipMode string

// Tip modes.
const (
	TipNone      TipMode = "none"
	TipStatusBar TipMode = "statusbar"
	Tip5s        TipMode = "5s"
	Tip10s       TipMode = "10s"
	Tip1min      TipMode = "1min"
)

// TipModes lists the modes in toggle order.
var TipModes = []TipMode{TipNone, TipStatusBar, Tip5s, Tip10s, Tip1min}

// Valid reports whether m is a known mode.
func (m TipMode) Valid() bool {
	for _, v := range TipModes {
		if v == m {
			return true
		}
	}
	return false
}

// Next returns the mode after m in toggle order, wrapping around.
// Unknown modes advance to the first mode after TipNone.
func (m TipMode) Next() TipMode {
	for i, v := range TipModes {
		if v == m {
			return TipModes[(i+1)%len(TipModes)]
		}
	}
	return TipModes[1]
}

// SaveLocation selects the directory that holds the position file.
type SaveLocation string

// Save locations.
const (
	// LocationHome stores positions under ~/mycode.
	LocationHome SaveLocation = "home"
	// LocationAlternate stores positions under AlternateDir.
	LocationAlternate SaveLocation = "alternate"
)

// parseSaveLocation also accepts the drive-letter names used by older
// configuration files.
func parseSaveLocation(s string) (SaveLocation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "c_drive":
		return LocationHome, true
	case "alternate", "d_drive":
		return LocationAlternate, true
	default:
		return "", false
	}
}

// Defaults.
const (
	DefaultSaveInterval        = 10
	DefaultMaxFilesPerDocument = 10

	// MaxSaveInterval is the longest accepted autosave period, one day.
	MaxSaveInterval = 24 * 60 * 60

	DefaultStorageFile         = "cursor-positions.json"
	storageDirName             = "mycode"
)

// DefaultAlternateDir is the alternate storage directory for this platform.
func DefaultAlternateDir() string {
	if runtime.GOOS == "windows" {
		return `D:\` + storageDirName
	}
	return filepath.Join(os.TempDir(), storageDirName)
}

// Settings is a snapshot of the effective configuration. Mutating it does
// not change the configuration; use Config.Set.
type Settings struct {
	// Enabled turns position tracking and restoring on or off.
	Enabled bool

	// SaveInterval is the autosave period in seconds.
	SaveInterval int

	// TipMode selects the rotating tip behavior.
	TipMode TipMode

	// SaveLocation selects the storage directory.
	SaveLocation SaveLocation

	// AlternateDir is the directory used when SaveLocation is "alternate".
	AlternateDir string

	// StorageFile is the position file name, or an absolute path.
	StorageFile string

	// EnableStatusBar shows the cursorkeep status item.
	EnableStatusBar bool

	// ShowStartupMessage shows a notification when cursorkeep starts.
	ShowStartupMessage bool

	// MaxFilesPerDocument caps the position history kept per file.
	MaxFilesPerDocument int
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Enabled:             true,
		SaveInterval:        DefaultSaveInterval,
		TipMode:             TipNone,
		SaveLocation:        LocationHome,
		AlternateDir:        DefaultAlternateDir(),
		StorageFile:         DefaultStorageFile,
		EnableStatusBar:     true,
		ShowStartupMessage:  true,
		MaxFilesPerDocument: DefaultMaxFilesPerDocument,
	}
}

// StorageDir resolves the directory that holds the position file.
func (s Settings) StorageDir() (string, error) {
	if s.SaveLocation == LocationAlternate {
		if s.AlternateDir == "" {
			return DefaultAlternateDir(), nil
		}
		return s.AlternateDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, storageDirName), nil
}

// StoragePath resolves the absolute path of the position file.
func (s Settings) StoragePath() (string, error) {
	name := s.StorageFile
	if name == "" {
		name = DefaultStorageFile
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir, err := s.StorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// LocationLabel is a short human description of the storage directory.
func (s Settings) LocationLabel() string {
	if s.SaveLocation == LocationAlternate {
		return "alternate (" + s.AlternateDir + ")"
	}
	return "home (~/" + storageDirName + ")"
}

// Get returns the value of key.
func (s Settings) Get(key string) (any, bool) {
	switch key {
	case KeyEnabled:
		return s.Enabled, true
	case KeySaveInterval:
		return s.SaveInterval, true
	case KeyTipMode:
		return string(s.TipMode), true
	case KeySaveLocation:
		return string(s.SaveLocation), true
	case KeyAlternateDir:
		return s.AlternateDir, true
	case KeyStorageFile:
		return s.StorageFile, true
	case KeyEnableStatusBar:
		return s.EnableStatusBar, true
	case KeyShowStartupMessage:
		return s.ShowStartupMessage, true
	case KeyMaxFilesPerDocument:
		return s.MaxFilesPerDocument, true
	default:
		return nil, false
	}
}

// Map returns the settings as a key -> value map suitable for encoding.
func (s Settings) Map() map[string]any {
	out := make(map[string]any, len(Keys))
	for _, k := range Keys {
		v, _ := s.Get(k)
		out[k] = v
	}
	return out
}

// apply validates value and stores it under key.
func (s *Settings) apply(key string, value any) error {
	fail := func(err error) error {
		return &SettingError{Key: key, Value: value, Err: err}
	}

	switch key {
	case KeyEnabled, KeyEnableStatusBar, KeyShowStartupMessage:
		b, err := toBool(value)
		if err != nil {
			return fail(err)
		}
		switch key {
		case KeyEnabled:
			s.Enabled = b
		case KeyEnableStatusBar:
			s.EnableStatusBar = b
		default:
			s.ShowStartupMessage = b
		}

	case KeySaveInterval, KeyMaxFilesPerDocument:
		n, err := toInt(value)
		if err != nil {
			return fail(err)
		}
		if n < 1 {
			return fail(fmt.Errorf("%w: must be at least 1", ErrValidationFailed))
		}
		if key == KeySaveInterval {
			if n > MaxSaveInterval {
				return fail(fmt.Errorf("%w: must be at most %d seconds", ErrValidationFailed, MaxSaveInterval))
			}
			s.SaveInterval = n
		} else {
			s.MaxFilesPerDocument = n
		}

	case KeyTipMode:
		str, ok := value.(string)
		if !ok {
			return fail(fmt.Errorf("%w: expected string, got %T", ErrTypeMismatch, value))
		}
		mode := TipMode(strings.ToLower(strings.TrimSpace(str)))
		if !mode.Valid() {
			return fail(fmt.Errorf("%w: must be one of %v", ErrValidationFailed, TipModes))
		}
		s.TipMode = mode

	case KeySaveLocation:
		str, ok := value.(string)
		if !ok {
			return fail(fmt.Errorf("%w: expected string, got %T", ErrTypeMismatch, value))
		}
		loc, ok := parseSaveLocation(str)
		if !ok {
			return fail(fmt.Errorf("%w: must be %q or %q", ErrValidationFailed, LocationHome, LocationAlternate))
		}
		s.SaveLocation = loc

	case KeyAlternateDir, KeyStorageFile:
		str, ok := value.(string)
		if !ok {
			return fail(fmt.Errorf("%w: expected string, got %T", ErrTypeMismatch, value))
		}
		if key == KeyAlternateDir {
			s.AlternateDir = str
		} else {
			s.StorageFile = str
		}

	default:
		return fail(ErrUnknownSetting)
	}
	return nil
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("%w: expected boolean, got %q", ErrTypeMismatch, b)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("%w: expected boolean, got %T", ErrTypeMismatch, v)
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case uint64:
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %d out of range", ErrValidationFailed, n)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: expected integer, got %v", ErrTypeMismatch, n)
		}
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: expected integer, got %q", ErrTypeMismatch, n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("%w: expected integer, got %T", ErrTypeMismatch, v)
	}
}
