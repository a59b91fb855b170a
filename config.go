package ember

import (
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// Config holds the editor's user settings, loaded from an INI file under
// the user's config directory.
type Config struct {
	Theme              string
	FuzzyMaxDepth      int
	FuzzyMaxFiles      int
	FuzzyCaseSensitive bool
	ShowFileIcons      bool
	ShowHiddenFiles    bool
	TabWidth           int
	BarAtTop           bool
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Theme:         "default",
		FuzzyMaxDepth: 8,
		FuzzyMaxFiles: 10000,
		TabWidth:      4,
	}
}

// ConfigDir returns the editor's configuration directory, rooted at HOME.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ember")
}

// LoadConfig reads the config file over the defaults. A missing file is not
// an error; malformed values fall back to their defaults. tab_width clamps
// into [1, 16].
func LoadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	cfg, err := ini.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	s := cfg.Section("")
	c.Theme = s.Key("theme").MustString(c.Theme)
	c.FuzzyMaxDepth = s.Key("fuzzy_max_depth").MustInt(c.FuzzyMaxDepth)
	c.FuzzyMaxFiles = s.Key("fuzzy_max_files").MustInt(c.FuzzyMaxFiles)
	c.FuzzyCaseSensitive = s.Key("fuzzy_case_sensitive").MustBool(c.FuzzyCaseSensitive)
	c.ShowFileIcons = s.Key("show_file_icons").MustBool(c.ShowFileIcons)
	c.ShowHiddenFiles = s.Key("show_hidden_files").MustBool(c.ShowHiddenFiles)
	c.TabWidth = s.Key("tab_width").MustInt(c.TabWidth)
	c.BarAtTop = s.Key("bar_at_top").MustBool(c.BarAtTop)
	if c.TabWidth < 1 {
		c.TabWidth = 1
	}
	if c.TabWidth > 16 {
		c.TabWidth = 16
	}
	return c, nil
}
