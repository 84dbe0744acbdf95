// Package config loads the interpreter's TOML settings.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/naoina/toml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultFileName is looked up in the home directory when no --config is given.
const DefaultFileName = ".codelang.toml"

// Config holds the settings for the command line driver and the REPL.
type Config struct {
	Prompt             string
	ContinuationPrompt string
	HistoryFile        string `toml:",omitempty"`
	Color              string
	Trace              bool
}

// Defaults are used for every field the configuration file leaves out.
var Defaults = Config{
	Prompt:             "code> ",
	ContinuationPrompt: ".... ",
	HistoryFile:        "~/.codelang_history",
	Color:              ColorAuto,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// DefaultPath returns $HOME/.codelang.toml, or "" when there is no home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, DefaultFileName)
}

// Load decodes file into cfg. Fields absent from the file keep their
// current values.
func Load(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = Decode(bufio.NewReader(f), cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// Decode reads TOML settings from r into cfg.
func Decode(r io.Reader, cfg *Config) error {
	return tomlSettings.NewDecoder(r).Decode(cfg)
}

// Resolve starts from Defaults and applies file. An empty file name means
// the default path, which may be absent.
func Resolve(file string) (Config, error) {
	cfg := Defaults
	explicit := file != ""
	if !explicit {
		file = DefaultPath()
	}
	if file == "" {
		return cfg, nil
	}
	if err := Load(file, &cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks field values that TOML decoding cannot.
func (c *Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid Color %q: want %s, %s or %s", c.Color, ColorAuto, ColorAlways, ColorNever)
	}
	return nil
}

// HistoryPath expands a leading ~ in HistoryFile. It returns "" when
// history is disabled.
func (c *Config) HistoryPath() string {
	path := c.HistoryFile
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Dump writes cfg as TOML.
func Dump(w io.Writer, cfg *Config) error {
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
