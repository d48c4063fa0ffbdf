package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the config file looked up in the working directory.
const FileName = "chore.cue"

// CurrentConfigVersion is the only configVersion accepted today.
const CurrentConfigVersion = "1"

var (
	ErrUnsupportedFormat = errors.New("unsupported config format: expected .cue")
	ErrInvalid           = errors.New("invalid config")
	ErrNotFound          = errors.New("config not found")
)

// Step holds the argv tail and extra environment of one delegated step.
type Step struct {
	Args []string
	Env  map[string]string
}

// Config parameterizes the fixed task set. It cannot add or remove commands.
type Config struct {
	// Source is the file the values came from; empty when defaults are used.
	Source        string
	ConfigVersion string
	// Tool is the executable every step invokes and the precondition checks.
	Tool string
	// Toolchain is the channel passed as `+<toolchain>` to the formatter.
	Toolchain string
	Fix       Step
	Fmt       Step
	Lint      Step
	Doc       Step
}

// Defaults mirrors the cargo workspace conventions chore was written for.
func Defaults() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Tool:          "cargo",
		Toolchain:     "nightly",
		Fix:           Step{Args: []string{"fix", "--allow-dirty"}},
		Fmt:           Step{Args: []string{"fmt"}},
		Lint:          Step{Args: []string{"clippy"}},
		Doc:           Step{Args: []string{"doc"}, Env: map[string]string{"RUSTDOCFLAGS": "-D warnings"}},
	}
}

// StepNames lists the configurable steps in execution order.
var StepNames = []string{"fix", "fmt", "lint", "doc"}

// Step returns the configuration of the named step.
func (c Config) Step(name string) (Step, bool) {
	switch name {
	case "fix":
		return c.Fix, true
	case "fmt":
		return c.Fmt, true
	case "lint":
		return c.Lint, true
	case "doc":
		return c.Doc, true
	}
	return Step{}, false
}

func (c *Config) stepRef(name string) *Step {
	switch name {
	case "fix":
		return &c.Fix
	case "fmt":
		return &c.Fmt
	case "lint":
		return &c.Lint
	case "doc":
		return &c.Doc
	}
	return nil
}

// Load resolves the config for dir. An explicit path must exist; otherwise
// dir/chore.cue is used when present and Defaults when it is not.
func Load(dir, explicit string) (Config, error) {
	if explicit != "" {
		path := explicit
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return Config{}, fmt.Errorf("%w: %s", ErrNotFound, explicit)
			}
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		return Parse(path)
	}
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(path)
}

// Parse compiles the CUE file at path and overlays it on Defaults.
func Parse(path string) (Config, error) {
	v, err := compileCUE(path)
	if err != nil {
		return Config{}, err
	}
	if err := rejectUnknownFields(v, "", topLevelFields); err != nil {
		return Config{}, err
	}
	cfg := Defaults()
	cfg.Source = path

	if err := requireStringField(v, "configVersion"); err != nil {
		return Config{}, err
	}
	if cfg.ConfigVersion, err = decodeString(v, "configVersion"); err != nil {
		return Config{}, err
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		return Config{}, fmt.Errorf("%w: unsupported configVersion: %q (supported: %s)", ErrInvalid, cfg.ConfigVersion, CurrentConfigVersion)
	}
	if s, ok, err := optionalString(v, "tool"); err != nil {
		return Config{}, err
	} else if ok {
		if s == "" {
			return Config{}, fmt.Errorf("%w: tool must not be empty", ErrInvalid)
		}
		cfg.Tool = s
	}
	if s, ok, err := optionalString(v, "toolchain"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.Toolchain = s
	}
	if err := parseSteps(v, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
