// Package config loads contactsync settings from a YAML file.
//
// The file is checked against an embedded CUE schema that also supplies the
// defaults. Unknown keys are rejected.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the resolved configuration.
type Config struct {
	Database string
	LogLevel slog.Level

	// MaxPayloadBytes is the provider's per-call payload limit. Zero
	// disables it.
	MaxPayloadBytes   int
	PhotoProcessDelay time.Duration

	YieldInterval int

	PhotoAttempts int
	PhotoInterval time.Duration
}

// fileConfig mirrors #Config in schema.cue.
type fileConfig struct {
	Database string `json:"database"`
	LogLevel string `json:"log_level"`
	Provider struct {
		MaxPayloadBytes   int    `json:"max_payload_bytes"`
		PhotoProcessDelay string `json:"photo_process_delay"`
	} `json:"provider"`
	Batch struct {
		YieldInterval int `json:"yield_interval"`
	} `json:"batch"`
	Photo struct {
		Attempts int    `json:"attempts"`
		Interval string `json:"interval"`
	} `json:"photo"`
}

// Error is a configuration error, with its position in the schema or the
// input when CUE reports one.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg, err := Parse(nil)
	if err != nil {
		// The embedded schema always yields a valid default.
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load reads and validates the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML config data and fills in defaults.
// Empty data yields the defaults.
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, &Error{Field: "yaml", Message: err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var fc fileConfig
	if err := v.Decode(&fc); err != nil {
		return Config{}, formatCUEError(err)
	}
	return fc.resolve()
}

func (fc fileConfig) resolve() (Config, error) {
	cfg := Config{
		Database:        fc.Database,
		MaxPayloadBytes: fc.Provider.MaxPayloadBytes,
		YieldInterval:   fc.Batch.YieldInterval,
		PhotoAttempts:   fc.Photo.Attempts,
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(fc.LogLevel)); err != nil {
		return Config{}, &Error{Field: "log_level", Message: err.Error()}
	}

	var err error
	cfg.PhotoProcessDelay, err = parseDuration("provider.photo_process_delay", fc.Provider.PhotoProcessDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.PhotoInterval, err = parseDuration("photo.interval", fc.Photo.Interval)
	if err != nil {
		return Config{}, err
	}
	if cfg.PhotoInterval <= 0 {
		return Config{}, &Error{Field: "photo.interval", Message: "must be positive"}
	}
	return cfg, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &Error{Field: field, Message: err.Error()}
	}
	if d < 0 {
		return 0, &Error{Field: field, Message: "must not be negative"}
	}
	return d, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Field: "config", Message: err.Error()}
	}

	first := errs[0]
	field := "config"
	if path := first.Path(); len(path) > 0 {
		field = joinPath(path)
	}
	msg, args := first.Msg()
	e := &Error{Field: field, Message: fmt.Sprintf(msg, args...)}
	if positions := errors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}
	return out
}
