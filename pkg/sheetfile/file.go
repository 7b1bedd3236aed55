// Package sheetfile persists option sheets as JSON, YAML, or TOML files and
// can keep a store synchronized with a sheet file on disk.
package sheetfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	plotopts "github.com/goliatone/go-plotopts"
	"github.com/goliatone/go-plotopts/internal/hydrate"
)

// ErrUnsupportedFormat indicates a file extension no codec is registered for.
var ErrUnsupportedFormat = errors.New("sheetfile: unsupported format")

func formatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads and validates the sheet at path, inferring the codec from the
// file extension.
func Load(path string) (plotopts.Sheet, error) {
	format, err := formatFor(path)
	if err != nil {
		return plotopts.Sheet{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return plotopts.Sheet{}, fmt.Errorf("sheetfile: read %s: %w", path, err)
	}

	payload := map[string]any{}
	switch format {
	case "json":
		err = json.Unmarshal(raw, &payload)
	case "yaml":
		err = yaml.Unmarshal(raw, &payload)
	case "toml":
		err = toml.Unmarshal(raw, &payload)
	}
	if err != nil {
		return plotopts.Sheet{}, fmt.Errorf("sheetfile: parse %s: %w", path, err)
	}

	decoder := hydrate.NewDecoder[plotopts.Sheet]()
	sheet, err := decoder.Decode(hydrate.Context{Name: path, Format: format}, payload)
	if err != nil {
		return plotopts.Sheet{}, err
	}
	if err := sheet.Validate(); err != nil {
		return plotopts.Sheet{}, fmt.Errorf("sheetfile: %s: %w", path, err)
	}
	return sheet, nil
}

// Save writes the sheet to path in the codec matching the file extension.
func Save(path string, sheet plotopts.Sheet) error {
	format, err := formatFor(path)
	if err != nil {
		return err
	}
	payload, err := normalize(sheet)
	if err != nil {
		return fmt.Errorf("sheetfile: normalize sheet for %s: %w", path, err)
	}

	var raw []byte
	switch format {
	case "json":
		raw, err = json.MarshalIndent(payload, "", "\t")
		if err == nil {
			raw = append(raw, '\n')
		}
	case "yaml":
		raw, err = yaml.Marshal(payload)
	case "toml":
		raw, err = toml.Marshal(payload)
	}
	if err != nil {
		return fmt.Errorf("sheetfile: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("sheetfile: write %s: %w", path, err)
	}
	return nil
}

// Apply loads the sheet at path and imports it into the store.
func Apply(store *plotopts.Store, path string) error {
	sheet, err := Load(path)
	if err != nil {
		return err
	}
	if err := store.Import(sheet); err != nil {
		return fmt.Errorf("sheetfile: apply %s: %w", path, err)
	}
	return nil
}

// normalize flattens the sheet through JSON so every codec writes the same
// key shapes regardless of its own struct-tag conventions.
func normalize(sheet plotopts.Sheet) (map[string]any, error) {
	buffer, err := json.Marshal(sheet)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{}
	if err := json.Unmarshal(buffer, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
