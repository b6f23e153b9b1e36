package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"electrolyser_tea/pkg/core/params"
	"electrolyser_tea/pkg/core/utils"
)

// FileSource reads a category -> key -> value document. The format follows the file
// extension: .yaml/.yml, .hjson, or .json (parsed leniently).
type FileSource struct {
	path string
}

// NewFileSource returns a source for the document at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Load(_ context.Context) (*params.Store, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("parameter file %s: %w", s.path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	tables, err := DecodeParams(filepath.Ext(s.path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return params.New(tables)
}

// DecodeParams parses a parameter document in the format named by ext.
func DecodeParams(ext string, data []byte) (map[string]map[string]float64, error) {
	var tables map[string]map[string]float64
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &tables); err != nil {
			return nil, err
		}
	case ".hjson":
		if err := utils.ParseHJSONToStruct(data, &tables); err != nil {
			return nil, err
		}
	case ".json", "":
		if _, err := utils.SmartParse(data, &tables); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported parameter file type %q", ext)
	}
	return tables, nil
}

// WriteParamsYAML writes s as a YAML parameter document.
func WriteParamsYAML(path string, s *params.Store) error {
	data, err := yaml.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
