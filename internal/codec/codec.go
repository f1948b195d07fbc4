// Package codec encodes and decodes task sequences in the supported file formats.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	yaml "gopkg.in/yaml.v3"

	"todo/internal/service"
)

// Format is a persisted data format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// jsonIndent keeps files readable and diff-friendly.
const jsonIndent = "    "

// tomlDocument wraps the sequence; TOML has no top-level arrays.
type tomlDocument struct {
	Tasks []service.Task `toml:"task"`
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, YAML, TOML:
		return f, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// FormatFromPath picks a format from the file extension.
// Unknown extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	default:
		return JSON
	}
}

// Encode serializes tasks in the given format.
func Encode(f Format, tasks []service.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []service.Task{}
	}

	switch f {
	case JSON, "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", jsonIndent)
		if err := enc.Encode(tasks); err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return buf.Bytes(), nil
	case YAML:
		data, err := yaml.Marshal(tasks)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return data, nil
	case TOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(tomlDocument{Tasks: tasks}); err != nil {
			return nil, fmt.Errorf("failed to marshal TOML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", f)
	}
}

// Decode parses a task sequence. Malformed input returns an error;
// callers decide whether that means corrupt data.
func Decode(f Format, data []byte) ([]service.Task, error) {
	var tasks []service.Task

	switch f {
	case JSON, "":
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	case TOML:
		var doc tomlDocument
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal TOML: %w", err)
		}
		tasks = doc.Tasks
	default:
		return nil, fmt.Errorf("unsupported format: %s", f)
	}

	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}
