package pricing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"
)

// modelFile is the on-disk layout of a pricing model file.
type modelFile struct {
	Models []ModelSpec `json:"models" yaml:"models"`
}

// ParseModels decodes model specs. format is "yaml" or "hjson"; HJSON also
// accepts plain JSON.
func ParseModels(data []byte, format string) ([]ModelSpec, error) {
	var f modelFile
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse yaml models: %w", err)
		}
	case "hjson", "json":
		if err := hjson.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse hjson models: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported model file format %q", format)
	}
	if len(f.Models) == 0 {
		return nil, newValidationError("models", "model file defines no models")
	}
	return f.Models, nil
}

// LoadRegistry builds a registry from a .yaml, .yml, .hjson or .json file.
// An empty path yields the built-in models.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	specs, err := ParseModels(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewRegistry(specs...)
}

// ParseMarketConditions decodes a YAML mapping of condition name to multiplier,
// keeping the order in which the conditions are written.
func ParseMarketConditions(data []byte, takenAt time.Time) (*MarketSnapshot, error) {
	var items yaml.MapSlice
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse market conditions: %w", err)
	}

	factors := make([]MarketFactor, 0, len(items))
	for _, item := range items {
		name := fmt.Sprint(item.Key)
		var v float64
		switch n := item.Value.(type) {
		case int:
			v = float64(n)
		case int64:
			v = float64(n)
		case uint64:
			v = float64(n)
		case float64:
			v = n
		default:
			return nil, newValidationError("market_conditions."+name, "multiplier must be a number, got %T", item.Value)
		}
		factors = append(factors, MarketFactor{Name: name, Multiplier: v})
	}
	return NewMarketSnapshot(takenAt, factors...)
}

// LoadMarketConditions reads a market conditions file. An empty path yields the
// built-in snapshot.
func LoadMarketConditions(path string) (*MarketSnapshot, error) {
	if path == "" {
		return DefaultMarketSnapshot(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read market conditions file %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return ParseMarketConditions(data, info.ModTime())
}

func formatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
