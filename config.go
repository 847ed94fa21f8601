package rt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes the fixed shape of a Runtime's backing arena. Every field
// is a hard ceiling: nothing here grows after New returns.
type Config struct {
	ReservedSize int `yaml:"reserved_size"`
	PerStackSize int `yaml:"per_stack_size"`
	NumStacks    int `yaml:"num_stacks"`
	HeapSize     int `yaml:"heap_size"`
	NumHeaders   int `yaml:"num_headers"`
}

// LoadConfig reads a Config from a YAML file, letting a driver program
// describe an arena shape declaratively instead of hard-coding five
// integers into its source.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("rt: reading config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("rt: parsing config %q: %w", path, err)
	}
	return cfg, nil
}
