package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds project-level settings loaded from camscope.yml.
type Config struct {
	// HTTPAddr serves MCP over streamable HTTP when set; stdio otherwise.
	HTTPAddr string `yaml:"httpAddr,omitempty"`

	// ShodanAPIKey is a fallback for the SHODAN_API_KEY environment
	// variable. Without either, the remote discovery tools are disabled.
	ShodanAPIKey string `yaml:"shodanAPIKey,omitempty"`

	// CaptureWidth and CaptureHeight are the resolution requested from
	// local devices. Zero selects the driver default.
	CaptureWidth  int `yaml:"captureWidth,omitempty"`
	CaptureHeight int `yaml:"captureHeight,omitempty"`

	Verbose bool `yaml:"verbose,omitempty"`
}

// Load attempts to read camscope.yml or camscope.yaml from the given
// directory. Returns a zero-value config (not an error) if no config
// file exists.
func Load(dir string) (*Config, error) {
	for _, name := range []string{"camscope.yml", "camscope.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &Config{}, nil
}
