package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the options file at path. An empty path yields the defaults.
func Load(path string) (*Options, error) {
	options := &Options{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read options file: %w", err)
		}
		if err := yaml.Unmarshal(data, options); err != nil {
			return nil, fmt.Errorf("failed to parse options file: %w", err)
		}
	}

	setDefaults(options)

	if err := validate(options); err != nil {
		return nil, fmt.Errorf("invalid options %s: %w", path, err)
	}

	return options, nil
}

func setDefaults(options *Options) {
	if options.DefaultAuthor.Login == "" {
		options.DefaultAuthor.Login = "admin"
	}
}

func validate(options *Options) error {
	if options.Media.LocalDir != "" {
		info, err := os.Stat(options.Media.LocalDir)
		if err != nil {
			return fmt.Errorf("media local_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("media local_dir is not a directory: %s", options.Media.LocalDir)
		}
	}
	return nil
}
