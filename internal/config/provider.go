// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects the configuration sources.
	LoadOptions struct {
		// ConfigFilePath loads this file exclusively when set. It must exist.
		ConfigFilePath string
		// ConfigDirPath replaces the user config directory when set.
		ConfigDirPath string
	}

	// Provider loads configuration.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Loaded, error)
	}

	// Loaded is a configuration along with the file it was read from.
	Loaded struct {
		*Config
		// Source is the CUE file merged over the defaults, or "" when none
		// was found.
		Source string
	}

	fileProvider struct {
		getenv func(string) (string, bool)
	}
)

// NewProvider creates a Provider reading files and the process environment.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load implements Provider.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	return load(ctx, opts, p.getenv)
}
