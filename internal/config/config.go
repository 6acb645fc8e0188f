// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/packforge/packforge/internal/cueutil"
	"github.com/packforge/packforge/internal/issue"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName names the config directory.
	AppName = "packforge"
	// ConfigFileName is the config file name.
	ConfigFileName = "config.cue"
	// EnvPrefix prefixes environment overrides: output.clear is read from
	// PACKFORGE_OUTPUT_CLEAR.
	EnvPrefix = "PACKFORGE"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the packforge directory below the user config
// directory ($XDG_CONFIG_HOME, ~/Library/Application Support or %AppData%).
//
//nolint:revive // config.Dir reads poorly at call sites
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate the user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// load resolves defaults, then the config file, then the environment.
// getenv replaces os.LookupEnv when non-nil.
func load(ctx context.Context, opts LoadOptions, getenv func(string) (string, bool)) (*Loaded, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	source, err := configFile(opts)
	if err != nil {
		return nil, err
	}
	if source != "" {
		if err := mergeCUE(v, source); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(source).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Compare it with the output of 'packforge config show --defaults'").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if getenv == nil {
		err = v.Unmarshal(&cfg)
	} else {
		err = unmarshalWithEnv(v, &cfg, getenv)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(source).
			WithSuggestion("Check the PACKFORGE_* environment variables").
			Wrap(err).
			BuildError()
	}
	return &Loaded{Config: &cfg, Source: source}, nil
}

// configFile returns the file to merge, or "" when there is none.
func configFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Create one with 'packforge config init'").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	for _, candidate := range []string{filepath.Join(dir, ConfigFileName), ConfigFileName} {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("target_format", d.TargetFormat)
	v.SetDefault("output.archive", d.Output.Archive)
	v.SetDefault("output.clear", d.Output.Clear)
	v.SetDefault("reader.error_policy", d.Reader.ErrorPolicy)
	v.SetDefault("reader.lenient", d.Reader.Lenient)
	v.SetDefault("reader.workers", d.Reader.Workers)
	v.SetDefault("merge.strategy", d.Merge.Strategy)
	v.SetDefault("log.level", d.Log.Level)
}

// unmarshalWithEnv applies overrides from getenv instead of the process
// environment, which tests cannot change in parallel.
func unmarshalWithEnv(v *viper.Viper, cfg *Config, getenv func(string) (string, bool)) error {
	for _, k := range v.AllKeys() {
		name := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(k, ".", "_"))
		if value, ok := getenv(name); ok {
			v.Set(k, value)
		}
	}
	return v.Unmarshal(cfg)
}

// mergeCUE validates a CUE file against #Config and merges it into v.
func mergeCUE(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	result, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path), cueutil.WithConcrete(false))
	if err != nil {
		return err
	}
	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to dir/config.cue,
// or to the user config directory when dir is empty. An existing file is
// kept unless force is set. It returns the file path.
func CreateDefaultConfig(dir string, force bool) (string, error) {
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if fileExists(path) && !force {
		return path, nil
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// GenerateCUE renders cfg as a CUE config file.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder
	sb.WriteString("// packforge configuration\n\n")
	fmt.Fprintf(&sb, "target_format: %d\n", cfg.TargetFormat)

	sb.WriteString("\noutput: {\n")
	fmt.Fprintf(&sb, "\tarchive: %t\n", cfg.Output.Archive)
	fmt.Fprintf(&sb, "\tclear:   %t\n", cfg.Output.Clear)
	sb.WriteString("}\n")

	sb.WriteString("\nreader: {\n")
	fmt.Fprintf(&sb, "\terror_policy: %q\n", cfg.Reader.ErrorPolicy)
	fmt.Fprintf(&sb, "\tlenient:      %t\n", cfg.Reader.Lenient)
	fmt.Fprintf(&sb, "\tworkers:      %d\n", cfg.Reader.Workers)
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nmerge: strategy: %q\n", cfg.Merge.Strategy)
	fmt.Fprintf(&sb, "\nlog: level: %q\n", cfg.Log.Level)
	return sb.String()
}

// GenerateTOML renders cfg as TOML.
func GenerateTOML(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return string(data), nil
}
