// Package config resolves labelsync settings from flags, the environment
// and an optional YAML config file.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ALT-F4-LLC/labelsync/internal/throttle"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. LABELSYNC_OWNER.
	EnvPrefix = "LABELSYNC"

	// DefaultConfigFile is looked up in the working directory when no
	// config path is given.
	DefaultConfigFile = ".labelsync.yaml"

	// ConfigPathEnv names an explicit config file.
	ConfigPathEnv = "LABELSYNC_CONFIG"
)

// Setting keys. Flag names match these so viper can bind them directly.
const (
	KeyOwner      = "owner"
	KeyRepository = "repository"
	KeyLabelsFile = "labels-file"
	KeyBandwidth  = "bandwidth"
	KeyJournal    = "journal"
	KeyBaseURL    = "base-url"
)

// Config holds resolved settings.
type Config struct {
	Owner      string `json:"owner"`
	Repository string `json:"repository"`
	LabelsFile string `json:"labels_file"`
	Bandwidth  int    `json:"bandwidth"`
	Journal    string `json:"journal"`
	BaseURL    string `json:"base_url"`

	// ConfigFile is the file settings were read from, or "" when none.
	ConfigFile string `json:"config_file"`
}

// Load resolves settings with precedence flag > environment > config file >
// default. configPath may be empty, in which case $LABELSYNC_CONFIG and then
// ./.labelsync.yaml are tried. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	path, explicit := configPath, configPath != ""
	if path == "" {
		if env := os.Getenv(ConfigPathEnv); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultConfigFile
		}
	}

	v := newViper()
	used := ""
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		used = path
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return resolve(v, flags, used)
}

// LoadWithoutFile resolves settings from flags, the environment and
// defaults only. It is used by commands that create the config file.
func LoadWithoutFile(flags *pflag.FlagSet) (*Config, error) {
	return resolve(newViper(), flags, "")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBandwidth, throttle.DefaultBandwidth)
	v.SetDefault(KeyOwner, "")
	v.SetDefault(KeyRepository, "")
	v.SetDefault(KeyLabelsFile, "")
	v.SetDefault(KeyJournal, "")
	v.SetDefault(KeyBaseURL, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func resolve(v *viper.Viper, flags *pflag.FlagSet, used string) (*Config, error) {
	if flags != nil {
		for _, key := range []string{KeyOwner, KeyRepository, KeyLabelsFile, KeyBandwidth, KeyJournal, KeyBaseURL} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", key, err)
				}
			}
		}
	}

	cfg := &Config{
		Owner:      v.GetString(KeyOwner),
		Repository: v.GetString(KeyRepository),
		LabelsFile: v.GetString(KeyLabelsFile),
		Bandwidth:  v.GetInt(KeyBandwidth),
		Journal:    v.GetString(KeyJournal),
		BaseURL:    v.GetString(KeyBaseURL),
		ConfigFile: used,
	}
	if err := throttle.ValidateBandwidth(cfg.Bandwidth); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TokenSource names where a token came from.
type TokenSource string

const (
	TokenFromFlag    TokenSource = "flag"
	TokenFromEnv     TokenSource = "env"
	TokenFromGH      TokenSource = "gh"
	TokenFromNowhere TokenSource = "anonymous"
)

// ghAuthToken asks the GitHub CLI for its stored token.
var ghAuthToken = func() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", errors.New("gh returned an empty token")
	}
	return token, nil
}

// ResolveToken picks the GitHub token: the --auth flag value, then
// GITHUB_TOKEN, then GH_TOKEN, then `gh auth token`. An empty token means
// unauthenticated requests.
func ResolveToken(flagValue string) (string, TokenSource) {
	if flagValue != "" {
		return flagValue, TokenFromFlag
	}
	for _, name := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if token := os.Getenv(name); token != "" {
			return token, TokenFromEnv
		}
	}
	if token, err := ghAuthToken(); err == nil {
		return token, TokenFromGH
	}
	return "", TokenFromNowhere
}
