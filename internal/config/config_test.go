package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// isolate runs the test in an empty directory with no labelsync variables
// set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, name := range []string{
		ConfigPathEnv, "LABELSYNC_OWNER", "LABELSYNC_REPOSITORY", "LABELSYNC_LABELS_FILE",
		"LABELSYNC_BANDWIDTH", "LABELSYNC_JOURNAL", "LABELSYNC_BASE_URL",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String(KeyOwner, "", "")
	fs.String(KeyRepository, "", "")
	fs.String(KeyLabelsFile, "", "")
	fs.Int(KeyBandwidth, 6, "")
	fs.String(KeyJournal, "", "")
	fs.String(KeyBaseURL, "", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bandwidth != 6 {
		t.Errorf("Bandwidth = %d, want 6", cfg.Bandwidth)
	}
	if cfg.Owner != "" || cfg.ConfigFile != "" {
		t.Errorf("cfg = %+v, want empty owner and no config file", cfg)
	}
}

func TestLoadReadsDefaultConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultConfigFile), `
owner: acme
repository: widgets
labels-file: labels.yaml
bandwidth: 3
`)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Owner != "acme" || cfg.Repository != "widgets" {
		t.Errorf("owner/repository = %q/%q", cfg.Owner, cfg.Repository)
	}
	if cfg.LabelsFile != "labels.yaml" {
		t.Errorf("LabelsFile = %q, want labels.yaml", cfg.LabelsFile)
	}
	if cfg.Bandwidth != 3 {
		t.Errorf("Bandwidth = %d, want 3", cfg.Bandwidth)
	}
	if cfg.ConfigFile != DefaultConfigFile {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, DefaultConfigFile)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "owner: from-file\nrepository: from-file\nbandwidth: 2\n")
	t.Setenv("LABELSYNC_OWNER", "from-env")
	t.Setenv("LABELSYNC_BANDWIDTH", "4")

	fs := newFlags()
	if err := fs.Set(KeyOwner, "from-flag"); err != nil {
		t.Fatalf("setting flag: %v", err)
	}

	cfg, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Owner != "from-flag" {
		t.Errorf("Owner = %q, want from-flag", cfg.Owner)
	}
	if cfg.Bandwidth != 4 {
		t.Errorf("Bandwidth = %d, want 4 (env beats file)", cfg.Bandwidth)
	}
	if cfg.Repository != "from-file" {
		t.Errorf("Repository = %q, want from-file", cfg.Repository)
	}
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "elsewhere.yaml")
	writeFile(t, path, "owner: env-path\n")
	t.Setenv(ConfigPathEnv, path)

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Owner != "env-path" {
		t.Errorf("Owner = %q, want env-path", cfg.Owner)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	if _, err := Load(filepath.Join(dir, "missing.yaml"), nil); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadRejectsZeroBandwidth(t *testing.T) {
	isolate(t)
	t.Setenv("LABELSYNC_BANDWIDTH", "0")

	if _, err := Load("", nil); err == nil {
		t.Error("expected error for zero bandwidth")
	}
}

func TestLoadWithoutFileIgnoresConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DefaultConfigFile), "owner: from-file\n")
	t.Setenv("LABELSYNC_REPOSITORY", "from-env")

	cfg, err := LoadWithoutFile(nil)
	if err != nil {
		t.Fatalf("LoadWithoutFile: %v", err)
	}
	if cfg.Owner != "" {
		t.Errorf("Owner = %q, want empty", cfg.Owner)
	}
	if cfg.Repository != "from-env" {
		t.Errorf("Repository = %q, want from-env", cfg.Repository)
	}
}

func stubGH(t *testing.T, token string, err error) {
	t.Helper()
	orig := ghAuthToken
	ghAuthToken = func() (string, error) { return token, err }
	t.Cleanup(func() { ghAuthToken = orig })
}

func TestResolveToken(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		githubEnv  string
		ghEnv      string
		ghToken    string
		ghErr      error
		wantToken  string
		wantSource TokenSource
	}{
		{"flag wins", "flag-token", "env-token", "", "gh-token", nil, "flag-token", TokenFromFlag},
		{"GITHUB_TOKEN", "", "env-token", "other", "gh-token", nil, "env-token", TokenFromEnv},
		{"GH_TOKEN", "", "", "gh-env", "gh-token", nil, "gh-env", TokenFromEnv},
		{"gh cli", "", "", "", "gh-token", nil, "gh-token", TokenFromGH},
		{"anonymous", "", "", "", "", errors.New("not logged in"), "", TokenFromNowhere},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GITHUB_TOKEN", tt.githubEnv)
			t.Setenv("GH_TOKEN", tt.ghEnv)
			stubGH(t, tt.ghToken, tt.ghErr)

			token, source := ResolveToken(tt.flag)
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
		})
	}
}
