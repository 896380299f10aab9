package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	Setup(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Format:        "markdown",
		MaxNameLength: 80,
		Workers:       4,
		Timeout:       30 * time.Second,
		UserAgent:     Defaults["user_agent"].(string),
		BaseURL:       "https://arxiv.org/html/",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ARXIV2MD_FORMAT", "json")
	t.Setenv("ARXIV2MD_CHUNK_SIZE", "256")
	t.Setenv("ARXIV2MD_TIMEOUT", "5s")

	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "json" || cfg.ChunkSize != 256 || cfg.Timeout != 5*time.Second {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".arxiv2md.yaml")
	if err := os.WriteFile(path, []byte("format: pdf\nworkers: 2\noutput_dir: papers\n"), 0644); err != nil {
		t.Fatal(err)
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "pdf" || cfg.Workers != 2 || cfg.OutputDir != "papers" {
		t.Errorf("file not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
		want []string
	}{
		{"bad format", func(c *Config) { c.Format = "docx" }, []string{"format must be one of [markdown json pdf]"}},
		{"bad url", func(c *Config) { c.BaseURL = "not a url" }, []string{"base_url must be a valid URL"}},
		{"several", func(c *Config) { c.Workers = 0; c.MaxNameLength = 1000 }, []string{"workers must be at least 1", "max_name_length must be at most 255"}},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, []string{"timeout must be greater than 0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(newViper())
			if err != nil {
				t.Fatal(err)
			}
			tt.edit(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}
