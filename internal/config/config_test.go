package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("match.analytes", []string{"NOX4", "CXCL10"})
	return v
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(baseViper())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Match.Species != "mouse" {
		t.Fatalf("expected default species mouse, got %q", cfg.Match.Species)
	}
	if cfg.Match.MaxFetch != 60 || cfg.Match.Workers != 12 {
		t.Fatalf("expected default fetch/worker limits, got %+v", cfg.Match)
	}
	if got := cfg.RequestTimeout(); got != 12*time.Second {
		t.Fatalf("expected 12s request timeout, got %v", got)
	}
	if got := cfg.Budget(); got != 40*time.Second {
		t.Fatalf("expected 40s budget, got %v", got)
	}
	if len(cfg.Match.Aliases["CXCL10"]) == 0 {
		t.Fatalf("expected default alias table, got %+v", cfg.Match.Aliases)
	}
}

func TestLoadNormalizesListsAndDomains(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("match.analytes", []string{" NOX4 ", "", "CXCL10"})
	v.Set("match.domains", []string{"WWW.Abcam.com", " ", "rndsystems.com"})

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Match.Analytes) != 2 || cfg.Match.Analytes[0] != "NOX4" {
		t.Fatalf("expected trimmed analytes, got %v", cfg.Match.Analytes)
	}
	if len(cfg.Match.Domains) != 2 || cfg.Match.Domains[0] != "abcam.com" {
		t.Fatalf("expected normalized domains, got %v", cfg.Match.Domains)
	}
}

func TestLoadRejectsTooFewAnalytes(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("match.analytes", []string{"NOX4", "  "})

	_, err := Load(v)
	if err == nil || !strings.Contains(err.Error(), ">=2 analytes") {
		t.Fatalf("expected analyte precondition error, got %v", err)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		cfg, err := Load(baseViper())
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero max fetch", func(c *Config) { c.Match.MaxFetch = 0 }, "max_fetch"},
		{"zero workers", func(c *Config) { c.Match.Workers = 0 }, "workers"},
		{"zero budget", func(c *Config) { c.Match.BudgetSeconds = 0 }, "budget_seconds"},
		{"zero seed results", func(c *Config) { c.Search.SeedResults = 0 }, "seed_results"},
		{"zero site results", func(c *Config) { c.Search.SiteResults = 0 }, "site_results"},
		{"zero timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"empty user agent", func(c *Config) { c.HTTP.UserAgent = "" }, "user_agent"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDefaultDomainsAreNormalizedForm(t *testing.T) {
	t.Parallel()

	for _, d := range DefaultDomains {
		if d != strings.ToLower(d) || strings.HasPrefix(d, "www.") {
			t.Fatalf("default domain %q is not in normalized form", d)
		}
	}
}
