// Package config loads and validates kitscout configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultDomains is the built-in vendor allow-list used when the run neither
// supplies --domains nor enables discovery. Entries are registrable hosts.
var DefaultDomains = []string{
	"fn-test.com",
	"novusbio.com",
	"krishgen.com",
	"novateinbio.com",
	"rndsystems.com",
	"bio-techne.com",
	"abcam.com",
	"thermofisher.com",
	"sigmaaldrich.com",
	"merckmillipore.com",
	"mybiosource.com",
	"antibodies-online.com",
	"lsbio.com",
	"assaygenie.com",
	"cloud-clone.com",
	"cusabio.com",
	"elabscience.com",
	"biomatik.com",
	"lifespanbio.com",
	"sino-biological.com",
	"raybiotech.com",
	"bosterbio.com",
	"genetex.com",
	"fishersci.com",
	"vwr.com",
}

// DefaultAliases maps canonical analyte names to the alternate labels vendor
// pages use for them.
var DefaultAliases = map[string][]string{
	"CXCL10": {"IP-10", "IP10", "CRG-2", "CRG2", "INTERFERON GAMMA INDUCED PROTEIN 10"},
}

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Match   MatchConfig   `mapstructure:"match"`
	Search  SearchConfig  `mapstructure:"search"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MatchConfig describes the kit panel being searched for and the gates
// applied to classified pages.
type MatchConfig struct {
	Analytes        []string            `mapstructure:"analytes"`
	Species         string              `mapstructure:"species"`
	SampleTerms     []string            `mapstructure:"samples"`
	Domains         []string            `mapstructure:"domains"`
	DiscoverDomains bool                `mapstructure:"discover_domains"`
	Aliases         map[string][]string `mapstructure:"aliases"`
	RequireSpecies  bool                `mapstructure:"require_species"`
	RequireSamples  bool                `mapstructure:"require_samples"`
	RequireElisa    bool                `mapstructure:"require_elisa"`
	EarlyStop       bool                `mapstructure:"early_stop"`
	MaxFetch        int                 `mapstructure:"max_fetch"`
	Workers         int                 `mapstructure:"workers"`
	BudgetSeconds   int                 `mapstructure:"budget_seconds"`
}

// SearchConfig caps result counts per discovery query.
type SearchConfig struct {
	SeedResults int `mapstructure:"seed_results"`
	SiteResults int `mapstructure:"site_results"`
}

// HTTPConfig configures the shared fetch client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// LoggingConfig toggles zap development features and the optional file sink.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
	File        string `mapstructure:"file"`
}

// MetricsConfig controls the optional debug listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load builds a Config from the supplied Viper instance, applying defaults
// first so CLI/env/file values override them.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Match.Analytes = cleanList(cfg.Match.Analytes)
	cfg.Match.SampleTerms = cleanList(cfg.Match.SampleTerms)
	cfg.Match.Domains = NormalizeDomains(cfg.Match.Domains)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every default value on the Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("match.species", "mouse")
	v.SetDefault("match.samples", []string{"serum", "plasma"})
	v.SetDefault("match.aliases", DefaultAliases)
	v.SetDefault("match.max_fetch", 60)
	v.SetDefault("match.workers", 12)
	v.SetDefault("match.budget_seconds", 40)
	v.SetDefault("search.seed_results", 30)
	v.SetDefault("search.site_results", 20)
	v.SetDefault("http.timeout_seconds", 12)
	v.SetDefault("http.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/121 Safari/537.36")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits. The analyte-count
// check is the only user-facing fatal precondition in the system.
func (c Config) Validate() error {
	if len(c.Match.Analytes) < 2 {
		return fmt.Errorf("need >=2 analytes, got %d", len(c.Match.Analytes))
	}
	if c.Match.MaxFetch <= 0 {
		return fmt.Errorf("match.max_fetch must be > 0")
	}
	if c.Match.Workers <= 0 {
		return fmt.Errorf("match.workers must be > 0")
	}
	if c.Match.BudgetSeconds <= 0 {
		return fmt.Errorf("match.budget_seconds must be > 0")
	}
	if c.Search.SeedResults <= 0 {
		return fmt.Errorf("search.seed_results must be > 0")
	}
	if c.Search.SiteResults <= 0 {
		return fmt.Errorf("search.site_results must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent must be set")
	}
	return nil
}

// RequestTimeout returns the per-request fetch timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// Budget returns the global wall-clock budget for a run.
func (c Config) Budget() time.Duration {
	return time.Duration(c.Match.BudgetSeconds) * time.Second
}

// NormalizeDomains lowercases entries and strips a leading "www." so domain
// comparisons work on registrable hosts.
func NormalizeDomains(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(d, "www.")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
