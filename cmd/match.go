package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kitscout/kitscout/internal/clock/system"
	"github.com/kitscout/kitscout/internal/config"
	"github.com/kitscout/kitscout/internal/fetch"
	"github.com/kitscout/kitscout/internal/id/uuid"
	"github.com/kitscout/kitscout/internal/logging"
	"github.com/kitscout/kitscout/internal/metrics"
	"github.com/kitscout/kitscout/internal/pipeline"
	"github.com/kitscout/kitscout/internal/report"
	"github.com/kitscout/kitscout/internal/search"
)

func newMatchCmd(v *viper.Viper) *cobra.Command {
	var showProgress bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Search vendors for kits covering every requested analyte.",
		Long: `match runs the full pipeline: seed searches, optional domain discovery,
bounded concurrent page fetches, and per-vendor aggregation. It prints the
vendors whose catalog covers every analyte in the panel.`,
		Example: `  kitscout match --analytes NOX4,CXCL10
  kitscout match --analytes NOX4,CXCL10 --species rat --sample serum
  kitscout match --analytes NOX4,CXCL10 --discover-domains --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatch(cmd, v, showProgress)
		},
	}

	cmd.Flags().StringSlice("analytes", nil, "analyte names to cover (at least two)")
	cmd.Flags().String("species", "mouse", "target species")
	cmd.Flags().StringSlice("sample", []string{"serum", "plasma"}, "acceptable sample types")
	cmd.Flags().StringSlice("domains", nil, "vendor domains to restrict the search to")
	cmd.Flags().Bool("discover-domains", false, "derive the vendor list from broad search results")
	cmd.Flags().Int("seed-results", 30, "results requested per broad seed query")
	cmd.Flags().Int("site-results", 20, "results requested per site-scoped query")
	cmd.Flags().Int("max-fetch", 60, "maximum candidate pages to fetch")
	cmd.Flags().Int("workers", 12, "concurrent fetch workers")
	cmd.Flags().Int("timeout", 12, "per-request timeout in seconds")
	cmd.Flags().Int("budget", 40, "wall-clock budget for the whole run in seconds")
	cmd.Flags().String("ua", "", "override the HTTP User-Agent")
	cmd.Flags().Bool("require-species", false, "drop hits whose page never mentions the species")
	cmd.Flags().Bool("require-samples", false, "drop hits whose page never mentions a sample type")
	cmd.Flags().Bool("require-elisa", false, "drop hits whose page never mentions ELISA")
	cmd.Flags().Bool("early-stop", false, "stop as soon as one vendor covers every analyte")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "show a fetch progress bar")

	mustBind(v, "match.analytes", cmd.Flags().Lookup("analytes"))
	mustBind(v, "match.species", cmd.Flags().Lookup("species"))
	mustBind(v, "match.samples", cmd.Flags().Lookup("sample"))
	mustBind(v, "match.domains", cmd.Flags().Lookup("domains"))
	mustBind(v, "match.discover_domains", cmd.Flags().Lookup("discover-domains"))
	mustBind(v, "match.max_fetch", cmd.Flags().Lookup("max-fetch"))
	mustBind(v, "match.workers", cmd.Flags().Lookup("workers"))
	mustBind(v, "match.budget_seconds", cmd.Flags().Lookup("budget"))
	mustBind(v, "match.require_species", cmd.Flags().Lookup("require-species"))
	mustBind(v, "match.require_samples", cmd.Flags().Lookup("require-samples"))
	mustBind(v, "match.require_elisa", cmd.Flags().Lookup("require-elisa"))
	mustBind(v, "match.early_stop", cmd.Flags().Lookup("early-stop"))
	mustBind(v, "search.seed_results", cmd.Flags().Lookup("seed-results"))
	mustBind(v, "search.site_results", cmd.Flags().Lookup("site-results"))
	mustBind(v, "http.timeout_seconds", cmd.Flags().Lookup("timeout"))
	mustBind(v, "metrics.addr", cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

func runMatch(cmd *cobra.Command, v *viper.Viper, showProgress bool) error {
	if ua, _ := cmd.Flags().GetString("ua"); ua != "" {
		v.Set("http.user_agent", ua)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
		FilePath:    cfg.Logging.File,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	runID, err := uuid.New().NewID()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	logger = logger.With(zap.String("run_id", runID))

	domains := cfg.Match.Domains
	if len(domains) == 0 && !cfg.Match.DiscoverDomains {
		domains = config.NormalizeDomains(config.DefaultDomains)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	fetcher, err := fetch.NewFetcher(fetch.Config{
		UserAgent:      cfg.HTTP.UserAgent,
		RequestTimeout: cfg.RequestTimeout(),
		Concurrency:    cfg.Match.Workers,
	}, logger)
	if err != nil {
		return fmt.Errorf("build fetcher: %w", err)
	}
	searcher := search.NewDuckDuckGo(fetcher.Client(), cfg.HTTP.UserAgent, logger)
	budget := pipeline.NewBudget(system.New(), cfg.Budget())

	controller, err := pipeline.NewController(pipeline.Options{
		Analytes:        cfg.Match.Analytes,
		Species:         cfg.Match.Species,
		SampleTerms:     cfg.Match.SampleTerms,
		Aliases:         cfg.Match.Aliases,
		Domains:         domains,
		DiscoverDomains: cfg.Match.DiscoverDomains,
		SeedResults:     cfg.Search.SeedResults,
		SiteResults:     cfg.Search.SiteResults,
		MaxFetch:        cfg.Match.MaxFetch,
		Workers:         cfg.Match.Workers,
		Gates: pipeline.Gates{
			RequireSpecies: cfg.Match.RequireSpecies,
			RequireSamples: cfg.Match.RequireSamples,
			RequireElisa:   cfg.Match.RequireElisa,
		},
		EarlyStop: cfg.Match.EarlyStop,
	}, searcher, fetcher, budget, logger)
	if err != nil {
		return err
	}

	if showProgress {
		var bar *progressbar.ProgressBar
		controller.OnResult = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("fetching"),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}
	}

	logger.Info("starting match run",
		zap.Strings("analytes", cfg.Match.Analytes),
		zap.String("species", cfg.Match.Species),
		zap.Int("domains", len(domains)),
		zap.Bool("discover_domains", cfg.Match.DiscoverDomains),
		zap.Duration("budget", cfg.Budget()),
	)

	matrix, err := controller.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), report.Render(matrix, cfg.Match.Analytes))
	return nil
}
