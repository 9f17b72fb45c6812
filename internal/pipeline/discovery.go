package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kitscout/kitscout/internal/metrics"
	"github.com/kitscout/kitscout/internal/search"
)

// DiscoverDomains derives a vendor allow-set from broad search results: one
// query per analyte, vendors of every usable result URL collected into the
// set. It returns nil (no restriction) when every query fails or yields
// nothing, so a bad search day degrades to an open crawl instead of an empty
// run.
func DiscoverDomains(
	ctx context.Context,
	provider search.Provider,
	analytes []string,
	species string,
	seedResults int,
	budget *Budget,
	logger *zap.Logger,
) *DomainSet {
	var domains []string
	for _, analyte := range analytes {
		if budget.Expired() {
			logger.Warn("budget expired during domain discovery",
				zap.String("analyte", analyte),
			)
			break
		}
		query := fmt.Sprintf("%s %s ELISA kit", species, analyte)
		metrics.SearchQueryIssued()
		results, err := provider.Search(ctx, query, seedResults)
		if err != nil {
			logger.Warn("discovery search failed",
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}
		for _, r := range results {
			if !AcceptableURL(r.URL) {
				continue
			}
			if vendor := VendorOf(r.URL); vendor != "" {
				domains = append(domains, vendor)
			}
		}
	}

	set := NewDomainSet(domains)
	if set == nil {
		logger.Info("domain discovery produced no vendors, crawling unrestricted")
		return nil
	}
	logger.Info("discovered vendor domains", zap.Int("count", set.Size()))
	return set
}
