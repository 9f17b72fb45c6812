package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kitscout/kitscout/internal/fetch"
)

// Classifier detects which requested analyte (if any) a page advertises and
// evaluates the species/sample/assay predicates. Patterns are compiled once
// per run; the classifier is immutable and safe for concurrent use.
type Classifier struct {
	analytes    []string
	species     string
	sampleTerms []string
	gates       Gates
	exact       []analytePattern
	aliases     []analytePattern
}

type analytePattern struct {
	analyte string
	re      *regexp.Regexp
}

// NewClassifier compiles whole-word patterns for the requested analytes and
// their aliases. Alias entries for analytes outside the requested set are
// ignored. Analyte declaration order decides match precedence.
func NewClassifier(
	analytes []string,
	aliases map[string][]string,
	species string,
	sampleTerms []string,
	gates Gates,
) (*Classifier, error) {
	c := &Classifier{
		analytes:    append([]string(nil), analytes...),
		species:     species,
		sampleTerms: append([]string(nil), sampleTerms...),
		gates:       gates,
	}
	for _, a := range analytes {
		re, err := wholeWord(a)
		if err != nil {
			return nil, fmt.Errorf("compile analyte pattern %q: %w", a, err)
		}
		c.exact = append(c.exact, analytePattern{analyte: a, re: re})
		for _, alias := range aliases[a] {
			re, err := wholeWord(alias)
			if err != nil {
				return nil, fmt.Errorf("compile alias pattern %q: %w", alias, err)
			}
			c.aliases = append(c.aliases, analytePattern{analyte: a, re: re})
		}
	}
	return c, nil
}

// Classify builds a PageHit for the page, or reports false when no requested
// analyte is mentioned or an enabled gate rejects the hit. A page matches at
// most one analyte: exact names win over aliases, earlier analytes over later.
func (c *Classifier) Classify(page fetch.Page) (PageHit, bool) {
	blob := strings.ToUpper(page.Title + " " + page.Text + " " + page.FinalURL)
	analyte := c.detectAnalyte(blob)
	if analyte == "" {
		return PageHit{}, false
	}

	body := strings.ToLower(page.Text)
	hit := PageHit{
		FinalURL:     page.FinalURL,
		Vendor:       VendorOf(page.FinalURL),
		Analyte:      analyte,
		Title:        page.Title,
		SpeciesFound: SpeciesMatch(body, c.species),
		SamplesFound: SamplesMatch(body, c.sampleTerms),
		HasElisa:     strings.Contains(body, "elisa"),
	}

	switch {
	case c.gates.RequireSpecies && !hit.SpeciesFound:
		return PageHit{}, false
	case c.gates.RequireSamples && !hit.SamplesFound:
		return PageHit{}, false
	case c.gates.RequireElisa && !hit.HasElisa:
		return PageHit{}, false
	}
	return hit, true
}

func (c *Classifier) detectAnalyte(blob string) string {
	for _, p := range c.exact {
		if p.re.MatchString(blob) {
			return p.analyte
		}
	}
	for _, p := range c.aliases {
		if p.re.MatchString(blob) {
			return p.analyte
		}
	}
	return ""
}

// SpeciesMatch reports whether the species appears in the text. An empty
// species always matches. "mouse" additionally matches the literals
// "mus musculus" and "mice".
func SpeciesMatch(text, species string) bool {
	s := strings.ToLower(strings.TrimSpace(species))
	if s == "" {
		return true
	}
	t := strings.ToLower(text)
	if strings.Contains(t, s) {
		return true
	}
	return s == "mouse" && (strings.Contains(t, "mus musculus") || strings.Contains(t, "mice"))
}

// SamplesMatch reports whether any sample term appears in the text. An empty
// term list always matches.
func SamplesMatch(text string, sampleTerms []string) bool {
	if len(sampleTerms) == 0 {
		return true
	}
	t := strings.ToLower(text)
	for _, term := range sampleTerms {
		if strings.Contains(t, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func wholeWord(token string) (*regexp.Regexp, error) {
	return regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToUpper(token)) + `\b`)
}
