package pipeline

import (
	"net/url"
	"strings"
)

// DomainSet is an allow-list of registrable vendor hosts. A URL passes when
// its vendor equals an entry or is a strict subdomain of one. A nil set
// allows everything (unrestricted / discovery-fallback mode).
type DomainSet struct {
	member  map[string]struct{}
	ordered []string
}

// NewDomainSet builds a set from raw patterns, normalizing each to a
// lowercased host without a leading "www.". Returns nil when no usable
// entries remain.
func NewDomainSet(patterns []string) *DomainSet {
	set := &DomainSet{member: make(map[string]struct{})}
	for _, raw := range patterns {
		value := strings.ToLower(strings.TrimSpace(raw))
		value = strings.TrimPrefix(value, "www.")
		if value == "" {
			continue
		}
		if _, dup := set.member[value]; dup {
			continue
		}
		set.member[value] = struct{}{}
		set.ordered = append(set.ordered, value)
	}
	if len(set.ordered) == 0 {
		return nil
	}
	return set
}

// Allows reports whether the vendor matches the set. Nil sets allow all.
func (s *DomainSet) Allows(vendor string) bool {
	if s == nil {
		return true
	}
	vendor = strings.ToLower(strings.TrimSpace(vendor))
	if vendor == "" {
		return false
	}
	if _, ok := s.member[vendor]; ok {
		return true
	}
	for _, d := range s.ordered {
		if strings.HasSuffix(vendor, "."+d) {
			return true
		}
	}
	return false
}

// Domains returns the entries in insertion order, for site-scoped queries.
func (s *DomainSet) Domains() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.ordered...)
}

// Size returns the number of entries.
func (s *DomainSet) Size() int {
	if s == nil {
		return 0
	}
	return len(s.ordered)
}

// VendorOf derives the normalized registrable host of a URL: lowercased, with
// a leading "www." stripped. Returns "" for unparseable input.
func VendorOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// AcceptableURL reports whether the URL carries an http or https scheme.
// Everything else is rejected before it can reach the fetch pool.
func AcceptableURL(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}
