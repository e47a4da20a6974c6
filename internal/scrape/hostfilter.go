package scrape

import "strings"

// defaultExcludedHosts are listing and social sites that show up in a
// business's website field but say nothing about the business's own site.
var defaultExcludedHosts = []string{
	"facebook.com",
	"instagram.com",
	"linkedin.com",
	"twitter.com",
	"x.com",
	"yelp.com",
	"google.com",
	"business.site",
}

// HostFilter rejects URLs whose host is, or is a subdomain of, an excluded host.
type HostFilter struct {
	hosts []string
}

// NewHostFilter creates a HostFilter. Falls back to the default list if none
// are provided.
func NewHostFilter(hosts []string) *HostFilter {
	if len(hosts) == 0 {
		hosts = defaultExcludedHosts
	}
	norm := make([]string, 0, len(hosts))
	for _, h := range hosts {
		norm = append(norm, strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h)), "www."))
	}
	return &HostFilter{hosts: norm}
}

// Hosts returns the configured hosts.
func (f *HostFilter) Hosts() []string {
	return f.hosts
}

// IsExcluded reports whether rawURL points at an excluded host. Unparseable
// URLs are excluded.
func (f *HostFilter) IsExcluded(rawURL string) bool {
	d := Domain(rawURL)
	if d == "" {
		return true
	}
	for _, h := range f.hosts {
		if d == h || strings.HasSuffix(d, "."+h) {
			return true
		}
	}
	return false
}
