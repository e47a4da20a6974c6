package model

import "strings"

// LeadSource identifies which discovery path produced a lead.
type LeadSource string

const (
	SourceGooglePlaces  LeadSource = "google_places"
	SourceDirectoryStub LeadSource = "directory_stub"
	SourceAPI           LeadSource = "api"
)

// UnknownBusiness is the placeholder name for leads discovered without one.
const UnknownBusiness = "Unknown Business"

// Lead is one discovered business.
type Lead struct {
	Name    string     `json:"name"`
	Website string     `json:"website,omitempty"`
	Phone   string     `json:"phone,omitempty"`
	Address string     `json:"address,omitempty"`
	City    string     `json:"city,omitempty"`
	Email   string     `json:"email,omitempty"`
	Source  LeadSource `json:"source"`
	Score   *int       `json:"score,omitempty"`
}

// NewLead builds a lead, substituting the placeholder for a blank name.
func NewLead(name string, source LeadSource) Lead {
	name = strings.TrimSpace(name)
	if name == "" {
		name = UnknownBusiness
	}
	return Lead{Name: name, Source: source}
}

// HasWebsite reports whether the lead carries a non-blank website.
func (l Lead) HasWebsite() bool {
	return strings.TrimSpace(l.Website) != ""
}

// Scored reports whether the scorer has assigned a score.
func (l Lead) Scored() bool {
	return l.Score != nil
}

// WithScore returns a copy of the lead carrying score.
func (l Lead) WithScore(score int) Lead {
	s := score
	l.Score = &s
	return l
}

// CityFromGeo returns the part of a "City, ST" geography before the comma.
func CityFromGeo(geo string) string {
	city, _, _ := strings.Cut(geo, ",")
	return strings.TrimSpace(city)
}
