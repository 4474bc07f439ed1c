package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// urlPattern accepts http(s) URLs with a domain-like, localhost or IPv4 host,
// an optional port and an optional path.
var urlPattern = regexp.MustCompile(`(?i)^https?://` +
	`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|` +
	`localhost|` +
	`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
	`(?::\d+)?` +
	`(?:/?|[/?]\S+)$`)

// ValidateURL returns an error wrapping ErrInvalidURL if raw is not an acceptable page URL.
func ValidateURL(raw string) error {
	if !urlPattern.MatchString(raw) {
		return ErrInvalidURL
	}
	return nil
}

// Validate checks the request before any network activity.
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.ClientURL) == "" {
		return &ValidationError{Field: "client URL", Err: ErrInvalidInput}
	}
	if err := ValidateURL(r.ClientURL); err != nil {
		return &ValidationError{Field: "client URL", Value: r.ClientURL, Err: err}
	}
	if len(r.CompetitorURLs) < MinCompetitors {
		return &ValidationError{
			Field: "competitor URLs",
			Value: fmt.Sprintf("%d given", len(r.CompetitorURLs)),
			Err:   ErrTooFewCompetitors,
		}
	}

	seen := map[string]bool{r.ClientURL: true}
	for _, u := range r.CompetitorURLs {
		if err := ValidateURL(u); err != nil {
			return &ValidationError{Field: "competitor URL", Value: u, Err: err}
		}
		if seen[u] {
			return &ValidationError{Field: "competitor URL", Value: u, Err: ErrDuplicateURL}
		}
		seen[u] = true
	}
	return nil
}
