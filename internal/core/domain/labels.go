package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// CompetitorLabels derives a label for each competitor URL from its domain.
// A leading "www." is dropped. Repeated domains get a numeric suffix in input
// order, so [a.com, b.com, a.com] becomes [comp_a.com, comp_b.com, comp_a.com_2].
func CompetitorLabels(urls []string) []string {
	used := make(map[string]int, len(urls))
	labels := make([]string, len(urls))
	for i, raw := range urls {
		domain := labelDomain(raw)
		used[domain]++
		if n := used[domain]; n > 1 {
			labels[i] = fmt.Sprintf("comp_%s_%d", domain, n)
		} else {
			labels[i] = "comp_" + domain
		}
	}
	return labels
}

func labelDomain(raw string) string {
	host := ""
	if u, err := url.Parse(raw); err == nil {
		host = u.Host
	}
	if host == "" {
		// Bare domains such as "example.com/page" carry no scheme.
		if u, err := url.Parse("//" + raw); err == nil {
			host = u.Host
		}
	}
	return strings.TrimPrefix(host, "www.")
}
