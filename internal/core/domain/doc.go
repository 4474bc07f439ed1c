// Package domain defines the core business entities for gapscope.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentAnalysis: Entities, keyword metrics and sentiment for one page
//   - ComparisonResult: Entities and keywords competitors cover but the client does not
//   - EntitySelection: A shortlisted gap with relevance and rationale
//   - EntityRecommendation: Integration opportunities for one selected entity
//   - FinalState: The assembled, read-only result of one analysis run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
