// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on domain and the port packages. Fan-out uses
// golang.org/x/sync/errgroup and run IDs come from google/uuid.
package services
