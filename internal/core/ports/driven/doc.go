// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PageFetcher: Retrieves the visible text of a web page
//   - Annotator: Extracts entities and sentiment from plain text
//   - LLMService: Ranks candidate entities and writes integration advice
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates for ranking and advice
//   - ReportRenderer: Serialises a FinalState into one report format
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Archive of completed runs. History is unavailable without it.
//   - AIConfigValidator: Connectivity check used when the LLM is reconfigured.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
