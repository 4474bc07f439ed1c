// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML settings file with dot-notation keys
//   - PromptStore: TOML prompt overrides with built-in defaults
package file
