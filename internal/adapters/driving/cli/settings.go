package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/gapscope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gapscope/internal/core/domain"
)

// secretKeys are read without echo when set interactively.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
var secretKeys = map[string]bool{
	"llm.api_key":        true,
	"annotation.api_key": true,
}

var promptsForce bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, the annotation service, page fetching,
analysis tuning and report output.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set one setting by key. An empty value restores the default.

API keys given without a value are read from the terminal without echo.

Examples:
  gapscope settings set llm.provider anthropic
  gapscope settings set analysis.shortlist_size 15
  gapscope settings set output.formats markdown,html
  gapscope settings set llm.api_key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Interactively choose the LLM provider, model and API key, then check connectivity.`,
	RunE:  runSettingsLLM,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that an analysis can run with the current settings",
	Long: `Check that the settings are complete, that the LLM provider answers and that
the annotation credentials resolve.`,
	Args: cobra.NoArgs,
	RunE: runSettingsCheck,
}

var settingsPromptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Write the built-in prompts to prompts.toml for editing",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPrompts,
}

func init() {
	settingsPromptsCmd.Flags().BoolVar(&promptsForce, "force", false, "overwrite an existing prompts.toml")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsPromptsCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" || settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", valueOrDefault(settings.LLM.BaseURL))
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskedOrUnset(settings.LLM.APIKey))
	}
	cmd.Printf("  Requests/min: %s\n", limitText(settings.LLM.RequestsPerMinute))
	cmd.Printf("  Status: %s\n", configuredText(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Annotation]")
	if settings.Annotation.CredentialsFile != "" {
		cmd.Printf("  Credentials file: %s\n", settings.Annotation.CredentialsFile)
	}
	if settings.Annotation.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Annotation.APIKey))
	}
	cmd.Printf("  Requests/min: %s\n", limitText(settings.Annotation.RequestsPerMinute))
	cmd.Printf("  Status: %s\n", configuredText(settings.Annotation.IsConfigured()))
	cmd.Println()

	cmd.Println("[Fetch]")
	cmd.Printf("  Timeout: %s\n", settings.Fetch.Timeout)
	cmd.Printf("  Extractor: %s\n", settings.Fetch.Extractor)
	cmd.Printf("  User agent: %s\n", valueOrDefault(settings.Fetch.UserAgent))
	cmd.Println()

	cmd.Println("[Analysis]")
	cmd.Printf("  Keyword match: %s\n", settings.Analysis.KeywordMatch)
	cmd.Printf("  Shortlist size: %d\n", settings.Analysis.ShortlistSize)
	cmd.Printf("  Advice concurrency: %d\n", settings.Analysis.AdviceConcurrency)
	cmd.Println()

	cmd.Println("[Output]")
	cmd.Printf("  Directory: %s\n", settings.Output.Dir)
	formats := make([]string, len(settings.Output.Formats))
	for i, f := range settings.Output.Formats {
		formats[i] = string(f)
	}
	cmd.Printf("  Formats: %s\n", strings.Join(formats, ", "))
	cmd.Println()

	cmd.Println("[Archive]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.Archive.Enabled))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'gapscope settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case secretKeys[key]:
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword()
		cmd.Println()
	default:
		return fmt.Errorf("missing value for %s (known keys: %s)", key, strings.Join(settingsService.Keys(), ", "))
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	switch {
	case value == "":
		cmd.Printf("%s reset to default\n", key)
	case secretKeys[key]:
		cmd.Printf("%s set to %s\n", key, maskAPIKey(value))
	default:
		cmd.Printf("%s set to %s\n", key, value)
	}
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func runSettingsPrompts(cmd *cobra.Command, _ []string) error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	prompts, err := file.NewPromptStore(dir)
	if err != nil {
		return err
	}
	if err := prompts.WriteDefaults(promptsForce); err != nil {
		return fmt.Errorf("failed to write prompts: %w", err)
	}
	cmd.Printf("Prompts written to %s\n", prompts.Path())
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// An empty key falls back to the provider's environment variable.
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key (empty to use the environment): ")
		apiKey = readPassword()
		cmd.Println()
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	failed := false
	report := func(name string, err error) {
		if err != nil {
			failed = true
			cmd.Printf("  %-12s FAILED: %v\n", name+":", err)
			return
		}
		cmd.Printf("  %-12s OK\n", name+":")
	}

	if err := settingsService.Validate(); err != nil {
		report("Settings", err)
		return errors.New("configuration check failed")
	}
	report("Settings", nil)
	report("LLM", settingsService.ValidateLLMConfig())
	report("Annotation", settingsService.ValidateAnnotationConfig())

	if failed {
		return errors.New("configuration check failed")
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func maskedOrUnset(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func valueOrDefault(v string) string {
	if v == "" {
		return "(default)"
	}
	return v
}

func limitText(rpm int) string {
	if rpm <= 0 {
		return "unlimited"
	}
	return strconv.Itoa(rpm)
}

func configuredText(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
