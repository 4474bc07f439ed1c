package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return the built-in default
	// or an error when the name is unknown.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptSelectionSystem is the system message for entity ranking. No placeholders.
	PromptSelectionSystem = "selection_system"

	// PromptSelection ranks missing entities.
	// Placeholders: %[1]d shortlist size, %[2]s candidate list.
	PromptSelection = "selection"

	// PromptAdviceSystem is the system message for integration advice. No placeholders.
	PromptAdviceSystem = "advice_system"

	// PromptAdvice asks for integration opportunities for one entity.
	// Placeholders: %[1]s entity name, %[2]s relevance score, %[3]s reasoning,
	// %[4]s client page content.
	PromptAdvice = "advice"
)
