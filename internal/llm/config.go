// Package llm provides the LLM client abstraction used for applicant
// analysis. Only Gemini is wired today; the provider indirection keeps the
// analysis code free of SDK types.
package llm

// ModelTier represents the capability level requested for a call.
type ModelTier string

const (
	// TierLite is for cheap structured extraction.
	TierLite ModelTier = "lite"
	// TierStandard is for structured reasoning such as skill analysis.
	TierStandard ModelTier = "standard"
)

// Provider identifies an LLM provider.
type Provider string

// ProviderGemini is the Google Gemini provider.
const ProviderGemini Provider = "gemini"

// Config holds the provider and per-tier model selection.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
	}
}

// GetModel returns the model name for a tier, falling back to the standard
// tier when the requested one is not configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	return ""
}
