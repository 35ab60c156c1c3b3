// Package cost computes USD cost attribution for LLM token usage.
package cost

// ModelRate holds per-model token pricing in USD per million tokens.
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Calculator computes costs for extraction API usage.
type Calculator struct {
	rates map[string]ModelRate
}

// NewCalculator creates a Calculator with the given per-model rates.
func NewCalculator(rates map[string]ModelRate) *Calculator {
	return &Calculator{rates: rates}
}

// Claude computes the cost of a Claude call. Unknown models cost 0.
func (c *Calculator) Claude(model string, tokensIn, tokensOut int64) float64 {
	rate, ok := c.rates[model]
	if !ok {
		return 0
	}
	return (float64(tokensIn)/1e6)*rate.Input + (float64(tokensOut)/1e6)*rate.Output
}

// DefaultRates returns the default pricing table.
func DefaultRates() map[string]ModelRate {
	return map[string]ModelRate{
		"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
		"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		"claude-opus-4-6":            {Input: 15.00, Output: 75.00},
	}
}
