package observability

import (
	"strconv"

	"github.com/yksanjo/soundraw-podcast-music/internal/llm"
)

// Pricing constants
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	defaultPricingModel = "deepseek-chat"
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for all models the mapper can be pointed at
var PricingTable = map[string]ModelPricing{
	// DeepSeek
	"deepseek-chat":     {InputPricePer1K: 0.00027, OutputPricePer1K: 0.0011},
	"deepseek-reasoner": {InputPricePer1K: 0.00055, OutputPricePer1K: 0.00219},
	// OpenAI
	"gpt-4o":      {InputPricePer1K: 0.0025, OutputPricePer1K: 0.01},
	"gpt-4o-mini": {InputPricePer1K: 0.00015, OutputPricePer1K: 0.0006},
	// Gemini
	"gemini-2.5-flash": {InputPricePer1K: 0.0003, OutputPricePer1K: 0.0025},
	"gemini-2.5-pro":   {InputPricePer1K: 0.00125, OutputPricePer1K: 0.01},
}

// CalculateCost calculates the cost in USD of one completion
func CalculateCost(model string, usage llm.Usage) float64 {
	pricing, exists := PricingTable[model]
	if !exists {
		pricing = PricingTable[defaultPricingModel]
	}

	inputCost := (float64(usage.InputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(usage.OutputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
