package observability

import (
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/wordexpander/internal/llm"
)

// Pricing constants, USD per 1K tokens
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	gemini25FlashInputPrice  = 0.0003
	gemini25FlashOutputPrice = 0.0025

	gemini25FlashLiteInputPrice  = 0.0001
	gemini25FlashLiteOutputPrice = 0.0004

	gemini25ProInputPrice  = 0.00125
	gemini25ProOutputPrice = 0.01

	gpt4oInputPrice  = 0.0025
	gpt4oOutputPrice = 0.01

	gpt4oMiniInputPrice  = 0.00015
	gpt4oMiniOutputPrice = 0.0006
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable contains pricing for known models
var PricingTable = map[string]ModelPricing{
	"gemini-2.5-flash": {
		InputPricePer1K:  gemini25FlashInputPrice,
		OutputPricePer1K: gemini25FlashOutputPrice,
	},
	"gemini-2.5-flash-lite": {
		InputPricePer1K:  gemini25FlashLiteInputPrice,
		OutputPricePer1K: gemini25FlashLiteOutputPrice,
	},
	"gemini-2.5-pro": {
		InputPricePer1K:  gemini25ProInputPrice,
		OutputPricePer1K: gemini25ProOutputPrice,
	},
	"gpt-4o": {
		InputPricePer1K:  gpt4oInputPrice,
		OutputPricePer1K: gpt4oOutputPrice,
	},
	"gpt-4o-mini": {
		InputPricePer1K:  gpt4oMiniInputPrice,
		OutputPricePer1K: gpt4oMiniOutputPrice,
	},
}

// LookupPricing finds the pricing for model, falling back to the longest
// table entry the model name starts with (dated snapshots like gpt-4o-2024-08-06).
func LookupPricing(model string) (ModelPricing, bool) {
	if pricing, ok := PricingTable[model]; ok {
		return pricing, true
	}

	best := ""
	for name := range PricingTable {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return ModelPricing{}, false
	}
	return PricingTable[best], true
}

// CalculateCost calculates the cost in USD of one generation.
// Unknown models cost zero rather than borrowing another model's rates.
func CalculateCost(model string, usage llm.Usage) float64 {
	pricing, ok := LookupPricing(model)
	if !ok {
		return 0
	}

	inputCost := (float64(usage.InputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(usage.OutputTokens) / tokensPerKilo) * pricing.OutputPricePer1K

	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
