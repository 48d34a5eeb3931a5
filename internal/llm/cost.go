package llm

import "github.com/langlang056/pdf-for-college/internal/config"

// Approximate USD cost per analyzed page.
var pageCost = map[string]float64{
	config.ProviderOpenAI: 0.03,
	config.ProviderClaude: 0.025,
	config.ProviderGemini: 0.002,
}

const defaultPageCost = 0.02

// EstimateCost returns a rough USD estimate for analyzing pages pages.
func EstimateCost(provider string, pages int) float64 {
	if pages <= 0 {
		return 0
	}
	rate, ok := pageCost[provider]
	if !ok {
		rate = defaultPageCost
	}
	return rate * float64(pages)
}
