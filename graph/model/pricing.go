package model

// Pricing is a model's cost per million tokens, in USD.
type Pricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// defaultPricing covers the models the adapters default to. Prices move;
// callers with exact billing needs should use SetPricing with their
// contracted rates.
var defaultPricing = map[string]Pricing{
	"gpt-4o":                     {InputPer1M: 2.50, OutputPer1M: 10.00},
	"gpt-4o-mini":                {InputPer1M: 0.15, OutputPer1M: 0.60},
	"claude-3-5-sonnet-20241022": {InputPer1M: 3.00, OutputPer1M: 15.00},
	"claude-3-5-haiku-20241022":  {InputPer1M: 0.80, OutputPer1M: 4.00},
	"gemini-2.5-flash":           {InputPer1M: 0.30, OutputPer1M: 2.50},
	"gemini-1.5-pro":             {InputPer1M: 1.25, OutputPer1M: 5.00},
}

// SetPricing registers or overrides the pricing for a model name. Not safe
// to call concurrently with Cost; register rates during setup.
func SetPricing(modelName string, p Pricing) {
	defaultPricing[modelName] = p
}

// Cost estimates the USD cost of the given usage for a model. The second
// return is false when the model's pricing is unknown.
func Cost(modelName string, u Usage) (float64, bool) {
	p, ok := defaultPricing[modelName]
	if !ok {
		return 0, false
	}
	cost := float64(u.InputTokens)/1e6*p.InputPer1M + float64(u.OutputTokens)/1e6*p.OutputPer1M
	return cost, true
}
