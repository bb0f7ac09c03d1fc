package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/yungbote/fairprice-backend/internal/domain"
)

const narrativeSystem = "You are an economic analyst for a citizen price monitoring system. " +
	"Write in simple English that ordinary shoppers understand. " +
	"Do not use bullet points; write two or three flowing sentences."

// NarrativePrompt builds the system and user prompts sent to the text
// generator for a scored sample.
func NarrativePrompt(sample domain.PriceSample, cls domain.Classification) (system, user string) {
	var b strings.Builder
	switch {
	case cls.ExpectedPrice == nil:
		fmt.Fprintf(&b, "This is the first %s price reported in %s, so there is no baseline yet.\n", sample.Item, sample.Market)
		b.WriteString("Briefly thank the reporter and explain that comparisons become available as more prices are collected.\n")
	case cls.Tier == domain.TierNormal:
		b.WriteString("A price submission was classified as NORMAL (within the expected range).\n")
		b.WriteString("Confirm the price is fair and in line with local market conditions. Keep the tone reassuring.\n")
	case cls.Tier == domain.TierHigh:
		b.WriteString("A price submission was classified as HIGH (moderately away from the baseline).\n")
		b.WriteString("Suggest plausible causes such as seasonal demand, minor supply changes or vendor pricing. Be factual, not alarmist.\n")
	default:
		b.WriteString("A price submission was classified as UNUSUAL (far from the baseline).\n")
		b.WriteString("Suggest plausible causes such as supply disruptions, demand spikes, transport costs, shortages or manipulation.\n")
	}
	fmt.Fprintf(&b, "Item: %s\n", sample.Item)
	fmt.Fprintf(&b, "Submitted price: %.2f", sample.Price)
	if sample.Unit != "" {
		fmt.Fprintf(&b, " per %s", sample.Unit)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Market: %s\n", sample.Market)
	if cls.ExpectedPrice != nil {
		fmt.Fprintf(&b, "Baseline average: %.2f\n", *cls.ExpectedPrice)
	}
	if cls.Deviation != nil {
		fmt.Fprintf(&b, "Difference from baseline: %+.1f%%\n", *cls.Deviation)
	}
	if cls.ZScore != nil {
		fmt.Fprintf(&b, "Z-score: %.2f\n", *cls.ZScore)
	}
	return narrativeSystem, b.String()
}

// FallbackNarrative is the deterministic text used whenever the generator is
// unavailable. It never returns an empty string.
func FallbackNarrative(sample domain.PriceSample, cls domain.Classification) string {
	if cls.ExpectedPrice == nil || cls.Deviation == nil {
		return fmt.Sprintf("This is the first %s price submission in %s. As more data is collected, "+
			"market comparisons and pricing trends will become available.", sample.Item, sample.Market)
	}
	expected := *cls.ExpectedPrice
	dev := *cls.Deviation
	dir := "higher"
	if dev < 0 {
		dir = "lower"
	}
	switch cls.Tier {
	case domain.TierNormal:
		return fmt.Sprintf("This %s price of %.2f is within the normal market range for %s. "+
			"It aligns with the current baseline of %.2f, indicating stable market conditions.",
			sample.Item, sample.Price, sample.Market, expected)
	case domain.TierHigh:
		return fmt.Sprintf("This %s price is %.1f%% %s than the baseline of %.2f in %s. "+
			"This moderate difference may be due to seasonal demand, minor supply adjustments, or local market variations.",
			sample.Item, math.Abs(dev), dir, expected, sample.Market)
	default:
		return fmt.Sprintf("This %s price is %.1f%% %s than the baseline of %.2f in %s. "+
			"A difference this large may indicate supply chain issues, sudden demand changes, or other market disruptions. "+
			"Citizens are advised to verify prices with multiple vendors.",
			sample.Item, math.Abs(dev), dir, expected, sample.Market)
	}
}
