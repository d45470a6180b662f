package pipeline

import (
	"fmt"
	"strings"

	"github.com/OptionsTradingUni/aipredixt/internal/models"
)

const maxKeyFactors = 4

// buildNarrative renders the bundle into operator-facing prose. Derived text
// only; every number here already exists in the priced catalogue.
func buildNarrative(b *analysisBundle) models.Narrative {
	primary := b.primary()
	fixture := b.quote.Fixture

	headline := fmt.Sprintf("%s vs %s: %s %s @ %.2f",
		fixture.HomeTeam, fixture.AwayTeam,
		categoryLabel(primary.Category), primary.Selection, primary.Odds)

	summary := fmt.Sprintf(
		"Model prices %s at %.1f%% against an implied %.1f%% from %s, a %+.1f point edge at %.0f confidence.",
		primary.Selection, primary.CalculatedProb, primary.ImpliedProb,
		b.quote.Bookmaker, primary.Edge, primary.Confidence)

	keyFactors := make([]string, 0, maxKeyFactors)
	for _, c := range b.synthesis.Contributions {
		if len(keyFactors) == maxKeyFactors {
			break
		}
		direction := "lifts"
		if c.Points < 0 {
			direction = "drags"
		}
		keyFactors = append(keyFactors, fmt.Sprintf("%s %s the estimate %+.1f pts (%s)",
			string(c.Category), direction, c.Points, c.Source))
	}
	if len(keyFactors) == 0 {
		keyFactors = append(keyFactors, "no contextual signals available, market prices carried through")
	}

	return models.Narrative{
		Headline:   headline,
		Summary:    summary,
		KeyFactors: keyFactors,
		Reasoning:  buildReasoning(b, primary),
	}
}

func buildReasoning(b *analysisBundle, primary models.MarketQuote) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Factor synthesis moved the baseline %.0f%% by %+.1f points to %.1f%%",
		50.0, b.synthesis.TotalImpact, b.synthesis.Raw)
	if b.synthesis.Raw != b.synthesis.Capped {
		fmt.Fprintf(&sb, ", capped to %.1f%%", b.synthesis.Capped)
	}
	fmt.Fprintf(&sb, " against a market-implied %.1f%%.", b.synthesis.MarketImplied)

	fmt.Fprintf(&sb, " The %s tier %s league context shaped %d generated markets; the primary pick stakes %.1f units.",
		leagueTier(b.league.Tier), b.league.Name, len(b.quotes), primary.Stake.Units)

	if !b.statsAvailable {
		sb.WriteString(" Corners and cards lines fall back to league-average inputs.")
	}
	return sb.String()
}

func categoryLabel(cat models.MarketCategory) string {
	return strings.ReplaceAll(string(cat), "_", " ")
}

func leagueTier(tier int) string {
	switch tier {
	case 1:
		return "top"
	case 2:
		return "second"
	default:
		return "lower"
	}
}
