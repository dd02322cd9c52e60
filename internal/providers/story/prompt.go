package story

import (
	"fmt"
	"strings"

	"artisanstudio/internal/domain"
)

const systemPrompt = "You are an AI assistant designed to empower local artisans by bridging cultural heritage with a digital-native audience. You only respond with JSON that matches the requested schema."

var promptGuidelines = []string{
	"Honor cultural authenticity while appealing to modern digital audiences",
	"Create storytelling that connects traditional craftsmanship with contemporary values",
	"Ensure pricing reflects both material costs, time investment, and cultural significance",
	"Generate content that celebrates heritage while being accessible to global audiences",
	"Include emotional storytelling that highlights the artisan's personal journey",
	"Suggest pricing that values the artisan's skill and cultural preservation",
	"Provide marketing content that educates audiences about the craft's cultural importance",
}

// BuildPrompt embeds every submission field in the authorial brief.
func BuildPrompt(sub domain.CraftSubmission) string {
	lang := sub.PreferredLanguage
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	sb := &strings.Builder{}
	sb.WriteString("You are an AI assistant designed to empower local artisans by bridging cultural heritage with a digital-native audience.\n\n")
	sb.WriteString("Create comprehensive, culturally authentic content for:\n")
	fmt.Fprintf(sb, "• Craft type: %s\n", sub.CraftType)
	fmt.Fprintf(sb, "• Region: %s\n", sub.Region)
	fmt.Fprintf(sb, "• Motif/Design: %s\n", sub.Motif)
	fmt.Fprintf(sb, "• Artisan's journey: %s\n", sub.ArtisanJourney)
	fmt.Fprintf(sb, "• Material cost: $%s\n", sub.MaterialCost.String())
	fmt.Fprintf(sb, "• Hours worked: %s\n", sub.HoursWorked.String())
	fmt.Fprintf(sb, "• Preferred language: %s\n\n", lang)
	sb.WriteString("Guidelines:\n")
	for _, g := range promptGuidelines {
		fmt.Fprintf(sb, "- %s\n", g)
	}
	fmt.Fprintf(sb, "\nReturn exactly %d marketing captions, exactly %d mockup suggestions and exactly %d social media ideas. The suggested price must be a number of at least %.0f.\n",
		domain.CaptionCount, domain.MockupCount, domain.SocialMediaIdeaCount, domain.MinSuggestedPrice)
	sb.WriteString("\nFocus on creating content that empowers artisans economically while preserving cultural heritage.")
	return sb.String()
}
