package domain

import (
	"fmt"
	"math"
	"strings"
)

// Fixed cardinalities of the bundle contract.
const (
	CaptionCount         = 3
	MockupCount          = 3
	SocialMediaIdeaCount = 2
	// MinSuggestedPrice is the floor of every price suggestion.
	MinSuggestedPrice = 50.0
)

// ContentBundle is the full set of content produced for one submission.
type ContentBundle struct {
	Storytelling Storytelling `json:"storytelling"`
	Marketing    Marketing    `json:"marketing"`
	Branding     Branding     `json:"branding"`
	Pricing      Pricing      `json:"pricing"`
	Trends       Trends       `json:"trends"`
	Translations Translations `json:"translations"`
}

type Storytelling struct {
	ProductStory     string `json:"productStory"`
	ArtisanBio       string `json:"artisanBio"`
	InstagramCaption string `json:"instagramCaption"`
}

type Marketing struct {
	Captions          []string `json:"captions"`
	MockupSuggestions []string `json:"mockupSuggestions"`
	EnhancementTips   []string `json:"enhancementTips"`
}

type Branding struct {
	LogoIdea         string            `json:"logoIdea"`
	Tagline          string            `json:"tagline"`
	SocialMediaIdeas []SocialMediaIdea `json:"socialMediaIdeas"`
}

type SocialMediaIdea struct {
	Type    string `json:"type"`
	Script  string `json:"script"`
	Caption string `json:"caption"`
}

type Pricing struct {
	SuggestedPrice   float64 `json:"suggestedPrice"`
	Justification    string  `json:"justification"`
	MarketComparison string  `json:"marketComparison"`
}

type Trends struct {
	ColorPalettes  []string `json:"colorPalettes"`
	StyleVariation string   `json:"styleVariation"`
}

type Translations struct {
	Language          string   `json:"language"`
	TranslatedStory   string   `json:"translatedStory"`
	TranslatedCaption string   `json:"translatedCaption"`
	SEOKeywords       []string `json:"seoKeywords"`
}

// Validate checks the bundle against the shape contract: fixed cardinalities,
// mandatory strings and lists, and a price at or above the floor. Model output goes through this before
// it is returned to a caller.
func (b ContentBundle) Validate() error {
	var problems []string
	need := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			problems = append(problems, name+" is empty")
		}
	}
	list := func(name string, v []string) {
		if v == nil {
			problems = append(problems, name+" is missing")
		}
	}
	count := func(name string, got, want int) {
		if got != want {
			problems = append(problems, fmt.Sprintf("%s has %d items, want %d", name, got, want))
		}
	}

	need("storytelling.productStory", b.Storytelling.ProductStory)
	need("storytelling.artisanBio", b.Storytelling.ArtisanBio)
	need("storytelling.instagramCaption", b.Storytelling.InstagramCaption)

	count("marketing.captions", len(b.Marketing.Captions), CaptionCount)
	count("marketing.mockupSuggestions", len(b.Marketing.MockupSuggestions), MockupCount)
	for i, c := range b.Marketing.Captions {
		need(fmt.Sprintf("marketing.captions[%d]", i), c)
	}
	for i, m := range b.Marketing.MockupSuggestions {
		need(fmt.Sprintf("marketing.mockupSuggestions[%d]", i), m)
	}
	list("marketing.enhancementTips", b.Marketing.EnhancementTips)

	need("branding.logoIdea", b.Branding.LogoIdea)
	need("branding.tagline", b.Branding.Tagline)
	count("branding.socialMediaIdeas", len(b.Branding.SocialMediaIdeas), SocialMediaIdeaCount)
	for i, idea := range b.Branding.SocialMediaIdeas {
		need(fmt.Sprintf("branding.socialMediaIdeas[%d].type", i), idea.Type)
		need(fmt.Sprintf("branding.socialMediaIdeas[%d].script", i), idea.Script)
		need(fmt.Sprintf("branding.socialMediaIdeas[%d].caption", i), idea.Caption)
	}

	if math.IsNaN(b.Pricing.SuggestedPrice) || math.IsInf(b.Pricing.SuggestedPrice, 0) {
		problems = append(problems, "pricing.suggestedPrice is not a finite number")
	} else if b.Pricing.SuggestedPrice < MinSuggestedPrice {
		problems = append(problems, fmt.Sprintf("pricing.suggestedPrice %.2f is below %.0f", b.Pricing.SuggestedPrice, MinSuggestedPrice))
	}
	need("pricing.justification", b.Pricing.Justification)
	need("pricing.marketComparison", b.Pricing.MarketComparison)

	list("trends.colorPalettes", b.Trends.ColorPalettes)
	need("trends.styleVariation", b.Trends.StyleVariation)

	need("translations.language", b.Translations.Language)
	need("translations.translatedStory", b.Translations.TranslatedStory)
	need("translations.translatedCaption", b.Translations.TranslatedCaption)
	list("translations.seoKeywords", b.Translations.SEOKeywords)

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrBundleShape, strings.Join(problems, "; "))
}
