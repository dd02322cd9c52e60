package story

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"artisanstudio/internal/domain"
)

// StaticGenerator fills every bundle field from fixed templates. It never
// touches the network and returns identical output for identical input.
type StaticGenerator struct {
	// reason is stamped on results when the generator serves requests
	// directly instead of behind a model generator.
	reason string
}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (s *StaticGenerator) Generate(ctx context.Context, sub domain.CraftSubmission) (*Result, error) {
	meta := map[string]string{}
	if s != nil && s.reason != "" {
		meta[MetaFallbackReason] = s.reason
	}
	return &Result{
		Bundle:   TemplateBundle(sub),
		Source:   SourceFallback,
		Provider: staticProviderName,
		Metadata: meta,
	}, nil
}

var _ Generator = (*StaticGenerator)(nil)

// SuggestedPrice is material*3.5 + hours*15 with a floor of 50.
func SuggestedPrice(materialCost, hoursWorked float64) float64 {
	return math.Max(materialCost*3.5+hoursWorked*15, domain.MinSuggestedPrice)
}

// TemplateBundle renders the bundle for sub by interpolation only.
func TemplateBundle(sub domain.CraftSubmission) domain.ContentBundle {
	craft := sub.CraftType
	region := sub.Region
	motif := sub.Motif
	lang := sub.PreferredLanguage
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	craftTag := hashtag(craft)
	regionTag := hashtag(region)

	bundle := domain.ContentBundle{
		Storytelling: domain.Storytelling{
			ProductStory: fmt.Sprintf("This exquisite %s from %s represents generations of traditional craftsmanship. Each piece features intricate %s patterns that tell stories of cultural heritage and artistic mastery. %s... The careful attention to detail and authentic techniques make this a truly unique piece that bridges ancient traditions with contemporary aesthetics. Every element reflects the artisan's deep connection to their cultural roots while appealing to modern sensibilities.",
				craft, region, motif, truncateRunes(sub.ArtisanJourney, 100)),
			ArtisanBio: fmt.Sprintf("Master artisan from %s specializing in traditional %s. %s... Dedicated to preserving cultural heritage through authentic craftsmanship.",
				region, craft, truncateRunes(sub.ArtisanJourney, 50)),
			InstagramCaption: fmt.Sprintf("✨ Handcrafted %s from %s featuring traditional %s patterns #handmade #%s #%s #artisan #heritage #authentic",
				craft, region, motif, craftTag, regionTag),
		},
		Marketing: domain.Marketing{
			Captions: []string{
				fmt.Sprintf("🎨 Every thread tells a story. This %s from %s carries centuries of tradition. #handmade #artisan #%s", craft, region, craftTag),
				fmt.Sprintf("✨ Authentic %s patterns meet modern style. Discover the beauty of traditional %s. #heritage #craftsmanship #unique", motif, craft),
				"🌟 Supporting local artisans means preserving culture. Each piece is a work of art. #supportlocal #handcrafted #cultural",
			},
			MockupSuggestions: []string{
				fmt.Sprintf("Modern minimalist home setting: Place the %s on a clean white surface with natural lighting, surrounded by simple plants and neutral decor", craft),
				fmt.Sprintf("Festive cultural display: Showcase alongside traditional items from %s, with warm lighting and cultural textiles as backdrop", region),
				"Contemporary lifestyle shot: Style with modern furniture and accessories, highlighting how traditional crafts fit into today's homes",
			},
			EnhancementTips: []string{
				"Use natural daylight or soft LED lighting to highlight texture and colors",
				"Choose neutral backgrounds that don't compete with the craft's details",
				fmt.Sprintf("Capture multiple angles showing the intricate %s patterns", motif),
				"Include lifestyle shots showing the item in use or displayed",
			},
		},
		Branding: domain.Branding{
			LogoIdea: fmt.Sprintf("Simple text-based logo combining your artisan name with a stylized %s symbol. Use earthy colors that reflect %s's traditional palette - think terracotta, deep blues, or warm golds.", motif, region),
			Tagline:  fmt.Sprintf(`"Where Heritage Meets Artistry" or "Authentic %s from %s"`, craft, region),
			SocialMediaIdeas: []domain.SocialMediaIdea{
				{
					Type:    "Reel",
					Script:  fmt.Sprintf("Show the creation process of your %s, focusing on hands working with traditional tools. Add text overlay explaining the significance of %s patterns.", craft, motif),
					Caption: fmt.Sprintf("Behind the scenes: Creating authentic %s using traditional techniques passed down through generations. Each %s pattern has meaning. #process #artisan #heritage", craft, motif),
				},
				{
					Type:    "Story",
					Script:  fmt.Sprintf("Share the story behind this specific piece - why you chose these colors, what the %s represents, how long it took to create.", motif),
					Caption: fmt.Sprintf("The story behind today's creation ✨ Every piece has a purpose #artisanstory #handmade #%s", regionTag),
				},
			},
		},
		Pricing: domain.Pricing{
			SuggestedPrice:   SuggestedPrice(sub.MaterialCost.Float(), sub.HoursWorked.Float()),
			Justification:    fmt.Sprintf("Based on your material cost of $%s and %s hours of skilled work, this price reflects the true value of handcrafted artistry. Traditional %s requires specialized skills and cultural knowledge that cannot be mass-produced. The %s patterns represent cultural heritage that adds significant value beyond materials and time.", sub.MaterialCost.String(), sub.HoursWorked.String(), craft, motif),
			MarketComparison: fmt.Sprintf("Similar handcrafted %s from %s typically sell for 20-40%% more in international markets. Your pricing positions the piece as authentic, high-quality artisan work while remaining accessible to conscious consumers who value cultural preservation and ethical craftsmanship.", craft, region),
		},
		Trends: domain.Trends{
			ColorPalettes: []string{
				"Earthy Warmth: Terracotta, warm ochre, deep sage green, cream",
				"Modern Heritage: Charcoal gray, soft gold, muted teal, ivory",
				"Cultural Fusion: Deep indigo, copper, warm beige, soft coral",
			},
			StyleVariation: fmt.Sprintf("Consider creating a modern interpretation of your traditional %s by simplifying the %s pattern while maintaining its cultural essence. Use contemporary color combinations while preserving the authentic techniques that make your work special.", craft, motif),
		},
		Translations: domain.Translations{
			Language: lang,
			SEOKeywords: []string{
				"handmade " + craft,
				region + " artisan",
				"traditional " + motif,
				"authentic craftsmanship",
				"cultural heritage",
				"handcrafted art",
				lower(craft) + " art",
				"artisan made",
			},
		},
	}

	story := fmt.Sprintf("This exquisite %s represents traditional artistry from %s...", craft, region)
	caption := fmt.Sprintf("✨ Handcrafted %s from %s #handmade #artisan", craft, region)
	if lang == domain.DefaultLanguage {
		bundle.Translations.TranslatedStory = story
		bundle.Translations.TranslatedCaption = caption
	} else {
		bundle.Translations.TranslatedStory = TranslationPlaceholder(lang) + " " + story
		bundle.Translations.TranslatedCaption = CaptionPlaceholder(lang) + " " + caption
	}
	return bundle
}

// TranslationPlaceholder marks a story that would be translated to lang.
func TranslationPlaceholder(lang string) string {
	return fmt.Sprintf("[This would be translated to %s]", lang)
}

// CaptionPlaceholder marks a caption that would be translated to lang.
func CaptionPlaceholder(lang string) string {
	return fmt.Sprintf("[Translated to %s]", lang)
}

// A Caser keeps state, so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// hashtag drops all whitespace and lower-cases the rest.
func hashtag(s string) string {
	return lower(strings.Join(strings.Fields(s), ""))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
