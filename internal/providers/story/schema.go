package story

import (
	"strings"

	"artisanstudio/internal/domain"
)

const schemaName = "artisan_content_bundle"

// SchemaDialect selects the schema flavour a provider accepts.
type SchemaDialect int

const (
	// DialectOpenAI is strict JSON Schema: closed objects, no array bounds.
	DialectOpenAI SchemaDialect = iota
	// DialectGemini is the OpenAPI subset: upper-case types, array bounds, open objects.
	DialectGemini
)

// BundleSchema describes domain.ContentBundle for the given dialect.
// Descriptions are hints for the model. Counts are enforced after decoding
// regardless of dialect.
func BundleSchema(d SchemaDialect) map[string]any {
	b := schemaBuilder{dialect: d}
	object, array, str, num := b.object, b.array, b.str, b.num
	fixed := func(desc string, n int, items map[string]any) map[string]any {
		s := array(desc, items)
		if d == DialectGemini {
			s["minItems"] = n
			s["maxItems"] = n
		}
		return s
	}

	return object("", map[string]any{
		"storytelling": object("", map[string]any{
			"productStory":     str("Compelling 150-word product story that connects traditional craftsmanship with modern values"),
			"artisanBio":       str("50-word artisan biography highlighting heritage and expertise"),
			"instagramCaption": str("Under 100 character Instagram caption with relevant hashtags"),
		}, "productStory", "artisanBio", "instagramCaption"),
		"marketing": object("", map[string]any{
			"captions":          fixed("3 Instagram captions with hashtags for different audiences", domain.CaptionCount, str("")),
			"mockupSuggestions": fixed("3 lifestyle mockup ideas: modern home, festive decor, minimalist setup", domain.MockupCount, str("")),
			"enhancementTips":   array("Photo enhancement suggestions: lighting, background, composition", str("")),
		}, "captions", "mockupSuggestions", "enhancementTips"),
		"branding": object("", map[string]any{
			"logoIdea": str("Simple logo concept description combining text and cultural symbol"),
			"tagline":  str("Short, memorable tagline for the artisan brand"),
			"socialMediaIdeas": fixed("2 social media post ideas with scripts and captions", domain.SocialMediaIdeaCount, object("", map[string]any{
				"type":    str("Type of social media content: Reel, Story, Post"),
				"script":  str("Content script or description"),
				"caption": str("Social media caption with hashtags"),
			}, "type", "script", "caption")),
		}, "logoIdea", "tagline", "socialMediaIdeas"),
		"pricing": object("", map[string]any{
			"suggestedPrice":   num("Fair price suggestion based on materials, time, and cultural value"),
			"justification":    str("Detailed narrative justifying the suggested price"),
			"marketComparison": str("Comparison with similar market products and positioning"),
		}, "suggestedPrice", "justification", "marketComparison"),
		"trends": object("", map[string]any{
			"colorPalettes":  array("Trending color palettes that complement traditional techniques", str("")),
			"styleVariation": str("One product variation idea blending tradition with modern trends"),
		}, "colorPalettes", "styleVariation"),
		"translations": object("", map[string]any{
			"language":          str("The preferred language for translation"),
			"translatedStory":   str("Product story translated to preferred language"),
			"translatedCaption": str("Instagram caption translated to preferred language"),
			"seoKeywords":       array("SEO keywords in both English and local language", str("")),
		}, "language", "translatedStory", "translatedCaption", "seoKeywords"),
	}, "storytelling", "marketing", "branding", "pricing", "trends", "translations")
}

type schemaBuilder struct {
	dialect SchemaDialect
}

func (b schemaBuilder) typeName(t string) string {
	if b.dialect == DialectGemini {
		return strings.ToUpper(t)
	}
	return t
}

func (b schemaBuilder) object(desc string, props map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"type":       b.typeName("object"),
		"properties": props,
		"required":   required,
	}
	if b.dialect == DialectOpenAI {
		s["additionalProperties"] = false
	}
	if desc != "" {
		s["description"] = desc
	}
	return s
}

func (b schemaBuilder) array(desc string, items map[string]any) map[string]any {
	s := map[string]any{"type": b.typeName("array"), "items": items}
	if desc != "" {
		s["description"] = desc
	}
	return s
}

func (b schemaBuilder) str(desc string) map[string]any {
	s := map[string]any{"type": b.typeName("string")}
	if desc != "" {
		s["description"] = desc
	}
	return s
}

func (b schemaBuilder) num(desc string) map[string]any {
	return map[string]any{"type": b.typeName("number"), "description": desc}
}
