// Package export renders a content bundle as a Markdown document or as a
// standalone HTML page the artisan can download or paste into a shop listing.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"

	"artisanstudio/internal/domain"
	"artisanstudio/pkg/zip"
)

// Format selects an export rendition.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatZip      Format = "zip"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "markdown", "md", "html" and "zip"; empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "zip":
		return FormatZip, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the HTTP media type of the rendition.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatZip:
		return "application/zip"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Filename is the download name for the rendition.
func (f Format) Filename() string {
	switch f {
	case FormatHTML:
		return "artisan-content.html"
	case FormatZip:
		return "artisan-content.zip"
	default:
		return "artisan-content.md"
	}
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldhtml.WithHardWraps()),
)

// Render produces the bundle in the requested format.
func Render(f Format, sub domain.CraftSubmission, b domain.ContentBundle) ([]byte, error) {
	doc := Markdown(sub, b)
	switch f {
	case FormatHTML:
		return HTML(Title(sub), doc)
	case FormatZip:
		return Archive(sub, b, doc)
	default:
		return []byte(doc), nil
	}
}

// Archive packs every rendition of the bundle, plus the raw JSON, into a zip.
func Archive(sub domain.CraftSubmission, b domain.ContentBundle, doc string) ([]byte, error) {
	page, err := HTML(Title(sub), doc)
	if err != nil {
		return nil, err
	}
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode bundle: %w", err)
	}
	return zip.Archive([]zip.File{
		{Name: "content.md", Data: []byte(doc)},
		{Name: "content.html", Data: page},
		{Name: "content.json", Data: raw},
	})
}

// Title names the document after the craft.
func Title(sub domain.CraftSubmission) string {
	switch {
	case sub.CraftType != "" && sub.Region != "":
		return sub.CraftType + " from " + sub.Region
	case sub.CraftType != "":
		return sub.CraftType
	default:
		return "Artisan content kit"
	}
}

// Markdown lays the six bundle sections out as a Markdown document.
func Markdown(sub domain.CraftSubmission, b domain.ContentBundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", Title(sub))

	sb.WriteString("## Story\n\n")
	paragraph(&sb, b.Storytelling.ProductStory)
	sb.WriteString("### About the artisan\n\n")
	paragraph(&sb, b.Storytelling.ArtisanBio)
	sb.WriteString("### Instagram caption\n\n")
	quote(&sb, b.Storytelling.InstagramCaption)

	sb.WriteString("## Marketing\n\n### Captions\n\n")
	numbered(&sb, b.Marketing.Captions)
	sb.WriteString("### Mockup suggestions\n\n")
	bullets(&sb, b.Marketing.MockupSuggestions)
	if len(b.Marketing.EnhancementTips) > 0 {
		sb.WriteString("### Enhancement tips\n\n")
		bullets(&sb, b.Marketing.EnhancementTips)
	}

	sb.WriteString("## Branding\n\n")
	fmt.Fprintf(&sb, "**Tagline:** %s\n\n", b.Branding.Tagline)
	fmt.Fprintf(&sb, "**Logo idea:** %s\n\n", b.Branding.LogoIdea)
	if len(b.Branding.SocialMediaIdeas) > 0 {
		sb.WriteString("| Type | Script | Caption |\n|---|---|---|\n")
		for _, idea := range b.Branding.SocialMediaIdeas {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", cell(idea.Type), cell(idea.Script), cell(idea.Caption))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Pricing\n\n")
	fmt.Fprintf(&sb, "**Suggested price:** $%s\n\n", strconv.FormatFloat(b.Pricing.SuggestedPrice, 'f', -1, 64))
	paragraph(&sb, b.Pricing.Justification)
	paragraph(&sb, b.Pricing.MarketComparison)

	sb.WriteString("## Trends\n\n")
	bullets(&sb, b.Trends.ColorPalettes)
	paragraph(&sb, b.Trends.StyleVariation)

	fmt.Fprintf(&sb, "## Translation (%s)\n\n", b.Translations.Language)
	paragraph(&sb, b.Translations.TranslatedStory)
	quote(&sb, b.Translations.TranslatedCaption)
	if len(b.Translations.SEOKeywords) > 0 {
		keywords := make([]string, len(b.Translations.SEOKeywords))
		for i, k := range b.Translations.SEOKeywords {
			keywords[i] = "`" + strings.ReplaceAll(k, "`", "'") + "`"
		}
		fmt.Fprintf(&sb, "**SEO keywords:** %s\n", strings.Join(keywords, " "))
	}
	return sb.String()
}

// HTML converts a Markdown document into a standalone page. Raw HTML inside
// the document is dropped by the renderer.
func HTML(title, doc string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(doc), &body); err != nil {
		return nil, fmt.Errorf("export: render html: %w", err)
	}
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\" />\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\" />\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

func paragraph(sb *strings.Builder, text string) {
	if text = strings.TrimSpace(text); text != "" {
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
}

func quote(sb *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		sb.WriteString("> ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func bullets(sb *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", oneLine(item))
	}
	sb.WriteString("\n")
}

func numbered(sb *strings.Builder, items []string) {
	for i, item := range items {
		fmt.Fprintf(sb, "%d. %s\n", i+1, oneLine(item))
	}
	sb.WriteString("\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}
