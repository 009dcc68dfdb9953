package maintain

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SEO description thresholds, in characters.
const (
	SEODescriptionLimit   = 160
	SEODescriptionWarning = 200
)

// Description audit statuses.
const (
	StatusExceedsLimit = "exceeds_limit"
	StatusNearLimit    = "near_limit"
)

// DescriptionIssue flags a post whose description is longer than the SEO
// limit allows.
type DescriptionIssue struct {
	Title       string
	Link        string
	Description string
	Length      int
	Status      string
}

// MissingDescription flags a post without a description, with a suggestion
// extracted from the post's HTML body when one is available.
type MissingDescription struct {
	Title     string
	Link      string
	Suggested string
}

// AnalyzeDescriptions audits the posts cache for over-long and missing
// descriptions. Read or parse failures degrade to an empty report.
func AnalyzeDescriptions(path string) ([]DescriptionIssue, []MissingDescription) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return []DescriptionIssue{}, []MissingDescription{}
	}

	var posts []map[string]any
	if err := json.Unmarshal(raw, &posts); err != nil {
		return []DescriptionIssue{}, []MissingDescription{}
	}

	long := make([]DescriptionIssue, 0)
	missing := make([]MissingDescription, 0)

	for _, post := range posts {
		title, _ := post["title"].(string)
		link, _ := post["link"].(string)
		description, _ := post["description"].(string)

		if strings.TrimSpace(description) == "" {
			missing = append(missing, MissingDescription{
				Title:     title,
				Link:      link,
				Suggested: suggestedDescription(post),
			})
			continue
		}

		length := len([]rune(description))
		switch {
		case length > SEODescriptionWarning:
			long = append(long, DescriptionIssue{
				Title: title, Link: link, Description: description,
				Length: length, Status: StatusExceedsLimit,
			})
		case length > SEODescriptionLimit:
			long = append(long, DescriptionIssue{
				Title: title, Link: link, Description: description,
				Length: length, Status: StatusNearLimit,
			})
		}
	}

	return long, missing
}

func suggestedDescription(post map[string]any) string {
	api, _ := post["api_data"].(map[string]any)
	if api == nil {
		return ""
	}
	body, _ := api["body_html"].(string)
	if body == "" {
		return ""
	}
	return SuggestDescription(body)
}

// SuggestDescription derives a description candidate from an article's HTML
// body: visible text, whitespace collapsed, cut at a word boundary inside
// the SEO limit.
func SuggestDescription(bodyHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(bodyHTML))
	if err != nil {
		return ""
	}
	doc.Find("script, style, pre, code").Remove()

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if text == "" {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= SEODescriptionLimit {
		return text
	}

	cut := string(runes[:SEODescriptionLimit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
