package cleaner

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/project-tktt/go-extractor/internal/domain"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// Cleaner sanitizes the text fields of extracted items using Bluemonday
type Cleaner struct {
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewCleaner creates a cleaner that keeps basic formatting and links in long text
func NewCleaner() *Cleaner {
	policy := bluemonday.NewPolicy()

	policy.AllowElements("p", "br", "div", "span")
	policy.AllowElements("strong", "b", "em", "i", "u")
	policy.AllowElements("ul", "ol", "li")

	// Allow links but strip javascript:
	policy.AllowAttrs("href").OnElements("a")
	policy.AllowRelativeURLs(true)
	policy.RequireParseableURLs(true)
	policy.AllowURLSchemes("http", "https", "mailto")
	policy.RequireNoFollowOnLinks(true)

	return &Cleaner{policy: policy, strict: bluemonday.StrictPolicy()}
}

// NewStrictCleaner creates a cleaner that strips ALL HTML, long text included
func NewStrictCleaner() *Cleaner {
	strict := bluemonday.StrictPolicy()
	return &Cleaner{policy: strict, strict: strict}
}

// Clean sanitizes HTML content
func (c *Cleaner) Clean(s string) string {
	return strings.TrimSpace(c.policy.Sanitize(s))
}

// CleanToText removes all HTML and returns plain text
func (c *Cleaner) CleanToText(s string) string {
	text := html.UnescapeString(c.strict.Sanitize(s))
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// CleanRecord sanitizes a record in place. Titles and names become plain text,
// descriptions and comment bodies keep the formatting the policy allows.
func (c *Cleaner) CleanRecord(r *domain.Record) {
	r.Name = c.CleanToText(r.Name)
	r.UploaderName = c.CleanToText(r.UploaderName)
	r.TextualUploadDate = c.CleanToText(r.TextualUploadDate)
	r.Description = c.Clean(r.Description)
	r.Text = c.Clean(r.Text)
}
