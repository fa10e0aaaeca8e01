package cleaner

import (
	"testing"

	"github.com/project-tktt/go-extractor/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	c := NewCleaner()

	assert.Equal(t, "<b>bold</b>", c.Clean(`<b onclick="x()">bold</b><script>alert(1)</script>`))
	assert.Equal(t, "link", c.Clean(`<a href="javascript:alert(1)">link</a>`))
	assert.Contains(t, c.Clean(`<a href="https://example.com">link</a>`), `href="https://example.com"`)
}

func TestCleanToText(t *testing.T) {
	c := NewCleaner()

	assert.Equal(t, "Tom & Jerry", c.CleanToText("  <h1>Tom &amp; Jerry</h1> "))
	assert.Equal(t, "a\n\nb", c.CleanToText("a\n\n\n\n\nb"))
}

// TestCleanRecord verifies titles lose all markup while descriptions keep safe formatting
func TestCleanRecord(t *testing.T) {
	r := domain.Record{
		Name:         "<i>Live</i> now",
		UploaderName: "<span>Blender</span>",
		Description:  "<p>Hello <em>world</em></p><iframe src=x></iframe>",
		Text:         "nice <img src=x onerror=alert(1)>video",
		URL:          "https://framatube.org/w/<abc>",
	}
	NewCleaner().CleanRecord(&r)

	assert.Equal(t, "Live now", r.Name)
	assert.Equal(t, "Blender", r.UploaderName)
	assert.Equal(t, "<p>Hello <em>world</em></p>", r.Description)
	assert.Equal(t, "nice video", r.Text)
	assert.Equal(t, "https://framatube.org/w/<abc>", r.URL)
}

func TestStrictCleanerStripsDescriptions(t *testing.T) {
	r := domain.Record{Description: "<p>Hello <em>world</em></p>"}
	NewStrictCleaner().CleanRecord(&r)
	assert.Equal(t, "Hello world", r.Description)
}
