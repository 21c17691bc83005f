package body

import (
	"errors"
	"testing"
)

func TestTryParseEmbed(t *testing.T) {
	cases := []struct {
		host EmbedHost
		raw  string
		want string
	}{
		{EmbedGoogleDoc, "https://docs.google.com/document/d/1AbC_d-9/edit?usp=sharing", "1AbC_d-9"},
		{EmbedGoogleSheet, "https://docs.google.com/spreadsheets/d/xYz123/edit#gid=0", "xYz123"},
		{EmbedGoogleSlide, "https://docs.google.com/presentation/d/slideId9/edit", "slideId9"},
		{EmbedGoogleForm, "https://docs.google.com/forms/d/e/1FAIpQL/viewform", "1FAIpQL"},
		{EmbedQuizlet, "https://quizlet.com/123456789/chapter-3-flash-cards/", "123456789"},
		{EmbedThinglink, "https://www.thinglink.com/scene/112233", "112233"},
		{EmbedSutori, "https://www.sutori.com/story/my-history-lesson", "my-history-lesson"},
		{EmbedVimeo, "https://vimeo.com/76979871", "76979871"},
		{EmbedVimeo, "https://player.vimeo.com/video/76979871", "76979871"},
	}
	for _, tc := range cases {
		got, err := TryParseEmbed(tc.host, tc.raw)
		if err != nil {
			t.Errorf("%s %q: %v", tc.host, tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s %q: id = %q, want %q", tc.host, tc.raw, got, tc.want)
		}
	}
}

func TestTryParseEmbedRejects(t *testing.T) {
	cases := []struct {
		host EmbedHost
		raw  string
	}{
		{EmbedGoogleDoc, "not a url"},
		{EmbedGoogleDoc, "https://example.com/document/d/1AbC"},
		{EmbedQuizlet, "https://quizlet.com/latest"},
		{EmbedVimeo, "https://vimeo.com/channels/staffpicks"},
	}
	for _, tc := range cases {
		_, err := TryParseEmbed(tc.host, tc.raw)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s %q: expected ParseError, got %v", tc.host, tc.raw, err)
			continue
		}
		if pe.Input != tc.raw {
			t.Errorf("ParseError.Input = %q, want %q", pe.Input, tc.raw)
		}
	}
}

// Rendering a parsed id must yield a URL that parses back to the same id.
func TestRenderParseRoundTrip(t *testing.T) {
	ids := map[EmbedHost]string{
		EmbedGoogleDoc:   "1AbC_d-9",
		EmbedGoogleSheet: "xYz123",
		EmbedGoogleSlide: "slideId9",
		EmbedGoogleForm:  "1FAIpQL",
		EmbedQuizlet:     "123456789",
		EmbedThinglink:   "112233",
		EmbedSutori:      "my-history-lesson",
		EmbedVimeo:       "76979871",
	}
	for host, id := range ids {
		rendered := RenderEmbedURL(host, id)
		got, err := TryParseEmbed(host, rendered)
		if err != nil {
			t.Errorf("%s: rendered url %q did not parse: %v", host, rendered, err)
			continue
		}
		if got != id {
			t.Errorf("%s: round trip %q -> %q", host, id, got)
		}
	}
}

func TestTryParseYoutube(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
	}
	for _, tc := range cases {
		got, err := TryParseYoutube(tc.raw)
		if err != nil {
			t.Errorf("%q: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: id = %q, want %q", tc.raw, got, tc.want)
		}
	}

	if _, err := TryParseYoutube("https://www.youtube.com/watch"); err == nil {
		t.Error("watch url without v= should not parse")
	}
}
