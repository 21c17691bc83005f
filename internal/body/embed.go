package body

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

type EmbedHost string

const (
	EmbedGoogleDoc   EmbedHost = "google-doc"
	EmbedGoogleSheet EmbedHost = "google-sheet"
	EmbedGoogleSlide EmbedHost = "google-slide"
	EmbedGoogleForm  EmbedHost = "google-form"
	EmbedQuizlet     EmbedHost = "quizlet"
	EmbedThinglink   EmbedHost = "thinglink"
	EmbedSutori      EmbedHost = "sutori"
	EmbedVimeo       EmbedHost = "vimeo"
)

// ParseError 用户粘贴的分享链接无法识别
type ParseError struct {
	Host  EmbedHost
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized %s url: %q", e.Host, e.Input)
}

var (
	googleDocRe   = regexp.MustCompile(`^/document/d/([A-Za-z0-9_-]+)`)
	googleSheetRe = regexp.MustCompile(`^/spreadsheets/d/([A-Za-z0-9_-]+)`)
	googleSlideRe = regexp.MustCompile(`^/presentation/d/([A-Za-z0-9_-]+)`)
	googleFormRe  = regexp.MustCompile(`^/forms/d/(?:e/)?([A-Za-z0-9_-]+)`)
	quizletRe     = regexp.MustCompile(`^/(\d+)/`)
	thinglinkRe   = regexp.MustCompile(`^/(?:scene|card|video)/(\d+)`)
	sutoriRe      = regexp.MustCompile(`^/(?:story|embed)/([a-zA-Z0-9-]+)`)
	vimeoRe       = regexp.MustCompile(`^/(?:video/)?(\d+)`)
	youtubeIDRe   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// TryParseEmbed extracts the provider id from a pasted share URL. It accepts
// the canonical share forms documented by each provider; anything else yields
// a *ParseError and the caller keeps the raw input around.
func TryParseEmbed(host EmbedHost, raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", &ParseError{Host: host, Input: raw}
	}

	hostname := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	var id string
	switch host {
	case EmbedGoogleDoc:
		if hostname == "docs.google.com" {
			id = firstMatch(googleDocRe, u.Path)
		}
	case EmbedGoogleSheet:
		if hostname == "docs.google.com" {
			id = firstMatch(googleSheetRe, u.Path)
		}
	case EmbedGoogleSlide:
		if hostname == "docs.google.com" {
			id = firstMatch(googleSlideRe, u.Path)
		}
	case EmbedGoogleForm:
		if hostname == "docs.google.com" || hostname == "forms.gle" {
			id = firstMatch(googleFormRe, u.Path)
		}
	case EmbedQuizlet:
		if hostname == "quizlet.com" {
			id = firstMatch(quizletRe, u.Path)
		}
	case EmbedThinglink:
		if hostname == "thinglink.com" {
			id = firstMatch(thinglinkRe, u.Path)
		}
	case EmbedSutori:
		if hostname == "sutori.com" {
			id = firstMatch(sutoriRe, u.Path)
		}
	case EmbedVimeo:
		if hostname == "vimeo.com" || hostname == "player.vimeo.com" {
			id = firstMatch(vimeoRe, u.Path)
		}
	}

	if id == "" {
		return "", &ParseError{Host: host, Input: raw}
	}
	return id, nil
}

func firstMatch(re *regexp.Regexp, path string) string {
	m := re.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}

// RenderEmbedURL produces the canonical embeddable URL for a parsed id.
// TryParseEmbed(RenderEmbedURL(host, id)) returns id again.
func RenderEmbedURL(host EmbedHost, id string) string {
	switch host {
	case EmbedGoogleDoc:
		return "https://docs.google.com/document/d/" + id + "/preview"
	case EmbedGoogleSheet:
		return "https://docs.google.com/spreadsheets/d/" + id + "/preview"
	case EmbedGoogleSlide:
		return "https://docs.google.com/presentation/d/" + id + "/embed"
	case EmbedGoogleForm:
		return "https://docs.google.com/forms/d/" + id + "/viewform"
	case EmbedQuizlet:
		return "https://quizlet.com/" + id + "/flashcards/embed"
	case EmbedThinglink:
		return "https://www.thinglink.com/card/" + id
	case EmbedSutori:
		return "https://www.sutori.com/embed/" + id
	case EmbedVimeo:
		return "https://player.vimeo.com/video/" + id
	}
	return ""
}

// youtube watch/share/embed/shorts forms plus the bare 11-char id
var youtubePathRe = regexp.MustCompile(`^/(?:embed|shorts|v)/([A-Za-z0-9_-]{11})`)

// TryParseYoutube extracts a video id from any of the usual youtube URL
// shapes, or from a bare id.
func TryParseYoutube(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if youtubeIDRe.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", &ParseError{Host: "youtube", Input: raw}
	}
	hostname := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	switch hostname {
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); youtubeIDRe.MatchString(v) {
			return v, nil
		}
		if id := firstMatch(youtubePathRe, u.Path); id != "" {
			return id, nil
		}
	case "youtu.be":
		id := strings.TrimPrefix(u.Path, "/")
		if youtubeIDRe.MatchString(id) {
			return id, nil
		}
	}
	return "", &ParseError{Host: "youtube", Input: raw}
}
