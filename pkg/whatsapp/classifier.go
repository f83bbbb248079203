package whatsapp

import (
	"strings"

	"github.com/tidwall/gjson"
)

// providerMediaPaths are nested, provider-specific message-type fields that
// only appear when the message carries an attachment.
var providerMediaPaths = []string{
	"message.imageMessage",
	"message.videoMessage",
	"message.documentMessage",
	"message.audioMessage",
	"payload.media",
	"entry.0.changes.0.value.messages.0.image",
	"entry.0.changes.0.value.messages.0.video",
	"entry.0.changes.0.value.messages.0.document",
	"entry.0.changes.0.value.messages.0.audio",
}

// HasMedia reports whether a raw webhook body carries an attachment. It is a
// best-effort structural probe: any body, including invalid JSON, is accepted.
func HasMedia(raw []byte) bool {
	return Parse(raw).HasMedia()
}

// HasMedia reports whether the envelope carries an attachment, either through
// the recognized variant or through any of the generic indicators.
func (e Envelope) HasMedia() bool {
	if e.Message.Media != nil || mediaTypes[strings.ToLower(e.Message.Type)] {
		return true
	}
	if probeMedia(e.node) {
		return true
	}
	return probeMedia(e.root)
}

// probeMedia checks one JSON object for every known media indicator. Missing
// fields are misses.
func probeMedia(r gjson.Result) bool {
	if !r.IsObject() {
		return false
	}

	if mediaTypes[strings.ToLower(r.Get("type").String())] {
		return true
	}

	for _, flag := range []string{"hasMedia", "has_media", "isMedia"} {
		if r.Get(flag).Bool() {
			return true
		}
	}

	if media := r.Get("media"); media.IsObject() || (media.Type == gjson.String && media.String() != "") {
		return true
	}

	for _, path := range providerMediaPaths {
		if r.Get(path).IsObject() {
			return true
		}
	}

	for _, field := range []string{"url", "fileUrl", "file_url", "mediaUrl", "MediaUrl0"} {
		if v := r.Get(field); v.Type == gjson.String && v.String() != "" {
			return true
		}
	}

	links := r.Get("media.links")
	if links.IsObject() {
		found := false
		links.ForEach(func(_, value gjson.Result) bool {
			if value.Type == gjson.String && value.String() != "" {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}

	return false
}
