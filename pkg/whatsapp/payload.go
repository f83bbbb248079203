package whatsapp

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Variant tags the provider shape an inbound webhook body was recognized as.
type Variant int

const (
	VariantUnrecognized Variant = iota
	VariantMetaCloud            // entry[].changes[].value.messages[]
	VariantWebJS                // {event, payload:{from, body, hasMedia, media}}
	VariantBaileys              // {key:{remoteJid,id}, message:{conversation|imageMessage...}}
	VariantTwilio               // From / Body / NumMedia / MediaUrl0 (form fields)
	VariantGeneric              // flat {phone|from, body|message|text, type, media, url...}
)

func (v Variant) String() string {
	switch v {
	case VariantMetaCloud:
		return "meta_cloud"
	case VariantWebJS:
		return "webjs"
	case VariantBaileys:
		return "baileys"
	case VariantTwilio:
		return "twilio"
	case VariantGeneric:
		return "generic"
	default:
		return "unrecognized"
	}
}

var mediaTypes = map[string]bool{
	"image":    true,
	"video":    true,
	"document": true,
	"audio":    true,
}

// Media describes an attachment carried by an inbound message.
type Media struct {
	URL        string
	MimeType   string
	Caption    string
	FileName   string
	ProviderID string
}

// InboundMessage is the provider-independent view of an inbound message.
// Every field is optional.
type InboundMessage struct {
	ID        string
	From      string
	Body      string
	Type      string
	Media     *Media
	Timestamp time.Time
}

// Envelope is the parsed form of one webhook body.
type Envelope struct {
	Variant Variant
	Message InboundMessage

	root gjson.Result
	node gjson.Result // the message object inside root
}

// Parse recognizes the provider shape of raw and extracts the message. It never
// fails: unparseable or unknown bodies come back as VariantUnrecognized.
func Parse(raw []byte) Envelope {
	if !gjson.ValidBytes(raw) {
		return Envelope{Variant: VariantUnrecognized}
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return Envelope{Variant: VariantUnrecognized, root: root}
	}

	switch {
	case root.Get("entry.0.changes.0.value.messages.0").IsObject():
		return parseMetaCloud(root)
	case root.Get("payload").IsObject() && (root.Get("event").Exists() || root.Get("payload.from").Exists()):
		return parseWebJS(root)
	case root.Get("key.remoteJid").Exists() && root.Get("message").IsObject():
		return parseBaileys(root)
	case root.Get("From").Exists() && (root.Get("Body").Exists() || root.Get("NumMedia").Exists()):
		return parseTwilio(root)
	case hasAnyKey(root, "from", "phone", "body", "message", "text", "type", "hasMedia", "media", "url", "fileUrl"):
		return parseGeneric(root)
	}

	return Envelope{Variant: VariantUnrecognized, root: root, node: root}
}

func parseMetaCloud(root gjson.Result) Envelope {
	msg := root.Get("entry.0.changes.0.value.messages.0")
	m := InboundMessage{
		ID:        msg.Get("id").String(),
		From:      NormalizePhone(msg.Get("from").String()),
		Type:      msg.Get("type").String(),
		Body:      firstString(msg, "text.body", "button.text", "interactive.list_reply.title", "interactive.button_reply.title"),
		Timestamp: unixTime(msg.Get("timestamp")),
	}

	if mediaTypes[m.Type] {
		obj := msg.Get(m.Type)
		m.Media = &Media{
			URL:        firstString(obj, "link", "url"),
			MimeType:   obj.Get("mime_type").String(),
			Caption:    obj.Get("caption").String(),
			FileName:   obj.Get("filename").String(),
			ProviderID: obj.Get("id").String(),
		}
		if m.Body == "" {
			m.Body = m.Media.Caption
		}
	}

	return Envelope{Variant: VariantMetaCloud, Message: m, root: root, node: msg}
}

func parseWebJS(root gjson.Result) Envelope {
	p := root.Get("payload")
	m := InboundMessage{
		ID:        firstString(p, "id._serialized", "id"),
		From:      NormalizePhone(p.Get("from").String()),
		Body:      p.Get("body").String(),
		Type:      p.Get("type").String(),
		Timestamp: unixTime(p.Get("timestamp")),
	}

	if media := p.Get("media"); media.IsObject() || p.Get("hasMedia").Bool() {
		m.Media = &Media{
			URL:      firstString(media, "url", "links.download"),
			MimeType: firstString(media, "mimetype", "mimeType"),
			FileName: media.Get("filename").String(),
		}
	}

	return Envelope{Variant: VariantWebJS, Message: m, root: root, node: p}
}

func parseBaileys(root gjson.Result) Envelope {
	msg := root.Get("message")
	m := InboundMessage{
		ID:        root.Get("key.id").String(),
		From:      NormalizePhone(root.Get("key.remoteJid").String()),
		Body:      firstString(msg, "conversation", "extendedTextMessage.text"),
		Type:      "text",
		Timestamp: unixTime(root.Get("messageTimestamp")),
	}

	for t := range mediaTypes {
		obj := msg.Get(t + "Message")
		if !obj.IsObject() {
			continue
		}
		m.Type = t
		m.Media = &Media{
			URL:      obj.Get("url").String(),
			MimeType: obj.Get("mimetype").String(),
			Caption:  obj.Get("caption").String(),
			FileName: obj.Get("fileName").String(),
		}
		if m.Body == "" {
			m.Body = m.Media.Caption
		}
		break
	}

	return Envelope{Variant: VariantBaileys, Message: m, root: root, node: root}
}

func parseTwilio(root gjson.Result) Envelope {
	m := InboundMessage{
		ID:   firstString(root, "MessageSid", "SmsMessageSid"),
		From: NormalizePhone(root.Get("From").String()),
		Body: root.Get("Body").String(),
		Type: "text",
	}

	if root.Get("NumMedia").Int() > 0 {
		m.Media = &Media{
			URL:      root.Get("MediaUrl0").String(),
			MimeType: root.Get("MediaContentType0").String(),
		}
		m.Type = mediaTypeFromMime(m.Media.MimeType)
	}

	return Envelope{Variant: VariantTwilio, Message: m, root: root, node: root}
}

func parseGeneric(root gjson.Result) Envelope {
	m := InboundMessage{
		ID:        firstString(root, "messageId", "message_id", "id"),
		From:      NormalizePhone(firstString(root, "from", "phone", "sender")),
		Body:      genericBody(root),
		Type:      root.Get("type").String(),
		Timestamp: unixTime(root.Get("timestamp")),
	}

	if probeMedia(root) {
		media := root.Get("media")
		m.Media = &Media{
			URL:      firstString(root, "url", "fileUrl", "media.url", "media.links.download"),
			MimeType: firstString(root, "mimetype", "mimeType", "media.mimetype", "media.mimeType"),
			Caption:  root.Get("caption").String(),
			FileName: media.Get("filename").String(),
		}
	}

	return Envelope{Variant: VariantGeneric, Message: m, root: root, node: root}
}

func genericBody(root gjson.Result) string {
	for _, path := range []string{"body", "message", "text", "text.body", "caption"} {
		if v := root.Get(path); v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}

// NormalizePhone strips provider decorations from a sender identifier:
// "whatsapp:" prefixes and "@c.us" / "@s.whatsapp.net" style suffixes.
func NormalizePhone(from string) string {
	from = strings.TrimSpace(from)
	from = strings.TrimPrefix(from, "whatsapp:")
	if i := strings.Index(from, "@"); i >= 0 {
		from = from[:i]
	}
	// Baileys device suffix, e.g. "6591234567:12"
	if i := strings.Index(from, ":"); i >= 0 {
		from = from[:i]
	}
	return from
}

func mediaTypeFromMime(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "video/"):
		return "video"
	case strings.HasPrefix(mime, "audio/"):
		return "audio"
	case mime != "":
		return "document"
	}
	return "text"
}

func firstString(r gjson.Result, paths ...string) string {
	for _, path := range paths {
		v := r.Get(path)
		if (v.Type == gjson.String || v.Type == gjson.Number) && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func hasAnyKey(r gjson.Result, keys ...string) bool {
	for _, k := range keys {
		if r.Get(k).Exists() {
			return true
		}
	}
	return false
}

func unixTime(r gjson.Result) time.Time {
	if !r.Exists() {
		return time.Time{}
	}
	secs := r.Int()
	if secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
