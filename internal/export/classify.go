package export

import (
	"path/filepath"
	"regexp"
	"strings"
)

// MessageKind classifies a parsed message.
type MessageKind string

const (
	KindText   MessageKind = "text"
	KindMedia  MessageKind = "media"
	KindSystem MessageKind = "system"
)

// MediaKind is the broad media category inferred from a file extension.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
)

// header is a recognized message header line split into its parts.
type header struct {
	ts        int64
	sender    string
	content   string
	kind      MessageKind
	mediaFile string
	mediaKind MediaKind
}

// systemCatalogue matches headerless remainders that represent structural
// chat events. Ordered, first match wins; add dialects here, not in code.
var systemCatalogue = []*regexp.Regexp{
	regexp.MustCompile(`end-to-end encrypted`),
	regexp.MustCompile(`created (the )?group`),
	regexp.MustCompile(`created this group`),
	regexp.MustCompile(`added .+`),
	regexp.MustCompile(`left$`),
	regexp.MustCompile(`removed .+`),
	regexp.MustCompile(`changed the subject`),
	regexp.MustCompile(`changed this group's icon`),
	regexp.MustCompile(`changed the group description`),
	regexp.MustCompile(`joined using this group's invite link`),
	regexp.MustCompile(`You're now an admin`),
	regexp.MustCompile(`security code .*changed`),
	regexp.MustCompile(`changed their phone number`),
	regexp.MustCompile(`pinned a message`),
	regexp.MustCompile(`turned on disappearing messages`),
	regexp.MustCompile(`turned off disappearing messages`),
}

// mediaRule pairs a placeholder matcher with an optional embedded-filename
// extractor. Evaluated in order against sender-attributed content.
type mediaRule struct {
	re   *regexp.Regexp
	file int // capture group index holding a filename, 0 if none
}

var mediaCatalogue = []mediaRule{
	// Attached-file phrasings carry the real filename inline.
	{re: regexp.MustCompile(`^\x{200e}?(\S[^\n]*?\.[A-Za-z0-9]{1,5})\s+\((?:file attached|arquivo anexado)\)`), file: 1},
	// Conventional export naming used as the whole body.
	{re: regexp.MustCompile(`^\x{200e}?((?:IMG|VID|AUD|PTT|DOC|STK)-\d{8}-WA\d{4}\.[A-Za-z0-9]+)\s*$`), file: 1},
	// Localized "omitted" placeholders; no filename to recover.
	{re: regexp.MustCompile(`^\x{200e}?<Media omitted>`)},
	{re: regexp.MustCompile(`^\x{200e}?<?\s*(?i:image|video|audio|GIF|sticker|document|Contact card) omitted`)},
	{re: regexp.MustCompile(`^\x{200e}?<?\s*(?i:imagem|vídeo|áudio|figurinha|documento) ocultad[oa]`)},
	{re: regexp.MustCompile(`^\x{200e}?<?\s*(?i:arquivo de mídia oculto)`)},
}

var mediaExtensions = map[string]MediaKind{
	".jpg": MediaImage, ".jpeg": MediaImage, ".png": MediaImage,
	".gif": MediaImage, ".webp": MediaImage, ".bmp": MediaImage,
	".mp4": MediaVideo, ".mov": MediaVideo, ".avi": MediaVideo,
	".mkv": MediaVideo, ".3gp": MediaVideo, ".webm": MediaVideo,
	".mp3": MediaAudio, ".ogg": MediaAudio, ".opus": MediaAudio,
	".m4a": MediaAudio, ".wav": MediaAudio, ".aac": MediaAudio, ".amr": MediaAudio,
	".pdf": MediaDocument, ".doc": MediaDocument, ".docx": MediaDocument,
	".xls": MediaDocument, ".xlsx": MediaDocument, ".ppt": MediaDocument,
	".pptx": MediaDocument, ".txt": MediaDocument, ".csv": MediaDocument,
	".vcf": MediaDocument,
}

// MediaKindForName infers the broad media category from a filename
// extension. The second return is false for unknown extensions.
func MediaKindForName(name string) (MediaKind, bool) {
	k, ok := mediaExtensions[strings.ToLower(filepath.Ext(name))]
	return k, ok
}

// MediaExtensionAllowed reports whether the extension belongs to the media
// allow-list shared with intake classification.
func MediaExtensionAllowed(name string) bool {
	_, ok := MediaKindForName(name)
	return ok
}

// classifyHeader interprets the remainder of a line whose timestamp already
// matched. A colon-delimited prefix becomes the sender; headerless
// remainders are system events or plain text.
func classifyHeader(ts int64, remainder string) header {
	h := header{ts: ts, kind: KindText}

	if sender, content, ok := splitSender(remainder); ok {
		h.sender = sender
		h.content = content
		if rule, m := matchMedia(content); rule != nil {
			h.kind = KindMedia
			if rule.file > 0 {
				h.mediaFile = m[rule.file]
				if k, ok := MediaKindForName(h.mediaFile); ok {
					h.mediaKind = k
				}
			}
		}
		return h
	}

	h.content = remainder
	if matchSystem(remainder) {
		h.kind = KindSystem
	}
	return h
}

// splitSender extracts a "sender: content" prefix. The sender itself must
// not contain a colon, so timestamps or URLs in the body never masquerade
// as senders.
func splitSender(s string) (sender, content string, ok bool) {
	i := strings.Index(s, ": ")
	if i <= 0 {
		return "", "", false
	}
	name := s[:i]
	if strings.Contains(name, ":") {
		return "", "", false
	}
	return name, s[i+2:], true
}

func matchSystem(s string) bool {
	for _, re := range systemCatalogue {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func matchMedia(s string) (*mediaRule, []string) {
	for i := range mediaCatalogue {
		if m := mediaCatalogue[i].re.FindStringSubmatch(s); m != nil {
			return &mediaCatalogue[i], m
		}
	}
	return nil, nil
}
