package store

// Chat is one imported conversation container. Records are replaced whole,
// never patched field by field.
type Chat struct {
	ID            string
	Name          string
	IsGroup       bool
	MessageCount  int
	ViewAs        string // participant the chat is viewed as, empty for none
	CreatedAt     int64
	LastOpenedAt  int64
	LastMessageAt int64
}

// Message is one imported utterance or system event. Immutable after import.
type Message struct {
	ID            string
	ChatID        string
	Timestamp     int64
	Sender        string // empty for system events
	Content       string
	Kind          string // text, media, system
	MediaFileName string
	MediaKind     string // image, video, audio, document
}

// MediaBlob holds the raw bytes bound to a media message.
type MediaBlob struct {
	ChatID      string
	MessageID   string
	FileName    string
	ContentType string
	Data        []byte
}

// Record pairs a message with its optional payload for batched writes.
type Record struct {
	Msg  Message
	Blob *MediaBlob
}

// SearchResult holds a message with a search snippet.
type SearchResult struct {
	Message Message
	Snippet string
}
