package export

import "testing"

func TestClassifyHeaderSenderSplit(t *testing.T) {
	h := classifyHeader(1000, "Alice: Hello world")
	if h.sender != "Alice" {
		t.Errorf("sender = %q, want Alice", h.sender)
	}
	if h.content != "Hello world" {
		t.Errorf("content = %q", h.content)
	}
	if h.kind != KindText {
		t.Errorf("kind = %q, want text", h.kind)
	}
}

func TestClassifyHeaderSystem(t *testing.T) {
	tests := []struct {
		name string
		rest string
		kind MessageKind
	}{
		{"encryption notice", "Messages and calls are end-to-end encrypted. No one outside of this chat can read or listen to them.", KindSystem},
		{"group created", "Alice created group \"Trip\"", KindSystem},
		{"participant added", "Alice added Bob", KindSystem},
		{"participant left", "Bob left", KindSystem},
		{"subject changed", "Alice changed the subject from \"a\" to \"b\"", KindSystem},
		{"invite link join", "Carol joined using this group's invite link", KindSystem},
		{"security code", "Your security code with Bob changed", KindSystem},
		{"headerless plain text", "just something without a sender", KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := classifyHeader(0, tt.rest)
			if h.sender != "" {
				t.Errorf("sender = %q, want empty", h.sender)
			}
			if h.kind != tt.kind {
				t.Errorf("kind = %q, want %q", h.kind, tt.kind)
			}
		})
	}
}

func TestClassifyHeaderMedia(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantFile  string
		wantKind  MediaKind
		wantMedia bool
	}{
		{"media omitted", "<Media omitted>", "", "", true},
		{"image omitted", "image omitted", "", "", true},
		{"localized omitted", "arquivo de mídia oculto", "", "", true},
		{"file attached", "IMG-20240201-WA0007.jpg (file attached)", "IMG-20240201-WA0007.jpg", MediaImage, true},
		{"verbose attached", "holiday photo.png (file attached)", "holiday photo.png", MediaImage, true},
		{"localized attached", "doc.pdf (arquivo anexado)", "doc.pdf", MediaDocument, true},
		{"bare conventional name", "VID-20240201-WA0001.mp4", "VID-20240201-WA0001.mp4", MediaVideo, true},
		{"plain text", "see the file later", "", "", false},
		{"filename mid-sentence", "I renamed it to notes.txt yesterday", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := classifyHeader(0, "Bob: "+tt.content)
			if tt.wantMedia != (h.kind == KindMedia) {
				t.Fatalf("kind = %q, wantMedia = %v", h.kind, tt.wantMedia)
			}
			if h.mediaFile != tt.wantFile {
				t.Errorf("mediaFile = %q, want %q", h.mediaFile, tt.wantFile)
			}
			if h.mediaKind != tt.wantKind {
				t.Errorf("mediaKind = %q, want %q", h.mediaKind, tt.wantKind)
			}
		})
	}
}

func TestSplitSender(t *testing.T) {
	tests := []struct {
		in     string
		sender string
		ok     bool
	}{
		{"Alice: hi", "Alice", true},
		{"Alice Smith: hi there", "Alice Smith", true},
		{"no delimiter here", "", false},
		{"a:b: no space after first colon", "", false},
		{": empty sender", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sender, _, ok := splitSender(tt.in)
			if ok != tt.ok || sender != tt.sender {
				t.Errorf("splitSender(%q) = (%q, %v), want (%q, %v)", tt.in, sender, ok, tt.sender, tt.ok)
			}
		})
	}
}

func TestMediaKindForName(t *testing.T) {
	tests := []struct {
		name string
		kind MediaKind
		ok   bool
	}{
		{"a.JPG", MediaImage, true},
		{"b.opus", MediaAudio, true},
		{"c.mp4", MediaVideo, true},
		{"d.pdf", MediaDocument, true},
		{"e.exe", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		k, ok := MediaKindForName(tt.name)
		if k != tt.kind || ok != tt.ok {
			t.Errorf("MediaKindForName(%q) = (%q, %v), want (%q, %v)", tt.name, k, ok, tt.kind, tt.ok)
		}
	}
}
