package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Message is one normalized utterance or system event from an export.
type Message struct {
	ID            string
	Timestamp     int64
	Sender        string
	Content       string
	Kind          MessageKind
	MediaFileName string
	MediaKind     MediaKind
}

// Parser folds raw export text into an ordered message sequence. It is fed
// incrementally: all state (the open message, the sender set, the running
// output, a partial trailing line) survives Feed boundaries, so chunking
// granularity never changes the result.
type Parser struct {
	open    *Message
	body    strings.Builder
	senders map[string]struct{}
	out     []Message
	ordinal int
	lines   int
	carry   string
	closed  bool
}

// NewParser returns an empty parser ready to be fed text chunks.
func NewParser() *Parser {
	return &Parser{senders: make(map[string]struct{})}
}

// Feed consumes the next chunk of raw text. A trailing partial line is held
// back until the following chunk (or Close) completes it.
func (p *Parser) Feed(chunk string) {
	data := p.carry + chunk
	for {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		p.processLine(data[:i])
		data = data[i+1:]
	}
	p.carry = data
}

// Close flushes the held-back partial line and the open message. The parser
// accepts no further input afterwards.
func (p *Parser) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.carry != "" {
		p.processLine(p.carry)
		p.carry = ""
	}
	p.finishOpen()
}

func (p *Parser) processLine(raw string) {
	p.lines++
	line := strings.TrimRight(raw, "\r")

	if strings.TrimSpace(line) == "" {
		// Intentional blank line inside a body.
		if p.open != nil {
			p.body.WriteByte('\n')
		}
		return
	}

	ts, rest, ok := MatchHeader(line)
	if !ok {
		// Continuation. A continuation with no open message has nothing
		// to attach to and is dropped.
		if p.open != nil {
			p.body.WriteByte('\n')
			p.body.WriteString(line)
		}
		return
	}

	p.finishOpen()
	h := classifyHeader(ts, rest)
	p.open = &Message{
		ID:            deriveID(h.ts, p.ordinal),
		Timestamp:     h.ts,
		Sender:        h.sender,
		Kind:          h.kind,
		MediaFileName: h.mediaFile,
		MediaKind:     h.mediaKind,
	}
	p.ordinal++
	p.body.Reset()
	p.body.WriteString(h.content)
	if h.sender != "" {
		p.senders[h.sender] = struct{}{}
	}
}

// finishOpen closes the currently open message, right-trimming its body.
// Interior blank lines are preserved; only the message boundary is trimmed.
func (p *Parser) finishOpen() {
	if p.open == nil {
		return
	}
	p.open.Content = strings.TrimRight(p.body.String(), " \t\n")
	p.out = append(p.out, *p.open)
	p.open = nil
	p.body.Reset()
}

// Messages returns the messages closed so far, in source order.
func (p *Parser) Messages() []Message {
	return p.out
}

// Senders returns the distinct non-system sender names, sorted.
func (p *Parser) Senders() []string {
	names := make([]string, 0, len(p.senders))
	for s := range p.senders {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// IsGroup reports whether more than two distinct senders appeared.
func (p *Parser) IsGroup() bool {
	return len(p.senders) > 2
}

// LinesProcessed returns the number of raw lines consumed so far.
func (p *Parser) LinesProcessed() int {
	return p.lines
}

// deriveID builds a message id from the timestamp plus a per-chat ordinal,
// which keeps ids unique under duplicate timestamps.
func deriveID(ts int64, ordinal int) string {
	return fmt.Sprintf("%013d-%06d", ts, ordinal)
}

// ChatNameFromFile derives a provisional chat display name from the export's
// filename: extension stripped, known "chat with" prefixes removed.
func ChatNameFromFile(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, prefix := range []string{
		"WhatsApp Chat with ",
		"WhatsApp Chat - ",
		"Conversa do WhatsApp com ",
		"Chat with ",
	} {
		if strings.HasPrefix(base, prefix) {
			return strings.TrimSpace(base[len(prefix):])
		}
	}
	return strings.TrimSpace(base)
}
