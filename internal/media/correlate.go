package media

import (
	"regexp"
	"strings"
	"time"

	"github.com/matheus3301/chatvault/internal/export"
)

// Binding records one successful claim: the candidate bound to a message,
// and which pass made the claim (1 direct reference, 2 same-day).
type Binding struct {
	MessageID string
	Candidate Candidate
	Pass      int
}

// Result partitions the offered files after all passes have run.
type Result struct {
	Bindings  []Binding
	Unmatched []Candidate
}

// Embedded filename shapes scanned inside media-message content.
var embeddedNames = []*regexp.Regexp{
	regexp.MustCompile(`(\S[^\n]*?\.[A-Za-z0-9]{1,5})\s+\((?:file attached|arquivo anexado)\)`),
	regexp.MustCompile(`(?:IMG|VID|AUD|PTT|DOC|STK)-\d{8}-WA\d+\.[A-Za-z0-9]+`),
}

// Correlate binds candidate files to media messages through ordered passes:
// direct filename reference first, then same-calendar-day proximity, then
// nothing. Messages are enriched in place; a message's kind is never
// changed, and an unbound message or file is not an error.
//
// The same-day pass is deliberately greedy: it claims the first unclaimed
// candidate in timestamp order rather than the nearest one.
func Correlate(msgs []export.Message, files []Candidate) Result {
	p := newPool(files)

	p.pass++
	directPass(msgs, p)
	p.pass++
	sameDayPass(msgs, p)

	var res Result
	for i, c := range p.items {
		if by := p.claimedBy[i]; by != -1 {
			res.Bindings = append(res.Bindings, Binding{MessageID: msgs[by].ID, Candidate: c, Pass: p.claimPass[i]})
		}
	}
	res.Unmatched = p.unclaimed()
	return res
}

// directPass claims candidates whose name appears verbatim (case-insensitive)
// in a media message's content.
func directPass(msgs []export.Message, p *pool) {
	for mi := range msgs {
		m := &msgs[mi]
		if m.Kind != export.KindMedia {
			continue
		}
		name := m.MediaFileName
		if name == "" {
			name = extractEmbeddedName(m.Content)
		}
		if name == "" {
			continue
		}
		for ci := range p.items {
			if p.claimed(ci) {
				continue
			}
			if strings.EqualFold(p.items[ci].Name, name) {
				if p.take(ci, mi) {
					enrich(m, p.items[ci])
				}
				break
			}
		}
	}
}

// sameDayPass binds still-unbound media messages to unclaimed candidates
// whose filename-derived calendar day equals the message's own day.
func sameDayPass(msgs []export.Message, p *pool) {
	bound := make(map[int]bool, len(msgs))
	for _, by := range p.claimedBy {
		if by != -1 {
			bound[by] = true
		}
	}

	for mi := range msgs {
		m := &msgs[mi]
		if m.Kind != export.KindMedia || bound[mi] {
			continue
		}
		day := calendarDay(m.Timestamp)
		for ci := range p.items {
			c := p.items[ci]
			if p.claimed(ci) || c.InferredTime == 0 {
				continue
			}
			if calendarDay(c.InferredTime) != day {
				continue
			}
			if p.take(ci, mi) {
				enrich(m, c)
			}
			break
		}
	}
}

func extractEmbeddedName(content string) string {
	for _, re := range embeddedNames {
		if m := re.FindStringSubmatch(content); m != nil {
			if len(m) > 1 {
				return m[1]
			}
			return m[0]
		}
	}
	return ""
}

// enrich fills the media binding fields on an already-media message.
func enrich(m *export.Message, c Candidate) {
	m.MediaFileName = c.Name
	if k, ok := export.MediaKindForName(c.Name); ok {
		m.MediaKind = k
	}
}

func calendarDay(ts int64) string {
	return time.UnixMilli(ts).In(time.Local).Format("20060102")
}
