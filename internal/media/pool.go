package media

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/matheus3301/chatvault/internal/export"
)

// Candidate is a loose media file offered for correlation: opaque bytes, a
// name, and whatever the name itself reveals (broad kind, calendar instant).
type Candidate struct {
	Name         string
	Data         []byte
	Kind         export.MediaKind
	InferredTime int64 // UnixMilli, 0 when the name carries no timestamp
}

// Conventional export naming: IMG-20240201-WA0007.jpg and friends.
var conventionalName = regexp.MustCompile(`^(?:IMG|VID|AUD|PTT|DOC|STK)-(\d{4})(\d{2})(\d{2})-WA\d+\.[A-Za-z0-9]+$`)

// Verbose screenshot-style naming: "Product Name 2024-02-01 at 09.01.05.png".
var verboseName = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2}) at (\d{1,2})\.(\d{2})\.(\d{2})`)

// NewCandidate builds a Candidate, inferring kind and timestamp from the
// filename alone.
func NewCandidate(name string, data []byte) Candidate {
	c := Candidate{Name: name, Data: data}
	c.Kind, _ = export.MediaKindForName(name)
	c.InferredTime = inferTime(name)
	return c
}

func inferTime(name string) int64 {
	if m := conventionalName.FindStringSubmatch(name); m != nil {
		return dateMilli(m[1], m[2], m[3], "0", "0", "0")
	}
	if m := verboseName.FindStringSubmatch(name); m != nil {
		return dateMilli(m[1], m[2], m[3], m[4], m[5], m[6])
	}
	return 0
}

func dateMilli(y, mo, d, h, mi, s string) int64 {
	yi, _ := strconv.Atoi(y)
	moi, _ := strconv.Atoi(mo)
	di, _ := strconv.Atoi(d)
	hi, _ := strconv.Atoi(h)
	mii, _ := strconv.Atoi(mi)
	si, _ := strconv.Atoi(s)
	return time.Date(yi, time.Month(moi), di, hi, mii, si, 0, time.Local).UnixMilli()
}

// pool holds candidates with one-time claim semantics. A claim transfers
// ownership to exactly one message; later passes never see a claimed file.
type pool struct {
	items     []Candidate
	claimedBy []int // message index, -1 while unclaimed
	claimPass []int // pass number that made the claim
	pass      int
}

// newPool stable-sorts candidates by inferred timestamp ascending, which
// fixes the order the same-day pass walks them in.
func newPool(files []Candidate) *pool {
	items := make([]Candidate, len(files))
	copy(items, files)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].InferredTime < items[j].InferredTime
	})
	claimed := make([]int, len(items))
	for i := range claimed {
		claimed[i] = -1
	}
	return &pool{items: items, claimedBy: claimed, claimPass: make([]int, len(items))}
}

// take claims item i for message msgIdx under the current pass. It fails if
// the file was already claimed, keeping at most one binding per file across
// all passes.
func (p *pool) take(i, msgIdx int) bool {
	if p.claimedBy[i] != -1 {
		return false
	}
	p.claimedBy[i] = msgIdx
	p.claimPass[i] = p.pass
	return true
}

func (p *pool) claimed(i int) bool {
	return p.claimedBy[i] != -1
}

// unclaimed returns the candidates no pass managed to bind.
func (p *pool) unclaimed() []Candidate {
	var rest []Candidate
	for i, c := range p.items {
		if p.claimedBy[i] == -1 {
			rest = append(rest, c)
		}
	}
	return rest
}

func (p *pool) claimedCount() int {
	n := 0
	for _, by := range p.claimedBy {
		if by != -1 {
			n++
		}
	}
	return n
}
