package output

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/inodb/hmmannot/internal/masterfile"
)

// Position is one boundary line waiting to be placed in the sequence.
type Position struct {
	Slot       int  // 0-based insertion slot: number of real bases before the line
	LineNumber int  // content line number in the source, 0 if unknown
	Side       byte // masterfile.SideStart or masterfile.SideEnd
	Record     *masterfile.Record
}

// Line returns the verbatim boundary line this position emits.
func (p Position) Line() string {
	return p.Record.Side(p.Side).Line
}

// criterion compares two positions. ok is false when the criterion does
// not apply and the next one in the chain must decide.
type criterion func(a, b *Position) (result int, ok bool)

// positionOrder is applied in order; the first criterion that applies decides.
var positionOrder = []criterion{
	bySlot,
	byLineNumber,
	byBoundaryText,
}

// ComparePositions orders boundary lines for output.
func ComparePositions(a, b Position) int {
	for _, c := range positionOrder {
		if r, ok := c(&a, &b); ok {
			return r
		}
	}
	return 0
}

// SortPositions sorts ps in output order. Equal positions keep their order.
func SortPositions(ps []Position) {
	slices.SortStableFunc(ps, ComparePositions)
}

func bySlot(a, b *Position) (int, bool) {
	if a.Slot == b.Slot {
		return 0, false
	}
	return cmp.Compare(a.Slot, b.Slot), true
}

// byLineNumber keeps source order for lines that both came from a file.
func byLineNumber(a, b *Position) (int, bool) {
	if a.LineNumber == 0 || b.LineNumber == 0 {
		return 0, false
	}
	return cmp.Compare(a.LineNumber, b.LineNumber), true
}

var orderLineRe = regexp.MustCompile(`([\w|\-()?]+)\s*(==>|<==)\s*(start|end)`)

// boundaryKey is the part of a boundary line that drives ordering.
type boundaryKey struct {
	name  string
	arrow string
	which string // "start" or "end"
}

func parseBoundaryKey(line string) (boundaryKey, bool) {
	head, _, _ := strings.Cut(line, ";;")
	head = strings.TrimSpace(head)
	m := orderLineRe.FindStringSubmatch(head)
	if m == nil {
		return boundaryKey{}, false
	}
	return boundaryKey{name: m[1], arrow: m[2], which: m[3]}, true
}

// byBoundaryText nests boundaries that share a slot: on the forward strand
// starts ascend and ends descend by name with ends first; on the reverse
// strand everything mirrors. Anything else falls back to the full line text.
func byBoundaryText(a, b *Position) (int, bool) {
	lineA, lineB := a.Line(), b.Line()
	ka, okA := parseBoundaryKey(lineA)
	kb, okB := parseBoundaryKey(lineB)
	if !okA || !okB || ka.arrow != kb.arrow {
		return strings.Compare(lineA, lineB), true
	}

	switch ka.arrow {
	case "==>":
		switch {
		case ka.which == "start" && kb.which == "start":
			return strings.Compare(ka.name, kb.name), true
		case ka.which == "end" && kb.which == "end":
			return strings.Compare(kb.name, ka.name), true
		default:
			// 'E' < 'S': ends first.
			return cmp.Compare(a.Side, b.Side), true
		}
	default:
		switch {
		case ka.which == "start" && kb.which == "start":
			return strings.Compare(kb.name, ka.name), true
		case ka.which == "end" && kb.which == "end":
			return strings.Compare(ka.name, kb.name), true
		default:
			return cmp.Compare(b.Side, a.Side), true
		}
	}
}
