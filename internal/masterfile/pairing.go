package masterfile

import "strings"

// slotState tracks what an open annotation is still waiting for.
type slotState int

const (
	awaitingStart slotState = iota // record has its end side
	awaitingEnd                    // record has its start side
	slotComplete
)

func awaiting(side byte) slotState {
	if side == SideEnd {
		return awaitingEnd
	}
	return awaitingStart
}

type slot struct {
	state  slotState
	record *Record
}

// pairingTable matches start and end boundaries that share a (kind, name) key.
// Slots are never reclaimed: a completed slot stays in its list and is skipped,
// so the oldest open slot always wins.
type pairingTable map[string][]*slot

func pairingKey(kind Kind, name string) string {
	return strings.ToLower(string(kind) + "-" + name)
}

// place attaches boundary b as side of the oldest slot under key that is
// waiting for it. When no such slot exists, newRecord is called to build a
// record holding only b, and a slot waiting for the opposite side is opened.
// It returns the record b was attached to and whether it was newly created.
func (t pairingTable) place(key string, side byte, b Boundary, newRecord func() *Record) (*Record, bool) {
	want := awaiting(side)
	for _, s := range t[key] {
		if s.state != want {
			continue
		}
		*s.record.Side(side) = b
		s.state = slotComplete
		return s.record, false
	}

	r := newRecord()
	*r.Side(side) = b
	opposite := awaitingStart
	if side == SideStart {
		opposite = awaitingEnd
	}
	t[key] = append(t[key], &slot{state: opposite, record: r})
	return r, true
}

// open returns the number of slots under key still waiting for a side.
func (t pairingTable) open(key string) int {
	n := 0
	for _, s := range t[key] {
		if s.state != slotComplete {
			n++
		}
	}
	return n
}
