// Package sequencer derives the current turn of a snake draft from the
// committed pick count. It is the only source of turn state: callers always
// recompute from the authoritative count instead of trusting a cached value.
package sequencer

import "github.com/google/uuid"

// Turn identifies who is up and where in the draft they sit.
type Turn struct {
	Participant uuid.UUID
	Round       int // 1-based
	Slot        int // 1-based pick number within the round
	Index       int // position within the draft order for this round
}

// Current returns the turn for the next pick given the fixed participant
// order and the number of picks already committed. The boolean is false once
// picksMade reaches pickLimit (draft over) or when the order is empty.
//
// The order reverses every other round: even 0-indexed rounds walk the order
// forward, odd rounds walk it backward. A pickLimit that is not a multiple
// of the order length simply truncates the final round.
func Current(order []uuid.UUID, picksMade, pickLimit int) (Turn, bool) {
	n := len(order)
	if n == 0 || picksMade < 0 || picksMade >= pickLimit {
		return Turn{}, false
	}

	round := picksMade / n
	slot := picksMade % n

	idx := slot
	if round%2 == 1 {
		idx = n - 1 - slot
	}

	return Turn{
		Participant: order[idx],
		Round:       round + 1,
		Slot:        slot + 1,
		Index:       idx,
	}, true
}
