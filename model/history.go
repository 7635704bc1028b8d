package model

import (
	"sort"

	"github.com/RTech-Solucoes/way-correspondencias-web-sub002/model/status"
)

// History is the ordered audit trail of one obligation, oldest first.
type History struct {
	Transitions []*TransitionRecord `json:"transitions,omitempty"`
	Opinions    []*OpinionRecord    `json:"opinions,omitempty"`
}

// NewHistory sorts records by sequence.
func NewHistory(transitions []*TransitionRecord, opinions []*OpinionRecord) History {
	ret := History{
		Transitions: append([]*TransitionRecord(nil), transitions...),
		Opinions:    append([]*OpinionRecord(nil), opinions...),
	}
	sort.SliceStable(ret.Transitions, func(i, j int) bool { return ret.Transitions[i].Sequence < ret.Transitions[j].Sequence })
	sort.SliceStable(ret.Opinions, func(i, j int) bool { return ret.Opinions[i].Sequence < ret.Opinions[j].Sequence })
	return ret
}

// Empty reports whether no transition was ever recorded.
func (h History) Empty() bool {
	return len(h.Transitions) == 0
}

// Latest returns the most recent transition.
func (h History) Latest() *TransitionRecord {
	if len(h.Transitions) == 0 {
		return nil
	}
	return h.Transitions[len(h.Transitions)-1]
}

// LatestAt returns the most recent transition written at code.
func (h History) LatestAt(code status.Code) *TransitionRecord {
	for i := len(h.Transitions) - 1; i >= 0; i-- {
		if h.Transitions[i].Status == code {
			return h.Transitions[i]
		}
	}
	return nil
}

// At returns transitions written at code, oldest first.
func (h History) At(code status.Code) []*TransitionRecord {
	var ret []*TransitionRecord
	for _, r := range h.Transitions {
		if r.Status == code {
			ret = append(ret, r)
		}
	}
	return ret
}

// AtLevel returns transitions written at code for a given level.
func (h History) AtLevel(code status.Code, level int) []*TransitionRecord {
	var ret []*TransitionRecord
	for _, r := range h.At(code) {
		if r.Level == level {
			ret = append(ret, r)
		}
	}
	return ret
}

// Anchor returns the most recent transition written at anchor that happened
// after the last transition written at current. Once the obligation has been
// routed from current again, an older anchor no longer applies.
func (h History) Anchor(anchor, current status.Code) *TransitionRecord {
	for i := len(h.Transitions) - 1; i >= 0; i-- {
		r := h.Transitions[i]
		switch r.Status {
		case current:
			return nil
		case anchor:
			return r
		}
	}
	return nil
}

// NextSequence returns the sequence for the next record.
func (h History) NextSequence() int64 {
	var max int64
	for _, r := range h.Transitions {
		if r.Sequence > max {
			max = r.Sequence
		}
	}
	for _, r := range h.Opinions {
		if r.Sequence > max {
			max = r.Sequence
		}
	}
	return max + 1
}
