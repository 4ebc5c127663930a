// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"sync"

	"github.com/danielhkuo/ballotbox/models"
)

// Tally is the denormalized vote count view: per candidate and per election.
// It is fed the stored counters each accepted vote reports and patched with
// votes arriving on the change feed. Counts only move forward: a report
// older than what the tally already holds is ignored.
type Tally struct {
	mu         sync.RWMutex
	candidates map[string]int
	elections  map[string]int
	owner      map[string]string
}

func NewTally() *Tally {
	return &Tally{
		candidates: make(map[string]int),
		elections:  make(map[string]int),
		owner:      make(map[string]string),
	}
}

// Set applies the stored counters reported for vote v
func (t *Tally) Set(v models.Vote, c models.VoteCounts) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.owner[v.CandidateID] = v.ElectionID
	if c.CandidateVotes > t.candidates[v.CandidateID] {
		t.candidates[v.CandidateID] = c.CandidateVotes
	}
	if c.ElectionVotes > t.elections[v.ElectionID] {
		t.elections[v.ElectionID] = c.ElectionVotes
	}
}

// Record counts one vote
func (t *Tally) Record(v models.Vote) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.owner[v.CandidateID] = v.ElectionID
	t.candidates[v.CandidateID]++
	t.elections[v.ElectionID]++
}

// Forget drops every count of one election. Used when stored counts go
// down (deleted candidates or elections) so the next vote reseeds them.
func (t *Tally) Forget(electionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.elections, electionID)
	for id, owner := range t.owner {
		if owner == electionID {
			delete(t.candidates, id)
			delete(t.owner, id)
		}
	}
}

// Reset drops every count
func (t *Tally) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.candidates = make(map[string]int)
	t.elections = make(map[string]int)
	t.owner = make(map[string]string)
}

func (t *Tally) CandidateVotes(candidateID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.candidates[candidateID]
}

func (t *Tally) ElectionVotes(electionID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.elections[electionID]
}
