// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/support"
)

// Tables that publish changes
const (
	TableElections       = "elections"
	TableCandidates      = "candidates"
	TableVotes           = "votes"
	TableSupportMessages = "support_messages"
	TableProfiles        = "profiles"
)

// Change types
const (
	Insert = "INSERT"
	Update = "UPDATE"
	Delete = "DELETE"
)

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrBadFilter    = errors.New("filter must look like column=eq.value")
	ErrTableDenied  = errors.New("table is not available to this account")
)

// Change is one row-level write. Columns carries the values subscribers can
// filter on and is not sent to clients.
type Change struct {
	Table   string            `json:"table"`
	Type    string            `json:"type"`
	ID      string            `json:"id"`
	Row     interface{}       `json:"row,omitempty"`
	Columns map[string]string `json:"-"`
}

func ElectionChange(typ string, e models.Election) Change {
	return Change{Table: TableElections, Type: typ, ID: e.ID, Row: e,
		Columns: map[string]string{"id": e.ID}}
}

func CandidateChange(typ string, c models.Candidate) Change {
	return Change{Table: TableCandidates, Type: typ, ID: c.ID, Row: c,
		Columns: map[string]string{"id": c.ID, "election_id": c.ElectionID}}
}

func VoteChange(v models.Vote) Change {
	return Change{Table: TableVotes, Type: Insert, ID: v.ID, Row: v,
		Columns: map[string]string{
			"id":           v.ID,
			"voter_id":     v.VoterID,
			"election_id":  v.ElectionID,
			"candidate_id": v.CandidateID,
		}}
}

// MessageChange exposes the conversation key as voter_id so a voter can
// follow both sides of their thread with one filter
func MessageChange(typ string, m models.SupportMessage) Change {
	cols := map[string]string{"id": m.ID, "sender_id": m.SenderID}
	if m.ReceiverID != nil {
		cols["receiver_id"] = *m.ReceiverID
	}
	if key, ok := support.ConversationKey(m); ok {
		cols["voter_id"] = key
	}
	return Change{Table: TableSupportMessages, Type: typ, ID: m.ID, Row: m, Columns: cols}
}

func ProfileChange(typ string, p models.Profile) Change {
	return Change{Table: TableProfiles, Type: typ, ID: p.ID, Row: p,
		Columns: map[string]string{"id": p.ID, "role": p.Role}}
}

// Filter restricts a subscription to rows where Column equals Value
type Filter struct {
	Column string
	Value  string
}

// ParseFilter reads "column=eq.value". An empty string is no filter.
func ParseFilter(s string) (*Filter, error) {
	if s == "" {
		return nil, nil
	}
	col, rest, ok := strings.Cut(s, "=")
	if !ok || col == "" {
		return nil, ErrBadFilter
	}
	val, ok := strings.CutPrefix(rest, "eq.")
	if !ok || val == "" {
		return nil, ErrBadFilter
	}
	return &Filter{Column: col, Value: val}, nil
}

func (f Filter) String() string {
	return f.Column + "=eq." + f.Value
}

// Subscription selects the changes one client receives
type Subscription struct {
	Table  string
	Filter *Filter
}

// Matches reports whether c belongs to the subscription
func (s Subscription) Matches(c Change) bool {
	if c.Table != s.Table {
		return false
	}
	if s.Filter == nil {
		return true
	}
	v, ok := c.Columns[s.Filter.Column]
	return ok && v == s.Filter.Value
}

// Authorize checks a requested subscription against the caller's role.
// Admins may follow any table. Voters may follow elections and candidates
// freely, and only their own rows of votes and support_messages: any filter
// they asked for is replaced with one on their own id.
func Authorize(p models.Profile, table string, filter *Filter) (Subscription, error) {
	switch table {
	case TableElections, TableCandidates, TableVotes, TableSupportMessages, TableProfiles:
	default:
		return Subscription{}, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	if p.Role == models.RoleAdmin {
		return Subscription{Table: table, Filter: filter}, nil
	}

	switch table {
	case TableElections, TableCandidates:
		return Subscription{Table: table, Filter: filter}, nil
	case TableVotes, TableSupportMessages:
		return Subscription{Table: table, Filter: &Filter{Column: "voter_id", Value: p.ID}}, nil
	}
	return Subscription{}, ErrTableDenied
}
