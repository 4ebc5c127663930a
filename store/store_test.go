// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/store"
	"github.com/danielhkuo/ballotbox/testutil"
)

func newVote(voterID string, e models.Election, candidate int) models.Vote {
	return models.Vote{
		ID:          uuid.NewString(),
		VoterID:     voterID,
		ElectionID:  e.ID,
		CandidateID: e.Candidates[candidate].ID,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestInsertVoteCountersAndUniqueness(t *testing.T) {
	st := testutil.SetupTestDB(t)
	ctx := context.Background()
	voter := testutil.CreateTestVoter(t, st, "voter@example.com")
	e := testutil.CreateTestElection(t, st, models.StatusActive, "Alice", "Bob")

	counts, err := st.InsertVote(ctx, newVote(voter.ID, e, 0))
	if err != nil {
		t.Fatalf("InsertVote failed: %v", err)
	}
	if counts.CandidateVotes != 1 || counts.ElectionVotes != 1 {
		t.Errorf("Expected counters 1/1 from the insert, got %+v", counts)
	}

	other := testutil.CreateTestVoter(t, st, "other@example.com")
	counts, err = st.InsertVote(ctx, newVote(other.ID, e, 0))
	if err != nil {
		t.Fatalf("InsertVote failed: %v", err)
	}
	if counts.CandidateVotes != 2 || counts.ElectionVotes != 2 {
		t.Errorf("Expected counters 2/2 from the second insert, got %+v", counts)
	}

	_, err = st.InsertVote(ctx, newVote(voter.ID, e, 1))
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate, got %v", err)
	}

	stored, err := st.GetElection(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.TotalVotes != 2 {
		t.Errorf("Expected total 2 after rejected duplicate, got %d", stored.TotalVotes)
	}
	for _, c := range stored.Candidates {
		want := 0
		if c.ID == e.Candidates[0].ID {
			want = 2
		}
		if c.VoteCount != want {
			t.Errorf("Candidate %s: expected %d votes, got %d", c.Name, want, c.VoteCount)
		}
	}
}

func TestInsertVoteForeignCandidate(t *testing.T) {
	st := testutil.SetupTestDB(t)
	ctx := context.Background()
	voter := testutil.CreateTestVoter(t, st, "voter@example.com")
	e1 := testutil.CreateTestElection(t, st, models.StatusActive, "Alice")
	e2 := testutil.CreateTestElection(t, st, models.StatusActive, "Bob")

	v := newVote(voter.ID, e1, 0)
	v.CandidateID = e2.Candidates[0].ID
	if _, err := st.InsertVote(ctx, v); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	// The rolled back insert leaves the voter free to vote properly
	if _, err := st.InsertVote(ctx, newVote(voter.ID, e1, 0)); err != nil {
		t.Fatalf("InsertVote after rollback failed: %v", err)
	}
}

func TestDeleteProfileDecrementsCounters(t *testing.T) {
	st := testutil.SetupTestDB(t)
	ctx := context.Background()
	voter := testutil.CreateTestVoter(t, st, "voter@example.com")
	e := testutil.CreateTestElection(t, st, models.StatusActive, "Alice")

	if _, err := st.InsertVote(ctx, newVote(voter.ID, e, 0)); err != nil {
		t.Fatal(err)
	}
	if err := st.DeleteProfile(ctx, voter.ID); err != nil {
		t.Fatalf("DeleteProfile failed: %v", err)
	}

	stored, _ := st.GetElection(ctx, e.ID)
	if stored.TotalVotes != 0 || stored.Candidates[0].VoteCount != 0 {
		t.Errorf("Expected counters back at 0, got %d/%d", stored.TotalVotes, stored.Candidates[0].VoteCount)
	}

	if err := st.DeleteProfile(ctx, voter.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDuplicateEmail(t *testing.T) {
	st := testutil.SetupTestDB(t)
	testutil.CreateTestVoter(t, st, "voter@example.com")

	p := models.Profile{
		ID: uuid.NewString(), Email: "VOTER@example.com", FullName: "Again",
		Role: models.RoleVoter, Language: "en", Active: true, CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateProfile(context.Background(), p); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for case-insensitive email, got %v", err)
	}
}

func TestSupportReadState(t *testing.T) {
	st := testutil.SetupTestDB(t)
	ctx := context.Background()
	voter := testutil.CreateTestVoter(t, st, "voter@example.com")
	admin1 := testutil.CreateTestAdmin(t, st)
	admin2 := testutil.CreateTestAdmin(t, st)

	if _, err := st.LastAdminReplier(ctx, voter.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound before any reply, got %v", err)
	}

	base := time.Now().UTC().Add(-time.Hour)
	msgs := []models.SupportMessage{
		{SenderID: voter.ID, ReceiverID: &admin1.ID},
		{SenderID: voter.ID, ReceiverID: &admin1.ID},
		{SenderID: admin1.ID, ReceiverID: &voter.ID, IsFromAdmin: true},
		{SenderID: admin2.ID, ReceiverID: &voter.ID, IsFromAdmin: true},
	}
	for i, m := range msgs {
		m.ID = uuid.NewString()
		m.SenderName = "someone"
		m.Body = "hello"
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := st.InsertMessage(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	last, err := st.LastAdminReplier(ctx, voter.ID)
	if err != nil || last != admin2.ID {
		t.Errorf("Expected last replier %s, got %s (%v)", admin2.ID, last, err)
	}

	changed, err := st.MarkInboundRead(ctx, voter.ID)
	if err != nil || len(changed) != 2 {
		t.Fatalf("Expected 2 inbound marked read, got %d (%v)", len(changed), err)
	}
	for _, m := range changed {
		if !m.Read || m.IsFromAdmin || m.SenderID != voter.ID {
			t.Errorf("Unexpected changed message %+v", m)
		}
	}
	if !changed[0].CreatedAt.Before(changed[1].CreatedAt) {
		t.Error("Expected changed messages oldest first")
	}
	changed, _ = st.MarkInboundRead(ctx, voter.ID)
	if len(changed) != 0 {
		t.Errorf("Expected second mark to update nothing, got %d", len(changed))
	}

	changed, err = st.MarkAdminRepliesRead(ctx, voter.ID)
	if err != nil || len(changed) != 2 {
		t.Errorf("Expected 2 replies marked read, got %d (%v)", len(changed), err)
	}

	all, _ := st.MessagesForUser(ctx, voter.ID)
	if len(all) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(all))
	}
	for _, m := range all {
		if !m.Read {
			t.Errorf("Message %s still unread", m.ID)
		}
	}
}

func TestListActivityLimit(t *testing.T) {
	st := testutil.SetupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		err := st.InsertActivity(ctx, models.ActivityLog{
			ID: uuid.NewString(), Action: models.ActionLogin, Details: "login",
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	logs, err := st.ListActivity(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(logs))
	}
	if !logs[0].CreatedAt.After(logs[1].CreatedAt) {
		t.Error("Expected newest entry first")
	}

	all, _ := st.ListActivity(ctx, 0)
	if len(all) != 3 {
		t.Errorf("Expected 3 entries without limit, got %d", len(all))
	}
}
