package models

import "time"

// ElectionStatus is derived from an election's schedule, never stored
type ElectionStatus string

// Election status constants
const (
	StatusUpcoming  ElectionStatus = "upcoming"
	StatusActive    ElectionStatus = "active"
	StatusCompleted ElectionStatus = "completed"
)

// Account role constants
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// Activity log actions
const (
	ActionRegister         = "register"
	ActionLogin            = "login"
	ActionProfileUpdated   = "profile_updated"
	ActionAvatarUploaded   = "avatar_uploaded"
	ActionElectionCreated  = "election_created"
	ActionElectionUpdated  = "election_updated"
	ActionElectionEnded    = "election_ended"
	ActionElectionDeleted  = "election_deleted"
	ActionCandidateAdded   = "candidate_added"
	ActionCandidateUpdated = "candidate_updated"
	ActionCandidateDeleted = "candidate_deleted"
	ActionVoteCast         = "vote_cast"
	ActionVoterCreated     = "voter_created"
	ActionVoterUpdated     = "voter_updated"
	ActionVoterDeleted     = "voter_deleted"
	ActionSupportMessage   = "support_message"
)

// Domain types

type Profile struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"` // Never expose in JSON
	FullName       string    `json:"full_name" db:"full_name"`
	RegistrationID *string   `json:"registration_id,omitempty" db:"registration_id"`
	Role           string    `json:"role" db:"role"`
	Language       string    `json:"language" db:"language"`
	AvatarURL      *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	Active         bool      `json:"active" db:"active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// DisplayName is the full name with the registration id appended in
// parentheses when one is set.
func (p Profile) DisplayName() string {
	if p.RegistrationID != nil && *p.RegistrationID != "" {
		return p.FullName + " (" + *p.RegistrationID + ")"
	}
	return p.FullName
}

type Election struct {
	ID          string         `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	StartDate   time.Time      `json:"start_date" db:"start_date"`
	EndDate     time.Time      `json:"end_date" db:"end_date"`
	Status      ElectionStatus `json:"status" db:"-"`
	TotalVotes  int            `json:"total_votes" db:"total_votes"`
	CreatedBy   *string        `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	Candidates  []Candidate    `json:"candidates" db:"-"`
}

type Candidate struct {
	ID         string  `json:"id" db:"id"`
	ElectionID string  `json:"election_id" db:"election_id"`
	Name       string  `json:"name" db:"name"`
	Party      *string `json:"party,omitempty" db:"party"`
	Bio        *string `json:"bio,omitempty" db:"bio"`
	ImageURL   *string `json:"image_url,omitempty" db:"image_url"`
	VoteCount  int     `json:"vote_count" db:"vote_count"`
}

type Vote struct {
	ID          string    `json:"id" db:"id"`
	VoterID     string    `json:"voter_id" db:"voter_id"`
	ElectionID  string    `json:"election_id" db:"election_id"`
	CandidateID string    `json:"candidate_id" db:"candidate_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// VoteCounts are the stored counters right after a vote was written
type VoteCounts struct {
	CandidateVotes int
	ElectionVotes  int
}

type ActivityLog struct {
	ID        string    `json:"id" db:"id"`
	UserID    *string   `json:"user_id,omitempty" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Details   string    `json:"details" db:"details"`
	IPHash    *string   `json:"-" db:"ip_hash"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type SupportMessage struct {
	ID          string    `json:"id" db:"id"`
	SenderID    string    `json:"sender_id" db:"sender_id"`
	SenderName  string    `json:"sender_name" db:"sender_name"`
	ReceiverID  *string   `json:"receiver_id,omitempty" db:"receiver_id"`
	Body        string    `json:"message" db:"body"`
	IsFromAdmin bool      `json:"is_from_admin" db:"is_from_admin"`
	Read        bool      `json:"read" db:"is_read"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// SupportThread groups every message exchanged with one voter. It is
// rebuilt on every read and never persisted.
type SupportThread struct {
	VoterID         string           `json:"voter_id"`
	VoterName       string           `json:"voter_name"`
	Messages        []SupportMessage `json:"messages"`
	LastMessage     SupportMessage   `json:"last_message"`
	LastMessageTime time.Time        `json:"last_message_time"`
	LastActive      string           `json:"last_active"`
	UnreadCount     int              `json:"unread_count"`
}

// Delivery states of a message in a voter's timeline
const (
	DeliverySent     = "sent"
	DeliveryRead     = "read"
	DeliveryReceived = "received"
)

// TimelineMessage is a support message seen from the voter's side
type TimelineMessage struct {
	SupportMessage
	Outgoing bool   `json:"outgoing"`
	Delivery string `json:"delivery"`
}

// Request types

type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	RegistrationID string `json:"registration_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Language *string `json:"language"`
}

type CandidateInput struct {
	Name     string  `json:"name"`
	Party    *string `json:"party"`
	Bio      *string `json:"bio"`
	ImageURL *string `json:"image_url"`
}

type CreateElectionRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	Candidates  []CandidateInput `json:"candidates"`
}

type UpdateElectionRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

type CreateVoterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FullName       string `json:"full_name"`
	RegistrationID string `json:"registration_id"`
}

type UpdateVoterRequest struct {
	FullName       *string `json:"full_name"`
	RegistrationID *string `json:"registration_id"`
	Active         *bool   `json:"active"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

// Response types

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Profile   Profile   `json:"profile"`
}

type CastVoteResponse struct {
	Vote           Vote `json:"vote"`
	CandidateVotes int  `json:"candidate_votes"`
	ElectionVotes  int  `json:"election_votes"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

type UnreadResponse struct {
	Unread int `json:"unread"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
