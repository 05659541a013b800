package models

import "time"

// InvitationStatus tracks delivery of one parent invitation.
type InvitationStatus string

const (
	InvitationPending InvitationStatus = "pending"
	InvitationSent    InvitationStatus = "sent"
	InvitationFailed  InvitationStatus = "failed"
)

// Invitation asks a parent to submit a home assessment for a child.
type Invitation struct {
	ID          string           `db:"id" json:"id"`
	ClassroomID string           `db:"classroom_id" json:"classroom_id"`
	ChildName   string           `db:"child_name" json:"child_name"`
	ParentEmail string           `db:"parent_email" json:"parent_email"`
	Token       string           `db:"token" json:"-"`
	Status      InvitationStatus `db:"status" json:"status"`
	SentAt      *time.Time       `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}
