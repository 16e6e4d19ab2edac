package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Kind selects the email template.
type Kind string

const (
	KindManagerCreation Kind = "managerCreation"
	KindUserAssignment  Kind = "userAssignment"
	KindDisapproval     Kind = "disapproval"
	KindCompletion      Kind = "completion"
)

// Delivery statuses
const (
	StatusSent   = "SENT"
	StatusFailed = "FAILED"
)

// Recipient is the addressee of a single notification.
type Recipient struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// Params carries the template inputs. Rejected and Relaunched select variants of the
// disapproval and managerCreation templates.
type Params struct {
	SharePointID uuid.UUID `json:"sharepoint_id"`
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	Deadline     time.Time `json:"deadline"`
	ActorName    string    `json:"actor_name"`
	Reason       string    `json:"reason,omitempty"`
	Rejected     bool      `json:"rejected,omitempty"`
	Relaunched   bool      `json:"relaunched,omitempty"`
}

// Message is one notification to one recipient.
type Message struct {
	Kind   Kind      `json:"kind"`
	To     Recipient `json:"to"`
	Params Params    `json:"params"`
}

// Outcome is the per-recipient result of a send attempt.
type Outcome struct {
	Kind      Kind      `json:"kind"`
	Recipient Recipient `json:"recipient"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

func (o Outcome) OK() bool {
	return o.Status == StatusSent
}
