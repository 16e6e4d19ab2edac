package sharepoints

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusPending         Status = "pending"
	StatusInProgress      Status = "in_progress"
	StatusCompleted       Status = "completed"
	StatusExpired         Status = "expired"
	StatusCancelled       Status = "cancelled"
	StatusRejected        Status = "rejected"
	StatusDisapproved     Status = "disapproved"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingApproval, StatusPending, StatusInProgress, StatusCompleted,
		StatusExpired, StatusCancelled, StatusRejected, StatusDisapproved:
		return true
	}
	return false
}

// Terminal statuses are never reported as overdue.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusDisapproved || s == StatusCancelled
}

type Action string

const (
	ActionCreated     Action = "created"
	ActionUpdated     Action = "updated"
	ActionSigned      Action = "signed"
	ActionApproved    Action = "approved"
	ActionRejected    Action = "rejected"
	ActionDisapproved Action = "disapproved"
	ActionRelaunched  Action = "relaunched"
)

const (
	maxTitleLength     = 200
	maxCommentLength   = 1000
	maxSignatureLength = 500
	maxNoteLength      = 1000
)

// Signer is one entry of usersToSign. A signer is unsigned, signed or disapproved.
type Signer struct {
	User            uuid.UUID  `json:"user" bson:"user"`
	HasSigned       bool       `json:"hasSigned" bson:"hasSigned"`
	SignedAt        *time.Time `json:"signedAt,omitempty" bson:"signedAt,omitempty"`
	SignatureNote   *string    `json:"signatureNote,omitempty" bson:"signatureNote,omitempty"`
	HasDisapproved  bool       `json:"hasDisapproved" bson:"hasDisapproved"`
	DisapprovedAt   *time.Time `json:"disapprovedAt,omitempty" bson:"disapprovedAt,omitempty"`
	DisapprovalNote *string    `json:"disapprovalNote,omitempty" bson:"disapprovalNote,omitempty"`
}

// SharePoint tracks one external document through manager approval and user signatures.
type SharePoint struct {
	ID                uuid.UUID  `json:"id" db:"id" bson:"_id"`
	Title             string     `json:"title" db:"title" bson:"title"`
	Link              string     `json:"link" db:"link" bson:"link"`
	Comment           string     `json:"comment,omitempty" db:"comment" bson:"comment,omitempty"`
	Deadline          time.Time  `json:"deadline" db:"deadline" bson:"deadline"`
	CreationDate      time.Time  `json:"creationDate" db:"creation_date" bson:"creationDate"`
	CreatedBy         uuid.UUID  `json:"createdBy" db:"created_by" bson:"createdBy"`
	ManagersToApprove IDList     `json:"managersToApprove" db:"managers_to_approve" bson:"managersToApprove"`
	ManagerApproved   bool       `json:"managerApproved" db:"manager_approved" bson:"managerApproved"`
	ApprovedBy        *uuid.UUID `json:"approvedBy" db:"approved_by" bson:"approvedBy"`
	ApprovedAt        *time.Time `json:"approvedAt" db:"approved_at" bson:"approvedAt"`
	UsersToSign       Signers    `json:"usersToSign" db:"users_to_sign" bson:"usersToSign"`
	DisapprovalNote   *string    `json:"disapprovalNote" db:"disapproval_note" bson:"disapprovalNote"`
	Status            Status     `json:"status" db:"status" bson:"status"`
	UpdateHistory     History    `json:"updateHistory" db:"update_history" bson:"updateHistory"`
	Version           int        `json:"version" db:"version" bson:"version"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

func (sp *SharePoint) isManager(id uuid.UUID) bool {
	for _, m := range sp.ManagersToApprove {
		if m == id {
			return true
		}
	}
	return false
}

func (sp *SharePoint) signerIndex(id uuid.UUID) int {
	for i := range sp.UsersToSign {
		if sp.UsersToSign[i].User == id {
			return i
		}
	}
	return -1
}

func (sp *SharePoint) signerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(sp.UsersToSign))
	for i, s := range sp.UsersToSign {
		ids[i] = s.User
	}
	return ids
}

// IDList is a list of user references stored as a JSON array.
type IDList []uuid.UUID

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	return json.Marshal([]uuid.UUID(l))
}

func (l *IDList) Scan(src interface{}) error {
	return scanJSON(src, (*[]uuid.UUID)(l))
}

// Signers is the ordered signer list stored as a JSON array.
type Signers []Signer

func (s Signers) Value() (driver.Value, error) {
	if s == nil {
		s = Signers{}
	}
	return json.Marshal([]Signer(s))
}

func (s *Signers) Scan(src interface{}) error {
	return scanJSON(src, (*[]Signer)(s))
}

// History is the append-only audit log stored as a JSON array.
type History []HistoryEntry

func (h History) Value() (driver.Value, error) {
	if h == nil {
		h = History{}
	}
	return json.Marshal([]HistoryEntry(h))
}

func (h *History) Scan(src interface{}) error {
	return scanJSON(src, (*[]HistoryEntry)(h))
}

func scanJSON(src interface{}, dst interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	return json.Unmarshal(data, dst)
}

// CreateRequest is the input of Create.
type CreateRequest struct {
	Title             string      `json:"title"`
	Link              string      `json:"link"`
	Comment           string      `json:"comment"`
	Deadline          *time.Time  `json:"deadline"`
	UsersToSign       []uuid.UUID `json:"usersToSign"`
	ManagersToApprove []uuid.UUID `json:"managersToApprove"`
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Title       *string     `json:"title"`
	Link        *string     `json:"link"`
	Comment     *string     `json:"comment"`
	Deadline    *time.Time  `json:"deadline"`
	UsersToSign []uuid.UUID `json:"usersToSign"`
}

type ApproveRequest struct {
	Approved     *bool  `json:"approved"`
	ApprovalNote string `json:"approvalNote"`
}

type SignRequest struct {
	SignatureNote string `json:"signatureNote"`
}

type DisapproveRequest struct {
	DisapprovalNote string `json:"disapprovalNote"`
}

type RelaunchRequest struct {
	RelaunchComment string `json:"relaunchComment"`
}

// ListQuery carries list filters, sorting and pagination.
type ListQuery struct {
	Status     string
	CreatedBy  *uuid.UUID
	AssignedTo *uuid.UUID
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// SignEligibility is the result of CanUserSign.
type SignEligibility struct {
	CanSign          bool   `json:"canSign"`
	ManagerApproved  bool   `json:"managerApproved"`
	IsAssignedSigner bool   `json:"isAssignedSigner"`
	Reason           string `json:"reason"`
}
