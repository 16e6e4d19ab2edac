package sharepoints

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one audit record. The payload is keyed by Action: only updated entries carry
// PreviousValues and only relaunched entries carry Issues. Entries are built by the constructors below.
type HistoryEntry struct {
	Action         Action          `json:"action" bson:"action"`
	PerformedBy    uuid.UUID       `json:"performedBy" bson:"performedBy"`
	Timestamp      time.Time       `json:"timestamp" bson:"timestamp"`
	Details        string          `json:"details" bson:"details"`
	Comment        *string         `json:"comment,omitempty" bson:"comment,omitempty"`
	PreviousValues *PreviousValues `json:"previousValues,omitempty" bson:"previousValues,omitempty"`
	Issues         []Issue         `json:"issues,omitempty" bson:"issues,omitempty"`
}

// PreviousValues snapshots the fields an update replaced.
type PreviousValues struct {
	Title       *string     `json:"title,omitempty" bson:"title,omitempty"`
	Link        *string     `json:"link,omitempty" bson:"link,omitempty"`
	Comment     *string     `json:"comment,omitempty" bson:"comment,omitempty"`
	Deadline    *time.Time  `json:"deadline,omitempty" bson:"deadline,omitempty"`
	UsersToSign []uuid.UUID `json:"usersToSign,omitempty" bson:"usersToSign,omitempty"`
}

func (p *PreviousValues) fields() []string {
	var f []string
	if p.Title != nil {
		f = append(f, "title")
	}
	if p.Link != nil {
		f = append(f, "link")
	}
	if p.Comment != nil {
		f = append(f, "comment")
	}
	if p.Deadline != nil {
		f = append(f, "deadline")
	}
	if p.UsersToSign != nil {
		f = append(f, "usersToSign")
	}
	return f
}

// Issue is a disapproval or rejection that preceded a relaunch.
type Issue struct {
	Source string    `json:"source" bson:"source"` // signer or manager
	User   uuid.UUID `json:"user" bson:"user"`
	Note   string    `json:"note" bson:"note"`
	At     time.Time `json:"at" bson:"at"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newCreatedEntry(by uuid.UUID, at time.Time, signers, managers int) HistoryEntry {
	return HistoryEntry{
		Action:      ActionCreated,
		PerformedBy: by,
		Timestamp:   at,
		Details:     fmt.Sprintf("SharePoint created with %d signer(s) and %d manager(s)", signers, managers),
	}
}

func newUpdatedEntry(by uuid.UUID, at time.Time, prev PreviousValues) HistoryEntry {
	return HistoryEntry{
		Action:         ActionUpdated,
		PerformedBy:    by,
		Timestamp:      at,
		Details:        "Updated " + strings.Join(prev.fields(), ", "),
		PreviousValues: &prev,
	}
}

func newApprovedEntry(by uuid.UUID, at time.Time, note string) HistoryEntry {
	return HistoryEntry{
		Action:      ActionApproved,
		PerformedBy: by,
		Timestamp:   at,
		Details:     "Approved by manager",
		Comment:     optional(note),
	}
}

func newRejectedEntry(by uuid.UUID, at time.Time, note string) HistoryEntry {
	return HistoryEntry{
		Action:      ActionRejected,
		PerformedBy: by,
		Timestamp:   at,
		Details:     "Rejected by manager",
		Comment:     optional(note),
	}
}

func newSignedEntry(by uuid.UUID, at time.Time, note string) HistoryEntry {
	return HistoryEntry{
		Action:      ActionSigned,
		PerformedBy: by,
		Timestamp:   at,
		Details:     "Document signed",
		Comment:     optional(note),
	}
}

func newDisapprovedEntry(by uuid.UUID, at time.Time, note string) HistoryEntry {
	return HistoryEntry{
		Action:      ActionDisapproved,
		PerformedBy: by,
		Timestamp:   at,
		Details:     "Document disapproved by signer",
		Comment:     optional(note),
	}
}

func newRelaunchedEntry(by uuid.UUID, at time.Time, comment string, issues []Issue) HistoryEntry {
	details := "Relaunched for approval"
	if len(issues) > 0 {
		notes := make([]string, len(issues))
		for i, is := range issues {
			notes[i] = fmt.Sprintf("%s: %s", is.Source, is.Note)
		}
		details = fmt.Sprintf("Relaunched after %d issue(s): %s", len(issues), strings.Join(notes, "; "))
	}
	return HistoryEntry{
		Action:      ActionRelaunched,
		PerformedBy: by,
		Timestamp:   at,
		Details:     details,
		Comment:     optional(comment),
		Issues:      issues,
	}
}

// collectIssues gathers every signer disapproval and every recorded rejection.
func collectIssues(sp *SharePoint) []Issue {
	var issues []Issue
	for _, s := range sp.UsersToSign {
		if !s.HasDisapproved {
			continue
		}
		is := Issue{Source: "signer", User: s.User}
		if s.DisapprovalNote != nil {
			is.Note = *s.DisapprovalNote
		}
		if s.DisapprovedAt != nil {
			is.At = *s.DisapprovedAt
		}
		issues = append(issues, is)
	}
	for _, h := range sp.UpdateHistory {
		if h.Action != ActionRejected {
			continue
		}
		is := Issue{Source: "manager", User: h.PerformedBy, At: h.Timestamp}
		if h.Comment != nil {
			is.Note = *h.Comment
		}
		issues = append(issues, is)
	}
	return issues
}
