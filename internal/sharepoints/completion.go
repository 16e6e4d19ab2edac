package sharepoints

import (
	"math"
	"time"
)

// Completion is the derived progress of a SharePoint.
type Completion struct {
	CompletionPercentage int    `json:"completionPercentage"`
	Status               Status `json:"status"`
	AllUsersSigned       bool   `json:"allUsersSigned"`
	HasDisapprovals      bool   `json:"hasDisapprovals"`
	SignedCount          int    `json:"signedCount"`
	DisapprovedCount     int    `json:"disapprovedCount"`
	TotalSigners         int    `json:"totalSigners"`
	IsOverdue            bool   `json:"isOverdue"`
}

// ComputeCompletion derives progress and status. Manager approval weighs 50% and the signed
// ratio the other 50%. The stored status is consulted only for the rejected and
// pending_approval tiebreaks.
func ComputeCompletion(sp *SharePoint, now time.Time) Completion {
	c := Completion{TotalSigners: len(sp.UsersToSign)}
	for _, s := range sp.UsersToSign {
		if s.HasSigned {
			c.SignedCount++
		}
		if s.HasDisapproved {
			c.DisapprovedCount++
		}
	}

	switch {
	case c.TotalSigners > 0:
		managerProgress := 0.0
		if sp.ManagerApproved {
			managerProgress = 1
		}
		ratio := float64(c.SignedCount) / float64(c.TotalSigners)
		c.CompletionPercentage = int(math.Round((managerProgress*0.5 + ratio*0.5) * 100))
	case sp.ManagerApproved:
		c.CompletionPercentage = 100
	}

	c.AllUsersSigned = c.TotalSigners > 0 && c.SignedCount == c.TotalSigners
	c.HasDisapprovals = c.DisapprovedCount > 0

	switch {
	case c.HasDisapprovals:
		c.Status = StatusDisapproved
	case sp.Status == StatusRejected:
		c.Status = StatusRejected
	case !sp.ManagerApproved && sp.Status == StatusPendingApproval:
		c.Status = StatusPendingApproval
	case c.AllUsersSigned && sp.ManagerApproved:
		c.Status = StatusCompleted
	case c.SignedCount > 0 && sp.ManagerApproved:
		c.Status = StatusInProgress
	case sp.ManagerApproved:
		c.Status = StatusPending
	default:
		c.Status = StatusPendingApproval
	}

	c.IsOverdue = now.After(sp.Deadline) && !c.Status.Terminal()
	return c
}

// Refresh overwrites the cached status with the derived one and returns the completion data.
func Refresh(sp *SharePoint, now time.Time) Completion {
	c := ComputeCompletion(sp, now)
	sp.Status = c.Status
	return c
}

// View is a SharePoint enriched with its completion data.
type View struct {
	*SharePoint
	CompletionData Completion `json:"completionData"`
}

// Pagination describes one page of a list result.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

func newPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < pages,
		HasPrevPage:  page > 1,
	}
}

// ListResult is a page of enriched SharePoints.
type ListResult struct {
	Items      []View     `json:"sharePoints"`
	Pagination Pagination `json:"pagination"`
}
