package sharepoints

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"sharepoint-portal/portal-backend/internal/notifications"
	"sharepoint-portal/portal-backend/internal/users"
)

// memRepository keeps deep copies so callers never alias stored state.
type memRepository struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*SharePoint
	failWrite error
}

func newMemRepository() *memRepository {
	return &memRepository{items: map[uuid.UUID]*SharePoint{}}
}

func clone(sp *SharePoint) *SharePoint {
	data, err := json.Marshal(sp)
	if err != nil {
		panic(err)
	}
	var out SharePoint
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

func (r *memRepository) Create(_ context.Context, sp *SharePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	r.items[sp.ID] = clone(sp)
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id uuid.UUID) (*SharePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return clone(sp), nil
}

func (r *memRepository) matching(f Filter) []SharePoint {
	var out []SharePoint
	for _, sp := range r.items {
		if f.Status != nil && sp.Status != *f.Status {
			continue
		}
		if f.CreatedBy != nil && sp.CreatedBy != *f.CreatedBy {
			continue
		}
		if f.AssignedTo != nil && sp.signerIndex(*f.AssignedTo) < 0 {
			continue
		}
		if f.ManagedBy != nil && !sp.isManager(*f.ManagedBy) {
			continue
		}
		if f.ManagerApproved != nil && sp.ManagerApproved != *f.ManagerApproved {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(sp.Title), needle) && !strings.Contains(strings.ToLower(sp.Comment), needle) {
				continue
			}
		}
		if f.OverdueAt != nil && (!sp.Deadline.Before(*f.OverdueAt) || sp.Status.Terminal()) {
			continue
		}
		out = append(out, *clone(sp))
	}
	return out
}

func (r *memRepository) List(_ context.Context, f Filter, s Sort, p Page) ([]SharePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.matching(f)
	sort.Slice(items, func(i, j int) bool {
		var less bool
		switch s.Field {
		case SortTitle:
			less = items[i].Title < items[j].Title
		case SortDeadline:
			less = items[i].Deadline.Before(items[j].Deadline)
		default:
			less = items[i].CreationDate.Before(items[j].CreationDate)
		}
		if s.Desc {
			return !less
		}
		return less
	})
	if p.Offset >= len(items) {
		return nil, nil
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end], nil
}

func (r *memRepository) Count(_ context.Context, f Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matching(f)), nil
}

func (r *memRepository) Update(_ context.Context, sp *SharePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite != nil {
		return r.failWrite
	}
	stored, ok := r.items[sp.ID]
	if !ok || stored.Version != sp.Version {
		return ErrVersionConflict
	}
	sp.Version++
	r.items[sp.ID] = clone(sp)
	return nil
}

func (r *memRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	delete(r.items, id)
	return ok, nil
}

// bump simulates a concurrent writer.
func (r *memRepository) bump(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id].Version++
}

type fakeDirectory struct {
	users map[uuid.UUID]users.User
}

func newFakeDirectory(list ...users.User) *fakeDirectory {
	d := &fakeDirectory{users: map[uuid.UUID]users.User{}}
	for _, u := range list {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) GetByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (d *fakeDirectory) GetByIDs(_ context.Context, ids []uuid.UUID) ([]users.User, error) {
	var out []users.User
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *fakeDirectory) ResolveIdentity(_ context.Context, identity string) (*users.User, error) {
	for _, u := range d.users {
		if u.ID.String() == identity || u.AccountID == identity || u.LicenseID == identity {
			return &u, nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) List(_ context.Context) ([]users.User, error) {
	return nil, errors.New("not implemented")
}

func (d *fakeDirectory) UpdateRoles(_ context.Context, _ uuid.UUID, _ []string) error {
	return errors.New("not implemented")
}

func (d *fakeDirectory) Delete(_ context.Context, _ uuid.UUID) error {
	return errors.New("not implemented")
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notifications.Message
}

func (d *recordingDispatcher) Send(_ context.Context, msg notifications.Message) notifications.Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return notifications.Outcome{Kind: msg.Kind, Recipient: msg.To, Status: notifications.StatusSent}
}

func (d *recordingDispatcher) SendBatch(ctx context.Context, msgs []notifications.Message) []notifications.Outcome {
	out := make([]notifications.Outcome, len(msgs))
	for i, m := range msgs {
		out[i] = d.Send(ctx, m)
	}
	return out
}

func (d *recordingDispatcher) byKind(kind notifications.Kind) []notifications.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []notifications.Message
	for _, m := range d.sent {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func (d *recordingDispatcher) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = nil
}

func recipients(msgs []notifications.Message) []uuid.UUID {
	ids := make([]uuid.UUID, len(msgs))
	for i, m := range msgs {
		ids[i] = m.To.UserID
	}
	return ids
}
