package sharepoints

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sharepoint-portal/portal-backend/internal/events"
	"sharepoint-portal/portal-backend/internal/exceptions"
	"sharepoint-portal/portal-backend/internal/metrics"
	"sharepoint-portal/portal-backend/internal/notifications"
	"sharepoint-portal/portal-backend/internal/users"
	"sharepoint-portal/portal-backend/pkg/workflows"
)

const (
	defaultPage   = 1
	defaultLimit  = 10
	maxLimit      = 100
	notifyTimeout = 30 * time.Second
)

// Service defines the SharePoint workflow operations. Every operation acts on behalf of an
// authenticated principal and returns records enriched with their completion data.
type Service interface {
	Create(ctx context.Context, actor users.Principal, req CreateRequest) (*View, error)
	Get(ctx context.Context, actor users.Principal, id uuid.UUID) (*View, error)
	List(ctx context.Context, actor users.Principal, q ListQuery) (*ListResult, error)
	MyAssigned(ctx context.Context, actor users.Principal, q ListQuery) (*ListResult, error)
	MyCreated(ctx context.Context, actor users.Principal, q ListQuery) (*ListResult, error)
	MyApprovals(ctx context.Context, actor users.Principal, q ListQuery) (*ListResult, error)
	Update(ctx context.Context, actor users.Principal, id uuid.UUID, req UpdateRequest) (*View, error)
	Delete(ctx context.Context, actor users.Principal, id uuid.UUID) error
	Approve(ctx context.Context, actor users.Principal, id uuid.UUID, req ApproveRequest) (*View, error)
	Sign(ctx context.Context, actor users.Principal, id uuid.UUID, req SignRequest) (*View, error)
	Disapprove(ctx context.Context, actor users.Principal, id uuid.UUID, req DisapproveRequest) (*View, error)
	Relaunch(ctx context.Context, actor users.Principal, id uuid.UUID, req RelaunchRequest) (*View, error)
	CanUserSign(ctx context.Context, actor users.Principal, id uuid.UUID, userID *uuid.UUID) (*SignEligibility, error)
	// Drain blocks until in-flight notifications and events finish or ctx is done.
	Drain(ctx context.Context) error
}

// Options tunes the engine. Zero values select defaults.
type Options struct {
	ManagerRoles  []string
	Clock         func() time.Time
	NotifyTimeout time.Duration
	Events        events.Publisher
}

type engine struct {
	repo          Repository
	directory     users.Directory
	notifier      notifications.Dispatcher
	events        events.Publisher
	logger        *zap.Logger
	managerRoles  users.RoleSet
	transitions   *workflows.StateMachine
	now           func() time.Time
	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

// NewService creates the workflow engine.
func NewService(repo Repository, directory users.Directory, notifier notifications.Dispatcher, logger *zap.Logger, opts Options) Service {
	roles := users.ManagerRoles()
	if len(opts.ManagerRoles) > 0 {
		roles = users.NewRoleSet(opts.ManagerRoles...)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	timeout := opts.NotifyTimeout
	if timeout <= 0 {
		timeout = notifyTimeout
	}
	publisher := opts.Events
	if publisher == nil {
		publisher = events.NewLogPublisher(logger)
	}
	return &engine{
		repo:          repo,
		directory:     directory,
		notifier:      notifier,
		events:        publisher,
		logger:        logger,
		managerRoles:  roles,
		transitions:   workflows.NewStateMachine(),
		now:           func() time.Time { return clock().UTC() },
		notifyTimeout: timeout,
	}
}

func (e *engine) Create(ctx context.Context, actor users.Principal, req CreateRequest) (*View, error) {
	now := e.now()

	title := strings.TrimSpace(req.Title)
	link := strings.TrimSpace(req.Link)
	comment := strings.TrimSpace(req.Comment)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if link == "" {
		return nil, exceptions.Validation("link is required")
	}
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, exceptions.Validation("comment must be at most %d characters", maxCommentLength)
	}
	if req.Deadline == nil {
		return nil, exceptions.Validation("deadline is required")
	}
	if !req.Deadline.After(now) {
		return nil, exceptions.Validation("deadline must be in the future")
	}

	managers := uniqueIDs(req.ManagersToApprove)
	signers := uniqueIDs(req.UsersToSign)
	if len(managers) == 0 {
		return nil, exceptions.Validation("at least one manager must be selected for approval")
	}
	if len(signers) == 0 {
		return nil, exceptions.Validation("at least one user must be selected to sign")
	}

	found, err := e.resolveUsers(ctx, append(append([]uuid.UUID{}, managers...), signers...))
	if err != nil {
		return nil, err
	}
	for _, id := range managers {
		p := found[id].Principal()
		if !p.HasAnyRole(e.managerRoles) {
			return nil, exceptions.Validation("user %s does not hold a manager role", p.Username)
		}
	}

	sp := &SharePoint{
		ID:                uuid.New(),
		Title:             title,
		Link:              link,
		Comment:           comment,
		Deadline:          req.Deadline.UTC(),
		CreationDate:      now,
		CreatedBy:         actor.ID,
		ManagersToApprove: IDList(managers),
		UsersToSign:       newSigners(signers),
		Status:            StatusPendingApproval,
		Version:           1,
		UpdatedAt:         now,
	}
	sp.UpdateHistory = append(sp.UpdateHistory, newCreatedEntry(actor.ID, now, len(signers), len(managers)))
	Refresh(sp, now)

	if err := e.repo.Create(ctx, sp); err != nil {
		return nil, exceptions.Internal("failed to create sharepoint", err)
	}
	e.record(ctx, ActionCreated, sp, actor)

	e.notify(ctx, notifications.KindManagerCreation, managers, e.params(sp, actor))
	return e.view(sp, now), nil
}

func (e *engine) Get(ctx context.Context, _ users.Principal, id uuid.UUID) (*View, error) {
	sp, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.view(sp, e.now()), nil
}

func (e *engine) List(ctx context.Context, _ users.Principal, q ListQuery) (*ListResult, error) {
	filter := Filter{CreatedBy: q.CreatedBy, AssignedTo: q.AssignedTo}
	return e.list(ctx, q, filter)
}

func (e *engine) MyAssigned(ctx context.Context, actor users.Principal, q ListQuery) (*ListResult, error) {
	id := actor.ID
	return e.list(ctx, q, Filter{AssignedTo: &id})
}

func (e *engine) MyCreated(ctx context.Context, actor users.Principal, q ListQuery) (*ListResult, error) {
	id := actor.ID
	return e.list(ctx, q, Filter{CreatedBy: &id})
}

func (e *engine) MyApprovals(ctx context.Context, actor users.Principal, q ListQuery) (*ListResult, error) {
	id := actor.ID
	status := StatusPendingApproval
	approved := false
	q.Status = ""
	return e.list(ctx, q, Filter{ManagedBy: &id, Status: &status, ManagerApproved: &approved})
}

// list applies the query's status, search, sort and paging on top of base.
func (e *engine) list(ctx context.Context, q ListQuery, base Filter) (*ListResult, error) {
	filter := base
	if q.Status != "" {
		status := Status(q.Status)
		if !status.Valid() {
			return nil, exceptions.Validation("unknown status: %s", q.Status)
		}
		filter.Status = &status
	}
	filter.Search = strings.TrimSpace(q.Search)

	sort := Sort{Field: SortCreationDate, Desc: true}
	if q.SortBy != "" {
		field := SortField(q.SortBy)
		if _, ok := sortColumns[field]; !ok {
			return nil, exceptions.Validation("cannot sort by %s", q.SortBy)
		}
		sort.Field = field
	}
	switch strings.ToLower(q.SortOrder) {
	case "", "desc":
	case "asc":
		sort.Desc = false
	default:
		return nil, exceptions.Validation("sortOrder must be asc or desc")
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	total, err := e.repo.Count(ctx, filter)
	if err != nil {
		return nil, exceptions.Internal("failed to count sharepoints", err)
	}
	items, err := e.repo.List(ctx, filter, sort, Page{Offset: (page - 1) * limit, Limit: limit})
	if err != nil {
		return nil, exceptions.Internal("failed to list sharepoints", err)
	}

	now := e.now()
	result := &ListResult{Items: make([]View, 0, len(items)), Pagination: newPagination(page, limit, total)}
	for i := range items {
		result.Items = append(result.Items, *e.view(&items[i], now))
	}
	return result, nil
}

func (e *engine) Update(ctx context.Context, actor users.Principal, id uuid.UUID, req UpdateRequest) (*View, error) {
	sp, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp.CreatedBy != actor.ID && !actor.IsAdmin() {
		return nil, exceptions.Forbidden("only the creator or an admin can update this sharepoint")
	}
	if req.Title == nil && req.Link == nil && req.Comment == nil && req.Deadline == nil && req.UsersToSign == nil {
		return nil, exceptions.Validation("no fields to update")
	}

	now := e.now()
	var prev PreviousValues
	var added []uuid.UUID

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		old := sp.Title
		prev.Title = &old
		sp.Title = title
	}
	if req.Link != nil {
		link := strings.TrimSpace(*req.Link)
		if link == "" {
			return nil, exceptions.Validation("link cannot be empty")
		}
		old := sp.Link
		prev.Link = &old
		sp.Link = link
	}
	if req.Comment != nil {
		comment := strings.TrimSpace(*req.Comment)
		if utf8.RuneCountInString(comment) > maxCommentLength {
			return nil, exceptions.Validation("comment must be at most %d characters", maxCommentLength)
		}
		old := sp.Comment
		prev.Comment = &old
		sp.Comment = comment
	}
	if req.Deadline != nil {
		if !req.Deadline.After(now) {
			return nil, exceptions.Validation("deadline must be in the future")
		}
		old := sp.Deadline
		prev.Deadline = &old
		sp.Deadline = req.Deadline.UTC()
	}
	if req.UsersToSign != nil {
		signers := uniqueIDs(req.UsersToSign)
		if len(signers) == 0 {
			return nil, exceptions.Validation("at least one user must be selected to sign")
		}
		if _, err := e.resolveUsers(ctx, signers); err != nil {
			return nil, err
		}
		prev.UsersToSign = sp.signerIDs()
		for _, s := range signers {
			if sp.signerIndex(s) < 0 {
				added = append(added, s)
			}
		}
		sp.UsersToSign = newSigners(signers)
	}

	sp.UpdateHistory = append(sp.UpdateHistory, newUpdatedEntry(actor.ID, now, prev))
	if err := e.save(ctx, sp, now); err != nil {
		return nil, err
	}
	e.record(ctx, ActionUpdated, sp, actor)

	if sp.ManagerApproved && len(added) > 0 {
		e.notify(ctx, notifications.KindUserAssignment, added, e.params(sp, actor))
	}
	return e.view(sp, now), nil
}

func (e *engine) Delete(ctx context.Context, actor users.Principal, id uuid.UUID) error {
	sp, err := e.load(ctx, id)
	if err != nil {
		return err
	}
	if sp.CreatedBy != actor.ID && !actor.IsAdmin() {
		return exceptions.Forbidden("only the creator or an admin can delete this sharepoint")
	}
	deleted, err := e.repo.Delete(ctx, id)
	if err != nil {
		return exceptions.Internal("failed to delete sharepoint", err)
	}
	if !deleted {
		return exceptions.NotFound("sharepoint", id.String())
	}
	metrics.RecordTransition("deleted")
	e.logger.Info("SharePoint deleted",
		zap.String("sharepoint_id", id.String()),
		zap.String("actor_id", actor.ID.String()))
	return nil
}

func (e *engine) Approve(ctx context.Context, actor users.Principal, id uuid.UUID, req ApproveRequest) (*View, error) {
	sp, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sp.isManager(actor.ID) {
		return nil, exceptions.Forbidden("only a designated manager can approve or reject this sharepoint")
	}
	if req.Approved == nil {
		return nil, exceptions.Validation("approved is required")
	}
	note := strings.TrimSpace(req.ApprovalNote)
	if !*req.Approved && note == "" {
		return nil, exceptions.Validation("comment required for rejection")
	}
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, exceptions.Validation("approval note must be at most %d characters", maxNoteLength)
	}

	now := e.now()
	approver := actor.ID
	sp.ManagerApproved = *req.Approved
	sp.ApprovedBy = &approver
	sp.ApprovedAt = &now

	var entry HistoryEntry
	if *req.Approved {
		sp.Status = StatusPending
		entry = newApprovedEntry(actor.ID, now, note)
	} else {
		sp.Status = StatusRejected
		sp.DisapprovalNote = &note
		entry = newRejectedEntry(actor.ID, now, note)
	}
	sp.UpdateHistory = append(sp.UpdateHistory, entry)

	if err := e.save(ctx, sp, now); err != nil {
		return nil, err
	}
	e.record(ctx, entry.Action, sp, actor)

	params := e.params(sp, actor)
	if *req.Approved {
		e.notify(ctx, notifications.KindUserAssignment, sp.signerIDs(), params)
	} else {
		params.Rejected = true
		params.Reason = note
		e.notify(ctx, notifications.KindDisapproval, []uuid.UUID{sp.CreatedBy}, params)
	}
	return e.view(sp, now), nil
}

func (e *engine) Sign(ctx context.Context, actor users.Principal, id uuid.UUID, req SignRequest) (*View, error) {
	sp, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sp.ManagerApproved {
		return nil, managerApprovalRequired()
	}
	idx := sp.signerIndex(actor.ID)
	if idx < 0 {
		return nil, exceptions.Forbidden("you are not assigned to sign this sharepoint")
	}
	signer := &sp.UsersToSign[idx]
	if signer.HasSigned {
		return nil, exceptions.Validation("you have already signed this sharepoint")
	}
	note := strings.TrimSpace(req.SignatureNote)
	if utf8.RuneCountInString(note) > maxSignatureLength {
		return nil, exceptions.Validation("signature note must be at most %d characters", maxSignatureLength)
	}

	now := e.now()
	before := sp.Status
	signer.HasSigned = true
	signer.SignedAt = &now
	signer.SignatureNote = optional(note)
	sp.UpdateHistory = append(sp.UpdateHistory, newSignedEntry(actor.ID, now, note))

	if err := e.save(ctx, sp, now); err != nil {
		return nil, err
	}
	e.record(ctx, ActionSigned, sp, actor)

	if sp.Status == StatusCompleted && before != StatusCompleted {
		to := uniqueIDs(append([]uuid.UUID{sp.CreatedBy}, sp.ManagersToApprove...))
		e.notify(ctx, notifications.KindCompletion, to, e.params(sp, actor))
	}
	return e.view(sp, now), nil
}

func (e *engine) Disapprove(ctx context.Context, actor users.Principal, id uuid.UUID, req DisapproveRequest) (*View, error) {
	sp, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sp.ManagerApproved {
		return nil, managerApprovalRequired()
	}
	idx := sp.signerIndex(actor.ID)
	if idx < 0 {
		return nil, exceptions.Forbidden("you are not assigned to sign this sharepoint")
	}
	signer := &sp.UsersToSign[idx]
	if signer.HasSigned {
		return nil, exceptions.Validation("you have already signed this sharepoint")
	}
	if signer.HasDisapproved {
		return nil, exceptions.Validation("you have already disapproved this sharepoint")
	}
	note := strings.TrimSpace(req.DisapprovalNote)
	if note == "" {
		return nil, exceptions.Validation("disapproval note is required")
	}
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, exceptions.Validation("disapproval note must be at most %d characters", maxNoteLength)
	}

	now := e.now()
	signer.HasDisapproved = true
	signer.DisapprovedAt = &now
	signer.DisapprovalNote = &note
	sp.Status = StatusDisapproved
	sp.DisapprovalNote = &note
	sp.UpdateHistory = append(sp.UpdateHistory, newDisapprovedEntry(actor.ID, now, note))

	if err := e.save(ctx, sp, now); err != nil {
		return nil, err
	}
	e.record(ctx, ActionDisapproved, sp, actor)

	params := e.params(sp, actor)
	params.Reason = note
	e.notify(ctx, notifications.KindDisapproval, []uuid.UUID{sp.CreatedBy}, params)
	return e.view(sp, now), nil
}

// Relaunch sends a rejected or disapproved SharePoint back to manager approval.
// Disapprovals are cleared; signatures already collected are kept.
func (e *engine) Relaunch(ctx context.Context, actor users.Principal, id uuid.UUID, req RelaunchRequest) (*View, error) {
	sp, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sp.CreatedBy != actor.ID {
		return nil, exceptions.Forbidden("only the creator can relaunch this sharepoint")
	}
	if !e.transitions.CanTransition(string(sp.Status), workflows.StatusPendingApproval) {
		return nil, exceptions.Validation("cannot relaunch a sharepoint with status %s", sp.Status)
	}
	comment := strings.TrimSpace(req.RelaunchComment)
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, exceptions.Validation("relaunch comment must be at most %d characters", maxCommentLength)
	}

	now := e.now()
	issues := collectIssues(sp)

	sp.Status = StatusPendingApproval
	sp.ManagerApproved = false
	sp.ApprovedBy = nil
	sp.ApprovedAt = nil
	sp.DisapprovalNote = nil
	for i := range sp.UsersToSign {
		sp.UsersToSign[i].HasDisapproved = false
		sp.UsersToSign[i].DisapprovedAt = nil
		sp.UsersToSign[i].DisapprovalNote = nil
	}
	sp.UpdateHistory = append(sp.UpdateHistory, newRelaunchedEntry(actor.ID, now, comment, issues))

	if err := e.save(ctx, sp, now); err != nil {
		return nil, err
	}
	e.record(ctx, ActionRelaunched, sp, actor)

	params := e.params(sp, actor)
	params.Relaunched = true
	params.Reason = comment
	e.notify(ctx, notifications.KindManagerCreation, sp.ManagersToApprove, params)
	return e.view(sp, now), nil
}

func (e *engine) CanUserSign(ctx context.Context, actor users.Principal, id uuid.UUID, userID *uuid.UUID) (*SignEligibility, error) {
	sp, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	target := actor.ID
	if userID != nil {
		target = *userID
	}

	res := &SignEligibility{
		ManagerApproved:  sp.ManagerApproved,
		IsAssignedSigner: sp.signerIndex(target) >= 0,
	}
	res.CanSign = res.ManagerApproved && res.IsAssignedSigner
	switch {
	case !res.ManagerApproved:
		res.Reason = "Manager approval is required before signing"
	case !res.IsAssignedSigner:
		res.Reason = "User is not assigned to sign this document"
	default:
		res.Reason = "User can sign this document"
	}
	return res, nil
}

func (e *engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// load fetches a record and recomputes its status before any business rule reads it.
func (e *engine) load(ctx context.Context, id uuid.UUID) (*SharePoint, error) {
	sp, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return nil, exceptions.Internal("failed to load sharepoint", err)
	}
	if sp == nil {
		return nil, exceptions.NotFound("sharepoint", id.String())
	}
	Refresh(sp, e.now())
	return sp, nil
}

// save recomputes the cached status and writes sp with a version check.
func (e *engine) save(ctx context.Context, sp *SharePoint, now time.Time) error {
	Refresh(sp, now)
	sp.UpdatedAt = now
	if err := e.repo.Update(ctx, sp); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return exceptions.Conflict("sharepoint %s was modified by another request, reload and retry", sp.ID)
		}
		return exceptions.Internal("failed to save sharepoint", err)
	}
	return nil
}

func (e *engine) view(sp *SharePoint, now time.Time) *View {
	return &View{SharePoint: sp, CompletionData: Refresh(sp, now)}
}

// record counts, logs and publishes an applied transition.
func (e *engine) record(ctx context.Context, action Action, sp *SharePoint, actor users.Principal) {
	metrics.RecordTransition(string(action))
	e.logger.Info("SharePoint "+string(action),
		zap.String("sharepoint_id", sp.ID.String()),
		zap.String("actor_id", actor.ID.String()),
		zap.String("status", string(sp.Status)))

	event := events.Event{
		ID:           uuid.New(),
		SharePointID: sp.ID,
		Action:       string(action),
		Status:       string(sp.Status),
		PerformedBy:  actor.ID,
		OccurredAt:   sp.UpdatedAt,
	}
	bg := context.WithoutCancel(ctx)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		ctx, cancel := context.WithTimeout(bg, e.notifyTimeout)
		defer cancel()
		if err := e.events.Publish(ctx, event); err != nil {
			e.logger.Warn("Failed to publish workflow event", zap.String("action", event.Action), zap.Error(err))
		}
	}()
}

// resolveUsers loads every id, failing with a validation error naming the first unknown one.
func (e *engine) resolveUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*users.User, error) {
	found, err := e.directory.GetByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, exceptions.Internal("failed to resolve users", err)
	}
	byID := make(map[uuid.UUID]*users.User, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, exceptions.Validation("unknown user id: %s", id)
		}
	}
	return byID, nil
}

func (e *engine) params(sp *SharePoint, actor users.Principal) notifications.Params {
	return notifications.Params{
		SharePointID: sp.ID,
		Title:        sp.Title,
		Link:         sp.Link,
		Deadline:     sp.Deadline,
		ActorName:    actor.Username,
	}
}

// notify resolves recipients and sends one message each in the background. Outcomes are
// logged; nothing here can fail the calling operation.
func (e *engine) notify(ctx context.Context, kind notifications.Kind, to []uuid.UUID, params notifications.Params) {
	if len(to) == 0 {
		return
	}
	ids := append([]uuid.UUID(nil), to...)
	bg := context.WithoutCancel(ctx)

	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		ctx, cancel := context.WithTimeout(bg, e.notifyTimeout)
		defer cancel()

		found, err := e.directory.GetByIDs(ctx, ids)
		if err != nil {
			e.logger.Error("Failed to resolve notification recipients",
				zap.String("kind", string(kind)),
				zap.String("sharepoint_id", params.SharePointID.String()),
				zap.Error(err))
			return
		}
		byID := make(map[uuid.UUID]users.User, len(found))
		for _, u := range found {
			byID[u.ID] = u
		}

		msgs := make([]notifications.Message, 0, len(ids))
		for _, id := range ids {
			u, ok := byID[id]
			if !ok {
				e.logger.Warn("Notification recipient no longer exists",
					zap.String("kind", string(kind)),
					zap.String("user_id", id.String()))
				continue
			}
			msgs = append(msgs, notifications.Message{
				Kind:   kind,
				To:     notifications.Recipient{UserID: u.ID, Name: u.Username, Email: u.Email},
				Params: params,
			})
		}

		failed := 0
		for _, o := range e.notifier.SendBatch(ctx, msgs) {
			if !o.OK() {
				failed++
			}
		}
		if failed > 0 {
			e.logger.Warn("Some notifications were not delivered",
				zap.String("kind", string(kind)),
				zap.String("sharepoint_id", params.SharePointID.String()),
				zap.Int("failed", failed),
				zap.Int("total", len(msgs)))
		}
	}()
}

func managerApprovalRequired() error {
	return exceptions.Forbidden("manager approval is required before signing or disapproving").
		WithCode("MANAGER_APPROVAL_REQUIRED")
}

func validateTitle(title string) error {
	if title == "" {
		return exceptions.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return exceptions.Validation("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func newSigners(ids []uuid.UUID) Signers {
	signers := make(Signers, len(ids))
	for i, id := range ids {
		signers[i] = Signer{User: id}
	}
	return signers
}
