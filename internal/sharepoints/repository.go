package sharepoints

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrVersionConflict is returned by Update when the record changed since it was loaded.
var ErrVersionConflict = errors.New("sharepoint was modified concurrently")

// Filter narrows List and Count. Zero values mean "no constraint".
type Filter struct {
	Status          *Status
	CreatedBy       *uuid.UUID
	AssignedTo      *uuid.UUID
	ManagedBy       *uuid.UUID
	ManagerApproved *bool
	Search          string
	OverdueAt       *time.Time
}

// SortField names a sortable stored field.
type SortField string

const (
	SortTitle           SortField = "title"
	SortDeadline        SortField = "deadline"
	SortCreationDate    SortField = "creationDate"
	SortStatus          SortField = "status"
	SortUpdatedAt       SortField = "updatedAt"
	SortManagerApproved SortField = "managerApproved"
	SortApprovedAt      SortField = "approvedAt"
	SortLink            SortField = "link"
)

var sortColumns = map[SortField]string{
	SortTitle:           "title",
	SortDeadline:        "deadline",
	SortCreationDate:    "creation_date",
	SortStatus:          "status",
	SortUpdatedAt:       "updated_at",
	SortManagerApproved: "manager_approved",
	SortApprovedAt:      "approved_at",
	SortLink:            "link",
}

type Sort struct {
	Field SortField
	Desc  bool
}

type Page struct {
	Offset int
	Limit  int
}

// Repository is the SharePoint document store.
type Repository interface {
	Create(ctx context.Context, sp *SharePoint) error
	// GetByID returns nil, nil when the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*SharePoint, error)
	List(ctx context.Context, filter Filter, sort Sort, page Page) ([]SharePoint, error)
	Count(ctx context.Context, filter Filter) (int, error)
	// Update persists sp if its Version matches the stored one, then increments sp.Version.
	Update(ctx context.Context, sp *SharePoint) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS sharepoints (
	id                  UUID PRIMARY KEY,
	title               VARCHAR(200) NOT NULL,
	link                TEXT NOT NULL,
	comment             TEXT NOT NULL DEFAULT '',
	deadline            TIMESTAMPTZ NOT NULL,
	creation_date       TIMESTAMPTZ NOT NULL,
	created_by          UUID NOT NULL,
	managers_to_approve JSONB NOT NULL DEFAULT '[]',
	manager_approved    BOOLEAN NOT NULL DEFAULT FALSE,
	approved_by         UUID,
	approved_at         TIMESTAMPTZ,
	users_to_sign       JSONB NOT NULL DEFAULT '[]',
	disapproval_note    TEXT,
	status              VARCHAR(32) NOT NULL,
	update_history      JSONB NOT NULL DEFAULT '[]',
	version             INTEGER NOT NULL DEFAULT 1,
	updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sharepoints_status ON sharepoints (status);
CREATE INDEX IF NOT EXISTS idx_sharepoints_created_by ON sharepoints (created_by);
CREATE INDEX IF NOT EXISTS idx_sharepoints_deadline ON sharepoints (deadline);
CREATE INDEX IF NOT EXISTS idx_sharepoints_signers ON sharepoints USING GIN (users_to_sign jsonb_path_ops);
CREATE INDEX IF NOT EXISTS idx_sharepoints_managers ON sharepoints USING GIN (managers_to_approve jsonb_path_ops);
`

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// Migrate creates the sharepoints table and its indexes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate sharepoints: %w", err)
	}
	return nil
}

func (r *postgresRepository) Create(ctx context.Context, sp *SharePoint) error {
	query := `
		INSERT INTO sharepoints (
			id, title, link, comment, deadline, creation_date, created_by,
			managers_to_approve, manager_approved, approved_by, approved_at,
			users_to_sign, disapproval_note, status, update_history, version, updated_at
		) VALUES (
			:id, :title, :link, :comment, :deadline, :creation_date, :created_by,
			:managers_to_approve, :manager_approved, :approved_by, :approved_at,
			:users_to_sign, :disapproval_note, :status, :update_history, :version, :updated_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, sp)
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*SharePoint, error) {
	var sp SharePoint
	err := r.db.GetContext(ctx, &sp, "SELECT * FROM sharepoints WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

// buildWhere renders filter as a WHERE clause with positional arguments.
func buildWhere(filter Filter) (string, []interface{}, error) {
	where := " WHERE 1=1"
	var args []interface{}
	argCount := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, string(*filter.Status))
		argCount++
	}
	if filter.CreatedBy != nil {
		where += fmt.Sprintf(" AND created_by = $%d", argCount)
		args = append(args, *filter.CreatedBy)
		argCount++
	}
	if filter.AssignedTo != nil {
		member, err := json.Marshal([]map[string]uuid.UUID{{"user": *filter.AssignedTo}})
		if err != nil {
			return "", nil, err
		}
		where += fmt.Sprintf(" AND users_to_sign @> $%d::jsonb", argCount)
		args = append(args, string(member))
		argCount++
	}
	if filter.ManagedBy != nil {
		member, err := json.Marshal([]uuid.UUID{*filter.ManagedBy})
		if err != nil {
			return "", nil, err
		}
		where += fmt.Sprintf(" AND managers_to_approve @> $%d::jsonb", argCount)
		args = append(args, string(member))
		argCount++
	}
	if filter.ManagerApproved != nil {
		where += fmt.Sprintf(" AND manager_approved = $%d", argCount)
		args = append(args, *filter.ManagerApproved)
		argCount++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (title ILIKE $%d OR comment ILIKE $%d)", argCount, argCount)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argCount++
	}
	if filter.OverdueAt != nil {
		where += fmt.Sprintf(" AND deadline < $%d AND status NOT IN ('completed', 'rejected', 'disapproved', 'cancelled')", argCount)
		args = append(args, *filter.OverdueAt)
		argCount++
	}
	return where, args, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *postgresRepository) List(ctx context.Context, filter Filter, sort Sort, page Page) ([]SharePoint, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "creation_date"
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}

	query := "SELECT * FROM sharepoints" + where +
		fmt.Sprintf(" ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d", column, direction, len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset)

	var items []SharePoint
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresRepository) Count(ctx context.Context, filter Filter) (int, error) {
	where, args, err := buildWhere(filter)
	if err != nil {
		return 0, err
	}
	var total int
	err = r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM sharepoints"+where, args...)
	return total, err
}

func (r *postgresRepository) Update(ctx context.Context, sp *SharePoint) error {
	query := `
		UPDATE sharepoints SET
			title = :title,
			link = :link,
			comment = :comment,
			deadline = :deadline,
			managers_to_approve = :managers_to_approve,
			manager_approved = :manager_approved,
			approved_by = :approved_by,
			approved_at = :approved_at,
			users_to_sign = :users_to_sign,
			disapproval_note = :disapproval_note,
			status = :status,
			update_history = :update_history,
			updated_at = :updated_at,
			version = version + 1
		WHERE id = :id AND version = :version`
	res, err := r.db.NamedExecContext(ctx, query, sp)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	sp.Version++
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sharepoints WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
