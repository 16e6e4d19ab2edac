package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Directory is the user store consulted for identity resolution and reference validation.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	ResolveIdentity(ctx context.Context, identity string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormDirectory struct {
	db *gorm.DB
}

// NewDirectory returns a gorm backed Directory.
func NewDirectory(db *gorm.DB) Directory {
	return &gormDirectory{db: db}
}

// Migrate creates the users table if needed.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("failed to migrate users: %w", err)
	}
	return nil
}

func (d *gormDirectory) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := d.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *gormDirectory) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []User
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// ResolveIdentity accepts any of the three identity forms a caller may present.
func (d *gormDirectory) ResolveIdentity(ctx context.Context, identity string) (*User, error) {
	q := d.db.WithContext(ctx)
	if id, err := uuid.Parse(identity); err == nil {
		q = q.Where("id = ? OR account_id = ? OR license_id = ?", id, identity, identity)
	} else {
		q = q.Where("account_id = ? OR license_id = ?", identity, identity)
	}
	var u User
	err := q.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *gormDirectory) List(ctx context.Context) ([]User, error) {
	var all []User
	err := d.db.WithContext(ctx).Order("username ASC").Find(&all).Error
	return all, err
}

func (d *gormDirectory) UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) error {
	res := d.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("roles", pq.StringArray(roles))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *gormDirectory) Delete(ctx context.Context, id uuid.UUID) error {
	res := d.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
