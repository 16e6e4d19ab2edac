package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sharepoint-portal/portal-backend/internal/exceptions"
)

// MockDirectory is a mock implementation of the Directory interface
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockDirectory) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockDirectory) ResolveIdentity(ctx context.Context, identity string) (*User, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockDirectory) List(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockDirectory) UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) error {
	args := m.Called(ctx, id, roles)
	return args.Error(0)
}

func (m *MockDirectory) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func admin() Principal {
	return Principal{ID: uuid.New(), Username: "root", Roles: []string{RoleAdmin}}
}

func TestUpdateRolesRejectsDroppingOwnAdmin(t *testing.T) {
	dir := new(MockDirectory)
	svc := NewService(dir, zap.NewNop())
	actor := admin()

	err := svc.UpdateRoles(context.Background(), actor, actor.ID, []string{RoleManager})

	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))
	dir.AssertNotCalled(t, "UpdateRoles", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateRolesDeduplicatesAndValidates(t *testing.T) {
	dir := new(MockDirectory)
	svc := NewService(dir, zap.NewNop())
	ctx := context.Background()
	target := uuid.New()

	err := svc.UpdateRoles(ctx, admin(), target, []string{"Wizard"})
	assert.True(t, exceptions.IsKind(err, exceptions.KindValidation))

	dir.On("UpdateRoles", ctx, target, []string{RoleManager, RoleUser}).Return(nil)
	err = svc.UpdateRoles(ctx, admin(), target, []string{RoleManager, RoleUser, RoleManager})
	assert.NoError(t, err)
	dir.AssertExpectations(t)
}

func TestUpdateRolesUnknownUser(t *testing.T) {
	dir := new(MockDirectory)
	svc := NewService(dir, zap.NewNop())
	ctx := context.Background()
	target := uuid.New()

	dir.On("UpdateRoles", ctx, target, []string{RoleUser}).Return(gorm.ErrRecordNotFound)
	err := svc.UpdateRoles(ctx, admin(), target, []string{RoleUser})
	assert.True(t, exceptions.IsKind(err, exceptions.KindNotFound))
}

func TestDeleteUserSelfProtection(t *testing.T) {
	dir := new(MockDirectory)
	svc := NewService(dir, zap.NewNop())
	actor := admin()

	err := svc.DeleteUser(context.Background(), actor, actor.ID)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))
}

func TestNonAdminCannotManageUsers(t *testing.T) {
	dir := new(MockDirectory)
	svc := NewService(dir, zap.NewNop())
	actor := Principal{ID: uuid.New(), Roles: []string{RoleManager}}

	_, err := svc.ListUsers(context.Background(), actor)
	assert.True(t, exceptions.IsKind(err, exceptions.KindForbidden))
	assert.True(t, exceptions.IsKind(svc.DeleteUser(context.Background(), actor, uuid.New()), exceptions.KindForbidden))
}

func TestManagerRolesCoverAdminAndManagerCategories(t *testing.T) {
	set := ManagerRoles()
	for _, r := range []string{RoleAdmin, RoleManager, RoleProjectManager, RoleBusinessManager, RoleDepartmentManager} {
		assert.True(t, set.Contains(r), r)
	}
	assert.False(t, set.Contains(RoleUser))
}
