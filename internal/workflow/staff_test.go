package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockside/receiving/internal/backend"
	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

var staffList = []model.StaffRecord{
	{ID: 1, Username: "sam", DisplayName: "Sam Carter", Role: model.RoleManager, Active: true},
	{ID: 2, Username: "lee", DisplayName: "Lee Park", Role: model.RoleStaff, Active: true},
	{ID: 3, Username: "kim", DisplayName: "Kim Ng", Role: model.RoleManager, Active: true},
	{ID: 4, Username: "ash", DisplayName: "Ash Doe", Role: model.RoleStaff, Active: false},
}

func staffController(t *testing.T, role model.Role) (*Controller, *backend.MockClient) {
	t.Helper()
	mock := backend.NewMockClient()
	mock.ListStaffFn = func(context.Context) ([]model.StaffRecord, error) {
		return staffList, nil
	}
	c := newTestController(t, mock)
	loginAs(t, c, mock, role)
	require.NoError(t, c.Handle(context.Background(), OpenStaff{}))
	return c, mock
}

func TestOpenStaff(t *testing.T) {
	c, mock := staffController(t, model.RoleManager)

	snap := c.Snapshot()
	assert.Equal(t, ScreenStaffMgmt, snap.Screen)
	assert.Equal(t, 1, mock.Calls("ListStaff"))
	require.Len(t, snap.Staffing.Members, 4)

	byID := make(map[int]StaffMemberView)
	for _, m := range snap.Staffing.Members {
		byID[m.Record.ID] = m
	}
	assert.True(t, byID[1].IsSelf)
	assert.False(t, byID[1].CanManage, "nobody manages themselves")
	assert.True(t, byID[2].CanManage)
	assert.False(t, byID[3].CanManage, "managers only manage plain staff")
}

func TestOpenStaff_LoadFailure(t *testing.T) {
	mock := backend.NewMockClient()
	mock.ListStaffFn = func(context.Context) ([]model.StaffRecord, error) {
		return nil, common.ErrOffline
	}
	c := newTestController(t, mock)
	loginAs(t, c, mock, model.RoleAdmin)

	require.Error(t, c.Handle(context.Background(), OpenStaff{}))
	snap := c.Snapshot()
	assert.Equal(t, "Error loading staff list", snap.Staffing.Message)
	assert.Equal(t, "Error loading staff list", snap.Status.Text)
}

// A five character password never reaches the backend.
func TestSaveStaff_PasswordLength(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		wantCalls int
	}{
		{name: "five characters", password: "abcde"},
		{name: "six characters", password: "abcdef", wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := staffController(t, model.RoleManager)
			ctx := context.Background()

			require.NoError(t, c.Handle(ctx, EditStaff{}))
			err := c.Handle(ctx, SaveStaff{
				Username:    "new",
				DisplayName: "New Person",
				Password:    tt.password,
				Role:        model.RoleStaff,
			})

			assert.Equal(t, tt.wantCalls, mock.Calls("CreateStaff"))
			if tt.wantCalls == 0 {
				assert.ErrorIs(t, err, common.ErrValidation)
				assert.Equal(t, "Password must be at least 6 characters", c.Snapshot().Status.Text)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, c.Snapshot().Staffing.Form)
			assert.Equal(t, 2, mock.Calls("ListStaff"), "list reloads after save")
			assert.Equal(t, []service.CreateStaffRequest{{
				Username: "new", DisplayName: "New Person", Password: "abcdef", Role: model.RoleStaff,
			}}, mock.CreateStaffRequests())
		})
	}
}

func TestValidateStaff(t *testing.T) {
	tests := []struct {
		name    string
		cmd     SaveStaff
		want    string
		editing bool
	}{
		{name: "valid create", cmd: SaveStaff{Username: "a", DisplayName: "A", Password: "secret"}},
		{name: "missing display name", cmd: SaveStaff{Username: "a", Password: "secret"}, want: "Display name is required"},
		{name: "missing username", cmd: SaveStaff{DisplayName: "A", Password: "secret"}, want: "Username is required"},
		{name: "edit keeps password", cmd: SaveStaff{DisplayName: "A"}, editing: true},
		{name: "edit short password", cmd: SaveStaff{DisplayName: "A", Password: "12345"}, editing: true, want: "Password must be at least 6 characters"},
		{name: "multibyte counted as characters", cmd: SaveStaff{Username: "a", DisplayName: "A", Password: "ééééé"}, want: "Password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateStaff(tt.editing, tt.cmd))
		})
	}
}

func TestSaveStaff_Roles(t *testing.T) {
	t.Run("manager cannot assign admin", func(t *testing.T) {
		c, mock := staffController(t, model.RoleManager)
		ctx := context.Background()

		require.NoError(t, c.Handle(ctx, EditStaff{}))
		assert.Equal(t, []model.Role{model.RoleStaff, model.RoleManager}, c.Snapshot().Staffing.Form.AssignableRoles)

		err := c.Handle(ctx, SaveStaff{Username: "x", DisplayName: "X", Password: "secret1", Role: model.RoleAdmin})
		assert.ErrorIs(t, err, common.ErrForbidden)
		assert.Zero(t, mock.Calls("CreateStaff"))
	})

	t.Run("admin edits a manager", func(t *testing.T) {
		c, mock := staffController(t, model.RoleAdmin)
		ctx := context.Background()

		require.NoError(t, c.Handle(ctx, EditStaff{ID: 3}))
		form := c.Snapshot().Staffing.Form
		require.NotNil(t, form)
		assert.True(t, form.Editing)
		assert.Equal(t, "kim", form.Username)
		assert.Equal(t, "(leave blank to keep current)", form.PasswordHint)

		require.NoError(t, c.Handle(ctx, SaveStaff{DisplayName: " Kim N ", Role: model.RoleAdmin, Active: true}))
		calls := mock.UpdateStaffCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, 3, calls[0].ID)
		require.NotNil(t, calls[0].Request.DisplayName)
		assert.Equal(t, "Kim N", *calls[0].Request.DisplayName)
		assert.Equal(t, model.RoleAdmin, *calls[0].Request.Role)
		assert.Empty(t, calls[0].Request.Password)
	})

	t.Run("manager cannot edit a manager", func(t *testing.T) {
		c, _ := staffController(t, model.RoleManager)
		err := c.Handle(context.Background(), EditStaff{ID: 3})
		assert.ErrorIs(t, err, common.ErrForbidden)
		assert.Equal(t, "You cannot change this staff member", c.Snapshot().Status.Text)
	})
}

func TestSaveStaff_BackendRejects(t *testing.T) {
	c, mock := staffController(t, model.RoleManager)
	ctx := context.Background()
	mock.CreateStaffFn = func(context.Context, service.CreateStaffRequest) error {
		return &service.APIError{Status: 200, Message: "Username already exists"}
	}

	require.NoError(t, c.Handle(ctx, EditStaff{}))
	err := c.Handle(ctx, SaveStaff{Username: "lee", DisplayName: "Lee", Password: "secret1"})
	require.Error(t, err)
	snap := c.Snapshot()
	assert.Equal(t, "Username already exists", snap.Status.Text)
	assert.NotNil(t, snap.Staffing.Form, "form stays open after a failed save")
}

func TestToggleStaff(t *testing.T) {
	c, mock := staffController(t, model.RoleManager)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, ToggleStaff{ID: 4}))
	pending := c.Snapshot().Staffing.Pending
	require.NotNil(t, pending)
	assert.True(t, pending.Enable)
	assert.Equal(t, "Are you sure you want to enable this staff member?", pending.Prompt)

	require.NoError(t, c.Handle(ctx, CancelToggle{}))
	assert.Nil(t, c.Snapshot().Staffing.Pending)
	assert.Empty(t, mock.UpdateStaffCalls())

	require.NoError(t, c.Handle(ctx, ToggleStaff{ID: 2}))
	assert.Equal(t, "Are you sure you want to disable this staff member?", c.Snapshot().Staffing.Pending.Prompt)
	require.NoError(t, c.Handle(ctx, ConfirmToggle{}))

	calls := mock.UpdateStaffCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].ID)
	require.NotNil(t, calls[0].Request.Active)
	assert.False(t, *calls[0].Request.Active)
	assert.Nil(t, calls[0].Request.Role)
	assert.Nil(t, c.Snapshot().Staffing.Pending)

	assert.ErrorIs(t, c.Handle(ctx, ToggleStaff{ID: 1}), common.ErrForbidden)
	assert.ErrorIs(t, c.Handle(ctx, ConfirmToggle{}), common.ErrValidation)
}
