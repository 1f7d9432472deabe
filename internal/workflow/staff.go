package workflow

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// MinPasswordLength is the shortest password accepted for an account.
const MinPasswordLength = 6

func (c *Controller) forbid(msg string) error {
	c.setStatus(StatusError, msg)
	return common.NewUserError(msg, common.ErrForbidden)
}

func (c *Controller) openStaff(ctx context.Context) error {
	c.mu.Lock()
	if !c.actor().Role.IsManager() {
		err := c.forbid("Manager access required")
		c.mu.Unlock()
		return err
	}
	c.st.staffMgmt = staffState{message: "Loading staff..."}
	c.showLocked(ScreenStaffMgmt)
	c.mu.Unlock()

	return c.loadStaff(ctx)
}

func (c *Controller) loadStaff(ctx context.Context) error {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	list, err := c.backend.ListStaff(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended(epoch) {
		return nil
	}
	s := &c.st.staffMgmt
	if err != nil {
		slog.Warn("Failed to load staff list", "error", err)
		s.message = "Error loading staff list"
		if backendRejected(err) {
			s.message = "Failed to load staff list"
		}
		return c.fail(s.message, err)
	}
	s.list = list
	s.message = ""
	if len(list) == 0 {
		s.message = "No staff members found"
	}
	return nil
}

// member finds an account in the loaded list. Callers hold the lock.
func (c *Controller) member(id int) (model.StaffRecord, bool) {
	for _, rec := range c.st.staffMgmt.list {
		if rec.ID == id {
			return rec, true
		}
	}
	return model.StaffRecord{}, false
}

// manageable returns the account if the current staff member may change
// it. Callers hold the lock.
func (c *Controller) manageable(id int) (model.StaffRecord, error) {
	if c.st.screen != ScreenStaffMgmt {
		return model.StaffRecord{}, common.ErrWrongScreen
	}
	rec, ok := c.member(id)
	if !ok {
		return model.StaffRecord{}, c.reject("Unknown staff member")
	}
	if !model.CanManage(c.actor(), rec) {
		return model.StaffRecord{}, c.forbid("You cannot change this staff member")
	}
	return rec, nil
}

func (c *Controller) editStaff(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == 0 {
		if c.st.screen != ScreenStaffMgmt {
			return common.ErrWrongScreen
		}
		c.st.staffMgmt.form = &staffForm{role: model.RoleStaff, active: true}
		return nil
	}
	rec, err := c.manageable(id)
	if err != nil {
		return err
	}
	c.st.staffMgmt.form = &staffForm{
		id:          rec.ID,
		username:    rec.Username,
		displayName: rec.DisplayName,
		role:        rec.Role,
		active:      rec.Active,
	}
	return nil
}

func (c *Controller) closeStaffForm() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.staffMgmt.form = nil
	return nil
}

// validateStaff checks the form. Usernames are fixed once created and a
// blank password on edit keeps the current one.
func validateStaff(editing bool, cmd SaveStaff) string {
	switch {
	case strings.TrimSpace(cmd.DisplayName) == "":
		return "Display name is required"
	case !editing && strings.TrimSpace(cmd.Username) == "":
		return "Username is required"
	case !editing && utf8.RuneCountInString(cmd.Password) < MinPasswordLength,
		editing && cmd.Password != "" && utf8.RuneCountInString(cmd.Password) < MinPasswordLength:
		return "Password must be at least 6 characters"
	}
	return ""
}

func (c *Controller) saveStaff(ctx context.Context, cmd SaveStaff) error {
	c.mu.Lock()
	form := c.st.staffMgmt.form
	if form == nil {
		err := c.reject("Open the staff form first")
		c.mu.Unlock()
		return err
	}
	editing := form.id != 0
	if msg := validateStaff(editing, cmd); msg != "" {
		err := c.reject(msg)
		c.mu.Unlock()
		return err
	}
	role := cmd.Role
	if role == "" {
		role = model.RoleStaff
	}
	if _, err := model.ParseRole(string(role)); err != nil {
		err = c.reject("Unknown role")
		c.mu.Unlock()
		return err
	}
	if !model.CanAssign(c.actor(), role) {
		err := c.forbid("Only admins can assign the admin role")
		c.mu.Unlock()
		return err
	}
	tk, err := c.begin(opStaffSave)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	id := form.id
	c.mu.Unlock()

	displayName := strings.TrimSpace(cmd.DisplayName)
	if editing {
		active := cmd.Active
		err = c.backend.UpdateStaff(ctx, id, service.UpdateStaffRequest{
			DisplayName: &displayName,
			Role:        &role,
			Active:      &active,
			Password:    cmd.Password,
		})
	} else {
		err = c.backend.CreateStaff(ctx, service.CreateStaffRequest{
			Username:    strings.TrimSpace(cmd.Username),
			DisplayName: displayName,
			Password:    cmd.Password,
			Role:        role,
		})
	}

	c.mu.Lock()
	if !c.end(tk) {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		slog.Warn("Failed to save staff member", "id", id, "error", err)
		msg := "Error saving staff member"
		if backendRejected(err) {
			msg = failureText(err, "Failed to save staff member")
		}
		err = c.fail(msg, err)
		c.mu.Unlock()
		return err
	}
	c.st.staffMgmt.form = nil
	c.st.status = Status{}
	c.mu.Unlock()

	slog.Info("Saved staff member", "id", id, "role", role)
	return c.loadStaff(ctx)
}

// toggleStaff only records the request; ConfirmToggle sends it.
func (c *Controller) toggleStaff(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.manageable(id)
	if err != nil {
		return err
	}
	c.st.staffMgmt.pending = &pendingToggle{id: rec.ID, enable: !rec.Active}
	return nil
}

func (c *Controller) cancelToggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.staffMgmt.pending = nil
	return nil
}

func (c *Controller) confirmToggle(ctx context.Context) error {
	c.mu.Lock()
	pending := c.st.staffMgmt.pending
	if pending == nil {
		err := c.reject("Nothing to confirm")
		c.mu.Unlock()
		return err
	}
	tk, err := c.begin(opStaffToggle)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.st.staffMgmt.pending = nil
	c.mu.Unlock()

	active := pending.enable
	err = c.backend.UpdateStaff(ctx, pending.id, service.UpdateStaffRequest{Active: &active})

	c.mu.Lock()
	if !c.end(tk) {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		slog.Warn("Failed to update staff status", "id", pending.id, "error", err)
		msg := "Error updating staff status"
		if backendRejected(err) {
			msg = failureText(err, "Failed to update staff status")
		}
		err = c.fail(msg, err)
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	slog.Info("Changed staff status", "id", pending.id, "active", active)
	return c.loadStaff(ctx)
}
