package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

func (c *Controller) start(ctx context.Context) error {
	c.mu.Lock()
	tk, err := c.begin(opSession)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	status, err := c.backend.AuthStatus(ctx)

	c.mu.Lock()
	if !c.end(tk) {
		c.mu.Unlock()
		return nil
	}
	if err != nil || status == nil || !status.Authenticated || status.Staff == nil {
		if err != nil {
			slog.Warn("Auth check failed", "error", err)
		}
		c.reset()
		c.mu.Unlock()
		return nil
	}
	c.reset()
	c.st.staff = clonePtr(status.Staff)
	c.mu.Unlock()

	slog.Info("Resumed session", "staff", status.Staff.Username)
	return c.goHome(ctx)
}

func (c *Controller) login(ctx context.Context, cmd Login) error {
	username := strings.TrimSpace(cmd.Username)

	c.mu.Lock()
	if username == "" || cmd.Password == "" {
		err := c.reject("Please enter username and password")
		c.mu.Unlock()
		return err
	}
	tk, err := c.begin(opSession)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.setStatus(StatusLoading, "Signing in...")
	c.mu.Unlock()

	staff, err := c.backend.Login(ctx, username, cmd.Password)

	c.mu.Lock()
	if !c.end(tk) {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		msg := "Login failed. Please try again."
		if backendRejected(err) {
			msg = failureText(err, "Invalid username or password")
		}
		c.setStatus(StatusError, msg)
		c.mu.Unlock()
		return common.NewUserError(msg, err)
	}
	c.reset()
	c.st.staff = clonePtr(staff)
	c.mu.Unlock()

	slog.Info("Logged in", "staff", staff.Username, "role", staff.Role)
	return c.goHome(ctx)
}

// backendRejected reports whether the backend answered, as opposed to the
// request never arriving.
func backendRejected(err error) bool {
	var apiErr *service.APIError
	return errors.As(err, &apiErr) && !errors.Is(err, common.ErrServerError)
}

// logout always ends the local session, even when the request fails.
func (c *Controller) logout(ctx context.Context) error {
	if err := c.backend.Logout(ctx); err != nil {
		slog.Warn("Logout request failed", "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	return nil
}

// goHome shows the menu, then refreshes its dashboards. Dashboard failures
// are logged only.
func (c *Controller) goHome(ctx context.Context) error {
	c.mu.Lock()
	c.showLocked(ScreenHome)
	epoch := c.epoch
	c.mu.Unlock()

	var (
		pickList   *model.PickList
		receipting *model.ReceiptingSummary
	)
	var wg conc.WaitGroup
	wg.Go(func() {
		list, err := c.backend.PickList(ctx)
		if err != nil {
			slog.Warn("Failed to load pick list count", "error", err)
			return
		}
		pickList = list
	})
	wg.Go(func() {
		summary, err := c.backend.NeedsReceipting(ctx)
		if err != nil {
			slog.Warn("Failed to load receipting status", "error", err)
			return
		}
		receipting = summary
	})
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended(epoch) {
		return nil
	}
	if pickList != nil {
		c.st.home.pickListCount = pickList.Count
	}
	if receipting != nil {
		c.st.home.receipting = cloneReceipting(receipting)
	}
	return nil
}

func (c *Controller) back(ctx context.Context, to Screen) error {
	if to == ScreenHome {
		return c.goHome(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ok := true
	switch to {
	case ScreenLogin, ScreenProcessing:
		ok = false
	case ScreenVerify:
		ok = c.st.receive.po != nil
	case ScreenStorage:
		ok = len(c.st.receive.selection) > 0
	case ScreenSuccess:
		ok = c.st.success != nil
	case ScreenRelocateItems:
		ok = len(c.st.relocate.items) > 0
	case ScreenRelocateDest:
		ok = len(c.st.relocate.selected) > 0
	case ScreenRelocateSuccess:
		ok = c.st.relocate.result != nil
	case ScreenStaffMgmt:
		if !c.actor().Role.IsManager() {
			return common.ErrForbidden
		}
	}
	if !ok {
		return common.ErrWrongScreen
	}
	c.showLocked(to)
	return nil
}
