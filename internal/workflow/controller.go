package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/docket"
	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// LogLimit is how many allocation log entries are fetched.
const LogLimit = 50

// DocketScanner recognizes a docket photo. *docket.Scanner satisfies it.
type DocketScanner interface {
	Scan(ctx context.Context, image []byte, progress docket.ProgressFunc) docket.Result
}

// Controller drives the receiving workflow. It is safe for concurrent use:
// state changes happen under one lock and network calls are made with the
// lock released. A response that arrives after logout, expiry or a new
// login is dropped.
type Controller struct {
	backend  service.Backend
	scanner  DocketScanner
	now      func() time.Time
	newKey   func() string
	onChange func()
	busy     map[operation]int
	tasks    *conc.WaitGroup
	st       state
	seq      int
	epoch    int
	mu       sync.Mutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithScanner sets the docket OCR collaborator.
func WithScanner(s DocketScanner) Option {
	return func(c *Controller) {
		c.scanner = s
	}
}

// WithClock overrides the time source used for dates on labels and photos.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithKeyFunc overrides how idempotency keys are generated.
func WithKeyFunc(fn func() string) Option {
	return func(c *Controller) {
		c.newKey = fn
	}
}

// WithOnChange registers a callback invoked after state changes that happen
// outside Handle, such as OCR progress and follow-up task results.
func WithOnChange(fn func()) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// New creates a controller on the login screen.
func New(backend service.Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		now:     time.Now,
		newKey:  uuid.NewString,
		busy:    make(map[operation]int),
		tasks:   conc.NewWaitGroup(),
	}
	c.st = freshState()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func freshState() state {
	return state{
		screen:  ScreenLogin,
		receive: receiveState{drafts: make(map[int]float64)},
	}
}

// Screen returns the current screen.
func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.screen
}

// AwaitPostTasks blocks until every follow-up request has finished.
func (c *Controller) AwaitPostTasks() {
	c.tasks.Wait()
}

// Handle applies a command. Validation failures and backend rejections are
// returned as errors and also shown as the snapshot's status.
func (c *Controller) Handle(ctx context.Context, cmd Command) error {
	switch cmd := cmd.(type) {
	case Start:
		return c.start(ctx)
	case Login:
		return c.login(ctx, cmd)
	}

	if err := c.requireSession(); err != nil {
		return err
	}

	switch cmd := cmd.(type) {
	case Logout:
		return c.logout(ctx)
	case GoHome:
		return c.goHome(ctx)
	case Back:
		return c.back(ctx, cmd.To)

	case OpenReceive:
		return c.openReceive()
	case LookupPO:
		return c.lookupPO(ctx, cmd.Number)
	case ScanDocket:
		return c.scanDocket(ctx, cmd.Image)
	case ToggleItem:
		return c.toggleItem(cmd.Index)
	case SetQuantity:
		return c.setQuantity(cmd.Index, cmd.Quantity)
	case SelectAll:
		return c.selectAll(cmd.Selected)
	case ToggleBackorder:
		return c.toggleBackorder(cmd.Index)
	case ProceedToStorage:
		return c.proceedToStorage(ctx)
	case SelectStorage:
		return c.selectStorage(cmd.ID)
	case SetPhotoMode:
		return c.setPhotoMode(cmd.Mode)
	case AttachGroupPhoto:
		return c.attachGroupPhoto(cmd.Image)
	case RemoveGroupPhoto:
		return c.removeGroupPhoto()
	case AttachItemPhoto:
		return c.attachItemPhoto(cmd.Index, cmd.Image)
	case RemoveItemPhoto:
		return c.removeItemPhoto(cmd.Index)
	case SubmitAllocation:
		return c.submitAllocation(ctx)
	case StartNewPO:
		return c.startNewPO()
	case PrintLabels:
		return c.printLabels()
	case ReprintLabels:
		return c.reprintLabels()
	case GeneratePickingSlip:
		return c.generatePickingSlip(ctx)

	case OpenStock:
		return c.openStock(ctx)
	case BrowseStock:
		return c.browseStock(ctx, cmd.LocationID)
	case OpenPickList:
		return c.openPickList(ctx)
	case OpenMystery:
		return c.show(ScreenMystery)
	case SearchMystery:
		return c.searchMystery(ctx, cmd.Query)
	case OpenLabels:
		return c.openLabels()
	case LookupLabels:
		return c.lookupLabels(ctx, cmd.Number)
	case OpenLogs:
		return c.openLogs(ctx)

	case OpenRelocate:
		return c.openRelocate(ctx)
	case SelectRelocateSource:
		return c.selectRelocateSource(cmd.ID)
	case LoadRelocateItems:
		return c.loadRelocateItems(ctx)
	case ToggleRelocateItem:
		return c.toggleRelocateItem(cmd.Index)
	case SelectAllRelocate:
		return c.selectAllRelocate(cmd.Selected)
	case ProceedToRelocateDest:
		return c.proceedToRelocateDest()
	case SelectRelocateDest:
		return c.selectRelocateDest(cmd.ID)
	case ExecuteRelocate:
		return c.executeRelocate(ctx)
	case StartNewRelocate:
		return c.startNewRelocate()

	case OpenStaff:
		return c.openStaff(ctx)
	case EditStaff:
		return c.editStaff(cmd.ID)
	case CloseStaffForm:
		return c.closeStaffForm()
	case SaveStaff:
		return c.saveStaff(ctx, cmd)
	case ToggleStaff:
		return c.toggleStaff(cmd.ID)
	case ConfirmToggle:
		return c.confirmToggle(ctx)
	case CancelToggle:
		return c.cancelToggle()
	}
	return fmt.Errorf("unhandled command %T", cmd)
}

func (c *Controller) requireSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.st.staff == nil {
		return common.ErrNotAuthenticated
	}
	return nil
}

// actor is the signed-in staff member. Callers hold the lock.
func (c *Controller) actor() model.Identity {
	if c.st.staff == nil {
		return model.Identity{}
	}
	return *c.st.staff
}

// ticket is an outstanding operation and the session it was started in.
type ticket struct {
	op    operation
	epoch int
}

// begin marks op as outstanding. Callers hold the lock.
func (c *Controller) begin(op operation) (ticket, error) {
	if c.inFlight(op) {
		return ticket{}, fmt.Errorf("%w: %s", common.ErrOperationInFlight, op)
	}
	c.busy[op] = c.epoch
	return ticket{op: op, epoch: c.epoch}, nil
}

// end clears the operation and reports whether its session is still the
// current one. Callers hold the lock and drop the result when it is not.
func (c *Controller) end(t ticket) bool {
	if epoch, ok := c.busy[t.op]; ok && epoch == t.epoch {
		delete(c.busy, t.op)
	}
	return !c.ended(t.epoch)
}

// ended reports whether the session that was current at epoch has since
// been replaced. Callers hold the lock.
func (c *Controller) ended(epoch int) bool {
	if epoch != c.epoch {
		slog.Debug("Dropping result from an ended session")
		return true
	}
	return false
}

func (c *Controller) inFlight(op operation) bool {
	_, ok := c.busy[op]
	return ok
}

// reset discards the session. Requests still running belong to the old
// session and their results are dropped. Callers hold the lock.
func (c *Controller) reset() {
	c.st = freshState()
	c.epoch++
	clear(c.busy)
}

// showLocked switches screens and clears the status. Callers hold the lock.
func (c *Controller) showLocked(screen Screen) {
	c.st.screen = screen
	c.st.status = Status{}
}

func (c *Controller) show(screen Screen) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showLocked(screen)
	return nil
}

func (c *Controller) setStatus(kind StatusKind, text string) {
	c.st.status = Status{Kind: kind, Text: text}
}

// reject records a user-facing validation failure. Callers hold the lock.
func (c *Controller) reject(msg string) error {
	c.setStatus(StatusError, msg)
	return common.Validation(msg)
}

// fail records a failed request, expiring the session if the backend no
// longer recognizes it. Callers hold the lock.
func (c *Controller) fail(msg string, err error) error {
	if errors.Is(err, common.ErrNotAuthenticated) {
		c.expire()
		return err
	}
	c.setStatus(StatusError, msg)
	return common.NewUserError(msg, err)
}

func (c *Controller) expire() {
	slog.Info("Session expired")
	c.reset()
	c.setStatus(StatusError, "Session expired, please log in again")
}

// failureText is the backend's own message when it sent one.
func failureText(err error, fallback string) string {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
