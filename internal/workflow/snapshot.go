package workflow

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// Snapshot is an immutable copy of everything a renderer needs.
type Snapshot struct {
	Staff              *model.Identity
	Success            *SuccessView
	Status             Status
	Busy               []string
	Locations          []model.StorageLocation
	Labels             []model.Label
	Home               HomeView
	Receive            ReceiveView
	LabelLookup        LabelLookupView
	Stock              StockView
	PickList           PickListView
	Mystery            MysteryView
	Relocate           RelocateView
	Staffing           StaffView
	Logs               LogsView
	Screen             Screen
	ShowManagerOptions bool
}

// HomeView is the main menu's dashboards.
type HomeView struct {
	Receipting     *model.ReceiptingSummary
	ReceiptingText string
	PickListCount  int
}

// ItemView is one PO line with its selection state.
type ItemView struct {
	Item        model.LineItem
	Index       int
	Remaining   float64
	Draft       float64
	Quantity    float64
	Selected    bool
	Backordered bool
	HasPhoto    bool
}

// DocketView is the docket scan state.
type DocketView struct {
	Extraction *model.DocketExtraction
	Message    string
	Progress   float64
	Scanning   bool
	Found      bool
	HasPhoto   bool
}

// PhotoView is the delivery photo state.
type PhotoView struct {
	ItemPhotos []int
	Mode       PhotoMode
	HasGroup   bool
}

// ReceiveView is the PO being received.
type ReceiveView struct {
	PO                *model.PurchaseOrder
	Storage           *model.StorageLocation
	DueDate           string
	SelectionText     string
	Items             []ItemView
	Docket            DocketView
	Photos            PhotoView
	SelectedCount     int
	BackorderCount    int
	HasAllocatedItems bool
	Overdue           bool
	CanProceed        bool
	CanAllocate       bool
}

// TaskView is the status of one follow-up request.
type TaskView struct {
	Name   string
	Detail string
	Status TaskStatus
}

// PickingSlipView is the picking slip state on the success screen.
type PickingSlipView struct {
	Message     string
	Status      TaskStatus
	CanGenerate bool
}

// SuccessView summarizes a completed allocation.
type SuccessView struct {
	Summary        string
	StaffName      string
	Verification   string
	GoodsReceived  string
	BackorderText  string
	PhotoText      string
	Tasks          []TaskView
	PickingSlip    PickingSlipView
	SuccessCount   int
	BackorderCount int
	LabelCount     float64
	AllVerified    bool
}

// LabelLookupView is the labels screen.
type LabelLookupView struct {
	PO             *model.PurchaseOrder
	Message        string
	AllocatedItems []model.LineItem
}

// StockView is the stock browser.
type StockView struct {
	Location *model.StorageLocation
	Message  string
	Records  []model.StockRecord
}

// PickListView is the pick list screen.
type PickListView struct {
	List    *model.PickList
	Message string
}

// MysteryView is the delivery search.
type MysteryView struct {
	Query   string
	Message string
	Results []model.MysteryResult
}

// RelocateOutcome summarizes a relocation.
type RelocateOutcome struct {
	Summary   string
	Note      string
	From      string
	To        string
	StaffName string
	Count     int
	Queued    bool
}

// RelocateView is the relocation in progress.
type RelocateView struct {
	Source        *model.StorageLocation
	Dest          *model.StorageLocation
	Result        *RelocateOutcome
	SelectionText string
	Items         []model.StockRecord
	Selected      []int
	Warning       bool
	CanProceed    bool
	CanExecute    bool
}

// StaffMemberView is one account in the staff list.
type StaffMemberView struct {
	Record    model.StaffRecord
	IsSelf    bool
	CanManage bool
}

// StaffFormView is the add or edit account form.
type StaffFormView struct {
	Username        string
	DisplayName     string
	Role            model.Role
	PasswordHint    string
	AssignableRoles []model.Role
	ID              int
	Active          bool
	Editing         bool
}

// PendingToggleView asks the user to confirm enabling or disabling.
type PendingToggleView struct {
	Prompt string
	ID     int
	Enable bool
}

// StaffView is the staff management screen.
type StaffView struct {
	Form    *StaffFormView
	Pending *PendingToggleView
	Message string
	Members []StaffMemberView
}

// LogsView is the allocation history.
type LogsView struct {
	Message string
	Logs    []model.AllocationLog
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() Snapshot {
	st := &c.st
	snap := Snapshot{
		Screen:    st.screen,
		Staff:     clonePtr(st.staff),
		Status:    st.status,
		Locations: slices.Clone(st.locations),
		Labels:    slices.Clone(st.labels),
	}
	if st.staff != nil {
		snap.ShowManagerOptions = st.staff.Role.IsManager()
	}
	for op := range c.busy {
		snap.Busy = append(snap.Busy, string(op))
	}
	slices.Sort(snap.Busy)

	snap.Home = HomeView{
		PickListCount: st.home.pickListCount,
		Receipting:    cloneReceipting(st.home.receipting),
	}
	if r := st.home.receipting; r != nil {
		if r.Count == 0 {
			snap.Home.ReceiptingText = "All allocations receipted"
		} else {
			snap.Home.ReceiptingText = fmt.Sprintf("%d PO(s) allocated - check receipting status", r.Count)
		}
	}

	snap.Receive = c.receiveView()
	if st.success != nil {
		snap.Success = c.successView()
	}

	snap.LabelLookup = LabelLookupView{
		PO:      clonePO(st.labelPO.po),
		Message: st.labelPO.message,
	}
	if st.labelPO.po != nil {
		snap.LabelLookup.AllocatedItems = allocatedItems(st.labelPO.po)
	}

	snap.Stock = StockView{
		Location: clonePtr(st.stock.location),
		Records:  slices.Clone(st.stock.records),
		Message:  st.stock.message,
	}
	snap.PickList = PickListView{Message: st.picklist.message}
	if st.picklist.list != nil {
		list := *st.picklist.list
		list.Items = slices.Clone(list.Items)
		snap.PickList.List = &list
	}
	snap.Mystery = MysteryView{
		Query:   st.mystery.query,
		Message: st.mystery.message,
		Results: slices.Clone(st.mystery.results),
	}
	snap.Relocate = c.relocateView()
	snap.Staffing = c.staffView()
	snap.Logs = LogsView{
		Message: st.logs.message,
		Logs:    slices.Clone(st.logs.logs),
	}
	return snap
}

func (c *Controller) receiveView() ReceiveView {
	r := &c.st.receive
	view := ReceiveView{
		PO:             clonePO(r.po),
		Storage:        clonePtr(r.storage),
		SelectedCount:  len(r.selection),
		BackorderCount: len(r.backorders),
		CanProceed:     len(r.selection) > 0,
		CanAllocate:    len(r.selection) > 0 && r.storage != nil,
		Docket: DocketView{
			Extraction: clonePtr(r.docket.extraction),
			Message:    r.docket.message,
			Progress:   r.docket.progress,
			Scanning:   r.docket.scanning,
			Found:      r.docket.found,
			HasPhoto:   r.docket.hasPhoto,
		},
		Photos: PhotoView{
			Mode:       r.photos.mode,
			HasGroup:   len(r.photos.group) > 0,
			ItemPhotos: slices.Sorted(maps.Keys(r.photos.items)),
		},
	}
	if r.po == nil {
		return view
	}

	view.HasAllocatedItems = r.po.HasAllocatedItems()
	view.SelectionText = fmt.Sprintf("%d of %d items selected", len(r.selection), len(r.po.Items))
	view.DueDate, view.Overdue = dueDate(r.po.DueDate, c.now())

	view.Items = make([]ItemView, len(r.po.Items))
	for i, item := range r.po.Items {
		iv := ItemView{
			Item:        item,
			Index:       i,
			Remaining:   item.Remaining(),
			Draft:       r.draft(i, item),
			Backordered: r.backordered(i) >= 0,
		}
		if s := r.selected(i); s >= 0 {
			iv.Selected = true
			iv.Quantity = r.selection[s].quantity
		}
		_, iv.HasPhoto = r.photos.items[i]
		view.Items[i] = iv
	}
	return view
}

func (c *Controller) successView() *SuccessView {
	s := c.st.success
	r := &c.st.receive
	view := &SuccessView{
		Summary:        fmt.Sprintf("%d item(s) → %s", s.result.SuccessCount, s.storageName),
		StaffName:      s.staffName,
		SuccessCount:   s.result.SuccessCount,
		AllVerified:    s.result.AllVerified,
		BackorderCount: s.backorderCount,
		PickingSlip: PickingSlipView{
			Status:      s.pickingSlip.status,
			Message:     s.pickingSlip.message,
			CanGenerate: s.pickingSlip.status != TaskSucceeded && !c.inFlight(opPickingSlip),
		},
	}
	if s.result.AllVerified {
		view.Verification = "Verified"
	} else {
		view.Verification = "Allocation sent - verification pending"
	}
	switch {
	case s.result.GoodsReceivedSet:
		view.GoodsReceived = "Goods Received status set"
	case s.result.SuccessCount > 0:
		view.GoodsReceived = "Goods Received status pending"
	}
	if s.backorderCount > 0 {
		view.BackorderText = fmt.Sprintf("%d item(s) marked as backordered", s.backorderCount)
	}
	view.PhotoText = photoText(s.photoResult)

	for _, sel := range r.selection {
		view.LabelCount += sel.quantity
	}
	for _, name := range []string{TaskBackorder, TaskDocket, TaskPhotos} {
		if t, ok := s.tasks[name]; ok {
			view.Tasks = append(view.Tasks, TaskView{Name: name, Status: t.status, Detail: t.detail})
		}
	}
	return view
}

func photoText(res *service.PhotoUploadResult) string {
	if res == nil {
		return ""
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "partial failure"
		}
		return "Photo upload: " + msg
	}
	var parts []string
	if res.JobUploads > 0 {
		parts = append(parts, fmt.Sprintf("%d to Job", res.JobUploads))
	}
	if res.POUploads > 0 {
		parts = append(parts, fmt.Sprintf("%d to PO", res.POUploads))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d total", res.Uploaded))
	}
	return "Photos uploaded: " + strings.Join(parts, ", ")
}

func (c *Controller) relocateView() RelocateView {
	r := &c.st.relocate
	view := RelocateView{
		Source:     clonePtr(r.source),
		Dest:       clonePtr(r.dest),
		Items:      slices.Clone(r.items),
		Selected:   slices.Clone(r.selected),
		Warning:    r.warning,
		CanProceed: len(r.selected) > 0,
		CanExecute: r.ready(),
	}
	if len(r.items) > 0 {
		view.SelectionText = fmt.Sprintf("%d of %d items selected", len(r.selected), len(r.items))
	}
	if r.result != nil {
		out := *r.result
		view.Result = &out
	}
	return view
}

func (c *Controller) staffView() StaffView {
	s := &c.st.staffMgmt
	view := StaffView{Message: s.message}
	actor := c.actor()
	for _, rec := range s.list {
		view.Members = append(view.Members, StaffMemberView{
			Record:    rec,
			IsSelf:    rec.ID == actor.ID,
			CanManage: model.CanManage(actor, rec),
		})
	}
	if f := s.form; f != nil {
		form := &StaffFormView{
			ID:          f.id,
			Username:    f.username,
			DisplayName: f.displayName,
			Role:        f.role,
			Active:      f.active,
			Editing:     f.id != 0,
		}
		if form.Editing {
			form.PasswordHint = "(leave blank to keep current)"
		} else {
			form.PasswordHint = "(min 6 characters)"
		}
		for _, role := range []model.Role{model.RoleStaff, model.RoleManager, model.RoleAdmin} {
			if model.CanAssign(actor, role) {
				form.AssignableRoles = append(form.AssignableRoles, role)
			}
		}
		view.Form = form
	}
	if p := s.pending; p != nil {
		view.Pending = &PendingToggleView{ID: p.id, Enable: p.enable, Prompt: togglePrompt(p.enable)}
	}
	return view
}

func togglePrompt(enable bool) string {
	action := "disable"
	if enable {
		action = "enable"
	}
	return fmt.Sprintf("Are you sure you want to %s this staff member?", action)
}

// dueDate formats a PO due date and reports whether it has passed.
func dueDate(raw string, now time.Time) (string, bool) {
	if raw == "" {
		return "", false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		t, err := time.ParseInLocation(layout, raw, now.Location())
		if err != nil {
			continue
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return t.Format("2 Jan 2006"), t.Before(today)
	}
	return raw, false
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func clonePO(po *model.PurchaseOrder) *model.PurchaseOrder {
	if po == nil {
		return nil
	}
	out := *po
	out.Items = slices.Clone(po.Items)
	return &out
}

func cloneReceipting(r *model.ReceiptingSummary) *model.ReceiptingSummary {
	if r == nil {
		return nil
	}
	out := *r
	out.Items = slices.Clone(r.Items)
	return &out
}
