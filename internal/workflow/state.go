package workflow

import (
	"fmt"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// PhotoMode is how delivery photos are captured for an allocation.
type PhotoMode int

const (
	// PhotoNone means no choice has been made; nothing is uploaded.
	PhotoNone PhotoMode = iota
	// PhotoSkip declines photos.
	PhotoSkip
	// PhotoGroup takes one photo of the whole delivery.
	PhotoGroup
	// PhotoIndividual takes one photo per selected line.
	PhotoIndividual
)

// String returns the mode's identifier.
func (m PhotoMode) String() string {
	switch m {
	case PhotoNone:
		return "none"
	case PhotoSkip:
		return "skip"
	case PhotoGroup:
		return "group"
	case PhotoIndividual:
		return "individual"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// uploads reports whether the mode sends photos after allocation.
func (m PhotoMode) uploads() bool {
	return m == PhotoGroup || m == PhotoIndividual
}

// StatusKind classifies inline status text.
type StatusKind int

const (
	// StatusNone means there is nothing to show.
	StatusNone StatusKind = iota
	// StatusLoading is shown while a request is outstanding.
	StatusLoading
	// StatusInfo is a neutral notice.
	StatusInfo
	// StatusError is a failure the user should see.
	StatusError
)

// Status is the inline message for the current screen.
type Status struct {
	Text string
	Kind StatusKind
}

// TaskStatus tracks a best-effort follow-up request.
type TaskStatus int

const (
	// TaskPending has not finished yet.
	TaskPending TaskStatus = iota
	// TaskSucceeded finished without error.
	TaskSucceeded
	// TaskFailed finished with an error that was logged and swallowed.
	TaskFailed
	// TaskSkipped had nothing to send.
	TaskSkipped
)

// String returns the status's identifier.
func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskSucceeded:
		return "succeeded"
	case TaskFailed:
		return "failed"
	case TaskSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Follow-up tasks sent after a successful allocation.
const (
	TaskBackorder = "backorder"
	TaskDocket    = "docket"
	TaskPhotos    = "photos"
)

// operation names an action guarded against overlapping triggers.
type operation string

const (
	opSession     operation = "session"
	opLookup      operation = "lookup"
	opDocket      operation = "docket"
	opAllocate    operation = "allocate"
	opPickingSlip operation = "picking-slip"
	opStock       operation = "stock"
	opRelocate    operation = "relocate"
	opStaffSave   operation = "staff-save"
	opStaffToggle operation = "staff-toggle"
	opBrowse      operation = "browse"
)

type state struct {
	staff     *model.Identity
	success   *successState
	locations []model.StorageLocation
	labels    []model.Label
	status    Status
	home      homeState
	receive   receiveState
	labelPO   labelLookupState
	stock     stockState
	picklist  pickListState
	mystery   mysteryState
	relocate  relocateState
	staffMgmt staffState
	logs      logsState
	screen    Screen
}

type homeState struct {
	receipting    *model.ReceiptingSummary
	pickListCount int
}

type selectedItem struct {
	item     model.LineItem
	index    int
	quantity float64
}

type receiveState struct {
	po              *model.PurchaseOrder
	storage         *model.StorageLocation
	drafts          map[int]float64
	lastStorageName string
	selection       []selectedItem
	backorders      []service.BackorderItem
	docket          docketState
	photos          photoState
}

func (r *receiveState) selected(index int) int {
	for i, s := range r.selection {
		if s.index == index {
			return i
		}
	}
	return -1
}

func (r *receiveState) backordered(index int) int {
	for i, b := range r.backorders {
		if b.Index == index {
			return i
		}
	}
	return -1
}

type docketState struct {
	extraction *model.DocketExtraction
	message    string
	progress   float64
	scanning   bool
	found      bool
	hasPhoto   bool
}

type photoState struct {
	items map[int][]byte
	group []byte
	mode  PhotoMode
}

type postTask struct {
	detail string
	status TaskStatus
}

type successState struct {
	tasks          map[string]*postTask
	photoResult    *service.PhotoUploadResult
	storageName    string
	staffName      string
	pickingSlip    pickingSlipState
	result         service.AllocationResult
	backorderCount int
	seq            int
}

type pickingSlipState struct {
	message  string
	status   TaskStatus
	attempts int
}

type labelLookupState struct {
	po      *model.PurchaseOrder
	message string
}

type stockState struct {
	location *model.StorageLocation
	records  []model.StockRecord
	message  string
}

type pickListState struct {
	list    *model.PickList
	message string
}

type mysteryState struct {
	query   string
	message string
	results []model.MysteryResult
}

type relocateState struct {
	source   *model.StorageLocation
	dest     *model.StorageLocation
	result   *RelocateOutcome
	items    []model.StockRecord
	selected []int
	warning  bool
}

func (r *relocateState) selectedAt(index int) int {
	for i, s := range r.selected {
		if s == index {
			return i
		}
	}
	return -1
}

// clearPicks drops the items, selection and destination tied to the source.
func (r *relocateState) clearPicks() {
	r.items = nil
	r.selected = nil
	r.dest = nil
	r.warning = false
}

// ready reports whether a relocation can be submitted.
func (r *relocateState) ready() bool {
	return r.source != nil && r.dest != nil && len(r.selected) > 0 &&
		!r.warning && r.dest.ID != r.source.ID
}

type staffForm struct {
	username    string
	displayName string
	role        model.Role
	id          int
	active      bool
}

type pendingToggle struct {
	id     int
	enable bool
}

type staffState struct {
	form    *staffForm
	pending *pendingToggle
	message string
	list    []model.StaffRecord
}

type logsState struct {
	message string
	logs    []model.AllocationLog
}
