package workflow

import "github.com/dockside/receiving/internal/model"

// Command is an input to the controller. The set is closed; renderers
// construct the concrete types below.
type Command interface {
	command()
}

// Session.
type (
	// Start checks for an existing session.
	Start struct{}
	// Login authenticates with username and password.
	Login struct {
		Username string
		Password string
	}
	// Logout ends the session.
	Logout struct{}
	// GoHome shows the main menu and refreshes its dashboards.
	GoHome struct{}
	// Back returns to a named screen.
	Back struct {
		To Screen
	}
)

// Receiving.
type (
	// OpenReceive starts receiving a PO.
	OpenReceive struct{}
	// LookupPO fetches a PO for verification.
	LookupPO struct {
		Number string
	}
	// ScanDocket runs OCR on a photographed delivery docket.
	ScanDocket struct {
		Image []byte
	}
	// ToggleItem selects or deselects a PO line.
	ToggleItem struct {
		Index int
	}
	// SetQuantity edits the quantity being received for a line.
	SetQuantity struct {
		Index    int
		Quantity float64
	}
	// SelectAll selects or clears every line.
	SelectAll struct {
		Selected bool
	}
	// ToggleBackorder flags or unflags a line as not delivered.
	ToggleBackorder struct {
		Index int
	}
	// ProceedToStorage moves on to choosing a storage location.
	ProceedToStorage struct{}
	// SelectStorage picks the allocation destination; zero clears it.
	SelectStorage struct {
		ID int
	}
	// SetPhotoMode chooses how delivery photos are captured.
	SetPhotoMode struct {
		Mode PhotoMode
	}
	// AttachGroupPhoto sets the single delivery photo.
	AttachGroupPhoto struct {
		Image []byte
	}
	// RemoveGroupPhoto discards the delivery photo.
	RemoveGroupPhoto struct{}
	// AttachItemPhoto sets the photo for one selected line.
	AttachItemPhoto struct {
		Image []byte
		Index int
	}
	// RemoveItemPhoto discards one line's photo.
	RemoveItemPhoto struct {
		Index int
	}
	// SubmitAllocation sends the selection to the chosen location.
	SubmitAllocation struct{}
	// StartNewPO clears everything about the current PO.
	StartNewPO struct{}
	// PrintLabels prepares one label per allocated line.
	PrintLabels struct{}
	// ReprintLabels prepares labels for lines allocated earlier.
	ReprintLabels struct{}
	// GeneratePickingSlip files a picking slip against the job.
	GeneratePickingSlip struct{}
)

// Browsing and search.
type (
	// OpenStock shows stock by location.
	OpenStock struct{}
	// BrowseStock lists the stock at one location.
	BrowseStock struct {
		LocationID int
	}
	// OpenPickList shows orders ready to pick.
	OpenPickList struct{}
	// OpenMystery shows the delivery search.
	OpenMystery struct{}
	// SearchMystery searches past deliveries.
	SearchMystery struct {
		Query string
	}
	// OpenLabels shows the label lookup.
	OpenLabels struct{}
	// LookupLabels builds labels for a PO's allocated items.
	LookupLabels struct {
		Number string
	}
	// OpenLogs shows recent allocations.
	OpenLogs struct{}
)

// Relocation.
type (
	// OpenRelocate starts a relocation.
	OpenRelocate struct{}
	// SelectRelocateSource picks the location to move from; zero clears it.
	// A different source drops the loaded items, selection and destination.
	SelectRelocateSource struct {
		ID int
	}
	// LoadRelocateItems fetches the stock at the source.
	LoadRelocateItems struct{}
	// ToggleRelocateItem selects or deselects a stock record.
	ToggleRelocateItem struct {
		Index int
	}
	// SelectAllRelocate selects or clears every stock record.
	SelectAllRelocate struct {
		Selected bool
	}
	// ProceedToRelocateDest moves on to choosing the destination.
	ProceedToRelocateDest struct{}
	// SelectRelocateDest picks the location to move to; zero clears it.
	SelectRelocateDest struct {
		ID int
	}
	// ExecuteRelocate sends the relocation.
	ExecuteRelocate struct{}
	// StartNewRelocate clears the relocation and starts over.
	StartNewRelocate struct{}
)

// Staff management.
type (
	// OpenStaff lists staff accounts.
	OpenStaff struct{}
	// EditStaff opens the account form; zero ID adds a new account.
	EditStaff struct {
		ID int
	}
	// CloseStaffForm discards the account form.
	CloseStaffForm struct{}
	// SaveStaff submits the account form.
	SaveStaff struct {
		Username    string
		DisplayName string
		Password    string
		Role        model.Role
		Active      bool
	}
	// ToggleStaff asks to enable or disable an account.
	ToggleStaff struct {
		ID int
	}
	// ConfirmToggle sends the pending enable or disable.
	ConfirmToggle struct{}
	// CancelToggle discards the pending enable or disable.
	CancelToggle struct{}
)

func (Start) command()                 {}
func (Login) command()                 {}
func (Logout) command()                {}
func (GoHome) command()                {}
func (Back) command()                  {}
func (OpenReceive) command()           {}
func (LookupPO) command()              {}
func (ScanDocket) command()            {}
func (ToggleItem) command()            {}
func (SetQuantity) command()           {}
func (SelectAll) command()             {}
func (ToggleBackorder) command()       {}
func (ProceedToStorage) command()      {}
func (SelectStorage) command()         {}
func (SetPhotoMode) command()          {}
func (AttachGroupPhoto) command()      {}
func (RemoveGroupPhoto) command()      {}
func (AttachItemPhoto) command()       {}
func (RemoveItemPhoto) command()       {}
func (SubmitAllocation) command()      {}
func (StartNewPO) command()            {}
func (PrintLabels) command()           {}
func (ReprintLabels) command()         {}
func (GeneratePickingSlip) command()   {}
func (OpenStock) command()             {}
func (BrowseStock) command()           {}
func (OpenPickList) command()          {}
func (OpenMystery) command()           {}
func (SearchMystery) command()         {}
func (OpenLabels) command()            {}
func (LookupLabels) command()          {}
func (OpenLogs) command()              {}
func (OpenRelocate) command()          {}
func (SelectRelocateSource) command()  {}
func (LoadRelocateItems) command()     {}
func (ToggleRelocateItem) command()    {}
func (SelectAllRelocate) command()     {}
func (ProceedToRelocateDest) command() {}
func (SelectRelocateDest) command()    {}
func (ExecuteRelocate) command()       {}
func (StartNewRelocate) command()      {}
func (OpenStaff) command()             {}
func (EditStaff) command()             {}
func (CloseStaffForm) command()        {}
func (SaveStaff) command()             {}
func (ToggleStaff) command()           {}
func (ConfirmToggle) command()         {}
func (CancelToggle) command()          {}
