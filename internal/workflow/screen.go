// Package workflow is the receiving controller: a screen state machine that
// owns the session, the PO being received, selections and every screen's
// state. Renderers send commands through Controller.Handle and draw from
// immutable snapshots.
package workflow

import "fmt"

// Screen is a step of the receiving workflow.
type Screen int

const (
	// ScreenLogin asks for credentials.
	ScreenLogin Screen = iota
	// ScreenHome is the main menu.
	ScreenHome
	// ScreenScan takes a PO number or a docket photo.
	ScreenScan
	// ScreenVerify lists the PO's items for selection.
	ScreenVerify
	// ScreenStorage picks the storage location.
	ScreenStorage
	// ScreenProcessing is shown while an allocation or relocation is sent.
	ScreenProcessing
	// ScreenSuccess summarizes a completed allocation.
	ScreenSuccess
	// ScreenStock browses stock by location.
	ScreenStock
	// ScreenPickList shows orders ready to pick.
	ScreenPickList
	// ScreenRelocateSource picks the location to move stock from.
	ScreenRelocateSource
	// ScreenRelocateItems selects the stock to move.
	ScreenRelocateItems
	// ScreenRelocateDest picks the location to move stock to.
	ScreenRelocateDest
	// ScreenRelocateSuccess summarizes a relocation.
	ScreenRelocateSuccess
	// ScreenStaffMgmt manages staff accounts.
	ScreenStaffMgmt
	// ScreenLogs lists recent allocations.
	ScreenLogs
	// ScreenLabels looks up a PO to print labels for.
	ScreenLabels
	// ScreenMystery searches past deliveries.
	ScreenMystery
)

var screenNames = [...]string{
	ScreenLogin:           "login",
	ScreenHome:            "home",
	ScreenScan:            "scan",
	ScreenVerify:          "verify",
	ScreenStorage:         "storage",
	ScreenProcessing:      "processing",
	ScreenSuccess:         "success",
	ScreenStock:           "stock",
	ScreenPickList:        "picklist",
	ScreenRelocateSource:  "relocate-source",
	ScreenRelocateItems:   "relocate-items",
	ScreenRelocateDest:    "relocate-dest",
	ScreenRelocateSuccess: "relocate-success",
	ScreenStaffMgmt:       "staff-mgmt",
	ScreenLogs:            "logs",
	ScreenLabels:          "labels",
	ScreenMystery:         "mystery",
}

// String returns the screen's identifier.
func (s Screen) String() string {
	if s >= 0 && int(s) < len(screenNames) {
		return screenNames[s]
	}
	return fmt.Sprintf("Unknown(%d)", s)
}

// ParseScreen converts an identifier back into a Screen.
func ParseScreen(name string) (Screen, error) {
	for i, n := range screenNames {
		if n == name {
			return Screen(i), nil
		}
	}
	return 0, fmt.Errorf("unknown screen %q", name)
}

// Screens lists every screen in declaration order.
func Screens() []Screen {
	out := make([]Screen, len(screenNames))
	for i := range screenNames {
		out[i] = Screen(i)
	}
	return out
}
