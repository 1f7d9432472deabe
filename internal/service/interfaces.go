// Package service defines the contracts between the receiving workflow and
// its collaborators.
package service

import (
	"context"
	"time"

	"github.com/dockside/receiving/internal/model"
)

// Backend is the job-management REST API the receiving workflow drives.
type Backend interface {
	// Session
	AuthStatus(ctx context.Context) (*AuthStatus, error)
	Login(ctx context.Context, username, password string) (*model.Identity, error)
	Logout(ctx context.Context) error

	// Receiving
	LookupPO(ctx context.Context, poNumber string) (*model.PurchaseOrder, error)
	Allocate(ctx context.Context, req AllocationRequest) (*AllocationResult, error)
	SaveBackorder(ctx context.Context, req BackorderRequest) error
	SaveDocketData(ctx context.Context, req DocketDataRequest) error
	UploadPhotos(ctx context.Context, req PhotoUploadRequest) (*PhotoUploadResult, error)
	GeneratePickingSlip(ctx context.Context, req PickingSlipRequest) (*PickingSlipResult, error)

	// Stock
	StorageLocations(ctx context.Context) ([]model.StorageLocation, error)
	StockAt(ctx context.Context, locationID int) ([]model.StockRecord, error)
	Relocate(ctx context.Context, req RelocateRequest) (*RelocateResult, error)
	PickList(ctx context.Context) (*model.PickList, error)

	// Dashboards and search
	NeedsReceipting(ctx context.Context) (*model.ReceiptingSummary, error)
	SearchMysteryBox(ctx context.Context, query string) ([]model.MysteryResult, error)
	AllocationLogs(ctx context.Context, limit int) ([]model.AllocationLog, error)

	// Staff management
	ListStaff(ctx context.Context) ([]model.StaffRecord, error)
	CreateStaff(ctx context.Context, req CreateStaffRequest) error
	UpdateStaff(ctx context.Context, id int, req UpdateStaffRequest) error
}

// RetryOptions configures retry behavior.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
