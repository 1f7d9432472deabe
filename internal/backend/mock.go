package backend

import (
	"context"
	"slices"
	"sync"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// MockClient is a mock implementation of service.Backend for testing.
// It is safe for concurrent use because the workflow runs follow-up
// requests in parallel.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	AuthStatusFn          func(ctx context.Context) (*service.AuthStatus, error)
	LoginFn               func(ctx context.Context, username, password string) (*model.Identity, error)
	LogoutFn              func(ctx context.Context) error
	LookupPOFn            func(ctx context.Context, poNumber string) (*model.PurchaseOrder, error)
	AllocateFn            func(ctx context.Context, req service.AllocationRequest) (*service.AllocationResult, error)
	SaveBackorderFn       func(ctx context.Context, req service.BackorderRequest) error
	SaveDocketDataFn      func(ctx context.Context, req service.DocketDataRequest) error
	UploadPhotosFn        func(ctx context.Context, req service.PhotoUploadRequest) (*service.PhotoUploadResult, error)
	GeneratePickingSlipFn func(ctx context.Context, req service.PickingSlipRequest) (*service.PickingSlipResult, error)
	StorageLocationsFn    func(ctx context.Context) ([]model.StorageLocation, error)
	StockAtFn             func(ctx context.Context, locationID int) ([]model.StockRecord, error)
	RelocateFn            func(ctx context.Context, req service.RelocateRequest) (*service.RelocateResult, error)
	PickListFn            func(ctx context.Context) (*model.PickList, error)
	NeedsReceiptingFn     func(ctx context.Context) (*model.ReceiptingSummary, error)
	SearchMysteryBoxFn    func(ctx context.Context, query string) ([]model.MysteryResult, error)
	AllocationLogsFn      func(ctx context.Context, limit int) ([]model.AllocationLog, error)
	ListStaffFn           func(ctx context.Context) ([]model.StaffRecord, error)
	CreateStaffFn         func(ctx context.Context, req service.CreateStaffRequest) error
	UpdateStaffFn         func(ctx context.Context, id int, req service.UpdateStaffRequest) error

	// Call tracking
	calls        map[string]int
	allocations  []service.AllocationRequest
	backorders   []service.BackorderRequest
	dockets      []service.DocketDataRequest
	photos       []service.PhotoUploadRequest
	pickingSlips []service.PickingSlipRequest
	relocations  []service.RelocateRequest
	created      []service.CreateStaffRequest
	updated      []UpdateStaffCall
	mu           sync.Mutex
}

// UpdateStaffCall records the parameters of an UpdateStaff call.
type UpdateStaffCall struct {
	Request service.UpdateStaffRequest
	ID      int
}

// NewMockClient creates a new mock backend.
func NewMockClient() *MockClient {
	return &MockClient{calls: make(map[string]int)}
}

func (m *MockClient) record(method string, capture func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
	if capture != nil {
		capture()
	}
}

// Calls returns how many times method was invoked.
func (m *MockClient) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// AllocateRequests returns every allocation sent.
func (m *MockClient) AllocateRequests() []service.AllocationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.allocations)
}

// BackorderRequests returns every backorder sent.
func (m *MockClient) BackorderRequests() []service.BackorderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.backorders)
}

// DocketRequests returns every docket-data record sent.
func (m *MockClient) DocketRequests() []service.DocketDataRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.dockets)
}

// PhotoRequests returns every photo upload sent.
func (m *MockClient) PhotoRequests() []service.PhotoUploadRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.photos)
}

// PickingSlipRequests returns every picking slip requested.
func (m *MockClient) PickingSlipRequests() []service.PickingSlipRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.pickingSlips)
}

// RelocateRequests returns every relocation sent.
func (m *MockClient) RelocateRequests() []service.RelocateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.relocations)
}

// CreateStaffRequests returns every account creation sent.
func (m *MockClient) CreateStaffRequests() []service.CreateStaffRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.created)
}

// UpdateStaffCalls returns every account update sent.
func (m *MockClient) UpdateStaffCalls() []UpdateStaffCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.updated)
}

// AuthStatus implements service.Backend.
func (m *MockClient) AuthStatus(ctx context.Context) (*service.AuthStatus, error) {
	m.record("AuthStatus", nil)
	if m.AuthStatusFn != nil {
		return m.AuthStatusFn(ctx)
	}
	return &service.AuthStatus{}, nil
}

// Login implements service.Backend.
func (m *MockClient) Login(ctx context.Context, username, password string) (*model.Identity, error) {
	m.record("Login", nil)
	if m.LoginFn != nil {
		return m.LoginFn(ctx, username, password)
	}
	return &model.Identity{ID: 1, Username: username, DisplayName: username, Role: model.RoleStaff}, nil
}

// Logout implements service.Backend.
func (m *MockClient) Logout(ctx context.Context) error {
	m.record("Logout", nil)
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx)
	}
	return nil
}

// LookupPO implements service.Backend.
func (m *MockClient) LookupPO(ctx context.Context, poNumber string) (*model.PurchaseOrder, error) {
	m.record("LookupPO", nil)
	if m.LookupPOFn != nil {
		return m.LookupPOFn(ctx, poNumber)
	}
	return &model.PurchaseOrder{PONumber: poNumber}, nil
}

// Allocate implements service.Backend.
func (m *MockClient) Allocate(ctx context.Context, req service.AllocationRequest) (*service.AllocationResult, error) {
	m.record("Allocate", func() { m.allocations = append(m.allocations, req) })
	if m.AllocateFn != nil {
		return m.AllocateFn(ctx, req)
	}
	return &service.AllocationResult{Success: true, SuccessCount: len(req.Items)}, nil
}

// SaveBackorder implements service.Backend.
func (m *MockClient) SaveBackorder(ctx context.Context, req service.BackorderRequest) error {
	m.record("SaveBackorder", func() { m.backorders = append(m.backorders, req) })
	if m.SaveBackorderFn != nil {
		return m.SaveBackorderFn(ctx, req)
	}
	return nil
}

// SaveDocketData implements service.Backend.
func (m *MockClient) SaveDocketData(ctx context.Context, req service.DocketDataRequest) error {
	m.record("SaveDocketData", func() { m.dockets = append(m.dockets, req) })
	if m.SaveDocketDataFn != nil {
		return m.SaveDocketDataFn(ctx, req)
	}
	return nil
}

// UploadPhotos implements service.Backend.
func (m *MockClient) UploadPhotos(ctx context.Context, req service.PhotoUploadRequest) (*service.PhotoUploadResult, error) {
	m.record("UploadPhotos", func() { m.photos = append(m.photos, req) })
	if m.UploadPhotosFn != nil {
		return m.UploadPhotosFn(ctx, req)
	}
	return &service.PhotoUploadResult{Success: true, Uploaded: len(req.Photos)}, nil
}

// GeneratePickingSlip implements service.Backend.
func (m *MockClient) GeneratePickingSlip(ctx context.Context, req service.PickingSlipRequest) (*service.PickingSlipResult, error) {
	m.record("GeneratePickingSlip", func() { m.pickingSlips = append(m.pickingSlips, req) })
	if m.GeneratePickingSlipFn != nil {
		return m.GeneratePickingSlipFn(ctx, req)
	}
	return &service.PickingSlipResult{Success: true, JobNumber: req.JobNumber}, nil
}

// StorageLocations implements service.Backend.
func (m *MockClient) StorageLocations(ctx context.Context) ([]model.StorageLocation, error) {
	m.record("StorageLocations", nil)
	if m.StorageLocationsFn != nil {
		return m.StorageLocationsFn(ctx)
	}
	return []model.StorageLocation{}, nil
}

// StockAt implements service.Backend.
func (m *MockClient) StockAt(ctx context.Context, locationID int) ([]model.StockRecord, error) {
	m.record("StockAt", nil)
	if m.StockAtFn != nil {
		return m.StockAtFn(ctx, locationID)
	}
	return []model.StockRecord{}, nil
}

// Relocate implements service.Backend.
func (m *MockClient) Relocate(ctx context.Context, req service.RelocateRequest) (*service.RelocateResult, error) {
	m.record("Relocate", func() { m.relocations = append(m.relocations, req) })
	if m.RelocateFn != nil {
		return m.RelocateFn(ctx, req)
	}
	return &service.RelocateResult{Success: true, SuccessCount: len(req.Items)}, nil
}

// PickList implements service.Backend.
func (m *MockClient) PickList(ctx context.Context) (*model.PickList, error) {
	m.record("PickList", nil)
	if m.PickListFn != nil {
		return m.PickListFn(ctx)
	}
	return &model.PickList{}, nil
}

// NeedsReceipting implements service.Backend.
func (m *MockClient) NeedsReceipting(ctx context.Context) (*model.ReceiptingSummary, error) {
	m.record("NeedsReceipting", nil)
	if m.NeedsReceiptingFn != nil {
		return m.NeedsReceiptingFn(ctx)
	}
	return &model.ReceiptingSummary{}, nil
}

// SearchMysteryBox implements service.Backend.
func (m *MockClient) SearchMysteryBox(ctx context.Context, query string) ([]model.MysteryResult, error) {
	m.record("SearchMysteryBox", nil)
	if m.SearchMysteryBoxFn != nil {
		return m.SearchMysteryBoxFn(ctx, query)
	}
	return nil, nil
}

// AllocationLogs implements service.Backend.
func (m *MockClient) AllocationLogs(ctx context.Context, limit int) ([]model.AllocationLog, error) {
	m.record("AllocationLogs", nil)
	if m.AllocationLogsFn != nil {
		return m.AllocationLogsFn(ctx, limit)
	}
	return []model.AllocationLog{}, nil
}

// ListStaff implements service.Backend.
func (m *MockClient) ListStaff(ctx context.Context) ([]model.StaffRecord, error) {
	m.record("ListStaff", nil)
	if m.ListStaffFn != nil {
		return m.ListStaffFn(ctx)
	}
	return []model.StaffRecord{}, nil
}

// CreateStaff implements service.Backend.
func (m *MockClient) CreateStaff(ctx context.Context, req service.CreateStaffRequest) error {
	m.record("CreateStaff", func() { m.created = append(m.created, req) })
	if m.CreateStaffFn != nil {
		return m.CreateStaffFn(ctx, req)
	}
	return nil
}

// UpdateStaff implements service.Backend.
func (m *MockClient) UpdateStaff(ctx context.Context, id int, req service.UpdateStaffRequest) error {
	m.record("UpdateStaff", func() { m.updated = append(m.updated, UpdateStaffCall{ID: id, Request: req}) })
	if m.UpdateStaffFn != nil {
		return m.UpdateStaffFn(ctx, id, req)
	}
	return nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
	m.allocations = nil
	m.backorders = nil
	m.dockets = nil
	m.photos = nil
	m.pickingSlips = nil
	m.relocations = nil
	m.created = nil
	m.updated = nil
}

// Ensure MockClient implements the Backend interface.
var _ service.Backend = (*MockClient)(nil)
