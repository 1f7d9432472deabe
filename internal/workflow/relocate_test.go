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

var vanStock = []model.StockRecord{
	{StockID: 1, CatalogID: 11, PartNo: "V-100", Description: "Valve 15mm", Quantity: 4, JobID: 500},
	{StockID: 2, CatalogID: 12, Name: "Pipe 20mm", Quantity: 10},
	{StockID: 3, CatalogID: 13, PartNo: "BR-2", Quantity: 2},
}

// relocateController has items from Van 2 loaded.
func relocateController(t *testing.T) (*Controller, *backend.MockClient) {
	t.Helper()
	mock := backend.NewMockClient()
	mock.StorageLocationsFn = func(context.Context) ([]model.StorageLocation, error) {
		return sampleLocations, nil
	}
	mock.StockAtFn = func(_ context.Context, id int) ([]model.StockRecord, error) {
		if id == 1 {
			return vanStock, nil
		}
		return nil, nil
	}
	c := newTestController(t, mock)
	loginAs(t, c, mock, model.RoleStaff)

	ctx := context.Background()
	require.NoError(t, c.Handle(ctx, OpenRelocate{}))
	require.NoError(t, c.Handle(ctx, SelectRelocateSource{ID: 1}))
	require.NoError(t, c.Handle(ctx, LoadRelocateItems{}))
	return c, mock
}

// Van 2 to Shelf A, both result branches.
func TestExecuteRelocate(t *testing.T) {
	tests := []struct {
		result      service.RelocateResult
		name        string
		wantSummary string
		wantNote    string
		wantStaff   string
		wantCount   int
		wantQueued  bool
	}{
		{
			name:        "queued for transfer",
			result:      service.RelocateResult{Success: true, RequiresBrowserAutomation: true, QueuedCount: 2},
			wantSummary: "2 item(s) queued for transfer",
			wantNote:    "Transfer will be processed automatically.",
			wantStaff:   "Sam Carter",
			wantCount:   2,
			wantQueued:  true,
		},
		{
			name:        "queued with note",
			result:      service.RelocateResult{Success: true, RequiresBrowserAutomation: true, Note: "Runs at 5pm"},
			wantSummary: "2 item(s) queued for transfer",
			wantNote:    "Runs at 5pm",
			wantStaff:   "Sam Carter",
			wantCount:   2,
			wantQueued:  true,
		},
		{
			name:        "moved immediately",
			result:      service.RelocateResult{Success: true, SuccessCount: 2, MovedBy: "Warehouse Bot"},
			wantSummary: "2 item(s) moved",
			wantStaff:   "Warehouse Bot",
			wantCount:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := relocateController(t)
			ctx := context.Background()
			mock.RelocateFn = func(context.Context, service.RelocateRequest) (*service.RelocateResult, error) {
				return &tt.result, nil
			}

			require.NoError(t, c.Handle(ctx, ToggleRelocateItem{Index: 0}))
			require.NoError(t, c.Handle(ctx, ToggleRelocateItem{Index: 1}))
			assert.Equal(t, "2 of 3 items selected", c.Snapshot().Relocate.SelectionText)
			require.NoError(t, c.Handle(ctx, ProceedToRelocateDest{}))
			require.NoError(t, c.Handle(ctx, SelectRelocateDest{ID: 2}))
			assert.True(t, c.Snapshot().Relocate.CanExecute)
			require.NoError(t, c.Handle(ctx, ExecuteRelocate{}))

			snap := c.Snapshot()
			assert.Equal(t, ScreenRelocateSuccess, snap.Screen)
			out := snap.Relocate.Result
			require.NotNil(t, out)
			assert.Equal(t, tt.wantQueued, out.Queued)
			assert.Equal(t, tt.wantSummary, out.Summary)
			assert.Equal(t, tt.wantNote, out.Note)
			assert.Equal(t, tt.wantStaff, out.StaffName)
			assert.Equal(t, tt.wantCount, out.Count)
			assert.Equal(t, "Van 2", out.From)
			assert.Equal(t, "Shelf A", out.To)

			reqs := mock.RelocateRequests()
			require.Len(t, reqs, 1)
			assert.Equal(t, 1, reqs[0].SourceID)
			assert.Equal(t, "Shelf A", reqs[0].DestName)
			assert.Equal(t, "key-1", reqs[0].IdempotencyKey)
			assert.Equal(t, []service.RelocateItem{
				{StockID: 1, CatalogID: 11, PartNo: "V-100", Description: "Valve 15mm", Quantity: 4, JobID: 500},
				{StockID: 2, CatalogID: 12, Description: "Pipe 20mm", Quantity: 10},
			}, reqs[0].Items)
		})
	}
}

// Choosing the source as destination never enables execute.
func TestSelectRelocateDest_SameAsSource(t *testing.T) {
	c, mock := relocateController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, SelectAllRelocate{Selected: true}))
	require.NoError(t, c.Handle(ctx, ProceedToRelocateDest{}))

	err := c.Handle(ctx, SelectRelocateDest{ID: 1})
	assert.ErrorIs(t, err, common.ErrValidation)
	snap := c.Snapshot()
	assert.True(t, snap.Relocate.Warning)
	assert.Nil(t, snap.Relocate.Dest)
	assert.False(t, snap.Relocate.CanExecute)
	assert.Equal(t, "Destination must be different from the source location", snap.Status.Text)

	assert.ErrorIs(t, c.Handle(ctx, ExecuteRelocate{}), common.ErrValidation)
	assert.Zero(t, mock.Calls("Relocate"))

	require.NoError(t, c.Handle(ctx, SelectRelocateDest{ID: 3}))
	snap = c.Snapshot()
	assert.False(t, snap.Relocate.Warning)
	assert.True(t, snap.Relocate.CanExecute)
}

func TestSelectRelocateSource_ChangeClearsPicks(t *testing.T) {
	tests := []struct {
		name      string
		sourceID  int
		wantItems int
		wantDest  bool
	}{
		{name: "same source keeps picks", sourceID: 1, wantItems: 3, wantDest: true},
		{name: "destination becomes source", sourceID: 2},
		{name: "other source", sourceID: 3},
		{name: "cleared source", sourceID: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := relocateController(t)
			ctx := context.Background()

			require.NoError(t, c.Handle(ctx, ToggleRelocateItem{Index: 0}))
			require.NoError(t, c.Handle(ctx, ProceedToRelocateDest{}))
			require.NoError(t, c.Handle(ctx, SelectRelocateDest{ID: 2}))
			require.NoError(t, c.Handle(ctx, SelectRelocateSource{ID: tt.sourceID}))

			snap := c.Snapshot()
			assert.Len(t, snap.Relocate.Items, tt.wantItems)
			assert.Equal(t, tt.wantDest, snap.Relocate.Dest != nil)
			assert.Equal(t, tt.wantDest, snap.Relocate.CanExecute)
			if tt.wantDest {
				return
			}
			assert.Empty(t, snap.Relocate.Selected)
			assert.ErrorIs(t, c.Handle(ctx, ExecuteRelocate{}), common.ErrValidation)
			assert.Zero(t, mock.Calls("Relocate"))
		})
	}
}

func TestExecuteRelocate_RejectsSourceAsDestination(t *testing.T) {
	c, mock := relocateController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, ToggleRelocateItem{Index: 0}))
	require.NoError(t, c.Handle(ctx, ProceedToRelocateDest{}))
	require.NoError(t, c.Handle(ctx, SelectRelocateDest{ID: 2}))

	c.mu.Lock()
	c.st.relocate.source = &model.StorageLocation{ID: 2, Name: "Shelf A"}
	c.mu.Unlock()

	assert.False(t, c.Snapshot().Relocate.CanExecute)
	assert.ErrorIs(t, c.Handle(ctx, ExecuteRelocate{}), common.ErrValidation)
	assert.Zero(t, mock.Calls("Relocate"))
	assert.Equal(t, "Destination must be different from the source location", c.Snapshot().Status.Text)
}

func TestProceedToRelocateDest_ClearsDestination(t *testing.T) {
	c, _ := relocateController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, ToggleRelocateItem{Index: 2}))
	require.NoError(t, c.Handle(ctx, ProceedToRelocateDest{}))
	require.NoError(t, c.Handle(ctx, SelectRelocateDest{ID: 2}))
	require.NoError(t, c.Handle(ctx, Back{To: ScreenRelocateItems}))
	require.NoError(t, c.Handle(ctx, ProceedToRelocateDest{}))

	assert.Nil(t, c.Snapshot().Relocate.Dest)
}

func TestRelocate_Validation(t *testing.T) {
	c, _ := relocateController(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.Handle(ctx, ProceedToRelocateDest{}), common.ErrValidation)
	assert.Equal(t, "Select at least one item", c.Snapshot().Status.Text)
	assert.ErrorIs(t, c.Handle(ctx, ToggleRelocateItem{Index: 5}), common.ErrValidation)

	require.NoError(t, c.Handle(ctx, ToggleRelocateItem{Index: 0}))
	require.NoError(t, c.Handle(ctx, ToggleRelocateItem{Index: 0}))
	assert.Empty(t, c.Snapshot().Relocate.Selected)
}

func TestLoadRelocateItems_Empty(t *testing.T) {
	c, mock := relocateController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, StartNewRelocate{}))
	assert.ErrorIs(t, c.Handle(ctx, LoadRelocateItems{}), common.ErrValidation)

	require.NoError(t, c.Handle(ctx, SelectRelocateSource{ID: 2}))
	err := c.Handle(ctx, LoadRelocateItems{})
	assert.ErrorIs(t, err, common.ErrNotFound)
	snap := c.Snapshot()
	assert.Equal(t, ScreenRelocateSource, snap.Screen)
	assert.Equal(t, "No items found in this location", snap.Status.Text)
	assert.Equal(t, 2, mock.Calls("StockAt"))
}

func TestExecuteRelocate_Failure(t *testing.T) {
	c, mock := relocateController(t)
	ctx := context.Background()
	mock.RelocateFn = func(context.Context, service.RelocateRequest) (*service.RelocateResult, error) {
		return nil, &service.APIError{Status: 200, Message: "Stock record locked"}
	}

	require.NoError(t, c.Handle(ctx, ToggleRelocateItem{Index: 0}))
	require.NoError(t, c.Handle(ctx, ProceedToRelocateDest{}))
	require.NoError(t, c.Handle(ctx, SelectRelocateDest{ID: 2}))
	require.Error(t, c.Handle(ctx, ExecuteRelocate{}))

	snap := c.Snapshot()
	assert.Equal(t, ScreenRelocateDest, snap.Screen)
	assert.Equal(t, "Relocation failed: Stock record locked", snap.Status.Text)
	assert.Nil(t, snap.Relocate.Result)
	assert.True(t, snap.Relocate.CanExecute, "a failed move can be retried")
}
