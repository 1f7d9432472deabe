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

func browsingController(t *testing.T) (*Controller, *backend.MockClient) {
	t.Helper()
	mock := backend.NewMockClient()
	mock.StorageLocationsFn = func(context.Context) ([]model.StorageLocation, error) {
		return sampleLocations, nil
	}
	c := newTestController(t, mock)
	loginAs(t, c, mock, model.RoleStaff)
	return c, mock
}

func TestBrowseStock(t *testing.T) {
	c, mock := browsingController(t)
	ctx := context.Background()
	mock.StockAtFn = func(_ context.Context, id int) ([]model.StockRecord, error) {
		switch id {
		case 1:
			return vanStock, nil
		case 2:
			return nil, nil
		}
		return nil, common.ErrOffline
	}

	require.NoError(t, c.Handle(ctx, OpenStock{}))
	assert.Equal(t, ScreenStock, c.Screen())
	assert.Len(t, c.Snapshot().Locations, 3)

	require.NoError(t, c.Handle(ctx, BrowseStock{LocationID: 1}))
	snap := c.Snapshot()
	assert.Equal(t, "Van 2", snap.Stock.Location.Name)
	assert.Len(t, snap.Stock.Records, 3)
	assert.Empty(t, snap.Stock.Message)

	require.NoError(t, c.Handle(ctx, BrowseStock{LocationID: 2}))
	assert.Equal(t, "No items found in this location", c.Snapshot().Stock.Message)

	require.Error(t, c.Handle(ctx, BrowseStock{LocationID: 3}))
	assert.Equal(t, "Failed to load items", c.Snapshot().Stock.Message)

	assert.ErrorIs(t, c.Handle(ctx, BrowseStock{LocationID: 9}), common.ErrValidation)
}

func TestOpenPickList(t *testing.T) {
	c, mock := browsingController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, OpenPickList{}))
	assert.Equal(t, "Nothing ready to pick", c.Snapshot().PickList.Message)

	mock.PickListFn = func(context.Context) (*model.PickList, error) {
		return &model.PickList{Count: 1, Items: []model.PickItem{{Vendor: "Acme", JobID: 5, OrderID: 9}}}, nil
	}
	require.NoError(t, c.Handle(ctx, OpenPickList{}))
	snap := c.Snapshot()
	assert.Equal(t, ScreenPickList, snap.Screen)
	require.NotNil(t, snap.PickList.List)
	assert.Len(t, snap.PickList.List.Items, 1)
	assert.Equal(t, 1, snap.Home.PickListCount)

	mock.PickListFn = func(context.Context) (*model.PickList, error) {
		return nil, common.ErrOffline
	}
	require.Error(t, c.Handle(ctx, OpenPickList{}))
	assert.Equal(t, "Failed to load pick list", c.Snapshot().PickList.Message)
}

func TestSearchMystery(t *testing.T) {
	c, mock := browsingController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, OpenMystery{}))
	require.NoError(t, c.Handle(ctx, SearchMystery{Query: "  "}))
	assert.Zero(t, mock.Calls("SearchMysteryBox"))

	require.NoError(t, c.Handle(ctx, SearchMystery{Query: "acme"}))
	assert.Equal(t, "No matching records found", c.Snapshot().Mystery.Message)

	mock.SearchMysteryBoxFn = func(_ context.Context, q string) ([]model.MysteryResult, error) {
		return []model.MysteryResult{{PONumber: "20458", SupplierName: q}}, nil
	}
	require.NoError(t, c.Handle(ctx, SearchMystery{Query: "Acme"}))
	snap := c.Snapshot()
	assert.Equal(t, "Acme", snap.Mystery.Query)
	require.Len(t, snap.Mystery.Results, 1)
	assert.Empty(t, snap.Mystery.Message)

	mock.SearchMysteryBoxFn = func(context.Context, string) ([]model.MysteryResult, error) {
		return nil, &service.APIError{Status: 500, Message: "index offline"}
	}
	require.Error(t, c.Handle(ctx, SearchMystery{Query: "Acme"}))
	assert.Equal(t, "Search failed: index offline", c.Snapshot().Mystery.Message)
}

func TestOpenLogs(t *testing.T) {
	tests := []struct {
		err         error
		name        string
		logs        []model.AllocationLog
		wantMessage string
		wantLen     int
	}{
		{
			name:    "loaded",
			logs:    []model.AllocationLog{{PONumber: "20458", ItemsAllocated: 2}},
			wantLen: 1,
		},
		{name: "empty", wantMessage: "No allocation logs yet"},
		{name: "rejected", err: &service.APIError{Status: 200}, wantMessage: "Failed to load logs"},
		{name: "unreachable", err: common.ErrOffline, wantMessage: "Error loading logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := browsingController(t)
			var gotLimit int
			mock.AllocationLogsFn = func(_ context.Context, limit int) ([]model.AllocationLog, error) {
				gotLimit = limit
				return tt.logs, tt.err
			}

			err := c.Handle(context.Background(), OpenLogs{})
			if tt.err != nil {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			snap := c.Snapshot()
			assert.Equal(t, ScreenLogs, snap.Screen)
			assert.Equal(t, LogLimit, gotLimit)
			assert.Equal(t, tt.wantMessage, snap.Logs.Message)
			assert.Len(t, snap.Logs.Logs, tt.wantLen)
		})
	}
}
