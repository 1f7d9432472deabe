package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockside/receiving/internal/backend"
	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/docket"
	"github.com/dockside/receiving/internal/model"
)

func receivingController(t *testing.T) (*Controller, *backend.MockClient) {
	t.Helper()
	mock := backend.NewMockClient()
	c := newTestController(t, mock)
	loginAs(t, c, mock, model.RoleStaff)
	withPO(t, c, mock)
	return c, mock
}

func TestLookupPO(t *testing.T) {
	c, mock := receivingController(t)

	snap := c.Snapshot()
	assert.Equal(t, ScreenVerify, snap.Screen)
	assert.Equal(t, "20458", snap.Receive.PO.PONumber)
	assert.Equal(t, "0 of 3 items selected", snap.Receive.SelectionText)
	assert.Equal(t, "1 Mar 2025", snap.Receive.DueDate)
	assert.True(t, snap.Receive.Overdue)
	assert.True(t, snap.Receive.HasAllocatedItems)
	assert.False(t, snap.Receive.CanProceed)
	require.Len(t, snap.Receive.Items, 3)
	assert.Equal(t, 3.0, snap.Receive.Items[0].Remaining)
	assert.Equal(t, 3.0, snap.Receive.Items[0].Draft)

	t.Run("blank number", func(t *testing.T) {
		err := c.Handle(context.Background(), LookupPO{Number: "   "})
		assert.ErrorIs(t, err, common.ErrValidation)
		assert.Equal(t, "Please enter a PO number", c.Snapshot().Status.Text)
		assert.Equal(t, 1, mock.Calls("LookupPO"))
	})

	t.Run("not found keeps backend message", func(t *testing.T) {
		mock.LookupPOFn = func(context.Context, string) (*model.PurchaseOrder, error) {
			return nil, apiFailure(common.ErrNotFound, 404, "PO 99999 not found")
		}
		err := c.Handle(context.Background(), LookupPO{Number: "99999"})
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.Equal(t, "PO 99999 not found", c.Snapshot().Status.Text)
	})

	t.Run("offline", func(t *testing.T) {
		mock.LookupPOFn = func(context.Context, string) (*model.PurchaseOrder, error) {
			return nil, common.ErrOffline
		}
		err := c.Handle(context.Background(), LookupPO{Number: "20458"})
		assert.ErrorIs(t, err, common.ErrOffline)
		assert.Equal(t, "Failed to lookup PO", c.Snapshot().Status.Text)
	})
}

// Toggling a line twice leaves the selection as it was.
func TestToggleItem_TwiceIsIdentity(t *testing.T) {
	c, _ := receivingController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, ToggleItem{Index: 1}))
	before := c.Snapshot().Receive

	require.NoError(t, c.Handle(ctx, ToggleItem{Index: 0}))
	assert.Equal(t, 2, c.Snapshot().Receive.SelectedCount)
	require.NoError(t, c.Handle(ctx, ToggleItem{Index: 0}))

	after := c.Snapshot().Receive
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.SelectedCount, after.SelectedCount)
}

func TestToggleItem_OutOfRange(t *testing.T) {
	c, _ := receivingController(t)

	err := c.Handle(context.Background(), ToggleItem{Index: 7})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "No item at position 8", c.Snapshot().Status.Text)
}

// A quantity is never outside [0, remaining], except that a
// fully receipted line starts at its ordered quantity.
func TestSetQuantity_Clamped(t *testing.T) {
	tests := []struct {
		name  string
		index int
		input float64
		want  float64
	}{
		{name: "within range", index: 0, input: 2, want: 2},
		{name: "above remaining", index: 0, input: 9, want: 3},
		{name: "negative", index: 1, input: -4, want: 0},
		{name: "exactly remaining", index: 1, input: 10, want: 10},
		{name: "fully receipted", index: 2, input: 5, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := receivingController(t)
			ctx := context.Background()

			require.NoError(t, c.Handle(ctx, ToggleItem{Index: tt.index}))
			require.NoError(t, c.Handle(ctx, SetQuantity{Index: tt.index, Quantity: tt.input}))

			item := c.Snapshot().Receive.Items[tt.index]
			assert.True(t, item.Selected)
			assert.Equal(t, tt.want, item.Quantity)
			assert.Equal(t, tt.want, item.Draft)
		})
	}
}

func TestToggleItem_SeedsQuantity(t *testing.T) {
	c, _ := receivingController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, SetQuantity{Index: 0, Quantity: 2}))
	assert.False(t, c.Snapshot().Receive.Items[0].Selected)

	require.NoError(t, c.Handle(ctx, SelectAll{Selected: true}))
	items := c.Snapshot().Receive.Items
	assert.Equal(t, 2.0, items[0].Quantity, "draft is kept")
	assert.Equal(t, 10.0, items[1].Quantity, "remaining")
	assert.Equal(t, 2.0, items[2].Quantity, "fully receipted seeds ordered")
	assert.Equal(t, "3 of 3 items selected", c.Snapshot().Receive.SelectionText)

	require.NoError(t, c.Handle(ctx, SelectAll{Selected: false}))
	assert.Zero(t, c.Snapshot().Receive.SelectedCount)
}

// Flagging twice clears the flag, and the recorded quantity is
// what remained when it was flagged.
func TestToggleBackorder(t *testing.T) {
	c, _ := receivingController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, ToggleBackorder{Index: 0}))
	require.NoError(t, c.Handle(ctx, ToggleItem{Index: 0}))
	require.NoError(t, c.Handle(ctx, SetQuantity{Index: 0, Quantity: 1}))

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Receive.BackorderCount)
	assert.True(t, snap.Receive.Items[0].Backordered)
	assert.True(t, snap.Receive.Items[0].Selected, "backorders are independent of selection")

	c.mu.Lock()
	recorded := c.st.receive.backorders[0]
	c.mu.Unlock()
	assert.Equal(t, 3.0, recorded.Quantity)
	assert.Equal(t, "V-100", recorded.PartNo)
	assert.Equal(t, "J-100", recorded.JobNumber)

	require.NoError(t, c.Handle(ctx, ToggleBackorder{Index: 0}))
	assert.Zero(t, c.Snapshot().Receive.BackorderCount)
	assert.False(t, c.Snapshot().Receive.Items[0].Backordered)
}

// Loading a new PO drops the previous selection and backorders.
func TestLookupPO_ClearsSelectionAndBackorders(t *testing.T) {
	c, _ := receivingController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, SelectAll{Selected: true}))
	require.NoError(t, c.Handle(ctx, ToggleBackorder{Index: 1}))
	require.NoError(t, c.Handle(ctx, SetQuantity{Index: 0, Quantity: 1}))
	require.NoError(t, c.Handle(ctx, ProceedToStorage{}))
	require.NoError(t, c.Handle(ctx, SelectStorage{ID: 2}))
	require.NoError(t, c.Handle(ctx, SetPhotoMode{Mode: PhotoGroup}))
	require.NoError(t, c.Handle(ctx, AttachGroupPhoto{Image: []byte("delivery")}))

	require.NoError(t, c.Handle(ctx, LookupPO{Number: "20458"}))
	snap := c.Snapshot()
	assert.Zero(t, snap.Receive.SelectedCount)
	assert.Zero(t, snap.Receive.BackorderCount)
	assert.Equal(t, 3.0, snap.Receive.Items[0].Draft, "drafts reset to remaining")
	assert.Nil(t, snap.Receive.Storage, "storage belongs to the previous PO")
	assert.False(t, snap.Receive.Photos.HasGroup, "delivery photo belongs to the previous PO")
	assert.Equal(t, PhotoGroup, snap.Receive.Photos.Mode)
}

func TestProceedToStorage(t *testing.T) {
	c, mock := receivingController(t)
	ctx := context.Background()

	err := c.Handle(ctx, ProceedToStorage{})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Select at least one item", c.Snapshot().Status.Text)

	require.NoError(t, c.Handle(ctx, ToggleItem{Index: 1}))
	require.NoError(t, c.Handle(ctx, ProceedToStorage{}))
	require.NoError(t, c.Handle(ctx, Back{To: ScreenVerify}))
	require.NoError(t, c.Handle(ctx, ProceedToStorage{}))

	snap := c.Snapshot()
	assert.Equal(t, ScreenStorage, snap.Screen)
	assert.Equal(t, sampleLocations, snap.Locations)
	assert.Equal(t, 1, mock.Calls("StorageLocations"), "locations load once")
	assert.False(t, snap.Receive.CanAllocate)

	require.NoError(t, c.Handle(ctx, SelectStorage{ID: 3}))
	snap = c.Snapshot()
	require.NotNil(t, snap.Receive.Storage)
	assert.Equal(t, "Bay 3", snap.Receive.Storage.Name)
	assert.True(t, snap.Receive.CanAllocate)

	assert.ErrorIs(t, c.Handle(ctx, SelectStorage{ID: 42}), common.ErrValidation)
	require.NoError(t, c.Handle(ctx, SelectStorage{ID: 0}))
	assert.Nil(t, c.Snapshot().Receive.Storage)
}

func TestProceedToStorage_LocationsFail(t *testing.T) {
	c, mock := receivingController(t)
	ctx := context.Background()
	mock.StorageLocationsFn = func(context.Context) ([]model.StorageLocation, error) {
		return nil, common.ErrOffline
	}

	require.NoError(t, c.Handle(ctx, ToggleItem{Index: 1}))
	err := c.Handle(ctx, ProceedToStorage{})
	assert.ErrorIs(t, err, common.ErrOffline)
	assert.Equal(t, "Failed to load storage locations", c.Snapshot().Status.Text)
}

func TestPhotoModes(t *testing.T) {
	c, _ := receivingController(t)
	ctx := context.Background()
	img := []byte("\xff\xd8\xff\xe0jpeg")

	assert.ErrorIs(t, c.Handle(ctx, AttachGroupPhoto{Image: img}), common.ErrValidation)

	require.NoError(t, c.Handle(ctx, SetPhotoMode{Mode: PhotoGroup}))
	require.NoError(t, c.Handle(ctx, AttachGroupPhoto{Image: img}))
	assert.True(t, c.Snapshot().Receive.Photos.HasGroup)

	require.NoError(t, c.Handle(ctx, SetPhotoMode{Mode: PhotoIndividual}))
	err := c.Handle(ctx, AttachItemPhoto{Index: 0, Image: img})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Select the item before adding its photo", c.Snapshot().Status.Text)

	require.NoError(t, c.Handle(ctx, ToggleItem{Index: 0}))
	require.NoError(t, c.Handle(ctx, AttachItemPhoto{Index: 0, Image: img}))
	assert.Equal(t, []int{0}, c.Snapshot().Receive.Photos.ItemPhotos)
	assert.True(t, c.Snapshot().Receive.Items[0].HasPhoto)

	require.NoError(t, c.Handle(ctx, RemoveItemPhoto{Index: 0}))
	assert.Empty(t, c.Snapshot().Receive.Photos.ItemPhotos)

	require.NoError(t, c.Handle(ctx, SetPhotoMode{Mode: PhotoSkip}))
	photos := c.Snapshot().Receive.Photos
	assert.Equal(t, PhotoSkip, photos.Mode)
	assert.False(t, photos.HasGroup)

	assert.ErrorIs(t, c.Handle(ctx, SetPhotoMode{Mode: PhotoMode(9)}), common.ErrValidation)
}

type fixedScanner struct {
	result docket.Result
}

func (s fixedScanner) Scan(_ context.Context, _ []byte, progress docket.ProgressFunc) docket.Result {
	progress(0.5)
	return s.result
}

func TestScanDocket(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		c, _ := receivingController(t)
		err := c.Handle(context.Background(), ScanDocket{Image: []byte("img")})
		assert.ErrorIs(t, err, common.ErrValidation)
		assert.Equal(t, "Docket scanning is not available", c.Snapshot().Status.Text)
	})

	tests := []struct {
		name     string
		result   docket.Result
		wantKind StatusKind
	}{
		{
			name: "found",
			result: docket.Result{
				Extraction: &model.DocketExtraction{PONumber: "20458", SupplierName: "Acme Supply"},
				Message:    "Found PO #20458",
				Found:      true,
			},
			wantKind: StatusInfo,
		},
		{
			name:     "not found",
			result:   docket.Result{Extraction: &model.DocketExtraction{}, Message: docket.MessageNotFound},
			wantKind: StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := backend.NewMockClient()
			var notified int
			c := newTestController(t, mock,
				WithScanner(fixedScanner{result: tt.result}),
				WithOnChange(func() { notified++ }))
			loginAs(t, c, mock, model.RoleStaff)

			require.NoError(t, c.Handle(context.Background(), ScanDocket{Image: []byte("img")}))
			snap := c.Snapshot()
			assert.Equal(t, tt.result.Message, snap.Status.Text)
			assert.Equal(t, tt.wantKind, snap.Status.Kind)
			assert.Equal(t, tt.result.Found, snap.Receive.Docket.Found)
			assert.True(t, snap.Receive.Docket.HasPhoto)
			assert.False(t, snap.Receive.Docket.Scanning)
			assert.Equal(t, 0.5, snap.Receive.Docket.Progress)
			assert.Equal(t, 1, notified)
		})
	}

	t.Run("empty image", func(t *testing.T) {
		mock := backend.NewMockClient()
		c := newTestController(t, mock, WithScanner(fixedScanner{}))
		loginAs(t, c, mock, model.RoleStaff)
		err := c.Handle(context.Background(), ScanDocket{})
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestStartNewPO(t *testing.T) {
	c, _ := receivingController(t)
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, ToggleItem{Index: 1}))
	require.NoError(t, c.Handle(ctx, ProceedToStorage{}))
	require.NoError(t, c.Handle(ctx, SelectStorage{ID: 2}))
	require.NoError(t, c.Handle(ctx, ToggleBackorder{Index: 0}))

	require.NoError(t, c.Handle(ctx, StartNewPO{}))
	snap := c.Snapshot()
	assert.Equal(t, ScreenScan, snap.Screen)
	assert.Nil(t, snap.Receive.PO)
	assert.Nil(t, snap.Receive.Storage)
	assert.Zero(t, snap.Receive.SelectedCount)
	assert.Zero(t, snap.Receive.BackorderCount)
	assert.Nil(t, snap.Success)

	c.mu.Lock()
	last := c.st.receive.lastStorageName
	c.mu.Unlock()
	assert.Equal(t, "Shelf A", last)
}
