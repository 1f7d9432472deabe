package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
	Multiplier:   2,
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithRetry(fastRetry), WithKeyFunc(func() string { return "key-1" }))
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "http", url: "http://localhost:3000"},
		{name: "https with trailing slash", url: "https://jobs.example.com/"},
		{name: "missing scheme", url: "localhost:3000", wantErr: true},
		{name: "ftp", url: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.False(t, strings.HasSuffix(c.BaseURL().String(), "/"))
		})
	}
}

func TestClient_Login(t *testing.T) {
	tests := []struct {
		response  any
		name      string
		wantError string
		status    int
		wantErr   bool
	}{
		{
			name:   "success",
			status: http.StatusOK,
			response: map[string]any{
				"success": true,
				"staff":   map[string]any{"id": 7, "username": "sam", "displayName": "Sam", "role": "manager"},
			},
		},
		{
			name:      "rejected with message",
			status:    http.StatusOK,
			response:  map[string]any{"success": false, "error": "Account disabled"},
			wantErr:   true,
			wantError: "Account disabled",
		},
		{
			name:      "unauthorized",
			status:    http.StatusUnauthorized,
			response:  map[string]any{"error": "Invalid username or password"},
			wantErr:   true,
			wantError: "Invalid username or password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/auth/login", r.URL.Path)

				var body map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "sam", body["username"])
				assert.Equal(t, "secret", body["password"])

				writeJSON(t, w, tt.status, tt.response)
			})

			staff, err := c.Login(context.Background(), "sam", "secret")
			if tt.wantErr {
				require.Error(t, err)
				var apiErr *service.APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantError, apiErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Sam", staff.DisplayName)
			assert.Equal(t, model.RoleManager, staff.Role)
			assert.Equal(t, 7, staff.ID)
		})
	}
}

func TestClient_LookupPO(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/po/20458":
			writeJSON(t, w, http.StatusOK, map[string]any{
				"poNumber":   "20458",
				"poId":       991,
				"vendorName": "Acme Supply",
				"jobNumber":  "J-100",
				"items": []map[string]any{
					{"catalogId": 11, "description": "Valve", "quantityOrdered": 4, "quantityReceived": 1, "storageLocation": "Stock Holding"},
				},
			})
		default:
			writeJSON(t, w, http.StatusOK, map[string]any{"error": "PO not found"})
		}
	})

	po, err := c.LookupPO(context.Background(), "20458")
	require.NoError(t, err)
	assert.Equal(t, 991, po.ID)
	assert.Equal(t, "Acme Supply", po.VendorName)
	require.Len(t, po.Items, 1)
	assert.InDelta(t, 3.0, po.Items[0].Remaining(), 0.0001)
	assert.False(t, po.HasAllocatedItems())

	_, err = c.LookupPO(context.Background(), "99999")
	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.Contains(t, err.Error(), "PO not found")
}

func TestClient_RetriesTransientReads(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"count": 2, "items": []map[string]any{
			{"jobId": 1, "orderId": 10, "vendor": "Acme"},
			{"jobId": 2, "orderId": 11, "vendor": "Bolt Co"},
		}})
	})

	list, err := c.PickList(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		writeJSON(t, w, http.StatusUnauthorized, map[string]any{"error": "Not logged in"})
	})

	_, err := c.NeedsReceipting(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_OfflineIsReported(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(addr, WithRetry(fastRetry))
	require.NoError(t, err)

	_, err = c.AuthStatus(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOffline)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
}

func TestClient_AllocateSendsIdempotencyKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantKey string
	}{
		{name: "caller key", key: "alloc-abc", wantKey: "alloc-abc"},
		{name: "generated key", wantKey: "key-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				assert.Equal(t, tt.wantKey, r.Header.Get(IdempotencyHeader))

				raw, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				assert.NotContains(t, string(raw), tt.wantKey)

				var req service.AllocationRequest
				assert.NoError(t, json.Unmarshal(raw, &req))
				assert.Equal(t, 5, req.StorageDeviceID)

				writeJSON(t, w, http.StatusOK, map[string]any{
					"success": true, "successCount": 1, "allocatedBy": "Sam", "allVerified": true,
				})
			})

			res, err := c.Allocate(context.Background(), service.AllocationRequest{
				PONumber:        "20458",
				StorageDeviceID: 5,
				StorageName:     "Bay 5",
				IdempotencyKey:  tt.key,
				Items:           []service.AllocationItem{{CatalogID: 11, Quantity: 2}},
			})
			require.NoError(t, err)
			assert.Equal(t, 1, res.SuccessCount)
			assert.Equal(t, "Sam", res.AllocatedBy)
			assert.Equal(t, int32(1), hits.Load())
		})
	}
}

func TestClient_AllocateServerErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Allocate(context.Background(), service.AllocationRequest{PONumber: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrServerError)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_StorageLocations(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []model.StorageLocation
	}{
		{
			name: "bare array",
			body: `[{"id":1,"name":"Bay 1"},{"id":2,"name":"Bay 2"}]`,
			want: []model.StorageLocation{{ID: 1, Name: "Bay 1"}, {ID: 2, Name: "Bay 2"}},
		},
		{
			name: "locations object",
			body: `{"locations":[{"id":3,"name":"Cage"}]}`,
			want: []model.StorageLocation{{ID: 3, Name: "Cage"}},
		},
		{
			name: "camel case object",
			body: `{"storageLocations":[{"id":4,"name":"Yard"}]}`,
			want: []model.StorageLocation{{ID: 4, Name: "Yard"}},
		},
		{
			name: "snake case object",
			body: `{"storage_locations":[{"id":5,"name":"Van"}]}`,
			want: []model.StorageLocation{{ID: 5, Name: "Van"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/storage-locations", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.StorageLocations(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_StockAtAndRelocate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/storage/3/stock":
			writeJSON(t, w, http.StatusOK, map[string]any{"items": []map[string]any{
				{"stockId": 1, "catalogId": 11, "partNo": "V-1", "description": "Valve", "quantity": 2, "jobId": 100},
			}})
		case "/api/storage/4/stock":
			writeJSON(t, w, http.StatusOK, map[string]any{"error": "Location unavailable"})
		case "/api/relocate":
			assert.Equal(t, "key-1", r.Header.Get(IdempotencyHeader))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"success": true, "requiresBrowserAutomation": true, "queuedCount": 1,
			})
		}
	})

	stock, err := c.StockAt(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, "Valve", stock[0].Label())

	_, err = c.StockAt(context.Background(), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Location unavailable")

	res, err := c.Relocate(context.Background(), service.RelocateRequest{SourceID: 3, DestID: 4})
	require.NoError(t, err)
	assert.True(t, res.RequiresBrowserAutomation)
	assert.Equal(t, 1, res.QueuedCount)
}

func TestClient_Reports(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/logs":
			assert.Equal(t, "50", r.URL.Query().Get("limit"))
			writeJSON(t, w, http.StatusOK, map[string]any{"logs": []map[string]any{
				{"po_number": "20458", "staff_name": "Sam", "items_allocated": 3, "verified": true},
			}})
		case "/api/search-mystery-box":
			assert.Equal(t, "acme box", r.URL.Query().Get("q"))
			writeJSON(t, w, http.StatusOK, map[string]any{"count": 1, "results": []map[string]any{
				{"po_number": "20458", "supplier_name": "Acme"},
			}})
		case "/api/needs-receipting":
			writeJSON(t, w, http.StatusOK, map[string]any{"count": 0, "items": []any{}})
		}
	})

	logs, err := c.AllocationLogs(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 3, logs[0].ItemsAllocated)

	results, err := c.SearchMysteryBox(context.Background(), "acme box")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Acme", results[0].SupplierName)

	summary, err := c.NeedsReceipting(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
}

func TestClient_AllocationLogsMissingIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"error": "Manager access required"})
	})

	_, err := c.AllocationLogs(context.Background(), 50)
	require.Error(t, err)
	assert.True(t, IsRejected(err))
}

func TestClient_Staff(t *testing.T) {
	var (
		mu        sync.Mutex
		gotUpdate map[string]any
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/staff":
			writeJSON(t, w, http.StatusOK, map[string]any{"staff": []map[string]any{
				{"id": 1, "username": "sam", "display_name": "Sam", "role": "admin", "active": true},
			}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/staff":
			writeJSON(t, w, http.StatusOK, map[string]any{"staff": map[string]any{"id": 2}})
		case r.Method == http.MethodPut && r.URL.Path == "/api/staff/2":
			mu.Lock()
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotUpdate))
			mu.Unlock()
			writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
		case r.Method == http.MethodPut && r.URL.Path == "/api/staff/3":
			writeJSON(t, w, http.StatusOK, map[string]any{"error": "Username taken"})
		}
	})
	ctx := context.Background()

	staff, err := c.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "Sam", staff[0].DisplayName)

	require.NoError(t, c.CreateStaff(ctx, service.CreateStaffRequest{Username: "jo", Password: "secret1"}))

	active := false
	require.NoError(t, c.UpdateStaff(ctx, 2, service.UpdateStaffRequest{Active: &active}))
	mu.Lock()
	assert.Equal(t, map[string]any{"active": false}, gotUpdate)
	mu.Unlock()

	err = c.UpdateStaff(ctx, 3, service.UpdateStaffRequest{Active: &active})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Username taken")
}

func TestClient_BestEffortPosts(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/api/docket-data" {
			writeJSON(t, w, http.StatusOK, map[string]any{"error": "Docket table missing"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	})
	ctx := context.Background()

	require.NoError(t, c.SaveBackorder(ctx, service.BackorderRequest{PONumber: "1"}))
	err := c.SaveDocketData(ctx, service.DocketDataRequest{PONumber: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Docket table missing")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/api/backorder", "/api/docket-data"}, paths)
}

func TestMockClient_TracksCalls(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()

	_, err := m.Allocate(ctx, service.AllocationRequest{PONumber: "1", Items: []service.AllocationItem{{CatalogID: 1}}})
	require.NoError(t, err)
	require.NoError(t, m.UpdateStaff(ctx, 4, service.UpdateStaffRequest{}))

	assert.Equal(t, 1, m.Calls("Allocate"))
	assert.Len(t, m.AllocateRequests(), 1)
	assert.Equal(t, 4, m.UpdateStaffCalls()[0].ID)

	m.Reset()
	assert.Zero(t, m.Calls("Allocate"))
	assert.Empty(t, m.AllocateRequests())
}
