package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dockside/receiving/internal/model"
)

func (c *Controller) openStock(ctx context.Context) error {
	c.mu.Lock()
	c.st.stock = stockState{}
	c.showLocked(ScreenStock)
	c.mu.Unlock()

	return c.ensureLocations(ctx)
}

func (c *Controller) browseStock(ctx context.Context, locationID int) error {
	if err := c.ensureLocations(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	loc, ok := c.location(locationID)
	if !ok {
		err := c.reject("Unknown storage location")
		c.mu.Unlock()
		return err
	}
	tk, err := c.begin(opStock)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.st.stock = stockState{location: &loc}
	c.setStatus(StatusLoading, "Loading items from storage...")
	c.mu.Unlock()

	records, err := c.backend.StockAt(ctx, loc.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(tk) {
		return nil
	}
	if err != nil {
		c.st.stock.message = failureText(err, "Failed to load items")
		return c.fail(c.st.stock.message, err)
	}
	c.st.status = Status{}
	c.st.stock.records = records
	if len(records) == 0 {
		c.st.stock.message = "No items found in this location"
	}
	return nil
}

func (c *Controller) openPickList(ctx context.Context) error {
	c.mu.Lock()
	c.showLocked(ScreenPickList)
	c.st.picklist.message = ""
	c.setStatus(StatusLoading, "Loading pick list...")
	epoch := c.epoch
	c.mu.Unlock()

	list, err := c.backend.PickList(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended(epoch) {
		return nil
	}
	if err != nil {
		slog.Warn("Failed to load pick list", "error", err)
		c.st.picklist.message = "Failed to load pick list"
		return c.fail(c.st.picklist.message, err)
	}
	if list == nil {
		list = &model.PickList{}
	}
	c.st.status = Status{}
	c.st.picklist.list = list
	c.st.home.pickListCount = list.Count
	if len(list.Items) == 0 {
		c.st.picklist.message = "Nothing ready to pick"
	}
	return nil
}

// searchMystery ignores blank queries.
func (c *Controller) searchMystery(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	c.mu.Lock()
	tk, err := c.begin(opBrowse)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.st.mystery = mysteryState{query: query, message: "Searching..."}
	c.mu.Unlock()

	results, err := c.backend.SearchMysteryBox(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(tk) {
		return nil
	}
	if err != nil {
		c.st.mystery.message = "Search failed: " + failureText(err, "could not reach the server")
		return c.fail(c.st.mystery.message, err)
	}
	c.st.mystery.results = results
	c.st.mystery.message = ""
	if len(results) == 0 {
		c.st.mystery.message = "No matching records found"
	}
	return nil
}

func (c *Controller) openLogs(ctx context.Context) error {
	c.mu.Lock()
	c.showLocked(ScreenLogs)
	c.st.logs = logsState{message: "Loading logs..."}
	epoch := c.epoch
	c.mu.Unlock()

	logs, err := c.backend.AllocationLogs(ctx, LogLimit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended(epoch) {
		return nil
	}
	if err != nil {
		slog.Warn("Failed to load allocation logs", "error", err)
		c.st.logs.message = "Error loading logs"
		if backendRejected(err) {
			c.st.logs.message = "Failed to load logs"
		}
		return c.fail(c.st.logs.message, err)
	}
	c.st.logs = logsState{logs: logs}
	if len(logs) == 0 {
		c.st.logs.message = "No allocation logs yet"
	}
	return nil
}
