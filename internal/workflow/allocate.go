package workflow

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"regexp"
	"slices"
	"time"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/service"
)

// postWork is what the follow-up tasks need, captured when the allocation
// is sent so later edits cannot leak into them.
type postWork struct {
	po         model.PurchaseOrder
	extraction *model.DocketExtraction
	itemPhotos map[int][]byte
	groupPhoto []byte
	backorders []service.BackorderItem
	selection  []selectedItem
	photoMode  PhotoMode
	date       time.Time
}

func (c *Controller) submitAllocation(ctx context.Context) error {
	c.mu.Lock()
	r := &c.st.receive
	if r.storage == nil || len(r.selection) == 0 || r.po == nil {
		err := c.reject("Please select items and a storage location")
		c.mu.Unlock()
		return err
	}
	tk, err := c.begin(opAllocate)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	storage := *r.storage
	req := service.AllocationRequest{
		POID:            r.po.ID,
		PONumber:        r.po.PONumber,
		JobNumber:       r.po.JobNumber,
		VendorName:      r.po.VendorName,
		StorageDeviceID: storage.ID,
		StorageName:     storage.Name,
		IdempotencyKey:  c.newKey(),
		Items:           make([]service.AllocationItem, 0, len(r.selection)),
	}
	for _, sel := range r.selection {
		req.Items = append(req.Items, allocationItem(sel))
	}
	work := postWork{
		po:         *clonePO(r.po),
		extraction: clonePtr(r.docket.extraction),
		itemPhotos: maps.Clone(r.photos.items),
		groupPhoto: r.photos.group,
		backorders: slices.Clone(r.backorders),
		selection:  slices.Clone(r.selection),
		photoMode:  r.photos.mode,
		date:       c.now(),
	}
	staffName := c.actor().DisplayName
	c.showLocked(ScreenProcessing)
	c.setStatus(StatusLoading, "Allocating items...")
	c.mu.Unlock()

	slog.Info("Submitting allocation",
		"po_number", req.PONumber,
		"storage", req.StorageName,
		"items", len(req.Items),
		"idempotency_key", req.IdempotencyKey)

	res, err := c.backend.Allocate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(tk) {
		return nil
	}
	if err != nil {
		slog.Error("Allocation failed", "po_number", req.PONumber, "error", err)
		c.showLocked(ScreenStorage)
		detail := failureText(err, "Unknown error")
		if !backendRejected(err) {
			detail = "could not reach the server"
		}
		return c.fail("Allocation failed: "+detail, err)
	}

	c.seq++
	success := &successState{
		result:         *res,
		storageName:    storage.Name,
		staffName:      res.AllocatedBy,
		backorderCount: len(work.backorders),
		seq:            c.seq,
		tasks:          make(map[string]*postTask),
		pickingSlip:    pickingSlipState{status: TaskPending, message: "Generate a picking slip for field workers"},
	}
	if success.staffName == "" {
		success.staffName = staffName
	}
	c.st.success = success
	c.st.receive.backorders = nil
	c.showLocked(ScreenSuccess)

	c.startPostTasks(context.WithoutCancel(ctx), success, work)
	return nil
}

// allocationItem never sends a zero quantity.
func allocationItem(sel selectedItem) service.AllocationItem {
	qty := sel.quantity
	if qty == 0 {
		qty = sel.item.QuantityOrdered
	}
	if qty == 0 {
		qty = 1
	}
	status := sel.item.ReceiptStatus
	if status == "" {
		status = model.NotReceipted
	}
	return service.AllocationItem{
		CatalogID:        sel.item.CatalogID,
		Quantity:         qty,
		ReceiptStatus:    status,
		QuantityOrdered:  sel.item.QuantityOrdered,
		QuantityReceived: sel.item.QuantityReceived,
	}
}

// startPostTasks launches the follow-up requests. Each is independent and
// best effort. Callers hold the lock.
func (c *Controller) startPostTasks(ctx context.Context, s *successState, work postWork) {
	launch := func(name string, skipReason string, run func() (string, error)) {
		if skipReason != "" {
			s.tasks[name] = &postTask{status: TaskSkipped, detail: skipReason}
			return
		}
		s.tasks[name] = &postTask{status: TaskPending}
		c.tasks.Go(func() {
			detail, err := run()
			c.finishTask(s.seq, name, detail, err)
		})
	}

	skip := ""
	if len(work.backorders) == 0 {
		skip = "no backordered items"
	}
	launch(TaskBackorder, skip, func() (string, error) {
		err := c.backend.SaveBackorder(ctx, service.BackorderRequest{
			POID:       work.po.ID,
			PONumber:   work.po.PONumber,
			VendorName: work.po.VendorName,
			Items:      work.backorders,
		})
		return fmt.Sprintf("%d item(s) saved", len(work.backorders)), err
	})

	skip = ""
	if work.extraction == nil {
		skip = "no docket scanned"
	}
	launch(TaskDocket, skip, func() (string, error) {
		err := c.backend.SaveDocketData(ctx, service.DocketDataRequest{
			POID:             work.po.ID,
			PONumber:         work.po.PONumber,
			DocketExtraction: derefExtraction(work.extraction),
		})
		return "docket details saved", err
	})

	upload, skip := photoUpload(work)
	launch(TaskPhotos, skip, func() (string, error) {
		res, err := c.backend.UploadPhotos(ctx, upload)
		c.recordPhotoResult(s.seq, res, err)
		if err != nil {
			return "", err
		}
		if res == nil {
			return "photos uploaded", nil
		}
		return fmt.Sprintf("%d photo(s) uploaded", res.Uploaded), nil
	})
}

func derefExtraction(e *model.DocketExtraction) model.DocketExtraction {
	if e == nil {
		return model.DocketExtraction{}
	}
	return *e
}

func (c *Controller) finishTask(seq int, name, detail string, err error) {
	if err != nil {
		slog.Warn("Follow-up request failed", "task", name, "error", err)
	}

	c.mu.Lock()
	if s := c.st.success; s != nil && s.seq == seq {
		t := s.tasks[name]
		if err != nil {
			t.status = TaskFailed
			t.detail = failureText(err, err.Error())
		} else {
			t.status = TaskSucceeded
			t.detail = detail
		}
	}
	c.mu.Unlock()
	c.notify()
}

// recordPhotoResult keeps the backend's answer for the success screen.
// Transport failures leave no result, as if no upload had been attempted.
func (c *Controller) recordPhotoResult(seq int, res *service.PhotoUploadResult, err error) {
	switch {
	case err == nil:
		if res == nil {
			return
		}
	case backendRejected(err):
		res = &service.PhotoUploadResult{Error: failureText(err, "")}
	default:
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.st.success; s != nil && s.seq == seq {
		s.photoResult = clonePtr(res)
	}
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9]`)

// photoFilename is the per-item upload name: part number, else
// description, else "item", reduced to 30 safe characters.
func photoFilename(poNumber string, item model.LineItem, date time.Time) string {
	name := item.PartNo
	if name == "" {
		name = item.Description
	}
	if name == "" {
		name = "item"
	}
	safe := unsafeFilename.ReplaceAllString(name, "_")
	if len(safe) > 30 {
		safe = safe[:30]
	}
	return fmt.Sprintf("PO_%s_%s_%s.jpg", poNumber, safe, date.Format(time.DateOnly))
}

// photoJobIDs prefers the distinct job numbers of the selected lines, then
// the PO's own job. None means there is nothing to attach photos to.
func photoJobIDs(po model.PurchaseOrder, selection []selectedItem) []string {
	var ids []string
	for _, sel := range selection {
		job := sel.item.JobNumber
		if model.HasJob(job) && !slices.Contains(ids, job) {
			ids = append(ids, job)
		}
	}
	if len(ids) == 0 && model.HasJob(po.JobNumber) {
		ids = append(ids, po.JobNumber)
	}
	return ids
}

// photoUpload builds the upload request, or a reason to skip it.
func photoUpload(work postWork) (service.PhotoUploadRequest, string) {
	if !work.photoMode.uploads() {
		return service.PhotoUploadRequest{}, "no photos requested"
	}

	var photos []service.Photo
	switch work.photoMode {
	case PhotoGroup:
		if len(work.groupPhoto) > 0 {
			photos = append(photos, service.Photo{
				Base64:   dataURL(work.groupPhoto),
				Filename: fmt.Sprintf("PO_%s_delivery_%s.jpg", work.po.PONumber, work.date.Format(time.DateOnly)),
			})
		}
	case PhotoIndividual:
		for _, sel := range work.selection {
			img, ok := work.itemPhotos[sel.index]
			if !ok {
				continue
			}
			photos = append(photos, service.Photo{
				Base64:   dataURL(img),
				Filename: photoFilename(work.po.PONumber, sel.item, work.date),
			})
		}
	}
	if len(photos) == 0 {
		return service.PhotoUploadRequest{}, "no photos captured"
	}

	jobIDs := photoJobIDs(work.po, work.selection)
	if len(jobIDs) == 0 {
		return service.PhotoUploadRequest{}, "no job to attach photos to"
	}
	return service.PhotoUploadRequest{
		PONumber:   work.po.PONumber,
		POSimproID: work.po.ID,
		JobIDs:     jobIDs,
		Photos:     photos,
	}, ""
}

// dataURL encodes an image the way a browser file reader would.
func dataURL(img []byte) string {
	return "data:" + http.DetectContentType(img) + ";base64," + base64.StdEncoding.EncodeToString(img)
}
