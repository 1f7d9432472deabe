package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/workflow"
)

var screenTitles = map[workflow.Screen]string{
	workflow.ScreenLogin:           "Sign in",
	workflow.ScreenHome:            "PO Receiving",
	workflow.ScreenScan:            "Scan PO",
	workflow.ScreenVerify:          "Verify items",
	workflow.ScreenStorage:         "Choose storage",
	workflow.ScreenProcessing:      "Processing",
	workflow.ScreenSuccess:         "Allocation complete",
	workflow.ScreenStock:           "Browse stock",
	workflow.ScreenPickList:        "Pick list",
	workflow.ScreenRelocateSource:  "Relocate: from",
	workflow.ScreenRelocateItems:   "Relocate: items",
	workflow.ScreenRelocateDest:    "Relocate: to",
	workflow.ScreenRelocateSuccess: "Relocation complete",
	workflow.ScreenStaffMgmt:       "Staff management",
	workflow.ScreenLogs:            "Allocation logs",
	workflow.ScreenLabels:          "Reprint labels",
	workflow.ScreenMystery:         "Mystery box search",
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n")
	if p := m.prompt; p != nil {
		b.WriteString("\n" + m.theme.Bold.Render(p.label+": ") + p.input.View() + "\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n" + m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render(screenTitles[m.snap.Screen])
	if m.snap.Staff == nil {
		return title
	}
	who := m.theme.Subtitle.Render(fmt.Sprintf("%s (%s)", m.snap.Staff.DisplayName, m.snap.Staff.Role))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", who)
}

func (m Model) renderStatus() string {
	var parts []string
	if len(m.snap.Busy) > 0 {
		parts = append(parts, m.spinner.View()+" "+m.theme.StatusPending.Render("Working..."))
	}
	st := m.snap.Status
	switch st.Kind {
	case workflow.StatusLoading:
		parts = append(parts, m.theme.StatusPending.Render(st.Text))
	case workflow.StatusInfo:
		parts = append(parts, m.theme.StatusInfo.Render(st.Text))
	case workflow.StatusError:
		parts = append(parts, m.theme.StatusError.Render(st.Text))
	}
	if m.errText != "" && st.Kind != workflow.StatusError {
		parts = append(parts, m.theme.StatusError.Render(m.errText))
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderHelp() string {
	bindings := m.screenBindings()
	if m.showHelp {
		return m.help.FullHelpView([][]key.Binding{bindings, {m.keymap.Back, m.keymap.Help, m.keymap.Quit}})
	}
	return m.help.ShortHelpView(append(bindings, m.keymap.Back, m.keymap.Quit))
}

// screenBindings lists the keys that do something on the current screen.
func (m Model) screenBindings() []key.Binding {
	k := m.keymap
	switch m.snap.Screen {
	case workflow.ScreenLogin:
		return []key.Binding{k.NextField, k.Confirm}
	case workflow.ScreenHome:
		return []key.Binding{k.Up, k.Down, k.Confirm, k.Refresh}
	case workflow.ScreenScan:
		return []key.Binding{k.Confirm, k.Docket}
	case workflow.ScreenVerify:
		return []key.Binding{k.Toggle, k.SelectAll, k.SelectNone, k.Increase, k.Decrease, k.EditQty, k.Backorder, k.Photo, k.Labels, k.Confirm}
	case workflow.ScreenStorage:
		return []key.Binding{k.Up, k.Down, k.Confirm, k.PhotoMode, k.Photo, k.Submit}
	case workflow.ScreenSuccess:
		return []key.Binding{k.Labels, k.Slip, k.New, k.Home}
	case workflow.ScreenStock, workflow.ScreenRelocateSource:
		return []key.Binding{k.Up, k.Down, k.Confirm}
	case workflow.ScreenRelocateItems:
		return []key.Binding{k.Toggle, k.SelectAll, k.SelectNone, k.Confirm}
	case workflow.ScreenRelocateDest:
		return []key.Binding{k.Up, k.Down, k.Confirm, k.Submit}
	case workflow.ScreenRelocateSuccess:
		return []key.Binding{k.New, k.Home}
	case workflow.ScreenPickList, workflow.ScreenLogs:
		return []key.Binding{k.Refresh}
	case workflow.ScreenStaffMgmt:
		if m.snap.Staffing.Pending != nil {
			return []key.Binding{k.Yes, k.No}
		}
		if m.snap.Staffing.Form != nil {
			return []key.Binding{k.NextField, k.CycleRole, k.Active, k.Confirm}
		}
		return []key.Binding{k.New, k.Edit, k.Enable}
	case workflow.ScreenLabels, workflow.ScreenMystery:
		return []key.Binding{k.Confirm}
	}
	return nil
}

func (m Model) renderBody() string {
	switch m.snap.Screen {
	case workflow.ScreenLogin:
		return m.renderInputs()
	case workflow.ScreenHome:
		return m.renderHome()
	case workflow.ScreenScan:
		return m.renderScan()
	case workflow.ScreenVerify:
		return m.renderVerify()
	case workflow.ScreenStorage:
		return m.renderStorage()
	case workflow.ScreenProcessing:
		return m.spinner.View() + " Sending to the job system..."
	case workflow.ScreenSuccess:
		return m.renderSuccess()
	case workflow.ScreenStock:
		return m.renderStock()
	case workflow.ScreenPickList:
		return m.renderPickList()
	case workflow.ScreenRelocateSource, workflow.ScreenRelocateItems,
		workflow.ScreenRelocateDest, workflow.ScreenRelocateSuccess:
		return m.renderRelocate()
	case workflow.ScreenStaffMgmt:
		return m.renderStaff()
	case workflow.ScreenLogs:
		return m.renderLogs()
	case workflow.ScreenLabels:
		return m.renderLabels()
	case workflow.ScreenMystery:
		return m.renderMystery()
	}
	return ""
}

func (m Model) renderInputs() string {
	lines := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		lines[i] = in.View()
	}
	return strings.Join(lines, "\n")
}

// row renders one list line with the cursor marker.
func (m Model) row(i int, text string) string {
	if i == m.cursor {
		return m.theme.Cursor.Render("> " + text)
	}
	return m.theme.Normal.Render("  " + text)
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) renderHome() string {
	var b strings.Builder
	for i, entry := range m.menu() {
		b.WriteString(m.row(i, entry.label) + "\n")
	}
	if text := m.snap.Home.ReceiptingText; text != "" {
		style := m.theme.StatusSuccess
		if r := m.snap.Home.Receipting; r != nil && r.Count > 0 {
			style = m.theme.StatusWarning
		}
		b.WriteString("\n" + style.Render(text))
		if r := m.snap.Home.Receipting; r != nil {
			for _, item := range r.Items {
				b.WriteString(fmt.Sprintf("\n  PO %s  %s  %s  (%d items)", item.PONumber, item.VendorName, item.StorageLocation, item.TotalItems))
			}
		}
	}
	return b.String()
}

func (m Model) renderScan() string {
	var b strings.Builder
	b.WriteString(m.renderInputs())
	d := m.snap.Receive.Docket
	if d.Scanning {
		b.WriteString("\n\nReading docket " + m.progress.ViewAs(d.Progress))
	}
	if d.Message != "" {
		b.WriteString("\n\n" + m.theme.StatusInfo.Render(d.Message))
	}
	if ext := d.Extraction; ext != nil {
		b.WriteString("\n" + m.theme.Box.Render(strings.Join(nonEmpty(
			field("PO", ext.PONumber),
			field("Supplier", ext.SupplierName),
			field("Packing slip", ext.PackingSlipNumber),
			field("Tracking", ext.TrackingNumber),
			field("Delivered", ext.DeliveryDate),
		), "\n")))
	}
	return b.String()
}

func field(name, value string) string {
	if value == "" {
		return ""
	}
	return name + ": " + value
}

func nonEmpty(values ...string) []string {
	return slices.DeleteFunc(values, func(s string) bool { return s == "" })
}

func (m Model) renderPOHeader(po *model.PurchaseOrder) string {
	r := m.snap.Receive
	lines := nonEmpty(
		m.theme.Bold.Render("PO "+po.PONumber)+"  "+po.VendorName,
		field("Job", po.JobNumber),
		field("Customer", po.CustomerName),
	)
	if r.DueDate != "" {
		due := "Due " + r.DueDate
		if r.Overdue {
			due = m.theme.StatusError.Render(due + " (overdue)")
		}
		lines = append(lines, due)
	}
	return m.theme.Box.Render(strings.Join(lines, "\n"))
}

func (m Model) renderVerify() string {
	r := m.snap.Receive
	if r.PO == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.renderPOHeader(r.PO) + "\n")
	for i, item := range r.Items {
		line := fmt.Sprintf("%s %s", checkbox(item.Selected), item.Item.Description)
		if item.Item.PartNo != "" {
			line += " (" + item.Item.PartNo + ")"
		}
		line += fmt.Sprintf("  qty %s of %s", model.FormatQuantity(item.Draft), model.FormatQuantity(item.Remaining))
		if item.Item.IsAllocated() {
			line += "  @" + item.Item.StorageLocation
		}
		if model.HasJob(item.Item.JobNumber) && item.Item.JobNumber != r.PO.JobNumber {
			line += "  job " + item.Item.JobNumber
		}
		if item.Backordered {
			line += "  " + m.theme.StatusWarning.Render("backorder")
		}
		if item.HasPhoto {
			line += "  [photo]"
		}
		b.WriteString(m.row(i, line) + "\n")
	}
	b.WriteString("\n" + m.theme.Subtitle.Render(r.SelectionText))
	if r.BackorderCount > 0 {
		b.WriteString(m.theme.StatusWarning.Render(fmt.Sprintf("  %d backordered", r.BackorderCount)))
	}
	return b.String()
}

func (m Model) renderLocations(chosen int) string {
	var b strings.Builder
	for i, loc := range m.snap.Locations {
		mark := " "
		if loc.ID == chosen {
			mark = "*"
		}
		b.WriteString(m.row(i, mark+" "+loc.Name) + "\n")
	}
	return b.String()
}

func (m Model) renderStorage() string {
	r := m.snap.Receive
	chosen := 0
	if r.Storage != nil {
		chosen = r.Storage.ID
	}
	var b strings.Builder
	b.WriteString(m.theme.Subtitle.Render(r.SelectionText) + "\n\n")
	b.WriteString(m.renderLocations(chosen))

	photos := "Photos: " + r.Photos.Mode.String()
	switch r.Photos.Mode {
	case workflow.PhotoGroup:
		if r.Photos.HasGroup {
			photos += " (attached)"
		}
	case workflow.PhotoIndividual:
		photos += fmt.Sprintf(" (%d of %d attached)", len(r.Photos.ItemPhotos), r.SelectedCount)
	}
	b.WriteString("\n" + photos)
	if r.CanAllocate {
		b.WriteString("\n" + m.theme.StatusSuccess.Render("Ready to allocate to "+r.Storage.Name))
	}
	return b.String()
}

func (m Model) taskStyle(status workflow.TaskStatus) lipgloss.Style {
	switch status {
	case workflow.TaskSucceeded:
		return m.theme.StatusSuccess
	case workflow.TaskFailed:
		return m.theme.StatusError
	case workflow.TaskSkipped:
		return m.theme.Muted
	default:
		return m.theme.StatusPending
	}
}

func (m Model) renderSuccess() string {
	s := m.snap.Success
	if s == nil {
		return ""
	}
	lines := nonEmpty(
		m.theme.StatusSuccess.Render(s.Summary),
		field("By", s.StaffName),
		s.Verification,
		s.GoodsReceived,
		s.BackorderText,
		s.PhotoText,
	)
	for _, t := range s.Tasks {
		text := fmt.Sprintf("%s: %s", t.Name, t.Status)
		if t.Detail != "" {
			text += " (" + t.Detail + ")"
		}
		lines = append(lines, m.taskStyle(t.Status).Render(text))
	}
	slip := "Picking slip: " + s.PickingSlip.Status.String()
	if s.PickingSlip.Message != "" {
		slip = s.PickingSlip.Message
	}
	lines = append(lines, m.taskStyle(s.PickingSlip.Status).Render(slip))
	lines = append(lines, fmt.Sprintf("%s label(s) to print", model.FormatQuantity(s.LabelCount)))
	return m.theme.Box.Render(strings.Join(lines, "\n")) + m.renderLabelList()
}

func (m Model) renderLabelList() string {
	if len(m.snap.Labels) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n" + m.theme.Header.Render(fmt.Sprintf("%d label(s)", len(m.snap.Labels))) + "\n")
	for _, l := range m.snap.Labels {
		b.WriteString(fmt.Sprintf("  %s  %s  %s  %s  PO %s  %s\n", l.JobNumber, l.CustomerName, l.Description, l.Location, l.PONumber, l.Date))
	}
	return b.String()
}

func (m Model) renderStock() string {
	st := m.snap.Stock
	var b strings.Builder
	chosen := 0
	if st.Location != nil {
		chosen = st.Location.ID
	}
	b.WriteString(m.renderLocations(chosen))
	if st.Message != "" {
		b.WriteString("\n" + m.theme.Muted.Render(st.Message))
	}
	for _, rec := range st.Records {
		line := fmt.Sprintf("  %s x%s", rec.Label(), model.FormatQuantity(rec.Quantity))
		if rec.JobNumber != "" {
			line += "  job " + rec.JobNumber
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

func (m Model) renderPickList() string {
	p := m.snap.PickList
	if p.Message != "" {
		return m.theme.Muted.Render(p.Message)
	}
	if p.List == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.theme.Header.Render(fmt.Sprintf("%d item(s) ready to pick", p.List.Count)) + "\n")
	for _, item := range p.List.Items {
		b.WriteString(fmt.Sprintf("  Order %d  Job %d  %s\n", item.OrderID, item.JobID, item.Vendor))
	}
	return b.String()
}

func (m Model) renderRelocate() string {
	r := m.snap.Relocate
	var b strings.Builder
	switch m.snap.Screen {
	case workflow.ScreenRelocateSource:
		chosen := 0
		if r.Source != nil {
			chosen = r.Source.ID
		}
		b.WriteString(m.renderLocations(chosen))
	case workflow.ScreenRelocateItems:
		if r.Source != nil {
			b.WriteString(m.theme.Subtitle.Render("From "+r.Source.Name) + "\n")
		}
		for i, rec := range r.Items {
			line := fmt.Sprintf("%s %s x%s", checkbox(slices.Contains(r.Selected, i)), rec.Label(), model.FormatQuantity(rec.Quantity))
			b.WriteString(m.row(i, line) + "\n")
		}
		b.WriteString("\n" + m.theme.Subtitle.Render(r.SelectionText))
	case workflow.ScreenRelocateDest:
		b.WriteString(m.theme.Subtitle.Render(r.SelectionText) + "\n")
		chosen := 0
		if r.Dest != nil {
			chosen = r.Dest.ID
		}
		b.WriteString(m.renderLocations(chosen))
		if r.Warning {
			b.WriteString("\n" + m.theme.StatusWarning.Render("Destination is the same as the source"))
		}
	case workflow.ScreenRelocateSuccess:
		if res := r.Result; res != nil {
			lines := nonEmpty(
				m.theme.StatusSuccess.Render(res.Summary),
				fmt.Sprintf("%s → %s", res.From, res.To),
				field("By", res.StaffName),
				res.Note,
			)
			b.WriteString(m.theme.Box.Render(strings.Join(lines, "\n")))
		}
	}
	return b.String()
}

func (m Model) renderStaff() string {
	s := m.snap.Staffing
	var b strings.Builder
	if f := s.Form; f != nil {
		title := "New staff member"
		if f.Editing {
			title = "Edit " + f.Username
		}
		b.WriteString(m.theme.Header.Render(title) + "\n")
		b.WriteString(m.renderInputs() + "\n")
		role := f.Role
		if m.role < len(f.AssignableRoles) {
			role = f.AssignableRoles[m.role]
		}
		b.WriteString(fmt.Sprintf("Role: %s   Active: %s\n", role, checkbox(m.active)))
		return b.String()
	}
	for i, member := range s.Members {
		rec := member.Record
		line := fmt.Sprintf("%s  %s  %s", rec.DisplayName, m.theme.Muted.Render(rec.Username), rec.Role)
		if !rec.Active {
			line += "  " + m.theme.StatusWarning.Render("disabled")
		}
		if member.IsSelf {
			line += "  (you)"
		}
		b.WriteString(m.row(i, line) + "\n")
	}
	if s.Message != "" {
		b.WriteString("\n" + m.theme.Muted.Render(s.Message))
	}
	if p := s.Pending; p != nil {
		b.WriteString("\n" + m.theme.StatusWarning.Render(p.Prompt+" (y/n)"))
	}
	return b.String()
}

func (m Model) renderLogs() string {
	l := m.snap.Logs
	if l.Message != "" {
		return m.theme.Muted.Render(l.Message)
	}
	var b strings.Builder
	for _, log := range l.Logs {
		verified := "pending"
		if log.Verified {
			verified = "verified"
		}
		b.WriteString(fmt.Sprintf("%s  %s  PO %s  %s  %s  %d item(s)  %s\n",
			log.CreatedAt, log.StaffName, log.PONumber, log.VendorName, log.StorageLocation, log.ItemsAllocated, verified))
	}
	return b.String()
}

func (m Model) renderLabels() string {
	l := m.snap.LabelLookup
	var b strings.Builder
	b.WriteString(m.renderInputs() + "\n")
	if l.Message != "" {
		b.WriteString("\n" + m.theme.Muted.Render(l.Message) + "\n")
	}
	if l.PO != nil {
		b.WriteString(fmt.Sprintf("\nPO %s  %s  %d allocated item(s)\n", l.PO.PONumber, l.PO.VendorName, len(l.AllocatedItems)))
		for _, item := range l.AllocatedItems {
			b.WriteString(fmt.Sprintf("  %s x%s  @%s\n", item.Description, model.FormatQuantity(item.QuantityReceived), item.StorageLocation))
		}
	}
	b.WriteString(m.renderLabelList())
	return b.String()
}

func (m Model) renderMystery() string {
	s := m.snap.Mystery
	var b strings.Builder
	b.WriteString(m.renderInputs() + "\n")
	if s.Message != "" {
		b.WriteString("\n" + m.theme.Muted.Render(s.Message) + "\n")
	}
	for _, r := range s.Results {
		lines := nonEmpty(
			m.theme.Bold.Render("PO "+r.PONumber)+"  "+r.SupplierName,
			field("Packing slip", r.PackingSlipNumber),
			field("Tracking", r.TrackingNumber),
			field("Stored", r.StorageLocation),
			field("Job", r.ReceiptJob),
			field("Received", r.CreatedAt+" by "+r.StaffName),
		)
		b.WriteString(m.theme.Box.Render(strings.Join(lines, "\n")) + "\n")
	}
	return b.String()
}
