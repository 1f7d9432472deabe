package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dockside/receiving/internal/model"
	"github.com/dockside/receiving/internal/workflow"
)

// backTargets is where Esc leads from each screen.
var backTargets = map[workflow.Screen]workflow.Screen{
	workflow.ScreenScan:            workflow.ScreenHome,
	workflow.ScreenVerify:          workflow.ScreenScan,
	workflow.ScreenStorage:         workflow.ScreenVerify,
	workflow.ScreenSuccess:         workflow.ScreenHome,
	workflow.ScreenStock:           workflow.ScreenHome,
	workflow.ScreenPickList:        workflow.ScreenHome,
	workflow.ScreenRelocateSource:  workflow.ScreenHome,
	workflow.ScreenRelocateItems:   workflow.ScreenRelocateSource,
	workflow.ScreenRelocateDest:    workflow.ScreenRelocateItems,
	workflow.ScreenRelocateSuccess: workflow.ScreenHome,
	workflow.ScreenStaffMgmt:       workflow.ScreenHome,
	workflow.ScreenLogs:            workflow.ScreenHome,
	workflow.ScreenLabels:          workflow.ScreenHome,
	workflow.ScreenMystery:         workflow.ScreenHome,
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.prompt != nil {
		return m.handlePrompt(msg)
	}

	if msg.Type == tea.KeyEsc {
		return m.handleEsc()
	}

	if !m.typing() && key.Matches(msg, m.keymap.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}

	switch m.snap.Screen {
	case workflow.ScreenLogin:
		return m.loginKeys(msg)
	case workflow.ScreenHome:
		return m.homeKeys(msg)
	case workflow.ScreenScan:
		return m.scanKeys(msg)
	case workflow.ScreenVerify:
		return m.verifyKeys(msg)
	case workflow.ScreenStorage:
		return m.storageKeys(msg)
	case workflow.ScreenSuccess:
		return m.successKeys(msg)
	case workflow.ScreenStock:
		return m.stockKeys(msg)
	case workflow.ScreenPickList:
		if key.Matches(msg, m.keymap.Refresh) {
			return m, m.run(workflow.OpenPickList{})
		}
	case workflow.ScreenLogs:
		if key.Matches(msg, m.keymap.Refresh) {
			return m, m.run(workflow.OpenLogs{})
		}
	case workflow.ScreenLabels:
		return m.labelsKeys(msg)
	case workflow.ScreenMystery:
		return m.inputKeys(msg, func(v string) workflow.Command {
			return workflow.SearchMystery{Query: v}
		})
	case workflow.ScreenRelocateSource, workflow.ScreenRelocateItems,
		workflow.ScreenRelocateDest, workflow.ScreenRelocateSuccess:
		return m.relocateKeys(msg)
	case workflow.ScreenStaffMgmt:
		return m.staffKeys(msg)
	}
	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	if m.snap.Screen == workflow.ScreenStaffMgmt {
		if m.snap.Staffing.Pending != nil {
			return m, m.run(workflow.CancelToggle{})
		}
		if m.snap.Staffing.Form != nil {
			return m, m.run(workflow.CloseStaffForm{})
		}
	}
	to, ok := backTargets[m.snap.Screen]
	if !ok {
		return m, nil
	}
	return m, m.run(workflow.Back{To: to})
}

func (m Model) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = nil
		return m, nil
	case tea.KeyEnter:
		p := m.prompt
		m.prompt = nil
		value := strings.TrimSpace(p.input.Value())
		if value == "" {
			return m, nil
		}
		return m, p.submit(value)
	}
	var cmd tea.Cmd
	m.prompt.input, cmd = m.prompt.input.Update(msg)
	return m, cmd
}

// updateInputs forwards a key to the focused text field.
func (m Model) updateInputs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// inputKeys submits the single text field on enter.
func (m Model) inputKeys(msg tea.KeyMsg, build func(string) workflow.Command) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return m, m.run(build(strings.TrimSpace(m.value(0))))
	}
	return m.updateInputs(msg)
}

func (m Model) loginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.NextField):
		m.nextField()
		return m, nil
	case msg.Type == tea.KeyEnter:
		if m.focus == 0 {
			m.nextField()
			return m, nil
		}
		login := workflow.Login{Username: strings.TrimSpace(m.value(0)), Password: m.value(1)}
		m.inputs[1].SetValue("")
		return m, m.run(login)
	}
	return m.updateInputs(msg)
}

func (m Model) homeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.move(-1)
	case key.Matches(msg, m.keymap.Down):
		m.move(1)
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.run(workflow.GoHome{})
	case key.Matches(msg, m.keymap.Confirm):
		menu := m.menu()
		if m.cursor < len(menu) {
			return m, m.run(menu[m.cursor].command)
		}
	}
	return m, nil
}

func (m Model) scanKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Docket):
		return m, m.ask("Docket image", "path/to/docket.jpg", func(path string) tea.Cmd {
			return m.runWithFile(path, func(data []byte) workflow.Command {
				return workflow.ScanDocket{Image: data}
			})
		})
	case msg.Type == tea.KeyEnter:
		number := strings.TrimSpace(m.value(0))
		if number == "" {
			if ext := m.snap.Receive.Docket.Extraction; ext != nil && ext.PONumber != "" {
				number = ext.PONumber
			}
		}
		return m, m.run(workflow.LookupPO{Number: number})
	}
	return m.updateInputs(msg)
}

func (m Model) verifyKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.snap.Receive.Items
	if len(items) == 0 {
		return m, nil
	}
	item := items[min(m.cursor, len(items)-1)]

	switch {
	case key.Matches(msg, m.keymap.Up):
		m.move(-1)
	case key.Matches(msg, m.keymap.Down):
		m.move(1)
	case key.Matches(msg, m.keymap.Toggle):
		return m, m.run(workflow.ToggleItem{Index: item.Index})
	case key.Matches(msg, m.keymap.SelectAll):
		return m, m.run(workflow.SelectAll{Selected: true})
	case key.Matches(msg, m.keymap.SelectNone):
		return m, m.run(workflow.SelectAll{Selected: false})
	case key.Matches(msg, m.keymap.Backorder):
		return m, m.run(workflow.ToggleBackorder{Index: item.Index})
	case key.Matches(msg, m.keymap.Increase):
		return m, m.run(workflow.SetQuantity{Index: item.Index, Quantity: item.Draft + 1})
	case key.Matches(msg, m.keymap.Decrease):
		return m, m.run(workflow.SetQuantity{Index: item.Index, Quantity: item.Draft - 1})
	case key.Matches(msg, m.keymap.EditQty):
		return m, m.ask("Quantity", model.FormatQuantity(item.Draft), func(v string) tea.Cmd {
			q, err := strconv.ParseFloat(v, 64)
			if err != nil {
				q = 0
			}
			return m.run(workflow.SetQuantity{Index: item.Index, Quantity: q})
		})
	case key.Matches(msg, m.keymap.Photo):
		if item.HasPhoto {
			return m, m.run(workflow.RemoveItemPhoto{Index: item.Index})
		}
		return m, m.ask("Photo for "+item.Item.Description, "path/to/photo.jpg", func(path string) tea.Cmd {
			return m.runWithFile(path, func(data []byte) workflow.Command {
				return workflow.AttachItemPhoto{Image: data, Index: item.Index}
			})
		})
	case key.Matches(msg, m.keymap.Labels):
		return m, m.run(workflow.ReprintLabels{})
	case key.Matches(msg, m.keymap.Confirm):
		return m, m.run(workflow.ProceedToStorage{})
	}
	return m, nil
}

// nextPhotoMode cycles skip, group and individual.
func nextPhotoMode(mode workflow.PhotoMode) workflow.PhotoMode {
	switch mode {
	case workflow.PhotoSkip:
		return workflow.PhotoGroup
	case workflow.PhotoGroup:
		return workflow.PhotoIndividual
	default:
		return workflow.PhotoSkip
	}
}

func (m Model) storageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	photos := m.snap.Receive.Photos
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.move(-1)
	case key.Matches(msg, m.keymap.Down):
		m.move(1)
	case key.Matches(msg, m.keymap.Confirm):
		if m.cursor < len(m.snap.Locations) {
			return m, m.run(workflow.SelectStorage{ID: m.snap.Locations[m.cursor].ID})
		}
	case key.Matches(msg, m.keymap.PhotoMode):
		return m, m.run(workflow.SetPhotoMode{Mode: nextPhotoMode(photos.Mode)})
	case key.Matches(msg, m.keymap.Photo):
		if photos.HasGroup {
			return m, m.run(workflow.RemoveGroupPhoto{})
		}
		return m, m.ask("Delivery photo", "path/to/photo.jpg", func(path string) tea.Cmd {
			return m.runWithFile(path, func(data []byte) workflow.Command {
				return workflow.AttachGroupPhoto{Image: data}
			})
		})
	case key.Matches(msg, m.keymap.Submit):
		return m, m.run(workflow.SubmitAllocation{})
	}
	return m, nil
}

func (m Model) successKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Labels):
		return m, m.run(workflow.PrintLabels{})
	case key.Matches(msg, m.keymap.Slip):
		return m, m.run(workflow.GeneratePickingSlip{})
	case key.Matches(msg, m.keymap.New):
		return m, m.run(workflow.StartNewPO{})
	case key.Matches(msg, m.keymap.Home):
		return m, m.run(workflow.GoHome{})
	}
	return m, nil
}

func (m Model) stockKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.move(-1)
	case key.Matches(msg, m.keymap.Down):
		m.move(1)
	case key.Matches(msg, m.keymap.Confirm):
		if m.cursor < len(m.snap.Locations) {
			return m, m.run(workflow.BrowseStock{LocationID: m.snap.Locations[m.cursor].ID})
		}
	}
	return m, nil
}

func (m Model) labelsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.snap.LabelLookup.PO != nil && m.value(0) == "" && key.Matches(msg, m.keymap.Confirm) {
		return m, m.run(workflow.ReprintLabels{})
	}
	return m.inputKeys(msg, func(v string) workflow.Command {
		return workflow.LookupLabels{Number: v}
	})
}

func (m Model) relocateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := m.snap.Relocate
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.move(-1)
		return m, nil
	case key.Matches(msg, m.keymap.Down):
		m.move(1)
		return m, nil
	}

	switch m.snap.Screen {
	case workflow.ScreenRelocateSource:
		if key.Matches(msg, m.keymap.Confirm) && m.cursor < len(m.snap.Locations) {
			id := m.snap.Locations[m.cursor].ID
			return m, m.run(workflow.SelectRelocateSource{ID: id}, workflow.LoadRelocateItems{})
		}
	case workflow.ScreenRelocateItems:
		switch {
		case key.Matches(msg, m.keymap.Toggle):
			return m, m.run(workflow.ToggleRelocateItem{Index: m.cursor})
		case key.Matches(msg, m.keymap.SelectAll):
			return m, m.run(workflow.SelectAllRelocate{Selected: true})
		case key.Matches(msg, m.keymap.SelectNone):
			return m, m.run(workflow.SelectAllRelocate{Selected: false})
		case key.Matches(msg, m.keymap.Confirm):
			return m, m.run(workflow.ProceedToRelocateDest{})
		}
	case workflow.ScreenRelocateDest:
		switch {
		case key.Matches(msg, m.keymap.Confirm) && m.cursor < len(m.snap.Locations):
			return m, m.run(workflow.SelectRelocateDest{ID: m.snap.Locations[m.cursor].ID})
		case key.Matches(msg, m.keymap.Submit) && r.CanExecute:
			return m, m.run(workflow.ExecuteRelocate{})
		}
	case workflow.ScreenRelocateSuccess:
		switch {
		case key.Matches(msg, m.keymap.New):
			return m, m.run(workflow.StartNewRelocate{})
		case key.Matches(msg, m.keymap.Home):
			return m, m.run(workflow.GoHome{})
		}
	}
	return m, nil
}

func roleIndex(roles []model.Role, role model.Role) int {
	for i, r := range roles {
		if r == role {
			return i
		}
	}
	return 0
}

func (m Model) staffKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.snap.Staffing
	if s.Pending != nil {
		switch {
		case key.Matches(msg, m.keymap.Yes):
			return m, m.run(workflow.ConfirmToggle{})
		case key.Matches(msg, m.keymap.No):
			return m, m.run(workflow.CancelToggle{})
		}
		return m, nil
	}

	if f := s.Form; f != nil {
		switch {
		case key.Matches(msg, m.keymap.NextField):
			m.nextField()
			return m, nil
		case key.Matches(msg, m.keymap.CycleRole):
			if n := len(f.AssignableRoles); n > 0 {
				m.role = (m.role + 1) % n
			}
			return m, nil
		case key.Matches(msg, m.keymap.Active):
			m.active = !m.active
			return m, nil
		case msg.Type == tea.KeyEnter:
			return m, m.run(m.saveStaff(*f))
		}
		return m.updateInputs(msg)
	}

	members := s.Members
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.move(-1)
	case key.Matches(msg, m.keymap.Down):
		m.move(1)
	case key.Matches(msg, m.keymap.New):
		return m, m.run(workflow.EditStaff{})
	case key.Matches(msg, m.keymap.Edit) && m.cursor < len(members):
		return m, m.run(workflow.EditStaff{ID: members[m.cursor].Record.ID})
	case key.Matches(msg, m.keymap.Enable) && m.cursor < len(members):
		return m, m.run(workflow.ToggleStaff{ID: members[m.cursor].Record.ID})
	}
	return m, nil
}

// saveStaff builds the save command from the form fields.
func (m Model) saveStaff(f workflow.StaffFormView) workflow.SaveStaff {
	save := workflow.SaveStaff{Active: m.active, Role: f.Role}
	if m.role < len(f.AssignableRoles) {
		save.Role = f.AssignableRoles[m.role]
	}
	if f.Editing {
		save.Username = f.Username
		save.DisplayName = strings.TrimSpace(m.value(0))
		save.Password = m.value(1)
	} else {
		save.Username = strings.TrimSpace(m.value(0))
		save.DisplayName = strings.TrimSpace(m.value(1))
		save.Password = m.value(2)
	}
	return save
}
