package tui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// Notifier forwards controller state changes to a running program. The
// controller is built before the program, so the program is attached later.
type Notifier struct {
	program atomic.Pointer[tea.Program]
}

// Notify asks the program to redraw. It is a no-op until Attach.
func (n *Notifier) Notify() {
	if p := n.program.Load(); p != nil {
		go p.Send(refreshMsg{})
	}
}

// Attach sets the program that receives notifications.
func (n *Notifier) Attach(p *tea.Program) {
	n.program.Store(p)
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, ctrl Controller, notifier *Notifier, opts ...Option) error {
	program := tea.NewProgram(
		New(ctx, ctrl, opts...),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	if notifier != nil {
		notifier.Attach(program)
		defer notifier.Attach(nil)
	}
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
