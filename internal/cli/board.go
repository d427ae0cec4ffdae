package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/kanban/internal/app"
	"github.com/nhle/kanban/internal/session"
	appsync "github.com/nhle/kanban/internal/sync"
)

func runBoard(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.session.Restore()
	switch {
	case errors.Is(err, session.ErrNoSession):
		// The login form opens instead of the board.
	case err != nil:
		return err
	default:
		e.store.SetUser(user)
	}

	poller := appsync.New(e.store, e.cfg.Display.RefreshInterval(), e.cfg.Server.Timeout(), e.log)
	defer poller.Stop()

	m := app.New(app.Deps{
		Store:     e.store,
		Mutations: e.mutations,
		Session:   e.session,
		Poller:    poller,
		ServerURL: e.cfg.Server.BaseURL,
		Timeout:   e.cfg.Server.Timeout(),
		Log:       e.log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(contextOf(cmd)))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
