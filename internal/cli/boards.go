package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/kanban/internal/session"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List the team's boards",
	RunE:  runBoards,
}

func runBoards(cmd *cobra.Command, args []string) error {
	e, err := setup(contextOf(cmd))
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.session.Restore(); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return errors.New(`not logged in; run "kanban login" first`)
		}
		return err
	}

	ctx, cancel := context.WithTimeout(contextOf(cmd), e.cfg.Server.Timeout())
	defer cancel()

	if err := e.store.LoadBoards(ctx); err != nil {
		return err
	}

	boards := e.store.Boards()
	if len(boards) == 0 {
		fmt.Println("No boards yet")
		return nil
	}
	fmt.Printf("All Boards (%d)\n", len(boards))
	for _, b := range boards {
		fmt.Printf("  %s  %s\n", b.ID, b.Name)
	}
	return nil
}
