package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/kanban/internal/mockserver"
)

var (
	mockAddr   string
	mockSecret string
	mockSeed   bool
)

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run an in-memory board service for local use",
	Long: `Runs a board service that keeps everything in memory.

With --seed (the default) it has two accounts on team "team-1":
demo / demo (admin) and viewer / viewer (member), and a sample board.`,
	RunE: runMockServer,
}

func init() {
	mockServerCmd.Flags().StringVar(&mockAddr, "addr", ":8080", "Listen address")
	mockServerCmd.Flags().StringVar(&mockSecret, "secret", "", "JWT signing secret (random when empty)")
	mockServerCmd.Flags().BoolVar(&mockSeed, "seed", true, "Create demo accounts and a sample board")
}

func runMockServer(cmd *cobra.Command, args []string) error {
	logger := log.New()
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	var opts []mockserver.Option
	opts = append(opts, mockserver.WithLogger(logger))
	if mockSecret != "" {
		opts = append(opts, mockserver.WithSecret([]byte(mockSecret)))
	}
	srv := mockserver.New(opts...)
	if mockSeed {
		seedDemo(srv)
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(mockAddr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mock server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func seedDemo(srv *mockserver.Server) {
	const team = "team-1"
	srv.AddUser("demo", "demo", team, true)
	srv.AddUser("viewer", "viewer", team, false)

	id := srv.SeedBoard(team, "Platform Launch")
	srv.SeedTask(id, 0, "Build UI for onboarding flow", "Sign up page", "Sign in page", "Welcome page")
	srv.SeedTask(id, 0, "Add search endpoints", "Add search endpoint", "Define search filters")
	srv.SeedTask(id, 1, "Design settings and search pages", "Settings - Account page", "Search page")
	srv.SeedTask(id, 2, "Review results of usability tests")
	srv.SeedTask(id, 3, "Conduct 5 wireframe tests", "Complete 5 wireframe prototype tests")

	srv.SeedBoard(team, "Marketing Plan")
}
