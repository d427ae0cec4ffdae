// Package sync reloads the active board in the background so changes made
// by teammates show up without a manual refresh.
package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/nhle/kanban/internal/api"
)

// SyncState represents the current state of the refresher.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "error"
	}
	return "idle"
}

// SyncStatus is a snapshot of the refresher's state.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// RefreshResultMsg is a tea.Msg sent when a reload completes.
type RefreshResultMsg struct {
	Err error
	// AuthExpired is set when the service rejected the session token.
	AuthExpired bool
	At          time.Time
}

// Reloader is what the poller refreshes (the state store).
type Reloader interface {
	ReloadActiveBoard(ctx context.Context) error
}

// Poller reloads the active board every interval and on demand.
type Poller struct {
	target    Reloader
	interval  time.Duration
	timeout   time.Duration
	log       log.FieldLogger
	status    SyncStatus
	resultCh  chan RefreshResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller. A zero interval disables periodic reloads;
// Refresh still works.
func New(target Reloader, interval, timeout time.Duration, logger log.FieldLogger) *Poller {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Poller{
		target:    target,
		interval:  interval,
		timeout:   timeout,
		log:       logger,
		resultCh:  make(chan RefreshResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start returns a tea.Cmd that starts the polling goroutine and waits for
// the first result.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate reload. Triggers that arrive while one is
// pending are merged.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the refresher's current state.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-p.stopCh:
			return
		case <-tick:
			p.reload()
		case <-p.triggerCh:
			p.reload()
		}
	}
}

// reload performs one refresh and reports the outcome.
func (p *Poller) reload() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err := p.target.ReloadActiveBoard(ctx)
	if err != nil {
		p.log.WithError(err).Debug("background reload failed")
		p.setStatus(SyncError, err)
		p.sendResult(RefreshResultMsg{
			Err:         err,
			AuthExpired: errors.Is(err, api.ErrUnauthorized),
			At:          time.Now(),
		})
		return
	}

	p.setStatus(SyncIdle, nil)
	p.sendResult(RefreshResultMsg{At: time.Now()})
}

func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a result without blocking.
func (p *Poller) sendResult(msg RefreshResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result := <-p.resultCh:
			return result
		case <-p.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh
// result. Call it after handling a RefreshResultMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
