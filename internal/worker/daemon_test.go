package worker

import (
	"context"
	"testing"
	"time"

	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/types"
)

func TestDaemonRunsImmediatePassAndStops(t *testing.T) {
	w := testWallet("w1")
	store := &mockWalletStore{
		wallets: map[string]*models.Wallet{"w1": w},
		active:  []*models.Wallet{w},
	}
	fetcher := &mockFetcher{pages: makePages(1, 2)}
	orch, _ := newTestOrchestrator(store, fetcher, 0)

	daemon := NewDaemon(orch, time.Hour, quietLogger())
	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	// The first pass runs immediately, before the first tick.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if orch.Tracker().Status("w1").Phase == types.SyncSuccess {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if phase := orch.Tracker().Status("w1").Phase; phase != types.SyncSuccess {
		t.Fatalf("expected the immediate pass to sync the wallet, phase is %s", phase)
	}

	daemon.Stop()

	// Stop is idempotent.
	daemon.Stop()
}

func TestDaemonRestartsAfterStop(t *testing.T) {
	w := testWallet("w1")
	store := &mockWalletStore{
		wallets: map[string]*models.Wallet{"w1": w},
		active:  []*models.Wallet{w},
	}
	fetcher := &mockFetcher{pages: makePages(1, 2)}
	orch, _ := newTestOrchestrator(store, fetcher, 0)

	daemon := NewDaemon(orch, time.Hour, quietLogger())
	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	daemon.Stop()

	// The second run must not reuse the first run's closed channels.
	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("expected a stopped daemon to start again, got: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if orch.Tracker().Status("w1").Phase == types.SyncSuccess {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if phase := orch.Tracker().Status("w1").Phase; phase != types.SyncSuccess {
		t.Fatalf("expected the restarted daemon to run a pass, phase is %s", phase)
	}

	daemon.Stop()
}

func TestDaemonRejectsDoubleStart(t *testing.T) {
	store := &mockWalletStore{wallets: map[string]*models.Wallet{}}
	orch, _ := newTestOrchestrator(store, &mockFetcher{}, 0)
	daemon := NewDaemon(orch, time.Hour, quietLogger())

	if err := daemon.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	defer daemon.Stop()

	if err := daemon.Start(context.Background()); err == nil {
		t.Error("expected second Start to fail")
	}
}
