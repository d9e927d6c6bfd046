package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/logging"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/network"
)

// WalletStore is the slice of the wallet repository the orchestrator uses.
type WalletStore interface {
	GetByID(ctx context.Context, id string) (*models.Wallet, error)
	ListActive(ctx context.Context) ([]*models.Wallet, error)
	UpdateSyncMetadata(ctx context.Context, id string, at time.Time, txCount int) error
}

// Orchestrator sequences wallet syncs: claim the tracker, run the
// accumulator, convert the outcome into visible sync state. Wallets sync
// strictly sequentially; the upstream rate budget is shared and a worker
// pool would just contend for it.
type Orchestrator struct {
	wallets  WalletStore
	tracker  *Tracker
	acc      *Accumulator
	cooldown time.Duration
	logger   *logging.Logger
}

// NewOrchestrator creates a sync orchestrator. cooldown is the minimum age
// of the last successful sync before a non-forced re-sync runs; zero
// disables the freshness skip.
func NewOrchestrator(wallets WalletStore, tracker *Tracker, acc *Accumulator, cooldown time.Duration, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		wallets:  wallets,
		tracker:  tracker,
		acc:      acc,
		cooldown: cooldown,
		logger:   logger,
	}
}

// Tracker exposes the state tracker for status queries.
func (o *Orchestrator) Tracker() *Tracker {
	return o.tracker
}

// SyncWallet refreshes one wallet's transaction mirror. The walk always
// restarts at page 1: the provider exposes no reliable change-since
// cursor, so a full re-walk is the correctness-preserving default and
// forceFullHistory only bypasses the freshness cooldown. Validation
// failures are rejected before any network call. When the wallet is
// already syncing the call is a no-op skip, and it issues no requests.
func (o *Orchestrator) SyncWallet(ctx context.Context, walletID string, force bool) (*models.SyncResult, error) {
	result := &models.SyncResult{
		ID:        uuid.NewString(),
		WalletID:  walletID,
		StartedAt: time.Now().UTC(),
	}

	wallet, err := o.wallets.GetByID(ctx, walletID)
	if err != nil {
		return o.finish(result, models.OutcomeError, err.Error()), err
	}
	if err := network.Validate(wallet.Network, wallet.Address); err != nil {
		return o.finish(result, models.OutcomeError, err.Error()), err
	}

	if !force && o.cooldown > 0 && wallet.LastSyncAt != nil && time.Since(*wallet.LastSyncAt) < o.cooldown {
		return o.finish(result, models.OutcomeSkipped, "last sync is recent enough"), nil
	}

	if !o.tracker.Begin(walletID) {
		return o.finish(result, models.OutcomeSkipped, "sync already in progress"), nil
	}

	logger := o.logger.WithField("walletId", walletID)
	ctx = logging.WithLogger(ctx, logger)

	progress, runErr := o.acc.Run(ctx, walletID)
	result.Pages = progress.Pages
	result.Fetched = progress.Fetched
	result.Inserted = progress.Inserted

	if runErr != nil {
		// The tracker is the single point turning an error into visible
		// state; committed pages stay in the store either way.
		detail := apperrors.Categorize(runErr).Message
		o.tracker.Fail(walletID, detail)
		logger.WithError(runErr).Error("wallet sync failed")
		return o.finish(result, models.OutcomeError, detail), runErr
	}

	o.tracker.Succeed(walletID, progress.Inserted)
	if err := o.wallets.UpdateSyncMetadata(ctx, walletID, time.Now().UTC(), progress.Inserted); err != nil {
		// The sync itself succeeded; losing the metadata write only delays
		// the next cooldown skip.
		logger.WithError(err).Warn("failed to persist sync metadata")
	}

	return o.finish(result, models.OutcomeSynced, ""), nil
}

// SyncAll refreshes every active wallet, strictly sequentially. One
// wallet's failure never aborts the batch.
func (o *Orchestrator) SyncAll(ctx context.Context) ([]*models.SyncResult, error) {
	wallets, err := o.wallets.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*models.SyncResult, 0, len(wallets))
	for _, w := range wallets {
		result, err := o.SyncWallet(ctx, w.ID, false)
		if err != nil {
			o.logger.WithFields(map[string]interface{}{
				"walletId": w.ID,
				"error":    err.Error(),
			}).Warn("continuing sync-all past wallet failure")
		}
		results = append(results, result)
	}

	return results, nil
}

func (o *Orchestrator) finish(r *models.SyncResult, outcome models.SyncOutcome, detail string) *models.SyncResult {
	r.Outcome = outcome
	r.Detail = detail
	r.CompletedAt = time.Now().UTC()
	return r
}
