package worker

import (
	"context"

	"github.com/wallet-ledger/internal/adapter"
	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/logging"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/retry"
)

// PageFetcher is the slice of the ledger client the accumulator drives.
type PageFetcher interface {
	ListTransactions(ctx context.Context, walletID string, page, pageSize int) (*adapter.TransactionPage, error)
}

// TransactionStore is the slice of the transaction repository the
// accumulator commits into.
type TransactionStore interface {
	InsertBatch(ctx context.Context, txs []*models.Transaction) (int, error)
}

// Progress reports how far an accumulation run got. It is valid even when
// the run errored: committed pages stay committed.
type Progress struct {
	Pages      int // Pages fetched and committed
	TotalPages int // Provider-reported total, from the latest response
	Fetched    int // Transactions received across committed pages
	Inserted   int // Transactions actually inserted (new hashes only)
}

// Accumulator walks a wallet's full paginated transaction history and
// merges every page into the local mirror. Pages are fetched strictly in
// order because the provider's total-page count is only trusted from the
// most recent response, and each page is committed before the next is
// requested so partial progress survives a later failure.
type Accumulator struct {
	fetcher  PageFetcher
	store    TransactionStore
	pageSize int
	policy   *retry.Policy // nil means single attempt per page
}

// NewAccumulator creates an accumulator. policy may be nil to disable
// per-page retries.
func NewAccumulator(fetcher PageFetcher, store TransactionStore, pageSize int, policy *retry.Policy) *Accumulator {
	return &Accumulator{
		fetcher:  fetcher,
		store:    store,
		pageSize: pageSize,
		policy:   policy,
	}
}

// Run exhausts the wallet's pagination starting at page 1. It terminates
// when the provider reports no further pages or a page comes back empty
// (upstream pagination drift is end-of-data, not an error). On failure
// after at least one committed page it returns the progress so far plus a
// PARTIAL_SYNC error; on failure before anything committed it returns the
// underlying error.
func (a *Accumulator) Run(ctx context.Context, walletID string) (*Progress, error) {
	logger := logging.FromContext(ctx).WithField("walletId", walletID)
	progress := &Progress{TotalPages: 1}

	for page := 1; ; page++ {
		var resp *adapter.TransactionPage
		err := a.policy.Do(ctx, func(ctx context.Context) error {
			var ferr error
			resp, ferr = a.fetcher.ListTransactions(ctx, walletID, page, a.pageSize)
			return ferr
		})
		if err != nil {
			return progress, a.abort(progress, err)
		}

		if resp.TotalPages > 0 {
			progress.TotalPages = resp.TotalPages
		}

		if len(resp.Items) == 0 {
			logger.WithField("page", page).Debug("empty page, treating as end of history")
			break
		}

		inserted, err := a.store.InsertBatch(ctx, resp.Items)
		progress.Inserted += inserted
		if err != nil {
			return progress, a.abort(progress, err)
		}

		progress.Pages++
		progress.Fetched += len(resp.Items)

		if page >= progress.TotalPages {
			break
		}
	}

	logger.WithFields(map[string]interface{}{
		"pages":    progress.Pages,
		"fetched":  progress.Fetched,
		"inserted": progress.Inserted,
	}).Info("wallet history accumulated")

	return progress, nil
}

// abort wraps a mid-walk failure. Committed pages are kept, so a failure
// after page 1 is a partial sync rather than a total one.
func (a *Accumulator) abort(progress *Progress, err error) error {
	if progress.Pages > 0 {
		return apperrors.NewPartialSyncError(progress.Pages, progress.TotalPages, progress.Inserted, err)
	}
	return err
}
