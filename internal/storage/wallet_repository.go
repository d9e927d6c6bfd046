package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/network"
)

// WalletRepository handles wallet persistence. The sync subsystem never
// deletes wallets; it only reads them and updates last-sync metadata.
type WalletRepository struct {
	db *PostgresDB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *PostgresDB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create registers a new tracked wallet.
func (r *WalletRepository) Create(ctx context.Context, w *models.Wallet) error {
	if err := network.Validate(w.Network, w.Address); err != nil {
		return err
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO wallets (id, address, name, network, active, created_at, last_sync_tx_count)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		w.ID, w.Address, w.Name, w.Network, w.Active, w.CreatedAt,
	)
	if err != nil {
		return apperrors.NewDatabaseError("create wallet", err)
	}

	return nil
}

const walletColumns = `id, address, name, network, active, created_at, last_sync_at, last_sync_tx_count`

func scanWallet(row pgx.Row) (*models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(
		&w.ID, &w.Address, &w.Name, &w.Network, &w.Active,
		&w.CreatedAt, &w.LastSyncAt, &w.LastSyncTxCount,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByID retrieves a wallet by id.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewValidationError("walletId", "must be a UUID")
	}

	row := r.db.Pool().QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id)
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("wallet", id)
		}
		return nil, apperrors.NewDatabaseError("get wallet", err)
	}

	return w, nil
}

// ListActive returns active wallets ordered by creation time, the
// iteration order of a sync-all pass.
func (r *WalletRepository) ListActive(ctx context.Context) ([]*models.Wallet, error) {
	rows, err := r.db.Pool().Query(ctx, `SELECT `+walletColumns+` FROM wallets WHERE active ORDER BY created_at`)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list active wallets", err)
	}
	defer rows.Close()

	var wallets []*models.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan wallet", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("list active wallets", err)
	}

	return wallets, nil
}

// Rename updates a wallet's display name.
func (r *WalletRepository) Rename(ctx context.Context, id, name string) error {
	tag, err := r.db.Pool().Exec(ctx, `UPDATE wallets SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return apperrors.NewDatabaseError("rename wallet", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("wallet", id)
	}
	return nil
}

// SetActive flips a wallet's active flag.
func (r *WalletRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Pool().Exec(ctx, `UPDATE wallets SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return apperrors.NewDatabaseError("set wallet active", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("wallet", id)
	}
	return nil
}

// UpdateSyncMetadata records the outcome of a successful sync.
func (r *WalletRepository) UpdateSyncMetadata(ctx context.Context, id string, at time.Time, txCount int) error {
	tag, err := r.db.Pool().Exec(ctx,
		`UPDATE wallets SET last_sync_at = $2, last_sync_tx_count = $3 WHERE id = $1`,
		id, at, txCount,
	)
	if err != nil {
		return apperrors.NewDatabaseError("update sync metadata", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("wallet", id)
	}
	return nil
}
