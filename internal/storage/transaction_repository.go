package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/types"
)

// TransactionRepository handles the append-only transaction mirror.
// Uniqueness of (wallet_id, hash) is enforced by the database; inserting an
// already-known hash is a silent skip, never an overwrite, so concurrent
// readers and repeated syncs are safe.
type TransactionRepository struct {
	db *PostgresDB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *PostgresDB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const insertTransactionSQL = `
	INSERT INTO transactions (
		id, wallet_id, hash, block_height, block_time, direction,
		token_symbol, token_name, token_contract, amount, decimals,
		fee_amount, fee_token, status, confirmations
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (wallet_id, hash) DO NOTHING
`

// InsertBatch inserts transactions, skipping hashes the wallet already has.
// It returns the number of rows actually inserted.
func (r *TransactionRepository) InsertBatch(ctx context.Context, txs []*models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(insertTransactionSQL,
			tx.ID, tx.WalletID, tx.Hash, tx.BlockHeight, tx.BlockTime, tx.Direction,
			tx.TokenSymbol, tx.TokenName, tx.TokenContract, tx.Amount, tx.Decimals,
			tx.FeeAmount, tx.FeeToken, tx.Status, tx.Confirmations,
		)
	}

	results := r.db.Pool().SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range txs {
		tag, err := results.Exec()
		if err != nil {
			return inserted, apperrors.NewDatabaseError("insert transactions", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

const transactionColumns = `
	id, wallet_id, hash, block_height, block_time, direction,
	token_symbol, token_name, token_contract, amount, decimals,
	fee_amount, fee_token, status, confirmations
`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(
		&tx.ID, &tx.WalletID, &tx.Hash, &tx.BlockHeight, &tx.BlockTime, &tx.Direction,
		&tx.TokenSymbol, &tx.TokenName, &tx.TokenContract, &tx.Amount, &tx.Decimals,
		&tx.FeeAmount, &tx.FeeToken, &tx.Status, &tx.Confirmations,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListConfirmedByWallet returns a wallet's confirmed transactions ordered
// by block time ascending, the input order the balance builder expects.
func (r *TransactionRepository) ListConfirmedByWallet(ctx context.Context, walletID string) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE wallet_id = $1 AND status = $2
		ORDER BY block_time ASC, block_height ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, walletID, types.StatusConfirmed)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list confirmed transactions", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListByWallet returns a page of a wallet's mirrored transactions, newest
// first, for the mirror query endpoint.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY block_time DESC, block_height DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool().Query(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list transactions", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan transaction", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError("read transactions", err)
	}
	return txs, nil
}

// CountByWallet returns the number of mirrored transactions for a wallet.
// Because of the (wallet_id, hash) constraint this always equals the
// number of distinct hashes.
func (r *TransactionRepository) CountByWallet(ctx context.Context, walletID string) (int64, error) {
	var count int64
	err := r.db.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`, walletID,
	).Scan(&count)
	if err != nil {
		return 0, apperrors.NewDatabaseError("count transactions", err)
	}
	return count, nil
}
