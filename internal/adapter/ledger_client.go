// Package adapter provides clients for the external collaborators: the
// upstream ledger provider (paginated transaction history plus current
// balance) and the price/valuation service.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/wallet-ledger/internal/config"
	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/types"
)

// TransactionPage is one page of a wallet's transaction history together
// with the provider's pagination metadata. TotalPages is only trustworthy
// from the most recent response.
type TransactionPage struct {
	Items      []*models.Transaction
	Page       int
	TotalPages int
}

// LedgerClient talks to the upstream ledger provider. It performs single
// reads only; pagination walking and retry policy belong to the caller.
type LedgerClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewLedgerClient creates a ledger provider client. All requests share one
// rate limiter sized to the provider's documented request budget.
func NewLedgerClient(cfg *config.ProviderConfig) *LedgerClient {
	return &LedgerClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// ledgerTransaction is the provider's wire shape for one transaction.
type ledgerTransaction struct {
	Hash        string `json:"hash"`
	BlockHeight uint64 `json:"blockHeight"`
	BlockTime   int64  `json:"blockTime"`
	Direction   string `json:"direction"`
	Token       struct {
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Contract string `json:"contract"`
		Decimals int    `json:"decimals"`
	} `json:"token"`
	Amount string `json:"amount"`
	Fee    struct {
		Amount string `json:"amount"`
		Token  string `json:"token"`
	} `json:"fee"`
	Status        string `json:"status"`
	Confirmations int    `json:"confirmations"`
}

type transactionListResponse struct {
	Items      []ledgerTransaction `json:"items"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
}

// ListTransactions fetches one page of a wallet's transaction history.
// Network failures surface as TRANSPORT_ERROR, non-success responses as
// UPSTREAM_ERROR. No retries happen here.
func (c *LedgerClient) ListTransactions(ctx context.Context, walletID string, page, pageSize int) (*TransactionPage, error) {
	url := fmt.Sprintf("%s/v1/wallets/%s/transactions?page=%d&pageSize=%d", c.baseURL, walletID, page, pageSize)

	body, err := c.get(ctx, url, "list transactions")
	if err != nil {
		return nil, err
	}

	var resp transactionListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewUpstreamError("ledger provider", http.StatusOK, "unparseable transaction list: "+err.Error())
	}

	items := make([]*models.Transaction, 0, len(resp.Items))
	for _, raw := range resp.Items {
		tx, err := convertTransaction(walletID, raw)
		if err != nil {
			return nil, err
		}
		items = append(items, tx)
	}

	return &TransactionPage{
		Items:      items,
		Page:       resp.Page,
		TotalPages: resp.TotalPages,
	}, nil
}

type balanceResponse struct {
	Tokens map[string]struct {
		Amount    string `json:"amount"`
		Valuation string `json:"valuation"`
	} `json:"tokens"`
	TotalValuation string `json:"totalValuation"`
	LastUpdated    int64  `json:"lastUpdated"`
}

// GetCurrentBalance fetches the provider's live view of a wallet's
// holdings, used for the dashboard summary.
func (c *LedgerClient) GetCurrentBalance(ctx context.Context, walletID string) (*models.WalletBalance, error) {
	url := fmt.Sprintf("%s/v1/wallets/%s/balance", c.baseURL, walletID)

	body, err := c.get(ctx, url, "get current balance")
	if err != nil {
		return nil, err
	}

	var resp balanceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewUpstreamError("ledger provider", http.StatusOK, "unparseable balance: "+err.Error())
	}

	tokens := make(map[string]models.TokenPosition, len(resp.Tokens))
	for symbol, t := range resp.Tokens {
		amount, err := decimal.NewFromString(t.Amount)
		if err != nil {
			return nil, apperrors.NewUpstreamError("ledger provider", http.StatusOK, fmt.Sprintf("bad amount for %s: %v", symbol, err))
		}
		valuation, err := decimal.NewFromString(t.Valuation)
		if err != nil {
			return nil, apperrors.NewUpstreamError("ledger provider", http.StatusOK, fmt.Sprintf("bad valuation for %s: %v", symbol, err))
		}
		tokens[symbol] = models.TokenPosition{Amount: amount, Valuation: valuation, Valued: true}
	}

	total, err := decimal.NewFromString(resp.TotalValuation)
	if err != nil {
		return nil, apperrors.NewUpstreamError("ledger provider", http.StatusOK, "bad total valuation: "+err.Error())
	}

	return &models.WalletBalance{
		WalletID:       walletID,
		Tokens:         tokens,
		TotalValuation: total,
		LastUpdated:    time.Unix(resp.LastUpdated, 0).UTC(),
	}, nil
}

// get performs one throttled GET and returns the body for 2xx responses.
func (c *LedgerClient) get(ctx context.Context, url, operation string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewTransportError(operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewTransportError(operation, err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError(operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, apperrors.NewTransportError(operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewUpstreamError("ledger provider", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func convertTransaction(walletID string, raw ledgerTransaction) (*models.Transaction, error) {
	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return nil, apperrors.NewUpstreamError("ledger provider", http.StatusOK, fmt.Sprintf("bad amount in tx %s: %v", raw.Hash, err))
	}

	fee := decimal.Zero
	if raw.Fee.Amount != "" {
		fee, err = decimal.NewFromString(raw.Fee.Amount)
		if err != nil {
			return nil, apperrors.NewUpstreamError("ledger provider", http.StatusOK, fmt.Sprintf("bad fee in tx %s: %v", raw.Hash, err))
		}
	}

	return &models.Transaction{
		ID:            uuid.NewString(),
		WalletID:      walletID,
		Hash:          raw.Hash,
		BlockHeight:   raw.BlockHeight,
		BlockTime:     time.Unix(raw.BlockTime, 0).UTC(),
		Direction:     types.Direction(raw.Direction),
		TokenSymbol:   raw.Token.Symbol,
		TokenName:     raw.Token.Name,
		TokenContract: raw.Token.Contract,
		Amount:        amount,
		Decimals:      raw.Token.Decimals,
		FeeAmount:     fee,
		FeeToken:      raw.Fee.Token,
		Status:        types.TxStatus(raw.Status),
		Confirmations: raw.Confirmations,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
