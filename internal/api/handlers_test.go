package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/config"
	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/service"
	"github.com/wallet-ledger/internal/types"
)

// In-memory fakes for the server's collaborators.

type fakeWalletStore struct {
	wallets map[string]*models.Wallet
}

func (f *fakeWalletStore) Create(ctx context.Context, w *models.Wallet) error {
	if w.Address == "invalid" {
		return apperrors.NewValidationError("address", "must be 0x followed by 40 hexadecimal characters")
	}
	w.ID = "generated-id"
	f.wallets[w.ID] = w
	return nil
}

func (f *fakeWalletStore) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	if w, ok := f.wallets[id]; ok {
		return w, nil
	}
	return nil, apperrors.NewNotFoundError("wallet", id)
}

func (f *fakeWalletStore) ListActive(ctx context.Context) ([]*models.Wallet, error) {
	out := make([]*models.Wallet, 0, len(f.wallets))
	for _, w := range f.wallets {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeWalletStore) Rename(ctx context.Context, id, name string) error {
	w, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	w.Name = name
	return nil
}

func (f *fakeWalletStore) SetActive(ctx context.Context, id string, active bool) error {
	w, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	w.Active = active
	return nil
}

type fakeTxStore struct {
	txs []*models.Transaction
}

func (f *fakeTxStore) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*models.Transaction, error) {
	if offset >= len(f.txs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.txs) {
		end = len(f.txs)
	}
	return f.txs[offset:end], nil
}

func (f *fakeTxStore) ListConfirmedByWallet(ctx context.Context, walletID string) ([]*models.Transaction, error) {
	return f.txs, nil
}

func (f *fakeTxStore) CountByWallet(ctx context.Context, walletID string) (int64, error) {
	return int64(len(f.txs)), nil
}

type fakeSyncService struct {
	result *models.SyncResult
	err    error
}

func (f *fakeSyncService) SyncWallet(ctx context.Context, walletID string, force bool) (*models.SyncResult, error) {
	return f.result, f.err
}

func (f *fakeSyncService) SyncAll(ctx context.Context) ([]*models.SyncResult, error) {
	return []*models.SyncResult{f.result}, nil
}

type fakeSyncStatus struct {
	state models.SyncState
}

func (f *fakeSyncStatus) Status(walletID string) models.SyncState {
	f.state.WalletID = walletID
	return f.state
}

type fakeBalanceService struct {
	snapshots []*models.BalanceSnapshot
	err       error
}

func (f *fakeBalanceService) HistoricalBalances(ctx context.Context, wallet *models.Wallet, start, end time.Time) ([]*models.BalanceSnapshot, error) {
	return f.snapshots, f.err
}

type fakePeriodService struct {
	report   *service.PeriodReport
	ingested map[types.Period]*models.PeriodDatum
}

func (f *fakePeriodService) Report(ctx context.Context, date time.Time) (*service.PeriodReport, error) {
	return f.report, nil
}

func (f *fakePeriodService) Ingest(ctx context.Context, p types.Period, date time.Time, datum *models.PeriodDatum) error {
	if p != types.PeriodDaily && p != types.PeriodMonthly && p != types.PeriodAnnual {
		return apperrors.NewValidationError("period", "unknown period: "+string(p))
	}
	if datum.IsEmpty() {
		return apperrors.NewValidationError("datum", "must carry a total or a category breakdown")
	}
	if f.ingested == nil {
		f.ingested = map[types.Period]*models.PeriodDatum{}
	}
	f.ingested[p] = datum
	return nil
}

type fakeDashboardService struct {
	summary *models.DashboardSummary
}

func (f *fakeDashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	return f.summary, nil
}

func (f *fakeDashboardService) Refresh(ctx context.Context) (*models.DashboardSummary, error) {
	return f.summary, nil
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:      "127.0.0.1",
		Port:      "0",
		ClientRPS: 1000,
	}
}

func createTestServer() (*Server, *fakeWalletStore) {
	wallets := &fakeWalletStore{wallets: map[string]*models.Wallet{
		"w1": {ID: "w1", Address: "0x52908400098527886E0F7030069857D2E4169EE7", Network: types.NetworkEthereum, Active: true},
	}}

	server := NewServer(testServerConfig(), Deps{
		Wallets:      wallets,
		Transactions: &fakeTxStore{txs: []*models.Transaction{{Hash: "0x1"}, {Hash: "0x2"}}},
		SyncService:  &fakeSyncService{result: &models.SyncResult{WalletID: "w1", Outcome: models.OutcomeSynced}},
		SyncStatus:   &fakeSyncStatus{state: models.SyncState{Phase: types.SyncIdle}},
		Balances:     &fakeBalanceService{},
		Periods:      &fakePeriodService{report: &service.PeriodReport{Periods: map[types.Period]*models.PeriodDatum{}}},
		Dashboard:    &fakeDashboardService{summary: &models.DashboardSummary{TotalValuation: decimal.NewFromInt(100)}},
	})

	return server, wallets
}

func doRequest(server *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	return w
}

func TestCreateWallet(t *testing.T) {
	server, _ := createTestServer()

	body, _ := json.Marshal(CreateWalletRequest{
		Address: "0x8617E340B3D01FA5F11F306F4090FD50E238070D",
		Network: "ethereum",
		Name:    "savings",
	})
	w := doRequest(server, "POST", "/api/wallets", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var created models.Wallet
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unparseable response: %v", err)
	}
	if created.Name != "savings" || !created.Active {
		t.Errorf("unexpected wallet: %+v", created)
	}
}

func TestCreateWalletInvalidJSON(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "POST", "/api/wallets", []byte("not json"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestCreateWalletValidationError(t *testing.T) {
	server, _ := createTestServer()

	body, _ := json.Marshal(CreateWalletRequest{Address: "invalid", Network: "ethereum"})
	w := doRequest(server, "POST", "/api/wallets", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unparseable error response: %v", err)
	}
	if resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", resp.Error.Code)
	}
}

func TestCreateWalletRejectsUnsupportedNetwork(t *testing.T) {
	server, _ := createTestServer()

	body, _ := json.Marshal(CreateWalletRequest{
		Address: "0x8617E340B3D01FA5F11F306F4090FD50E238070D",
		Network: "dogecoin",
	})
	w := doRequest(server, "POST", "/api/wallets", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unparseable error response: %v", err)
	}
	if resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", resp.Error.Code)
	}
}

func TestGetWalletNotFound(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "GET", "/api/wallets/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestSyncStatusUnknownWalletIs404(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "GET", "/api/wallets/nope/sync-status", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestSyncStatusIdleByDefault(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "GET", "/api/wallets/w1/sync-status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var state models.SyncState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("unparseable response: %v", err)
	}
	if state.Phase != types.SyncIdle {
		t.Errorf("expected idle phase, got %s", state.Phase)
	}
}

func TestSyncWalletPartialFailureReturnsResult(t *testing.T) {
	server, _ := createTestServer()
	server.syncService = &fakeSyncService{
		result: &models.SyncResult{WalletID: "w1", Outcome: models.OutcomeError, Pages: 3},
		err:    apperrors.NewPartialSyncError(3, 7, 42, nil),
	}

	w := doRequest(server, "POST", "/api/wallets/w1/sync", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}

	var resp struct {
		Result *models.SyncResult  `json:"result"`
		Error  *types.ServiceError `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unparseable response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != "PARTIAL_SYNC" {
		t.Errorf("expected PARTIAL_SYNC error alongside the result, got %+v", resp.Error)
	}
	if resp.Result == nil || resp.Result.Pages != 3 {
		t.Errorf("expected the partial result, got %+v", resp.Result)
	}
}

func TestGetTransactionsPagination(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "GET", "/api/wallets/w1/transactions?limit=1&offset=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Transactions []*models.Transaction `json:"transactions"`
		Total        int64                 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unparseable response: %v", err)
	}
	if len(resp.Transactions) != 1 || resp.Total != 2 {
		t.Errorf("expected 1 of 2 transactions, got %d of %d", len(resp.Transactions), resp.Total)
	}
}

func TestGetTransactionsRejectsHugeLimit(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "GET", "/api/wallets/w1/transactions?limit=10000", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetBalancesBadDate(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "GET", "/api/wallets/w1/balances?start=20-08-2026", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetBalances(t *testing.T) {
	server, _ := createTestServer()
	server.balances = &fakeBalanceService{snapshots: []*models.BalanceSnapshot{
		{WalletID: "w1", Date: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
	}}

	w := doRequest(server, "GET", "/api/wallets/w1/balances?start=2026-08-20&end=2026-08-20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Days int `json:"days"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unparseable response: %v", err)
	}
	if resp.Days != 1 {
		t.Errorf("expected 1 day, got %d", resp.Days)
	}
}

func TestExportRejectsUnknownKind(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "GET", "/api/wallets/w1/export?kind=pdf", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestExportTransactionsIsCSV(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "GET", "/api/wallets/w1/export?kind=transactions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %s", ct)
	}
}

func TestIngestPeriod(t *testing.T) {
	server, _ := createTestServer()
	periods := &fakePeriodService{}
	server.periods = periods

	total := decimal.NewFromInt(1234)
	body, _ := json.Marshal(IngestPeriodRequest{Date: "2026-08-20", Total: &total})
	w := doRequest(server, "PUT", "/api/periods/daily", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	datum := periods.ingested[types.PeriodDaily]
	if datum == nil || datum.Total == nil || !datum.Total.Equal(total) {
		t.Errorf("expected the figure to reach the service, got %+v", datum)
	}
}

func TestIngestPeriodRejectsUnknownGranularity(t *testing.T) {
	server, _ := createTestServer()
	server.periods = &fakePeriodService{}

	total := decimal.NewFromInt(1)
	body, _ := json.Marshal(IngestPeriodRequest{Date: "2026-08-20", Total: &total})
	w := doRequest(server, "PUT", "/api/periods/weekly", body)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestIngestPeriodRejectsBadDate(t *testing.T) {
	server, _ := createTestServer()
	server.periods = &fakePeriodService{}

	total := decimal.NewFromInt(1)
	body, _ := json.Marshal(IngestPeriodRequest{Date: "20-08-2026", Total: &total})
	w := doRequest(server, "PUT", "/api/periods/daily", body)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetDashboard(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "GET", "/api/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var summary models.DashboardSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unparseable response: %v", err)
	}
	if !summary.TotalValuation.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected total valuation: %s", summary.TotalValuation)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := createTestServer()

	w := doRequest(server, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
