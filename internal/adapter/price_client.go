package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/wallet-ledger/internal/config"
	apperrors "github.com/wallet-ledger/internal/errors"
)

// PriceClient talks to the external price/valuation service. A quote the
// service does not have is reported as absent (ok=false), never estimated.
type PriceClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewPriceClient creates a price service client.
func NewPriceClient(cfg *config.PriceConfig) *PriceClient {
	return &PriceClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(10), 5),
	}
}

type priceResponse struct {
	Price string `json:"price"`
}

// UnitPrice returns the reference-currency price for one unit of the token
// as of the given date. ok is false when the service has no quote for that
// exact day.
func (c *PriceClient) UnitPrice(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return decimal.Zero, false, apperrors.NewTransportError("price lookup", err)
	}

	url := fmt.Sprintf("%s/v1/prices/%s?date=%s", c.baseURL, symbol, asOf.UTC().Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, false, apperrors.NewTransportError("price lookup", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, false, apperrors.NewTransportError("price lookup", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No quote for that token/day. Absent, not an error.
		return decimal.Zero, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decimal.Zero, false, apperrors.NewUpstreamError("price service", resp.StatusCode, "")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return decimal.Zero, false, apperrors.NewTransportError("price lookup", err)
	}

	var pr priceResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return decimal.Zero, false, apperrors.NewUpstreamError("price service", resp.StatusCode, "unparseable price: "+err.Error())
	}

	price, err := decimal.NewFromString(pr.Price)
	if err != nil {
		return decimal.Zero, false, apperrors.NewUpstreamError("price service", resp.StatusCode, "bad price value: "+err.Error())
	}

	return price, true, nil
}

// Valuate converts a token amount into the reference currency as of the
// given date. ok is false when no price is available for that day.
func (c *PriceClient) Valuate(ctx context.Context, symbol string, amount decimal.Decimal, asOf time.Time) (decimal.Decimal, bool, error) {
	price, ok, err := c.UnitPrice(ctx, symbol, asOf)
	if err != nil || !ok {
		return decimal.Zero, ok, err
	}
	return amount.Mul(price), true, nil
}
