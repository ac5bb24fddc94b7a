package portal

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

func (c *Client) GetThemeVersion(ctx context.Context) (models.ThemeVersion, error) {
	var v models.ThemeVersion
	err := c.doJSON(ctx, http.MethodGet, "/theme-config/version/", nil, nil, &v)
	return v, err
}

// GetThemeConfig returns the raw (possibly partial) tenant configuration.
func (c *Client) GetThemeConfig(ctx context.Context) (models.TenantConfig, error) {
	var cfg models.TenantConfig
	err := c.doJSON(ctx, http.MethodGet, "/theme-config/", nil, nil, &cfg)
	return cfg, err
}

func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.AuthResult, error) {
	var out models.AuthResult
	err := c.doJSON(ctx, http.MethodPost, "/auth/login/", nil, creds, &out)
	return out, err
}

func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (models.AuthResult, error) {
	var out models.AuthResult
	err := c.doJSON(ctx, http.MethodPost, "/auth/signup/", nil, req, &out)
	return out, err
}

func (c *Client) GetQuotes(ctx context.Context, req models.QuoteRequest) ([]models.Quote, error) {
	var out []models.Quote
	err := c.doJSON(ctx, http.MethodPost, "/quotes/", nil, req, &out)
	return out, err
}

func (c *Client) CreateShipment(ctx context.Context, req models.CreateShipmentRequest) (models.Shipment, error) {
	var out models.Shipment
	err := c.doJSON(ctx, http.MethodPost, "/shipments/", nil, req, &out)
	return out, err
}

func (c *Client) UpdateShipment(ctx context.Context, id string, req models.UpdateShipmentRequest) (models.Shipment, error) {
	var out models.Shipment
	err := c.doJSON(ctx, http.MethodPatch, "/shipments/"+url.PathEscape(id)+"/", nil, req, &out)
	return out, err
}

func (c *Client) GetShipment(ctx context.Context, id string) (models.Shipment, error) {
	var out models.Shipment
	err := c.doJSON(ctx, http.MethodGet, "/shipments/"+url.PathEscape(id)+"/", nil, nil, &out)
	return out, err
}

func (c *Client) ListShipments(ctx context.Context, limit, offset int) ([]models.Shipment, error) {
	var out []models.Shipment
	err := c.doJSON(ctx, http.MethodGet, "/shipments/", pageQuery(limit, offset), nil, &out)
	return out, err
}

func (c *Client) ListPaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	var out []models.PaymentMethod
	err := c.doJSON(ctx, http.MethodGet, "/payment-methods/tenant/", nil, nil, &out)
	return out, err
}

type PayRequest struct {
	PaymentMethodID   string                   `json:"payment_method_id"`
	PaymentMethodType models.PaymentMethodType `json:"payment_method_type"`
	Payer             models.PayerInfo         `json:"payer"`
}

func (c *Client) InitiatePayment(ctx context.Context, paymentID string, req PayRequest) (models.PayResult, error) {
	var out models.PayResult
	err := c.doJSON(ctx, http.MethodPost, "/checkouts/"+url.PathEscape(paymentID)+"/pay/", nil, req, &out)
	return out, err
}

func (c *Client) ValidateCheckout(ctx context.Context, paymentID string) (models.ValidateResult, error) {
	var out models.ValidateResult
	err := c.doJSON(ctx, http.MethodGet, "/checkouts/"+url.PathEscape(paymentID)+"/validate/", nil, nil, &out)
	return out, err
}

func (c *Client) UploadProof(ctx context.Context, transactionID, filename string, r io.Reader) error {
	return c.doMultipart(ctx, "/transactions/"+url.PathEscape(transactionID)+"/upload-proof/", "file", filename, r, nil)
}

func (c *Client) ListTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	var out []models.Transaction
	err := c.doJSON(ctx, http.MethodGet, "/transactions/", pageQuery(limit, offset), nil, &out)
	return out, err
}

func (c *Client) GetWallet(ctx context.Context) (models.Wallet, error) {
	var out models.Wallet
	err := c.doJSON(ctx, http.MethodGet, "/wallet/", nil, nil, &out)
	return out, err
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}
