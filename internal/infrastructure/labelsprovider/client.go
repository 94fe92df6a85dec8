// Package labelsprovider implementa el cliente HTTP del proveedor externo de
// trackings y códigos de barras.
package labelsprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labelhub/labelhub-api/internal/application/labels"
	"github.com/labelhub/labelhub-api/pkg/config"
	"github.com/labelhub/labelhub-api/pkg/logger"
)

// Verificar en tiempo de compilación que Client implementa ProviderClient.
var _ labels.ProviderClient = (*Client)(nil)

const (
	trackingPath = "/generate_tracking.php"
	barcodePath  = "/generate_barcode.php"
)

// Client adaptador HTTP del proveedor. Las credenciales viajan como query
// params (user_name, api_key) en cada llamada, como exige el proveedor.
type Client struct {
	baseURL    string
	userName   string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el cliente con el timeout de red de la configuración.
func NewClient(cfg config.ProviderConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		userName: cfg.UserName,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

type trackingResponse struct {
	TrackingNumbers []string `json:"tracking_numbers"`
	Error           string   `json:"error"`
}

type barcodeResponse struct {
	BarcodeDataURL string `json:"barcode_data_url"`
	Error          string `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("user_name", c.userName)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("provider: crear HTTP request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("provider: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("provider: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("provider: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider: HTTP %d: %s", resp.StatusCode, string(rawBody))
	}
	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("provider: deserializar respuesta: %w", err)
	}
	return nil
}

// GenerateTracking pide count trackings para (vendor, class) en una sola
// llamada. Nunca se reintenta después de recibir respuesta: cada tracking
// emitido consume inventario del proveedor, y un reintento duplicaría el
// consumo sin registro local.
func (c *Client) GenerateTracking(ctx context.Context, vendor, class string, count int) ([]string, error) {
	params := url.Values{}
	params.Set("vendor", vendor)
	params.Set("class", class)
	params.Set("count", strconv.Itoa(count))

	var out trackingResponse
	if err := c.get(ctx, trackingPath, params, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, fmt.Errorf("provider: generate_tracking: %s", out.Error)
	}
	return out.TrackingNumbers, nil
}

// GenerateBarcode devuelve la imagen (data URL) del código de barras para
// (zip, tracking). A diferencia del tracking, el barcode es idempotente por
// (zip, tracking), así que un fallo de transporte se reintenta una vez.
func (c *Client) GenerateBarcode(ctx context.Context, zip, tracking string) (string, error) {
	params := url.Values{}
	params.Set("zip", zip)
	params.Set("tracking", tracking)

	var out barcodeResponse
	err := c.get(ctx, barcodePath, params, &out)
	if err != nil && ctx.Err() == nil {
		c.log.Warn().
			Str("tracking", tracking).
			Err(err).
			Msg("provider: barcode falló, reintentando una vez")
		time.Sleep(200 * time.Millisecond)
		params2 := url.Values{}
		params2.Set("zip", zip)
		params2.Set("tracking", tracking)
		err = c.get(ctx, barcodePath, params2, &out)
	}
	if err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("provider: generate_barcode: %s", out.Error)
	}
	return out.BarcodeDataURL, nil
}
