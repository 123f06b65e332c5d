package salesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/varejodata/salesync_backend/utils"
)

type sourceClient struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	limiter   *time.Ticker
}

// NewHTTPSource builds the HTTP implementation of SaleSource against the
// legacy sales API. Base URL, key header and request pacing come from env.
func NewHTTPSource() (SaleSource, error) {
	baseURL := strings.TrimSpace(os.Getenv("SOURCE_API_BASE_URL"))
	if baseURL == "" {
		return nil, errors.New("SOURCE_API_BASE_URL is required")
	}
	apiKey := strings.TrimSpace(os.Getenv("SOURCE_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("SOURCE_API_KEY is required")
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("SOURCE_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	rateLimitPerMin := int64(30)
	if v := strings.TrimSpace(os.Getenv("SOURCE_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &sourceClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   time.NewTicker(interval),
	}, nil
}

// wireSaleItem is the upstream JSON shape. Numbers arrive as json.Number
// because the legacy API is inconsistent about quoting them.
type wireSaleItem struct {
	SaleCode         string      `json:"sale_code"`
	ItemSeq          json.Number `json:"item_seq"`
	StoreCode        string      `json:"store_code"`
	CollaboratorCode string      `json:"collaborator_code"`
	ProductRef       string      `json:"product_ref"`
	Section          string      `json:"section"`
	Group            string      `json:"group"`
	Subgroup         string      `json:"subgroup"`
	Brand            string      `json:"brand"`
	Description      string      `json:"description"`
	Channel          string      `json:"channel"`
	Qty              json.Number `json:"qty"`
	UnitPrice        json.Number `json:"unit_price"`
	TotalPrice       json.Number `json:"total_price"`
	SoldAt           string      `json:"sold_at"`
}

type sourceListResponse struct {
	Data       []json.RawMessage `json:"data"`
	Items      []json.RawMessage `json:"items"`
	NextCursor string            `json:"next_cursor"`
	HasMore    *bool             `json:"has_more"`
}

func (c *sourceClient) FetchSaleItems(ctx context.Context, start, end time.Time) ([]RawSaleItem, error) {
	itemsPath := strings.TrimSpace(os.Getenv("SOURCE_SALE_ITEMS_PATH"))
	if itemsPath == "" {
		itemsPath = "/v1/sale-items"
	}

	var out []RawSaleItem
	nextCursor := ""

	for {
		params := url.Values{}
		params.Set("start_date", start.Format(utils.DateLayout))
		params.Set("end_date", end.Format(utils.DateLayout))
		params.Set("limit", "500")
		if nextCursor != "" {
			params.Set("cursor", nextCursor)
		}

		resp, err := c.getList(ctx, itemsPath, params)
		if err != nil {
			return out, err
		}

		items := resp.Data
		if len(items) == 0 {
			items = resp.Items
		}

		for _, raw := range items {
			var wire wireSaleItem
			if err := json.Unmarshal(raw, &wire); err != nil {
				// Leave an unparsable record as a zero-valued item; the
				// importer counts and records it as malformed.
				out = append(out, RawSaleItem{})
				continue
			}
			out = append(out, wire.toRawSaleItem())
		}

		if resp.NextCursor == "" || (resp.HasMore != nil && !*resp.HasMore) {
			return out, nil
		}
		nextCursor = resp.NextCursor
	}
}

func (c *sourceClient) getList(ctx context.Context, path string, params url.Values) (sourceListResponse, error) {
	select {
	case <-ctx.Done():
		return sourceListResponse{}, ctx.Err()
	case <-c.limiter.C:
	}
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return sourceListResponse{}, err
	}
	req.Header.Set(c.apiKeyHdr, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return sourceListResponse{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return sourceListResponse{}, fmt.Errorf("source api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed sourceListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return sourceListResponse{}, err
	}
	return parsed, nil
}

func (w wireSaleItem) toRawSaleItem() RawSaleItem {
	seq := 0
	if n, err := w.ItemSeq.Int64(); err == nil {
		seq = int(n)
	}
	return RawSaleItem{
		SaleCode:         strings.TrimSpace(w.SaleCode),
		ItemSeq:          seq,
		StoreCode:        strings.TrimSpace(w.StoreCode),
		CollaboratorCode: strings.TrimSpace(w.CollaboratorCode),
		ProductRef:       strings.TrimSpace(w.ProductRef),
		Section:          strings.TrimSpace(w.Section),
		Group:            strings.TrimSpace(w.Group),
		Subgroup:         strings.TrimSpace(w.Subgroup),
		Brand:            strings.TrimSpace(w.Brand),
		Description:      strings.TrimSpace(w.Description),
		Channel:          strings.TrimSpace(w.Channel),
		Qty:              decimalFromNumber(w.Qty),
		UnitPrice:        decimalFromNumber(w.UnitPrice),
		TotalPrice:       decimalFromNumber(w.TotalPrice),
		SoldAt:           parseTimestamp(w.SoldAt),
	}
}

func decimalFromNumber(num json.Number) decimal.Decimal {
	if num.String() == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(num.String()); err == nil {
		return d
	}
	return decimal.Zero
}

// parseTimestamp accepts RFC3339 or the legacy "YYYY-MM-DD HH:MM:SS" shape;
// anything else maps to the zero time, which the importer rejects per item.
func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
