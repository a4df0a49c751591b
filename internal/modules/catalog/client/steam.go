package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/reshetovitsme/relaywatch/internal/modules/catalog/domain"
	"github.com/reshetovitsme/relaywatch/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"github.com/shopspring/decimal"
)

const (
	requestTimeout  = 60 * time.Second
	detailsLanguage = "english"
)

// Steam reads the app list and per-app store details
type Steam struct {
	apiURL   string
	storeURL string
	region   string
	client   *http.Client
}

func NewSteam(apiURL, storeURL, region string) *Steam {
	return &Steam{
		apiURL:   strings.TrimRight(apiURL, "/"),
		storeURL: strings.TrimRight(storeURL, "/"),
		region:   region,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

type steamApp struct {
	AppID int64  `json:"appid"`
	Name  string `json:"name"`
}

type appListResponse struct {
	AppList struct {
		Apps []steamApp `json:"apps"`
	} `json:"applist"`
}

type appDetails struct {
	Success bool `json:"success"`
	Data    struct {
		Name          string `json:"name"`
		IsFree        bool   `json:"is_free"`
		PriceOverview *struct {
			Currency        string `json:"currency"`
			Initial         int64  `json:"initial"`
			Final           int64  `json:"final"`
			DiscountPercent int    `json:"discount_percent"`
		} `json:"price_overview"`
	} `json:"data"`
}

// FetchAppList returns every named app in the catalog
func (s *Steam) FetchAppList(ctx context.Context) ([]domain.Item, error) {
	var resp appListResponse
	if err := s.getJSON(ctx, s.apiURL+"/ISteamApps/GetAppList/v2/", &resp); err != nil {
		return nil, err
	}

	items := lo.FilterMap(resp.AppList.Apps, func(app steamApp, _ int) (domain.Item, bool) {
		name := strings.TrimSpace(app.Name)
		return domain.Item{ID: strconv.FormatInt(app.AppID, 10), Name: name}, name != ""
	})
	return items, nil
}

// FetchName looks up a single app's name
func (s *Steam) FetchName(ctx context.Context, id string) (string, error) {
	details, err := s.fetchDetails(ctx, id)
	if err != nil {
		return "", err
	}
	if details.Data.Name == "" {
		return "", oops.With("appid", id).Wrap(errors.ErrNotFound)
	}
	return details.Data.Name, nil
}

// FetchPrice returns the app's price in the configured region. Free apps are
// priced at zero with a full discount; apps without a price return ErrNoPrice.
func (s *Steam) FetchPrice(ctx context.Context, id string) (domain.Price, error) {
	details, err := s.fetchDetails(ctx, id)
	if err != nil {
		return domain.Price{}, err
	}

	if details.Data.IsFree {
		return domain.FreePrice(), nil
	}

	overview := details.Data.PriceOverview
	if overview == nil {
		return domain.Price{}, oops.With("appid", id, "name", details.Data.Name, "region", s.region).Wrap(errors.ErrNoPrice)
	}

	return domain.Price{
		Current:  decimal.New(overview.Final, -2),
		Original: decimal.New(overview.Initial, -2),
		Discount: overview.DiscountPercent,
		Currency: overview.Currency,
	}, nil
}

func (s *Steam) fetchDetails(ctx context.Context, id string) (appDetails, error) {
	query := url.Values{}
	query.Set("appids", id)
	query.Set("cc", s.region)
	query.Set("l", detailsLanguage)

	var resp map[string]appDetails
	if err := s.getJSON(ctx, s.storeURL+"/api/appdetails?"+query.Encode(), &resp); err != nil {
		return appDetails{}, err
	}

	details, ok := resp[id]
	if !ok || !details.Success {
		return appDetails{}, oops.With("appid", id).Wrap(errors.ErrNotFound)
	}
	return details, nil
}

func (s *Steam) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return oops.With("url", rawURL).Wrap(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return oops.With("url", rawURL, "context", "catalog request failed").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return oops.With("url", rawURL, "status", resp.StatusCode).Errorf("catalog request failed with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return oops.With("url", rawURL, "context", "decoding catalog response").Wrap(err)
	}
	return nil
}
