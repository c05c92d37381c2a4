package epic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/config"
	"github.com/scmsohel/epic-loot-bot/internal/domain"
	"github.com/scmsohel/epic-loot-bot/internal/domain/model"
	"github.com/scmsohel/epic-loot-bot/internal/domain/ports/adapter"
	"github.com/scmsohel/epic-loot-bot/internal/infra/i18n"
	"github.com/scmsohel/epic-loot-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

var _ adapter.StorefrontFetcher = (*Client)(nil)

const maxBodyBytes = 8 << 20

// Client reads the Epic Games free promotions feed.
type Client struct {
	endpoint string
	client   *http.Client
	zone     *time.Location
	now      func() time.Time
	log      *zerolog.Logger
}

func NewClient(cfg config.StorefrontConfig, logger *zerolog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid storefront url: %w", err)
	}
	q := u.Query()
	q.Set("locale", cfg.Locale)
	q.Set("country", cfg.Country)
	q.Set("allowCountries", cfg.AllowCountries)
	u.RawQuery = q.Encode()

	return &Client{
		endpoint: u.String(),
		client:   &http.Client{Timeout: cfg.Timeout},
		zone:     i18n.DisplayZone(cfg.DisplayOffset),
		now:      time.Now,
		log:      logger,
	}, nil
}

func (c *Client) FetchOffers(ctx context.Context) (*model.Offers, error) {
	start := time.Now()
	offers, err := c.fetch(ctx)
	switch {
	case err == nil:
		metrics.ObserveStorefrontFetch("ok", time.Since(start))
		metrics.SetStorefrontOffers(len(offers.FreeNow), len(offers.ComingSoon))
	case errors.Is(err, domain.ErrMalformedResponse):
		metrics.ObserveStorefrontFetch("malformed", time.Since(start))
	default:
		metrics.ObserveStorefrontFetch("unavailable", time.Since(start))
	}
	return offers, err
}

func (c *Client) fetch(ctx context.Context) (*model.Offers, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorefrontUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorefrontUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http %d", domain.ErrStorefrontUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrStorefrontUnavailable, err)
	}

	offers, err := parseOffers(body, c.zone, c.log)
	if err != nil {
		return nil, err
	}
	offers.FetchedAt = c.now()
	c.log.Debug().Int("free_now", len(offers.FreeNow)).Int("coming_soon", len(offers.ComingSoon)).Msg("storefront fetched")
	return offers, nil
}

// parseOffers extracts free-now and coming-soon promotions from the feed.
// Elements without promotions are skipped, as are offers with unparsable dates.
func parseOffers(body []byte, zone *time.Location, log *zerolog.Logger) (*model.Offers, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", domain.ErrMalformedResponse)
	}
	store := gjson.GetBytes(body, "data.Catalog.searchStore")
	if !store.IsObject() {
		return nil, fmt.Errorf("%w: missing data.Catalog.searchStore", domain.ErrMalformedResponse)
	}

	offers := &model.Offers{}
	store.Get("elements").ForEach(func(_, el gjson.Result) bool {
		promo := el.Get("promotions")
		if !promo.IsObject() {
			return true
		}
		title := el.Get("title").String()

		for _, group := range promo.Get("promotionalOffers").Array() {
			offer := group.Get("promotionalOffers.0")
			pct := offer.Get("discountSetting.discountPercentage")
			if !offer.Exists() || !pct.Exists() || pct.Float() != 0 {
				continue
			}
			end, err := parseTime(offer.Get("endDate"), zone)
			if err != nil {
				log.Debug().Err(err).Str("title", title).Msg("skipping free offer with bad end date")
				continue
			}
			start, _ := parseTime(offer.Get("startDate"), zone)
			offers.FreeNow = append(offers.FreeNow, model.FreeGame{Title: title, Start: start, End: end})
		}

		if strings.Contains(strings.ToLower(title), "mystery") {
			return true
		}
		for _, group := range promo.Get("upcomingPromotionalOffers").Array() {
			offer := group.Get("promotionalOffers.0")
			if !offer.Exists() {
				continue
			}
			start, err := parseTime(offer.Get("startDate"), zone)
			if err != nil {
				log.Debug().Err(err).Str("title", title).Msg("skipping upcoming offer with bad start date")
				continue
			}
			end, err := parseTime(offer.Get("endDate"), zone)
			if err != nil {
				log.Debug().Err(err).Str("title", title).Msg("skipping upcoming offer with bad end date")
				continue
			}
			offers.ComingSoon = append(offers.ComingSoon, model.UpcomingGame{Title: title, Start: start, End: end})
		}
		return true
	})

	offers.SortComingSoon()
	return offers, nil
}

func parseTime(v gjson.Result, zone *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v.String())
	if err != nil {
		return time.Time{}, err
	}
	return t.In(zone), nil
}
