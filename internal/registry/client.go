// Package registry looks up vehicles by license plate in the RDW open data registry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/aitechneut/autovandezaakofprive/internal/model"
)

var (
	ErrInvalidPlate = errors.New("invalid license plate")
	ErrNotFound     = errors.New("vehicle not found")
	ErrRateLimited  = errors.New("registry rate limit reached")
	ErrUnavailable  = errors.New("registry unavailable")
)

const (
	DefaultBaseURL = "https://opendata.rdw.nl"

	baseDataset = "m9d7-ebf2"
	fuelDataset = "8ys7-d773"
)

type Client struct {
	baseURL string
	timeout time.Duration
	ttl     time.Duration
	http    *fasthttp.Client
	log     *slog.Logger
	now     func() time.Time

	cache sync.Map
}

type cacheEntry struct {
	record  model.RawVehicleRecord
	expires time.Time
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns a client for baseURL. A ttl of zero disables caching.
func New(baseURL string, timeout, ttl time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		ttl:     ttl,
		http: &fasthttp.Client{
			Name:                "autovandezaakofprive/1.0",
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		log: slog.Default(),
		now: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NormalizePlate upper-cases a plate and strips everything but letters and digits.
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(plate) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type baseRow struct {
	Plate             string `json:"kenteken"`
	Brand             string `json:"merk"`
	TradeName         string `json:"handelsbenaming"`
	Variant           string `json:"variant"`
	FirstRegistration string `json:"datum_eerste_toelating"`
	Mass              string `json:"massa_ledig_voertuig"`
	ListPrice         string `json:"catalogusprijs"`
}

type fuelRow struct {
	Sequence      string `json:"brandstof_volgnummer"`
	Description   string `json:"brandstof_omschrijving"`
	SecondaryDesc string `json:"tweede_brandstof_omschrijving"`
	CO2Combined   string `json:"co2_uitstoot_gecombineerd"`
}

// Lookup returns the registry record for plate. The base and fuel datasets are
// fetched concurrently; successful results are cached for the client's TTL.
func (c *Client) Lookup(ctx context.Context, plate string) (*model.RawVehicleRecord, error) {
	plate = NormalizePlate(plate)
	if plate == "" || len(plate) > 8 {
		return nil, ErrInvalidPlate
	}

	if v, ok := c.cache.Load(plate); ok {
		entry := v.(cacheEntry)
		if c.now().Before(entry.expires) {
			rec := entry.record
			return &rec, nil
		}
		c.cache.Delete(plate)
	}

	start := time.Now()
	deadline := start.Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	var (
		wg      sync.WaitGroup
		base    []baseRow
		fuels   []fuelRow
		baseErr error
		fuelErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		baseErr = c.fetch(ctx, baseDataset, plate, deadline, &base)
	}()
	go func() {
		defer wg.Done()
		fuelErr = c.fetch(ctx, fuelDataset, plate, deadline, &fuels)
	}()
	wg.Wait()

	if err := errors.Join(baseErr, fuelErr); err != nil {
		c.log.Warn("registry lookup failed", "plate", plate, "error", err)
		if errors.Is(err, ErrRateLimited) {
			return nil, ErrRateLimited
		}
		return nil, err
	}
	if len(base) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, plate)
	}

	rec := toRecord(plate, base[0], fuels)
	c.log.Debug("registry lookup", "plate", plate, "duration_ms", time.Since(start).Milliseconds())
	if c.ttl > 0 {
		c.cache.Store(plate, cacheEntry{record: rec, expires: c.now().Add(c.ttl)})
	}
	return &rec, nil
}

func (c *Client) fetch(ctx context.Context, dataset, plate string, deadline time.Time, out any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/resource/" + dataset + ".json?kenteken=" + url.QueryEscape(plate))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, dataset, err)
	}

	switch code := resp.StatusCode(); {
	case code == fasthttp.StatusTooManyRequests:
		return ErrRateLimited
	case code != fasthttp.StatusOK:
		return fmt.Errorf("%w: %s returned status %d", ErrUnavailable, dataset, code)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, dataset, err)
	}
	return nil
}

func toRecord(plate string, b baseRow, fuels []fuelRow) model.RawVehicleRecord {
	rec := model.RawVehicleRecord{
		LicensePlate: plate,
		Brand:        ucfirst(b.Brand),
		Model:        strings.TrimSpace(strings.TrimSpace(b.TradeName) + " " + strings.TrimSpace(b.Variant)),
	}
	if b.TradeName == "" {
		rec.Model = nil
	}
	if d := strings.TrimSpace(b.FirstRegistration); d != "" {
		rec.FirstRegistrationDate = d
		if len(d) >= 4 {
			rec.FirstRegistrationYear = d[:4]
		}
	}
	if b.Mass != "" {
		rec.Mass = b.Mass
	}
	if b.ListPrice != "" {
		rec.ListPrice = b.ListPrice
	}

	sort.SliceStable(fuels, func(i, j int) bool { return fuels[i].Sequence < fuels[j].Sequence })
	var names []string
	for _, f := range fuels {
		if f.Description != "" {
			names = append(names, f.Description)
		}
		if f.SecondaryDesc != "" {
			names = append(names, f.SecondaryDesc)
		}
		if rec.CO2 == nil && f.CO2Combined != "" {
			rec.CO2 = f.CO2Combined
		}
	}
	if len(names) > 0 {
		rec.Fuel = names
	}
	return rec
}

func ucfirst(s string) any {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
