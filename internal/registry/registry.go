// Package registry reads driver, conductor and bus records from the external
// HR and fleet registries. Payload shape differences are absorbed here so
// callers always see plain slices.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fleetops/internal/cache"
)

type Employee struct {
	EmployeeNumber string `json:"employeeNumber"`
	FirstName      string `json:"firstName"`
	MiddleName     string `json:"middleName,omitempty"`
	LastName       string `json:"lastName"`
	Position       string `json:"position,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

func (e Employee) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.FirstName, e.MiddleName, e.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

type Bus struct {
	BusID       string `json:"busId"`
	PlateNumber string `json:"plateNumber"`
	BodyNumber  string `json:"bodyNumber,omitempty"`
	BusType     string `json:"busType,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
}

// Config holds the registry endpoints. An empty URL disables that feed.
type Config struct {
	DriverURL    string
	ConductorURL string
	BusURL       string
	Timeout      time.Duration
}

type Client struct {
	cfg   Config
	http  *http.Client
	cache *cache.Cache
}

func NewClient(cfg Config, httpClient *http.Client, c *cache.Cache) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Client{cfg: cfg, http: httpClient, cache: c}
}

func (c *Client) Drivers(ctx context.Context) ([]Employee, error) {
	return fetch[Employee](ctx, c, "drivers", c.cfg.DriverURL)
}

func (c *Client) Conductors(ctx context.Context) ([]Employee, error) {
	return fetch[Employee](ctx, c, "conductors", c.cfg.ConductorURL)
}

func (c *Client) Buses(ctx context.Context) ([]Bus, error) {
	return fetch[Bus](ctx, c, "buses", c.cfg.BusURL)
}

func fetch[T any](ctx context.Context, c *Client, kind, url string) ([]T, error) {
	if url == "" {
		return nil, nil
	}
	key := cache.NewKey(cache.EntityRegistry, "kind", kind)
	return cache.ReadThrough(ctx, c.cache, key, func(ctx context.Context) ([]T, error) {
		ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("registry %s: %w", kind, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("registry %s: unexpected status %d", kind, resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			return nil, fmt.Errorf("registry %s: %w", kind, err)
		}
		return decodeList[T](body)
	})
}

// listKeys are the wrapper fields registries have been seen to use.
var listKeys = []string{"data", "employees", "buses", "items", "results"}

// decodeList accepts a bare JSON array, or an object that carries the array
// under one of listKeys (possibly nested one level, e.g. {"data":{"items":[]}}).
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if body[0] == '[' {
		var out []T
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, err
	}
	for _, k := range listKeys {
		raw, ok := wrapper[k]
		if !ok {
			continue
		}
		return decodeList[T](raw)
	}
	return nil, fmt.Errorf("registry payload has no list field")
}

// Directory is the best-effort view used to decorate responses: fetch
// failures are logged and yield empty lookups.
type Directory struct {
	client *Client
}

func NewDirectory(c *Client) *Directory {
	return &Directory{client: c}
}

// Employees returns drivers and conductors keyed by employee number.
func (d *Directory) Employees(ctx context.Context) map[string]Employee {
	out := map[string]Employee{}
	if d == nil || d.client == nil {
		return out
	}
	drivers, err := d.client.Drivers(ctx)
	if err != nil {
		logrus.WithError(err).Warn("registry: drivers unavailable")
	}
	conductors, err := d.client.Conductors(ctx)
	if err != nil {
		logrus.WithError(err).Warn("registry: conductors unavailable")
	}
	for _, e := range append(drivers, conductors...) {
		out[e.EmployeeNumber] = e
	}
	return out
}

// Buses returns buses keyed by bus ID.
func (d *Directory) Buses(ctx context.Context) map[string]Bus {
	out := map[string]Bus{}
	if d == nil || d.client == nil {
		return out
	}
	buses, err := d.client.Buses(ctx)
	if err != nil {
		logrus.WithError(err).Warn("registry: buses unavailable")
	}
	for _, b := range buses {
		out[b.BusID] = b
	}
	return out
}
