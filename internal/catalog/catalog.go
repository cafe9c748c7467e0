package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"racksum-backend/config"
	"racksum-backend/internal/logger"
	"racksum-backend/internal/model"
	"racksum-backend/internal/store"
)

// ErrNoSource is returned by Sync when no catalog source is configured.
var ErrNoSource = errors.New("catalog source is not configured")

// maxBodyBytes bounds how much of a remote catalog is read.
const maxBodyBytes = 16 << 20

// Service imports device templates from a JSON catalog into the store.
type Service struct {
	cfg    *config.CatalogConfig
	store  store.Store
	client *http.Client
}

// NewService creates a catalog service. An invalid proxy URL is logged and
// ignored.
func NewService(cfg *config.CatalogConfig, s store.Store) *Service {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.HTTPProxy).Msg("invalid catalog proxy URL; fetching without it")
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		cfg:   cfg,
		store: s,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Sync imports the configured catalog source.
func (s *Service) Sync(ctx context.Context) (int, error) {
	if s.cfg.Source == "" {
		return 0, ErrNoSource
	}
	return s.Import(ctx, s.cfg.Source)
}

// Import reads a catalog from a file path or an http(s) URL and upserts its
// entries by device_id. It returns the number of templates written; entries
// identical to the stored template are not counted.
func (s *Service) Import(ctx context.Context, source string) (int, error) {
	start := time.Now()
	body, err := s.fetch(ctx, source)
	if err != nil {
		return 0, err
	}

	entries, err := Decode(body)
	if err != nil {
		return 0, fmt.Errorf("failed to decode catalog %s: %w", source, err)
	}

	templates := make([]model.DeviceTemplate, 0, len(entries))
	for _, e := range entries {
		templates = append(templates, e.Template())
	}

	n, err := s.store.UpsertDeviceTemplates(ctx, templates)
	if err != nil {
		return 0, fmt.Errorf("failed to import catalog %s: %w", source, err)
	}

	logger.Info().
		Str("source", source).
		Int("entries", len(entries)).
		Int("written", n).
		Dur("elapsed", time.Since(start)).
		Msg("device catalog imported")
	return n, nil
}

func (s *Service) fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		body, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// Entry is one device in a catalog. Both snake_case and camelCase keys are
// accepted; id is an alias for device_id.
type Entry struct {
	DeviceID        string `json:"device_id"`
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	RUSize          *int   `json:"ru_size"`
	RUSizeCamel     *int   `json:"ruSize"`
	PowerDraw       *int   `json:"power_draw"`
	PowerCamel      *int   `json:"powerDraw"`
	PowerPorts      *int   `json:"power_ports_used"`
	PowerPortsCamel *int   `json:"powerPortsUsed"`
	Color           string `json:"color"`
	Description     string `json:"description"`
}

// Template converts the entry into a device template with defaults applied.
// The result is not validated; the store does that on upsert.
func (e Entry) Template() model.DeviceTemplate {
	d := model.DeviceTemplate{
		DeviceID:       first(e.DeviceID, e.ID),
		Name:           e.Name,
		Category:       e.Category,
		RUSize:         firstInt(1, e.RUSize, e.RUSizeCamel),
		PowerDraw:      firstInt(0, e.PowerDraw, e.PowerCamel),
		PowerPortsUsed: firstInt(model.DefaultPorts, e.PowerPorts, e.PowerPortsCamel),
		Color:          e.Color,
		Description:    e.Description,
	}
	if d.Name == "" {
		d.Name = d.DeviceID
	}
	return d
}

// grouped is the category-grouped catalog layout.
type grouped struct {
	Categories []struct {
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Devices  []Entry `json:"devices"`
	} `json:"categories"`
}

// Decode parses a catalog. It accepts either a JSON array of entries or an
// object holding {"categories": [{"name": ..., "devices": [...]}]}, where an
// entry without a category inherits the group's name.
func Decode(body []byte) ([]Entry, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("catalog is empty")
	}

	if body[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var g grouped
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, err
	}
	var entries []Entry
	for _, c := range g.Categories {
		name := first(c.Name, c.Category)
		for _, e := range c.Devices {
			if e.Category == "" {
				e.Category = name
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstInt(def int, vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return def
}
