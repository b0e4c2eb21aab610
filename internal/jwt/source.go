package jwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/jwtvalidator/internal/metrics"
)

// Valores por defecto del servicio de claves.
const (
	DefaultEndpoint        = "/api/security/v1/keys"
	DefaultFetchParameters = "state=active&state=revoked&offset=0&limit=25"
	DefaultCacheDuration   = 5 * time.Minute
)

// ErrKeyNotFound se devuelve cuando el servicio de claves responde 404.
var ErrKeyNotFound = errors.New("public key not found")

// KeySource obtiene claves públicas del servicio remoto.
type KeySource interface {
	// FetchAll devuelve las claves indexadas por id. Un resultado nil sin error
	// significa que la respuesta no traía items.
	FetchAll(ctx context.Context) (map[int]*SigningKey, error)

	// FetchOne devuelve una clave o ErrKeyNotFound.
	FetchOne(ctx context.Context, id int) (*SigningKey, error)
}

// SourceError es un fallo del servicio de claves. Status es 0 si no hubo
// respuesta HTTP (error de red, timeout, cancelación).
type SourceError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *SourceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("an error occurred calling %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("an error occurred calling %s: %v", e.URL, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// StatusOf devuelve el status HTTP de un error del servicio de claves (0 si no hay).
func StatusOf(err error) int {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsTransient clasifica un error para el fallback a la clave en cache:
// 5xx, 429 o sin status (red) son transitorios; el resto de los 4xx no.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	status := StatusOf(err)
	return status == 0 || status >= 500 || status == http.StatusTooManyRequests
}

// Page es el sobre paginado que devuelve el listado de claves.
type Page struct {
	Paging struct {
		Offset     int `json:"offset"`
		Limit      int `json:"limit"`
		TotalCount int `json:"totalCount"`
	} `json:"paging"`
	Items []*SigningKey `json:"items"`
}

// HTTPSourceConfig configura HTTPSource.
type HTTPSourceConfig struct {
	Host            string
	Endpoint        string
	FetchParameters string
	Timeout         time.Duration
	Client          *http.Client // opcional
}

// HTTPSource implementa KeySource sobre el endpoint REST de claves.
type HTTPSource struct {
	base   string
	params string
	client *http.Client
}

// NewHTTPSource valida la configuración y construye el cliente.
func NewHTTPSource(cfg HTTPSourceConfig) (*HTTPSource, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, errors.New(`the key service "host" must be set`)
	}
	if _, err := url.Parse(host); err != nil {
		return nil, fmt.Errorf("invalid key service host: %w", err)
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPSource{
		base:   strings.TrimRight(host, "/") + "/" + strings.Trim(endpoint, "/"),
		params: strings.TrimPrefix(cfg.FetchParameters, "?"),
		client: client,
	}, nil
}

// FetchAll: GET {base}?{params}
func (s *HTTPSource) FetchAll(ctx context.Context) (map[int]*SigningKey, error) {
	u := s.base
	if s.params != "" {
		u += "?" + s.params
	}
	var page Page
	found, err := s.get(ctx, "all", u, &page)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &SourceError{Op: "all", URL: u, Status: http.StatusNotFound}
	}
	if page.Items == nil {
		return nil, nil
	}
	out := make(map[int]*SigningKey, len(page.Items))
	for _, k := range page.Items {
		if k == nil || k.ID <= 0 {
			continue
		}
		out[k.ID] = k
	}
	return out, nil
}

// FetchOne: GET {base}/{id}. 404 devuelve ErrKeyNotFound.
func (s *HTTPSource) FetchOne(ctx context.Context, id int) (*SigningKey, error) {
	u := s.base + "/" + strconv.Itoa(id)
	var key SigningKey
	found, err := s.get(ctx, "one", u, &key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrKeyNotFound
	}
	return &key, nil
}

// get ejecuta el request y decodifica el body. found=false indica 404.
func (s *HTTPSource) get(ctx context.Context, op, u string, out any) (found bool, err error) {
	start := time.Now()
	result := metrics.ResultError
	defer func() {
		metrics.KeyFetchTotal.WithLabelValues(op, result).Inc()
		metrics.KeyFetchDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, &SourceError{Op: op, URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, &SourceError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		result = metrics.ResultNotFound
		return false, nil
	}
	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, &SourceError{Op: op, URL: u, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return false, &SourceError{Op: op, URL: u, Status: http.StatusBadGateway, Err: fmt.Errorf("decode: %w", err)}
	}
	result = metrics.ResultOK
	return true, nil
}
