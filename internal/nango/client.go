// Пакет nango — HTTP-клиент Nango: метаданные подключений (/connection/{id})
// и проксирование запросов к Jira (/proxy{path}) с OAuth-токеном,
// который хранит и обновляет Nango.
package nango

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Заголовки, которыми Nango адресует проксируемый запрос.
const (
	HeaderConnectionID      = "Connection-Id"
	HeaderProviderConfigKey = "Provider-Config-Key"
)

var (
	// ErrConnectionNotFound — Nango не знает такого подключения (404).
	ErrConnectionNotFound = errors.New("подключение не найдено в Nango")
	// ErrUnavailable — Nango недоступен или ответил неожиданным статусом.
	ErrUnavailable = errors.New("Nango недоступен")
)

// Prometheus-метрики обращений к Nango.
var (
	nangoRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jb_nango_requests_total",
			Help: "Общее количество запросов к Nango",
		},
		[]string{"operation", "status"},
	)

	nangoRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jb_nango_request_duration_seconds",
			Help:    "Длительность запросов к Nango в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Connection — метаданные подключения из Nango.
type Connection struct {
	ConnectionID      string
	ProviderConfigKey string
	Provider          string
	// CloudID, AccountID, BaseURL — из connection_config; пустые, если Nango их не вернул
	CloudID   string
	AccountID string
	BaseURL   string
	CreatedAt time.Time
}

// connectionResponse — тело ответа GET /connection/{id}.
type connectionResponse struct {
	ConnectionID      string         `json:"connection_id"`
	ProviderConfigKey string         `json:"provider_config_key"`
	Provider          string         `json:"provider"`
	CreatedAt         time.Time      `json:"created_at"`
	ConnectionConfig  map[string]any `json:"connection_config"`
}

// Options — параметры клиента.
type Options struct {
	// Host — базовый URL Nango (https://api.nango.dev)
	Host string
	// SecretKey — секретный ключ окружения Nango
	SecretKey string
	// ProviderConfigKey — ключ интеграции Jira в Nango
	ProviderConfigKey string
	// Timeout — таймаут запроса метаданных подключения
	Timeout time.Duration
	// ProxyTimeout — таймаут проксированных запросов
	ProxyTimeout time.Duration
	// CACertPath — CA-сертификат для self-hosted Nango (пустая строка — стандартный пул)
	CACertPath string
}

// Client — HTTP-клиент Nango.
type Client struct {
	httpClient   *http.Client
	transport    http.RoundTripper
	host         string
	secretKey    string //nolint:gosec // G101: поле структуры, не содержит секрет напрямую
	providerKey  string
	proxyTimeout time.Duration
	logger       *slog.Logger
}

// New создаёт клиент Nango.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 10,
	}

	if opts.CACertPath != "" {
		tlsConfig, err := buildTLSConfig(opts.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата Nango: %w", err)
		}
		transport.TLSClientConfig = tlsConfig
		logger.Info("CA-сертификат Nango добавлен в пул доверия",
			slog.String("ca_cert", opts.CACertPath),
		)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		transport:    transport,
		host:         strings.TrimRight(opts.Host, "/"),
		secretKey:    opts.SecretKey,
		providerKey:  opts.ProviderConfigKey,
		proxyTimeout: opts.ProxyTimeout,
		logger:       logger.With(slog.String("component", "nango_client")),
	}, nil
}

// GetConnection запрашивает метаданные подключения.
// GET {host}/connection/{id}?provider_config_key={key}
// 404 → ErrConnectionNotFound, прочие ошибки оборачивают ErrUnavailable.
func (c *Client) GetConnection(ctx context.Context, connectionID string) (*Connection, error) {
	start := time.Now()
	status := "error"
	defer func() {
		nangoRequestsTotal.WithLabelValues("get_connection", status).Inc()
		nangoRequestDuration.WithLabelValues("get_connection").Observe(time.Since(start).Seconds())
	}()

	reqURL := fmt.Sprintf("%s/connection/%s?%s",
		c.host,
		url.PathEscape(connectionID),
		url.Values{"provider_config_key": {c.providerKey}}.Encode(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("создание запроса GetConnection: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		return nil, fmt.Errorf("%w: запрос GetConnection к %s: %v", ErrUnavailable, c.host, err)
	}
	defer resp.Body.Close()

	status = strconv.Itoa(resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, connectionID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: Nango вернул статус %d для подключения %s: %s",
			ErrUnavailable, resp.StatusCode, connectionID, strings.TrimSpace(string(body)))
	}

	var cr connectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("%w: декодирование ответа GetConnection: %v", ErrUnavailable, err)
	}

	conn := &Connection{
		ConnectionID:      cr.ConnectionID,
		ProviderConfigKey: cr.ProviderConfigKey,
		Provider:          cr.Provider,
		CloudID:           configString(cr.ConnectionConfig, "cloudId"),
		AccountID:         configString(cr.ConnectionConfig, "accountId"),
		BaseURL:           strings.TrimRight(configString(cr.ConnectionConfig, "baseUrl"), "/"),
		CreatedAt:         cr.CreatedAt,
	}
	if conn.ConnectionID == "" {
		conn.ConnectionID = connectionID
	}

	c.logger.Debug("Метаданные подключения получены",
		slog.String("connection_id", connectionID),
		slog.Bool("has_cloud_id", conn.CloudID != ""),
	)

	return conn, nil
}

// ProxyBaseURL возвращает базовый URL Jira Cloud REST API через прокси Nango.
// Результат заканчивается слэшем: {host}/proxy/ex/jira/{cloudId}/
func (c *Client) ProxyBaseURL(cloudID string) string {
	return fmt.Sprintf("%s/proxy/ex/jira/%s/", c.host, url.PathEscape(cloudID))
}

// ProxyHTTPClient возвращает HTTP-клиент, все запросы которого уходят
// через прокси Nango от имени connectionID.
func (c *Client) ProxyHTTPClient(connectionID string) *http.Client {
	return &http.Client{
		Timeout: c.proxyTimeout,
		Transport: &proxyTransport{
			base:         c.transport,
			secretKey:    c.secretKey,
			connectionID: connectionID,
			providerKey:  c.providerKey,
		},
	}
}

// proxyTransport добавляет к запросу заголовки авторизации и адресации Nango.
type proxyTransport struct {
	base         http.RoundTripper
	secretKey    string //nolint:gosec // G101: поле структуры
	connectionID string
	providerKey  string
}

// RoundTrip реализует http.RoundTripper.
func (t *proxyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	// RoundTrip не должен изменять исходный запрос
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.secretKey)
	r.Header.Set(HeaderConnectionID, t.connectionID)
	r.Header.Set(HeaderProviderConfigKey, t.providerKey)

	resp, err := t.base.RoundTrip(r)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	nangoRequestsTotal.WithLabelValues("proxy", status).Inc()
	nangoRequestDuration.WithLabelValues("proxy").Observe(time.Since(start).Seconds())

	return resp, err
}

// configString извлекает строковое значение из connection_config.
func configString(cfg map[string]any, key string) string {
	if cfg == nil {
		return ""
	}
	s, _ := cfg[key].(string)
	return s
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA-сертификатом.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("CA-сертификат %s не содержит PEM-блоков", caCertPath)
	}

	return &tls.Config{
		RootCAs:    caCertPool,
		MinVersion: tls.VersionTLS12,
	}, nil
}
