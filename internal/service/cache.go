// Пакет service — бизнес-логика Jira Bridge.
// CacheService — LRU-кэш метаданных подключений Nango с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/jira-bridge/internal/nango"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jb_connection_cache_hits_total",
		Help: "Общее количество попаданий в кэш метаданных подключений.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jb_connection_cache_misses_total",
		Help: "Общее количество промахов кэша метаданных подключений.",
	})
)

// CacheService — кэш connection_id → метаданные Nango (cloudId, accountId, baseUrl).
// Экономит запрос /connection/{id} перед каждым обращением к Jira.
// Кэш per-instance, данные Jira в нём не хранятся.
type CacheService struct {
	cache *expirable.LRU[string, *nango.Connection]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *nango.Connection](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает метаданные подключения из кэша.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(connectionID string) (*nango.Connection, bool) {
	val, ok := c.cache.Get(connectionID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CacheService) Set(connectionID string, conn *nango.Connection) {
	c.cache.Add(connectionID, conn)
}

// Delete удаляет запись (подключение пропало из Nango).
func (c *CacheService) Delete(connectionID string) {
	c.cache.Remove(connectionID)
}
