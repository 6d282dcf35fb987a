package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/ValentinKolb/hKV/lib/storage"
	"github.com/VictoriaMetrics/metrics"
)

// recordCommand updates the per command counters and latency histogram:
//
//	hkv_commands_total{command="hget",status="200"}
//	hkv_command_duration_seconds{command="hget"}
func recordCommand(command string, status uint32, start time.Time) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`hkv_commands_total{command=%q,status="%d"}`, command, status)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`hkv_command_duration_seconds{command=%q}`, command)).UpdateDuration(start)
}

// infoCacheTTL bounds how often GetInfo is called while metrics are scraped
const infoCacheTTL = time.Second

// RegisterStorageMetrics exposes hkv_storage_tables and hkv_storage_keys for
// backends implementing storage.InfoProvider. It returns false if the backend
// does not report any info. Gauges are global: only the first registered
// backend is reported.
func RegisterStorageMetrics(store storage.Storage) bool {
	provider, ok := store.(storage.InfoProvider)
	if !ok {
		return false
	}

	cache := &infoCache{provider: provider}
	metrics.GetOrCreateGauge("hkv_storage_tables", func() float64 {
		return float64(cache.get().Tables)
	})
	metrics.GetOrCreateGauge("hkv_storage_keys", func() float64 {
		return float64(cache.get().Keys)
	})
	metrics.GetOrCreateGauge("hkv_storage_size_bytes", func() float64 {
		return float64(cache.get().SizeBytes)
	})
	return true
}

type infoCache struct {
	mu       sync.Mutex
	provider storage.InfoProvider
	info     storage.Info
	fetched  time.Time
}

func (c *infoCache) get() storage.Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.fetched) > infoCacheTTL {
		c.info = c.provider.GetInfo()
		c.fetched = time.Now()
	}
	return c.info
}
