package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	redis "github.com/redis/go-redis/v9"
)

var _ inventory.ReportCache = (*RedisReportCache)(nil)

const (
	keyPrefix     = "costing:report"
	generationKey = keyPrefix + ":gen"
)

// RedisReportCache guarda reportes comparativos en Redis. Invalidate incrementa un contador
// de generación que forma parte de cada llave, así no hace falta borrar llaves con SCAN;
// las viejas expiran por TTL.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReportCache construye el cache. ttl <= 0 usa 5 minutos.
func NewRedisReportCache(addr, password string, db int, ttl time.Duration) *RedisReportCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisReportCacheWithClient(client, ttl)
}

// NewRedisReportCacheWithClient usa un cliente ya configurado.
func NewRedisReportCacheWithClient(client *redis.Client, ttl time.Duration) *RedisReportCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisReportCache{client: client, ttl: ttl}
}

func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

// GetComparison busca el reporte del alcance en la generación vigente y devuelve esa
// generación para guardar después el reporte calculado.
func (c *RedisReportCache) GetComparison(ctx context.Context, scope string) (*inventory.ComparisonReport, inventory.ReportVersion, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, err
	}
	version := inventory.ReportVersion(gen)
	val, err := c.client.Get(ctx, reportKey(gen, scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, nil
	}
	if err != nil {
		return nil, version, err
	}
	var rep inventory.ComparisonReport
	if err := json.Unmarshal(val, &rep); err != nil {
		return nil, version, err
	}
	return &rep, version, nil
}

// SetComparison guarda el reporte con TTL bajo la generación en que se empezó a calcular.
// Si hubo una invalidación entretanto la llave ya no se consulta y expira sola.
func (c *RedisReportCache) SetComparison(ctx context.Context, scope string, version inventory.ReportVersion, report *inventory.ComparisonReport) error {
	if report == nil {
		return nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reportKey(int64(version), scope), payload, c.ttl).Err()
}

// Invalidate deja obsoletos todos los reportes guardados.
func (c *RedisReportCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

func (c *RedisReportCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func reportKey(gen int64, scope string) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, gen, scope)
}
