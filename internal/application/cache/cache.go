// Package cache implementa la caché read-through / write-invalidate de las lecturas de cada servicio.
//
// Entre una invalidación y la siguiente lectura no hay bloqueo: una lectura iniciada antes de
// invalidar puede volver a poblar el valor viejo, que vive como máximo un TTL.
// No hay caché negativa.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrMiss lo devuelve Store.Get cuando la clave no existe.
var ErrMiss = errors.New("cache: miss")

// Store puerto del almacén clave-valor (Redis en producción).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix borra toda clave que empiece literalmente con prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// Options configuración de Cache.
type Options struct {
	TTL time.Duration
	// SingleFlight agrupa misses concurrentes de la misma clave en un solo cómputo.
	SingleFlight bool
}

// Cache read-through sobre un Store.
type Cache struct {
	store Store
	ttl   time.Duration
	group *singleflight.Group
	log   zerolog.Logger
}

// New construye la caché. Sin TTL usa 5 minutos.
func New(store Store, opts Options, log zerolog.Logger) *Cache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &Cache{store: store, ttl: ttl, log: log}
	if opts.SingleFlight {
		c.group = &singleflight.Group{}
	}
	return c
}

// Fetch devuelve la clave desde la caché o, en miss, ejecuta load, guarda el resultado y lo devuelve.
// Los errores de load no se guardan. Un fallo del Store se registra y se sirve desde load.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var out T
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, &out); jsonErr == nil {
			return out, nil
		}
		c.log.Warn().Str("key", key).Msg("valor en caché ilegible, se recalcula")
	case !errors.Is(err, ErrMiss):
		c.log.Warn().Err(err).Str("key", key).Msg("lectura de caché falló")
	}

	compute := func() (T, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.populate(ctx, key, v)
		return v, nil
	}

	if c.group == nil {
		return compute()
	}
	v, err, _ := c.group.Do(key, func() (any, error) { return compute() })
	if err != nil {
		return out, err
	}
	return v.(T), nil
}

// Set guarda un valor ya calculado (p. ej. la orden recién creada).
func (c *Cache) Set(ctx context.Context, key string, v any) {
	c.populate(ctx, key, v)
}

func (c *Cache) populate(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("no se pudo serializar para caché")
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("escritura de caché falló")
	}
}

// Invalidation claves a borrar tras una escritura.
// Keys son claves exactas (entidad); Prefixes cubren los listados sin alcance y con alcance.
type Invalidation struct {
	Keys     []string
	Prefixes []string
}

// Invalidate borra todas las claves y prefijos; intenta todos aunque alguno falle.
func (c *Cache) Invalidate(ctx context.Context, inv Invalidation) error {
	var errs []error
	if len(inv.Keys) > 0 {
		if err := c.store.Delete(ctx, inv.Keys...); err != nil {
			errs = append(errs, fmt.Errorf("delete %v: %w", inv.Keys, err))
		}
	}
	for _, p := range inv.Prefixes {
		if err := c.store.DeletePrefix(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("delete prefix %s: %w", p, err))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		c.log.Error().Err(err).Msg("invalidación de caché incompleta")
	}
	return err
}
