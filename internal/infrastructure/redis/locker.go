package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// Locker candado distribuido por llave sobre redislock. Evita que dos réplicas procesen
// a la vez el mismo cobro; la fila única de idempotencia en la DB sigue siendo la garantía.
type Locker struct {
	client *redislock.Client
	log    *logger.Logger
}

// NewLocker construye el candado sobre un cliente ya conectado.
func NewLocker(client goredis.UniversalClient, log *logger.Logger) *Locker {
	return &Locker{client: redislock.New(client), log: log}
}

// Obtain toma el candado sin reintentos. Si otro proceso lo tiene devuelve
// domain.ErrIdempotencyInProgress; el cliente debe reintentar más tarde con la misma llave.
func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("candado %s: %w", key, domain.ErrIdempotencyInProgress)
		}
		return nil, fmt.Errorf("candado %s: %w: %w", key, domain.ErrTransient, err)
	}
	release := func() {
		// contexto propio: el de la petición puede estar cancelado al liberar
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(rctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el candado")
		}
	}
	return release, nil
}
