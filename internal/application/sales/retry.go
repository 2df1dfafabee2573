package sales

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
)

// RetryPolicy reintentos acotados con backoff exponencial y jitter, solo ante
// domain.ErrTransientConflict. Cualquier otro error se devuelve en el primer intento.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy 3 intentos, 20ms base, 500ms tope.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 20 * time.Millisecond, MaxDelay: 500 * time.Millisecond}
}

// Do ejecuta fn hasta MaxAttempts veces. Devuelve ctx.Err() si el contexto termina durante la espera.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTransientConflict) || attempt == attempts-1 {
			return err
		}
		timer := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// backoff BaseDelay*2^attempt con tope MaxDelay, más jitter de hasta la mitad del valor.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay << attempt
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		d = p.MaxDelay
	}
	return d + time.Duration(rand.Int63n(int64(d/2)+1))
}
