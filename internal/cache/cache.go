// Package cache define la interfaz de cache efímero del servicio.
// Se usa para tokens one-shot (verificación de email, reset de password)
// y para los contadores del rate limiter.
package cache

import "time"

// Cache es un KV con TTL.
type Cache interface {
	Get(k string) ([]byte, bool)
	Set(k string, v []byte, ttl time.Duration)
	Delete(k string)

	// Take es un get-and-delete atómico: exactamente un caller obtiene el
	// valor. Es lo que hace one-shot a los tokens de email/reset.
	Take(k string) ([]byte, bool)

	// Increment suma delta sobre un contador, creándolo con el TTL dado si
	// no existe. Retorna el valor resultante.
	Increment(k string, delta int64, ttl time.Duration) int64
}
