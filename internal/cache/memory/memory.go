package memory

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/dropDatabas3/bookjohn/internal/cache"
	gocache "github.com/patrickmn/go-cache"
)

// Mem implementa cache.Cache sobre go-cache. El mutex propio cubre las
// operaciones compuestas (Take, Increment) que go-cache no hace atómicas.
type Mem struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// New crea una cache en memoria con el TTL default dado.
func New(defaultTTL time.Duration) cache.Cache {
	return &Mem{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Mem) Get(k string) ([]byte, bool) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	return b, true
}

func (m *Mem) Set(k string, v []byte, ttl time.Duration) { m.c.Set(k, v, ttl) }

func (m *Mem) Delete(k string) { m.c.Delete(k) }

func (m *Mem) Take(k string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false
	}
	m.c.Delete(k)
	b, _ := v.([]byte)
	return b, true
}

func (m *Mem) Increment(k string, delta int64, ttl time.Duration) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.c.Get(k); ok {
		if b, ok := v.([]byte); ok && len(b) == 8 {
			n := int64(binary.BigEndian.Uint64(b)) + delta
			// Set re-arma el TTL; para fixed window queremos conservar la
			// expiración original, así que reusamos el item con su deadline.
			if _, exp, ok := m.c.GetWithExpiration(k); ok && !exp.IsZero() {
				m.c.Set(k, encode(n), time.Until(exp))
			} else {
				m.c.Set(k, encode(n), ttl)
			}
			return n
		}
	}
	m.c.Set(k, encode(delta), ttl)
	return delta
}

func encode(n int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}
