package cache

import "time"

// Cache - хранилище с TTL. Реализация в memory, другие пока не нужны.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
	Delete(key string)
}
