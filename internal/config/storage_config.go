package config

type StorageConfig interface {
	GetDatabaseURL() string
	GetRedisURL() string
	GetTokenStore() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetDatabaseURL returns the postgres connection string. Empty means
// in-memory storage.
func (Storage) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}

// GetRedisURL returns the redis connection URL used for token storage
// when TOKEN_STORE is "redis".
func (Storage) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

// GetTokenStore selects where issued tokens live: "memory", "postgres"
// or "redis".
func (Storage) GetTokenStore() string {
	return GetEnv("TOKEN_STORE", "memory")
}
