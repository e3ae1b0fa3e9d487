//go:build integration

// Package containers starts the backing services integration tests run
// against. Containers are started once per test binary and shared; suites
// isolate themselves by truncating or flushing in SetupTest.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out the shared containers.
type Manager struct {
	postgresOnce sync.Once
	postgres     *PostgresContainer

	redisOnce sync.Once
	redis     *RedisContainer

	redpandaOnce sync.Once
	redpanda     *RedpandaContainer
}

var (
	managerOnce sync.Once
	manager     *Manager
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}

// GetPostgres starts Postgres on first use and applies the schema.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.postgresOnce.Do(func() {
		m.postgres = NewPostgresContainer(t)
	})
	if m.postgres == nil {
		t.Fatal("postgres container failed to start earlier")
	}
	return m.postgres
}

func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.redisOnce.Do(func() {
		m.redis = NewRedisContainer(t)
	})
	if m.redis == nil {
		t.Fatal("redis container failed to start earlier")
	}
	return m.redis
}

func (m *Manager) GetRedpanda(t *testing.T) *RedpandaContainer {
	t.Helper()
	m.redpandaOnce.Do(func() {
		m.redpanda = NewRedpandaContainer(t)
	})
	if m.redpanda == nil {
		t.Fatal("redpanda container failed to start earlier")
	}
	return m.redpanda
}
