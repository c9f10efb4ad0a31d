package container

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/lp-farming/farming-core/internal/config"
	"github.com/lp-farming/farming-core/internal/db"
	"github.com/lp-farming/farming-core/pkg"
)

const (
	username = "user"
	password = "password"
	dbName   = "farming-e2e"
)

// Manager is a wrapper around all Docker instances, and the Docker API.
// It provides utilities to run and interact with all Docker containers used
// within e2e testing.
type Manager struct {
	cfg       ImageConfig
	pool      *dockertest.Pool
	resources []*dockertest.Resource
}

// NewManager creates a new Manager instance and initializes
// all Docker specific utilities. Resources are purged when t ends.
func NewManager(t *testing.T) (*Manager, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, err
	}
	pool.MaxWait = 2 * time.Minute

	m := &Manager{cfg: NewImageConfig(), pool: pool}
	t.Cleanup(func() {
		require.NoError(t, m.ClearResources())
	})
	return m, nil
}

func (m *Manager) run(t *testing.T, opts *dockertest.RunOptions) *dockertest.Resource {
	// there can be only 1 container with the same name
	opts.Name = fmt.Sprintf("%s-farming-e2e-%s", opts.Repository, pkg.NameSuffix(4))
	resource, err := m.pool.RunWithOptions(opts, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	require.NoError(t, err)
	m.resources = append(m.resources, resource)
	return resource
}

// RunMongo starts a mongo container and waits until it accepts connections.
func (m *Manager) RunMongo(t *testing.T) config.DbConfig {
	resource := m.run(t, &dockertest.RunOptions{
		Repository: m.cfg.MongoRepository,
		Tag:        m.cfg.MongoVersion,
		Env: []string{
			"MONGO_INITDB_ROOT_USERNAME=" + username,
			"MONGO_INITDB_ROOT_PASSWORD=" + password,
			"MONGO_INITDB_DATABASE=" + dbName,
		},
	})

	cfg := config.DbConfig{
		Username: username,
		Password: password,
		DbName:   dbName,
		Address:  fmt.Sprintf("mongodb://localhost:%s/", resource.GetPort("27017/tcp")),
	}
	require.NoError(t, cfg.Validate())

	err := m.pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := db.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close(ctx)
		return client.Ping(ctx)
	})
	require.NoError(t, err)
	return cfg
}

// RunRabbit starts a rabbitmq container and waits until it accepts
// connections.
func (m *Manager) RunRabbit(t *testing.T) *config.QueueConfig {
	resource := m.run(t, &dockertest.RunOptions{
		Repository: m.cfg.RabbitRepository,
		Tag:        m.cfg.RabbitVersion,
		Env: []string{
			"RABBITMQ_DEFAULT_USER=" + username,
			"RABBITMQ_DEFAULT_PASS=" + password,
		},
	})

	cfg := &config.QueueConfig{
		User:             username,
		Password:         password,
		Url:              fmt.Sprintf("localhost:%s", resource.GetPort("5672/tcp")),
		MaxRetryAttempts: 3,
		RetryInterval:    100 * time.Millisecond,
	}
	require.NoError(t, cfg.Validate())

	err := m.pool.Retry(func() error {
		conn, err := amqp.Dial(cfg.AmqpURI())
		if err != nil {
			return err
		}
		return conn.Close()
	})
	require.NoError(t, err)
	return cfg
}

// ClearResources removes all outstanding Docker resources created by the Manager.
func (m *Manager) ClearResources() error {
	for _, resource := range m.resources {
		if err := m.pool.Purge(resource); err != nil {
			return err
		}
	}
	m.resources = nil
	return nil
}
