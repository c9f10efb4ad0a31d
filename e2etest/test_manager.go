package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/lp-farming/farming-core/e2etest/container"
	"github.com/lp-farming/farming-core/internal/api"
	"github.com/lp-farming/farming-core/internal/config"
	"github.com/lp-farming/farming-core/internal/db"
	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/queue"
	"github.com/lp-farming/farming-core/internal/services"
)

const startTime = 1_700_000_000

var (
	eventuallyWaitTimeOut = 20 * time.Second
	eventuallyPollTime    = 200 * time.Millisecond

	owner = common.HexToAddress("0x000000000000000000000000000000000000aaaa")
)

type testClock struct {
	now atomic.Uint64
}

func (c *testClock) Now() uint64 {
	return c.now.Load()
}

func (c *testClock) Advance(seconds uint64) {
	c.now.Add(seconds)
}

// TestManager runs the ledger against real mongo and rabbitmq containers and
// serves its api through an in-process http server.
type TestManager struct {
	Config   *config.Config
	DbClient *db.Database
	Queue    *queue.QueueManager
	Clock    *testClock
	Service  *services.Service
	Server   *httptest.Server
	// Events receives every event published to the exchange.
	Events <-chan amqp.Delivery

	manager   *container.Manager
	queueConn *amqp.Connection
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// StartManager creates a test manager with a freshly bootstrapped ledger.
func StartManager(t *testing.T) *TestManager {
	manager, err := container.NewManager(t)
	require.NoError(t, err)

	cfg := DefaultFarmingConfig()
	cfg.Db = manager.RunMongo(t)
	cfg.Queue = manager.RunRabbit(t)

	ctx := context.Background()
	require.NoError(t, model.Setup(ctx, &cfg.Db))
	dbClient, err := db.New(ctx, cfg.Db)
	require.NoError(t, err)

	qm, err := queue.NewQueueManager(cfg.Queue)
	require.NoError(t, err)

	tm := &TestManager{
		Config:   cfg,
		DbClient: dbClient,
		Queue:    qm,
		Clock:    &testClock{},
		manager:  manager,
	}
	tm.Clock.now.Store(startTime)
	tm.subscribe(t)
	tm.StartService(t)
	return tm
}

func DefaultFarmingConfig() *config.Config {
	return &config.Config{
		Poller: config.PollerConfig{
			InvariantCheckInterval: 100 * time.Millisecond,
			OutboxPollingInterval:  100 * time.Millisecond,
			OutboxBatchSize:        100,
		},
		Farm: config.FarmConfig{
			Owner:         owner.Hex(),
			RewardSymbol:  "RWD",
			StartTime:     startTime,
			BindReservoir: true,
			Pools: []config.PoolConfig{
				{Symbol: "LPA", AllocPoint: "3"},
				{Symbol: "LPB", AllocPoint: "1"},
			},
		},
		// one token per second
		Emission: config.EmissionConfig{
			InitialRate: "1000000000000000000",
		},
	}
}

// subscribe binds a private queue to every ledger event.
func (tm *TestManager) subscribe(t *testing.T) {
	conn, err := amqp.Dial(tm.Config.Queue.AmqpURI())
	require.NoError(t, err)
	ch, err := conn.Channel()
	require.NoError(t, err)
	require.NoError(t, ch.ExchangeDeclare(tm.Config.Queue.Exchange, amqp.ExchangeTopic, true, false, false, false, nil))
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "farming.v1.#", tm.Config.Queue.Exchange, false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	tm.queueConn = conn
	tm.Events = deliveries
}

// StartService loads the ledger from the database and starts serving it.
func (tm *TestManager) StartService(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	service := services.NewService(tm.Config, tm.DbClient, tm.Queue, tm.Clock)
	require.NoError(t, service.Bootstrap(ctx))

	tm.wg.Add(1)
	go func() {
		defer tm.wg.Done()
		service.StartPollers(ctx)
	}()

	tm.Service = service
	tm.Server = httptest.NewServer(api.NewRouter(service))
	tm.cancel = cancel
}

// StopService shuts the api and the pollers down, keeping the containers.
func (tm *TestManager) StopService() {
	tm.Server.Close()
	tm.cancel()
	tm.wg.Wait()
}

func (tm *TestManager) Stop(t *testing.T) {
	tm.StopService()
	tm.Queue.Shutdown()
	require.NoError(t, tm.queueConn.Close())
	require.NoError(t, tm.DbClient.Close(context.Background()))
}

// Do sends a request to the api as caller and decodes a json response into
// out when out is not nil.
func (tm *TestManager) Do(t *testing.T, method, path string, caller common.Address, body any, status int, out any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tm.Server.URL+path, reader)
	require.NoError(t, err)
	if caller != (common.Address{}) {
		req.Header.Set("X-Caller-Address", caller.Hex())
	}

	resp, err := tm.Server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, status, resp.StatusCode, string(raw))
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out))
	}
}

// Balance returns the balance of owner in the token named symbol.
func (tm *TestManager) Balance(t *testing.T, symbol string, owner common.Address) string {
	var resp api.AmountResponse
	tm.Do(t, http.MethodGet, "/v1/tokens/"+symbol+"/balances/"+owner.Hex(), common.Address{}, nil, http.StatusOK, &resp)
	return resp.Amount
}
