package repository_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type outboxRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	orders    port.OrderRepository
	repo      port.OutboxRepository
	container testcontainers.Container
}

func TestOutboxRepositorySuite(t *testing.T) {
	suite.Run(t, new(outboxRepositorySuite))
}

func (suite *outboxRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.orders = repository.NewOrder(suite.pool, repository.WithOutbox("orders"))
	suite.repo = repository.NewOutbox(suite.pool)
}

func (suite *outboxRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(testcontainers.TerminateContainer(suite.container))
	}
}

func (suite *outboxRepositorySuite) TearDownTest() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE orders, order_items, outbox CASCADE")
	suite.NoError(err)
}

func (suite *outboxRepositorySuite) TestProcessPending() {
	t := suite.T()
	ctx := t.Context()

	var orderIDs []int64
	for range 3 {
		inserted, _, err := suite.orders.InsertOrder(ctx, randomOrder())
		require.NoError(t, err)
		orderIDs = append(orderIDs, inserted.ID)
	}

	var handled []domain.OrderCreatedEvent
	n, err := suite.repo.ProcessPending(ctx, 10, func(recs []domain.OutboxRecord) error {
		for _, rec := range recs {
			var event domain.OrderCreatedEvent
			if err := json.Unmarshal(rec.Payload, &event); err != nil {
				return err
			}
			assert.Equal(t, rec.EventID, event.ID)
			handled = append(handled, event)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, handled, 3)
	for i, event := range handled {
		assert.Equal(t, orderIDs[i], event.OrderID)
		assert.Equal(t, domain.EventTypeOrderCreated, event.Type)
		assert.NotEmpty(t, event.Items)
	}

	// everything is marked sent
	n, err = suite.repo.ProcessPending(ctx, 10, func([]domain.OutboxRecord) error {
		t.Fatal("no batch expected")
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func (suite *outboxRepositorySuite) TestProcessPending_FailureKeepsBatchPending() {
	t := suite.T()
	ctx := t.Context()

	for range 3 {
		_, _, err := suite.orders.InsertOrder(ctx, randomOrder())
		require.NoError(t, err)
	}

	errBroker := errors.New("broker down")

	var batchSize int
	n, err := suite.repo.ProcessPending(ctx, 10, func(recs []domain.OutboxRecord) error {
		batchSize = len(recs)
		return errBroker
	})
	require.ErrorIs(t, err, errBroker)
	assert.Zero(t, n)
	assert.Equal(t, 3, batchSize)

	var pending int64
	err = suite.pool.QueryRow(ctx, "SELECT count(*) FROM outbox WHERE sent_at IS NULL").Scan(&pending)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pending)
	assert.Zero(t, suite.pool.Stat().AcquiredConns())
}

func (suite *outboxRepositorySuite) TestProcessPending_RespectsLimit() {
	t := suite.T()
	ctx := t.Context()

	for range 4 {
		_, _, err := suite.orders.InsertOrder(ctx, randomOrder())
		require.NoError(t, err)
	}

	n, err := suite.repo.ProcessPending(ctx, 3, func([]domain.OutboxRecord) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = suite.repo.ProcessPending(ctx, 3, func([]domain.OutboxRecord) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
