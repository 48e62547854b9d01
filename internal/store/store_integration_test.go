package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"

// ProductStoreSuite is a test suite for the PgStore implementation.
type ProductStoreSuite struct {
	suite.Suite                             // Embedding testify suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool
	store       ProductStore                // Store under test
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite
}

// SetupSuite starts PostgreSQL, applies migrations and creates the store.
func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// 1. Start a PostgreSQL container and wait for it to accept connections.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	wd, _ := os.Getwd()
	sourceURL := "file://" + filepath.Join(wd, "..", "..", "migrations")
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied")

	s.store = NewPgStore(s.dbPool)
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest truncates the products table before every test.
func (s *ProductStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestProductStoreIntegration runs the ProductStore integration tests.
func TestProductStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(ProductStoreSuite))
}

// seed inserts the given products and returns them with assigned IDs.
func (s *ProductStoreSuite) seed(products ...NewProduct) []Product {
	s.T().Helper()
	created, err := s.store.CreateBatch(s.ctx, products)
	require.NoError(s.T(), err, "seed failed to create products")
	return created
}

func (s *ProductStoreSuite) TestCreateAndFindByID() {
	// when
	created, err := s.store.Create(s.ctx, NewProduct{Name: "Laptop", Price: 999.99})

	// then
	require.NoError(s.T(), err)
	require.NotZero(s.T(), created.ID)
	found, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	s.Equal(*created, *found)
}

func (s *ProductStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, 12345)
	s.ErrorIs(err, perrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestCreateBatch_KeepsOrder() {
	// when
	created := s.seed(
		NewProduct{Name: "A", Price: 1},
		NewProduct{Name: "B", Price: 2},
		NewProduct{Name: "C", Price: 3},
	)

	// then
	require.Len(s.T(), created, 3)
	s.Equal("A", created[0].Name)
	s.Equal("C", created[2].Name)
	s.Less(created[0].ID, created[1].ID)
	s.Less(created[1].ID, created[2].ID)
}

func (s *ProductStoreSuite) TestCreateBatch_Empty() {
	created, err := s.store.CreateBatch(s.ctx, nil)
	require.NoError(s.T(), err)
	s.Empty(created)
}

func (s *ProductStoreSuite) TestFindAll() {
	all, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	s.NotNil(all)
	s.Empty(all)

	s.seed(NewProduct{Name: "A", Price: 1}, NewProduct{Name: "B", Price: 2})
	all, err = s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	s.Len(all, 2)
}

func (s *ProductStoreSuite) TestFindByName() {
	created := s.seed(
		NewProduct{Name: "Phone", Price: 100},
		NewProduct{Name: "Phone", Price: 200},
		NewProduct{Name: "phone", Price: 300},
	)

	found, err := s.store.FindByName(s.ctx, "Phone")
	require.NoError(s.T(), err)
	s.Equal(created[0], *found, "lowest ID wins on duplicate names")

	_, err = s.store.FindByName(s.ctx, "PHONE")
	s.ErrorIs(err, perrors.ErrProductNotFound, "name lookup is case-sensitive")
}

func (s *ProductStoreSuite) TestSearchByName() {
	s.seed(
		NewProduct{Name: "Gaming Laptop", Price: 1500},
		NewProduct{Name: "laptop bag", Price: 50},
		NewProduct{Name: "Mouse", Price: 20},
		NewProduct{Name: "100% cotton", Price: 10},
	)

	testCases := []struct {
		keyword  string
		expected []string
	}{
		{keyword: "LAPTOP", expected: []string{"Gaming Laptop", "laptop bag"}},
		{keyword: "mouse", expected: []string{"Mouse"}},
		{keyword: "%", expected: []string{"100% cotton"}},
		{keyword: "_", expected: []string{}},
		{keyword: "tablet", expected: []string{}},
	}
	for _, tc := range testCases {
		s.Run(tc.keyword, func() {
			found, err := s.store.SearchByName(s.ctx, tc.keyword)
			require.NoError(s.T(), err)
			s.Equal(tc.expected, names(found))
		})
	}
}

func (s *ProductStoreSuite) TestSearch() {
	s.seed(
		NewProduct{Name: "Apple", Price: 5},
		NewProduct{Name: "Banana", Price: 10},
		NewProduct{Name: "Avocado", Price: 15},
		NewProduct{Name: "Grape", Price: 20},
		NewProduct{Name: "Papaya", Price: 25},
	)
	name := func(v string) *string { return &v }
	price := func(v float64) *float64 { return &v }

	testCases := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{name: "No filters returns all", filter: Filter{}, expected: []string{"Apple", "Banana", "Avocado", "Grape", "Papaya"}},
		{name: "Name substring ignores case", filter: Filter{Name: name("A")}, expected: []string{"Apple", "Banana", "Avocado", "Grape", "Papaya"}},
		{name: "Min price is inclusive", filter: Filter{MinPrice: price(20)}, expected: []string{"Grape", "Papaya"}},
		{name: "Max price is inclusive", filter: Filter{MaxPrice: price(10)}, expected: []string{"Apple", "Banana"}},
		{name: "All three combined with AND", filter: Filter{Name: name("a"), MinPrice: price(10), MaxPrice: price(20)}, expected: []string{"Banana", "Avocado", "Grape"}},
		{name: "Name and range without match", filter: Filter{Name: name("pap"), MaxPrice: price(20)}, expected: []string{}},
		{name: "Equal bounds", filter: Filter{MinPrice: price(15), MaxPrice: price(15)}, expected: []string{"Avocado"}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			found, err := s.store.Search(s.ctx, tc.filter)
			require.NoError(s.T(), err)
			s.Equal(tc.expected, names(found))
		})
	}
}

func (s *ProductStoreSuite) TestUpdate() {
	created := s.seed(NewProduct{Name: "Chair", Price: 40})[0]

	testCases := []struct {
		name        string
		input       Product
		expectedErr error
	}{
		{name: "Successful update", input: Product{ID: created.ID, Name: "Chair", Price: 45}},
		{name: "Non-existent product", input: Product{ID: created.ID + 100, Name: "Ghost", Price: 1}, expectedErr: perrors.ErrProductNotFound},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			updated, err := s.store.Update(s.ctx, tc.input)
			if tc.expectedErr != nil {
				s.ErrorIs(err, tc.expectedErr)
				s.Nil(updated)
				return
			}
			require.NoError(s.T(), err)
			s.Equal(tc.input, *updated)
			found, err := s.store.FindByID(s.ctx, tc.input.ID)
			require.NoError(s.T(), err)
			s.Equal(tc.input, *found)
		})
	}
}

func (s *ProductStoreSuite) TestDeleteByID() {
	created := s.seed(NewProduct{Name: "Desk", Price: 120})[0]

	deleted, err := s.store.DeleteByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	s.True(deleted)

	_, err = s.store.FindByID(s.ctx, created.ID)
	s.ErrorIs(err, perrors.ErrProductNotFound)

	deleted, err = s.store.DeleteByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), deleted, "second delete removes nothing")
}

func names(products []Product) []string {
	result := make([]string, 0, len(products))
	for _, p := range products {
		result = append(result, p.Name)
	}
	return result
}
