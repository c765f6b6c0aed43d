package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupSQLStore opens an in-memory sqlite database pinned to one connection.
func setupSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := NewSQLStore(gdb)
	require.NoError(t, store.Migrate(), "failed to migrate test database")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStoreEmployeeCRUD(t *testing.T) {
	store := setupSQLStore(t)
	ctx := context.Background()

	emp := &Employee{ID: "e1", FirstName: "Asha", LastName: "Rao", EmployeeCode: "EMP-1", Status: EmployeeStatusActive, AnnualCTC: 120000, MonthlyCTC: 10000}
	require.NoError(t, store.CreateEmployee(ctx, emp))

	got, err := store.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.FirstName)
	assert.Equal(t, 10000.0, got.MonthlyCTC)

	got.Status = EmployeeStatusInactive
	got.RoleID = ""
	require.NoError(t, store.UpdateEmployee(ctx, got))
	got, err = store.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, EmployeeStatusInactive, got.Status)

	missing := &Employee{ID: "nope", FirstName: "x", Status: EmployeeStatusActive}
	assert.ErrorIs(t, store.UpdateEmployee(ctx, missing), ErrNotFound)

	require.NoError(t, store.DeleteEmployee(ctx, "e1"))
	_, err = store.GetEmployee(ctx, "e1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteEmployee(ctx, "e1"), ErrNotFound)
}

func TestSQLStoreReferencesAreOrdered(t *testing.T) {
	store := setupSQLStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateRole(ctx, &Role{ID: "r2", RoleName: "Manager"}))
	require.NoError(t, store.CreateRole(ctx, &Role{ID: "r1", RoleName: "Engineer"}))
	require.NoError(t, store.CreateLevel(ctx, &Level{ID: "l1", LevelName: "L1"}))
	require.NoError(t, store.CreateOrganisation(ctx, &Organisation{ID: "o1", Name: "Headquarters", Abbreviation: "HQ"}))

	roles, err := store.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "Engineer", roles[0].RoleName)

	level, err := store.GetLevel(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, "L1", level.LevelName)

	org, err := store.GetOrganisation(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "HQ", org.Abbreviation)

	_, err = store.GetRole(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStoreAssignmentsEmbedClientAndCurrency(t *testing.T) {
	store := setupSQLStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateCurrency(ctx, &Currency{ID: "c-usd", Code: "USD", Name: "US Dollar"}))
	require.NoError(t, store.CreateClient(ctx, &Client{ID: "cl1", Name: "Acme", CurrencyID: "c-usd"}))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateAssignment(ctx, &ClientAssignment{
		ID: "a1", EmployeeID: "e1", ClientID: "cl1", StartDate: &start, MonthlyBilling: 5000, Status: AssignmentStatusActive,
	}))
	require.NoError(t, store.CreateAssignment(ctx, &ClientAssignment{
		ID: "a2", EmployeeID: "e2", ClientID: "cl1", Status: AssignmentStatusInactive,
	}))

	assignments, err := store.ListAssignmentsByEmployee(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.NotNil(t, assignments[0].Client)
	assert.Equal(t, "Acme", assignments[0].Client.Name)
	require.NotNil(t, assignments[0].Client.Currency)
	assert.Equal(t, "USD", assignments[0].Client.Currency.Code)

	none, err := store.ListAssignmentsByEmployee(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	client, err := store.GetClient(ctx, "cl1")
	require.NoError(t, err)
	require.NotNil(t, client.Currency)
	assert.Equal(t, "USD", client.Currency.Code)
}

func TestSQLStoreDuplicateID(t *testing.T) {
	store := setupSQLStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateRole(ctx, &Role{ID: "r1", RoleName: "Engineer"}))
	assert.ErrorIs(t, store.CreateRole(ctx, &Role{ID: "r1", RoleName: "Engineer"}), ErrDuplicate)
}
