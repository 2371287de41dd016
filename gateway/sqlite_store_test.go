package gateway

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "transactions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func testTransaction(id string) *Transaction {
	return &Transaction{
		ID:     id,
		Amount: Money{Amount: "10.00", Currency: "USD"},
		Status: StatusPending,
		Payer:  Payer{Name: "John Doe", Email: "john@example.com"},
	}
}

func TestSQLiteStore_InsertAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	expiry := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second)
	txn := testTransaction("T1")
	txn.AuthExpiry = &expiry
	txn.Description = "Order #42"

	require.NoError(t, store.Insert(ctx, txn))

	loaded, err := store.Load(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "T1", loaded.ID)
	assert.Equal(t, Money{Amount: "10.00", Currency: "USD"}, loaded.Amount)
	assert.Equal(t, StatusPending, loaded.Status)
	assert.Equal(t, "John Doe", loaded.Payer.Name)
	assert.Equal(t, "Order #42", loaded.Description)
	assert.Equal(t, int64(0), loaded.Version)
	require.NotNil(t, loaded.AuthExpiry)
	assert.True(t, loaded.AuthExpiry.Equal(expiry))
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SaveBumpsVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	txn := testTransaction("T1")
	require.NoError(t, store.Insert(ctx, txn))

	txn.Approve()
	require.NoError(t, store.Save(ctx, txn))
	assert.Equal(t, int64(1), txn.Version)

	loaded, err := store.Load(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, loaded.Status)
	assert.Equal(t, int64(1), loaded.Version)
	assert.Nil(t, loaded.AuthExpiry)
}

func TestSQLiteStore_SaveStaleVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTransaction("T1")))

	first, err := store.Load(ctx, "T1")
	require.NoError(t, err)
	second, err := store.Load(ctx, "T1")
	require.NoError(t, err)

	first.Approve()
	require.NoError(t, store.Save(ctx, first))

	second.Refuse()
	err = store.Save(ctx, second)
	assert.ErrorIs(t, err, ErrVersionConflict)

	loaded, err := store.Load(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, loaded.Status, "losing writer must not clobber the winner")
}

func TestSQLiteStore_SaveMissingRow(t *testing.T) {
	store := newTestStore(t)

	err := store.Save(context.Background(), testTransaction("ghost"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SaveQueryShape(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLiteStoreWithDB(db)
	txn := testTransaction("T1")
	txn.Status = StatusApproved
	txn.Version = 3

	mock.ExpectExec("UPDATE transactions").
		WithArgs("10.00", "USD", StatusApproved, nil, "John Doe", "john@example.com", "", "T1", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), txn))
	assert.Equal(t, int64(4), txn.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_SaveRetriesWhenBusy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLiteStoreWithDB(db)
	txn := testTransaction("T1")

	mock.ExpectExec("UPDATE transactions").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectExec("UPDATE transactions").
		WithArgs("10.00", "USD", StatusPending, nil, "John Doe", "john@example.com", "", "T1", int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}
