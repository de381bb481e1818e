package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/example/vajra/internal/models"
)

func setupMockDB(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	return NewGormStore(gormDB), mock
}

func TestGormStoreCreateUserDuplicateEmail(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := store.CreateUser(context.Background(), &models.User{
		ID:    "2f1b6a3e-5d8c-4c47-9b0e-7d3f2a1c9e10",
		Name:  "Asha",
		Email: "asha@example.com",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreFindByEmailNotFound(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	_, err := store.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreFindByEmailLoadsAddressesInInsertionOrder(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.MatchExpectationsInOrder(false)
	const userID = "2f1b6a3e-5d8c-4c47-9b0e-7d3f2a1c9e10"
	added := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(userID, "Asha", "asha@example.com"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "addresses"`) + `.*` + regexp.QuoteMeta(`ORDER BY created_at asc`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "line1", "zip", "created_at"}).
			AddRow("a1", userID, "12 MG Road", "411001", added).
			AddRow("a2", userID, "7 Park Street", "700016", added.Add(time.Hour)))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "orders"`) + `.*` + regexp.QuoteMeta(`ORDER BY date asc`)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "user_id"}))

	user, err := store.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.Len(t, user.Addresses, 2)
	assert.Equal(t, "12 MG Road", user.Addresses[0].Line1)
	assert.Equal(t, "7 Park Street", user.Addresses[1].Line1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreFindByIDRejectsMalformedID(t *testing.T) {
	store, mock := setupMockDB(t)

	_, err := store.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreFindByOrderIDNotFound(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))

	_, err := store.FindByOrderID(context.Background(), "order_missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreMarkOrderPaid(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := store.MarkOrderPaid(context.Background(), "order_1", time.Now())
	require.NoError(t, err)
	assert.True(t, changed)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	changed, err = store.MarkOrderPaid(context.Background(), "order_1", time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreSetOrderSessionMissingOrder(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.SetOrderSession(context.Background(), "order_missing", "cs_test")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
