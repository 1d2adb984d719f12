package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imanubhardwaj/easyappointments/internal/models"
)

func newProviderRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func providerRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "phone", "timezone", "working_plan", "service_ids", "password_hash", "active", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, id+"@example.com", "Jane", "Doe", "", "+00:00", []byte(`{}`), []byte(`["s1"]`), "hash", true, time.Now(), time.Now())
	}
	return rows
}

func TestProviderRepositoryList(t *testing.T) {
	db, mock, cleanup := newProviderRepoMock(t)
	defer cleanup()
	repo := NewProviderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM providers WHERE 1=1 ORDER BY last_name ASC, first_name ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(providerRows("p1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM providers WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ProviderFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepositoryListByService(t *testing.T) {
	db, mock, cleanup := newProviderRepoMock(t)
	defer cleanup()
	repo := NewProviderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM providers WHERE active = TRUE AND service_ids::jsonb ? $1 ORDER BY created_at ASC, id ASC")).
		WithArgs("s1").
		WillReturnRows(providerRows("p1", "p2"))

	list, err := repo.ListByService(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "p1", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newProviderRepoMock(t)
	defer cleanup()
	repo := NewProviderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM providers WHERE email = $1")).
		WithArgs("p1@example.com").
		WillReturnRows(providerRows("p1"))

	provider, err := repo.FindByEmail(context.Background(), "p1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "p1", provider.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepositoryFindByEmailMissing(t *testing.T) {
	db, mock, cleanup := newProviderRepoMock(t)
	defer cleanup()
	repo := NewProviderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM providers WHERE email = $1")).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newProviderRepoMock(t)
	defer cleanup()
	repo := NewProviderRepository(db)

	mock.ExpectExec("INSERT INTO providers").
		WillReturnResult(sqlmock.NewResult(1, 1))

	provider := &models.Provider{Email: "new@example.com", FirstName: "Jane", LastName: "Doe", Active: true}
	require.NoError(t, repo.Create(context.Background(), provider))
	assert.NotEmpty(t, provider.ID)
	assert.False(t, provider.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
