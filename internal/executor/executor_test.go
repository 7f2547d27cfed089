package executor

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE legacy").WillReturnResult(sqlmock.NewResult(0, 0))

	e := New(db, nil)
	err = e.Execute(context.Background(), []string{
		"CREATE TABLE events (id UInt64) ENGINE = MergeTree ORDER BY id",
		"DROP TABLE legacy",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_StopsAtFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE b").WillReturnError(assert.AnError)

	e := New(db, nil)
	err = e.Execute(context.Background(), []string{
		"CREATE TABLE a (x Int8) ENGINE = Log",
		"CREATE TABLE b (x Int8) ENGINE = Log",
		"CREATE TABLE c (x Int8) ENGINE = Log",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "statement 2/3")
	// The third statement was never attempted.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_Empty(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, New(db, nil).Execute(context.Background(), nil))
}
