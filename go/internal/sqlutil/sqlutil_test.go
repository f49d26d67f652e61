package sqlutil

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueries struct{ tx *sql.Tx }

func TestRunCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE widgets").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = Run(context.Background(), db,
		func(tx *sql.Tx) *fakeQueries { return &fakeQueries{tx: tx} },
		func(q *fakeQueries) error {
			_, err := q.tx.Exec("UPDATE widgets SET n = 1")
			return err
		})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = Run(context.Background(), db,
		func(tx *sql.Tx) *fakeQueries { return &fakeQueries{tx: tx} },
		func(*fakeQueries) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNullableConverters(t *testing.T) {
	assert.Nil(t, FromSqlInt32(ToSqlInt32(nil)))
	seven := 7
	assert.Equal(t, &seven, FromSqlInt32(ToSqlInt32(&seven)))

	assert.Nil(t, FromSqlFloat64(sql.NullFloat64{}))
	pts := 212.5
	assert.Equal(t, &pts, FromSqlFloat64(ToSqlFloat64(&pts)))

	assert.Nil(t, FromSqlTime(ToSqlTime(nil)))
}

func TestNullJSON(t *testing.T) {
	raw, err := ToNullJSON(map[string]int(nil))
	require.NoError(t, err)
	assert.False(t, raw.Valid)

	raw, err = ToNullJSON(map[string]int{"QB": 2})
	require.NoError(t, err)
	assert.True(t, raw.Valid)
	assert.JSONEq(t, `{"QB":2}`, string(raw.RawMessage))

	got, err := FromNullJSON[map[string]int](raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"QB": 2}, got)

	raw.RawMessage = []byte("{")
	_, err = FromNullJSON[map[string]int](raw)
	assert.Error(t, err)
}
