package records

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordColumns = []string{"id", "first_name", "last_name", "role", "salary", "pdf"}

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return &PGRepo{DB: db}, mock
}

func TestPGGet(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM records WHERE id = $1`)).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(recordColumns).AddRow("r1", "Jane", "Doe", "Analyst", "85000", "Jane_x.pdf"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM records WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, Record{ID: "r1", FirstName: "Jane", LastName: "Doe", Role: "Analyst", Salary: "85000", PDF: "Jane_x.pdf"}, got)

	_, err = repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPGPut(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO records (id, first_name, last_name, role, salary, pdf)`)).
		WithArgs("r1", "Jane", "Doe", "Analyst", "85000", "Jane_x.pdf").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Put(context.Background(), Record{ID: "r1", FirstName: "Jane", LastName: "Doe", Role: "Analyst", Salary: "85000", PDF: "Jane_x.pdf"})
	require.NoError(t, err)
}

func TestPGUpdateFields(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE records`)).
		WithArgs("r1", "Jane", "Doe", "Lead", "90000").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE records`)).
		WithArgs("missing", "Jane", "Doe", "Lead", "90000").
		WillReturnResult(sqlmock.NewResult(0, 0))

	f := Fields{FirstName: "Jane", LastName: "Doe", Role: "Lead", Salary: "90000"}
	require.NoError(t, repo.UpdateFields(context.Background(), "r1", f))
	require.ErrorIs(t, repo.UpdateFields(context.Background(), "missing", f), ErrNotFound)
}

func TestPGDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM records WHERE id = $1`)).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM records WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM records WHERE id = $1`)).
		WithArgs("r2").
		WillReturnError(boom)

	require.NoError(t, repo.Delete(context.Background(), "r1"))
	require.ErrorIs(t, repo.Delete(context.Background(), "missing"), ErrNotFound)
	require.ErrorIs(t, repo.Delete(context.Background(), "r2"), boom)
}

func TestPGScanFirstNameContains(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE strpos(first_name, $1) > 0`)).
		WithArgs("hns").
		WillReturnRows(sqlmock.NewRows(recordColumns).AddRow("r1", "Johnson", "Smith", "Clerk", "40000", "j.pdf"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM records ORDER BY created_at, id`)).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("r1", "Johnson", "Smith", "Clerk", "40000", "j.pdf").
			AddRow("r2", "Ann", "Lee", "Nurse", "60000", "a.pdf"))

	got, err := repo.ScanFirstNameContains(context.Background(), "hns")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Johnson", got[0].FirstName)

	all, err := repo.ScanFirstNameContains(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
