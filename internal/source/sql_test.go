package source

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/case-dashboard/internal/domain"
)

var caseColumns = []string{"treatment_type", "diagnosis", "treatment_status", "clinician_id"}

func TestSQLSource_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT treatment_type, diagnosis, treatment_status, clinician_id FROM "cases" ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows(caseColumns).
			AddRow("Quimioterapia", "Linfoma", "En curso", "dr.perez").
			AddRow(" Cirugía ", nil, "NaN", nil))

	src := NewSQLSource(db, "mock", "", newTestDecoder(t))
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	recs := ds.Records()
	assert.Equal(t, "dr.perez", value(recs[0], domain.AttrClinicianID))
	assert.Equal(t, " Cirugía ", value(recs[1], domain.AttrTreatmentType))
	assert.Nil(t, value(recs[1], domain.AttrDiagnosis))
	assert.Nil(t, value(recs[1], domain.AttrTreatmentStatus))
	assert.Nil(t, value(recs[1], domain.AttrClinicianID))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrConnDone)

	src := NewSQLSource(db, "mock", "cases", newTestDecoder(t))
	_, err = src.Load(context.Background())

	var unavailable *domain.DataUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestSQLSource_RowError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(caseColumns).
		AddRow("A", "X", "open", "dr.a").
		RowError(0, errors.New("broken row")))

	src := NewSQLSource(db, "mock", "cases", newTestDecoder(t))
	_, err = src.Load(context.Background())
	assert.Error(t, err)
}

func TestSQLSource_QuotesTableName(t *testing.T) {
	assert.Equal(t,
		`SELECT treatment_type, diagnosis, treatment_status, clinician_id FROM "odd""name" ORDER BY id`,
		selectCasesQuery(`odd"name`, orderByID))
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE cases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		treatment_type TEXT,
		diagnosis TEXT,
		treatment_status TEXT,
		clinician_id TEXT
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO cases (treatment_type, diagnosis, treatment_status, clinician_id) VALUES
		('Quimioterapia', 'Linfoma', 'En curso', 'dr.perez'),
		('Cirugía', NULL, 'Finalizado', 'dra.gomez'),
		('Quimioterapia', 'Melanoma', NULL, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := OpenSQLite(path, "cases", newTestDecoder(t))
	require.NoError(t, err)
	defer src.Close()

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "sqlite:"+path, src.Name())
	assert.Equal(t, "Cirugía", value(ds.Records()[1], domain.AttrTreatmentType))
	assert.Nil(t, value(ds.Records()[2], domain.AttrClinicianID))
}

func TestOpenSQLite_TableWithoutID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE casos (
		treatment_type TEXT,
		diagnosis TEXT,
		treatment_status TEXT,
		clinician_id TEXT
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO casos VALUES
		('Radioterapia', 'Linfoma', 'En curso', 'dr.ruiz'),
		('Cirugía', 'Melanoma', 'Finalizado', 'dra.gomez')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := OpenSQLite(path, "casos", newTestDecoder(t))
	require.NoError(t, err)
	defer src.Close()

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "dr.ruiz", value(ds.Records()[0], domain.AttrClinicianID))
	assert.Equal(t, "dra.gomez", value(ds.Records()[1], domain.AttrClinicianID))
}

func TestOpenSQLite_Missing(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "none.db"), "cases", newTestDecoder(t))
	assert.Error(t, err)
}
