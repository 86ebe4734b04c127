package postgres

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisdesk/booking-api/internal/repository"
)

var patientColumns = []string{"id", "first_name", "last_name", "phone_number", "created_at", "updated_at"}

func TestFindOrCreateExistingPatient(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	now := time.Now()
	existing := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM patients").
		WithArgs("+15550100").
		WillReturnRows(sqlmock.NewRows(patientColumns).
			AddRow(existing, "Jane", "Doe", "+15550100", now, now))

	patient, err := repo.FindOrCreate(context.Background(), "+15550100", "Jane", "Doe")
	require.NoError(t, err)
	assert.Equal(t, existing, patient.ID)
	assert.Equal(t, "Jane", patient.FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrCreateNewPatient(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	now := time.Now()
	created := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM patients").
		WithArgs("+15550100").
		WillReturnRows(sqlmock.NewRows(patientColumns))
	mock.ExpectQuery("INSERT INTO patients").
		WillReturnRows(sqlmock.NewRows(patientColumns).
			AddRow(created, "Jane", "Doe", "+15550100", now, now))

	patient, err := repo.FindOrCreate(context.Background(), "+15550100", "Jane", "Doe")
	require.NoError(t, err)
	assert.Equal(t, created, patient.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPatientNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPatientRepository(db)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM patients").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(patientColumns))

	_, err := repo.Get(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
