package notify

import (
	"campusgate/src/directory"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormRecorder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "notifications"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec := NewGormRecorder(gdb)
	rec.Record(context.Background(), &Message{
		ID:        uuid.New(),
		Kind:      KindOutcome,
		GatePass:  *testPass(),
		Recipient: directory.Person{ID: 7, Email: "asha@college.edu"},
	}, "email", 2, errors.New("timeout"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
