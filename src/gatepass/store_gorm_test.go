package gatepass

import (
	"campusgate/src/models"
	"campusgate/src/types"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

var gatePassColumns = []string{"id", "requester_id", "requester_type", "department_id", "status", "reason", "start_date", "end_date"}

func TestGormStoreCreate(t *testing.T) {
	gdb, mock := newMockDB(t)
	store := NewGormStore(gdb)
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "gate_passes" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec(`INSERT INTO "gate_pass_trails"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gp := &models.GatePass{
		RequesterID:   2,
		RequesterType: types.REQUESTER_STUDENT,
		Reason:        "Medical",
		StartDate:     start,
		EndDate:       start.Add(time.Hour),
		Status:        types.GATEPASS_PENDING_STAFF,
	}
	trail := &models.GatePassTrail{ToStatus: types.GATEPASS_PENDING_STAFF, ActorID: 2, ActorRole: types.ROLE_STUDENT}
	require.NoError(t, store.Create(context.Background(), gp, trail))
	assert.Equal(t, uint(42), gp.ID)
	assert.Equal(t, uint(42), trail.GatePassID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreTransition(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("locks, updates and writes the trail", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		store := NewGormStore(gdb)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "gate_passes" WHERE "gate_passes"."id" = \$1 .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(gatePassColumns).
				AddRow(7, 2, "student", 1, "pending_staff", "Medical", start, start.Add(time.Hour)))
		mock.ExpectExec(`UPDATE "gate_passes" SET .*"status"=`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "gate_pass_trails"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		gp, err := store.Transition(context.Background(), 7, func(gp *models.GatePass) (*models.GatePassTrail, error) {
			gp.Status = types.GATEPASS_PENDING_HOD
			return &models.GatePassTrail{FromStatus: types.GATEPASS_PENDING_STAFF, ToStatus: gp.Status, ActorID: 3}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, types.GATEPASS_PENDING_HOD, gp.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the mutation refuses", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		store := NewGormStore(gdb)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "gate_passes" .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(gatePassColumns).
				AddRow(7, 2, "student", 1, "approved", "Medical", start, start.Add(time.Hour)))
		mock.ExpectRollback()

		_, err := store.Transition(context.Background(), 7, func(gp *models.GatePass) (*models.GatePassTrail, error) {
			return nil, invalidState(gp.ID, gp.Status, ExpectedStatuses(StageStaff))
		})
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing record", func(t *testing.T) {
		gdb, mock := newMockDB(t)
		store := NewGormStore(gdb)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "gate_passes" .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(gatePassColumns))
		mock.ExpectRollback()

		_, err := store.Transition(context.Background(), 7, func(*models.GatePass) (*models.GatePassTrail, error) {
			t.Fatal("mutation must not run")
			return nil, nil
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStoreList(t *testing.T) {
	gdb, mock := newMockDB(t)
	store := NewGormStore(gdb)
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "gate_passes" WHERE status IN \(\$1,\$2,\$3\) ORDER BY department_id asc,updated_at asc`).
		WillReturnRows(sqlmock.NewRows(gatePassColumns).
			AddRow(1, 5, "hod", 1, "pending_academic_director_from_hod", "Conference", start, start.Add(time.Hour)))

	passes, err := store.List(context.Background(), Query{Statuses: types.AcademicDirectorPending, Order: OrderDepartmentThenOldest})
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, types.REQUESTER_HOD, passes[0].RequesterType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreListEmpty(t *testing.T) {
	gdb, mock := newMockDB(t)
	store := NewGormStore(gdb)
	dept := uint(3)

	mock.ExpectQuery(`SELECT \* FROM "gate_passes" WHERE status = \$1 AND department_id = \$2 ORDER BY updated_at desc`).
		WillReturnRows(sqlmock.NewRows(gatePassColumns))

	passes, err := store.List(context.Background(), Query{
		Statuses:     []types.GatePassStatus{types.GATEPASS_PENDING_STAFF},
		DepartmentID: &dept,
	})
	require.NoError(t, err)
	assert.NotNil(t, passes)
	assert.Empty(t, passes)
}
