package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/hairloft/salon-platform/internal/schedule"
)

func testAppointment() *Appointment {
	return &Appointment{
		ID:                   uuid.New(),
		OrgID:                "org-1",
		BranchID:             uuid.New(),
		StaffID:              uuid.New(),
		ServiceID:            uuid.New(),
		OwnerID:              uuid.New(),
		Date:                 "2024-06-10",
		BookedTime:           schedule.TimeRange{From: "14:00", To: "14:30"},
		BookedTimeWithBuffer: schedule.TimeRange{From: "14:00", To: "14:45"},
		Price:                Price{ServiceFeeCents: 4500, TaxCents: 383, TaxRate: 8.51, TotalCents: 4883},
		Policy:               PolicySnapshot{CancelFee: FeeSnapshot{Collect: true, FeeCents: 2250, NoticeHours: 24}},
		Status:               StatusPending,
		CreatedAt:            time.Now().UTC(),
	}
}

// insertAnyArgs matches the 15 insert arguments without pinning values;
// pgxmock v4 requires the argument count to match even without WithArgs.
func insertAnyArgs() []any {
	args := make([]any, 15)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestInsertUniqueViolationIsSlotConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(insertAnyArgs()...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "appointments_pending_slot_key"})

	repo := NewRepository(mock)
	err = repo.Insert(context.Background(), testAppointment())
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("unique violation must surface as ErrSlotConflict, got %v", err)
	}
}

func TestInsertOtherErrorsPropagate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(insertAnyArgs()...).
		WillReturnError(errors.New("connection reset"))

	repo := NewRepository(mock)
	err = repo.Insert(context.Background(), testAppointment())
	if err == nil || errors.Is(err, ErrSlotConflict) {
		t.Fatalf("non-unique-violation error must not be a slot conflict, got %v", err)
	}
}

func TestUpdateStatusRequiresPendingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs("org-1", id, StatusCancelled, StatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewRepository(mock)
	err = repo.UpdateStatus(context.Background(), "org-1", id, StatusCancelled)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("updating a non-pending appointment must be ErrNotFound, got %v", err)
	}
}

func TestUpdateStatusRejectsNonTerminal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	repo := NewRepository(mock)
	err = repo.UpdateStatus(context.Background(), "org-1", uuid.New(), StatusPending)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("pending is not a terminal transition, got %v", err)
	}
}

func TestGetMissingIsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE org_id").
		WithArgs("org-1", id).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	repo := NewRepository(mock)
	appt, err := repo.Get(context.Background(), "org-1", id)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if appt != nil {
		t.Fatalf("expected nil for missing appointment")
	}
}
