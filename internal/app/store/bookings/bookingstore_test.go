package bookingstore

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/reelfolio/internal/domain/models"
	"github.com/dalemusser/reelfolio/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newBooking(t *testing.T, name string) models.Booking {
	t.Helper()
	b, err := models.NewBooking(models.BookingFields{
		FullName:           name,
		Email:              "client@example.com",
		Phone:              "555-0100",
		EventType:          "wedding",
		EventDate:          "2026-06-01",
		EventLocation:      "Austin, TX",
		BudgetRange:        "$1000-$3000",
		ProjectDescription: "Full day coverage",
	}, time.Now())
	if err != nil {
		t.Fatalf("NewBooking() error = %v", err)
	}
	return b
}

func TestStore_Create_ForcesPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b := newBooking(t, "Grace Hopper")
	b.Status = models.BookingConfirmed

	created, err := store.Create(ctx, b)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Status != models.BookingPending {
		t.Errorf("Status = %v, want %v", created.Status, models.BookingPending)
	}

	got, err := store.GetByID(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != models.BookingPending {
		t.Errorf("stored Status = %v, want %v", got.Status, models.BookingPending)
	}
	if got.FullName != "Grace Hopper" {
		t.Errorf("FullName = %v, want %v", got.FullName, "Grace Hopper")
	}
}

func TestStore_List_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first := newBooking(t, "First")
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := newBooking(t, "Second")

	store.Create(ctx, first)
	store.Create(ctx, second)

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(list))
	}
	if list[0].FullName != "Second" {
		t.Errorf("List()[0] = %v, want Second", list[0].FullName)
	}
}

func TestStore_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, newBooking(t, "Client"))

	tests := []struct {
		name     string
		id       string
		status   string
		wantPrev string
		wantErr  error
	}{
		{"confirm", created.ID.Hex(), models.BookingConfirmed, models.BookingPending, nil},
		{"confirm again", created.ID.Hex(), models.BookingConfirmed, models.BookingConfirmed, nil},
		{"reject", created.ID.Hex(), models.BookingRejected, models.BookingConfirmed, nil},
		{"back to pending", created.ID.Hex(), models.BookingPending, models.BookingRejected, nil},
		{"invalid status", created.ID.Hex(), "cancelled", "", ErrInvalidStatus},
		{"unknown id", primitive.NewObjectID().Hex(), models.BookingConfirmed, "", ErrNotFound},
		{"malformed id", "xyz", models.BookingConfirmed, "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, prev, err := store.SetStatus(ctx, tt.id, tt.status)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SetStatus() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetStatus() error = %v", err)
			}
			if got.Status != tt.status {
				t.Errorf("Status = %v, want %v", got.Status, tt.status)
			}
			if prev != tt.wantPrev {
				t.Errorf("previous status = %v, want %v", prev, tt.wantPrev)
			}
			if got.UpdatedAt == nil {
				t.Error("UpdatedAt should be set")
			}
		})
	}

	stored, err := store.GetByID(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != models.BookingPending {
		t.Errorf("stored Status = %v, want %v", stored.Status, models.BookingPending)
	}
}

func TestStore_SetStatusConcurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, newBooking(t, "Client"))

	const callers = 8
	prevs := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, prev, err := store.SetStatus(ctx, created.ID.Hex(), models.BookingConfirmed)
			if err != nil {
				t.Errorf("SetStatus() error = %v", err)
				return
			}
			prevs <- prev
		}()
	}
	wg.Wait()
	close(prevs)

	fromPending := 0
	for p := range prevs {
		if p == models.BookingPending {
			fromPending++
		}
	}
	if fromPending != 1 {
		t.Errorf("%d callers saw the pending status, want exactly 1", fromPending)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, _ := store.Create(ctx, newBooking(t, "Client"))

	if _, err := store.Delete(ctx, created.ID.Hex()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Delete(ctx, created.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStore_CountByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Create(ctx, newBooking(t, "A"))
	store.Create(ctx, newBooking(t, "B"))
	store.SetStatus(ctx, a.ID.Hex(), models.BookingConfirmed)

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	want := map[string]int64{
		models.BookingPending:   1,
		models.BookingConfirmed: 1,
		models.BookingRejected:  0,
	}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("counts[%s] = %d, want %d", k, counts[k], v)
		}
	}
}
