package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"testing"
	"time"

	"medtrack-api/internal/adapters/persistence/models"
	"medtrack-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	errNotifierDown = errors.New("notifier down")
	errConnReset    = errors.New("connection reset by peer")
)

// fixedNow is 2024-03-05 08:00 UTC
var fixedNow = time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrStr(s string) *string        { return &s }
func ptrInt(i int) *int              { return &i }

func newTestMedicationService() (*MedicationService, *fakeMedRepo) {
	repo := newFakeMedRepo()
	store := NewMedicationStore(repo, time.UTC)
	store.now = func() time.Time { return fixedNow }
	return NewMedicationService(store, repo), repo
}

func TestMedicationService_Create(t *testing.T) {
	svc, repo := newTestMedicationService()

	med, err := svc.Create(context.Background(), "5", &CreateMedicationInput{
		Name:                  " Aspirin ",
		Dosage:                "100mg",
		Quantity:              10,
		ScheduledDate:         "2024-03-05",
		ScheduledTime:         "9:30",
		PrescriptionStartDate: "2024-03-01",
		PrescriptionEndDate:   "2024-03-31",
	})
	require.NoError(t, err)

	assert.NotZero(t, med.ID)
	assert.Equal(t, uint(5), med.UserID)
	assert.Equal(t, "Aspirin", med.Name)
	assert.Equal(t, 10, med.Quantity)
	assert.False(t, med.IsTaken)
	assert.Equal(t, "09:30", med.ScheduledTime)
	assert.Equal(t, day(5), med.ScheduledDate)
	assert.Equal(t, fixedNow, med.CreatedAt)
	assert.Equal(t, fixedNow, med.UpdatedAt)
	assert.Equal(t, 1, repo.calls["Create"])
}

func TestMedicationService_CreateValidation(t *testing.T) {
	valid := func() *CreateMedicationInput {
		return &CreateMedicationInput{
			Name:          "Aspirin",
			Dosage:        "100mg",
			Quantity:      1,
			ScheduledDate: "2024-03-05",
			ScheduledTime: "08:00",
		}
	}

	tests := []struct {
		name   string
		userID string
		mutate func(*CreateMedicationInput)
	}{
		{"non-integer user id", "abc", func(*CreateMedicationInput) {}},
		{"zero user id", "0", func(*CreateMedicationInput) {}},
		{"missing name", "5", func(in *CreateMedicationInput) { in.Name = "" }},
		{"blank name", "5", func(in *CreateMedicationInput) { in.Name = "   " }},
		{"missing dosage", "5", func(in *CreateMedicationInput) { in.Dosage = "" }},
		{"negative quantity", "5", func(in *CreateMedicationInput) { in.Quantity = -1 }},
		{"bad scheduled date", "5", func(in *CreateMedicationInput) { in.ScheduledDate = "05/03/2024" }},
		{"bad scheduled time", "5", func(in *CreateMedicationInput) { in.ScheduledTime = "25:61" }},
		{"bad prescription date", "5", func(in *CreateMedicationInput) { in.PrescriptionEndDate = "soon" }},
		{"end before start", "5", func(in *CreateMedicationInput) {
			in.PrescriptionStartDate = "2024-03-10"
			in.PrescriptionEndDate = "2024-03-09"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestMedicationService()
			in := valid()
			tt.mutate(in)

			_, err := svc.Create(context.Background(), tt.userID, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Zero(t, repo.totalCalls())
		})
	}
}

func TestMedicationService_MalformedIDsNeverReachStore(t *testing.T) {
	svc, repo := newTestMedicationService()
	ctx := context.Background()

	_, err := svc.Update(ctx, "abc", "5", &UpdateMedicationInput{Name: ptrStr("x")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.Delete(ctx, "abc", "5")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.GetByID(ctx, "1", "abc")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.TickOff(ctx, "1.5", "5")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Refill(ctx, "abc", "5", &RefillInput{RefillQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.GetAllForUser(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Zero(t, repo.totalCalls())
}

func TestMedicationService_Update(t *testing.T) {
	svc, repo := newTestMedicationService()
	stored := repo.put(models.Medication{
		UserID:                5,
		Name:                  "Aspirin",
		Dosage:                "100mg",
		Quantity:              4,
		ScheduledDate:         day(5),
		ScheduledTime:         "08:00",
		PrescriptionStartDate: ptrTime(day(1)),
		UpdatedAt:             day(1),
	})

	med, err := svc.Update(context.Background(), "1", "5", &UpdateMedicationInput{
		Dosage: ptrStr("200mg"),
		Notes:  ptrStr("with food"),
	})
	require.NoError(t, err)

	assert.Equal(t, "200mg", med.Dosage)
	assert.Equal(t, "with food", med.Notes)
	assert.Equal(t, "Aspirin", med.Name)
	assert.Equal(t, 4, med.Quantity)
	assert.Equal(t, fixedNow, med.UpdatedAt)

	persisted := repo.get(stored.ID)
	assert.Equal(t, "200mg", persisted.Dosage)
	assert.Equal(t, fixedNow, persisted.UpdatedAt)
}

func TestMedicationService_UpdateRejectsRangeAgainstStoredStart(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{
		UserID:                5,
		Name:                  "Aspirin",
		Dosage:                "100mg",
		ScheduledDate:         day(5),
		ScheduledTime:         "08:00",
		PrescriptionStartDate: ptrTime(day(10)),
	})

	_, err := svc.Update(context.Background(), "1", "5", &UpdateMedicationInput{
		PrescriptionEndDate: ptrStr("2024-03-09"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, repo.get(1).PrescriptionEndDate)
}

func TestMedicationService_UpdateNotFound(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", ScheduledDate: day(5), ScheduledTime: "08:00"})

	_, err := svc.Update(context.Background(), "99", "5", &UpdateMedicationInput{Name: ptrStr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// another user's medication is invisible
	_, err = svc.Update(context.Background(), "1", "7", &UpdateMedicationInput{Name: ptrStr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMedicationService_UpdateSeesConcurrentWrites(t *testing.T) {
	t.Run("tick-off commits first", func(t *testing.T) {
		svc, inner := newTestMedicationService()
		inner.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", Quantity: 10, ScheduledDate: day(5), ScheduledTime: "08:00"})
		repo := &interleavedMedRepo{fakeMedRepo: inner}
		svc.repo = repo
		repo.before = func() {
			_, err := svc.TickOff(context.Background(), "1", "5")
			require.NoError(t, err)
		}

		med, err := svc.Update(context.Background(), "1", "5", &UpdateMedicationInput{Notes: ptrStr("with food")})
		require.NoError(t, err)

		assert.Equal(t, 9, med.Quantity)
		assert.True(t, med.IsTaken)
		assert.Equal(t, "with food", med.Notes)

		stored := inner.get(1)
		assert.Equal(t, 9, stored.Quantity)
		assert.True(t, stored.IsTaken)
		assert.Equal(t, "with food", stored.Notes)
	})

	t.Run("delete commits first", func(t *testing.T) {
		svc, inner := newTestMedicationService()
		inner.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", Quantity: 10, ScheduledDate: day(5), ScheduledTime: "08:00"})
		repo := &interleavedMedRepo{fakeMedRepo: inner}
		svc.repo = repo
		repo.before = func() {
			require.NoError(t, svc.Delete(context.Background(), "1", "5"))
		}

		med, err := svc.Update(context.Background(), "1", "5", &UpdateMedicationInput{Notes: ptrStr("with food")})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, med)
		assert.Nil(t, inner.get(1))
	})

	t.Run("range checked against locked row", func(t *testing.T) {
		svc, inner := newTestMedicationService()
		inner.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", ScheduledDate: day(5), ScheduledTime: "08:00"})
		repo := &interleavedMedRepo{fakeMedRepo: inner}
		svc.repo = repo
		repo.before = func() {
			_, err := svc.Update(context.Background(), "1", "5", &UpdateMedicationInput{PrescriptionStartDate: ptrStr("2024-03-20")})
			require.NoError(t, err)
		}

		_, err := svc.Update(context.Background(), "1", "5", &UpdateMedicationInput{PrescriptionEndDate: ptrStr("2024-03-10")})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Nil(t, inner.get(1).PrescriptionEndDate)
	})
}

func TestMedicationService_UpdateRejectsNegativeQuantity(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", Quantity: 3, ScheduledDate: day(5), ScheduledTime: "08:00"})

	_, err := svc.Update(context.Background(), "1", "5", &UpdateMedicationInput{Quantity: ptrInt(-2)})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 3, repo.get(1).Quantity)
}

func TestMedicationService_Delete(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", ScheduledDate: day(5), ScheduledTime: "08:00"})

	assert.ErrorIs(t, svc.Delete(context.Background(), "1", "7"), domain.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), "1", "5"))
	assert.Nil(t, repo.get(1))
	assert.ErrorIs(t, svc.Delete(context.Background(), "1", "5"), domain.ErrNotFound)
}

func TestMedicationService_TickOffNeverGoesNegative(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", Quantity: 2, ScheduledDate: day(5), ScheduledTime: "08:00"})

	want := []int{1, 0, 0, 0}
	for i, q := range want {
		res, err := svc.TickOff(context.Background(), "1", "5")
		require.NoError(t, err, "tick %d", i)
		assert.Equal(t, q, res.NewQuantity, "tick %d", i)
		assert.True(t, res.IsTaken, "tick %d", i)
		assert.Equal(t, uint(1), res.MedicationID)
		assert.Equal(t, uint(5), res.UserID)
	}

	stored := repo.get(1)
	assert.Equal(t, 0, stored.Quantity)
	assert.True(t, stored.IsTaken)
	assert.Equal(t, fixedNow, stored.UpdatedAt)
}

func TestMedicationService_TickOffNotFound(t *testing.T) {
	svc, _ := newTestMedicationService()

	_, err := svc.TickOff(context.Background(), "1", "5")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMedicationService_ConcurrentTickOffs(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", Quantity: 20, ScheduledDate: day(5), ScheduledTime: "08:00"})

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.TickOff(context.Background(), "1", "5")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, repo.get(1).Quantity)
}

func TestMedicationService_Refill(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", Quantity: 5, ScheduledDate: day(5), ScheduledTime: "08:00", UpdatedAt: day(1)})

	for _, qty := range []int{1, 10, 250} {
		before := repo.get(1).Quantity
		res, err := svc.Refill(context.Background(), "1", "5", &RefillInput{RefillQuantity: qty, RefillDate: "2024-02-01"})
		require.NoError(t, err)

		assert.Equal(t, before, res.PreviousQuantity)
		assert.Equal(t, qty, res.RefillQuantity)
		assert.Equal(t, before+qty, res.NewQuantity)
		assert.Equal(t, "Medication refilled successfully", res.Message)
		assert.Equal(t, "Aspirin", res.MedicationName)
		assert.Equal(t, "2024-02-01", res.RefillDate)
		// stamped with the call time, not the refill date
		assert.Equal(t, fixedNow, res.UpdatedAt)
	}
	assert.Equal(t, 5+1+10+250, repo.get(1).Quantity)
}

func TestMedicationService_RefillDefaultsDateToToday(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", ScheduledDate: day(5), ScheduledTime: "08:00"})

	res, err := svc.Refill(context.Background(), "1", "5", &RefillInput{RefillQuantity: 3})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", res.RefillDate)
}

func TestMedicationService_RefillRejectsNonPositive(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", Quantity: 5, ScheduledDate: day(5), ScheduledTime: "08:00"})
	before := repo.totalCalls()

	for _, qty := range []int{0, -1, -100} {
		_, err := svc.Refill(context.Background(), "1", "5", &RefillInput{RefillQuantity: qty})
		assert.ErrorIs(t, err, domain.ErrValidation, "qty %d", qty)
	}
	_, err := svc.Refill(context.Background(), "1", "5", &RefillInput{RefillQuantity: 2, RefillDate: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, before, repo.totalCalls())
	assert.Equal(t, 5, repo.get(1).Quantity)
}

func TestMedicationService_RefillRejectsOverflow(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", Quantity: 10, ScheduledDate: day(5), ScheduledTime: "08:00"})

	_, err := svc.Refill(context.Background(), "1", "5", &RefillInput{RefillQuantity: math.MaxInt})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 10, repo.get(1).Quantity)

	res, err := svc.Refill(context.Background(), "1", "5", &RefillInput{RefillQuantity: math.MaxInt - 10})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, res.NewQuantity)
}

func TestMedicationService_CreateForMissingUser(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.failWith = gorm.ErrForeignKeyViolated

	_, err := svc.Create(context.Background(), "404", &CreateMedicationInput{
		Name:          "Aspirin",
		Dosage:        "100mg",
		ScheduledDate: "2024-03-05",
		ScheduledTime: "08:00",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrStoreFailure)
}

func TestMedicationService_RefillNotFound(t *testing.T) {
	svc, _ := newTestMedicationService()

	_, err := svc.Refill(context.Background(), "1", "5", &RefillInput{RefillQuantity: 2})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMedicationService_CreateTickOffRefillScenario(t *testing.T) {
	svc, _ := newTestMedicationService()
	ctx := context.Background()

	med, err := svc.Create(ctx, "5", &CreateMedicationInput{
		Name:          "Aspirin",
		Dosage:        "100mg",
		Quantity:      10,
		ScheduledDate: "2024-03-05",
		ScheduledTime: "08:00",
	})
	require.NoError(t, err)
	id := strconv.FormatUint(uint64(med.ID), 10)

	tick, err := svc.TickOff(ctx, id, "5")
	require.NoError(t, err)
	assert.Equal(t, 9, tick.NewQuantity)
	assert.True(t, tick.IsTaken)

	refill, err := svc.Refill(ctx, id, "5", &RefillInput{RefillQuantity: 10})
	require.NoError(t, err)
	assert.Equal(t, 9, refill.PreviousQuantity)
	assert.Equal(t, 19, refill.NewQuantity)

	got, err := svc.GetByID(ctx, id, "5")
	require.NoError(t, err)
	assert.Equal(t, 19, got.Quantity)
	assert.True(t, got.IsTaken)
}

func TestMedicationService_Search(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.put(models.Medication{UserID: 5, Name: "Aspirin", Dosage: "1", ScheduledDate: day(5), ScheduledTime: "08:00"})
	repo.put(models.Medication{UserID: 5, Name: "Tylenol", Dosage: "1", ScheduledDate: day(5), ScheduledTime: "09:00"})
	repo.put(models.Medication{UserID: 7, Name: "Aspirin", Dosage: "1", ScheduledDate: day(5), ScheduledTime: "08:00"})

	got, err := svc.Search(context.Background(), "5", "Asp")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Aspirin", got[0].Name)
	assert.Equal(t, uint(5), got[0].UserID)

	got, err = svc.Search(context.Background(), "5", "asp")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.Search(context.Background(), "5", "ibuprofen")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMedicationService_SearchRequiresName(t *testing.T) {
	svc, repo := newTestMedicationService()

	for _, fragment := range []string{"", "   "} {
		_, err := svc.Search(context.Background(), "5", fragment)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Zero(t, repo.calls["SearchByName"])
}

func TestMedicationService_ListsNeverNil(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.nilLists = true
	ctx := context.Background()

	lists := map[string]func() ([]*models.Medication, error){
		"all":       func() ([]*models.Medication, error) { return svc.GetAllForUser(ctx, "5") },
		"daily":     func() ([]*models.Medication, error) { return svc.GetDaily(ctx, "5", "") },
		"weekly":    func() ([]*models.Medication, error) { return svc.GetWeekly(ctx, "5", "") },
		"expired":   func() ([]*models.Medication, error) { return svc.GetExpired(ctx, "5", "") },
		"search":    func() ([]*models.Medication, error) { return svc.Search(ctx, "5", "x") },
		"reminders": func() ([]*models.Medication, error) { return svc.GetUpcomingReminders(ctx, "5", time.Hour) },
	}

	for name, list := range lists {
		got, err := list()
		require.NoError(t, err, name)
		assert.NotNil(t, got, name)
		assert.Empty(t, got, name)
	}
}

func TestMedicationService_StoreFailureIsOpaque(t *testing.T) {
	svc, repo := newTestMedicationService()
	repo.failWith = errConnReset

	_, err := svc.GetAllForUser(context.Background(), "5")
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.NotContains(t, err.Error(), "connection reset")

	_, err = svc.TickOff(context.Background(), "1", "5")
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestMedicationService_BadReferenceDate(t *testing.T) {
	svc, repo := newTestMedicationService()

	_, err := svc.GetDaily(context.Background(), "5", "March 5th")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.GetExpired(context.Background(), "5", "2024-13-01")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, repo.totalCalls())
}
