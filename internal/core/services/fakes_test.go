package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"medtrack-api/internal/adapters/persistence/models"
	"medtrack-api/internal/adapters/persistence/repositories"
	"medtrack-api/internal/core/domain"

	"gorm.io/gorm"
)

// -- Fake Repositories --

var _ repositories.MedicationRepository = (*fakeMedRepo)(nil)

// fakeMedRepo keeps medications in a map. A single mutex stands in for row locks.
type fakeMedRepo struct {
	mu           sync.Mutex
	meds         map[uint]*models.Medication
	nextID       uint
	remindersOff map[uint]bool
	users        map[uint]*models.User
	calls        map[string]int
	nilLists     bool
	failWith     error
}

// interleavedMedRepo runs before once, ahead of the next UpdateLocked, the way a
// request that wins the row lock first would.
type interleavedMedRepo struct {
	*fakeMedRepo
	before func()
}

func (r *interleavedMedRepo) UpdateLocked(ctx context.Context, id, userID uint, mutate repositories.MedicationMutator) (*models.Medication, error) {
	if hook := r.before; hook != nil {
		r.before = nil
		hook()
	}
	return r.fakeMedRepo.UpdateLocked(ctx, id, userID, mutate)
}

func newFakeMedRepo() *fakeMedRepo {
	return &fakeMedRepo{
		meds:         make(map[uint]*models.Medication),
		remindersOff: make(map[uint]bool),
		users:        make(map[uint]*models.User),
		calls:        make(map[string]int),
	}
}

func (f *fakeMedRepo) enter(op string) error {
	f.mu.Lock()
	f.calls[op]++
	return f.failWith
}

func (f *fakeMedRepo) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeMedRepo) put(med models.Medication) *models.Medication {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	med.ID = f.nextID
	f.meds[med.ID] = &med
	return f.copyOf(&med)
}

func (f *fakeMedRepo) get(id uint) *models.Medication {
	f.mu.Lock()
	defer f.mu.Unlock()
	if med, ok := f.meds[id]; ok {
		return f.copyOf(med)
	}
	return nil
}

func (f *fakeMedRepo) copyOf(med *models.Medication) *models.Medication {
	c := *med
	if u, ok := f.users[med.UserID]; ok {
		c.User = u
	}
	return &c
}

func (f *fakeMedRepo) result(meds []*models.Medication) []*models.Medication {
	if f.nilLists || len(meds) == 0 {
		return nil
	}
	return meds
}

func (f *fakeMedRepo) filter(keep func(*models.Medication) bool) []*models.Medication {
	var out []*models.Medication
	for _, med := range f.meds {
		if keep(med) {
			out = append(out, f.copyOf(med))
		}
	}
	return f.result(out)
}

func sameOrAfterDay(t, day time.Time) bool {
	return !domain.StartOfDay(t).Before(domain.StartOfDay(day))
}

func sameOrBeforeDay(t, day time.Time) bool {
	return !domain.StartOfDay(t).After(domain.StartOfDay(day))
}

func (f *fakeMedRepo) Create(_ context.Context, med *models.Medication) error {
	if err := f.enter("Create"); err != nil {
		f.mu.Unlock()
		return err
	}
	defer f.mu.Unlock()
	f.nextID++
	med.ID = f.nextID
	stored := *med
	f.meds[med.ID] = &stored
	return nil
}

func (f *fakeMedRepo) FindByID(_ context.Context, userID, id uint) (*models.Medication, error) {
	if err := f.enter("FindByID"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	med, ok := f.meds[id]
	if !ok || med.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.copyOf(med), nil
}

func (f *fakeMedRepo) ListByUser(_ context.Context, userID uint) ([]*models.Medication, error) {
	if err := f.enter("ListByUser"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	return f.filter(func(m *models.Medication) bool { return m.UserID == userID }), nil
}

func (f *fakeMedRepo) ListByDateRange(_ context.Context, userID uint, start, end time.Time) ([]*models.Medication, error) {
	if err := f.enter("ListByDateRange"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	return f.filter(func(m *models.Medication) bool {
		return m.UserID == userID && sameOrAfterDay(m.ScheduledDate, start) && sameOrBeforeDay(m.ScheduledDate, end)
	}), nil
}

func (f *fakeMedRepo) SearchByName(_ context.Context, userID uint, fragment string) ([]*models.Medication, error) {
	if err := f.enter("SearchByName"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	needle := strings.ToLower(fragment)
	return f.filter(func(m *models.Medication) bool {
		return m.UserID == userID && strings.Contains(strings.ToLower(m.Name), needle)
	}), nil
}

func (f *fakeMedRepo) ListExpired(_ context.Context, userID uint, asOf time.Time) ([]*models.Medication, error) {
	if err := f.enter("ListExpired"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	return f.filter(func(m *models.Medication) bool {
		return m.UserID == userID && m.PrescriptionEndDate != nil && m.PrescriptionEndDate.Before(asOf)
	}), nil
}

func (f *fakeMedRepo) ListUpcomingReminders(_ context.Context, userID uint, from, to time.Time) ([]*models.Medication, error) {
	if err := f.enter("ListUpcomingReminders"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	if f.remindersOff[userID] {
		return f.result(nil), nil
	}
	return f.filter(func(m *models.Medication) bool {
		return m.UserID == userID && sameOrAfterDay(m.ScheduledDate, from) && sameOrBeforeDay(m.ScheduledDate, to)
	}), nil
}

func (f *fakeMedRepo) ListDueReminders(_ context.Context, from, to time.Time) ([]*models.Medication, error) {
	if err := f.enter("ListDueReminders"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	out := f.filter(func(m *models.Medication) bool {
		return !f.remindersOff[m.UserID] && !m.IsTaken &&
			sameOrAfterDay(m.ScheduledDate, from) && sameOrBeforeDay(m.ScheduledDate, to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMedRepo) UpdateLocked(_ context.Context, id, userID uint, mutate repositories.MedicationMutator) (*models.Medication, error) {
	if err := f.enter("UpdateLocked"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	defer f.mu.Unlock()
	med, ok := f.meds[id]
	if !ok || med.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	working := *med
	if err := mutate(&working); err != nil {
		return nil, err
	}
	working.ID, working.UserID = med.ID, med.UserID
	*med = working
	return f.copyOf(med), nil
}

func (f *fakeMedRepo) Delete(_ context.Context, id, userID uint) (bool, error) {
	if err := f.enter("Delete"); err != nil {
		f.mu.Unlock()
		return false, err
	}
	defer f.mu.Unlock()
	med, ok := f.meds[id]
	if !ok || med.UserID != userID {
		return false, nil
	}
	delete(f.meds, id)
	return true, nil
}

var _ repositories.AppointmentRepository = (*fakeApptRepo)(nil)

type fakeApptRepo struct {
	appts    map[uint]*models.Appointment
	nextID   uint
	calls    int
	failWith error
}

func newFakeApptRepo() *fakeApptRepo {
	return &fakeApptRepo{appts: make(map[uint]*models.Appointment)}
}

func (f *fakeApptRepo) dateTaken(date time.Time, except uint) bool {
	for id, a := range f.appts {
		if id != except && a.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (f *fakeApptRepo) Create(_ context.Context, appt *models.Appointment) error {
	f.calls++
	if f.failWith != nil {
		return f.failWith
	}
	if f.dateTaken(appt.Date, 0) {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	appt.ID = f.nextID
	stored := *appt
	f.appts[appt.ID] = &stored
	return nil
}

func (f *fakeApptRepo) FindByID(_ context.Context, id uint) (*models.Appointment, error) {
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	a, ok := f.appts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *a
	return &c, nil
}

func (f *fakeApptRepo) FindByDate(_ context.Context, date time.Time) (*models.Appointment, error) {
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, a := range f.appts {
		if a.Date.Equal(date) {
			c := *a
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeApptRepo) List(_ context.Context) ([]*models.Appointment, error) {
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []*models.Appointment
	for _, a := range f.appts {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeApptRepo) Update(_ context.Context, id uint, fields map[string]interface{}) error {
	f.calls++
	if f.failWith != nil {
		return f.failWith
	}
	a, ok := f.appts[id]
	if !ok {
		return nil
	}
	if d, ok := fields["date"].(time.Time); ok {
		if f.dateTaken(d, id) {
			return gorm.ErrDuplicatedKey
		}
		a.Date = d
	}
	if v, ok := fields["patient_reference"].(string); ok {
		a.PatientReference = v
	}
	if v, ok := fields["details"].(string); ok {
		a.Details = v
	}
	return nil
}

func (f *fakeApptRepo) Delete(_ context.Context, id uint) (bool, error) {
	f.calls++
	if f.failWith != nil {
		return false, f.failWith
	}
	if _, ok := f.appts[id]; !ok {
		return false, nil
	}
	delete(f.appts, id)
	return true, nil
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	var all []*models.User
	for _, u := range f.users {
		c := *u
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, err := f.GetByUsername(context.Background(), username)
	return err == nil, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range f.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

var _ repositories.RefreshTokenRepository = (*fakeTokenRepo)(nil)

type fakeTokenRepo struct {
	tokens map[uint]*models.RefreshToken
	nextID uint
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uint]*models.RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	f.nextID++
	token.ID = f.nextID
	stored := *token
	f.tokens[token.ID] = &stored
	return nil
}

func (f *fakeTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	for _, t := range f.tokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil {
			c := *t
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTokenRepo) Revoke(_ context.Context, id uint) error {
	if t, ok := f.tokens[id]; ok {
		now := time.Now()
		t.RevokedAt = &now
	}
	return nil
}

func (f *fakeTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	now := time.Now()
	for _, t := range f.tokens {
		if t.TokenHash == tokenHash {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	now := time.Now()
	for _, t := range f.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for id, t := range f.tokens {
		if t.IsExpired() {
			delete(f.tokens, id)
			n++
		}
	}
	return n, nil
}

var _ repositories.FeedbackRepository = (*fakeFeedbackRepo)(nil)

type fakeFeedbackRepo struct {
	items []*models.Feedback
}

func (f *fakeFeedbackRepo) Create(_ context.Context, fb *models.Feedback) error {
	fb.ID = uint(len(f.items) + 1)
	f.items = append(f.items, fb)
	return nil
}

func (f *fakeFeedbackRepo) List(_ context.Context) ([]*models.Feedback, error) {
	return f.items, nil
}

// -- Fake Notifier --

type fakeNotifier struct {
	mu       sync.Mutex
	disabled bool
	failNext int
	sent     []*Reminder
}

func (n *fakeNotifier) IsEnabled() bool { return !n.disabled }

func (n *fakeNotifier) SendReminder(_ context.Context, r *Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext > 0 {
		n.failNext--
		return errNotifierDown
	}
	n.sent = append(n.sent, r)
	return nil
}
