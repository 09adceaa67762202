package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// memStore is an in-memory Store with copy-on-write transactions so
// a failed operation leaves no partial writes behind, mirroring the
// rollback behavior of the MySQL store.
type memStore struct {
	rooms        map[uint64]*model.MeetingRoom
	reservations map[uint64]*model.Reservation
	stats        map[uint64]*model.RoomUsageStats
	nextID       uint64
}

func newMemStore() *memStore {
	return &memStore{
		rooms:        map[uint64]*model.MeetingRoom{},
		reservations: map[uint64]*model.Reservation{},
		stats:        map[uint64]*model.RoomUsageStats{},
	}
}

func (m *memStore) addRoom(id uint64) {
	m.rooms[id] = &model.MeetingRoom{ID: id, Name: "room", Capacity: 8, Availability: model.RoomAvailable}
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	c.nextID = m.nextID
	for k, v := range m.rooms {
		cp := *v
		c.rooms[k] = &cp
	}
	for k, v := range m.reservations {
		cp := *v
		c.reservations[k] = &cp
	}
	for k, v := range m.stats {
		cp := *v
		c.stats[k] = &cp
	}
	return c
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	work := m.clone()
	if err := fn(&memTx{s: work}); err != nil {
		return err
	}
	*m = *work
	return nil
}

type memTx struct{ s *memStore }

func (t *memTx) RoomForUpdate(ctx context.Context, roomID uint64) (*model.MeetingRoom, error) {
	r, ok := t.s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func (t *memTx) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, ok := t.s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) OverlapExists(ctx context.Context, roomID uint64, start, end time.Time) (bool, error) {
	return t.overlap(0, roomID, start, end), nil
}

func (t *memTx) OverlapExistsExcluding(ctx context.Context, reservationID, roomID uint64, start, end time.Time) (bool, error) {
	return t.overlap(reservationID, roomID, start, end), nil
}

func (t *memTx) overlap(excludeID, roomID uint64, start, end time.Time) bool {
	for _, r := range t.s.reservations {
		if r.ID == excludeID || r.RoomID != roomID || r.Status != model.StatusConfirmed {
			continue
		}
		if Overlaps(r.StartTime, r.EndTime, start, end) {
			return true
		}
	}
	return false
}

func (t *memTx) CreateReservation(ctx context.Context, r *model.Reservation) error {
	t.s.nextID++
	r.ID = t.s.nextID
	cp := *r
	t.s.reservations[r.ID] = &cp
	return nil
}

func (t *memTx) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	if _, ok := t.s.reservations[r.ID]; !ok {
		return ErrReservationNotFound
	}
	cp := *r
	t.s.reservations[r.ID] = &cp
	return nil
}

func (t *memTx) StatsByRoom(ctx context.Context, roomID uint64) (*model.RoomUsageStats, error) {
	s, ok := t.s.stats[roomID]
	if !ok {
		return nil, ErrStatsNotFound
	}
	cp := *s
	return &cp, nil
}

func (t *memTx) UpsertStats(ctx context.Context, s *model.RoomUsageStats) error {
	cp := *s
	t.s.stats[s.RoomID] = &cp
	return nil
}

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// at builds a timestamp on the test day, after testNow.
func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func newTestEngine(roomIDs ...uint64) (*Engine, *memStore) {
	st := newMemStore()
	for _, id := range roomIDs {
		st.addRoom(id)
	}
	e := NewEngine(st)
	e.now = func() time.Time { return testNow }
	return e, st
}

var (
	owner = Actor{UserID: 7, Email: "owner@example.com"}
	other = Actor{UserID: 8, Email: "other@example.com"}
	admin = Actor{UserID: 1, Email: "admin@example.com", Admin: true}
)

func mustCreate(t *testing.T, e *Engine, actor Actor, roomID uint64, start, end time.Time) *model.Reservation {
	t.Helper()
	res, err := e.Create(context.Background(), actor, CreateInput{RoomID: roomID, Title: "standup", StartTime: start, EndTime: end})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return res
}

func TestOverlapsInclusiveBoundaries(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"partial overlap", at(10, 0), at(11, 0), at(10, 30), at(11, 30), true},
		{"contained", at(10, 0), at(12, 0), at(10, 30), at(11, 0), true},
		{"identical", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"touching end-to-start", at(10, 0), at(11, 0), at(11, 0), at(12, 0), true},
		{"touching start-to-end", at(11, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"disjoint after", at(10, 0), at(11, 0), at(11, 1), at(12, 0), false},
		{"disjoint before", at(11, 1), at(12, 0), at(10, 0), at(11, 0), false},
	}
	for _, c := range cases {
		if got := Overlaps(c.s1, c.e1, c.s2, c.e2); got != c.want {
			t.Errorf("%s: Overlaps = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCreateConfirmsAndAccruesLedger(t *testing.T) {
	e, st := newTestEngine(1)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(11, 30))

	if res.ID == 0 || res.Status != model.StatusConfirmed || res.UserID != owner.UserID {
		t.Fatalf("unexpected reservation: %+v", res)
	}
	s := st.stats[1]
	if s == nil {
		t.Fatal("ledger row was not created")
	}
	if s.TotalBookings != 1 || s.HoursBooked != 1.5 {
		t.Fatalf("ledger = %d bookings / %v hours, want 1 / 1.5", s.TotalBookings, s.HoursBooked)
	}
	if !s.LastUpdated.Equal(testNow) {
		t.Fatalf("LastUpdated = %v, want %v", s.LastUpdated, testNow)
	}
}

func TestCreateRejectsStartNotBeforeEnd(t *testing.T) {
	e, st := newTestEngine(1)
	for _, end := range []time.Time{at(9, 30), at(10, 0)} { // reversed and empty windows
		_, err := e.Create(context.Background(), owner, CreateInput{RoomID: 1, StartTime: at(10, 0), EndTime: end})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("err = %v, want ErrInvalidInput", err)
		}
	}
	if len(st.reservations) != 0 || len(st.stats) != 0 {
		t.Fatal("failed create must persist nothing")
	}
}

func TestCreateRejectsStartInPast(t *testing.T) {
	e, st := newTestEngine(1)
	_, err := e.Create(context.Background(), owner, CreateInput{RoomID: 1, StartTime: at(8, 0), EndTime: at(10, 0)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if len(st.reservations) != 0 {
		t.Fatal("failed create must persist nothing")
	}
}

func TestCreateUnknownRoom(t *testing.T) {
	e, _ := newTestEngine(1)
	_, err := e.Create(context.Background(), owner, CreateInput{RoomID: 99, StartTime: at(10, 0), EndTime: at(11, 0)})
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestCreateConflictLeavesStateUntouched(t *testing.T) {
	e, st := newTestEngine(1)
	mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	_, err := e.Create(context.Background(), other, CreateInput{RoomID: 1, StartTime: at(10, 30), EndTime: at(11, 30)})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(st.reservations) != 1 {
		t.Fatalf("reservations = %d, want 1", len(st.reservations))
	}
	if s := st.stats[1]; s.TotalBookings != 1 || s.HoursBooked != 1 {
		t.Fatalf("ledger changed on failed create: %+v", s)
	}
}

// Back-to-back bookings share the boundary instant and therefore
// conflict; the next free slot starts one minute later.
func TestCreateTouchingBoundaryConflicts(t *testing.T) {
	e, _ := newTestEngine(1)
	mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	_, err := e.Create(context.Background(), other, CreateInput{RoomID: 1, StartTime: at(11, 0), EndTime: at(12, 0)})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("touching boundary: err = %v, want ErrConflict", err)
	}
	if _, err := e.Create(context.Background(), other, CreateInput{RoomID: 1, StartTime: at(11, 1), EndTime: at(12, 0)}); err != nil {
		t.Fatalf("disjoint window rejected: %v", err)
	}
}

func TestCreateIdenticalWindowsOnDifferentRooms(t *testing.T) {
	e, _ := newTestEngine(1, 2)
	mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))
	mustCreate(t, e, other, 2, at(10, 0), at(11, 0))
}

func TestCancelReleasesLedger(t *testing.T) {
	e, st := newTestEngine(1)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(12, 0))

	if err := e.Cancel(context.Background(), owner, res.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := st.reservations[res.ID].Status; got != model.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", got)
	}
	if s := st.stats[1]; s.TotalBookings != 0 || s.HoursBooked != 0 {
		t.Fatalf("ledger = %+v, want zeroed", s)
	}
}

func TestCancelAlreadyCancelledIsNoOp(t *testing.T) {
	e, st := newTestEngine(1)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(12, 0))

	if err := e.Cancel(context.Background(), owner, res.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if err := e.Cancel(context.Background(), owner, res.ID); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if s := st.stats[1]; s.TotalBookings != 0 || s.HoursBooked != 0 {
		t.Fatalf("repeat cancel double-decremented the ledger: %+v", s)
	}
}

func TestCancelBookingCountFloorsAtZero(t *testing.T) {
	e, st := newTestEngine(1)
	// A ledger that is already at zero bookings, e.g. after an admin
	// reseeded it; the count must not go negative, hours may.
	st.reservations[42] = &model.Reservation{ID: 42, RoomID: 1, UserID: owner.UserID, StartTime: at(10, 0), EndTime: at(11, 0), Status: model.StatusConfirmed}
	st.stats[1] = &model.RoomUsageStats{RoomID: 1}

	if err := e.Cancel(context.Background(), owner, 42); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s := st.stats[1]; s.TotalBookings != 0 || s.HoursBooked != -1 {
		t.Fatalf("ledger = %+v, want 0 bookings / -1 hours", s)
	}
}

func TestCancelPermissions(t *testing.T) {
	e, _ := newTestEngine(1)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	if err := e.Cancel(context.Background(), other, res.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner cancel: err = %v, want ErrForbidden", err)
	}
	if err := e.Cancel(context.Background(), admin, res.ID); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if err := e.Cancel(context.Background(), owner, 999); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("missing id: err = %v, want ErrReservationNotFound", err)
	}
}

func TestUpdateWindowSameRoomAdjustsHoursOnly(t *testing.T) {
	e, st := newTestEngine(1)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	upd, err := e.Update(context.Background(), owner, res.ID, UpdateInput{RoomID: 1, Title: "standup", StartTime: at(14, 0), EndTime: at(16, 0)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !upd.StartTime.Equal(at(14, 0)) || !upd.EndTime.Equal(at(16, 0)) {
		t.Fatalf("window not applied: %+v", upd)
	}
	if s := st.stats[1]; s.TotalBookings != 1 || s.HoursBooked != 2 {
		t.Fatalf("ledger = %d / %v, want 1 booking and 2 hours", s.TotalBookings, s.HoursBooked)
	}
}

func TestUpdateWindowExcludesItselfFromConflictCheck(t *testing.T) {
	e, _ := newTestEngine(1)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	// Extending the same reservation overlaps its own old window,
	// which must not count as a conflict.
	if _, err := e.Update(context.Background(), owner, res.ID, UpdateInput{RoomID: 1, StartTime: at(10, 0), EndTime: at(11, 30)}); err != nil {
		t.Fatalf("self-overlapping extension rejected: %v", err)
	}
}

func TestUpdateMoveToBusyWindowFailsWithoutChanges(t *testing.T) {
	e, st := newTestEngine(1)
	mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))
	res := mustCreate(t, e, owner, 1, at(12, 0), at(13, 0))

	_, err := e.Update(context.Background(), owner, res.ID, UpdateInput{RoomID: 1, StartTime: at(10, 30), EndTime: at(11, 30)})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if got := st.reservations[res.ID]; !got.StartTime.Equal(at(12, 0)) {
		t.Fatalf("failed update mutated the reservation: %+v", got)
	}
	if s := st.stats[1]; s.TotalBookings != 2 || s.HoursBooked != 2 {
		t.Fatalf("failed update touched the ledger: %+v", s)
	}
}

func TestUpdateRoomChangeMovesLedgerBetweenRooms(t *testing.T) {
	e, st := newTestEngine(1, 2)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	upd, err := e.Update(context.Background(), owner, res.ID, UpdateInput{RoomID: 2, StartTime: at(10, 0), EndTime: at(12, 0)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.RoomID != 2 {
		t.Fatalf("room not applied: %+v", upd)
	}
	if s := st.stats[1]; s.TotalBookings != 0 || s.HoursBooked != 0 {
		t.Fatalf("old room ledger = %+v, want released", s)
	}
	if s := st.stats[2]; s.TotalBookings != 1 || s.HoursBooked != 2 {
		t.Fatalf("new room ledger = %+v, want 1 booking / 2 hours", s)
	}
}

func TestUpdateRoomChangeChecksNewRoomConflicts(t *testing.T) {
	e, _ := newTestEngine(1, 2)
	mustCreate(t, e, other, 2, at(10, 0), at(11, 0))
	res := mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	_, err := e.Update(context.Background(), owner, res.ID, UpdateInput{RoomID: 2, StartTime: at(10, 0), EndTime: at(11, 0)})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestUpdateTitleOnlySkipsConflictAndLedger(t *testing.T) {
	e, st := newTestEngine(1)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	upd, err := e.Update(context.Background(), owner, res.ID, UpdateInput{RoomID: 1, Title: "retro", StartTime: at(10, 0), EndTime: at(11, 0)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Title != "retro" {
		t.Fatalf("title not applied: %+v", upd)
	}
	if s := st.stats[1]; s.TotalBookings != 1 || s.HoursBooked != 1 {
		t.Fatalf("ledger changed on title-only update: %+v", s)
	}
}

func TestUpdateOwnershipAndExistence(t *testing.T) {
	e, _ := newTestEngine(1)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	in := UpdateInput{RoomID: 1, StartTime: at(10, 0), EndTime: at(11, 0)}
	if _, err := e.Update(context.Background(), other, res.ID, in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner update: err = %v, want ErrForbidden", err)
	}
	if _, err := e.Update(context.Background(), owner, 999, in); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("missing id: err = %v, want ErrReservationNotFound", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	e, st := newTestEngine(1)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	// confirmed -> confirmed: ledger untouched.
	if _, err := e.UpdateStatus(context.Background(), res.ID, "confirmed"); err != nil {
		t.Fatalf("same-state update: %v", err)
	}
	if s := st.stats[1]; s.TotalBookings != 1 || s.HoursBooked != 1 {
		t.Fatalf("same-state update touched ledger: %+v", s)
	}

	// confirmed -> cancelled releases the window.
	if _, err := e.UpdateStatus(context.Background(), res.ID, "cancelled"); err != nil {
		t.Fatalf("cancel via status: %v", err)
	}
	if s := st.stats[1]; s.TotalBookings != 0 || s.HoursBooked != 0 {
		t.Fatalf("ledger after cancel = %+v, want zeroed", s)
	}

	// cancelled -> confirmed re-adds it.
	upd, err := e.UpdateStatus(context.Background(), res.ID, "confirmed")
	if err != nil {
		t.Fatalf("reconfirm via status: %v", err)
	}
	if upd.Status != model.StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", upd.Status)
	}
	if s := st.stats[1]; s.TotalBookings != 1 || s.HoursBooked != 1 {
		t.Fatalf("ledger after reconfirm = %+v, want restored", s)
	}
}

func TestUpdateStatusInvalidToken(t *testing.T) {
	e, _ := newTestEngine(1)
	res := mustCreate(t, e, owner, 1, at(10, 0), at(11, 0))

	if _, err := e.UpdateStatus(context.Background(), res.ID, "completed"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUsageHoursTruncatesToWholeMinutes(t *testing.T) {
	start := at(10, 0)
	end := start.Add(90*time.Minute + 30*time.Second)
	if got := usageHours(start, end); got != 1.5 {
		t.Fatalf("usageHours = %v, want 1.5", got)
	}
}
