package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errStore = errors.New("store unavailable")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uniqueViolation(constraint string) error {
	return fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: constraint})
}

// fakeDB satisfies repository.TxBeginner. The fake repositories ignore it.
type fakeDB struct {
	mu      sync.Mutex
	commits int
}

func (d *fakeDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errors.New("fakeDB: Exec not supported")
}

func (d *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: Query not supported")
}

func (d *fakeDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{db: d}, nil
}

type fakeTx struct {
	pgx.Tx
	db *fakeDB
}

func (t *fakeTx) Commit(context.Context) error {
	t.db.mu.Lock()
	t.db.commits++
	t.db.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback(context.Context) error { return nil }

// store is the shared in-memory state behind the fake repositories.
type store struct {
	mu    sync.Mutex
	clock time.Time

	fighters    map[uuid.UUID]*domain.Fighter
	searchNames map[uuid.UUID]string
	events      []*domain.Event
	bouts       []*domain.Bout
	betTypes    []*domain.BetType
	results     map[uuid.UUID]*domain.BoutResult
	bets        []*domain.UserBet
	outbox      []domain.OutboxDraft
	users       map[string]*domain.User

	failFighterWrite map[string]bool
	failFighterRead  bool
	failOutbox       bool
}

func newStore() *store {
	s := &store{
		clock:            time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		fighters:         make(map[uuid.UUID]*domain.Fighter),
		searchNames:      make(map[uuid.UUID]string),
		results:          make(map[uuid.UUID]*domain.BoutResult),
		users:            make(map[string]*domain.User),
		failFighterWrite: make(map[string]bool),
	}
	s.betTypes = append(s.betTypes, &domain.BetType{ID: 1, Name: domain.BetTypeWinner, CreatedAt: s.clock})
	return s
}

// tick returns a strictly increasing timestamp. Callers hold s.mu.
func (s *store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *store) fighterByName(name string) *domain.Fighter {
	for _, f := range s.fighters {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (s *store) fighterCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fighters)
}

// --- fighters ---

type fakeFighterRepo struct{ s *store }

func (r *fakeFighterRepo) Upsert(_ context.Context, _ repository.DBTX, name, searchName string, tally domain.Tally) (*domain.Fighter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failFighterWrite[name] {
		return nil, errStore
	}
	f := r.s.fighterByName(name)
	now := r.s.tick()
	if f == nil {
		f = &domain.Fighter{ID: uuid.New(), Name: name, CreatedAt: now}
		r.s.fighters[f.ID] = f
	}
	f.Tally = tally
	f.UpdatedAt = now
	r.s.searchNames[f.ID] = searchName
	cp := *f
	return &cp, nil
}

func (r *fakeFighterRepo) Ensure(_ context.Context, _ repository.DBTX, name, searchName string) (*domain.Fighter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failFighterWrite[name] {
		return nil, errStore
	}
	f := r.s.fighterByName(name)
	if f == nil {
		now := r.s.tick()
		f = &domain.Fighter{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}
		r.s.fighters[f.ID] = f
		r.s.searchNames[f.ID] = searchName
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFighterRepo) FindByName(_ context.Context, _ repository.DBTX, name string) (*domain.Fighter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failFighterRead {
		return nil, errStore
	}
	f := r.s.fighterByName(name)
	if f == nil {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFighterRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Fighter, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.fighters[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFighterRepo) List(_ context.Context, _ repository.DBTX) ([]domain.Fighter, error) {
	return r.filter(func(*domain.Fighter) bool { return true }), nil
}

func (r *fakeFighterRepo) Search(_ context.Context, _ repository.DBTX, term, foldedTerm string) ([]domain.Fighter, error) {
	return r.filter(func(f *domain.Fighter) bool {
		return strings.Contains(strings.ToLower(f.Name), strings.ToLower(term)) ||
			strings.Contains(r.s.searchNames[f.ID], foldedTerm)
	}), nil
}

func (r *fakeFighterRepo) filter(keep func(*domain.Fighter) bool) []domain.Fighter {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Fighter{}
	for _, f := range r.s.fighters {
		if keep(f) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// --- events ---

type fakeEventRepo struct{ s *store }

func (r *fakeEventRepo) Create(_ context.Context, _ repository.DBTX, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := r.s.tick()
	e.CreatedAt, e.UpdatedAt = now, now
	cp := *e
	r.s.events = append(r.s.events, &cp)
	return nil
}

func (r *fakeEventRepo) find(match func(*domain.Event) bool) *domain.Event {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.events) - 1; i >= 0; i-- {
		if match(r.s.events[i]) {
			cp := *r.s.events[i]
			return &cp
		}
	}
	return nil
}

func (r *fakeEventRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Event, error) {
	return r.find(func(e *domain.Event) bool { return e.ID == id }), nil
}

func (r *fakeEventRepo) FindByName(_ context.Context, _ repository.DBTX, name string) (*domain.Event, error) {
	return r.find(func(e *domain.Event) bool { return e.Name == name }), nil
}

func (r *fakeEventRepo) List(_ context.Context, _ repository.DBTX) ([]domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		out = append(out, *e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].EventDate, out[j].EventDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeEventRepo) Update(_ context.Context, _ repository.DBTX, e *domain.Event) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, stored := range r.s.events {
		if stored.ID == e.ID {
			stored.Name, stored.Date, stored.Location, stored.EventDate = e.Name, e.Date, e.Location, e.EventDate
			stored.UpdatedAt = r.s.tick()
			cp := *stored
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeEventRepo) Delete(_ context.Context, _ repository.DBTX, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, e := range r.s.events {
		if e.ID == id {
			r.s.events = append(r.s.events[:i], r.s.events[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// --- bouts ---

type fakeBoutRepo struct{ s *store }

func samePairing(b *domain.Bout, eventID, x, y uuid.UUID) bool {
	return b.EventID == eventID &&
		((b.FighterLeftID == x && b.FighterRightID == y) || (b.FighterLeftID == y && b.FighterRightID == x))
}

func (r *fakeBoutRepo) Create(_ context.Context, _ repository.DBTX, b *domain.Bout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.bouts {
		if samePairing(existing, b.EventID, b.FighterLeftID, b.FighterRightID) {
			return uniqueViolation("uq_bouts_pairing")
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := r.s.tick()
	b.CreatedAt, b.UpdatedAt = now, now
	cp := *b
	r.s.bouts = append(r.s.bouts, &cp)
	return nil
}

func (r *fakeBoutRepo) FindOrCreate(ctx context.Context, db repository.DBTX, eventID, leftID, rightID uuid.UUID) (*domain.Bout, error) {
	r.s.mu.Lock()
	for _, b := range r.s.bouts {
		if samePairing(b, eventID, leftID, rightID) {
			cp := *b
			r.s.mu.Unlock()
			return &cp, nil
		}
	}
	r.s.mu.Unlock()

	b := &domain.Bout{EventID: eventID, FighterLeftID: leftID, FighterRightID: rightID}
	if err := r.Create(ctx, db, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *fakeBoutRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Bout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bouts {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBoutRepo) ListDetailsByEvent(_ context.Context, _ repository.DBTX, eventID uuid.UUID) ([]domain.BoutDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.BoutDetail{}
	for _, b := range r.s.bouts {
		if b.EventID != eventID {
			continue
		}
		left, right := r.s.fighters[b.FighterLeftID], r.s.fighters[b.FighterRightID]
		out = append(out, domain.BoutDetail{
			Bout:       *b,
			LeftName:   left.Name,
			LeftTally:  left.Tally,
			RightName:  right.Name,
			RightTally: right.Tally,
		})
	}
	return out, nil
}

func (r *fakeBoutRepo) DeleteByEvent(_ context.Context, _ repository.DBTX, eventID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.bouts[:0]
	for _, b := range r.s.bouts {
		if b.EventID != eventID {
			kept = append(kept, b)
		}
	}
	r.s.bouts = kept
	return nil
}

func (s *store) boutCount(eventID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bouts {
		if b.EventID == eventID {
			n++
		}
	}
	return n
}

// --- bet types ---

type fakeBetTypeRepo struct{ s *store }

func (r *fakeBetTypeRepo) Create(_ context.Context, _ repository.DBTX, name, description string) (*domain.BetType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, bt := range r.s.betTypes {
		if bt.Name == name {
			return nil, uniqueViolation("bet_types_name_key")
		}
	}
	bt := &domain.BetType{ID: len(r.s.betTypes) + 1, Name: name, Description: description, CreatedAt: r.s.tick()}
	r.s.betTypes = append(r.s.betTypes, bt)
	cp := *bt
	return &cp, nil
}

func (r *fakeBetTypeRepo) FindOrCreate(ctx context.Context, db repository.DBTX, name string) (*domain.BetType, error) {
	r.s.mu.Lock()
	for _, bt := range r.s.betTypes {
		if bt.Name == name {
			cp := *bt
			r.s.mu.Unlock()
			return &cp, nil
		}
	}
	r.s.mu.Unlock()
	return r.Create(ctx, db, name, "")
}

func (r *fakeBetTypeRepo) FindByID(_ context.Context, _ repository.DBTX, id int) (*domain.BetType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, bt := range r.s.betTypes {
		if bt.ID == id {
			cp := *bt
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBetTypeRepo) List(_ context.Context, _ repository.DBTX) ([]domain.BetType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.BetType, 0, len(r.s.betTypes))
	for _, bt := range r.s.betTypes {
		out = append(out, *bt)
	}
	return out, nil
}

func (s *store) betTypeName(id *int) string {
	if id == nil {
		return ""
	}
	for _, bt := range s.betTypes {
		if bt.ID == *id {
			return bt.Name
		}
	}
	return ""
}

// --- bout results ---

type fakeBoutResultRepo struct{ s *store }

func (r *fakeBoutResultRepo) Insert(_ context.Context, _ repository.DBTX, res *domain.BoutResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.results[res.BoutID]; ok {
		return uniqueViolation("bout_results_pkey")
	}
	now := r.s.tick()
	res.CreatedAt, res.UpdatedAt = now, now
	cp := *res
	r.s.results[res.BoutID] = &cp
	return nil
}

func (r *fakeBoutResultRepo) ListDetailsByEvent(_ context.Context, _ repository.DBTX, eventID uuid.UUID) ([]domain.BoutResultDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.BoutResultDetail{}
	for _, b := range r.s.bouts {
		res, ok := r.s.results[b.ID]
		if b.EventID != eventID || !ok {
			continue
		}
		d := domain.BoutResultDetail{BoutResult: *res, BetTypeName: r.s.betTypeName(res.BetTypeID)}
		if res.WinnerID != nil {
			if w, ok := r.s.fighters[*res.WinnerID]; ok {
				d.WinnerName = w.Name
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// --- user bets ---

type fakeUserBetRepo struct{ s *store }

func (r *fakeUserBetRepo) find(userID, boutID uuid.UUID, betTypeID int) *domain.UserBet {
	for _, b := range r.s.bets {
		if b.UserID == userID && b.BoutID == boutID && b.BetTypeID == betTypeID {
			return b
		}
	}
	return nil
}

func (r *fakeUserBetRepo) Upsert(_ context.Context, _ repository.DBTX, bet *domain.UserBet) (*domain.UserBet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing := r.find(bet.UserID, bet.BoutID, bet.BetTypeID)
	if existing == nil {
		existing = &domain.UserBet{UserID: bet.UserID, BoutID: bet.BoutID, BetTypeID: bet.BetTypeID, CreatedAt: r.s.tick()}
		r.s.bets = append(r.s.bets, existing)
	}
	existing.PredictedValue = bet.PredictedValue
	cp := *existing
	return &cp, nil
}

func (r *fakeUserBetRepo) list(keep func(*domain.UserBet) bool) []domain.UserBet {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.UserBet{}
	for _, b := range r.s.bets {
		if keep(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeUserBetRepo) ListByUser(_ context.Context, _ repository.DBTX, userID uuid.UUID) ([]domain.UserBet, error) {
	return r.list(func(b *domain.UserBet) bool { return b.UserID == userID }), nil
}

func (r *fakeUserBetRepo) ListByBout(_ context.Context, _ repository.DBTX, boutID uuid.UUID) ([]domain.UserBet, error) {
	return r.list(func(b *domain.UserBet) bool { return b.BoutID == boutID }), nil
}

func (r *fakeUserBetRepo) SetResult(_ context.Context, _ repository.DBTX, userID, boutID uuid.UUID, betTypeID int, result string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b := r.find(userID, boutID, betTypeID)
	if b == nil {
		return false, nil
	}
	b.Result = &result
	return true, nil
}

func (r *fakeUserBetRepo) Settle(_ context.Context, _ repository.DBTX, userID, boutID uuid.UUID, betTypeID int, result string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b := r.find(userID, boutID, betTypeID)
	if b == nil || b.Result != nil {
		return false, nil
	}
	b.Result = &result
	return true, nil
}

func (r *fakeUserBetRepo) FindSettlement(_ context.Context, _ repository.DBTX, userID, boutID uuid.UUID, betTypeID int) (*domain.UnsettledBet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b := r.find(userID, boutID, betTypeID)
	if b == nil {
		return nil, nil
	}
	id := b.BetTypeID
	out := &domain.UnsettledBet{UserBet: *b, BetTypeName: r.s.betTypeName(&id)}
	if res, ok := r.s.results[boutID]; ok {
		out.WinnerID = res.WinnerID
		out.ResultBetTypeID = res.BetTypeID
	}
	return out, nil
}

func (r *fakeUserBetRepo) ListUnsettled(_ context.Context, _ repository.DBTX, boutID *uuid.UUID, limit int) ([]domain.UnsettledBet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.UnsettledBet{}
	for _, b := range r.s.bets {
		res, ok := r.s.results[b.BoutID]
		if b.Result != nil || !ok || (boutID != nil && b.BoutID != *boutID) {
			continue
		}
		id := b.BetTypeID
		out = append(out, domain.UnsettledBet{
			UserBet:         *b,
			BetTypeName:     r.s.betTypeName(&id),
			WinnerID:        res.WinnerID,
			ResultBetTypeID: res.BetTypeID,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *store) bet(userID, boutID uuid.UUID, betTypeID int) *domain.UserBet {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bets {
		if b.UserID == userID && b.BoutID == boutID && b.BetTypeID == betTypeID {
			cp := *b
			return &cp
		}
	}
	return nil
}

// --- outbox ---

type fakeOutboxRepo struct{ s *store }

func (r *fakeOutboxRepo) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failOutbox {
		return errStore
	}
	draft.ID = int64(len(r.s.outbox) + 1)
	r.s.outbox = append(r.s.outbox, draft)
	return nil
}

func (r *fakeOutboxRepo) FetchUnpublished(_ context.Context, _ repository.DBTX, limit int) ([]domain.OutboxDraft, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.outbox) < limit {
		limit = len(r.s.outbox)
	}
	return append([]domain.OutboxDraft(nil), r.s.outbox[:limit]...), nil
}

func (r *fakeOutboxRepo) MarkPublished(context.Context, repository.DBTX, []int64) error {
	return nil
}

// --- users ---

type fakeUserRepo struct{ s *store }

func (r *fakeUserRepo) FindByEmail(_ context.Context, _ repository.DBTX, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ repository.DBTX, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.Email]; ok {
		return uniqueViolation("users_email_key")
	}
	now := r.s.tick()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.s.users[u.Email] = &cp
	return nil
}

// harness wires every service over one store.
type harness struct {
	store    *store
	db       *fakeDB
	registry *FighterRegistry
	events   *EventService
	results  *ResultsService
	betting  *BettingService
	betTypes *BetTypeService
}

func newHarness() *harness {
	s := newStore()
	db := &fakeDB{}
	logger := testLogger()

	registry := NewFighterRegistry(db, &fakeFighterRepo{s}, nil, logger)
	events := NewEventService(db, &fakeEventRepo{s}, &fakeBoutRepo{s}, &fakeBoutResultRepo{s}, registry, logger)
	events.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	return &harness{
		store:    s,
		db:       db,
		registry: registry,
		events:   events,
		results: NewResultsService(db, events, registry, &fakeBoutRepo{s}, &fakeBetTypeRepo{s},
			&fakeBoutResultRepo{s}, &fakeOutboxRepo{s}, nil, logger),
		betting:  NewBettingService(db, &fakeBoutRepo{s}, &fakeBetTypeRepo{s}, &fakeUserBetRepo{s}, nil, logger),
		betTypes: NewBetTypeService(db, &fakeBetTypeRepo{s}),
	}
}

// setNow moves the event service clock.
func (h *harness) setNow(t time.Time) {
	h.events.now = func() time.Time { return t }
}

var (
	_ repository.TxBeginner           = (*fakeDB)(nil)
	_ repository.FighterRepository    = (*fakeFighterRepo)(nil)
	_ repository.EventRepository      = (*fakeEventRepo)(nil)
	_ repository.BoutRepository       = (*fakeBoutRepo)(nil)
	_ repository.BetTypeRepository    = (*fakeBetTypeRepo)(nil)
	_ repository.BoutResultRepository = (*fakeBoutResultRepo)(nil)
	_ repository.UserBetRepository    = (*fakeUserBetRepo)(nil)
	_ repository.OutboxRepository     = (*fakeOutboxRepo)(nil)
	_ repository.UserRepository       = (*fakeUserRepo)(nil)
)
