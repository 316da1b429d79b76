package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/spencerbaird36/The-League-sub000/go/internal/draft"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/events"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/registry"
	"github.com/spencerbaird36/The-League-sub000/go/internal/draft/timer"
	"github.com/spencerbaird36/The-League-sub000/go/internal/models"
)

type fakeStore struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]models.DraftSession
	picks     map[uuid.UUID][]models.Pick
	appendErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[uuid.UUID]models.DraftSession),
		picks:    make(map[uuid.UUID][]models.Pick),
	}
}

func (f *fakeStore) GetSession(_ context.Context, id uuid.UUID) (*models.DraftSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, draft.ErrSessionNotFound
	}
	copied := s
	copied.DraftOrder = append([]uuid.UUID(nil), s.DraftOrder...)
	return &copied, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.DraftStatus) (*models.DraftSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, draft.ErrSessionNotFound
	}
	s.Status = status
	now := time.Now()
	if status == models.DraftStatusInProgress && s.StartedAt == nil {
		s.StartedAt = &now
	}
	if status == models.DraftStatusCompleted {
		s.CompletedAt = &now
	}
	f.sessions[id] = s
	copied := s
	return &copied, nil
}

func (f *fakeStore) ListPicks(_ context.Context, sessionID uuid.UUID) ([]models.Pick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Pick(nil), f.picks[sessionID]...), nil
}

func (f *fakeStore) AppendPick(_ context.Context, pick models.Pick, complete bool) (*models.Pick, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	existing := f.picks[pick.SessionID]
	if pick.OverallPick != len(existing)+1 {
		return nil, fmt.Errorf("pick number %d breaks dense sequence of %d", pick.OverallPick, len(existing))
	}
	for _, prior := range existing {
		if prior.Player.ID == pick.Player.ID {
			return nil, draft.ErrPlayerAlreadyDrafted
		}
	}
	f.picks[pick.SessionID] = append(existing, pick)
	if complete {
		s := f.sessions[pick.SessionID]
		s.Status = models.DraftStatusCompleted
		completedAt := pick.PickedAt
		s.CompletedAt = &completedAt
		f.sessions[pick.SessionID] = s
	}
	return &pick, nil
}

func (f *fakeStore) ResetSession(_ context.Context, id uuid.UUID, order []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return draft.ErrSessionNotFound
	}
	s.DraftOrder = append([]uuid.UUID(nil), order...)
	s.Status = models.DraftStatusNotStarted
	s.StartedAt = nil
	s.CompletedAt = nil
	delete(f.picks, id)
	f.sessions[id] = s
	return nil
}

type fakeLeagues struct {
	mu      sync.Mutex
	members map[uuid.UUID][]uuid.UUID
	names   map[uuid.UUID]string
}

func (f *fakeLeagues) Members(_ context.Context, leagueID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.members[leagueID]...), nil
}

func (f *fakeLeagues) MemberDetails(_ context.Context, leagueID uuid.UUID) ([]models.LeagueMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LeagueMember
	for _, id := range f.members[leagueID] {
		out = append(out, models.LeagueMember{
			LeagueID:      leagueID,
			ParticipantID: id,
			DisplayName:   f.names[id],
		})
	}
	return out, nil
}

type fakePool struct {
	store *fakeStore
	all   []models.PlayerSummary
}

func (f *fakePool) AvailablePlayers(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerSummary, error) {
	picks, _ := f.store.ListPicks(ctx, sessionID)
	taken := make(map[string]bool, len(picks))
	for _, p := range picks {
		taken[p.Player.ID] = true
	}
	var out []models.PlayerSummary
	for _, p := range f.all {
		if !taken[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *recordingBroadcaster) Broadcast(_ uuid.UUID, e *events.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingBroadcaster) types(filter ...events.Type) []events.Type {
	want := make(map[events.Type]bool, len(filter))
	for _, t := range filter {
		want[t] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Type
	for _, e := range r.events {
		if len(filter) == 0 || want[e.Type] {
			out = append(out, e.Type)
		}
	}
	return out
}

func (r *recordingBroadcaster) count(t events.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type stubSelector struct{}

func (stubSelector) Select(available []models.PlayerSummary, _ []models.Pick) (models.PlayerSummary, error) {
	if len(available) == 0 {
		return models.PlayerSummary{}, draft.ErrNoAvailablePlayers
	}
	return available[0], nil
}

type fixture struct {
	coord     *Coordinator
	store     *fakeStore
	leagues   *fakeLeagues
	pool      *fakePool
	broadcast *recordingBroadcaster
	clock     *clockwork.FakeClock
	timers    *timer.Manager

	sessionID    uuid.UUID
	leagueID     uuid.UUID
	participants []uuid.UUID
}

func newFixture(t *testing.T, participants, pickLimit, timePerPickSec int) *fixture {
	t.Helper()

	store := newFakeStore()
	leagueID := uuid.New()
	sessionID := uuid.New()

	order := make([]uuid.UUID, participants)
	for i := range order {
		order[i] = uuid.New()
	}

	store.sessions[sessionID] = models.DraftSession{
		ID:             sessionID,
		LeagueID:       leagueID,
		DraftOrder:     order,
		PickLimit:      pickLimit,
		TimePerPickSec: timePerPickSec,
		Status:         models.DraftStatusNotStarted,
		CreatedAt:      time.Now(),
	}

	var poolPlayers []models.PlayerSummary
	for i := 0; i < pickLimit+4; i++ {
		poolPlayers = append(poolPlayers, models.PlayerSummary{
			ID:        fmt.Sprintf("pool-%d", i),
			Name:      fmt.Sprintf("Pool Player %d", i),
			Position:  "RB",
			SubLeague: "NFL",
		})
	}

	leagues := &fakeLeagues{members: map[uuid.UUID][]uuid.UUID{leagueID: order}}
	pool := &fakePool{store: store, all: poolPlayers}
	broadcast := &recordingBroadcaster{}
	clock := clockwork.NewFakeClock()
	timers := timer.NewManager(clock)

	coord := New(store, leagues, pool, stubSelector{}, timers, registry.New(), broadcast, clock)

	return &fixture{
		coord:        coord,
		store:        store,
		leagues:      leagues,
		pool:         pool,
		broadcast:    broadcast,
		clock:        clock,
		timers:       timers,
		sessionID:    sessionID,
		leagueID:     leagueID,
		participants: order,
	}
}

func (f *fixture) pickCount(t *testing.T) int {
	t.Helper()
	picks, err := f.store.ListPicks(context.Background(), f.sessionID)
	if err != nil {
		t.Fatalf("list picks: %v", err)
	}
	return len(picks)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func player(id string) models.PlayerSummary {
	return models.PlayerSummary{ID: id, Name: id, Position: "QB", Team: "FA", SubLeague: "NFL"}
}

func TestPickGuardsInOrder(t *testing.T) {
	f := newFixture(t, 3, 3, 60)
	ctx := context.Background()

	if err := f.coord.Start(ctx, f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Out-of-turn pick carries the true current participant.
	_, err := f.coord.Pick(ctx, f.sessionID, f.participants[1], player("p1"))
	var nyt *draft.NotYourTurnError
	if !errors.As(err, &nyt) {
		t.Fatalf("want NotYourTurnError, got %v", err)
	}
	if nyt.Current != f.participants[0] {
		t.Errorf("error names %s as current, want %s", nyt.Current, f.participants[0])
	}

	pick, err := f.coord.Pick(ctx, f.sessionID, f.participants[0], player("p1"))
	if err != nil {
		t.Fatalf("first pick: %v", err)
	}
	if pick.OverallPick != 1 || pick.AutoPick {
		t.Errorf("unexpected pick: %+v", pick)
	}

	_, err = f.coord.Pick(ctx, f.sessionID, f.participants[1], player("p1"))
	if !errors.Is(err, draft.ErrPlayerAlreadyDrafted) {
		t.Fatalf("want ErrPlayerAlreadyDrafted, got %v", err)
	}
}

func TestPickRejectedBeforeStart(t *testing.T) {
	f := newFixture(t, 3, 3, 60)
	_, err := f.coord.Pick(context.Background(), f.sessionID, f.participants[0], player("p1"))
	if !errors.Is(err, draft.ErrNoActiveDraft) {
		t.Fatalf("want ErrNoActiveDraft, got %v", err)
	}
}

func TestDraftCompletesExactlyAtPickLimit(t *testing.T) {
	f := newFixture(t, 3, 9, 60)
	ctx := context.Background()

	if err := f.coord.Start(ctx, f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Snake order over three rounds.
	a, b, c := f.participants[0], f.participants[1], f.participants[2]
	expected := []uuid.UUID{a, b, c, c, b, a, a, b, c}

	for i, participant := range expected {
		pick, err := f.coord.Pick(ctx, f.sessionID, participant, player(fmt.Sprintf("p%d", i+1)))
		if err != nil {
			t.Fatalf("pick %d: %v", i+1, err)
		}
		if pick.OverallPick != i+1 {
			t.Fatalf("pick %d numbered %d", i+1, pick.OverallPick)
		}
	}

	session, err := f.store.GetSession(ctx, f.sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !session.Completed() || session.CompletedAt == nil {
		t.Fatalf("session not completed: status=%s", session.Status)
	}
	if f.broadcast.count(events.TypeDraftCompleted) != 1 {
		t.Errorf("draft completed broadcast %d times", f.broadcast.count(events.TypeDraftCompleted))
	}
	if f.timers.Armed(f.sessionID) {
		t.Error("timer still armed after completion")
	}

	_, err = f.coord.Pick(ctx, f.sessionID, a, player("extra"))
	if !errors.Is(err, draft.ErrNoActiveDraft) {
		t.Fatalf("pick after completion: want ErrNoActiveDraft, got %v", err)
	}

	// Pick numbers are exactly {1..9}.
	picks, _ := f.store.ListPicks(ctx, f.sessionID)
	for i, p := range picks {
		if p.OverallPick != i+1 {
			t.Errorf("pick at index %d numbered %d", i, p.OverallPick)
		}
	}
}

func TestPauseAndResume(t *testing.T) {
	f := newFixture(t, 3, 9, 60)
	ctx := context.Background()
	by := f.participants[0]

	if err := f.coord.Start(ctx, f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.coord.Pick(ctx, f.sessionID, f.participants[0], player("p1")); err != nil {
		t.Fatalf("pick: %v", err)
	}

	if err := f.coord.Pause(ctx, f.sessionID, by); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if f.timers.Armed(f.sessionID) {
		t.Error("timer armed while paused")
	}
	if _, err := f.coord.Pick(ctx, f.sessionID, f.participants[1], player("p2")); !errors.Is(err, draft.ErrNoActiveDraft) {
		t.Fatalf("pick while paused: want ErrNoActiveDraft, got %v", err)
	}
	if err := f.coord.Pause(ctx, f.sessionID, by); !errors.Is(err, draft.ErrNoActiveDraft) {
		t.Fatalf("double pause: want ErrNoActiveDraft, got %v", err)
	}

	if err := f.coord.Resume(ctx, f.sessionID, by); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !f.timers.Armed(f.sessionID) {
		t.Error("timer not re-armed on resume")
	}

	// Turn is re-derived from pick count: one pick made, participant 2 up.
	pick, err := f.coord.Pick(ctx, f.sessionID, f.participants[1], player("p2"))
	if err != nil {
		t.Fatalf("pick after resume: %v", err)
	}
	if pick.OverallPick != 2 {
		t.Errorf("pick numbered %d, want 2", pick.OverallPick)
	}
}

func TestResetRegeneratesOrderFromMembership(t *testing.T) {
	f := newFixture(t, 3, 9, 60)
	ctx := context.Background()

	if err := f.coord.Start(ctx, f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.coord.Pick(ctx, f.sessionID, f.participants[0], player("p1")); err != nil {
		t.Fatalf("pick: %v", err)
	}

	// Membership changed since the draft was configured.
	newMembers := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	f.leagues.mu.Lock()
	f.leagues.members[f.leagueID] = newMembers
	f.leagues.mu.Unlock()

	if err := f.coord.Reset(ctx, f.sessionID, f.participants[0]); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if f.pickCount(t) != 0 {
		t.Error("picks survived reset")
	}
	if f.timers.Armed(f.sessionID) {
		t.Error("timer armed after reset")
	}

	session, _ := f.store.GetSession(ctx, f.sessionID)
	if session.Status != models.DraftStatusNotStarted || session.StartedAt != nil {
		t.Errorf("session not cleared: %+v", session)
	}
	if len(session.DraftOrder) != len(newMembers) {
		t.Fatalf("order has %d entries, want %d", len(session.DraftOrder), len(newMembers))
	}
	for i, id := range newMembers {
		if session.DraftOrder[i] != id {
			t.Errorf("order[%d] = %s, want %s", i, session.DraftOrder[i], id)
		}
	}
}

func TestStartBroadcastsStartThenTurn(t *testing.T) {
	f := newFixture(t, 3, 9, 60)

	if err := f.coord.Start(context.Background(), f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}

	got := f.broadcast.types(events.TypeDraftStarted, events.TypeTurnChanged)
	want := []events.Type{events.TypeDraftStarted, events.TypeTurnChanged}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("broadcast order %v, want %v", got, want)
		}
	}
	if !f.timers.Armed(f.sessionID) {
		t.Error("timer not armed on start")
	}
}

func TestBroadcastTimestampsUseCoordinatorClock(t *testing.T) {
	f := newFixture(t, 3, 9, 60)

	if err := f.coord.Start(context.Background(), f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}

	want := f.clock.Now().UTC()
	f.broadcast.mu.Lock()
	defer f.broadcast.mu.Unlock()
	if len(f.broadcast.events) == 0 {
		t.Fatal("no events broadcast")
	}
	for _, e := range f.broadcast.events {
		if !e.Timestamp.Equal(want) {
			t.Errorf("event %s stamped %v, want %v", e.Type, e.Timestamp, want)
		}
	}
}

func TestStatePreservesRunningCountdown(t *testing.T) {
	f := newFixture(t, 3, 9, 60)
	ctx := context.Background()

	if err := f.coord.Start(ctx, f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.clock.BlockUntil(1)
	f.clock.Advance(3 * time.Second)

	// A state query reports the live countdown without replacing it.
	state, err := f.coord.State(ctx, f.sessionID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.TimeRemainingSec != 57 {
		t.Errorf("time remaining = %d, want 57", state.TimeRemainingSec)
	}
	if !f.timers.Armed(f.sessionID) {
		t.Error("state query disarmed the running timer")
	}
}

func TestTimerExpiryAutoPicksExactlyOnce(t *testing.T) {
	f := newFixture(t, 3, 9, 1)
	ctx := context.Background()

	if err := f.coord.Start(ctx, f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.clock.BlockUntil(1)
	f.clock.Advance(time.Second)

	waitFor(t, func() bool { return f.pickCount(t) == 1 })

	picks, _ := f.store.ListPicks(ctx, f.sessionID)
	if !picks[0].AutoPick {
		t.Error("expiry pick not flagged automatic")
	}
	if picks[0].ParticipantID != f.participants[0] {
		t.Errorf("auto-pick charged to %s, want %s", picks[0].ParticipantID, f.participants[0])
	}

	waitFor(t, func() bool { return f.broadcast.count(events.TypeTurnChanged) >= 2 })
	if n := f.broadcast.count(events.TypePlayerDrafted); n != 1 {
		t.Errorf("player drafted broadcast %d times, want 1", n)
	}
}

func TestStaleExpiryIsNoOp(t *testing.T) {
	f := newFixture(t, 3, 9, 60)
	ctx := context.Background()

	if err := f.coord.Start(ctx, f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.coord.Pick(ctx, f.sessionID, f.participants[0], player("p1")); err != nil {
		t.Fatalf("pick: %v", err)
	}

	// An expiry armed for the now-committed turn must not commit another
	// pick for the next participant.
	f.coord.expire(f.sessionID, 0)
	if f.pickCount(t) != 1 {
		t.Fatalf("stale expiry committed a pick: %d picks", f.pickCount(t))
	}
}

func TestFailedAutoPickWriteRecovers(t *testing.T) {
	f := newFixture(t, 3, 9, 60)
	ctx := context.Background()

	if err := f.coord.Start(ctx, f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.timers.Disarm(f.sessionID)

	f.store.mu.Lock()
	f.store.appendErr = errors.New("store unavailable")
	f.store.mu.Unlock()

	f.coord.expire(f.sessionID, 0)
	if f.pickCount(t) != 0 {
		t.Fatal("failed write still recorded a pick")
	}
	if f.timers.Armed(f.sessionID) {
		t.Fatal("timer re-armed after failed auto-pick")
	}

	// The next state query re-derives the turn and restarts the countdown.
	f.store.mu.Lock()
	f.store.appendErr = nil
	f.store.mu.Unlock()

	state, err := f.coord.State(ctx, f.sessionID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.CurrentParticipant != f.participants[0].String() {
		t.Errorf("state names %s, want %s", state.CurrentParticipant, f.participants[0])
	}
	if !f.timers.Armed(f.sessionID) {
		t.Error("state query did not re-arm the timer")
	}
}

func TestStateRecomputesDerivedFields(t *testing.T) {
	f := newFixture(t, 3, 9, 60)
	ctx := context.Background()

	state, err := f.coord.State(ctx, f.sessionID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Status != string(models.DraftStatusNotStarted) || state.PickCount != 0 {
		t.Errorf("unexpected initial state: %+v", state)
	}
	if f.timers.Armed(f.sessionID) {
		t.Error("state query armed a timer for a not-started draft")
	}

	if err := f.coord.Start(ctx, f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.coord.Pick(ctx, f.sessionID, f.participants[0], player("p1")); err != nil {
		t.Fatalf("pick: %v", err)
	}

	state, err = f.coord.State(ctx, f.sessionID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.PickCount != 1 || state.CurrentParticipant != f.participants[1].String() {
		t.Errorf("derived fields stale: %+v", state)
	}
	if state.Round != 1 || state.Slot != 2 {
		t.Errorf("round/slot = %d/%d, want 1/2", state.Round, state.Slot)
	}
}

func TestJoinAndLeave(t *testing.T) {
	f := newFixture(t, 3, 9, 60)
	ctx := context.Background()

	_, err := f.coord.Join(ctx, registry.Connection{ID: "c1", SessionID: uuid.New()})
	if !errors.Is(err, draft.ErrSessionNotFound) {
		t.Fatalf("join unknown session: want ErrSessionNotFound, got %v", err)
	}

	conn := registry.Connection{
		ID:            "c1",
		SessionID:     f.sessionID,
		ParticipantID: f.participants[0],
		DisplayName:   "alice",
		ConnectedAt:   time.Now(),
	}
	online, err := f.coord.Join(ctx, conn)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(online) != 1 || online[0].ID != "c1" {
		t.Fatalf("unexpected online list: %+v", online)
	}
	if f.broadcast.count(events.TypeParticipantOnline) != 1 {
		t.Error("join did not announce the participant")
	}

	f.coord.Leave(ctx, f.sessionID, "c1")
	if len(f.coord.Online(f.sessionID)) != 0 {
		t.Error("connection survived leave")
	}
	if f.broadcast.count(events.TypeParticipantOffline) != 1 {
		t.Error("leave did not announce the departure")
	}

	// Leaving twice announces nothing new.
	f.coord.Leave(ctx, f.sessionID, "c1")
	if f.broadcast.count(events.TypeParticipantOffline) != 1 {
		t.Error("duplicate leave announced again")
	}
}

func TestJoinFillsDisplayNameFromRoster(t *testing.T) {
	f := newFixture(t, 3, 9, 60)
	ctx := context.Background()

	f.leagues.mu.Lock()
	f.leagues.names = map[uuid.UUID]string{f.participants[1]: "Bobby"}
	f.leagues.mu.Unlock()

	// No name on the connection; the league roster supplies it.
	_, err := f.coord.Join(ctx, registry.Connection{
		ID:            "c1",
		SessionID:     f.sessionID,
		ParticipantID: f.participants[1],
	})
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	online := f.coord.Online(f.sessionID)
	if len(online) != 1 {
		t.Fatalf("online = %d, want 1", len(online))
	}
	if online[0].DisplayName != "Bobby" {
		t.Errorf("display name = %q, want %q", online[0].DisplayName, "Bobby")
	}

	// A name supplied by the client wins over the roster.
	_, err = f.coord.Join(ctx, registry.Connection{
		ID:            "c2",
		SessionID:     f.sessionID,
		ParticipantID: f.participants[1],
		DisplayName:   "Bob",
	})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	for _, conn := range f.coord.Online(f.sessionID) {
		if conn.ID == "c2" && conn.DisplayName != "Bob" {
			t.Errorf("display name = %q, want %q", conn.DisplayName, "Bob")
		}
	}
}

func TestConcurrentPicksForSamePlayer(t *testing.T) {
	f := newFixture(t, 2, 4, 60)
	ctx := context.Background()

	if err := f.coord.Start(ctx, f.sessionID); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Both participants race for the same player; the commit path admits
	// exactly one winner.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.coord.Pick(ctx, f.sessionID, f.participants[i], player("contested"))
		}(i)
	}
	wg.Wait()

	var successes, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, draft.ErrPlayerAlreadyDrafted):
			duplicates++
		}
	}
	// Participant 2 may instead lose on turn order depending on interleaving;
	// the invariant is that the player is committed at most once.
	if successes != 1 {
		t.Fatalf("%d picks succeeded for one player", successes)
	}
	picks, _ := f.store.ListPicks(ctx, f.sessionID)
	seen := make(map[string]int)
	for _, p := range picks {
		seen[p.Player.ID]++
	}
	if seen["contested"] > 1 {
		t.Fatal("player committed twice")
	}
}
