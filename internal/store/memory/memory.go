// Package memory is an in-process store used when no database is configured
// and by tests. Every method runs under one mutex, so multi-record updates
// (session finalize plus stats, symmetric friend edges) are atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/service"
)

type Store struct {
	mu sync.Mutex

	users     map[string]*domain.User
	userOrder []string

	decks     map[string]domain.Deck
	questions map[string][]domain.Question

	sessions     map[string]domain.GameSession
	sessionOrder []string

	invitations map[string]domain.FriendInvitation
	invOrder    []string

	tokens map[string]domain.DeviceToken
}

func New() *Store {
	return &Store{
		users:       make(map[string]*domain.User),
		decks:       make(map[string]domain.Deck),
		questions:   make(map[string][]domain.Question),
		sessions:    make(map[string]domain.GameSession),
		invitations: make(map[string]domain.FriendInvitation),
		tokens:      make(map[string]domain.DeviceToken),
	}
}

var (
	_ service.UsersStore        = (*Store)(nil)
	_ service.GameSessionsStore = (*Store)(nil)
	_ service.DecksStore        = (*Store)(nil)
	_ service.FriendshipsStore  = (*Store)(nil)
	_ service.DeviceTokensStore = (*Store)(nil)
)

// AddUser registers a user. Ids and emails are unique.
func (s *Store) AddUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		return domain.NewValidationError(map[string]string{"id": "required"})
	}
	if _, ok := s.users[u.ID]; ok {
		return domain.ErrConflict
	}
	for _, existing := range s.users {
		if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrConflict
		}
	}
	cp := cloneUser(u)
	s.users[u.ID] = &cp
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

// AddDeck registers a deck and its canonical questions.
func (s *Store) AddDeck(d domain.Deck, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[d.ID]; ok {
		return domain.ErrConflict
	}
	s.decks[d.ID] = d
	qs := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.DeckID = d.ID
		qs[i] = cloneQuestion(q)
	}
	s.questions[d.ID] = qs
	return nil
}

// UpsertUser inserts u, or replaces the profile fields of the user with the
// same id. Stats and friends are kept.
func (s *Store) UpsertUser(_ context.Context, u domain.User) (domain.User, error) {
	if u.ID == "" {
		return domain.User{}, domain.NewValidationError(map[string]string{"id": "required"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.users {
		if id != u.ID && u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
			return domain.User{}, domain.ErrConflict
		}
	}
	if existing, ok := s.users[u.ID]; ok {
		existing.Email = u.Email
		existing.Username = u.Username
		existing.DisplayName = u.DisplayName
		return cloneUser(*existing), nil
	}
	cp := domain.User{ID: u.ID, Email: u.Email, Username: u.Username, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
	s.users[u.ID] = &cp
	s.userOrder = append(s.userOrder, u.ID)
	return cloneUser(cp), nil
}

// CreateDeck is AddDeck with the store signature used by seeding.
func (s *Store) CreateDeck(_ context.Context, d domain.Deck, questions []domain.Question) error {
	if !d.Kind.Valid() {
		return domain.NewValidationError(map[string]string{"kind": "must be questions or cards"})
	}
	return s.AddDeck(d, questions)
}

// Users

func (s *Store) GetUserByID(_ context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return cloneUser(*u), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.TrimSpace(email)
	for _, id := range s.userOrder {
		if u := s.users[id]; strings.EqualFold(u.Email, email) {
			return cloneUser(*u), nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, cloneUser(*s.users[id]))
	}
	return out, nil
}

func (s *Store) ListUsersByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]domain.User, 0, len(want))
	for _, id := range s.userOrder {
		if _, ok := want[id]; ok {
			out = append(out, cloneUser(*s.users[id]))
		}
	}
	return out, nil
}

// Decks

func (s *Store) GetDeck(_ context.Context, deckID, ownerID string) (domain.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.decks[deckID]
	if !ok || d.OwnerID != ownerID {
		return domain.Deck{}, domain.ErrNotFound
	}
	return d, nil
}

func (s *Store) ListQuestions(_ context.Context, deckID string) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qs := s.questions[deckID]
	out := make([]domain.Question, len(qs))
	for i, q := range qs {
		out[i] = cloneQuestion(q)
	}
	return out, nil
}

// Game sessions

func (s *Store) GetPendingSession(_ context.Context, userID, deckID string) (domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gs, ok := s.pendingLocked(userID, deckID); ok {
		return gs, nil
	}
	return domain.GameSession{}, domain.ErrNotFound
}

func (s *Store) pendingLocked(userID, deckID string) (domain.GameSession, bool) {
	for _, id := range s.sessionOrder {
		gs := s.sessions[id]
		if gs.UserID == userID && gs.DeckID == deckID && gs.Status == domain.GameStatusPending {
			return gs, true
		}
	}
	return domain.GameSession{}, false
}

func (s *Store) CreateSession(_ context.Context, gs domain.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[gs.ID]; ok {
		return domain.ErrConflict
	}
	if gs.Status == domain.GameStatusPending {
		if _, ok := s.pendingLocked(gs.UserID, gs.DeckID); ok {
			return domain.ErrConflict
		}
	}
	s.sessions[gs.ID] = gs
	s.sessionOrder = append(s.sessionOrder, gs.ID)
	return nil
}

func (s *Store) FinalizeSession(_ context.Context, p service.FinalizeParams) (domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.sessions[p.SessionID]
	if !ok || gs.UserID != p.UserID || gs.Status != domain.GameStatusPending {
		return domain.GameSession{}, domain.ErrNoActiveSession
	}
	u, ok := s.users[p.UserID]
	if !ok {
		return domain.GameSession{}, domain.ErrNotFound
	}

	finishedAt := p.FinishedAt
	gs.Status = domain.GameStatusFinished
	gs.Score = p.Score
	gs.CorrectCount = p.CorrectCount
	gs.WrongCount = p.WrongCount
	gs.QuestionCount = p.QuestionCount
	gs.FinishedAt = &finishedAt
	s.sessions[gs.ID] = gs

	u.GamesPlayed++
	u.Points += int64(p.Score)
	var total time.Duration
	if u.StudyTime != nil {
		total = *u.StudyTime
	}
	total += p.StudyTime
	u.StudyTime = &total

	return gs, nil
}

func (s *Store) GetSession(_ context.Context, id string) (domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.sessions[id]
	if !ok {
		return domain.GameSession{}, domain.ErrNotFound
	}
	return gs, nil
}

// ListSessions returns newest first. An empty deckID lists every deck.
func (s *Store) ListSessions(_ context.Context, userID, deckID string) ([]domain.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.GameSession{}
	for i := len(s.sessionOrder) - 1; i >= 0; i-- {
		gs := s.sessions[s.sessionOrder[i]]
		if gs.UserID != userID || (deckID != "" && gs.DeckID != deckID) {
			continue
		}
		out = append(out, gs)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (s *Store) DeleteSessionsForUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.sessionOrder[:0]
	removed := 0
	for _, id := range s.sessionOrder {
		if s.sessions[id].UserID == userID {
			delete(s.sessions, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.sessionOrder = kept
	return removed, nil
}

// Friendships

func (s *Store) CreatePendingInvitation(_ context.Context, inv domain.FriendInvitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invitations[inv.ID]; ok {
		return domain.ErrConflict
	}
	for _, existing := range s.invitations {
		if existing.Status == domain.InvitationPending &&
			existing.SenderID == inv.SenderID && existing.RecipientID == inv.RecipientID {
			return domain.NewConflict(domain.ErrDuplicatePending)
		}
	}
	s.invitations[inv.ID] = inv
	s.invOrder = append(s.invOrder, inv.ID)
	return nil
}

func (s *Store) GetInvitation(_ context.Context, id string) (domain.FriendInvitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[id]
	if !ok {
		return domain.FriendInvitation{}, domain.ErrNotFound
	}
	return inv, nil
}

func (s *Store) ResolveInvitation(_ context.Context, id string, status domain.InvitationStatus, when time.Time) (domain.FriendInvitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[id]
	if !ok {
		return domain.FriendInvitation{}, domain.ErrNotFound
	}
	if inv.Status != domain.InvitationPending {
		return domain.FriendInvitation{}, domain.ErrConflict
	}

	if status == domain.InvitationAccepted {
		sender, ok1 := s.users[inv.SenderID]
		recipient, ok2 := s.users[inv.RecipientID]
		if !ok1 || !ok2 {
			return domain.FriendInvitation{}, domain.ErrNotFound
		}
		addFriend(sender, recipient.ID)
		addFriend(recipient, sender.ID)
	}

	respondedAt := when
	inv.Status = status
	inv.RespondedAt = &respondedAt
	s.invitations[id] = inv
	return inv, nil
}

func (s *Store) ListPendingReceived(_ context.Context, userID string) ([]domain.FriendInvitation, error) {
	return s.listPending(func(inv domain.FriendInvitation) bool { return inv.RecipientID == userID }), nil
}

func (s *Store) ListPendingSent(_ context.Context, userID string) ([]domain.FriendInvitation, error) {
	return s.listPending(func(inv domain.FriendInvitation) bool { return inv.SenderID == userID }), nil
}

func (s *Store) listPending(match func(domain.FriendInvitation) bool) []domain.FriendInvitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.FriendInvitation{}
	for _, id := range s.invOrder {
		inv := s.invitations[id]
		if inv.Status == domain.InvitationPending && match(inv) {
			out = append(out, inv)
		}
	}
	return out
}

func (s *Store) RemoveFriendship(_ context.Context, userID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if !u.HasFriend(friendID) {
		return domain.ErrNotFriends
	}
	removeFriend(u, friendID)
	if f, ok := s.users[friendID]; ok {
		removeFriend(f, userID)
	}
	return nil
}

// Device tokens

func (s *Store) UpsertDeviceToken(_ context.Context, t domain.DeviceToken) (domain.DeviceToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.tokens[t.Token]; ok {
		t.CreatedAt = existing.CreatedAt
	}
	s.tokens[t.Token] = t
	return t, nil
}

func (s *Store) DeleteDeviceToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.tokens[token]; ok && existing.UserID == userID {
		delete(s.tokens, token)
	}
	return nil
}

func (s *Store) ListDeviceTokens(_ context.Context, userID string) ([]domain.DeviceToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.DeviceToken
	for _, t := range s.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func addFriend(u *domain.User, id string) {
	if u.ID == id || u.HasFriend(id) {
		return
	}
	u.Friends = append(u.Friends, id)
}

func removeFriend(u *domain.User, id string) {
	kept := u.Friends[:0]
	for _, f := range u.Friends {
		if f != id {
			kept = append(kept, f)
		}
	}
	u.Friends = kept
}

func cloneUser(u domain.User) domain.User {
	if u.Friends != nil {
		u.Friends = append([]string(nil), u.Friends...)
	}
	if u.StudyTime != nil {
		d := *u.StudyTime
		u.StudyTime = &d
	}
	return u
}

func cloneQuestion(q domain.Question) domain.Question {
	q.CorrectAnswers = append([]string(nil), q.CorrectAnswers...)
	q.IncorrectAnswers = append([]string(nil), q.IncorrectAnswers...)
	return q
}
