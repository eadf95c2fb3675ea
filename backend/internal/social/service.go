package social

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "friendnet/backend/pkg/errors"
	"friendnet/backend/pkg/logger"
)

// SearchLimit caps the number of results returned by Search.
const SearchLimit = 20

// Service is the friendship-graph engine. It owns every rule the graph must
// hold: username uniqueness, symmetric and irreflexive friendships, the
// no-delete-while-friended guard, and eager score recomputation after every
// edge or hobby change.
//
// Mutations are serialized through one write lock; reads take the read lock,
// so list/stats/projection always observe a consistent snapshot and never a
// half-applied link.
type Service struct {
	store Store
	proj  *Projector
	log   *zap.Logger

	mu sync.RWMutex
}

// NewService creates the engine on top of any Store backend.
func NewService(store Store, proj *Projector) *Service {
	if proj == nil {
		proj = NewProjector()
	}
	return &Service{
		store: store,
		proj:  proj,
		log:   logger.Get(),
	}
}

// ============================================================================
// Entity Operations
// ============================================================================

// CreateUser validates the input, assigns an id and creation time, and
// stores the user with an initial score of 0. The uniqueness check and the
// insert run under the same write lock, so two concurrent creations with the
// same username cannot both succeed.
func (s *Service) CreateUser(ctx context.Context, input UserInput) (*User, error) {
	if err := validateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := validateAge(input.Age); err != nil {
		return nil, err
	}
	hobbies, err := normalizeHobbies(input.Hobbies)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	taken, err := s.usernameTaken(ctx, input.Username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewDuplicateUsername(input.Username)
	}

	user := &User{
		ID:              uuid.NewString(),
		Username:        input.Username,
		Age:             input.Age,
		Hobbies:         hobbies,
		Friends:         []string{},
		CreatedAt:       time.Now().UTC(),
		PopularityScore: 0,
	}

	if err := s.store.Insert(ctx, user); err != nil {
		return nil, apperrors.NewStoreUnavailable("insert user", err)
	}

	s.log.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return user, nil
}

// GetUser returns a single user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getUser(ctx, id)
}

// UpdateUser applies a sparse update. A hobby change triggers a score
// recomputation for the edited user only: each friend's stored score keeps
// the overlap it was last computed with until that friend is next touched.
func (s *Service) UpdateUser(ctx context.Context, id string, update UserUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Username != nil && *update.Username != user.Username {
		if err := validateUsername(*update.Username); err != nil {
			return nil, err
		}
		taken, err := s.usernameTaken(ctx, *update.Username, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.NewDuplicateUsername(*update.Username)
		}
		user.Username = *update.Username
	}

	if update.Age != nil {
		if err := validateAge(*update.Age); err != nil {
			return nil, err
		}
		user.Age = *update.Age
	}

	hobbiesChanged := false
	if update.Hobbies != nil {
		hobbies, err := normalizeHobbies(*update.Hobbies)
		if err != nil {
			return nil, err
		}
		user.Hobbies = hobbies
		hobbiesChanged = true
	}

	if hobbiesChanged {
		if err := s.recompute(ctx, user, nil); err != nil {
			return nil, err
		}
	}

	if err := s.store.Save(ctx, user); err != nil {
		return nil, apperrors.NewStoreUnavailable("save user", err)
	}
	return user, nil
}

// CanDelete reports whether the user may be deleted, which requires an
// empty friend set.
func (s *Service) CanDelete(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, err := s.getUser(ctx, id)
	if err != nil {
		return false, err
	}
	return len(user.Friends) == 0, nil
}

// DeleteUser removes a friendless user. Users that still have friends must
// be unlinked first.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.getUser(ctx, id)
	if err != nil {
		return err
	}
	if len(user.Friends) > 0 {
		return apperrors.NewHasFriends(id, len(user.Friends))
	}

	if err := s.store.Remove(ctx, id); err != nil {
		return apperrors.NewStoreUnavailable("remove user", err)
	}

	s.log.Info("User deleted", zap.String("user_id", id))
	return nil
}

// ListUsers returns a consistent snapshot of every user.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listUsers(ctx)
}

// Search matches the query case-insensitively against usernames and hobby
// names, capped at SearchLimit results.
func (s *Service) Search(ctx context.Context, query string) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.listUsers(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	matches := []*User{}
	for _, u := range users {
		if matchesQuery(u, q) {
			matches = append(matches, u)
			if len(matches) == SearchLimit {
				break
			}
		}
	}
	return matches, nil
}

// RemoveHobby removes a single hobby from a user and recomputes that user's
// score.
func (s *Service) RemoveHobby(ctx context.Context, id, hobby string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	found := false
	hobbies := make([]string, 0, len(user.Hobbies))
	for _, h := range user.Hobbies {
		if h == hobby {
			found = true
			continue
		}
		hobbies = append(hobbies, h)
	}
	if !found {
		return nil, apperrors.NewValidation("hobby", fmt.Sprintf("user does not have hobby %q", hobby))
	}
	user.Hobbies = hobbies

	if err := s.recompute(ctx, user, nil); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, user); err != nil {
		return nil, apperrors.NewStoreUnavailable("save user", err)
	}
	return user, nil
}

// ============================================================================
// Relationship Operations
// ============================================================================

// Link creates a symmetric friendship between two users as one logical unit:
// both friend sets and both scores change together, or nothing changes.
func (s *Service) Link(ctx context.Context, aID, bID string) error {
	if aID == bID {
		return apperrors.NewSelfFriendship(aID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.getUser(ctx, aID)
	if err != nil {
		return err
	}
	b, err := s.getUser(ctx, bID)
	if err != nil {
		return err
	}

	aHasB, bHasA := a.HasFriend(bID), b.HasFriend(aID)
	if aHasB != bHasA {
		return apperrors.NewBrokenSymmetry(fmt.Sprintf("%s and %s disagree about their friendship", aID, bID))
	}
	if aHasB {
		return apperrors.NewAlreadyFriends(aID, bID)
	}

	a.Friends = append(a.Friends, bID)
	b.Friends = append(b.Friends, aID)

	if err := s.recomputePair(ctx, a, b); err != nil {
		return err
	}
	if err := s.savePair(ctx, a, b); err != nil {
		return err
	}

	s.log.Info("Friendship created",
		zap.String("user_id", aID),
		zap.String("friend_id", bID),
	)
	return nil
}

// Unlink removes a friendship, mirroring Link.
func (s *Service) Unlink(ctx context.Context, aID, bID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.getUser(ctx, aID)
	if err != nil {
		return err
	}
	b, err := s.getUser(ctx, bID)
	if err != nil {
		return err
	}

	aHasB, bHasA := a.HasFriend(bID), b.HasFriend(aID)
	if aHasB != bHasA {
		return apperrors.NewBrokenSymmetry(fmt.Sprintf("%s and %s disagree about their friendship", aID, bID))
	}
	if !aHasB {
		return apperrors.NewNotFriends(aID, bID)
	}

	a.Friends = removeID(a.Friends, bID)
	b.Friends = removeID(b.Friends, aID)

	if err := s.recomputePair(ctx, a, b); err != nil {
		return err
	}
	if err := s.savePair(ctx, a, b); err != nil {
		return err
	}

	s.log.Info("Friendship removed",
		zap.String("user_id", aID),
		zap.String("friend_id", bID),
	)
	return nil
}

// ============================================================================
// Read-side Derivations
// ============================================================================

// Project converts the current snapshot into the renderable node/edge view.
func (s *Service) Project(ctx context.Context) (GraphView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users, err := s.listUsers(ctx)
	if err != nil {
		return GraphView{}, err
	}
	return s.proj.Project(users), nil
}

// ============================================================================
// Internals
// ============================================================================

func (s *Service) getUser(ctx context.Context, id string) (*User, error) {
	user, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable("get user", err)
	}
	if user == nil {
		return nil, apperrors.NewUserNotFound(id)
	}
	return user, nil
}

func (s *Service) listUsers(ctx context.Context) ([]*User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable("list users", err)
	}
	return users, nil
}

func (s *Service) usernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	users, err := s.listUsers(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// recompute refreshes user.PopularityScore from the current friend records.
// overrides supplies in-flight records that the store has not seen yet, so a
// link's score math uses the post-mutation friend sets.
func (s *Service) recompute(ctx context.Context, user *User, overrides map[string]*User) error {
	friends := make([]*User, 0, len(user.Friends))
	for _, fid := range user.Friends {
		if o, ok := overrides[fid]; ok {
			friends = append(friends, o)
			continue
		}
		f, err := s.getUser(ctx, fid)
		if err != nil {
			return err
		}
		friends = append(friends, f)
	}
	user.PopularityScore = computeScore(user, friends)
	return nil
}

func (s *Service) recomputePair(ctx context.Context, a, b *User) error {
	overrides := map[string]*User{a.ID: a, b.ID: b}
	if err := s.recompute(ctx, a, overrides); err != nil {
		return err
	}
	return s.recompute(ctx, b, overrides)
}

// savePair persists both sides of an edge mutation. If the second write
// fails, the first is restored so readers never see an asymmetric edge.
func (s *Service) savePair(ctx context.Context, a, b *User) error {
	originalA, err := s.store.Get(ctx, a.ID)
	if err != nil {
		return apperrors.NewStoreUnavailable("get user", err)
	}
	if err := s.store.Save(ctx, a); err != nil {
		return apperrors.NewStoreUnavailable("save user", err)
	}
	if err := s.store.Save(ctx, b); err != nil {
		if originalA != nil {
			if rbErr := s.store.Save(ctx, originalA); rbErr != nil {
				s.log.Error("Rollback failed after partial edge write",
					zap.String("user_id", a.ID),
					zap.Error(rbErr),
				)
			}
		}
		return apperrors.NewStoreUnavailable("save user", err)
	}
	return nil
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func matchesQuery(u *User, q string) bool {
	if strings.Contains(strings.ToLower(u.Username), q) {
		return true
	}
	for _, h := range u.Hobbies {
		if strings.Contains(strings.ToLower(h), q) {
			return true
		}
	}
	return false
}

// ============================================================================
// Validation
// ============================================================================

const (
	usernameMinLen = 2
	usernameMaxLen = 50
	ageMin         = 13
	ageMax         = 120
	hobbyMaxLen    = 100
)

func validateUsername(username string) error {
	// limits are in characters, not bytes
	if n := utf8.RuneCountInString(username); n < usernameMinLen || n > usernameMaxLen {
		return apperrors.NewValidation("username", fmt.Sprintf("must be between %d and %d characters", usernameMinLen, usernameMaxLen))
	}
	return nil
}

func validateAge(age int) error {
	if age < ageMin || age > ageMax {
		return apperrors.NewValidation("age", fmt.Sprintf("must be between %d and %d", ageMin, ageMax))
	}
	return nil
}

// normalizeHobbies validates, deduplicates and sorts a hobby set so stored
// output is stable regardless of input order.
func normalizeHobbies(hobbies []string) ([]string, error) {
	seen := make(map[string]struct{}, len(hobbies))
	out := make([]string, 0, len(hobbies))
	for _, h := range hobbies {
		if h == "" {
			return nil, apperrors.NewValidation("hobbies", "hobby must not be empty")
		}
		if utf8.RuneCountInString(h) > hobbyMaxLen {
			return nil, apperrors.NewValidation("hobbies", fmt.Sprintf("hobby must be at most %d characters", hobbyMaxLen))
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Strings(out)
	return out, nil
}
