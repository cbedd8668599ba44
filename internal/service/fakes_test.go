package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/techtimeoff/leave-service/internal/auth"
	"github.com/techtimeoff/leave-service/internal/config"
	"github.com/techtimeoff/leave-service/internal/domain"
	"github.com/techtimeoff/leave-service/internal/events"
	"github.com/techtimeoff/leave-service/internal/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
	seq   int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]domain.User{}}
}

func (r *memUserRepo) conflict(u *domain.User) error {
	for id, existing := range r.users {
		if id == u.ID {
			continue
		}
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
		if u.EmployeeID != nil && existing.EmployeeID != nil && *u.EmployeeID == *existing.EmployeeID {
			return repository.ErrDuplicateEmployeeID
		}
		if u.GoogleID != nil && existing.GoogleID != nil && *u.GoogleID == *existing.GoogleID {
			return repository.ErrDuplicateProviderID
		}
		if u.GitHubID != nil && existing.GitHubID != nil && *u.GitHubID == *existing.GitHubID {
			return repository.ErrDuplicateProviderID
		}
	}
	return nil
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(u); err != nil {
		return err
	}
	r.seq++
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := r.conflict(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *memUserRepo) GetByProviderID(_ context.Context, provider domain.AuthProvider, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool {
		p := u.ProviderID(provider)
		return p != nil && *p == id
	})
}

func (r *memUserRepo) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type memLeaveRepo struct {
	mu     sync.Mutex
	leaves map[string]domain.LeaveRequest
	seq    int
}

func newMemLeaveRepo() *memLeaveRepo {
	return &memLeaveRepo{leaves: map[string]domain.LeaveRequest{}}
}

func (r *memLeaveRepo) Create(_ context.Context, l *domain.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	l.UpdatedAt = l.CreatedAt
	r.leaves[l.ID] = *l
	return nil
}

func (r *memLeaveRepo) GetByID(_ context.Context, id string) (*domain.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r *memLeaveRepo) List(_ context.Context, f repository.LeaveFilter) ([]domain.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.LeaveRequest{}
	for _, l := range r.leaves {
		if f.UserID != nil && l.UserID != *f.UserID {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memLeaveRepo) UpdatePending(_ context.Context, l *domain.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.leaves[l.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != domain.LeaveStatusPending {
		return repository.ErrStatusConflict
	}
	l.UpdatedAt = time.Now()
	r.leaves[l.ID] = *l
	return nil
}

func (r *memLeaveRepo) Transition(_ context.Context, id string, from []domain.LeaveStatus, d domain.LeaveDecision) (*domain.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leaves[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	matched := false
	for _, s := range from {
		if l.Status == s {
			matched = true
		}
	}
	if !matched {
		return nil, repository.ErrStatusConflict
	}
	d.Apply(&l)
	l.UpdatedAt = time.Now()
	r.leaves[id] = l
	return &l, nil
}

type memHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.LeaveHistory
}

func (r *memHistoryRepo) Create(_ context.Context, e *domain.LeaveHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *memHistoryRepo) ListByLeave(_ context.Context, leaveID string) ([]domain.LeaveHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.LeaveHistory{}
	for _, e := range r.entries {
		if e.LeaveID == leaveID {
			out = append(out, e)
		}
	}
	return out, nil
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) handle(_ context.Context, e events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) types() []events.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]events.EventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	cfg      config.Config
	users    *memUserRepo
	leaves   *memLeaveRepo
	history  *memHistoryRepo
	events   *eventLog
	tokens   *auth.TokenManager
	identity *IdentityService
	auth     *AuthService
	leave    *LeaveService
}

func newFixture(opts ...func(*config.Config)) *fixture {
	cfg := config.Config{}
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.OAuth.FrontendURL = "http://front.test"
	for _, opt := range opts {
		opt(&cfg)
	}

	f := &fixture{
		cfg:     cfg,
		users:   newMemUserRepo(),
		leaves:  newMemLeaveRepo(),
		history: &memHistoryRepo{},
		events:  &eventLog{},
		tokens:  auth.NewTokenManager("test-secret", 60),
	}
	dispatcher := events.NewInMemoryDispatcher()
	for _, t := range events.LeaveEventTypes {
		dispatcher.Subscribe(t, f.events.handle)
	}

	f.identity = NewIdentityService(cfg, IdentityDependencies{UserRepo: f.users})
	f.auth = NewAuthService(f.identity, f.tokens)
	f.leave = NewLeaveService(cfg, LeaveDependencies{
		LeaveRepo:   f.leaves,
		HistoryRepo: f.history,
		UserRepo:    f.users,
		Dispatcher:  dispatcher,
	})
	return f
}

func (f *fixture) register(name, email string, role domain.Role) *domain.User {
	user, err := f.identity.Register(context.Background(), RegisterInput{
		Name: name, Email: email, Password: "secret1", Role: role,
	})
	if err != nil {
		panic(err)
	}
	return user
}

func actorOf(u *domain.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func strPtr(s string) *string { return &s }
