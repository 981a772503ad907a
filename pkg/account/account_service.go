package account

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"farmxchain/domain"
	"farmxchain/pkg/jwt"

	"github.com/gofiber/fiber/v2/log"
)

type (
	AccountService interface {
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error)
		GetUsers(ctx context.Context, token string) ([]domain.User, error)
		DeleteUser(ctx context.Context, token string, id int64) error
		UpdateRole(ctx context.Context, token string, id int64, role string) error
	}

	accountService struct {
		client     AccountClient
		jwtService jwt.JWTService

		mu    sync.RWMutex
		users map[int64]domain.User
	}
)

func NewAccountService(client AccountClient, jwtService jwt.JWTService) AccountService {
	return &accountService{
		client:     client,
		jwtService: jwtService,
		users:      make(map[int64]domain.User),
	}
}

func (s *accountService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, upstream, err := s.client.Login(ctx, req)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if !domain.IsKnownRole(user.Role) {
		return domain.LoginResponse{}, fmt.Errorf("%w: %q", domain.ErrInvalidRole, user.Role)
	}
	user.Role = domain.NormalizeRole(user.Role)
	user.Password = ""

	log.Infof("user %d logged in as %s", user.ID, user.Role)
	return domain.LoginResponse{
		User:  user,
		Token: s.jwtService.GenerateTokenUser(user, upstream),
	}, nil
}

func (s *accountService) Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error) {
	req.Role = domain.NormalizeRole(req.Role)
	if !slices.Contains(domain.AssignableRoles, req.Role) {
		return domain.User{}, fmt.Errorf("%w: %q", domain.ErrInvalidRole, req.Role)
	}
	return s.client.Register(ctx, req)
}

// GetUsers lists every account and remembers their roles for the admin guard.
func (s *accountService) GetUsers(ctx context.Context, token string) ([]domain.User, error) {
	users, err := s.client.ListUsers(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.users = make(map[int64]domain.User, len(users))
	for _, u := range users {
		s.users[u.ID] = u
	}
	s.mu.Unlock()
	return users, nil
}

func (s *accountService) DeleteUser(ctx context.Context, token string, id int64) error {
	if err := s.guardAdmin(ctx, token, id); err != nil {
		return err
	}
	if err := s.client.DeleteUser(ctx, token, id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.users, id)
	s.mu.Unlock()
	return nil
}

func (s *accountService) UpdateRole(ctx context.Context, token string, id int64, role string) error {
	role = domain.NormalizeRole(role)
	if !slices.Contains(domain.AssignableRoles, role) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRole, role)
	}
	if err := s.guardAdmin(ctx, token, id); err != nil {
		return err
	}
	if err := s.client.UpdateRole(ctx, token, id, role); err != nil {
		return err
	}

	s.mu.Lock()
	if u, ok := s.users[id]; ok {
		u.Role = role
		s.users[id] = u
	}
	s.mu.Unlock()
	return nil
}

// guardAdmin rejects changes to admin accounts before any mutating call is made.
// The user list is refreshed first so a recent promotion is seen.
func (s *accountService) guardAdmin(ctx context.Context, token string, id int64) error {
	if _, err := s.GetUsers(ctx, token); err != nil {
		return err
	}
	u, ok := s.cachedUser(id)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrUserNotFound, id)
	}
	if domain.NormalizeRole(u.Role) == domain.RoleAdmin {
		return domain.ErrAdminProtected
	}
	return nil
}

func (s *accountService) cachedUser(id int64) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}
