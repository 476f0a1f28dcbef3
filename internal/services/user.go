package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/recharge-backend/internal/data/repos"
	types "github.com/yungbote/recharge-backend/internal/domain"
	"github.com/yungbote/recharge-backend/internal/platform/apierr"
	"github.com/yungbote/recharge-backend/internal/platform/dbctx"
	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

type UserInput struct {
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	ProfessionSlug *string `json:"profession_slug"`
}

type UserService interface {
	// Ensure returns the user registered under the email, creating it when
	// absent. A profession given on creation goes through SetProfession.
	Ensure(ctx context.Context, in UserInput) (*types.User, bool, error)
	Get(ctx context.Context, id uuid.UUID) (*types.User, error)
}

type UserServiceDeps struct {
	Log        *logger.Logger
	Users      repos.UserRepo
	Catalog    CatalogService
	Assignment AssignmentService
}

type userService struct {
	log        *logger.Logger
	users      repos.UserRepo
	catalog    CatalogService
	assignment AssignmentService
}

func NewUserService(deps UserServiceDeps) UserService {
	return &userService{
		log:        deps.Log.With("service", "UserService"),
		users:      deps.Users,
		catalog:    deps.Catalog,
		assignment: deps.Assignment,
	}
}

func (s *userService) Ensure(ctx context.Context, in UserInput) (*types.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, false, apierr.Invalid("invalid_email", "invalid email %q", in.Email)
	}
	slug := ""
	if in.ProfessionSlug != nil {
		slug = strings.TrimSpace(*in.ProfessionSlug)
	}
	dbc := dbctx.New(ctx)

	found, err := s.users.GetByEmail(dbc, email)
	if err != nil {
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}
	if found != nil {
		return found, false, nil
	}

	if slug != "" {
		if _, err := s.catalog.GetProfession(ctx, slug); err != nil {
			return nil, false, err
		}
	}
	u := &types.User{Email: email, Name: strings.TrimSpace(in.Name)}
	inserted, err := s.users.CreateIfAbsent(dbc, u)
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	if !inserted {
		// Another request created the same email first.
		again, err := s.users.GetByEmail(dbc, email)
		if err != nil || again == nil {
			return nil, false, fmt.Errorf("reload user %s: %w", email, err)
		}
		return again, false, nil
	}
	s.log.Info("user created", "user_id", u.ID)

	if slug != "" {
		if _, err := s.assignment.SetProfession(ctx, u.ID, slug); err != nil {
			return nil, false, err
		}
		return s.mustGet(ctx, u.ID)
	}
	return u, true, nil
}

func (s *userService) mustGet(ctx context.Context, id uuid.UUID) (*types.User, bool, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	u, err := s.users.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user_not_found", "unknown user %s", id)
	}
	return u, nil
}
