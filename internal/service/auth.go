package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const signupMessage = "User registered successfully!"

type AuthService struct {
	Repo      *repo.GormRepo
	Events    mykafka.Publisher
	Denylist  tokens.Denylist
	JWTSecret []byte
	TokenTTL  time.Duration
}

type SigninResult struct {
	Token  string
	Claims *tokens.AccessClaims
	User   transport.UserView
}

// RoleNames maps the roles a signup asks for to stored role names. Unknown
// or missing roles give a plain user.
func RoleNames(requested []string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, r := range requested {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "admin":
			add(models.RoleAdmin)
		case "seller":
			add(models.RoleSeller)
		default:
			add(models.RoleUser)
		}
	}
	if len(out) == 0 {
		add(models.RoleUser)
	}
	return out
}

func (s *AuthService) Signup(ctx context.Context, req transport.SignupRequest) (*transport.AuthMessageResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrInvalidArgument)
	}

	taken, err := s.Repo.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: Username %s is already taken", ErrConflict, username)
	}
	taken, err = s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: Email %s is already taken", ErrConflict, email)
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	roles, err := s.Repo.RolesByName(ctx, RoleNames(req.Roles))
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        roles,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return nil, orConflict(err, "Username %s is already taken", username)
	}

	publish(ctx, s.Events, mykafka.TopicUser, strconv.FormatUint(uint64(user.ID), 10), mykafka.UserEvent{
		Type:     mykafka.EventUserRegistered,
		UserID:   user.ID,
		Username: user.Username,
		At:       time.Now().UTC(),
	})

	return &transport.AuthMessageResponse{ID: user.ID, Message: signupMessage}, nil
}

func (s *AuthService) Signin(ctx context.Context, req transport.SigninRequest) (*SigninResult, error) {
	user, err := s.Repo.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: Invalid username or password", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: Invalid username or password", ErrUnauthenticated)
	}

	token, claims, err := tokens.NewAccessToken(s.JWTSecret, user.Username, user.RoleNames(), time.Now().Add(s.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &SigninResult{Token: token, Claims: claims, User: transport.ToUserView(*user)}, nil
}

func (s *AuthService) AccountDetails(ctx context.Context, userID uint) (*transport.UserView, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, orNotFound(err, "User not found with id: %d", userID)
	}
	v := transport.ToUserView(*user)
	return &v, nil
}

// Logout revokes the token until its own expiry.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.AccessClaims) error {
	if claims == nil || claims.ID == "" || s.Denylist == nil {
		return nil
	}
	until := time.Now().Add(s.TokenTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.Denylist.Revoke(ctx, claims.ID, until)
}

// ResolveUser turns a token subject into a user id and the user's current roles.
func (s *AuthService) ResolveUser(ctx context.Context, username string) (uint, []string, error) {
	user, err := s.Repo.GetUserByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil, fmt.Errorf("%w: user %s no longer exists", ErrUnauthenticated, username)
	}
	if err != nil {
		return 0, nil, err
	}
	return user.ID, user.RoleNames(), nil
}
