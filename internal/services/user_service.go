package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenSigner issues session tokens after a successful login.
type TokenSigner interface {
	Issue(userID string, role domain.Role) (string, time.Time, error)
}

type UserService struct {
	Users  UserStore
	Tokens TokenSigner
	Now    func() time.Time
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      models.PublicUser `json:"user"`
}

func (s UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

// Register creates a USER account. Elevated roles are granted by an admin afterwards.
func (s UserService) Register(ctx context.Context, in RegisterInput) (models.PublicUser, error) {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Email = strings.ToLower(utils.TrimOrEmpty(in.Email))
	if in.Name == "" {
		return models.PublicUser{}, domain.ValidationError{Field: "name", Msg: "required"}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return models.PublicUser{}, domain.ValidationError{Field: "email", Msg: "invalid address"}
	}
	if len(in.Password) < 8 {
		return models.PublicUser{}, domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.PublicUser{}, err
	}
	now := s.now()
	u := models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        utils.TrimOrEmpty(in.Phone),
		PasswordHash: string(hash),
		Role:         string(domain.RoleUser),
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return models.PublicUser{}, err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "auth", "register", "user_id="+u.ID)
	return u.ToPublic(), nil
}

func (s UserService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(utils.TrimOrEmpty(email))
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return LoginResult{}, domain.UnauthorizedError{Msg: "wrong email or password"}
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, domain.UnauthorizedError{Msg: "wrong email or password"}
	}
	if !strings.EqualFold(u.Status, "active") {
		return LoginResult{}, domain.UnauthorizedError{Msg: "account is " + u.Status}
	}

	role, _ := domain.ParseRole(u.Role)
	token, exp, err := s.Tokens.Issue(u.ID, role)
	if err != nil {
		return LoginResult{}, err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "auth", "login", "user_id="+u.ID)
	return LoginResult{Token: token, ExpiresAt: exp, User: u.ToPublic()}, nil
}

func (s UserService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToPublic())
	}
	return out, nil
}

func (s UserService) UpdateRole(ctx context.Context, userID, role string) error {
	r, ok := domain.ParseRole(role)
	if !ok {
		return domain.ValidationError{Field: "role", Msg: "must be one of USER, HOST, SUPPORT, ADMIN"}
	}
	if err := s.Users.UpdateRole(ctx, userID, r, s.now()); err != nil {
		return err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "users", "update_role", "user_id="+userID+" role="+string(r))
	return nil
}
