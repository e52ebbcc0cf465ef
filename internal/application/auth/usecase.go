package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/puntoventa-api/internal/application/dto"
	"github.com/jhoicas/puntoventa-api/internal/domain"
	"github.com/jhoicas/puntoventa-api/internal/domain/entity"
	"github.com/jhoicas/puntoventa-api/internal/domain/repository"
	"github.com/jhoicas/puntoventa-api/pkg/jwt"
	"github.com/jhoicas/puntoventa-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase registro de equipos, gestión de usuarios y login.
type AuthUseCase struct {
	users  repository.UserRepository
	jwtCfg JWTConfig
	cost   int
	log    *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(users repository.UserRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{users: users, jwtCfg: jwtCfg, cost: bcrypt.DefaultCost, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *AuthUseCase) newUser(teamID, email, password, name, role string) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return nil, domain.NewValidationError("password", err.Error())
	}
	email = normalizeEmail(email)
	if strings.TrimSpace(name) == "" {
		name = email
	}
	now := time.Now()
	return &entity.User{
		ID:           uuid.New().String(),
		TeamID:       teamID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Register crea un equipo nuevo con quien se registra como admin y devuelve su token.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.LoginResponse, error) {
	user, err := uc.newUser(uuid.New().String(), in.Email, in.Password, in.Name, jwt.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("registro %s: %w", user.Email, err)
	}
	uc.log.Info().Str("team", user.TeamID).Str("user", user.ID).Msg("equipo registrado")
	return uc.session(user)
}

// Login verifica email/password y emite el JWT. Email desconocido y password errado dan el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, fmt.Errorf("cuenta inactiva: %w", domain.ErrForbidden)
	}
	return uc.session(user)
}

func (uc *AuthUseCase) session(user *entity.User) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.TeamID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: dto.UserFromEntity(user)}, nil
}

// CreateUser da de alta un integrante en el equipo del admin.
func (uc *AuthUseCase) CreateUser(ctx context.Context, teamID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.newUser(teamID, in.Email, in.Password, in.Name, in.Role)
	if err != nil {
		return nil, err
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("crear usuario %s: %w", user.Email, err)
	}
	uc.log.Info().Str("team", teamID).Str("user", user.ID).Str("role", user.Role).Msg("usuario creado")
	out := dto.UserFromEntity(user)
	return &out, nil
}

// ListUsers usuarios del equipo ordenados por email.
func (uc *AuthUseCase) ListUsers(ctx context.Context, teamID string, limit, offset int) ([]dto.UserResponse, error) {
	list, err := uc.users.ListByTeam(ctx, teamID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, dto.UserFromEntity(u))
	}
	return out, nil
}

// UpdateUser cambia nombre, rol, estado o password. Nadie cambia su propio rol ni se desactiva.
func (uc *AuthUseCase) UpdateUser(ctx context.Context, teamID, actorID, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.TeamID != teamID {
		return nil, fmt.Errorf("usuario %s: %w", id, domain.ErrNotFound)
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil && *in.Role != user.Role {
		if id == actorID {
			return nil, domain.NewValidationError("role", "no puede cambiar su propio rol")
		}
		user.Role = *in.Role
	}
	if in.Active != nil && *in.Active != user.Active {
		if id == actorID {
			return nil, domain.NewValidationError("active", "no puede desactivar su propia cuenta")
		}
		user.Active = *in.Active
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), uc.cost)
		if err != nil {
			return nil, domain.NewValidationError("password", err.Error())
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now()
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("team", teamID).Str("user", id).Str("by", actorID).Msg("usuario actualizado")
	out := dto.UserFromEntity(user)
	return &out, nil
}
