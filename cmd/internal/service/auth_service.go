package service

import (
	"fmt"
	"notifyflow/cmd/internal/contract"
	"notifyflow/cmd/internal/domain/entity"
	"notifyflow/cmd/internal/utils"
	"notifyflow/cmd/internal/utils/apierror"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 10

type AuthService struct {
	UserRepo UserRepository
	Validate *validator.Validate
	Audit    *AuditLogger
}

func NewAuthService(userRepo UserRepository, validate *validator.Validate, audit *AuditLogger) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Validate: validate,
		Audit:    audit,
	}
}

func (a *AuthService) Register(req *contract.RegisterRequest) (*contract.AuthResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, registerValidationError(err)
	}

	email := strings.ToLower(req.Email)
	exists, err := a.UserRepo.ExistsByEmail(email)
	if err != nil {
		log.Errorf("failed to check if email %s exists: %v", email, err)
		return nil, apierror.NewUnavailableError("register user")
	}

	if exists {
		return nil, apierror.EmailTakenError
	}

	total, err := a.UserRepo.Count()
	if err != nil {
		log.Errorf("failed to count users: %v", err)
		return nil, apierror.NewUnavailableError("register user")
	}

	// The very first account administers the platform
	role := entity.RoleUser
	if total == 0 {
		role = entity.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		log.Errorf("failed to hash password for %s: %v", email, err)
		return nil, apierror.NewUnavailableError("register user")
	}

	now := utils.NowUTC()
	user := &entity.User{
		Name:         req.Name,
		Email:        email,
		Role:         role,
		Active:       true,
		PasswordHash: string(hash),
		LastActiveAt: now,
		CreatedAt:    now,
	}

	if err := a.UserRepo.Save(user); err != nil {
		log.Errorf("failed to save user %s: %v", email, err)
		return nil, apierror.NewUnavailableError("register user")
	}

	a.Audit.Info(user.ID, entity.CategoryAuth, fmt.Sprintf("User registered: %s", email))
	return &contract.AuthResponse{User: toUserResponse(user)}, nil
}

func (a *AuthService) Login(req *contract.LoginRequest) (*contract.AuthResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err, "Email and password are required")
	}

	email := strings.ToLower(req.Email)
	user, err := a.UserRepo.FindByEmail(email)
	if err != nil {
		log.Errorf("failed to fetch user by email %s: %v", email, err)
		return nil, apierror.NewUnavailableError("log in")
	}

	if user == nil {
		return nil, apierror.CredentialsMismatchError
	}

	if !user.Active {
		return nil, apierror.AccountSuspendedError
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.CredentialsMismatchError
	}

	if err := a.UserRepo.TouchLastActive(user.ID, utils.NowUTC()); err != nil {
		log.Warnf("failed to touch last activity of user %d: %v", user.ID, err)
	}

	a.Audit.Info(user.ID, entity.CategoryAuth, fmt.Sprintf("User login: %s", user.Email))
	return &contract.AuthResponse{User: toUserResponse(user)}, nil
}

// Authenticate resolves the caller identified by the raw x-user-id header.
func (a *AuthService) Authenticate(rawID string) (*entity.User, apierror.ErrorResponse) {
	id := utils.ParseID(rawID)
	if id == 0 {
		return nil, apierror.MissingUserHeaderError
	}

	user, err := a.UserRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch session user %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.InvalidSessionUserError
	}

	if !user.Active {
		return nil, apierror.AccountSuspendedError
	}

	now := utils.NowUTC()
	if err := a.UserRepo.TouchLastActive(user.ID, now); err != nil {
		log.Warnf("failed to touch last activity of user %d: %v", user.ID, err)
	} else {
		user.LastActiveAt = now
	}
	return user, nil
}

func registerValidationError(err error) apierror.ErrorResponse {
	switch {
	case apierror.HasTag(err, "required"):
		return apierror.FromValidationError(err, "Name, email and password are required")
	case apierror.HasTag(err, "min"):
		return apierror.FromValidationError(err, "Password must be at least 6 characters")
	default:
		return apierror.FromValidationError(err, "Invalid registration data")
	}
}

func toUserResponse(user *entity.User) *contract.UserResponse {
	return &contract.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.EffectiveRole()),
	}
}
