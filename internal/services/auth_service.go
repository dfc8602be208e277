package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"helpdesk/internal/auth"
	"helpdesk/internal/domain"
	"helpdesk/internal/domain/models"
	"helpdesk/internal/email"
	"helpdesk/internal/resetcode"
	"helpdesk/internal/utils"
)

type AuthService struct {
	Deps
	RequestID string
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

var errInvalidLogin = domain.UnauthorizedError{Msg: "invalid email or password", Module: domain.ModuleAuth}

func (s AuthService) tokens() (*auth.TokenService, error) {
	if s.Tokens == nil {
		return nil, errors.New("token service not configured")
	}
	return s.Tokens, nil
}

// Register creates a CLIENT account and signs it in.
func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.User, auth.TokenPair, error) {
	user, err := s.createUser(ctx, in, domain.RoleClient)
	if err != nil {
		return models.User{}, auth.TokenPair{}, err
	}
	tokens, err := s.tokens()
	if err != nil {
		return models.User{}, auth.TokenPair{}, err
	}
	pair, err := tokens.Issue(domain.Principal{ID: user.ID, Role: user.Role})
	if err != nil {
		return models.User{}, auth.TokenPair{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "register", fmt.Sprintf("user_id=%d", user.ID))
	return user, pair, nil
}

// CreateAgent is the admin path for staff accounts.
func (s AuthService) CreateAgent(ctx context.Context, in RegisterInput) (models.User, error) {
	user, err := s.createUser(ctx, in, domain.RoleAgent)
	if err != nil {
		return models.User{}, err
	}
	utils.LogEvent(s.RequestID, "auth", "create_agent", fmt.Sprintf("user_id=%d", user.ID))
	return user, nil
}

func (s AuthService) createUser(ctx context.Context, in RegisterInput, role domain.Role) (models.User, error) {
	addr := strings.ToLower(strings.TrimSpace(in.Email))
	if err := auth.CheckPasswordStrength(in.Password, s.PasswordMinScore, addr, in.FirstName, in.LastName); err != nil {
		return models.User{}, err
	}

	existing, err := s.users().FindByEmail(ctx, addr)
	if err != nil {
		return models.User{}, err
	}
	if existing != nil {
		return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already registered", Module: domain.ModuleAuth}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "failed to hash password", Err: err}
	}

	id, err := s.users().Create(ctx, map[string]any{
		"first_name": strings.TrimSpace(in.FirstName),
		"last_name":  strings.TrimSpace(in.LastName),
		"email":      addr,
		"password":   hash,
		"role":       string(role),
		"status":     string(domain.UserActive),
	})
	if err != nil {
		return models.User{}, err
	}
	user, err := s.users().FindByKey(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, domain.InternalError{Msg: "user vanished after insert"}
	}
	return *user, nil
}

// Login checks credentials and issues a token pair.
func (s AuthService) Login(ctx context.Context, addr, password string) (models.User, auth.TokenPair, error) {
	user, err := s.users().CredentialsByEmail(ctx, addr)
	if err != nil {
		return models.User{}, auth.TokenPair{}, err
	}
	if user == nil || !auth.CheckPassword(user.Password, password) {
		utils.LogWarn(s.RequestID, "auth", "login_failed", "email="+strings.ToLower(strings.TrimSpace(addr)))
		return models.User{}, auth.TokenPair{}, errInvalidLogin
	}
	if user.Status != domain.UserActive {
		return models.User{}, auth.TokenPair{}, domain.ForbiddenError{Msg: "account is not active", Module: domain.ModuleAuth}
	}
	tokens, err := s.tokens()
	if err != nil {
		return models.User{}, auth.TokenPair{}, err
	}
	pair, err := tokens.Issue(domain.Principal{ID: user.ID, Role: user.Role})
	if err != nil {
		return models.User{}, auth.TokenPair{}, err
	}
	user.Password = ""
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d", user.ID))
	return *user, pair, nil
}

// Me returns the caller's own profile.
func (s AuthService) Me(ctx context.Context, id domain.ID) (models.User, error) {
	user, err := s.users().FindByKey(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user == nil {
		return models.User{}, domain.NotFoundError{Resource: "user", Module: domain.ModuleUser}
	}
	return *user, nil
}

// Refresh trades a refresh token for a new access token carrying the user's
// current role, which may differ from the role at login.
func (s AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	tokens, err := s.tokens()
	if err != nil {
		return "", err
	}
	id, err := tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	user, err := s.users().FindByKey(ctx, id)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.UnauthorizedError{Msg: "user not found", Module: domain.ModuleAuth}
	}
	if user.Status != domain.UserActive {
		return "", domain.ForbiddenError{Msg: "account is not active", Module: domain.ModuleAuth}
	}
	return tokens.IssueAccess(domain.Principal{ID: user.ID, Role: user.Role})
}

// ForgotPassword emails a reset code. Unknown addresses succeed silently.
func (s AuthService) ForgotPassword(ctx context.Context, addr string) error {
	if s.Resets == nil {
		return errors.New("reset code store not configured")
	}
	user, err := s.users().FindByEmail(ctx, addr)
	if err != nil {
		return err
	}
	if user == nil {
		utils.LogWarn(s.RequestID, "auth", "forgot_password", "unknown email")
		return nil
	}

	code, err := resetcode.Generate()
	if err != nil {
		return domain.InternalError{Msg: "failed to generate reset code", Err: err}
	}
	if err := s.Resets.Put(ctx, user.Email, code, s.ResetCodeTTL); err != nil {
		return err
	}

	Notifier{Deps: s.Deps, RequestID: s.RequestID}.Mail(email.Message{
		To:      []string{user.Email},
		Subject: "Password reset code",
		Body: fmt.Sprintf("<p>Hello %s,</p><p>Your password reset code is <strong>%s</strong>. It expires in %s.</p>",
			utils.NormalizeSpace(user.FullName()), code, s.ResetCodeTTL),
	})
	utils.LogEvent(s.RequestID, "auth", "forgot_password", fmt.Sprintf("user_id=%d", user.ID))
	return nil
}

// ResetPassword sets a new password when code matches the pending one.
func (s AuthService) ResetPassword(ctx context.Context, addr, code, newPassword string) error {
	if s.Resets == nil {
		return errors.New("reset code store not configured")
	}
	if err := auth.CheckPasswordStrength(newPassword, s.PasswordMinScore, addr); err != nil {
		return err
	}
	ok, err := s.Resets.Consume(ctx, addr, strings.TrimSpace(code))
	if err != nil {
		return err
	}
	if !ok {
		return domain.ValidationError{Field: "code", Msg: "invalid or expired reset code"}
	}
	user, err := s.users().FindByEmail(ctx, addr)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NotFoundError{Resource: "user", Module: domain.ModuleAuth}
	}
	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "auth", "reset_password", fmt.Sprintf("user_id=%d", user.ID))
	return nil
}

// ChangePassword requires the current password.
func (s AuthService) ChangePassword(ctx context.Context, userID domain.ID, in ChangePasswordInput) error {
	if in.NewPassword != in.ConfirmPassword {
		return domain.ValidationError{Field: "confirm_password", Msg: "passwords do not match"}
	}
	user, err := s.users().CredentialsByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NotFoundError{Resource: "user", Module: domain.ModuleAuth}
	}
	if !auth.CheckPassword(user.Password, in.OldPassword) {
		return domain.ValidationError{Field: "old_password", Msg: "current password is incorrect"}
	}
	if err := auth.CheckPasswordStrength(in.NewPassword, s.PasswordMinScore, user.Email, user.FirstName, user.LastName); err != nil {
		return err
	}
	if err := s.setPassword(ctx, userID, in.NewPassword); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "auth", "change_password", fmt.Sprintf("user_id=%d", userID))
	return nil
}

func (s AuthService) setPassword(ctx context.Context, userID domain.ID, plain string) error {
	hash, err := auth.HashPassword(plain)
	if err != nil {
		return domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	return s.users().Update(ctx, userID, map[string]any{"password": hash})
}

// AdminSeed describes the bootstrap administrator.
type AdminSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// EnsureAdmin creates the bootstrap admin once. An empty email disables seeding.
func (s AuthService) EnsureAdmin(ctx context.Context, seed AdminSeed) error {
	if strings.TrimSpace(seed.Email) == "" {
		return nil
	}
	existing, err := s.users().FindByEmail(ctx, seed.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		utils.LogEvent(s.RequestID, "auth", "ensure_admin", "admin already present")
		return nil
	}
	if seed.Password == "" {
		return errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}
	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return err
	}
	id, err := s.users().Create(ctx, map[string]any{
		"first_name": seed.FirstName,
		"last_name":  seed.LastName,
		"email":      strings.ToLower(strings.TrimSpace(seed.Email)),
		"password":   hash,
		"role":       string(domain.RoleAdmin),
		"status":     string(domain.UserActive),
	})
	if err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "auth", "ensure_admin", fmt.Sprintf("created admin user_id=%d", id))
	return nil
}
