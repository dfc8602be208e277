package handlers

import (
	"net/http"
	"time"

	"helpdesk/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	refreshCookie       = "jwt"
	maxRefreshCookieAge = 7 * 24 * time.Hour
)

type registerRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

func (r registerRequest) input() services.RegisterInput {
	return services.RegisterInput{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Password: r.Password}
}

func (a *API) setRefreshCookie(c *gin.Context, token string, ttl time.Duration) {
	if ttl > maxRefreshCookieAge {
		ttl = maxRefreshCookieAge
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     a.CookiePath,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.SecureCookies,
		SameSite: http.SameSiteNoneMode,
	})
}

func (a *API) clearRefreshCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     a.CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.SecureCookies,
		SameSite: http.SameSiteNoneMode,
	})
}

// POST /api/v1/auth/register
func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, pair, err := a.authSvc(c).Register(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	a.setRefreshCookie(c, pair.RefreshToken, a.Deps.Tokens.RefreshTTL())
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"data":    gin.H{"accessToken": pair.AccessToken, "user": user},
	})
}

// POST /api/v1/auth/create-agent
func (a *API) CreateAgent(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := a.authSvc(c).CreateAgent(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Agent created successfully", "data": user})
}

// POST /api/v1/auth/login
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, pair, err := a.authSvc(c).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	a.setRefreshCookie(c, pair.RefreshToken, a.Deps.Tokens.RefreshTTL())
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data":    gin.H{"accessToken": pair.AccessToken, "user": user},
	})
}

// GET /api/v1/auth/users/me
func (a *API) Me(c *gin.Context) {
	user, err := a.authSvc(c).Me(c.Request.Context(), principal(c).ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// POST /api/v1/auth/token trades the refresh cookie for a new access token.
func (a *API) Token(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	access, err := a.authSvc(c).Refresh(c.Request.Context(), token)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

// POST /api/v1/auth/logout
func (a *API) Logout(c *gin.Context) {
	a.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// POST /api/v1/auth/forgot-password
func (a *API) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := a.authSvc(c).ForgotPassword(c.Request.Context(), req.Email); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset code has been sent"})
}

// POST /api/v1/auth/reset-password
func (a *API) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := a.authSvc(c).ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// POST /api/v1/auth/change-password
func (a *API) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	err := a.authSvc(c).ChangePassword(c.Request.Context(), principal(c).ID, services.ChangePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

