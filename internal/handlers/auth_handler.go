package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/seamarket/backend/internal/apperrors"
	"github.com/seamarket/backend/internal/models"
	"github.com/seamarket/backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// Mailer delivers transactional mail; satisfied by pkg/mailer.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	mailer         Mailer
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, mailer Mailer, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		mailer:         mailer,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers the unauthenticated auth routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/forgot-password", h.ForgotPassword)
}

// RegisterProtectedAuthRoutes registers the auth routes that require a session
func (h *AuthHandler) RegisterProtectedAuthRoutes(g *echo.Group) {
	g.GET("/logout", h.Logout)
	g.PATCH("/profile/password", h.ChangePassword)
}

// Register handles user registration with email and password
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Check if user with this email already exists
	if _, err := h.userRepository.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Email has already been registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	h.setSessionCookie(c, token, time.Now().Add(24*time.Hour))

	return c.JSON(http.StatusCreated, h.authResponse(user, token))
}

// Login authenticates with the account password or, as a fallback, the
// one-shot reset code issued by forgot-password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found, please sign up")
	}

	passwordOK := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) == nil
	resetOK := false
	if !passwordOK && user.ResetPass != "" {
		resetOK = bcrypt.CompareHashAndPassword([]byte(user.ResetPass), []byte(req.Password)) == nil
	}
	if !passwordOK && !resetOK {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	h.setSessionCookie(c, token, time.Now().Add(24*time.Hour))

	return c.JSON(http.StatusOK, h.authResponse(user, token))
}

// Logout expires the session cookie
func (h *AuthHandler) Logout(c echo.Context) error {
	h.setSessionCookie(c, "", time.Unix(0, 0))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"message": "Successfully logged out"}})
}

// ChangePassword replaces the password after verifying the old one or the
// reset code; using the code clears it.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}

	oldOK := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) == nil
	resetOK := false
	if !oldOK && user.ResetPass != "" {
		resetOK = bcrypt.CompareHashAndPassword([]byte(user.ResetPass), []byte(req.OldPassword)) == nil
	}
	if !oldOK && !resetOK {
		return echo.NewHTTPError(http.StatusBadRequest, "Old password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}
	user.Password = string(hashedPassword)
	if resetOK {
		user.ResetPass = ""
	}
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"message": "Password changed successfully"}})
}

// ForgotPassword issues a temporary 6-character code, stores its hash as a
// one-shot login credential and mails it to the account address.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User does not exist")
	}

	code, err := generateResetCode()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate reset code")
	}
	hashedCode, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash reset code")
	}
	user.ResetPass = string(hashedCode)
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	body := fmt.Sprintf(`
	<h2>Hello %s</h2>
	<p>Use this code as a temporary <b>password</b> to sign in to SeaMarket:</p>
	<h3>%s</h3>
	`, user.Name, code)
	if err := h.mailer.Send(user.Email, "SeaMarket password reset", body); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to send reset email")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"message": "Reset code sent"}})
}

func generateResetCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.New("entropy source unavailable")
	}
	return hex.EncodeToString(buf), nil
}

func (h *AuthHandler) authResponse(user *models.User, token string) models.AuthResponse {
	return models.AuthResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Photo:   user.Photo,
		Phone:   user.Phone,
		About:   user.About,
		Address: user.Address,
		Token:   token,
	}
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return "", err
	}
	return t, nil
}
