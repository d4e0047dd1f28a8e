package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursetrack-server-go/internal/features/user"
	"github.com/mo-amir99/coursetrack-server-go/internal/utils/jwt"
	"github.com/mo-amir99/coursetrack-server-go/pkg/response"
)

const contextUserKey = "user"

// AuthMiddleware holds dependencies for authentication middleware.
type AuthMiddleware struct {
	db        *gorm.DB
	jwtSecret string
	logger    *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(db *gorm.DB, jwtSecret string, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		db:        db,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// AuthenticateToken validates the bearer token, mirrors the identity into the users table
// and stores the user in the gin context.
func (m *AuthMiddleware) AuthenticateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.ensureAuthenticated(c); !ok {
			return
		}
		c.Next()
	}
}

// GetUserFromContext retrieves the authenticated user from the Gin context.
func GetUserFromContext(c *gin.Context) (*user.User, bool) {
	userVal, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}

	if usr, ok := userVal.(*user.User); ok && usr != nil {
		return usr, true
	}

	return nil, false
}

// SetUser stores an authenticated user in the context.
func SetUser(c *gin.Context, usr user.User) {
	c.Set(contextUserKey, &usr)
	c.Set("userId", usr.ID)
}

func (m *AuthMiddleware) ensureAuthenticated(c *gin.Context) (*user.User, bool) {
	if usr, ok := GetUserFromContext(c); ok {
		return usr, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "No token provided", nil)
		c.Abort()
		return nil, false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "No token provided", nil)
		c.Abort()
		return nil, false
	}

	claims, err := jwt.VerifyToken(token, m.jwtSecret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpiredToken):
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Token expired", err)
		default:
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Invalid token", err)
		}
		c.Abort()
		return nil, false
	}

	usr, err := user.Sync(c.Request.Context(), m.db, claims.UserID, claims.Username)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidIdentity), errors.Is(err, user.ErrUsernameRequired):
			response.ErrorWithLog(m.logger, c, http.StatusUnauthorized, "Invalid token payload", err)
		case errors.Is(err, user.ErrUsernameTaken):
			response.ErrorWithLog(m.logger, c, http.StatusConflict, "Username is already used by another account", err)
		default:
			response.ErrorWithLog(m.logger, c, http.StatusInternalServerError, "Internal Server Error", err)
		}
		c.Abort()
		return nil, false
	}

	SetUser(c, usr)
	return &usr, true
}
