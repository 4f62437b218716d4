package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/gatovet/clinic-api/internal/model"
	authService "github.com/gatovet/clinic-api/internal/service/auth"
	"github.com/gatovet/clinic-api/pkg/httputil"
)

const (
	ContextProfileID = "profileID"
	ContextRole      = "role"
)

type AuthMiddleware struct {
	authSvc *authService.Service
	// Short-lived cache of profiles; role changes take effect within the TTL.
	profiles *gocache.Cache
}

func NewAuthMiddleware(authSvc *authService.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authSvc:  authSvc,
		profiles: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Authenticate verifies the JWT token and sets the profile info in context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := m.authenticate(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("unauthorized"))
			return
		}
		c.Set(ContextProfileID, profile.ID.String())
		c.Set(ContextRole, string(profile.Role))
		c.Next()
	}
}

// AuthenticateLegacy guards the original upload/delete endpoints, which keep
// their historical error shape.
func (m *AuthMiddleware) AuthenticateLegacy() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := m.authenticate(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			return
		}
		c.Set(ContextProfileID, profile.ID.String())
		c.Set(ContextRole, string(profile.Role))
		c.Next()
	}
}

// RequireRole allows only callers whose profile holds one of the given roles
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := model.Role(c.GetString(ContextRole))
		for _, role := range roles {
			if current == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, httputil.NewErrorResponse("permission denied"))
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*model.Profile, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := m.authSvc.ValidateToken(c.Request.Context(), parts[1])
	if err != nil {
		return nil, false
	}

	if cached, ok := m.profiles.Get(claims.ProfileID.String()); ok {
		return cached.(*model.Profile), true
	}

	profile, err := m.authSvc.GetProfile(c.Request.Context(), claims.ProfileID)
	if err != nil {
		return nil, false
	}
	m.profiles.Set(profile.ID.String(), profile, gocache.DefaultExpiration)

	return profile, true
}

// ProfileID returns the authenticated caller's profile id from context.
func ProfileID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(ContextProfileID))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
