package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoscribe/backend/internal/auth"
	"github.com/echoscribe/backend/pkg/response"
)

func newJWTRouter(svc *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWT(svc))
	router.GET("/whoami", func(c *gin.Context) {
		userID := c.MustGet(auth.ContextUserID).(uuid.UUID)
		email := c.MustGet(auth.ContextUserEmail).(string)
		response.OK(c, gin.H{"user_id": userID.String(), "email": email})
	})
	return router
}

func TestJWTMiddlewareSetsUserContext(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()
	token, err := svc.Generate(userID, "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	newJWTRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.String())
	assert.Contains(t, rec.Body.String(), "user@example.com")
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	newJWTRouter(auth.NewJWTService("test-secret", 1)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareRejectsMalformedScheme(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 1)
	token, err := svc.Generate(uuid.New(), "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token "+token)
	rec := httptest.NewRecorder()
	newJWTRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
