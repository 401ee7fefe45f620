//go:build unit || e2e

package authtest

import (
	"net/http"
	"testing"

	reqdto "aguamarket/internal/handler/dto/request"
	resdto "aguamarket/internal/handler/dto/response"
	commonhttp "aguamarket/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// logs a user in through the API and returns the bearer token
func LoginUser(t *testing.T, router *gin.Engine, email, password string) string {
	t.Helper()

	w := commonhttp.PerformRequest(t, router, http.MethodPost, "/api/auth/login",
		reqdto.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp resdto.LoginResponse
	_ = commonhttp.DecodeResponseBody(t, w.Body, &resp)
	require.NotEmpty(t, resp.AccessToken, "login should return an access token")

	return resp.AccessToken
}

// registers a fresh user through the API and returns their login token
func RegisterAndLogin(t *testing.T, router *gin.Engine, email, password, role string) string {
	t.Helper()

	w := commonhttp.PerformRequest(t, router, http.MethodPost, "/api/auth/register",
		reqdto.RegisterRequest{Email: email, Password: password, Role: role}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return LoginUser(t, router, email, password)
}
