//go:build e2e

package settings_test

import (
	"fmt"
	"net/http"
	"testing"

	"aguamarket/internal/domain/user"
	reqdto "aguamarket/internal/handler/dto/request"
	"aguamarket/internal/handler/dto/response"
	"aguamarket/tests/common/authtest"
	"aguamarket/tests/common/builder"
	"aguamarket/tests/common/dbtest"
	"aguamarket/tests/common/httptest"
	"aguamarket/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const settingsURL = "/api/admin/settings"

type SettingsSuite struct {
	e2e.SharedSuite
}

func (s *SettingsSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestSettingsSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(SettingsSuite))
}

func (s *SettingsSuite) adminToken(t *testing.T) string {
	t.Helper()

	dbtest.CreateTestUser(t, s.DB, "admin@example.com", string(user.RoleAdmin))
	return authtest.LoginUser(t, s.Router, "admin@example.com", dbtest.TestPassword)
}

func (s *SettingsSuite) TestGetSettings() {
	s.Run("Normal case: Admin reads the schema defaults", func() {
		t := s.T()

		token := s.adminToken(t)
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, settingsURL, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp response.SettingsResponse
		_ = httptest.DecodeResponseBody(t, w.Body, &resp)
		require.Equal(t, int64(5), resp.BasePricePerLiterCents)
		require.Equal(t, 10.0, resp.CommissionPct)
		require.Equal(t, 20.0, resp.UrgencySurchargePct)
		require.Equal(t, 30, resp.OfferValidityMinutes)
		require.Equal(t, 240, resp.RequestTimeoutMinutes)
	})

	s.Run("Error case: Non-admin roles are rejected", func() {
		t := s.T()

		dbtest.CreateTestUser(t, s.DB, "provider@example.com", string(user.RoleProvider))
		token := authtest.LoginUser(t, s.Router, "provider@example.com", dbtest.TestPassword)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, settingsURL, nil, token)
		require.Equal(t, http.StatusForbidden, w.Code)
	})
}

func (s *SettingsSuite) TestUpdateSettings() {
	s.Run("Normal case: Patched pricing applies to new offers immediately", func() {
		t := s.T()

		token := s.adminToken(t)

		basePrice := int64(8)
		commission := 0.0
		patch := reqdto.UpdateSettingsRequest{
			BasePricePerLiterCents: &basePrice,
			CommissionPct:          &commission,
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPatch, settingsURL, patch, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp response.SettingsResponse
		_ = httptest.DecodeResponseBody(t, w.Body, &resp)
		require.Equal(t, int64(8), resp.BasePricePerLiterCents)
		require.Equal(t, 0.0, resp.CommissionPct)
		// Untouched fields keep their values.
		require.Equal(t, 30, resp.OfferValidityMinutes)

		dbtest.CreateTestUser(t, s.DB, "consumer@example.com", string(user.RoleConsumer))
		dbtest.CreateTestUser(t, s.DB, "provider@example.com", string(user.RoleProvider))
		consumerToken := authtest.LoginUser(t, s.Router, "consumer@example.com", dbtest.TestPassword)
		providerToken := authtest.LoginUser(t, s.Router, "provider@example.com", dbtest.TestPassword)

		createW := httptest.PerformRequest(t, s.Router, http.MethodPost, "/api/requests",
			builder.NewRequestBuilder().BuildCreateDTO(), consumerToken)
		require.Equal(t, http.StatusCreated, createW.Code, createW.Body.String())
		var created response.RequestResponse
		_ = httptest.DecodeResponseBody(t, createW.Body, &created)

		offerW := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf("/api/requests/%s/offers", created.ID.String()),
			builder.NewOfferBuilder().BuildSubmitDTO(), providerToken)
		require.Equal(t, http.StatusCreated, offerW.Code, offerW.Body.String())
		var offer response.OfferResponse
		_ = httptest.DecodeResponseBody(t, offerW.Body, &offer)

		// 1000 L at 8 cents/L with zero commission.
		require.Equal(t, int64(8000), offer.PriceCents)
	})

	s.Run("Error case: Out-of-range values return 422", func() {
		t := s.T()

		token := s.adminToken(t)

		commission := 150.0
		patch := reqdto.UpdateSettingsRequest{CommissionPct: &commission}
		w := httptest.PerformRequest(t, s.Router, http.MethodPatch, settingsURL, patch, token)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})
}
