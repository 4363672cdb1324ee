package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/winwai-raffle-backend/internal/middleware"
	"github.com/ArowuTest/winwai-raffle-backend/internal/models"
	"github.com/ArowuTest/winwai-raffle-backend/internal/repositories/memory"
	"github.com/ArowuTest/winwai-raffle-backend/internal/services"
	"github.com/ArowuTest/winwai-raffle-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	tokens map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := memory.New()
	require.NoError(t, store.Partners().Create(ctx, &models.Partner{ID: "p1", Name: "Siam Spa"}))
	for _, u := range []models.User{
		{ID: "u1", Name: "Nok", Tickets: 100, Role: jwt.RoleUser},
		{ID: "u2", Name: "Ploy", Tickets: 5, Role: jwt.RoleUser},
		{ID: "admin", Name: "Ops", Role: jwt.RoleAdmin},
	} {
		user := u
		require.NoError(t, store.Users().Create(ctx, &user))
	}

	tokenService := jwt.NewTokenService("handler-test", time.Hour)
	tokens := map[string]string{}
	for id, role := range map[string]string{"u1": jwt.RoleUser, "u2": jwt.RoleUser, "admin": jwt.RoleAdmin} {
		token, err := tokenService.Issue(id, "", role)
		require.NoError(t, err)
		tokens[id] = token
	}

	raffleService := services.NewRaffleService(store.Raffles(), store.Entries(), store.Partners(), nil, 3)
	entryService := services.NewEntryService(store.Raffles(), store.Entries(), store.Users())
	voucherService := services.NewVoucherService(store.Vouchers(), store.Winners())
	drawService := services.NewDrawService(
		store.Raffles(), store.Entries(), store.Vouchers(), store.Winners(), store.Users(), store.Partners(), nil,
	)

	raffleHandler := NewRaffleHandler(raffleService, voucherService)
	entryHandler := NewEntryHandler(entryService)
	userHandler := NewUserHandler(services.NewUserService(store.Users()), voucherService)
	drawHandler := NewDrawHandler(drawService)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/raffles", raffleHandler.ListRaffles)
	api.GET("/raffles/:id", raffleHandler.GetRaffle)
	api.GET("/raffles/:id/stats", raffleHandler.GetRaffleStats)
	api.GET("/raffles/:id/winners", raffleHandler.GetRaffleWinners)

	authed := api.Group("/", middleware.JWTAuthMiddleware(tokenService))
	authed.POST("/raffles/:id/entries", entryHandler.EnterRaffle)
	authed.GET("/users/me", userHandler.GetMe)
	authed.GET("/users/me/entries", entryHandler.GetMyEntries)
	authed.GET("/users/me/vouchers", userHandler.GetMyVouchers)
	authed.GET("/users/me/winnings", userHandler.GetMyWinnings)
	authed.GET("/vouchers/:id", userHandler.GetVoucher)

	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.POST("/raffles", raffleHandler.CreateRaffle)
	admin.PUT("/raffles/:id/prize", raffleHandler.UpdatePrizeTerms)
	admin.POST("/raffles/:id/secret-codes", raffleHandler.AddSecretCodes)
	admin.POST("/raffles/:id/cancel", raffleHandler.CancelRaffle)
	admin.POST("/raffles/:id/evaluate", drawHandler.EvaluateOne)
	admin.POST("/raffles/:id/draw", drawHandler.DrawAll)
	admin.POST("/draws/run", drawHandler.RunDue)

	return &testServer{router: r, store: store, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, as string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[as])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *testServer) createRaffle(t *testing.T, digital bool) models.Raffle {
	t.Helper()
	body := gin.H{
		"title":           "Spa day",
		"partnerId":       "p1",
		"prizeValue":      500,
		"currency":        "THB",
		"gamePrice":       20,
		"drawDate":        time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"prizesAvailable": 1,
		"isDigitalPrize":  digital,
	}
	if digital {
		body["secretCodes"] = []string{"CODE-1"}
	}
	w := s.do(t, http.MethodPost, "/api/v1/admin/raffles", "admin", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var raffle models.Raffle
	decode(t, w, &raffle)
	return raffle
}

func TestCreateRaffleRequiresAdmin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/admin/raffles", "u1", gin.H{"title": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/raffles", "", gin.H{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/raffles", "admin", gin.H{"title": "missing fields"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/raffles", "admin", gin.H{
		"title": "Unknown partner", "partnerId": "nobody", "drawDate": time.Now().Format(time.RFC3339), "prizesAvailable": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRaffleLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	raffle := s.createRaffle(t, true)
	assert.Equal(t, models.DrawStatusPending, raffle.DrawStatus)
	assert.InDelta(t, 14, raffle.PrizeValueUSD, 1e-9)

	// public reads
	w := s.do(t, http.MethodGet, "/api/v1/raffles", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Raffle
	decode(t, w, &listed)
	assert.Len(t, listed, 1)

	w = s.do(t, http.MethodGet, "/api/v1/raffles/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// entries
	w = s.do(t, http.MethodPost, "/api/v1/raffles/"+raffle.ID+"/entries", "u1", gin.H{"tickets": 20})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/raffles/"+raffle.ID+"/entries", "u2", gin.H{"tickets": 50})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/raffles/missing/entries", "u1", gin.H{"tickets": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/raffles/"+raffle.ID+"/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.RaffleStats
	decode(t, w, &stats)
	assert.Equal(t, 100.0, stats.ProgressPercentage)
	assert.Equal(t, models.DrawStatusEligible, stats.DrawStatus)
	assert.True(t, stats.Eligibility.ThresholdMet)
	assert.False(t, stats.Eligibility.MinimumWaitMet)

	// scheduled evaluation is gated, manual draw is not
	w = s.do(t, http.MethodPost, "/api/v1/admin/raffles/"+raffle.ID+"/evaluate", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var outcome models.DrawOutcome
	decode(t, w, &outcome)
	assert.Equal(t, models.OutcomeSkipped, outcome.Kind)

	w = s.do(t, http.MethodPost, "/api/v1/admin/raffles/"+raffle.ID+"/draw", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var drawResult struct {
		Drawn    int                  `json:"drawn"`
		Outcomes []models.DrawOutcome `json:"outcomes"`
	}
	decode(t, w, &drawResult)
	require.Equal(t, 1, drawResult.Drawn)
	voucherID := drawResult.Outcomes[0].VoucherID

	// the winner sees the voucher and its code, nobody else does
	w = s.do(t, http.MethodGet, "/api/v1/users/me/vouchers", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var vouchers []models.Voucher
	decode(t, w, &vouchers)
	require.Len(t, vouchers, 1)
	assert.Equal(t, "CODE-1", vouchers[0].SecretCode)

	w = s.do(t, http.MethodGet, "/api/v1/vouchers/"+voucherID, "u2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/vouchers/"+voucherID, "admin", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/raffles/"+raffle.ID+"/winners", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var winners []models.Winner
	decode(t, w, &winners)
	require.Len(t, winners, 1)
	assert.Equal(t, "u1", winners[0].UserID)

	// exhausted raffle no longer takes entries or draws
	w = s.do(t, http.MethodPost, "/api/v1/raffles/"+raffle.ID+"/entries", "u1", gin.H{"tickets": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/admin/raffles/"+raffle.ID+"/draw", "admin", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/admin/raffles/"+raffle.ID+"/cancel", "admin", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminRaffleMaintenance(t *testing.T) {
	s := newTestServer(t)
	raffle := s.createRaffle(t, true)

	w := s.do(t, http.MethodPost, "/api/v1/admin/raffles/"+raffle.ID+"/secret-codes", "admin", gin.H{"codes": []string{"CODE-1", "CODE-2"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var codes struct {
		TotalCodes     int `json:"totalCodes"`
		AvailableCodes int `json:"availableCodes"`
	}
	decode(t, w, &codes)
	assert.Equal(t, 2, codes.TotalCodes)
	assert.Equal(t, 2, codes.AvailableCodes)

	w = s.do(t, http.MethodPut, "/api/v1/admin/raffles/"+raffle.ID+"/prize", "admin", gin.H{"prizeValue": 100, "currency": "USD"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Raffle
	decode(t, w, &updated)
	assert.InDelta(t, 100, updated.PrizeValueUSD, 1e-9)

	w = s.do(t, http.MethodPost, "/api/v1/admin/raffles/"+raffle.ID+"/cancel", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/raffles/"+raffle.ID+"/entries", "u1", gin.H{"tickets": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/draws/run", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report models.DrawReport
	decode(t, w, &report)
	assert.Empty(t, report.Processed)

	w = s.do(t, http.MethodPost, "/api/v1/admin/raffles/missing/evaluate", "admin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserSelfEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/users/me", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decode(t, w, &me)
	assert.Equal(t, 100, me.Tickets)

	w = s.do(t, http.MethodGet, "/api/v1/users/me/entries?limit=abc", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/users/me/winnings", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
