package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asauntung/bumdes/internal/auth"
	"github.com/asauntung/bumdes/internal/ledger"
	"github.com/asauntung/bumdes/internal/logger"
	"github.com/asauntung/bumdes/internal/models"
	"github.com/asauntung/bumdes/internal/notify"
	"github.com/asauntung/bumdes/internal/repository/memory"
	"github.com/asauntung/bumdes/internal/services"
)

const password = "rahasia"

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	users, err := auth.NewDirectory(
		auth.Credential{Username: "direktur", Role: models.RoleDirector, PasswordHash: hash},
		auth.Credential{Username: "bendahara", Role: models.RoleTreasurer, PasswordHash: hash},
		auth.Credential{Username: "bendahara2", Role: models.RoleTreasurer, PasswordHash: hash},
	)
	require.NoError(t, err)

	mem := memory.New()
	store := ledger.NewStore(mem, logger.Discard())
	bus := notify.NewBus(4)

	r := NewRouter(RouterDeps{
		TM:      auth.NewTokenManager("a", "r", "bumdes-test", time.Minute, time.Hour),
		Users:   users,
		WF:      services.NewApprovalService(mem, store, bus, nil, logger.Discard()),
		Reports: services.NewReportService(store, 10, 50),
		OrgName: "BUMDESa Margajaya",
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

func (s *testServer) do(method, path, token string, body any, hdr ...string) *http.Response {
	s.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, s.srv.URL+path, rd)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	resp, err := s.srv.Client().Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, resp.StatusCode)
	var out struct {
		AccessToken string           `json:"access_token"`
		User        models.Principal `json:"user"`
	}
	decodeBody(s.t, resp, &out)
	require.NotEmpty(s.t, out.AccessToken)
	require.Equal(s.t, username, out.User.Username)
	return out.AccessToken
}

func (s *testServer) create(token string, typ models.TransactionType, amount int64, hdr ...string) (models.Transaction, *http.Response) {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/api/v1/transactions", token, map[string]any{
		"date":        "2025-01-02",
		"description": "Penjualan",
		"amount":      amount,
		"type":        typ,
		"category":    models.CatFoodSales,
	}, hdr...)
	var tx models.Transaction
	if resp.StatusCode == http.StatusCreated {
		decodeBody(s.t, resp, &tx)
	}
	return tx, resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp = s.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "direktur", "password": "salah"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	decodeBody(t, resp, &body)
	assert.Equal(t, "AUTHENTICATION_FAILED", body["code"])
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/dashboard", "", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/dashboard", "not-a-token", nil).StatusCode)
}

func TestApprovalFlow(t *testing.T) {
	s := newTestServer(t)
	dir := s.login("direktur")
	tre := s.login("bendahara")

	opening, resp := s.create(dir, models.TxnIncome, 1000000)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.TxnApproved, opening.Status)

	pending, resp := s.create(tre, models.TxnIncome, 200000)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.TxnPending, pending.Status)
	assert.Nil(t, pending.ApprovedBy)

	var dash services.Dashboard
	decodeBody(t, s.do(http.MethodGet, "/api/v1/dashboard", tre, nil), &dash)
	assert.Equal(t, int64(1000000), dash.Totals.Balance)

	// treasurers cannot approve
	resp = s.do(http.MethodPost, "/api/v1/transactions/"+itoa(pending.ID)+"/approve", tre, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/v1/transactions/pending", dir, nil)
	var queue struct {
		Items []models.Transaction `json:"items"`
		Count int                  `json:"count"`
	}
	decodeBody(t, resp, &queue)
	assert.Equal(t, 1, queue.Count)

	resp = s.do(http.MethodPost, "/api/v1/transactions/"+itoa(pending.ID)+"/approve", dir, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var approved models.Transaction
	decodeBody(t, resp, &approved)
	assert.Equal(t, models.TxnApproved, approved.Status)
	assert.Equal(t, "direktur", approved.Approver())

	// second approval is a state conflict
	resp = s.do(http.MethodPost, "/api/v1/transactions/"+itoa(pending.ID)+"/approve", dir, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var pub services.PublicSummary
	decodeBody(t, s.do(http.MethodGet, "/api/v1/public/summary", "", nil), &pub)
	assert.Equal(t, int64(1200000), pub.Totals.Balance)
	assert.Equal(t, 2, pub.ApprovedCount)
}

func TestRejectAndDelete(t *testing.T) {
	s := newTestServer(t)
	dir := s.login("direktur")
	tre := s.login("bendahara")
	tre2 := s.login("bendahara2")

	a, _ := s.create(tre, models.TxnExpense, 5000)
	b, _ := s.create(tre, models.TxnExpense, 7000)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/v1/transactions/"+itoa(a.ID)+"/reject", tre, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/api/v1/transactions/"+itoa(a.ID)+"/reject", dir, nil).StatusCode)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/v1/transactions/"+itoa(a.ID)+"/reject", dir, nil).StatusCode)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/api/v1/transactions/"+itoa(b.ID), tre2, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/transactions/"+itoa(b.ID), tre, nil).StatusCode)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/api/v1/transactions/abc", dir, nil).StatusCode)
}

func TestCreate_Validation(t *testing.T) {
	s := newTestServer(t)
	tre := s.login("bendahara")

	_, resp := s.create(tre, models.TxnIncome, 0)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body struct {
		Code    string `json:"code"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "amount", body.Details[0].Field)

	resp = s.do(http.MethodPost, "/api/v1/transactions", tre, map[string]any{"date": "2025-01-02", "bogus": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreate_IdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	tre := s.login("bendahara")

	a, _ := s.create(tre, models.TxnIncome, 10, "Idempotency-Key", "abc-123")
	b, _ := s.create(tre, models.TxnIncome, 10, "Idempotency-Key", "abc-123")
	assert.Equal(t, a.ID, b.ID)

	c, _ := s.create(s.login("bendahara2"), models.TxnIncome, 10, "Idempotency-Key", "abc-123")
	assert.NotEqual(t, a.ID, c.ID)

	var queue struct {
		Count int `json:"count"`
	}
	decodeBody(t, s.do(http.MethodGet, "/api/v1/transactions/pending", tre, nil), &queue)
	assert.Equal(t, 1, queue.Count)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	dir := s.login("direktur")
	s.create(dir, models.TxnIncome, 1000000)

	resp := s.do(http.MethodGet, "/api/v1/book/export.csv", dir, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), `attachment; filename="BKU_BUMDESa_Margajaya_`))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Tanggal,No. Bukti"))
	assert.True(t, strings.HasSuffix(lines[1], ",1000000,0,1000000,direktur,direktur"))
}

func TestRefresh(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "bendahara", "password": password})
	var out struct {
		RefreshToken string `json:"refresh_token"`
	}
	decodeBody(t, resp, &out)

	resp = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": out.RefreshToken})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
