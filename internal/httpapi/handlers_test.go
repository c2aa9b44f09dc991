package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"equiptrack/backend/internal/cache"
	"equiptrack/backend/internal/domain"
	"equiptrack/backend/internal/service"
	"equiptrack/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, cache.NoopCheckoutCache{}, time.Minute)
	auth := NewAuthManager("test-secret-key", time.Hour, "123456", repo)

	return New(svc, auth, "*")
}

func doJSON(t *testing.T, api *API, method string, path string, token string, csrf string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", "", map[string]string{
		"username": "admin",
		"password": "admin123",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["access_token"] == "" || body["access_token"] == nil {
		t.Fatalf("expected access_token in response, got %v", body)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", "", map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCheckoutsRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkouts", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestCheckoutLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "staff", "staff123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/checkouts", token, csrf, domain.CheckoutCreateRequest{
		Items: []domain.CheckoutLine{
			{Barcode: "EQ-RADIO-01", Quantity: 3},
			{Barcode: "EQ-TRIPOD-01", Quantity: 1},
		},
		CheckedOutBy:      "Dana Field",
		CheckedOutByEmail: "dana@lab.example",
		Purpose:           "site survey",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create checkout expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var created domain.CheckoutResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	mb := created.Checkout.MasterBarcode
	if !domain.IsMasterBarcode(mb) {
		t.Fatalf("bad master barcode %q", mb)
	}
	if created.Checkout.TotalItems != 4 || created.Checkout.Status != domain.CheckoutStatusActive {
		t.Fatalf("bad created checkout: %+v", created.Checkout)
	}

	rec = doJSON(t, api, http.MethodGet, "/api/v1/checkouts/"+mb, token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get checkout expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	radioID := created.Checkout.Items[0].ItemID
	rec = doJSON(t, api, http.MethodPost, "/api/v1/checkouts/"+mb+"/returns", token, csrf, domain.ReturnRequest{
		ReturnType: domain.ReturnTypePartial,
		Items:      []domain.ReturnItemLine{{ItemID: radioID, Quantity: 2}},
		ReturnedBy: "Dana Field",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("partial return expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var returned domain.CheckoutResponse
	if err := json.NewDecoder(rec.Body).Decode(&returned); err != nil {
		t.Fatalf("decode return response: %v", err)
	}
	if returned.Checkout.Status != domain.CheckoutStatusPartialReturn {
		t.Fatalf("expected partial-return, got %s", returned.Checkout.Status)
	}
	if returned.Checkout.RemainingItems != 2 || len(returned.Checkout.ReturnHistory) != 1 {
		t.Fatalf("bad checkout after return: %+v", returned.Checkout)
	}

	// Replaying the original version must be rejected.
	rec = doJSON(t, api, http.MethodPost, "/api/v1/checkouts/"+mb+"/returns", token, csrf, domain.ReturnRequest{
		ReturnType: domain.ReturnTypeFull,
		Version:    created.Checkout.Version,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("stale version expected 409, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, api, http.MethodGet, "/api/v1/checkouts?status=partial-return", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d", rec.Code)
	}
	var listed domain.CheckoutListResponse
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed.Checkouts) != 1 || listed.Checkouts[0].MasterBarcode != mb {
		t.Fatalf("bad filtered list: %+v", listed.Checkouts)
	}
}

func TestMineFirstPromotesOwnCheckouts(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "staff", "staff123")
	csrf := fetchCSRFToken(t, api)

	// The seeded staff account carries staff@equiptrack.local, so the first
	// checkout belongs to the logged-in user and the second does not.
	rec := doJSON(t, api, http.MethodPost, "/api/v1/checkouts", token, csrf, domain.CheckoutCreateRequest{
		Items:             []domain.CheckoutLine{{Barcode: "EQ-TRIPOD-01", Quantity: 1}},
		CheckedOutBy:      "Staff Member",
		CheckedOutByEmail: "staff@equiptrack.local",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create own checkout expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/checkouts", token, csrf, domain.CheckoutCreateRequest{
		Items:             []domain.CheckoutLine{{Barcode: "EQ-CABLE-HDMI", Quantity: 2}},
		CheckedOutBy:      "Dana Field",
		CheckedOutByEmail: "dana@lab.example",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create other checkout expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, api, http.MethodGet, "/api/v1/checkouts?mine_first=true", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var listed domain.CheckoutListResponse
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed.Checkouts) != 2 {
		t.Fatalf("expected 2 checkouts, got %d", len(listed.Checkouts))
	}
	if listed.Checkouts[0].CheckedOutByEmail != "staff@equiptrack.local" {
		t.Fatalf("expected own checkout first, got %s", listed.Checkouts[0].CheckedOutByEmail)
	}
}

func TestGetCheckoutMalformedBarcode(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "staff", "staff123")

	rec := doJSON(t, api, http.MethodGet, "/api/v1/checkouts/not-a-barcode", token, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed barcode, got %d", rec.Code)
	}
}

func TestGetCheckoutUnknownBarcode(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "staff", "staff123")

	rec := doJSON(t, api, http.MethodGet, "/api/v1/checkouts/MCO-20260101-ZZZZZ", token, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown barcode, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateCheckoutInsufficientStockReturns409(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "staff", "staff123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/checkouts", token, csrf, domain.CheckoutCreateRequest{
		Items:        []domain.CheckoutLine{{Barcode: "EQ-CAM-01", Quantity: 999}},
		CheckedOutBy: "Dana Field",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for insufficient stock, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestItemCreateRequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	staffToken := loginAs(t, api, "staff", "staff123")
	csrf := fetchCSRFToken(t, api)

	payload := domain.ItemCreateRequest{Barcode: "EQ-NEW-01", Name: "New Gadget", Quantity: 5}
	rec := doJSON(t, api, http.MethodPost, "/api/v1/items", staffToken, csrf, payload)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff item create expected 403, got %d", rec.Code)
	}

	adminToken := loginAs(t, api, "admin", "admin123")
	rec = doJSON(t, api, http.MethodPost, "/api/v1/items", adminToken, csrf, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin item create expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestItemAdjustRequiresSupervisorPIN(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "admin", "admin123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/items/EQ-BATT-01/adjust", token, csrf, domain.ItemAdjustRequest{
		Delta:         -2,
		Reason:        "damaged",
		SupervisorPIN: "999999",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong pin expected 403, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/items/EQ-BATT-01/adjust", token, csrf, domain.ItemAdjustRequest{
		Delta:         -2,
		Reason:        "damaged",
		SupervisorPIN: "123456",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("adjust expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]domain.InventoryItem
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode adjust response: %v", err)
	}
	if body["item"].Quantity != 18 {
		t.Fatalf("expected quantity 18 after adjust, got %d", body["item"].Quantity)
	}
}

func TestReportsRequireAdmin(t *testing.T) {
	api := newTestAPI(t)
	staffToken := loginAs(t, api, "staff", "staff123")

	rec := doJSON(t, api, http.MethodGet, "/api/v1/reports/low-stock", staffToken, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff report access expected 403, got %d", rec.Code)
	}

	adminToken := loginAs(t, api, "admin", "admin123")
	rec = doJSON(t, api, http.MethodGet, "/api/v1/reports/low-stock", adminToken, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin low-stock report expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodGet, "/api/v1/reports/activity", adminToken, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin activity report expected 200, got %d", rec.Code)
	}
}

func TestAuditLogsListedForAdmin(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "admin", "admin123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/checkouts", token, csrf, domain.CheckoutCreateRequest{
		Items:        []domain.CheckoutLine{{Barcode: "EQ-LEVEL-01", Quantity: 1}},
		CheckedOutBy: "Dana Field",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create checkout expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodGet, "/api/v1/audit-logs", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit logs expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "checkout.create") {
		t.Fatalf("expected checkout.create audit entry, got %s", rec.Body.String())
	}
}

func TestStaffManagement(t *testing.T) {
	api := newTestAPI(t)
	token := loginAs(t, api, "admin", "admin123")
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/users/staff", token, csrf, domain.StaffCreateRequest{
		Username: "newstaff",
		Password: "changeme1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create staff expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, api, http.MethodGet, "/api/v1/users/staff", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list staff expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "newstaff") {
		t.Fatalf("expected newstaff in listing, got %s", rec.Body.String())
	}

	// The new account can log in right away.
	loginAs(t, api, "newstaff", "changeme1")
}

func loginAs(t *testing.T, api *API, username string, password string) string {
	t.Helper()

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", "", domain.LoginRequest{
		Username: username,
		Password: password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("%s login failed, status %d (body: %s)", username, rec.Code, rec.Body.String())
	}

	var payload domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response failed: %v", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		t.Fatalf("expected access token in login response")
	}
	return payload.AccessToken
}
