//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

// Admin coupons created here are inactive so they cannot leak into the
// recommendation and validation tests, which assert on the seeded set.

type adminCoupon struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Kind   string `json:"type"`
	Active bool   `json:"active"`
}

func doJSONWithAuth(t *testing.T, method, path string, body any, apiKey string) *http.Response {
	t.Helper()

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", apiKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	return resp
}

func TestAdminCoupons_NoAuth(t *testing.T) {
	resp := doGet(t, "/api/admin/coupons")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminCoupons_Lifecycle(t *testing.T) {
	create := adminCoupon{
		ID:    "itest-admin50",
		Code:  "ADMIN50",
		Title: "Admin Test Offer",
		Kind:  "percentage",
	}
	resp := doPostWithAuth(t, "/api/admin/coupons", create, testAPIKey)
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[adminCoupon](t, resp)
	resp.Body.Close()
	if created.ID != "itest-admin50" {
		t.Errorf("created id: got %q, want %q", created.ID, "itest-admin50")
	}

	// The new coupon shows up in the full list.
	resp = doJSONWithAuth(t, http.MethodGet, "/api/admin/coupons", nil, testAPIKey)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	list := decodeJSON[[]adminCoupon](t, resp)
	resp.Body.Close()
	found := false
	for _, c := range list {
		if c.ID == "itest-admin50" {
			found = true
		}
	}
	if !found {
		t.Error("created coupon not in admin list")
	}

	// Update keeps the path ID and changes the title.
	update := create
	update.Title = "Renamed Offer"
	resp = doJSONWithAuth(t, http.MethodPut, "/api/admin/coupons/itest-admin50", update, testAPIKey)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeJSON[adminCoupon](t, resp)
	resp.Body.Close()
	if updated.Title != "Renamed Offer" {
		t.Errorf("updated title: got %q, want %q", updated.Title, "Renamed Offer")
	}

	// Delete, then confirm it is gone.
	resp = doJSONWithAuth(t, http.MethodDelete, "/api/admin/coupons/itest-admin50", nil, testAPIKey)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp = doJSONWithAuth(t, http.MethodDelete, "/api/admin/coupons/itest-admin50", nil, testAPIKey)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestAdminCoupons_Import(t *testing.T) {
	payload := []map[string]any{
		{"id": "itest-import1", "code": "IMPORT1", "title": "Imported One", "type": "fixed", "discount": 50},
		{"id": "itest-import2", "code": "IMPORT2", "title": 42, "type": "percentage", "discount": 5},
	}
	resp := doPostWithAuth(t, "/api/admin/coupons/import", payload, testAPIKey)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("import: expected 200, got %d", resp.StatusCode)
	}

	var report struct {
		Imported int      `json:"imported"`
		Warnings []string `json:"warnings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	resp.Body.Close()

	if report.Imported != 2 {
		t.Errorf("imported: got %d, want 2", report.Imported)
	}
	// The numeric title is dropped with a warning, not a failure.
	if len(report.Warnings) == 0 {
		t.Error("expected a warning for the malformed title")
	}

	for _, id := range []string{"itest-import1", "itest-import2"} {
		resp := doJSONWithAuth(t, http.MethodDelete, "/api/admin/coupons/"+id, nil, testAPIKey)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("cleanup %s: expected 204, got %d", id, resp.StatusCode)
		}
	}
}
