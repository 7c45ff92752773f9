package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"proposalai/internal/app"
	"proposalai/pkg/domain"
	"proposalai/pkg/storage"
	"proposalai/pkg/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	a, err := app.New(app.Config{
		Store:         store.NewMemoryStore(),
		Sessions:      store.NewMemorySessionStore(),
		Objects:       storage.NewMemoryStore("http://exports.local"),
		PublicBaseURL: "http://localhost:3000",
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	ts := httptest.NewServer(New(Config{App: a}).Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type authPayload struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func signup(t *testing.T, ts *httptest.Server, name, email string) authPayload {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/signup", "", map[string]string{
		"name":            name,
		"email":           email,
		"password":        "Secret99!",
		"confirmPassword": "Secret99!",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup %s: status %d", email, resp.StatusCode)
	}
	var out authPayload
	decodeBody(t, resp, &out)
	if out.Token == "" {
		t.Fatalf("signup returned empty token")
	}
	return out
}

func createProposal(t *testing.T, ts *httptest.Server, token string, draft domain.Draft) domain.Proposal {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/proposals", token, draft)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create proposal: status %d", resp.StatusCode)
	}
	var p domain.Proposal
	decodeBody(t, resp, &p)
	return p
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSignupLoginLogout(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "Jo", "jo@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email":    "jo@example.com",
		"password": "Secret99!",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
	var out authPayload
	decodeBody(t, resp, &out)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/users/me", out.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/users/me: status %d", resp.StatusCode)
	}
	var me domain.User
	decodeBody(t, resp, &me)
	if me.Email != "jo@example.com" {
		t.Fatalf("me.Email = %q", me.Email)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/logout", out.Token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/users/me", out.Token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me after logout: status %d, want 401", resp.StatusCode)
	}
}

func TestSignupErrors(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "Jo", "jo@example.com")

	// Duplicate email conflicts.
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/signup", "", map[string]string{
		"name": "Joe", "email": "jo@example.com",
		"password": "Secret99!", "confirmPassword": "Secret99!",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup: status %d, want 409", resp.StatusCode)
	}

	// Weak passwords are rejected.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/signup", "", map[string]string{
		"name": "Sam", "email": "sam@example.com",
		"password": "abc", "confirmPassword": "abc",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("weak password signup: status %d, want 400", resp.StatusCode)
	}

	// Wrong credentials are unauthorized.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email": "jo@example.com", "password": "nope",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: status %d, want 401", resp.StatusCode)
	}
}

func TestProposalLifecycle(t *testing.T) {
	ts := newTestServer(t)
	jo := signup(t, ts, "Jo", "jo@example.com")

	created := createProposal(t, ts, jo.Token, domain.Draft{
		Title:              "Website Redesign",
		ClientName:         "Acme Inc.",
		ProjectDescription: "Rebuild the marketing site",
		Budget:             "$12,000",
		Deadline:           "2025-12-01",
	})
	if created.ID == "" || created.UserID != jo.User.ID {
		t.Fatalf("created = %+v", created)
	}
	if created.Content.Timeline == "" {
		t.Fatalf("content not generated")
	}

	// List shows the new proposal.
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/proposals", jo.Token, nil)
	var listing struct {
		Items []domain.Proposal `json:"items"`
		Count int               `json:"count"`
	}
	decodeBody(t, resp, &listing)
	if listing.Count != 1 || listing.Items[0].ID != created.ID {
		t.Fatalf("listing = %+v", listing)
	}

	// Fetch, update, delete.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/proposals/"+created.ID, jo.Token, nil)
	var fetched domain.Proposal
	decodeBody(t, resp, &fetched)
	if fetched.ID != created.ID {
		t.Fatalf("fetched.ID = %q", fetched.ID)
	}

	update := app.ProposalUpdate{Draft: created.Draft(), Content: created.Content}
	update.Draft.Title = "Website Redesign v2"
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/proposals/"+created.ID, jo.Token, update)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}
	var updated domain.Proposal
	decodeBody(t, resp, &updated)
	if updated.Title != "Website Redesign v2" {
		t.Fatalf("updated.Title = %q", updated.Title)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("UpdatedAt did not advance")
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/proposals/"+created.ID, jo.Token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/proposals/"+created.ID, jo.Token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", resp.StatusCode)
	}
}

func TestProposalCreateValidation(t *testing.T) {
	ts := newTestServer(t)
	jo := signup(t, ts, "Jo", "jo@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/proposals", jo.Token, domain.Draft{
		Title: "Only a title",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("incomplete draft: status %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if !strings.Contains(body["error"], "required fields") {
		t.Fatalf("error message = %q", body["error"])
	}
}

func TestCrossUserAccessIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	jo := signup(t, ts, "Jo", "jo@example.com")
	sam := signup(t, ts, "Sam", "sam@example.com")

	created := createProposal(t, ts, jo.Token, domain.Draft{
		Title:              "Alpha",
		ClientName:         "Acme",
		ProjectDescription: "Build Alpha",
	})

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/proposals/" + created.ID},
		{http.MethodGet, "/api/proposals/" + created.ID + "/preview"},
		{http.MethodPost, "/api/proposals/" + created.ID + "/export"},
		{http.MethodGet, "/api/proposals/" + created.ID + "/share"},
		{http.MethodPost, "/api/proposals/" + created.ID + "/regenerate"},
	} {
		resp := doJSON(t, tc.method, ts.URL+tc.path, sam.Token, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s %s as other user: status %d, want 403", tc.method, tc.path, resp.StatusCode)
		}
	}

	// Without a token everything under /api/proposals is unauthorized.
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/proposals", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", resp.StatusCode)
	}
}

func TestAdminSeesAllProposals(t *testing.T) {
	ts := newTestServer(t)
	jo := signup(t, ts, "Jo", "jo@example.com")
	createProposal(t, ts, jo.Token, domain.Draft{
		Title: "Alpha", ClientName: "Acme", ProjectDescription: "Build Alpha",
	})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"email":    domain.AdminEmail,
		"password": "Aa3232107@",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login: status %d", resp.StatusCode)
	}
	var admin authPayload
	decodeBody(t, resp, &admin)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/proposals", admin.Token, nil)
	var listing struct {
		Items []domain.Proposal `json:"items"`
		Count int               `json:"count"`
	}
	decodeBody(t, resp, &listing)
	if listing.Count != 1 {
		t.Fatalf("admin listing count = %d, want 1", listing.Count)
	}
	if listing.Items[0].UserID != jo.User.ID {
		t.Fatalf("admin listing owner = %q", listing.Items[0].UserID)
	}
}

func TestPreviewExportShare(t *testing.T) {
	ts := newTestServer(t)
	jo := signup(t, ts, "Jo", "jo@example.com")
	created := createProposal(t, ts, jo.Token, domain.Draft{
		Title:              "Website Redesign",
		ClientName:         "Acme Inc.",
		ProjectDescription: "Rebuild the marketing site",
	})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/proposals/"+created.ID+"/preview", nil)
	req.Header.Set("Authorization", "Bearer "+jo.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("preview content type = %q", ct)
	}

	resp2 := doJSON(t, http.MethodPost, ts.URL+"/api/proposals/"+created.ID+"/export", jo.Token, nil)
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("export: status %d", resp2.StatusCode)
	}
	var exported map[string]string
	decodeBody(t, resp2, &exported)
	if !strings.Contains(exported["url"], created.ID) {
		t.Fatalf("export url = %q", exported["url"])
	}

	resp3 := doJSON(t, http.MethodGet, ts.URL+"/api/proposals/"+created.ID+"/share", jo.Token, nil)
	var shared map[string]string
	decodeBody(t, resp3, &shared)
	if shared["url"] != "http://localhost:3000/proposal/"+created.ID {
		t.Fatalf("share url = %q", shared["url"])
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	jo := signup(t, ts, "Jo", "jo@example.com")

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/auth/login", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /api/auth/login: status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/proposals", jo.Token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("PUT /api/proposals: status %d", resp.StatusCode)
	}
}
