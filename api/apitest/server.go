// ABOUTME: In-memory fake of the Sales Cookbook REST API for tests
// ABOUTME: Serves paginated, searchable collections, JWT auth endpoints and injectable failures
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultPageSize matches the backend's page size.
const DefaultPageSize = 10

// Record is one stored object.
type Record map[string]any

// Request is a recorded call.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
	Auth   string
}

type failure struct {
	status int
	body   string
}

// Server is a fake backend. All methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	PageSize int
	// RequireAuth rejects collection calls without a valid bearer token.
	RequireAuth bool
	// AccessTTL is the lifetime of issued access tokens.
	AccessTTL time.Duration
	// Delay, when set, is applied to list requests before responding.
	Delay func(r *http.Request) time.Duration

	mu          sync.Mutex
	collections map[string]map[int64]Record
	nextID      int64
	requests    []Request
	failures    map[string][]failure
	users       map[string]userRecord
	secret      []byte
	refreshes   int
}

type userRecord struct {
	password string
	profile  Record
}

// NewServer starts a fake backend that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		PageSize:    DefaultPageSize,
		AccessTTL:   time.Hour,
		collections: make(map[string]map[int64]Record),
		failures:    make(map[string][]failure),
		users:       make(map[string]userRecord),
		secret:      []byte("apitest-secret"),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

// Seed inserts records into a collection, assigning IDs when missing.
func (s *Server) Seed(collection string, records ...Record) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(records))
	for _, r := range records {
		rec := cloneRecord(r)
		id := s.assignID(rec)
		s.collection(collection)[id] = rec
		ids = append(ids, id)
	}
	return ids
}

// Get returns a stored record.
func (s *Server) Get(collection string, id int64) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.collection(collection)[id]
	return cloneRecord(rec), ok
}

// Len returns the number of records in a collection.
func (s *Server) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collection(collection))
}

// FailNext makes the next request matching method and path fail.
func (s *Server) FailNext(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

// Requests returns every recorded request.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests counts recorded requests with the given method and path.
func (s *Server) CountRequests(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// LastRequest returns the most recent request matching method and path.
func (s *Server) LastRequest(method, path string) (Request, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Request{}, false
}

// Refreshes reports how many refresh-token exchanges were served.
func (s *Server) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// AddUser registers a user that can log in. organization may be zero for none.
func (s *Server) AddUser(email, password, first, last string, organization int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(email, password, first, last, organization, "sales_rep")
}

func (s *Server) addUserLocked(email, password, first, last string, organization int64, role string) Record {
	s.nextID++
	profile := Record{
		"id":         float64(s.nextID),
		"username":   email,
		"email":      email,
		"first_name": first,
		"last_name":  last,
		"role":       role,
	}
	if organization > 0 {
		profile["organization"] = float64(organization)
		profile["organization_name"] = fmt.Sprintf("Org %d", organization)
	}
	s.users[email] = userRecord{password: password, profile: profile}
	return profile
}

// IssueToken signs an access token for username that expires after ttl.
func (s *Server) IssueToken(username string, ttl time.Duration) string {
	return s.sign(username, "access", ttl)
}

func (s *Server) sign(username, kind string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub":        username,
		"token_type": kind,
		"exp":        time.Now().Add(ttl).Unix(),
		"iat":        time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) verify(header string) (string, bool) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	tok, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return "", false
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil {
		return "", false
	}
	return sub, true
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   body,
		Auth:   r.Header.Get("Authorization"),
	})
	key := r.Method + " " + r.URL.Path
	if queued := s.failures[key]; len(queued) > 0 {
		f := queued[0]
		s.failures[key] = queued[1:]
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
		return
	}
	s.mu.Unlock()

	switch r.URL.Path {
	case "/api/token/":
		s.handleObtain(w, body)
		return
	case "/api/token/refresh/":
		s.handleRefresh(w, body)
		return
	case "/api/v1/register/":
		s.handleRegister(w, body)
		return
	}

	user, authed := s.verify(r.Header.Get("Authorization"))
	if s.RequireAuth && !authed {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."})
		return
	}

	switch r.URL.Path {
	case "/api/v1/me/":
		s.handleMe(w, user)
		return
	case "/api/v1/create-organization/":
		s.handleCreateOrganization(w, user, body)
		return
	case "/api/v1/profile/update/":
		s.handleProfileUpdate(w, user, body)
		return
	case "/api/v1/change-password/":
		s.handleChangePassword(w, user, body)
		return
	case "/api/v1/users/":
		s.handleUsers(w, r)
		return
	}

	collection, id, ok := parsePath(r.URL.Path)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}

	if id == 0 {
		switch r.Method {
		case http.MethodGet:
			if s.Delay != nil {
				if d := s.Delay(r); d > 0 {
					time.Sleep(d)
				}
			}
			s.handleList(w, r, collection)
		case http.MethodPost:
			s.handleCreate(w, collection, body)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method not allowed."})
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleRetrieve(w, collection, id)
	case http.MethodPatch, http.MethodPut:
		s.handleUpdate(w, collection, id, body)
	case http.MethodDelete:
		s.handleDestroy(w, collection, id)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method not allowed."})
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request, collection string) {
	q := r.URL.Query()
	page := 1
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Invalid page."})
			return
		}
		page = n
	}
	search := strings.ToLower(q.Get("search"))
	ordering := q.Get("ordering")

	s.mu.Lock()
	var matched []Record
	for _, rec := range s.collection(collection) {
		if search == "" || matches(rec, search) {
			matched = append(matched, cloneRecord(rec))
		}
	}
	pageSize := s.PageSize
	s.mu.Unlock()

	sortRecords(matched, ordering)

	start := (page - 1) * pageSize
	if start > 0 && start >= len(matched) {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Invalid page."})
		return
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	results := []Record{}
	if start < len(matched) {
		results = matched[start:end]
	}

	var next, prev any
	if end < len(matched) {
		next = pageURL(r, page+1)
	}
	if page > 1 {
		prev = pageURL(r, page-1)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(matched),
		"next":     next,
		"previous": prev,
		"results":  results,
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, collection string, id int64) {
	rec, ok := s.Get(collection, id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, collection string, body map[string]any) {
	s.mu.Lock()
	rec := Record(cloneRecord(body))
	delete(rec, "id")
	s.assignID(rec)
	if collection == "quotes" {
		if _, ok := rec["line_items"]; !ok {
			rec["line_items"] = []any{}
		}
	}
	s.collection(collection)[toInt(rec["id"])] = rec
	out := cloneRecord(rec)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdate(w http.ResponseWriter, collection string, id int64, body map[string]any) {
	s.mu.Lock()
	rec, ok := s.collection(collection)[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	for k, v := range body {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	out := cloneRecord(rec)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDestroy(w http.ResponseWriter, collection string, id int64) {
	s.mu.Lock()
	_, ok := s.collection(collection)[id]
	delete(s.collection(collection), id)
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleObtain(w http.ResponseWriter, body map[string]any) {
	username, _ := body["username"].(string)
	password, _ := body["password"].(string)

	s.mu.Lock()
	u, ok := s.users[username]
	ttl := s.AccessTTL
	s.mu.Unlock()

	if !ok || u.password != password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "No active account found with the given credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access":  s.sign(username, "access", ttl),
		"refresh": s.sign(username, "refresh", 24*time.Hour),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, body map[string]any) {
	refresh, _ := body["refresh"].(string)
	user, ok := s.verify("Bearer " + refresh)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}

	s.mu.Lock()
	s.refreshes++
	ttl := s.AccessTTL
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"access": s.sign(user, "access", ttl)})
}

func (s *Server) handleRegister(w http.ResponseWriter, body map[string]any) {
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	confirm, _ := body["confirm_password"].(string)
	first, _ := body["first_name"].(string)
	last, _ := body["last_name"].(string)

	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"email": []string{"Email is required."}})
		return
	}
	if password != confirm {
		writeJSON(w, http.StatusBadRequest, map[string]any{"confirm_password": []string{"Passwords do not match."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{"email": []string{"Something went wrong. Please contact support or try again."}})
		return
	}

	var org int64
	role := "sales_rep"
	if create, _ := body["create_organization"].(bool); create {
		name, _ := body["organization_name"].(string)
		rec := Record{"name": name}
		org = s.assignID(rec)
		s.collection("organizations")[org] = rec
		role = "admin"
	}
	profile := s.addUserLocked(email, password, first, last, org, role)
	writeJSON(w, http.StatusCreated, cloneRecord(profile))
}

func (s *Server) handleMe(w http.ResponseWriter, user string) {
	s.mu.Lock()
	u, ok := s.users[user]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."})
		return
	}
	writeJSON(w, http.StatusOK, cloneRecord(u.profile))
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, user string, body map[string]any) {
	name, _ := body["name"].(string)
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[user]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."})
		return
	}
	if _, has := u.profile["organization"]; has {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "You already belong to an organization"})
		return
	}
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Organization name is required"})
		return
	}

	rec := Record{"name": name, "description": body["description"]}
	id := s.assignID(rec)
	s.collection("organizations")[id] = rec
	u.profile["organization"] = float64(id)
	u.profile["organization_name"] = name
	u.profile["role"] = "admin"
	writeJSON(w, http.StatusCreated, cloneRecord(rec))
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, user string, body map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[user]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."})
		return
	}
	for _, k := range []string{"first_name", "last_name"} {
		if v, ok := body[k]; ok {
			u.profile[k] = v
		}
	}
	writeJSON(w, http.StatusOK, cloneRecord(u.profile))
}

func (s *Server) handleChangePassword(w http.ResponseWriter, user string, body map[string]any) {
	current, _ := body["current_password"].(string)
	next, _ := body["new_password"].(string)
	confirm, _ := body["confirm_password"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[user]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Authentication credentials were not provided."})
		return
	}
	if u.password != current {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Current password is incorrect"})
		return
	}
	if next != confirm {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "New passwords do not match"})
		return
	}
	u.password = next
	s.users[user] = u
	writeJSON(w, http.StatusOK, map[string]any{"message": "Password updated successfully"})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]Record, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneRecord(u.profile))
	}
	s.mu.Unlock()

	sortRecords(out, r.URL.Query().Get("ordering"))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) collection(name string) map[int64]Record {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[int64]Record)
		s.collections[name] = c
	}
	return c
}

// assignID gives rec an ID if it lacks one. Callers hold s.mu.
func (s *Server) assignID(rec Record) int64 {
	if id := toInt(rec["id"]); id > 0 {
		if id > s.nextID {
			s.nextID = id
		}
		rec["id"] = float64(id)
		return id
	}
	s.nextID++
	rec["id"] = float64(s.nextID)
	return s.nextID
}

func parsePath(path string) (string, int64, bool) {
	rest, ok := strings.CutPrefix(path, "/api/v1/")
	if !ok {
		return "", 0, false
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	switch len(parts) {
	case 1:
		return parts[0], 0, parts[0] != ""
	case 2:
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || id <= 0 {
			return "", 0, false
		}
		return parts[0], id, true
	}
	return "", 0, false
}

func matches(rec Record, search string) bool {
	for _, v := range rec {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

func sortRecords(recs []Record, ordering string) {
	field := strings.TrimPrefix(ordering, "-")
	desc := strings.HasPrefix(ordering, "-")
	if field == "" {
		field = "id"
	}
	sort.SliceStable(recs, func(i, j int) bool {
		less := compare(recs[i][field], recs[j][field])
		if desc {
			return less > 0
		}
		return less < 0
	})
}

func compare(a, b any) int {
	switch av := a.(type) {
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, _ := b.(string)
		return strings.Compare(av, bv)
	}
	return 0
}

func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return "http://" + r.Host + r.URL.Path + "?" + q.Encode()
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	}
	return 0
}

func cloneRecord(r map[string]any) Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
