// Package backendtest provides an in-process fake of the hot takes backend
// for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"hottakes/internal/model"
)

const Token = "test-token"

// Server is a fake backend. Fields may be set before requests are made;
// counters are read with Calls.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	Users     map[string]*User
	Opinions  []model.Opinion
	votes     map[string]map[string]int // opinion -> user -> value
	location  model.LocationInfo
	calls     map[string]int
	lastQuery map[string]string
	failNext  map[string][]int
}

type User struct {
	model.AuthUser
	Password string
}

func New() *Server {
	s := &Server{
		Users:     map[string]*User{},
		votes:     map[string]map[string]int{},
		calls:     map[string]int{},
		lastQuery: map[string]string{},
		failNext:  map[string][]int{},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// AddUser registers a user with zeroed stats.
func (s *Server) AddUser(id, username, password string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &User{AuthUser: model.AuthUser{ID: id, Username: username, Aggregates: model.Aggregates{
		SessionVotes: ptr(0), LifetimeVotes: ptr(0), OpinionCount: ptr(0), OpinionIDs: []string{},
	}}, Password: password}
	s.Users[id] = u
	return u
}

// AddOpinion appends an opinion to the pool.
func (s *Server) AddOpinion(id, content string, up, down int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Opinions = append(s.Opinions, model.Opinion{ID: id, Content: content, Upvotes: up, Downvotes: down, DateSubmitted: at})
}

// Calls returns how many requests hit route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastQuery returns the raw query string of the last request to route.
func (s *Server) LastQuery(route string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery[route]
}

// Fail makes the next requests to route answer with codes, one each.
func (s *Server) Fail(route string, codes ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[route] = append(s.failNext[route], codes...)
}

// SetLocation sets what /api/location reports; empty makes it fail.
func (s *Server) SetLocation(loc model.LocationInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = loc
}

// SetVote records a prior vote without touching counts.
func (s *Server) SetVote(opinionID, userID string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.votes[opinionID] == nil {
		s.votes[opinionID] = map[string]int{}
	}
	s.votes[opinionID][userID] = value
}

// VoteOf returns userID's vote on opinionID, or 0.
func (s *Server) VoteOf(opinionID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.votes[opinionID][userID]
}

// SetAuthored replaces a user's authored opinion ids and count.
func (s *Server) SetAuthored(userID string, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.Users[userID]; ok {
		u.OpinionIDs = append([]string{}, ids...)
		*u.OpinionCount = len(ids)
	}
}

func ptr(v int) *int { return &v }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/register", s.track("register", s.register))
	r.Post("/api/auth/login", s.track("login", s.login))
	r.Get("/api/auth/user", s.track("user", s.authed(s.user)))
	r.Get("/api/opinions/next", s.track("next", s.authed(s.next)))
	r.Get("/api/opinions/{id}", s.track("opinion", s.authed(s.opinion)))
	r.Post("/api/opinions", s.track("submit", s.authed(s.submit)))
	r.Post("/api/opinions/{id}/vote", s.track("vote", s.authed(s.vote)))
	r.Get("/api/opinions/{id}/vote-status", s.track("vote-status", s.authed(s.voteStatus)))
	r.Get("/api/leaderboard/top", s.track("top", s.top))
	r.Get("/api/leaderboard/near-me", s.track("near-me", s.top))
	r.Get("/api/location", s.track("location", s.serveLocation))
	return r
}

func (s *Server) track(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		s.lastQuery[route] = r.URL.RawQuery
		var fail int
		if q := s.failNext[route]; len(q) > 0 {
			fail, s.failNext[route] = q[0], q[1:]
		}
		s.mu.Unlock()
		if fail != 0 {
			if fail == http.StatusTooManyRequests {
				w.Header().Set("Retry-After", "0")
			}
			writeJSON(w, fail, map[string]string{"message": http.StatusText(fail)})
			return
		}
		h(w, r)
	}
}

func (s *Server) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	for _, u := range s.Users {
		if u.Username == in.Username {
			s.mu.Unlock()
			writeJSON(w, http.StatusConflict, map[string]string{"message": "username taken"})
			return
		}
	}
	s.mu.Unlock()
	u := s.AddUser("u-"+in.Username, in.Username, in.Password)
	writeJSON(w, http.StatusCreated, model.AuthResponse{User: u.AuthUser, Token: Token})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Username == in.Username && u.Password == in.Password {
			writeJSON(w, http.StatusOK, model.AuthResponse{User: u.AuthUser, Token: Token})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
}

func (s *Server) user(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Users[r.URL.Query().Get("userId")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, u.AuthUser)
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	excluded := map[string]bool{}
	if ex := r.URL.Query().Get("exclude"); ex != "" {
		for _, id := range strings.Split(ex, ",") {
			excluded[id] = true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Opinions {
		if !excluded[o.ID] {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "no more opinions"})
}

func (s *Server) find(id string) (int, bool) {
	for i, o := range s.Opinions {
		if o.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (s *Server) opinion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "opinion not found"})
		return
	}
	writeJSON(w, http.StatusOK, s.Opinions[i])
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var in model.NewOpinion
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.Users[in.UserID]
	if !ok || strings.TrimSpace(in.Content) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad submission"})
		return
	}
	id := "op-" + u.ID + "-" + string(rune('a'+len(u.OpinionIDs)))
	s.Opinions = append(s.Opinions, model.Opinion{ID: id, Content: in.Content, DateSubmitted: time.Now().UTC()})
	u.OpinionIDs = append(u.OpinionIDs, id)
	*u.OpinionCount = len(u.OpinionIDs)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "created", "id": id})
}

func (s *Server) vote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Vote   int    `json:"vote"`
		UserID string `json:"userId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "opinion not found"})
		return
	}
	if s.votes[id] == nil {
		s.votes[id] = map[string]int{}
	}
	prev, had := s.votes[id][in.UserID]
	switch prev {
	case 1:
		s.Opinions[i].Upvotes--
	case -1:
		s.Opinions[i].Downvotes--
	}
	s.votes[id][in.UserID] = in.Vote
	if in.Vote > 0 {
		s.Opinions[i].Upvotes++
	} else {
		s.Opinions[i].Downvotes++
	}
	if u, ok := s.Users[in.UserID]; ok && !had {
		*u.SessionVotes++
		*u.LifetimeVotes++
	}
	writeJSON(w, http.StatusOK, model.VoteResult{Message: "vote recorded", Opinion: s.Opinions[i]})
}

func (s *Server) voteStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.votes[chi.URLParam(r, "id")][r.URL.Query().Get("userId")]
	writeJSON(w, http.StatusOK, model.VoteStatus{HasVoted: ok, VoteValue: v})
}

func (s *Server) top(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]model.Opinion(nil), s.Opinions...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score() > out[j].Score() })
	writeJSON(w, http.StatusOK, map[string]any{"opinions": out})
}

func (s *Server) serveLocation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.location.Empty() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "geo lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, s.location)
}
