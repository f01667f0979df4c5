// Command sample publishes a small user API with github.com/bjaus/endpoint
// onto the router of your choice.
//
// Run:
//
//	go run ./cmd/sample
//	go run ./cmd/sample --router=chi --log-level=debug
//	ENDPOINT_ROUTER=gin go run ./cmd/sample
//
// Then explore:
//
//	GET    http://localhost:8080/return-as-response      plain value, 200 JSON
//	GET    http://localhost:8080/http-response-response  response descriptor, 400 text
//	GET    http://localhost:8080/traditional-response    handler writes directly
//	GET    http://localhost:8080/recovered-response      error turned into a response by Catch
//	GET    http://localhost:8080/health                  handler function
//	GET    http://localhost:8080/users                   list users
//	POST   http://localhost:8080/users                   create user (rate limited)
//	GET    http://localhost:8080/users/{id}              get user
//	DELETE http://localhost:8080/users/{id}              delete user
//	GET    http://localhost:8080/metrics                 prometheus metrics
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bjaus/endpoint"
	"github.com/bjaus/endpoint/adapter"
)

// CLI is the sample's command line. Every flag can also be set through an
// ENDPOINT_ prefixed environment variable.
type CLI struct {
	Addr     string `kong:"default=':8080',help='Address to listen on.'"`
	LogLevel string `kong:"default='info',enum='debug,info,warn,error',help='Minimum log level (${enum}).'"`
	Router   string `kong:"default='mux',enum='mux,gorilla,chi,gin',help='Router to publish routes onto (${enum}).'"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("sample"),
		kong.Description("Publishes a sample user API."),
		kong.UsageOnError(),
		kong.DefaultEnvars("ENDPOINT"),
	)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cli, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cli CLI, logger *slog.Logger) error {
	c := endpoint.NewContainer()
	if err := c.Provide(newUserStore); err != nil {
		return err
	}
	if err := c.Provide(func() *slog.Logger { return logger }); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := endpoint.NewMetrics(reg)
	if err != nil {
		return err
	}

	router, h, err := newRouter(cli.Router)
	if err != nil {
		return err
	}

	idPath := "/users/{id}"
	if cli.Router == "gin" {
		idPath = "/users/:id"
	}

	if err := endpoint.Publish(router, c, routes(idPath), endpoint.WithLogger(logger), endpoint.WithMetrics(metrics)); err != nil {
		return err
	}
	router.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	h = endpoint.RequestIDMiddleware()(endpoint.Recovery(logger)(h))

	logger.Info("starting server", "addr", cli.Addr, "router", cli.Router)
	return endpoint.ListenAndServe(ctx, cli.Addr, h)
}

func newRouter(name string) (endpoint.Router, http.Handler, error) {
	switch name {
	case "mux":
		m := endpoint.NewMux()
		return m, m, nil
	case "gorilla":
		r := mux.NewRouter()
		return adapter.Gorilla(r), r, nil
	case "chi":
		r := chi.NewRouter()
		return adapter.Chi(r), r, nil
	case "gin":
		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		return adapter.Gin(r), r, nil
	}
	return nil, nil, fmt.Errorf("unknown router %q", name)
}

func routes(idPath string) *endpoint.Table {
	tbl := endpoint.NewTable()

	endpoint.Get[endpoint.Void, victory](tbl, "/return-as-response", func() victory { return victory{} })
	endpoint.Get[endpoint.Void, simpleText](tbl, "/http-response-response", func() simpleText { return simpleText{} })
	endpoint.Get[endpoint.Void, *traditional](tbl, "/traditional-response", newTraditional)
	endpoint.Get[endpoint.Void, *recovered](tbl, "/recovered-response", newRecovered)

	endpoint.Func(tbl, http.MethodGet, "/health", func(context.Context, *endpoint.Void) (any, error) {
		return healthResp{Status: "ok", Time: time.Now()}, nil
	}, endpoint.WithName("health"))

	endpoint.Get[listUsersReq, *listUsers](tbl, "/users", newListUsers, endpoint.WithName("users.list"))
	endpoint.Post[createUserReq, *createUser](tbl, "/users", newCreateUser,
		endpoint.WithName("users.create"),
		endpoint.WithMiddleware(endpoint.RateLimit(endpoint.RateLimitConfig{Rate: 5, Burst: 10})),
	)
	endpoint.Get[userIDReq, *getUser](tbl, idPath, newGetUser, endpoint.WithName("users.get"))
	endpoint.Delete[userIDReq, *deleteUser](tbl, idPath, newDeleteUser, endpoint.WithName("users.delete"))

	return tbl
}

// ---------------------------------------------------------------------------
// Result styles
// ---------------------------------------------------------------------------

type victory struct{}

func (victory) Handle(context.Context, *endpoint.Void) (any, error) {
	return map[string]string{"message": "Victory!"}, nil
}

type simpleText struct{}

func (simpleText) Handle(context.Context, *endpoint.Void) (any, error) {
	return &endpoint.Response{
		StatusCode:  http.StatusBadRequest,
		ContentType: "text/plain",
		Body:        "This is simple text",
	}, nil
}

type traditional struct {
	w http.ResponseWriter
}

func newTraditional(w http.ResponseWriter) *traditional {
	return &traditional{w: w}
}

func (h *traditional) Handle(context.Context, *endpoint.Void) (any, error) {
	h.w.Header().Set("Content-Type", "text/plain")
	h.w.WriteHeader(http.StatusBadRequest)
	_, err := io.WriteString(h.w, "This is simple text")
	return nil, err
}

type recovered struct {
	logger *slog.Logger
}

func newRecovered(logger *slog.Logger) *recovered {
	return &recovered{logger: logger}
}

func (h *recovered) Handle(context.Context, *endpoint.Void) (any, error) {
	return nil, errors.New("Oh no!")
}

func (h *recovered) Catch(ctx context.Context, err error) (any, error) {
	h.logger.WarnContext(ctx, "recovering", "err", err)
	return &endpoint.Response{
		StatusCode:  http.StatusInternalServerError,
		ContentType: "text/plain",
		Body:        "Internal Server Error",
	}, nil
}

type healthResp struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// User is the sample's domain entity.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type listUsersReq struct {
	Role  string `query:"role"`
	Limit int    `query:"limit" default:"50"`
}

type listUsersResp struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

type createUserReq struct {
	Body struct {
		Name  string `json:"name" yaml:"name"`
		Email string `json:"email" yaml:"email"`
		Role  string `json:"role" yaml:"role"`
	}
}

type userIDReq struct {
	ID string `path:"id"`
}

type listUsers struct {
	store *userStore
}

func newListUsers(s *userStore) *listUsers { return &listUsers{store: s} }

func (h *listUsers) Handle(_ context.Context, req *listUsersReq) (any, error) {
	users := h.store.list(req.Role)
	total := len(users)
	if req.Limit > 0 && len(users) > req.Limit {
		users = users[:req.Limit]
	}
	return listUsersResp{Users: users, Total: total}, nil
}

type createUser struct {
	store *userStore
}

func newCreateUser(s *userStore) *createUser { return &createUser{store: s} }

func (h *createUser) Handle(_ context.Context, req *createUserReq) (any, error) {
	if req.Body.Name == "" || req.Body.Email == "" {
		return nil, endpoint.Error(http.StatusUnprocessableEntity, "name and email are required")
	}
	role := req.Body.Role
	if role == "" {
		role = "member"
	}
	u := h.store.create(req.Body.Name, req.Body.Email, role)
	return &endpoint.Response{StatusCode: http.StatusCreated, Body: u}, nil
}

type getUser struct {
	store *userStore
}

func newGetUser(s *userStore) *getUser { return &getUser{store: s} }

func (h *getUser) Handle(_ context.Context, req *userIDReq) (any, error) {
	u, ok := h.store.get(req.ID)
	if !ok {
		return nil, endpoint.Errorf(http.StatusNotFound, "user %s not found", req.ID)
	}
	return u, nil
}

type deleteUser struct {
	store  *userStore
	logger *slog.Logger
	id     endpoint.RequestID
}

func newDeleteUser(s *userStore, logger *slog.Logger, id endpoint.RequestID) *deleteUser {
	return &deleteUser{store: s, logger: logger, id: id}
}

func (h *deleteUser) Handle(ctx context.Context, req *userIDReq) (any, error) {
	if !h.store.delete(req.ID) {
		return nil, endpoint.Errorf(http.StatusNotFound, "user %s not found", req.ID)
	}
	h.logger.InfoContext(ctx, "user deleted", "id", req.ID, "request_id", string(h.id))
	return &endpoint.Response{StatusCode: http.StatusNoContent}, nil
}

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

type userStore struct {
	mu     sync.RWMutex
	users  map[string]*User
	nextID int
}

func newUserStore() *userStore {
	now := time.Now()
	return &userStore{
		users: map[string]*User{
			"1": {ID: "1", Name: "Alice", Email: "alice@example.com", Role: "admin", CreatedAt: now},
			"2": {ID: "2", Name: "Bob", Email: "bob@example.com", Role: "member", CreatedAt: now},
		},
		nextID: 3,
	}
}

func (s *userStore) list(role string) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b User) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.ID, b.ID))
	})
	return out
}

func (s *userStore) get(id string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

func (s *userStore) create(name, email, role string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &User{
		ID:        strconv.Itoa(s.nextID),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}
	s.nextID++
	s.users[u.ID] = u
	cp := *u
	return &cp
}

func (s *userStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	return true
}
