// Package fakeapi is an in-memory implementation of the task backend's REST contract.
// Tests mount it with httptest.NewServer and point the client at server.URL+BasePath.
package fakeapi

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// BasePath is where the API group is mounted
const BasePath = "/api/v1"

type user struct {
	ID       int64
	Name     string
	Username string
	Password []byte
}

// Task is the backend's task record
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Server holds users and tasks in memory
type Server struct {
	mu sync.Mutex

	secret []byte
	ttl    time.Duration

	users      map[string]*user
	tasks      map[int64]*Task
	nextUserID int64
	nextTaskID int64

	faults map[string]int
	hits   map[string]int

	engine *gin.Engine
}

// New creates a backend signing tokens with secret
func New(secret string) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret: []byte(secret),
		ttl:    time.Hour,
		users:  make(map[string]*user),
		tasks:  make(map[int64]*Task),
		faults: make(map[string]int),
		hits:   make(map[string]int),
	}
	s.configRoutes()
	return s
}

// Handler exposes the router for httptest
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) configRoutes() {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group(BasePath)
	api.Use(s.instrument())

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
	}

	protected := api.Group("/")
	protected.Use(s.requireToken())
	{
		protected.GET("/profile", s.profile)

		tasks := protected.Group("/tasks")
		{
			tasks.POST("/", s.createTask)
			tasks.GET("/", s.listTasks)
			tasks.PUT("/:id", s.updateTask)
			tasks.DELETE("/:id", s.deleteTask)
		}
	}

	s.engine = router
}

// AddUser registers a user directly and returns its id
func (s *Server) AddUser(name, username, password string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.addUserLocked(name, username, password)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

var errUsernameTaken = errors.New("username is already exists")

func (s *Server) addUserLocked(name, username, password string) (*user, error) {
	if _, ok := s.users[username]; ok {
		return nil, errUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	s.nextUserID++
	u := &user{ID: s.nextUserID, Name: name, Username: username, Password: hash}
	s.users[username] = u
	return u, nil
}

// IssueToken signs a token for username valid for the server's ttl
func (s *Server) IssueToken(username string) (string, error) {
	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok {
		return "", errors.New("user not found")
	}
	return s.sign(u, s.ttl)
}

// IssueExpiredToken signs a token for username that expired an hour ago
func (s *Server) IssueExpiredToken(username string) (string, error) {
	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()
	if !ok {
		return "", errors.New("user not found")
	}
	return s.sign(u, -time.Hour)
}

func (s *Server) sign(u *user, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		UserID:   u.ID,
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "task-management-services",
			Subject:   u.Username,
		},
	})
	return token.SignedString(s.secret)
}

// SeedTask stores a task for userID, assigning id and created_at
func (s *Server) SeedTask(userID int64, t Task) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTaskID++
	t.ID = s.nextTaskID
	t.UserID = userID
	if t.Status == "" {
		t.Status = "To Do"
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	stored := t
	s.tasks[t.ID] = &stored
	return t
}

// Tasks returns every task of userID ordered by id
func (s *Server) Tasks(userID int64) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Fail forces route (e.g. "GET /tasks/", "PUT /tasks/:id") to answer with status; 0 clears it
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.faults, route)
		return
	}
	s.faults[route] = status
}

// Hits returns how many requests reached route
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// TotalHits returns how many requests reached the API
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func routeKey(c *gin.Context) string {
	return c.Request.Method + " " + strings.TrimPrefix(c.FullPath(), BasePath)
}
