package fakeapi

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type taskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"required,oneof='To Do' 'In Progress' 'Done'"`
	Deadline    *time.Time `json:"deadline"`
}

func userResponse(u *user) gin.H {
	return gin.H{"id": u.ID, "name": u.Name, "username": u.Username}
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"code":    status,
		"error":   msg,
	})
}

func succeed(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"code":    status,
		"data":    data,
	})
}

func (s *Server) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := routeKey(c)

		s.mu.Lock()
		s.hits[key]++
		status, forced := s.faults[key]
		s.mu.Unlock()

		if forced {
			fail(c, status, "injected failure")
			return
		}
		c.Next()
	}
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			fail(c, http.StatusUnauthorized, "missing or malformed token")
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == "" {
			fail(c, http.StatusUnauthorized, "empty authorization token")
			return
		}

		parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return s.secret, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				fail(c, http.StatusUnauthorized, "token expired")
				return
			}
			fail(c, http.StatusUnauthorized, "invalid token")
			return
		}

		cl, ok := parsed.Claims.(*claims)
		if !ok || !parsed.Valid {
			fail(c, http.StatusUnauthorized, "invalid token claims")
			return
		}

		c.Set("user_id", cl.UserID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	u, err := s.addUserLocked(req.Name, req.Username, req.Password)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, errUsernameTaken) {
			fail(c, http.StatusConflict, "Username already exists")
			return
		}
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	succeed(c, http.StatusCreated, userResponse(u))
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.Password, []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.sign(u, s.ttl)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	succeed(c, http.StatusOK, gin.H{"token": token, "user": userResponse(u)})
}

func (s *Server) profile(c *gin.Context) {
	id := currentUserID(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			succeed(c, http.StatusOK, userResponse(u))
			return
		}
	}
	fail(c, http.StatusNotFound, "User not found")
}

func (s *Server) listTasks(c *gin.Context) {
	userID := currentUserID(c)
	status := c.Query("status")

	var deadline *time.Time
	if d := c.Query("deadline"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid deadline format. Use YYYY-MM-DD.")
			return
		}
		deadline = &parsed
	}

	s.mu.Lock()
	out := []Task{}
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		if deadline != nil && (t.Deadline == nil || t.Deadline.After(*deadline)) {
			continue
		}
		out = append(out, *t)
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if deadline != nil && !out[i].Deadline.Equal(*out[j].Deadline) {
			return out[i].Deadline.Before(*out[j].Deadline)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	succeed(c, http.StatusOK, out)
}

func (s *Server) createTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	t := s.SeedTask(currentUserID(c), Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Deadline:    req.Deadline,
	})

	succeed(c, http.StatusCreated, t)
}

func (s *Server) updateTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		fail(c, http.StatusNotFound, "Task not found")
		return
	}
	if t.UserID != currentUserID(c) {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	t.Title = req.Title
	t.Description = req.Description
	t.Status = req.Status
	t.Deadline = req.Deadline

	succeed(c, http.StatusOK, *t)
}

func (s *Server) deleteTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid task ID")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		fail(c, http.StatusNotFound, "Task not found")
		return
	}
	if t.UserID != currentUserID(c) {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	delete(s.tasks, id)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"code":    http.StatusOK,
		"message": "Task deleted successfully",
	})
}
