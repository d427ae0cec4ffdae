package mockserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/nhle/kanban/internal/api"
	"github.com/nhle/kanban/internal/validate"
)

const claimsKey = "claims"

type claims struct {
	TeamID  string `json:"teamID"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// IssueToken signs a session token the way POST /login does.
func (s *Server) IssueToken(username, teamID string, isAdmin bool) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		TeamID:  teamID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	return tok.SignedString(s.secret)
}

func (s *Server) login(c echo.Context) error {
	var req api.LoginReq
	if err := c.Bind(&req); err != nil {
		return errorBody(c, http.StatusBadRequest, "error", "Invalid request body.")
	}
	if msg := validate.Username(req.Username); msg != "" {
		return errorBody(c, http.StatusBadRequest, "username", msg)
	}
	if msg := validate.Password(req.Password); msg != "" {
		return errorBody(c, http.StatusBadRequest, "password", msg)
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Username]
	s.mu.Unlock()
	if !ok || acc.password != req.Password {
		return errorBody(c, http.StatusUnauthorized, "error", "Invalid username or password.")
	}

	token, err := s.IssueToken(req.Username, acc.teamID, acc.isAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.LoginResp{Token: token})
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || raw == "" {
			return errorBody(c, http.StatusUnauthorized, "error", "Auth token not found.")
		}

		var cl claims
		if _, err := parser.ParseWithClaims(raw, &cl, func(*jwt.Token) (interface{}, error) {
			return s.secret, nil
		}); err != nil {
			return errorBody(c, http.StatusUnauthorized, "error", "Invalid auth token.")
		}

		c.Set(claimsKey, &cl)
		return next(c)
	}
}

func claimsOf(c echo.Context) *claims {
	cl, _ := c.Get(claimsKey).(*claims)
	if cl == nil {
		return &claims{}
	}
	return cl
}
