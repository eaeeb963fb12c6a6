package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"matjip/apps/backend/internal/config"
	"matjip/apps/backend/internal/curator"
	"matjip/apps/backend/internal/recommend"
	"matjip/apps/backend/internal/session"
)

const (
	sessionCookieName = "matjip_session"
	sessionIDKey      = "sessionID"
	sessionKey        = "session"
)

// Recommender produces a result for one form submission. *curator.Service
// satisfies it.
type Recommender interface {
	Curate(ctx context.Context, form curator.Form) (curator.Result, error)
}

type App struct {
	cfg         config.Config
	recommender Recommender
	verifier    session.CredentialVerifier
	sessions    *session.Store
	tokens      *session.Tokens
}

func New(cfg config.Config, recommender Recommender, verifier session.CredentialVerifier) *App {
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &App{
		cfg:         cfg,
		recommender: recommender,
		verifier:    verifier,
		sessions:    session.NewStore(ttl),
		tokens:      session.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, ttl),
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.SetHTMLTemplate(loadTemplates())

	router.GET("/health", a.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/login", a.loginPage)
	router.POST("/login", a.loginSubmit)
	router.POST("/logout", a.logoutSubmit)

	pages := router.Group("/")
	pages.Use(a.cookieSessionMiddleware())
	pages.GET("/", a.homePage)
	pages.POST("/recommend", a.recommendSubmit)
	pages.POST("/restart", a.restartSubmit)

	api := router.Group(a.cfg.APIPrefix)
	api.POST("/auth/login", a.apiLogin)

	authed := api.Group("")
	authed.Use(a.bearerSessionMiddleware())
	authed.GET("/options", a.apiOptions)
	authed.GET("/session", a.apiSession)
	authed.POST("/recommendations", a.apiRecommend)
	authed.POST("/session/restart", a.apiRestart)
	authed.POST("/auth/logout", a.apiLogout)

	return router
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "matjip-api",
	})
}

// login verifies credentials on a fresh machine and stores it. Nothing is
// stored when the credentials are rejected.
func (a *App) login(user, password string) (string, error) {
	machine := session.NewMachine()
	if err := machine.Login(a.verifier, strings.TrimSpace(user), password); err != nil {
		return "", err
	}
	id := a.sessions.Create(machine)
	token, err := a.tokens.Issue(id)
	if err != nil {
		a.sessions.Delete(id)
		return "", err
	}
	return token, nil
}

func (a *App) logout(id string) {
	_, _ = a.sessions.Update(id, func(m *session.Machine) error {
		m.Logout()
		return nil
	})
	a.sessions.Delete(id)
}

// recommend runs the recommendation outside the store lock and then moves the
// session to the result state. The session must be in the input state.
func (a *App) recommend(ctx context.Context, id string, form curator.Form) (curator.Result, error) {
	current, err := a.sessions.Get(id)
	if err != nil {
		return curator.Result{}, err
	}
	if current.State() != session.StateInput {
		return curator.Result{}, session.ErrInvalidTransition
	}

	result, err := a.recommender.Curate(ctx, form)
	if err != nil {
		return curator.Result{}, err
	}
	if _, err := a.sessions.Update(id, func(m *session.Machine) error {
		return m.ShowResult(result)
	}); err != nil {
		return curator.Result{}, err
	}
	return result, nil
}

func (a *App) restart(id string) (*session.Machine, error) {
	return a.sessions.Update(id, func(m *session.Machine) error {
		return m.Restart()
	})
}

func sessionFromContext(c *gin.Context) (string, *session.Machine, bool) {
	id := c.GetString(sessionIDKey)
	raw, ok := c.Get(sessionKey)
	if !ok || id == "" {
		return "", nil, false
	}
	machine, ok := raw.(*session.Machine)
	return id, machine, ok
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// formErrorMessage maps form validation errors to the message shown next to
// the input form.
func formErrorMessage(err error) string {
	switch {
	case errors.Is(err, curator.ErrNoFoodSelected):
		return "음식 종류를 하나 이상 선택해주세요."
	case errors.Is(err, curator.ErrNoTimeSelected):
		return "방문 시간을 하나 이상 선택해주세요."
	case errors.Is(err, curator.ErrUnknownCategory):
		return "알 수 없는 음식 종류입니다."
	case errors.Is(err, curator.ErrUnknownTimeLabel), errors.Is(err, recommend.ErrInvalidTimeRange):
		return "알 수 없는 방문 시간입니다."
	default:
		return "입력값을 확인해주세요."
	}
}
