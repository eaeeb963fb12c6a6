package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"matjip/apps/backend/internal/curator"
	"matjip/apps/backend/internal/logging"
	"matjip/apps/backend/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	State string `json:"state"`
}

type sessionResponse struct {
	State  string          `json:"state"`
	User   string          `json:"user"`
	Result *curator.Result `json:"result,omitempty"`
}

func (a *App) apiLogin(c *gin.Context) {
	var payload loginRequest
	if !mustJSON(c, &payload) {
		return
	}
	token, err := a.login(payload.Username, payload.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		writeError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		logging.Error().Err(err).Msg("api login failed")
		writeError(c, http.StatusInternalServerError, "Failed to create session")
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token, State: string(session.StateInput)})
}

func (a *App) apiOptions(c *gin.Context) {
	c.JSON(http.StatusOK, currentFormOptions())
}

func (a *App) apiSession(c *gin.Context) {
	_, machine, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, buildSessionResponse(machine))
}

func (a *App) apiRecommend(c *gin.Context) {
	id, machine, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var form curator.Form
	if !mustJSON(c, &form) {
		return
	}

	result, err := a.recommend(c.Request.Context(), id, form)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, sessionResponse{
			State:  string(session.StateResult),
			User:   machine.User(),
			Result: &result,
		})
	case errors.Is(err, session.ErrInvalidTransition):
		writeError(c, http.StatusConflict, "Restart the session before requesting another recommendation")
	case errors.Is(err, session.ErrNotFound):
		writeError(c, http.StatusUnauthorized, "Session expired")
	default:
		writeError(c, http.StatusBadRequest, formErrorMessage(err))
	}
}

func (a *App) apiRestart(c *gin.Context) {
	id, _, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	machine, err := a.restart(id)
	if errors.Is(err, session.ErrInvalidTransition) {
		writeError(c, http.StatusConflict, "Session has no result to restart from")
		return
	}
	if err != nil {
		writeError(c, http.StatusUnauthorized, "Session expired")
		return
	}
	c.JSON(http.StatusOK, buildSessionResponse(machine))
}

func (a *App) apiLogout(c *gin.Context) {
	id, _, ok := sessionFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	a.logout(id)
	c.JSON(http.StatusOK, gin.H{"state": string(session.StateLoggedOut)})
}

func buildSessionResponse(machine *session.Machine) sessionResponse {
	resp := sessionResponse{
		State: string(machine.State()),
		User:  machine.User(),
	}
	if result, ok := machine.Result(); ok {
		resp.Result = &result
	}
	return resp
}
