package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"matjip/apps/backend/internal/curator"
	"matjip/apps/backend/internal/logging"
	"matjip/apps/backend/internal/session"
)

func (a *App) loginPage(c *gin.Context) {
	if a.hasLiveCookieSession(c) {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "login.tmpl", loginView{AppName: a.cfg.AppName})
}

func (a *App) loginSubmit(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	token, err := a.login(username, c.PostForm("password"))
	if errors.Is(err, session.ErrInvalidCredentials) {
		c.HTML(http.StatusUnauthorized, "login.tmpl", loginView{
			AppName:  a.cfg.AppName,
			Username: username,
			Error:    session.ErrInvalidCredentials.Error(),
		})
		return
	}
	if err != nil {
		logging.Error().Err(err).Msg("login failed")
		c.HTML(http.StatusInternalServerError, "login.tmpl", loginView{
			AppName:  a.cfg.AppName,
			Username: username,
			Error:    "로그인 처리 중 오류가 발생했습니다.",
		})
		return
	}
	a.setSessionCookie(c, token)
	c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) logoutSubmit(c *gin.Context) {
	if raw, err := c.Cookie(sessionCookieName); err == nil {
		if id, err := a.tokens.Parse(raw); err == nil {
			a.logout(id)
		}
	}
	a.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (a *App) homePage(c *gin.Context) {
	_, machine, ok := sessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	if result, ok := machine.Result(); ok {
		c.HTML(http.StatusOK, "result.tmpl", resultView{
			AppName: a.cfg.AppName,
			User:    machine.User(),
			Result:  result,
			Failed:  curator.IsErrorAnswer(result.Answer),
		})
		return
	}
	a.renderInput(c, http.StatusOK, machine, curator.Form{}, "")
}

func (a *App) recommendSubmit(c *gin.Context) {
	id, machine, ok := sessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	var form curator.Form
	if err := c.ShouldBind(&form); err != nil {
		a.renderInput(c, http.StatusBadRequest, machine, form, "입력값을 확인해주세요.")
		return
	}

	_, err := a.recommend(c.Request.Context(), id, form)
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/")
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, session.ErrNotFound):
		c.Redirect(http.StatusSeeOther, "/")
	default:
		a.renderInput(c, http.StatusBadRequest, machine, form, formErrorMessage(err))
	}
}

func (a *App) restartSubmit(c *gin.Context) {
	id, _, ok := sessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	if _, err := a.restart(id); err != nil && !errors.Is(err, session.ErrInvalidTransition) {
		logging.Warn().Err(err).Msg("restart failed")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) renderInput(c *gin.Context, status int, machine *session.Machine, form curator.Form, message string) {
	if form.Gender == "" {
		form.Gender = genderOptions[0]
	}
	c.HTML(status, "input.tmpl", inputView{
		AppName: a.cfg.AppName,
		User:    machine.User(),
		Options: currentFormOptions(),
		Form:    form,
		Error:   message,
	})
}

func (a *App) hasLiveCookieSession(c *gin.Context) bool {
	raw, err := c.Cookie(sessionCookieName)
	if err != nil {
		return false
	}
	id, err := a.tokens.Parse(raw)
	if err != nil {
		return false
	}
	machine, err := a.sessions.Get(id)
	return err == nil && machine.State() != session.StateLoggedOut
}
