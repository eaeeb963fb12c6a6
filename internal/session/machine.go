// Package session models one user's interactive session: whether they are
// logged in, and whether they are looking at the input form or a result.
package session

import (
	"errors"
	"fmt"

	"matjip/apps/backend/internal/curator"
	"matjip/apps/backend/internal/metrics"
)

type State string

const (
	StateLoggedOut State = "logged_out"
	StateInput     State = "input"
	StateResult    State = "result"
)

var (
	ErrInvalidCredentials = errors.New("아이디 또는 비밀번호가 틀렸습니다.")
	ErrInvalidTransition  = errors.New("invalid session transition")
)

// Machine is the per-session state machine:
//
//	LoggedOut --Login--> Input --ShowResult--> Result --Restart--> Input
//
// Logout returns to LoggedOut from any state. A Machine is not safe for
// concurrent use; Store serialises access.
type Machine struct {
	state  State
	user   string
	result *curator.Result
}

func NewMachine() *Machine {
	return &Machine{state: StateLoggedOut}
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) User() string {
	return m.user
}

// Result returns the stored result while in StateResult.
func (m *Machine) Result() (curator.Result, bool) {
	if m.state != StateResult || m.result == nil {
		return curator.Result{}, false
	}
	return *m.result, true
}

// Login moves LoggedOut to Input when verifier accepts the credentials.
// On mismatch the state is left as is.
func (m *Machine) Login(verifier CredentialVerifier, user, password string) error {
	if m.state != StateLoggedOut {
		return m.transitionError("login")
	}
	if verifier == nil || !verifier.Verify(user, password) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return ErrInvalidCredentials
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	m.state = StateInput
	m.user = user
	return nil
}

// ShowResult moves Input to Result and keeps result for display.
func (m *Machine) ShowResult(result curator.Result) error {
	if m.state != StateInput {
		return m.transitionError("show result")
	}
	m.result = &result
	m.state = StateResult
	return nil
}

// Restart moves Result back to Input and drops the stored result.
func (m *Machine) Restart() error {
	if m.state != StateResult {
		return m.transitionError("restart")
	}
	m.result = nil
	m.state = StateInput
	return nil
}

func (m *Machine) Logout() {
	m.state = StateLoggedOut
	m.user = ""
	m.result = nil
}

func (m *Machine) clone() *Machine {
	c := *m
	if m.result != nil {
		r := *m.result
		c.result = &r
	}
	return &c
}

func (m *Machine) transitionError(action string) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, m.state)
}
