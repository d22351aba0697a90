package session

import (
	"errors"

	"github.com/dmitrijs2005/filmrate/internal/client/models"
	"github.com/dmitrijs2005/filmrate/internal/common"
)

// ErrUnresolved is returned when an action runs before Init.
var ErrUnresolved = errors.New("session not resolved yet")

// Requirement is what an action needs from the caller's identity.
type Requirement int

const (
	RequireUser Requirement = iota + 1
	RequireAdmin
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Granted Decision = iota
	Unresolved
	Unauthenticated
	Unauthorized
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Unresolved:
		return "unresolved"
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Permission is the typed result of Store.Authorize. When granted it carries
// the identity the action runs as.
type Permission struct {
	Decision Decision
	user     *models.User
}

func (p Permission) Granted() bool { return p.Decision == Granted }

// User returns the authorized identity, nil unless granted.
func (p Permission) User() *models.User {
	if !p.Granted() {
		return nil
	}
	u := *p.user
	return &u
}

// Err maps a denied permission to its sentinel; nil when granted.
func (p Permission) Err() error {
	switch p.Decision {
	case Granted:
		return nil
	case Unresolved:
		return ErrUnresolved
	case Unauthorized:
		return common.ErrUnauthorized
	default:
		return common.ErrUnauthenticated
	}
}
