package game

import "errors"

var (
	// ErrNoPlayer means a system that needs the player singleton found none.
	// It indicates a setup bug, not a gameplay condition.
	ErrNoPlayer          = errors.New("player entity missing")
	ErrNoWeapon          = errors.New("weapon entity missing")
	ErrInvalidTransition = errors.New("invalid state transition")
)
