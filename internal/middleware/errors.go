package middleware

import "errors"

// Errors returned by scripted middleware.
var (
	// ErrScriptClosed indicates use of a closed script.
	ErrScriptClosed = errors.New("script is closed")

	// ErrNoHooks indicates a script that defines neither before nor after.
	ErrNoHooks = errors.New("script defines no before or after function")
)
