package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("authentication required")
	ErrForbidden         = errors.New("you do not have access to this agent")
	ErrNotFound          = errors.New("property not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrProfileNotFound   = errors.New("user profile not found")
	ErrAdminRequired     = errors.New("admin privileges required")
	ErrProviderConfig    = errors.New("server configuration error: agent provider api key missing")
	ErrLLMConfig         = errors.New("server configuration error: llm api key missing")
	ErrPersistFailed     = errors.New("failed to save extracted property")
	ErrEnqueueFailed     = errors.New("failed to enqueue import job")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid email or password")
)
