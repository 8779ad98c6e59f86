package relay

import "errors"

// ErrEmptyToken indicates that no token was provided and no session was injected via WithSession.
var ErrEmptyToken = errors.New("token must be set or a session must be provided via WithSession")

// ErrNoAuthor indicates that the given message has no author.
var ErrNoAuthor = errors.New("message has no author")

// ErrMissingPermissions indicates that the invoker of an administrative command is not an administrator.
var ErrMissingPermissions = errors.New("administrator permission is required")

// ErrNegativeCooldown indicates that a negative cooldown duration was given.
var ErrNegativeCooldown = errors.New("cooldown duration must not be negative")

// ErrUnknownInteraction indicates that the given interaction is not one this bot handles.
var ErrUnknownInteraction = errors.New("unknown interaction")

// ErrNoRouter indicates that NewAdapter was called without a Router.
var ErrNoRouter = errors.New("router must not be nil")
