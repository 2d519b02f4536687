package service

// ValidationError reports the first input rule a request failed, before
// anything is persisted. Maps to HTTP 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError covers credential and refresh-token failures. Maps to HTTP 401.
// Login failures always carry the same generic message so callers cannot
// enumerate accounts.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }
