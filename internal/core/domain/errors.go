package domain

import "errors"

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAlreadyInitialized = errors.New("session manager already initialized")
	ErrTitleNotFound      = errors.New("title not found")
	ErrEpisodeNotFound    = errors.New("episode not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrPaymentRequired    = errors.New("active subscription or admin access required")
	ErrEmptyCredentials   = errors.New("email and password are required")
)
