package domain

import (
	"time"
)

// WatchEntry records how far a user got into a title (or a specific episode
// for series). One entry per (user, title, episode) triple; progress writes
// replace the previous position.
type WatchEntry struct {
	ID              string    `json:"id"`
	UserID          UserID    `json:"user_id"`
	TitleID         TitleID   `json:"movie_id"`
	EpisodeID       EpisodeID `json:"episode_id,omitempty"`
	ProgressSeconds int       `json:"progress_seconds"`
	Completed       bool      `json:"completed"`
	LastWatchedAt   time.Time `json:"last_watched_at"`
}
