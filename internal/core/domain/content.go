package domain

import (
	"time"
)

type TitleID string
type SeasonID string
type EpisodeID string

type ContentType string

const (
	ContentMovie  ContentType = "movie"
	ContentSeries ContentType = "series"
)

type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPublished ContentStatus = "published"
)

// VideoSource identifies the third-party embed provider hosting the actual
// media. Playback itself never terminates here.
type VideoSource string

const (
	SourceYouTube VideoSource = "youtube"
	SourceVimeo   VideoSource = "vimeo"
	SourceDirect  VideoSource = "direct"
)

// Title is one catalog entry, a movie or a series. Series carry seasons and
// have no top-level video URL of their own.
type Title struct {
	ID              TitleID       `json:"id"`
	Name            string        `json:"title"`
	Description     string        `json:"description"`
	Type            ContentType   `json:"type"`
	ReleaseYear     int           `json:"release_year"`
	DurationMinutes int           `json:"duration_minutes,omitempty"`
	PosterURL       string        `json:"poster_url"`
	BackdropURL     string        `json:"backdrop_url,omitempty"`
	TrailerURL      string        `json:"trailer_url,omitempty"`
	VideoURL        string        `json:"video_url,omitempty"`
	VideoSource     VideoSource   `json:"video_source"`
	Featured        bool          `json:"is_featured"`
	Trending        bool          `json:"is_trending"`
	Status          ContentStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Categories      []Category    `json:"categories,omitempty"`
	Seasons         []Season      `json:"seasons,omitempty"`
}

// Published reports whether the title is visible to non-admin consumers.
func (t *Title) Published() bool {
	return t.Status == StatusPublished
}

type Season struct {
	ID           SeasonID  `json:"id"`
	TitleID      TitleID   `json:"movie_id"`
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"title,omitempty"`
	Episodes     []Episode `json:"episodes,omitempty"`
}

type Episode struct {
	ID              EpisodeID   `json:"id"`
	SeasonID        SeasonID    `json:"season_id"`
	EpisodeNumber   int         `json:"episode_number"`
	Name            string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	DurationMinutes int         `json:"duration_minutes,omitempty"`
	VideoURL        string      `json:"video_url"`
	VideoSource     VideoSource `json:"video_source"`
	ThumbnailURL    string      `json:"thumbnail_url,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Icon string `json:"icon,omitempty"`
}

// Collection is an editorially curated, ordered set of titles.
type Collection struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description,omitempty"`
	DisplayOrder int     `json:"display_order"`
	Active       bool    `json:"is_active"`
	Titles       []Title `json:"titles,omitempty"`
}

// PlaybackDescriptor is what a player needs to start playback once access has
// been granted: the embed source and the media URL.
type PlaybackDescriptor struct {
	TitleID   TitleID     `json:"title_id"`
	EpisodeID EpisodeID   `json:"episode_id,omitempty"`
	Source    VideoSource `json:"source"`
	URL       string      `json:"url"`
	Trailer   bool        `json:"trailer"`
}
