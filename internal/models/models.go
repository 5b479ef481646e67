package models

import "time"

// Credential represents the OAuth token pair issued by the provider.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int       `json:"expires_in"` // seconds
	Scope        string    `json:"scope"`
	TokenType    string    `json:"token_type"`
	IssuedAt     time.Time `json:"issued_at"`
}

// Expired reports whether the access token is past its lifetime.
func (c Credential) Expired() bool {
	return time.Now().After(c.IssuedAt.Add(time.Duration(c.ExpiresIn) * time.Second))
}

// ExternalURLs is the one-to-one side record holding provider links for an artist.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Followers is the one-to-one side record holding follower data for an artist.
type Followers struct {
	Href  *string `json:"href"`
	Total int     `json:"total"`
}

// Image represents an image resource attached to an artist.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist represents a tracked catalog artist.
//
// ID is the stable provider identifier and the primary key. Genres reference
// the global name-keyed pool. ManuallyModified marks records edited by a human;
// such records are immune to automatic overwrite unless the write is forced.
type Artist struct {
	ID               string       `json:"id"`
	Kind             string       `json:"type"`
	Href             string       `json:"href"`
	Name             string       `json:"name"`
	Popularity       int          `json:"popularity"`
	URI              string       `json:"uri"`
	Genres           []string     `json:"genres"`
	ExternalURLs     ExternalURLs `json:"external_urls"`
	Followers        Followers    `json:"followers"`
	Images           []Image      `json:"images"`
	ManuallyModified bool         `json:"manually_modified"`
}
