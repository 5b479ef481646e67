// Package models defines the domain entities for the artist tracking service.
//
// Two aggregates exist:
//
//   - [Credential] : the OAuth access/refresh token pair plus metadata. At most
//     one credential is stored at any time; writes replace the previous row.
//   - [Artist] : a tracked catalog record with its relational sub-data (shared
//     genre pool, one-to-one external_urls and followers records, an ordered
//     image list) and a manual-edit flag.
//
// JSON tags on [Artist] mirror the Spotify wire contract, so the same struct
// serves as the fetched snapshot and as the HTTP request/response body.
package models
