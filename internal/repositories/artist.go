package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/artx/internal/models"
	"github.com/desertthunder/artx/internal/shared"
)

// querier is the subset of [sql.DB] / [sql.Tx] the loaders need.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// imageRow is a stored image with its surrogate identity.
type imageRow struct {
	id     string
	url    string
	height int
	width  int
}

// ArtistRepository persists artist aggregates: the artist row, its genre
// associations, both one-to-one side records, and its image list.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new [ArtistRepository] with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Get retrieves an artist with all relations by its provider id.
func (r *ArtistRepository) Get(id string) (*models.Artist, error) {
	artists, err := loadArtists(r.db, []string{id})
	if err != nil {
		return nil, err
	}
	if len(artists) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, id)
	}
	return &artists[0], nil
}

// List retrieves every stored artist with relations, ordered by id.
func (r *ArtistRepository) List() ([]models.Artist, error) {
	return loadArtists(r.db, nil)
}

// Delete removes an artist and cascades to its owned sub-records in the same
// transaction. Genre rows are left in place; only the associations go.
func (r *ArtistRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"images", "followers", "external_urls", "artist_genres"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE artist_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete %s rows: %w", table, err)
		}
	}

	result, err := tx.Exec("DELETE FROM artists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrArtistNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}

// Reconcile merges a batch of fetched snapshots into stored state.
//
// Unknown ids are created fresh. Known ids are overwritten, unless the stored
// record is manually modified and the caller asked to skip such records without
// forcing, in which case the record is left untouched entirely. The returned
// list re-queries every requested id after the merge, so skipped records appear
// with their old values, in storage-query order rather than snapshot order.
//
// A background sync calls Reconcile(snapshots, true, false); a user-initiated
// edit calls Reconcile(snapshots, false, true) and wins unconditionally.
func (r *ArtistRepository) Reconcile(snapshots []models.Artist, skipManual, forceManual bool) ([]models.Artist, error) {
	if len(snapshots) == 0 {
		return nil, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Genres first: artist upserts reference the pool by name.
	if err := ensureGenres(tx, genreUnion(snapshots)); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		ids = append(ids, snap.ID)
	}

	stored, err := loadArtists(tx, ids)
	if err != nil {
		return nil, err
	}
	storedByID := make(map[string]models.Artist, len(stored))
	for _, artist := range stored {
		storedByID[artist.ID] = artist
	}

	imageRows, err := loadImageRows(tx, ids)
	if err != nil {
		return nil, err
	}

	for _, snap := range snapshots {
		current, exists := storedByID[snap.ID]
		if !exists {
			if err := insertArtist(tx, snap, forceManual); err != nil {
				return nil, err
			}
			continue
		}

		if skipManual && !forceManual && current.ManuallyModified {
			continue
		}

		if err := updateArtist(tx, snap, forceManual, imageRows[snap.ID]); err != nil {
			return nil, err
		}
	}

	merged, err := loadArtists(tx, ids)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	return merged, nil
}

// genreUnion collects the deduplicated union of genre names across snapshots.
func genreUnion(snapshots []models.Artist) []string {
	seen := make(map[string]bool)
	var names []string
	for _, snap := range snapshots {
		for _, name := range snap.Genres {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// ensureGenres lazily creates pool rows for unseen names. INSERT OR IGNORE
// keeps the step idempotent when two writers race on the same new name.
func ensureGenres(q querier, names []string) error {
	for _, name := range names {
		if _, err := q.Exec("INSERT OR IGNORE INTO genres (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("failed to ensure genre %q: %w", name, err)
		}
	}
	return nil
}

// linkGenres replaces the artist's genre associations wholesale.
func linkGenres(q querier, artistID string, names []string) error {
	if _, err := q.Exec("DELETE FROM artist_genres WHERE artist_id = ?", artistID); err != nil {
		return fmt.Errorf("failed to clear genre links: %w", err)
	}

	query := `
		INSERT OR IGNORE INTO artist_genres (artist_id, genre_id)
		SELECT ?, id FROM genres WHERE name = ?
	`
	for _, name := range names {
		if _, err := q.Exec(query, artistID, name); err != nil {
			return fmt.Errorf("failed to link genre %q: %w", name, err)
		}
	}
	return nil
}

// replaceSideRecords replaces both one-to-one side records wholesale.
func replaceSideRecords(q querier, artist models.Artist) error {
	if _, err := q.Exec("DELETE FROM external_urls WHERE artist_id = ?", artist.ID); err != nil {
		return fmt.Errorf("failed to clear external urls: %w", err)
	}
	if _, err := q.Exec("INSERT INTO external_urls (artist_id, spotify) VALUES (?, ?)", artist.ID, artist.ExternalURLs.Spotify); err != nil {
		return fmt.Errorf("failed to insert external urls: %w", err)
	}

	if _, err := q.Exec("DELETE FROM followers WHERE artist_id = ?", artist.ID); err != nil {
		return fmt.Errorf("failed to clear followers: %w", err)
	}
	if _, err := q.Exec("INSERT INTO followers (artist_id, href, total) VALUES (?, ?, ?)", artist.ID, artist.Followers.Href, artist.Followers.Total); err != nil {
		return fmt.Errorf("failed to insert followers: %w", err)
	}

	return nil
}

// insertArtist creates a fresh aggregate from a snapshot.
func insertArtist(q querier, snap models.Artist, manual bool) error {
	query := `
		INSERT INTO artists (id, kind, href, name, popularity, uri, manually_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.Exec(query, snap.ID, snap.Kind, snap.Href, snap.Name, snap.Popularity, snap.URI, manual)
	if err != nil {
		return fmt.Errorf("failed to insert artist: %w", err)
	}

	if err := replaceSideRecords(q, snap); err != nil {
		return err
	}
	if err := linkGenres(q, snap.ID, snap.Genres); err != nil {
		return err
	}

	for _, image := range snap.Images {
		if err := insertImage(q, snap.ID, image); err != nil {
			return err
		}
	}

	return nil
}

// updateArtist overwrites a stored aggregate from a snapshot, merging images
// by URL so matched rows keep their surrogate identity.
func updateArtist(q querier, snap models.Artist, manual bool, oldImages []imageRow) error {
	query := `
		UPDATE artists
		SET kind = ?, href = ?, name = ?, popularity = ?, uri = ?, manually_modified = ?
		WHERE id = ?
	`

	if _, err := q.Exec(query, snap.Kind, snap.Href, snap.Name, snap.Popularity, snap.URI, manual, snap.ID); err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}

	if err := replaceSideRecords(q, snap); err != nil {
		return err
	}
	if err := linkGenres(q, snap.ID, snap.Genres); err != nil {
		return err
	}

	drop, create := mergeImages(oldImages, snap.Images)
	for _, imageID := range drop {
		if _, err := q.Exec("DELETE FROM images WHERE id = ?", imageID); err != nil {
			return fmt.Errorf("failed to delete image: %w", err)
		}
	}
	for _, image := range create {
		if err := insertImage(q, snap.ID, image); err != nil {
			return err
		}
	}

	return nil
}

func insertImage(q querier, artistID string, image models.Image) error {
	_, err := q.Exec(
		"INSERT INTO images (id, artist_id, url, height, width) VALUES (?, ?, ?, ?, ?)",
		shared.GenerateID(), artistID, image.URL, image.Height, image.Width,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}
	return nil
}

// mergeImages matches stored image rows against snapshot images by URL:
// unmatched old rows are dropped, matched rows are kept untouched, and
// unmatched new images are created.
func mergeImages(old []imageRow, updated []models.Image) (drop []string, create []models.Image) {
	updatedURLs := make(map[string]bool, len(updated))
	for _, image := range updated {
		updatedURLs[image.URL] = true
	}

	oldURLs := make(map[string]bool, len(old))
	for _, row := range old {
		oldURLs[row.url] = true
		if !updatedURLs[row.url] {
			drop = append(drop, row.id)
		}
	}

	for _, image := range updated {
		if !oldURLs[image.URL] {
			create = append(create, image)
		}
	}

	return drop, create
}

// inClause builds a placeholder list for an IN (...) predicate.
func inClause(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// loadArtists reads artist aggregates with all relations. A nil id set loads
// everything. Results come back in storage-query order (id ascending).
func loadArtists(q querier, ids []string) ([]models.Artist, error) {
	query := "SELECT id, kind, href, name, popularity, uri, manually_modified FROM artists"
	var args []any
	if ids != nil {
		query += " WHERE id IN (" + inClause(len(ids)) + ")"
		args = idArgs(ids)
	}
	query += " ORDER BY id ASC"

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}

	var artists []models.Artist
	for rows.Next() {
		var artist models.Artist
		if err := rows.Scan(&artist.ID, &artist.Kind, &artist.Href, &artist.Name, &artist.Popularity, &artist.URI, &artist.ManuallyModified); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for i := range artists {
		if err := loadRelations(q, &artists[i]); err != nil {
			return nil, err
		}
	}

	return artists, nil
}

// loadRelations fills in genres, both one-to-one records, and images.
func loadRelations(q querier, artist *models.Artist) error {
	rows, err := q.Query(`
		SELECT g.name
		FROM genres g
		JOIN artist_genres ag ON ag.genre_id = g.id
		WHERE ag.artist_id = ?
		ORDER BY g.name ASC
	`, artist.ID)
	if err != nil {
		return fmt.Errorf("failed to query genres: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan genre: %w", err)
		}
		artist.Genres = append(artist.Genres, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	err = q.QueryRow("SELECT spotify FROM external_urls WHERE artist_id = ?", artist.ID).Scan(&artist.ExternalURLs.Spotify)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to query external urls: %w", err)
	}

	var href sql.NullString
	err = q.QueryRow("SELECT href, total FROM followers WHERE artist_id = ?", artist.ID).Scan(&href, &artist.Followers.Total)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to query followers: %w", err)
	}
	if href.Valid {
		artist.Followers.Href = &href.String
	}

	images, err := q.Query("SELECT url, height, width FROM images WHERE artist_id = ? ORDER BY rowid ASC", artist.ID)
	if err != nil {
		return fmt.Errorf("failed to query images: %w", err)
	}
	defer images.Close()
	for images.Next() {
		var image models.Image
		if err := images.Scan(&image.URL, &image.Height, &image.Width); err != nil {
			return fmt.Errorf("failed to scan image: %w", err)
		}
		artist.Images = append(artist.Images, image)
	}
	return images.Err()
}

// loadImageRows reads stored image rows (with surrogate ids) for a set of artists.
func loadImageRows(q querier, ids []string) (map[string][]imageRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := "SELECT id, artist_id, url, height, width FROM images WHERE artist_id IN (" + inClause(len(ids)) + ") ORDER BY rowid ASC"

	rows, err := q.Query(query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	byArtist := make(map[string][]imageRow)
	for rows.Next() {
		var row imageRow
		var artistID string
		if err := rows.Scan(&row.id, &artistID, &row.url, &row.height, &row.width); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		byArtist[artistID] = append(byArtist[artistID], row)
	}

	return byArtist, rows.Err()
}
