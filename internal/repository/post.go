package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"photo-social-backend/internal/db"
	"photo-social-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const postColumns = `id, creator_id, location_id, public, description, created_at, updated_at`

// PostQuery holds the conjunctive filters for listing posts
type PostQuery struct {
	UserID     *string
	LocationID *string
	PublicOnly bool
	Limit      int
}

// PostChanges holds the mutable fields of a post
type PostChanges struct {
	LocationID  string
	Public      bool
	Description *string
	Created     time.Time
	Updated     time.Time
}

// PostRepository handles database operations for posts
type PostRepository struct {
	db db.Querier
}

// NewPostRepository creates a new post repository
func NewPostRepository(db db.Querier) *PostRepository {
	return &PostRepository{db: db}
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, creator_id, location_id, public, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID, post.CreatorID, post.LocationID, post.Public, post.Description, post.Created, post.Updated,
	)
	if err != nil {
		return writeError("create post", err)
	}
	return nil
}

// GetByID retrieves a post row by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, readError("get post", err)
	}
	return post, nil
}

// Update replaces the mutable fields of a post. The creator is never changed.
func (r *PostRepository) Update(ctx context.Context, id string, changes PostChanges) error {
	query := `
		UPDATE posts
		SET location_id = $1, public = $2, description = $3, created_at = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.Exec(ctx, query,
		changes.LocationID, changes.Public, changes.Description, changes.Created, changes.Updated, id,
	)
	if err != nil {
		return writeError("update post", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves posts matching every filter in q, most recent first
func (r *PostRepository) List(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	var (
		conds []string
		args  []any
	)
	if q.UserID != nil {
		args = append(args, *q.UserID)
		conds = append(conds, fmt.Sprintf("creator_id = $%d", len(args)))
	}
	if q.LocationID != nil {
		args = append(args, *q.LocationID)
		conds = append(conds, fmt.Sprintf("location_id = $%d", len(args)))
	}
	if q.PublicOnly {
		conds = append(conds, "public = TRUE")
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + postColumns + ` FROM posts`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	return r.queryPosts(ctx, sb.String(), args...)
}

// ListByIDs retrieves the given posts, most recent first
func (r *PostRepository) ListByIDs(ctx context.Context, ids []string, publicOnly bool) ([]*models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE id = ANY($1::uuid[]) AND (NOT $2 OR public = TRUE)
		ORDER BY created_at DESC
	`
	return r.queryPosts(ctx, query, ids, publicOnly)
}

// ExistingIDs returns the subset of ids that have a post row
func (r *PostRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id FROM posts WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, listError("check posts", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan post id: %w", err)
		}
		found = append(found, id)
	}
	if err := rows.Err(); err != nil {
		return nil, listError("iterate post ids", err)
	}
	return found, nil
}

// Delete deletes a post. Photos, comments, likes and collection
// memberships are removed by ON DELETE CASCADE.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return writeError("delete post", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, listError("list posts", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, listError("iterate posts", err)
	}
	return posts, nil
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID, &post.CreatorID, &post.LocationID, &post.Public,
		&post.Description, &post.Created, &post.Updated,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
