package repository

import (
	"context"
	"fmt"

	"photo-social-backend/internal/db"
	"photo-social-backend/internal/models"
)

// LikeRepository handles database operations for post likes
type LikeRepository struct {
	db db.Querier
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db db.Querier) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create inserts a like. The (user_id, post_id) primary key makes a
// repeated like a no-op; inserted reports whether a row was written.
func (r *LikeRepository) Create(ctx context.Context, like *models.PostLike) (bool, error) {
	query := `
		INSERT INTO post_likes (user_id, post_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query, like.UserID, like.PostID, like.Created)
	if err != nil {
		return false, writeError("create like", err)
	}
	return result.RowsAffected() > 0, nil
}

// Delete removes the like of a user on a post
func (r *LikeRepository) Delete(ctx context.Context, postID, userID string) error {
	query := `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, postID, userID)
	if err != nil {
		return writeError("delete like", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserIDs returns the ids of the users who liked a post, oldest first
func (r *LikeRepository) ListUserIDs(ctx context.Context, postID string) ([]string, error) {
	query := `
		SELECT user_id
		FROM post_likes
		WHERE post_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, listError("get likes", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, listError("iterate likes", err)
	}
	return ids, nil
}

// CountByPost counts the likes of a post
func (r *LikeRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count)
	if err != nil {
		return 0, listError("count likes", err)
	}
	return count, nil
}
