package repository

import (
	"context"
	"fmt"

	"photo-social-backend/internal/db"
	"photo-social-backend/internal/models"
)

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db db.Querier
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db db.Querier) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create creates a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, creator_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query,
		comment.ID, comment.PostID, comment.CreatorID, comment.Content, comment.Created,
	)
	if err != nil {
		return writeError("create comment", err)
	}
	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `
		SELECT id, post_id, creator_id, content, created_at
		FROM comments
		WHERE id = $1
	`
	var c models.Comment
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.PostID, &c.CreatorID, &c.Content, &c.Created)
	if err != nil {
		return nil, readError("get comment", err)
	}
	return &c, nil
}

// ListByPost retrieves the comments of a post, most recent first.
// Comments created at the same instant keep their insertion order.
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	query := `
		SELECT id, post_id, creator_id, content, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at DESC, seq ASC
	`
	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, listError("get comments", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.CreatorID, &c.Content, &c.Created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, listError("iterate comments", err)
	}
	return comments, nil
}

// Delete deletes a comment by ID
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return writeError("delete comment", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
