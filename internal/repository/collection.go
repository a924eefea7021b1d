package repository

import (
	"context"
	"fmt"

	"photo-social-backend/internal/db"
	"photo-social-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// CollectionRepository handles database operations for collections and
// their post memberships
type CollectionRepository struct {
	db db.Querier
}

// NewCollectionRepository creates a new collection repository
func NewCollectionRepository(db db.Querier) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Create creates a collection together with its post memberships
func (r *CollectionRepository) Create(ctx context.Context, c *models.Collection) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO collections (id, creator_id, name, description, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, c.ID, c.CreatorID, c.Name, c.Description, c.CreatedAt)
		if err != nil {
			return writeError("create collection", err)
		}
		return insertMemberships(ctx, tx, c.ID, c.PostIDs)
	})
}

// Update replaces the name, description and full post set of a collection
func (r *CollectionRepository) Update(ctx context.Context, id, name string, description *string, postIDs []string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE collections SET name = $1, description = $2 WHERE id = $3
		`, name, description, id)
		if err != nil {
			return writeError("update collection", err)
		}
		if result.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM collection_posts WHERE collection_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear collection posts: %w", err)
		}
		return insertMemberships(ctx, tx, id, postIDs)
	})
}

// GetByID retrieves a collection and the ids of its posts
func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	query := `
		SELECT id, creator_id, name, description, created_at
		FROM collections
		WHERE id = $1
	`
	var c models.Collection
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.CreatorID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		return nil, readError("get collection", err)
	}

	members, err := r.postIDs(ctx, []string{c.ID})
	if err != nil {
		return nil, err
	}
	c.PostIDs = members[c.ID]
	return &c, nil
}

// ListByCreator retrieves the collections of a user, newest first
func (r *CollectionRepository) ListByCreator(ctx context.Context, creatorID string) ([]*models.Collection, error) {
	query := `
		SELECT id, creator_id, name, description, created_at
		FROM collections
		WHERE creator_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, creatorID)
	if err != nil {
		return nil, listError("list collections", err)
	}
	defer rows.Close()

	var (
		collections []*models.Collection
		ids         []string
	)
	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, &c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, listError("iterate collections", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return collections, nil
	}
	members, err := r.postIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range collections {
		c.PostIDs = members[c.ID]
	}
	return collections, nil
}

// Delete deletes a collection; memberships cascade
func (r *CollectionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return writeError("delete collection", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CollectionRepository) postIDs(ctx context.Context, collectionIDs []string) (map[string][]string, error) {
	query := `
		SELECT collection_id, post_id
		FROM collection_posts
		WHERE collection_id = ANY($1::uuid[])
		ORDER BY post_id
	`
	rows, err := r.db.Query(ctx, query, collectionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection posts: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]string, len(collectionIDs))
	for rows.Next() {
		var collectionID, postID string
		if err := rows.Scan(&collectionID, &postID); err != nil {
			return nil, fmt.Errorf("failed to scan collection post: %w", err)
		}
		members[collectionID] = append(members[collectionID], postID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection posts: %w", err)
	}
	return members, nil
}

func insertMemberships(ctx context.Context, tx pgx.Tx, collectionID string, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO collection_posts (collection_id, post_id)
		SELECT $1::uuid, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, collectionID, postIDs)
	if err != nil {
		return writeError("add collection posts", err)
	}
	return nil
}
