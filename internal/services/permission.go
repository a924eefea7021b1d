package services

import (
	"context"
	"errors"
	"fmt"

	"photo-social-backend/internal/models"
	"photo-social-backend/internal/repository"
)

// PermissionService decides whether an acting user may touch a target.
// Admins may act on anything; contributors only on what they own. A
// missing actor or target is reported as ErrUnprocessable.
type PermissionService struct {
	userRepo       UserRepository
	postRepo       PostRepository
	photoRepo      PhotoRepository
	commentRepo    CommentRepository
	collectionRepo CollectionRepository
}

// NewPermissionService creates a new permission service
func NewPermissionService(
	userRepo UserRepository,
	postRepo PostRepository,
	photoRepo PhotoRepository,
	commentRepo CommentRepository,
	collectionRepo CollectionRepository,
) *PermissionService {
	return &PermissionService{
		userRepo:       userRepo,
		postRepo:       postRepo,
		photoRepo:      photoRepo,
		commentRepo:    commentRepo,
		collectionRepo: collectionRepo,
	}
}

// CanActOnUser checks that actorID may modify or delete targetUserID
func (s *PermissionService) CanActOnUser(ctx context.Context, actorID, targetUserID string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	exists, err := s.userRepo.Exists(ctx, targetUserID)
	if err != nil {
		return translate("check user", err)
	}
	if !exists {
		return fmt.Errorf("user %s: %w", targetUserID, ErrUnprocessable)
	}
	return authorize(actor, targetUserID)
}

// CanModifyPost checks that actorID may update or delete postID
func (s *PermissionService) CanModifyPost(ctx context.Context, actorID, postID string) error {
	actor, post, err := s.actorAndPost(ctx, actorID, postID)
	if err != nil {
		return err
	}
	return authorize(actor, post.CreatorID)
}

// CanViewPost checks that postID is public or visible to actorID
func (s *PermissionService) CanViewPost(ctx context.Context, actorID, postID string) error {
	actor, post, err := s.actorAndPost(ctx, actorID, postID)
	if err != nil {
		return err
	}
	if post.Public {
		return nil
	}
	return authorize(actor, post.CreatorID)
}

// CanCreateComment checks that actorID may comment on postID
func (s *PermissionService) CanCreateComment(ctx context.Context, actorID, postID string) error {
	return s.CanViewPost(ctx, actorID, postID)
}

// CanLikePost checks that actorID may like or unlike postID
func (s *PermissionService) CanLikePost(ctx context.Context, actorID, postID string) error {
	return s.CanViewPost(ctx, actorID, postID)
}

// CanDeleteComment checks that actorID wrote commentID or is an admin
func (s *PermissionService) CanDeleteComment(ctx context.Context, actorID, commentID string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return target("comment", commentID, err)
	}
	return authorize(actor, comment.CreatorID)
}

// CanModifyCollection checks that actorID may update or delete collectionID
func (s *PermissionService) CanModifyCollection(ctx context.Context, actorID, collectionID string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	collection, err := s.collectionRepo.GetByID(ctx, collectionID)
	if err != nil {
		return target("collection", collectionID, err)
	}
	return authorize(actor, collection.CreatorID)
}

// CanModifyPhoto checks that actorID owns the post photoID belongs to
func (s *PermissionService) CanModifyPhoto(ctx context.Context, actorID, photoID string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		return target("photo", photoID, err)
	}
	post, err := s.postRepo.GetByID(ctx, photo.PostID)
	if err != nil {
		return target("post", photo.PostID, err)
	}
	return authorize(actor, post.CreatorID)
}

func (s *PermissionService) actor(ctx context.Context, actorID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, target("acting user", actorID, err)
	}
	return user, nil
}

func (s *PermissionService) actorAndPost(ctx context.Context, actorID, postID string) (*models.User, *models.Post, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, target("post", postID, err)
	}
	return actor, post, nil
}

// target reports a missing entity as unprocessable and anything else as a
// storage failure
func target(kind, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrUnprocessable)
	}
	return translate("load "+kind, err)
}

func authorize(actor *models.User, ownerID string) error {
	if actor.Role == models.RoleAdmin || actor.ID == ownerID {
		return nil
	}
	return fmt.Errorf("user %s on resource of %s: %w", actor.ID, ownerID, ErrPermissionDenied)
}
