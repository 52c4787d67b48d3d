package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cognition-berries/pkg/logger"
	"cognition-berries/services/api/internal/entity"
	"cognition-berries/services/api/internal/repo/persistent"
)

type ForumUseCase interface {
	ListPosts(ctx context.Context, filter entity.ForumFilter) ([]*entity.ForumPost, error)
	GetPost(ctx context.Context, id string) (*entity.ForumPost, error)
	CreatePost(ctx context.Context, actor entity.Actor, post *entity.ForumPost) (*entity.ForumPost, error)
	DeletePost(ctx context.Context, actor entity.Actor, id string) error
	ListReplies(ctx context.Context, postID string) ([]*entity.ForumReply, error)
	CreateReply(ctx context.Context, actor entity.Actor, reply *entity.ForumReply) (*entity.ForumReply, error)
	GetThread(ctx context.Context, postID string) ([]*entity.ThreadNode, error)
}

type forumUseCase struct {
	forumRepo persistent.ForumRepository
	events    Cache
	logger    *logger.Logger
}

func NewForumUseCase(forumRepo persistent.ForumRepository, events Cache, logger *logger.Logger) ForumUseCase {
	return &forumUseCase{
		forumRepo: forumRepo,
		events:    events,
		logger:    logger,
	}
}

func (uc *forumUseCase) ListPosts(ctx context.Context, filter entity.ForumFilter) ([]*entity.ForumPost, error) {
	return uc.forumRepo.ListPosts(ctx, filter)
}

func (uc *forumUseCase) GetPost(ctx context.Context, id string) (*entity.ForumPost, error) {
	return uc.forumRepo.GetPost(ctx, id)
}

func (uc *forumUseCase) CreatePost(ctx context.Context, actor entity.Actor, post *entity.ForumPost) (*entity.ForumPost, error) {
	post.AuthorID = actor.UID
	post.AuthorName = actor.DisplayName()
	post.Tags = normalizeTags(post.Tags)

	created, err := uc.forumRepo.CreatePost(ctx, post)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, entity.ForumEvent{Type: entity.ForumEventPostCreated, PostID: created.ID, Data: created})
	return created, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func (uc *forumUseCase) DeletePost(ctx context.Context, actor entity.Actor, id string) error {
	post, err := uc.forumRepo.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != actor.UID && !actor.IsAdmin() {
		return entity.ErrForbidden
	}

	if err := uc.forumRepo.DeletePost(ctx, id); err != nil {
		return err
	}
	uc.publish(ctx, entity.ForumEvent{Type: entity.ForumEventPostDeleted, PostID: id})
	uc.logger.Info("Forum post %s deleted by %s", id, actor.UID)
	return nil
}

func (uc *forumUseCase) ListReplies(ctx context.Context, postID string) ([]*entity.ForumReply, error) {
	return uc.forumRepo.ListReplies(ctx, postID)
}

func (uc *forumUseCase) CreateReply(ctx context.Context, actor entity.Actor, reply *entity.ForumReply) (*entity.ForumReply, error) {
	if _, err := uc.forumRepo.GetPost(ctx, reply.PostID); err != nil {
		return nil, err
	}

	if reply.ParentReplyID != "" {
		parent, err := uc.forumRepo.GetReply(ctx, reply.ParentReplyID)
		if err != nil {
			if errors.Is(err, entity.ErrReplyNotFound) || errors.Is(err, entity.ErrInvalidID) {
				return nil, entity.ErrInvalidParent
			}
			return nil, err
		}
		if parent.PostID != reply.PostID {
			return nil, entity.ErrInvalidParent
		}
	}

	reply.AuthorID = actor.UID
	reply.AuthorName = actor.DisplayName()

	created, err := uc.forumRepo.CreateReply(ctx, reply)
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, entity.ForumEvent{Type: entity.ForumEventReplyCreated, PostID: created.PostID, Data: created})
	return created, nil
}

func (uc *forumUseCase) GetThread(ctx context.Context, postID string) ([]*entity.ThreadNode, error) {
	if _, err := uc.forumRepo.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	replies, err := uc.forumRepo.ListReplies(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	return BuildThread(replies), nil
}

func (uc *forumUseCase) publish(ctx context.Context, event entity.ForumEvent) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishJSON(ctx, ForumEventsChannel, event); err != nil {
		uc.logger.Warn("Failed to publish forum event %s: %v", event.Type, err)
	}
}
