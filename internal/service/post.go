package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/internal/storage"
	"github.com/bluehaven/rentals/pkg/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 12
	maxPageLimit     = 100
)

type postService struct {
	transactor     repository.Transactor
	postRepository repository.Posts
	storage        storage.ObjectStorage
	imageLimits    domain.ImageLimits
	timeouts       config.Timeouts
	now            Clock
}

func newPostService(
	transactor repository.Transactor,
	postRepository repository.Posts,
	storage storage.ObjectStorage,
	imageLimits domain.ImageLimits,
	timeouts config.Timeouts,
	now Clock,
) *postService {
	return &postService{
		transactor:     transactor,
		postRepository: postRepository,
		storage:        storage,
		imageLimits:    imageLimits,
		timeouts:       timeouts,
		now:            now,
	}
}

func (s *postService) Create(ctx context.Context, session domain.Session, content domain.PostContent) (*domain.Post, error) {
	if !session.CanOwnListings() {
		return nil, domain.NewForbiddenError("only boarding owners can create posts")
	}

	content = content.Normalize()
	if err := domain.Validate(content); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate post id failed: %w", err)
	}

	post := domain.NewPost(id, session, content, s.now().UTC())

	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	if err := s.postRepository.Create(ctx, post); err != nil {
		return nil, storeError("post", "create post failed", err)
	}

	logger.Info("post created", zap.String("post_id", post.ID.String()), zap.String("owner_id", session.UserID.String()))

	return post, nil
}

// GetByID returns an approved post to anyone. Other statuses are visible
// to the owner and admins only, everyone else gets not_found. viewer is the
// zero Session for anonymous callers.
func (s *postService) GetByID(ctx context.Context, viewer domain.Session, id uuid.UUID) (*domain.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if post.Status != domain.PostStatusApproved && (viewer.UserID == uuid.Nil || !viewer.CanManage(post)) {
		return nil, domain.NewNotFoundError("post not found")
	}

	return post, nil
}

func (s *postService) load(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	post, err := s.postRepository.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("post", "get post failed", err)
	}

	return post, nil
}

// Browse lists approved posts only, whatever status the filters ask for.
func (s *postService) Browse(ctx context.Context, page, limit int, filters *repository.PostFilters) ([]domain.Post, int64, error) {
	if filters == nil {
		filters = &repository.PostFilters{}
	}
	approved := domain.PostStatusApproved
	filters.Status = &approved

	limit, offset := pagination(page, limit)

	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	posts, err := s.postRepository.GetAll(ctx, limit, offset, filters)
	if err != nil {
		return nil, 0, storeError("post", "list posts failed", err)
	}

	total, err := s.postRepository.Count(ctx, filters)
	if err != nil {
		return nil, 0, storeError("post", "count posts failed", err)
	}

	return posts, total, nil
}

func (s *postService) ListMine(ctx context.Context, session domain.Session) ([]domain.Post, error) {
	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	posts, err := s.postRepository.GetByOwner(ctx, session.UserID)
	if err != nil {
		return nil, storeError("post", "list own posts failed", err)
	}

	return posts, nil
}

// mutate loads the post under a row lock, applies fn and writes it back in
// the same transaction.
func (s *postService) mutate(ctx context.Context, id uuid.UUID, fn func(post *domain.Post) error) (*domain.Post, error) {
	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	var result *domain.Post
	err := s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		post, err := s.postRepository.GetByIDForUpdateWithTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := fn(post); err != nil {
			return err
		}

		if err := s.postRepository.UpdateWithTx(ctx, tx, post); err != nil {
			return err
		}

		result = post
		return nil
	})
	if err != nil {
		return nil, storeError("post", "update post failed", err)
	}

	return result, nil
}

func (s *postService) Edit(ctx context.Context, session domain.Session, id uuid.UUID, update domain.PostUpdate) (*domain.Post, error) {
	return s.mutate(ctx, id, func(post *domain.Post) error {
		if !session.CanManage(post) {
			return domain.NewForbiddenError("you can only edit your own posts")
		}

		content := update.Apply(post.Content())
		if err := domain.Validate(content); err != nil {
			return err
		}

		post.ApplyEdit(content, s.now().UTC())
		return nil
	})
}

func (s *postService) Approve(ctx context.Context, session domain.Session, id uuid.UUID) (*domain.Post, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	post, err := s.mutate(ctx, id, func(post *domain.Post) error {
		return post.Approve(s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("post approved", zap.String("post_id", id.String()), zap.String("admin_id", session.UserID.String()))

	return post, nil
}

func (s *postService) Decline(ctx context.Context, session domain.Session, id uuid.UUID, reason string) (*domain.Post, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	post, err := s.mutate(ctx, id, func(post *domain.Post) error {
		return post.Decline(reason, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}

	logger.Info("post declined", zap.String("post_id", id.String()), zap.String("admin_id", session.UserID.String()))

	return post, nil
}

// ReviewQueue is every pending post, edited ones included, without duplicates.
func (s *postService) ReviewQueue(ctx context.Context, session domain.Session) ([]domain.Post, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	pending, err := s.postRepository.GetByStatus(ctx, domain.PostStatusPending)
	if err != nil {
		return nil, storeError("post", "list pending posts failed", err)
	}

	edited, err := s.postRepository.GetEditedPending(ctx)
	if err != nil {
		return nil, storeError("post", "list edited posts failed", err)
	}

	return domain.MergeReviewQueue(pending, edited), nil
}

func (s *postService) ListByStatus(ctx context.Context, session domain.Session, status domain.PostStatus) ([]domain.Post, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown post status %q", status))
	}

	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	posts, err := s.postRepository.GetByStatus(ctx, status)
	if err != nil {
		return nil, storeError("post", "list posts failed", err)
	}

	return posts, nil
}

// Delete removes the post and its images. Image cleanup failures are
// collected in the report and returned as a partial failure after the
// record itself is gone.
func (s *postService) Delete(ctx context.Context, session domain.Session, id uuid.UUID) (*domain.PostDeletionReport, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.CanManage(post) {
		return nil, domain.NewForbiddenError("you can only delete your own posts")
	}

	report, err := s.deletePost(ctx, post)
	if err != nil {
		return report, err
	}

	if len(report.Errors) > 0 {
		return report, domain.NewPartialFailureError("post deleted, some images could not be removed", report)
	}

	return report, nil
}

func (s *postService) deletePost(ctx context.Context, post *domain.Post) (*domain.PostDeletionReport, error) {
	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	report := &domain.PostDeletionReport{PostID: post.ID, Errors: []string{}}

	urls, err := folderURLs(ctx, s.storage, storage.PostFolder(post.ID), post.Images)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("list images: %v", err))
	}

	for _, url := range urls {
		if errs := removeObjects(ctx, s.storage, []string{url}); len(errs) > 0 {
			report.Errors = append(report.Errors, fmt.Sprintf("delete image %s: %v", url, errs[0]))
			continue
		}
		report.ImagesDeleted++
	}

	if err := s.postRepository.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return report, domain.NewNotFoundError("post not found")
		}
		return report, domain.NewDependencyError("delete post failed", err)
	}
	report.PostDeleted = true

	if len(report.Errors) > 0 {
		logger.Warn("post deleted with image cleanup errors",
			zap.String("post_id", post.ID.String()),
			zap.Strings("errors", report.Errors),
		)
	}

	return report, nil
}

// deleteOwnedBy removes every post of an owner. It returns one message per
// failure and never stops early.
func (s *postService) deleteOwnedBy(ctx context.Context, ownerID uuid.UUID) []string {
	var failures []string

	listCtx, cancel := withTimeout(ctx, s.timeouts.Store)
	posts, err := s.postRepository.GetByOwner(listCtx, ownerID)
	cancel()
	if err != nil {
		return []string{fmt.Sprintf("list posts: %v", err)}
	}

	for i := range posts {
		report, err := s.deletePost(ctx, &posts[i])
		if err != nil {
			failures = append(failures, fmt.Sprintf("post %s: %v", posts[i].ID, err))
		}
		if report != nil {
			for _, e := range report.Errors {
				failures = append(failures, fmt.Sprintf("post %s: %s", posts[i].ID, e))
			}
		}
	}

	return failures
}

// AttachImages validates the batch as a unit, stores it and appends the
// URLs. The count limit is checked again under the row lock.
func (s *postService) AttachImages(ctx context.Context, session domain.Session, id uuid.UUID, images []ImageUpload) (*domain.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !session.CanManage(post) {
		return nil, domain.NewForbiddenError("you can only add images to your own posts")
	}

	metas := imageMetas(images)
	if err := domain.ValidateImages(metas, len(post.Images), s.imageLimits); err != nil {
		return nil, err
	}

	uploadCtx, cancel := withTimeout(ctx, s.timeouts.Store)
	urls, err := uploadImages(uploadCtx, s.storage, storage.PostFolder(id), images)
	cancel()
	if err != nil {
		return nil, err
	}

	updated, err := s.mutate(ctx, id, func(post *domain.Post) error {
		if err := domain.ValidateImages(metas, len(post.Images), s.imageLimits); err != nil {
			return err
		}
		post.AttachImages(urls, s.now().UTC())
		return nil
	})
	if err != nil {
		if errs := removeObjects(context.WithoutCancel(ctx), s.storage, urls); len(errs) > 0 {
			logger.Error("remove orphaned post images failed", zap.String("post_id", id.String()), zap.Errors("errors", errs))
		}
		return nil, err
	}

	return updated, nil
}

func (s *postService) Stats(ctx context.Context, session domain.Session) (*domain.PostStats, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeouts.Store)
	defer cancel()

	byStatus, err := s.postRepository.CountByStatus(ctx)
	if err != nil {
		return nil, storeError("post", "count posts by status failed", err)
	}

	byCategory, err := s.postRepository.CountByCategory(ctx)
	if err != nil {
		return nil, storeError("post", "count posts by category failed", err)
	}

	stats := &domain.PostStats{ByStatus: byStatus, ByCategory: byCategory}
	for _, n := range byStatus {
		stats.Total += n
	}

	return stats, nil
}

func pagination(page, limit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}
