package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/queue/task"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/internal/storage"
	"github.com/bluehaven/rentals/pkg/otp"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var testTimeouts = config.Timeouts{Store: time.Second, Mail: time.Second}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sequenceOTP hands out fixed codes in order.
type sequenceOTP struct {
	mu    sync.Mutex
	codes []string
}

func (g *sequenceOTP) RandomSecret(length int) string {
	return strings.Repeat("A", otp.EncodedSecretLength(length))
}

func (g *sequenceOTP) Code() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.codes) == 0 {
		return "", errors.New("no codes left")
	}
	code := g.codes[0]
	g.codes = g.codes[1:]
	return code, nil
}

type fakeMailQueue struct {
	mu            sync.Mutex
	err           error
	verifications []task.SendVerificationEmail
	resets        []task.SendPasswordResetEmail
}

func (q *fakeMailQueue) EnqueueVerificationEmail(_ context.Context, payload task.SendVerificationEmail) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.verifications = append(q.verifications, payload)
	return nil
}

func (q *fakeMailQueue) EnqueuePasswordResetEmail(_ context.Context, payload task.SendPasswordResetEmail) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.resets = append(q.resets, payload)
	return nil
}

// fakeVerificationRepository mirrors the SQL semantics, including the
// conditional mark used.
type fakeVerificationRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.EmailVerification
}

func newFakeVerificationRepository() *fakeVerificationRepository {
	return &fakeVerificationRepository{records: map[uuid.UUID]domain.EmailVerification{}}
}

func (r *fakeVerificationRepository) Create(_ context.Context, v *domain.EmailVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[v.ID] = *v
	return nil
}

func (r *fakeVerificationRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r *fakeVerificationRepository) GetUnusedByEmail(_ context.Context, email string) ([]domain.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.EmailVerification{}
	for _, v := range r.records {
		if v.Email == email && !v.IsUsed {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeVerificationRepository) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.records[id]
	if !ok || v.IsUsed {
		return domain.ErrNoRowsAffected
	}
	v.IsUsed = true
	v.UsedAt = &usedAt
	r.records[id] = v
	return nil
}

func (r *fakeVerificationRepository) InvalidateUnused(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, v := range r.records {
		if v.Email == email && !v.IsUsed {
			v.IsUsed = true
			r.records[id] = v
			n++
		}
	}
	return n, nil
}

func (r *fakeVerificationRepository) ExistsUsed(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.records {
		if v.Email == email && v.IsUsed && v.UsedAt != nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeVerificationRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, v := range r.records {
		if !v.ExpiresAt.After(now) {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeVerificationRepository) all() []domain.EmailVerification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EmailVerification, 0, len(r.records))
	for _, v := range r.records {
		out = append(out, v)
	}
	return out
}

type fakeTransactor struct{}

func (fakeTransactor) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

// fakePostRepository keeps posts in insertion order.
type fakePostRepository struct {
	mu        sync.Mutex
	posts     map[uuid.UUID]domain.Post
	order     []uuid.UUID
	deleteErr error
	lastQuery *repository.PostFilters
}

func newFakePostRepository() *fakePostRepository {
	return &fakePostRepository{posts: map[uuid.UUID]domain.Post{}}
}

func clonePost(p domain.Post) domain.Post {
	p.Images = append(domain.StringList{}, p.Images...)
	return p
}

func (r *fakePostRepository) Create(_ context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = clonePost(*post)
	r.order = append(r.order, post.ID)
	return nil
}

func (r *fakePostRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (r *fakePostRepository) GetByIDForUpdateWithTx(ctx context.Context, _ *sqlx.Tx, id uuid.UUID) (*domain.Post, error) {
	return r.GetByID(ctx, id)
}

func (r *fakePostRepository) UpdateWithTx(_ context.Context, _ *sqlx.Tx, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *fakePostRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepository) filter(keep func(p domain.Post) bool) []domain.Post {
	out := []domain.Post{}
	for _, id := range r.order {
		p, ok := r.posts[id]
		if ok && keep(p) {
			out = append(out, clonePost(p))
		}
	}
	return out
}

func (r *fakePostRepository) GetAll(_ context.Context, limit, offset int, filters *repository.PostFilters) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = filters
	out := r.filter(func(p domain.Post) bool { return filters.Status == nil || p.Status == *filters.Status })
	if offset >= len(out) {
		return []domain.Post{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePostRepository) Count(_ context.Context, filters *repository.PostFilters) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filter(func(p domain.Post) bool { return filters.Status == nil || p.Status == *filters.Status }))), nil
}

func (r *fakePostRepository) GetByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(p domain.Post) bool { return p.OwnerID == ownerID }), nil
}

func (r *fakePostRepository) GetByStatus(_ context.Context, status domain.PostStatus) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(p domain.Post) bool { return p.Status == status }), nil
}

func (r *fakePostRepository) GetEditedPending(_ context.Context) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(p domain.Post) bool { return p.IsEdited && p.Status == domain.PostStatusPending }), nil
}

func (r *fakePostRepository) CountByStatus(_ context.Context) (map[domain.PostStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.PostStatus]int64{}
	for _, p := range r.posts {
		out[p.Status]++
	}
	return out, nil
}

func (r *fakePostRepository) CountByCategory(_ context.Context) (map[domain.Category]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.Category]int64{}
	for _, p := range r.posts {
		out[p.Category]++
	}
	return out, nil
}

func (r *fakePostRepository) stored(id uuid.UUID) (domain.Post, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	return p, ok
}

const testPublicBaseURL = "http://img.test"

// fakeStorage keeps objects in memory. Paths listed in failDelete cannot be
// removed and uploads fail once failUploadAfter objects were stored.
type fakeStorage struct {
	mu              sync.Mutex
	objects         map[string][]byte
	types           map[string]string
	failDelete      map[string]bool
	failUploadAfter int
	uploads         int
	listErr         error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects:         map[string][]byte{},
		types:           map[string]string{},
		failDelete:      map[string]bool{},
		failUploadAfter: -1,
	}
}

func (s *fakeStorage) Upload(_ context.Context, objectPath string, contentType string, body io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUploadAfter >= 0 && s.uploads >= s.failUploadAfter {
		return "", errors.New("storage unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.uploads++
	s.objects[objectPath] = data
	s.types[objectPath] = contentType
	return testPublicBaseURL + "/" + objectPath, nil
}

func (s *fakeStorage) List(_ context.Context, folder string) ([]storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []storage.Object
	for p, data := range s.objects {
		if strings.HasPrefix(p, folder+"/") {
			out = append(out, storage.Object{Path: p, URL: testPublicBaseURL + "/" + p, Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *fakeStorage) Delete(_ context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[objectPath] {
		return errors.New("delete refused")
	}
	if _, ok := s.objects[objectPath]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(s.objects, objectPath)
	return nil
}

func (s *fakeStorage) Open(_ context.Context, objectPath string) (*storage.Object, io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[objectPath]
	if !ok {
		return nil, nil, storage.ErrObjectNotFound
	}
	return &storage.Object{Path: objectPath, ContentType: s.types[objectPath]}, io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) PathFromURL(url string) (string, bool) {
	p, ok := strings.CutPrefix(url, testPublicBaseURL+"/")
	return p, ok && p != ""
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *fakeStorage) put(objectPath string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectPath] = []byte("x")
	return testPublicBaseURL + "/" + objectPath
}
