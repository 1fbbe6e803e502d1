// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package bulletin

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/univera/portal/pkg/pagination"
	"github.com/univera/portal/pkg/uuidv7"
)

// PostRepository is the storage contract for announcements.
type PostRepository interface {
	// List returns the page of posts visible to role, newest first, plus
	// the total count of visible posts.
	List(ctx context.Context, role string, params pagination.Params) ([]Post, int, error)
	Create(ctx context.Context, post *Post) error
}

// MemoryPostRepository keeps announcements in process memory, newest first.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts []Post
}

// NewMemoryPostRepository creates a repository pre-filled with the demo
// announcements.
func NewMemoryPostRepository() *MemoryPostRepository {
	repository := &MemoryPostRepository{}
	repository.seed()
	return repository
}

// List returns the requested page of posts visible to role.
func (repository *MemoryPostRepository) List(_ context.Context, role string, params pagination.Params) ([]Post, int, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	visible := make([]Post, 0, len(repository.posts))
	for _, post := range repository.posts {
		if post.VisibleTo(role) {
			visible = append(visible, post)
		}
	}

	total := len(visible)
	start := params.Offset()
	if start >= total {
		return []Post{}, total, nil
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	page := make([]Post, end-start)
	copy(page, visible[start:end])
	return page, total, nil
}

// Create prepends a new post.
func (repository *MemoryPostRepository) Create(_ context.Context, post *Post) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if post.PostedAt.IsZero() {
		post.PostedAt = time.Now()
	}

	repository.posts = append(repository.posts, *post)
	sort.Slice(repository.posts, func(i, j int) bool {
		return repository.posts[i].PostedAt.After(repository.posts[j].PostedAt)
	})
	return nil
}

// seed fills the board with a term's worth of demo announcements.
func (repository *MemoryPostRepository) seed() {
	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	demo := []Post{
		{Title: "Fall term begins September 1", Body: "Welcome back! Classes start Monday, September 1.", Author: "Registrar", Audience: AudienceAll},
		{Title: "Course registration closes Friday", Body: "Add/drop ends this Friday at 17:00.", Author: "Registrar", Audience: "student"},
		{Title: "Grade submission deadline", Body: "Midterm grades are due October 15.", Author: "Academic Affairs", Audience: "faculty"},
		{Title: "Department budget review", Body: "Q4 budget proposals are due to the provost by November 1.", Author: "Provost Office", Audience: "department_head"},
		{Title: "System maintenance window", Body: "The portal will be unavailable Sunday 02:00-04:00.", Author: "IT Services", Audience: "admin"},
		{Title: "Library extended hours", Body: "The main library is open until midnight during exams.", Author: "Library", Audience: AudienceAll},
	}

	for index, post := range demo {
		post.ID = uuidv7.New()
		post.PostedAt = base.Add(-time.Duration(index) * 24 * time.Hour)
		repository.posts = append(repository.posts, post)
	}
}
