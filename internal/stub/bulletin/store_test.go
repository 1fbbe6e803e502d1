// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

package bulletin_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univera/portal/internal/stub/bulletin"
	"github.com/univera/portal/pkg/pagination"
)

/*
TestMemoryRepository_AudienceFilter verifies role targeting: students never
see faculty-only posts and vice versa, while "all" posts reach everyone.
*/
func TestMemoryRepository_AudienceFilter(t *testing.T) {
	ctx := context.Background()
	repository := bulletin.NewMemoryPostRepository()
	params := pagination.Params{Page: 1, Limit: 50}

	studentPosts, _, err := repository.List(ctx, "student", params)
	require.NoError(t, err)
	for _, post := range studentPosts {
		assert.Contains(t, []string{"all", "student"}, post.Audience)
	}

	headPosts, _, err := repository.List(ctx, "department_head", params)
	require.NoError(t, err)

	var sawHeadOnly bool
	for _, post := range headPosts {
		if post.Audience == "department_head" {
			sawHeadOnly = true
		}
	}
	assert.True(t, sawHeadOnly, "department heads see their targeted posts")
}

/*
TestMemoryRepository_Pagination verifies page math against the seeded board.
*/
func TestMemoryRepository_Pagination(t *testing.T) {
	ctx := context.Background()
	repository := bulletin.NewMemoryPostRepository()

	firstPage, total, err := repository.List(ctx, "student", pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, firstPage, 2)
	assert.GreaterOrEqual(t, total, 3)

	secondPage, _, err := repository.List(ctx, "student", pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.NotEmpty(t, secondPage)
	assert.NotEqual(t, firstPage[0].ID, secondPage[0].ID)

	// A page past the end is empty, not an error.
	farPage, _, err := repository.List(ctx, "student", pagination.Params{Page: 99, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, farPage)
}

/*
TestMemoryRepository_CreateOrdersNewestFirst verifies insertion ordering.
*/
func TestMemoryRepository_CreateOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repository := bulletin.NewMemoryPostRepository()

	post := &bulletin.Post{
		ID:       "fresh-1",
		Title:    "Snow day",
		Body:     "Campus closed tomorrow.",
		Author:   "Facilities",
		Audience: bulletin.AudienceAll,
		PostedAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repository.Create(ctx, post))

	page, _, err := repository.List(ctx, "student", pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "fresh-1", page[0].ID)
}
