// Copyright (c) 2026 Univera. All rights reserved.
// Author: dev@univera.app

/*
Package bulletin implements the stub API's campus announcement board.

It backs the portal's Announcements navigation entry with paginated,
audience-filtered posts. Like the rest of the stub, it is mock data
standing in for an unfinished university endpoint.
*/
package bulletin

import "time"

// AudienceAll marks a post visible to every role.
const AudienceAll = "all"

// Post is one campus announcement. Audience is a backend role literal or
// [AudienceAll].
type Post struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Author   string    `json:"author"`
	Audience string    `json:"audience"`
	PostedAt time.Time `json:"posted_at"`
}

// VisibleTo reports whether the post targets the given backend role.
func (post *Post) VisibleTo(role string) bool {
	return post.Audience == AudienceAll || post.Audience == role
}
