// SPDX-License-Identifier: MIT

// Package catalog talks to the upstream video catalog service. It is the
// only place in the daemon that dials the network for candidate metadata;
// everything downstream works on the snapshots returned here.
package catalog

import (
	"context"
	"time"
)

// Video is one catalog entry as the upstream serves it. Entries arrive
// unvalidated; the selection engine decides what is usable.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ChannelID   string    `json:"channelId"`
	ChannelName string    `json:"channelName"`
	Topic       string    `json:"topic"`
	Tags        []string  `json:"tags,omitempty"`
	DurationSec int       `json:"durationSec"`
	Level       string    `json:"level,omitempty"`
	URL         string    `json:"url,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Source is the read surface call sites depend on, so handlers and tests
// can substitute a stub for the HTTP client.
type Source interface {
	// Search returns all catalog entries for a topic. An unknown topic is
	// an empty slice, not an error.
	Search(ctx context.Context, topic string) ([]Video, error)

	// Trending returns the upstream's currently trending topic names.
	Trending(ctx context.Context) ([]string, error)
}
