// Reelgate - Movie Streaming Access Control
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelgate

package eventprocessor

import (
	"testing"
	"time"
)

func TestPublishOptions_NoRetry(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    int
	}{
		{"no timeout", 0, 0},
		{"ack wait only", 5 * time.Second, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := publishOptions(PublisherConfig{PublishTimeout: tt.timeout})
			if len(opts) != tt.want {
				t.Errorf("len(publishOptions()) = %d, want %d", len(opts), tt.want)
			}
		})
	}
}
