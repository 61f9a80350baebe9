package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"herald/internal/fault"
)

func TestStoreRejectsBadUploads(t *testing.T) {
	im := NewImages(nil, "herald-media", 24*time.Hour)

	tests := []struct {
		name        string
		size        int64
		contentType string
	}{
		{name: "wrong content type", size: 100, contentType: "application/pdf"},
		{name: "svg not allowed", size: 100, contentType: "image/svg+xml"},
		{name: "zero size", size: 0, contentType: "image/png"},
		{name: "over the cap", size: MaxImageSize + 1, contentType: "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := im.Store(context.Background(), strings.NewReader("x"), tt.size, tt.contentType)
			if !fault.Is(err, fault.Validation) {
				t.Fatalf("Store() = %v, want validation fault", err)
			}
		})
	}
}
