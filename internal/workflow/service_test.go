package workflow

import (
	"context"
	"strings"
	"testing"

	"herald/internal/fault"
)

func TestStoreImageWithoutObjectStore(t *testing.T) {
	s := NewService(nil, nil, nil, nil)

	t.Run("no image attached is a no-op", func(t *testing.T) {
		key, err := s.storeImage(context.Background(), nil)
		if err != nil || key != nil {
			t.Fatalf("storeImage(nil) = %v, %v, want nil, nil", key, err)
		}
	})

	t.Run("attached image fails cleanly", func(t *testing.T) {
		up := &ImageUpload{Reader: strings.NewReader("jpeg bytes"), Size: 10, ContentType: "image/jpeg"}
		_, err := s.storeImage(context.Background(), up)
		if err == nil {
			t.Fatal("storeImage returned nil error with no object store configured")
		}
		if got := fault.KindOf(err); got != fault.Dependency {
			t.Fatalf("storeImage fault kind = %v, want Dependency", got)
		}
	})
}

func TestValidateSubmissionTitleLength(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{
			name:  "ascii title at the limit",
			title: strings.Repeat("a", 255),
		},
		{
			name:    "ascii title over the limit",
			title:   strings.Repeat("a", 256),
			wantErr: true,
		},
		{
			// 200 characters but more than 255 bytes; counted in runes.
			name:  "multibyte title under the limit",
			title: strings.Repeat("ü", 200),
		},
		{
			name:    "multibyte title over the limit",
			title:   strings.Repeat("ü", 256),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSubmission(tt.title, "body", "News", "Sam Reporter")
			if tt.wantErr && fault.KindOf(err) != fault.Validation {
				t.Fatalf("validateSubmission(%d runes) = %v, want Validation fault", len([]rune(tt.title)), err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("validateSubmission(%d runes) = %v, want nil", len([]rune(tt.title)), err)
			}
		})
	}
}
