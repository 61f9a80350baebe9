package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "plain error is internal",
			err:  errors.New("boom"),
			want: Internal,
		},
		{
			name: "direct fault",
			err:  New(NotFound, "article not found"),
			want: NotFound,
		},
		{
			name: "wrapped fault still classified",
			err:  fmt.Errorf("outer: %w", New(Conflict, "slug taken")),
			want: Conflict,
		},
		{
			name: "fault wrapping a cause",
			err:  Wrap(Dependency, "smtp delivery failed", errors.New("dial tcp")),
			want: Dependency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:587")
	err := Wrap(Dependency, "smtp delivery failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause lost")
	}
	if err.Error() != "smtp delivery failed: dial tcp 10.0.0.1:587" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestInvalidCarriesFields(t *testing.T) {
	err := Invalid(map[string]string{"title": "is required"})
	if !Is(err, Validation) {
		t.Fatalf("Invalid() kind = %v", KindOf(err))
	}
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatal("Invalid() not an *Error")
	}
	if fe.Fields["title"] != "is required" {
		t.Fatalf("Fields = %v", fe.Fields)
	}
}
