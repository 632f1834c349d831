package validation

import (
	"strings"
	"testing"

	"github.com/evcraddock/fsbo/internal/apperr"
)

type sample struct {
	Title    string   `json:"title" validate:"required"`
	Price    int64    `json:"price" validate:"gt=0"`
	Baths    float64  `json:"bathrooms" validate:"gte=0,halfstep"`
	Kind     string   `json:"kind" validate:"omitempty,oneof=a b"`
	Latitude *float64 `json:"latitude" validate:"omitempty,latitude"`
	ImageURL string   `json:"imageUrl" validate:"omitempty,url"`
}

func TestStructValid(t *testing.T) {
	lat := 30.2
	s := sample{Title: "x", Price: 1, Baths: 2.5, Kind: "a", Latitude: &lat, ImageURL: "https://example.com/a.jpg"}
	if err := Struct(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructErrors(t *testing.T) {
	badLat := 120.0
	tests := []struct {
		name string
		in   sample
		want string
	}{
		{"required", sample{Price: 1}, "title is required"},
		{"gt", sample{Title: "x"}, "price must be greater than 0"},
		{"halfstep", sample{Title: "x", Price: 1, Baths: 2.25}, "bathrooms must be a multiple of 0.5"},
		{"oneof", sample{Title: "x", Price: 1, Kind: "c"}, "kind must be one of: a b"},
		{"latitude", sample{Title: "x", Price: 1, Latitude: &badLat}, "latitude must be a valid latitude"},
		{"url", sample{Title: "x", Price: 1, ImageURL: "not a url"}, "imageUrl must be a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if !apperr.Is(err, apperr.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			appErr, _ := apperr.As(err)
			if !strings.Contains(appErr.Message, tt.want) {
				t.Errorf("message = %q, want containing %q", appErr.Message, tt.want)
			}
		})
	}
}

func TestStructJoinsMessages(t *testing.T) {
	err := Struct(sample{})
	appErr, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected *apperr.Error, got %v", err)
	}
	if !strings.Contains(appErr.Message, "title is required; price must be greater than 0") {
		t.Errorf("message = %q", appErr.Message)
	}
}
