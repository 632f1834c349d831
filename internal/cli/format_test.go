package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/evcraddock/fsbo/internal/property"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name     string
		dollars  int64
		expected string
	}{
		{"zero", 0, "0"},
		{"small", 999, "999"},
		{"thousands", 250000, "250,000"},
		{"millions", 1000000, "1,000,000"},
		{"negative", -1500, "-1,500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatPrice(tt.dollars)
			if result != tt.expected {
				t.Errorf("formatPrice(%d) = %q, want %q", tt.dollars, result, tt.expected)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents    int64
		expected string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{99900, "999.00"},
		{199800, "1,998.00"},
		{123456789, "1,234,567.89"},
		{-150, "-1.50"},
	}

	for _, tt := range tests {
		if got := formatCents(tt.cents); got != tt.expected {
			t.Errorf("formatCents(%d) = %q, want %q", tt.cents, got, tt.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 8, "hello..."},
		{"multibyte", "café au lait", 7, "café..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}

func TestPrintPropertyTable(t *testing.T) {
	props := []*property.Property{
		{ID: 1, Title: "Ranch", City: "Tulsa", Price: 250000, Bedrooms: 3, Bathrooms: 2.5, SquareFeet: 1400, Status: property.StatusActive, IsPremium: true},
		{ID: 2, Title: "Loft", City: "Austin", Price: 410000, Bedrooms: 1, Bathrooms: 1, SquareFeet: 800, Status: property.StatusActive},
	}

	var out bytes.Buffer
	if err := printPropertyTable(&out, props); err != nil {
		t.Fatalf("print: %v", err)
	}
	for _, want := range []string{"TITLE", "$250,000", "2.5", "★", "Total: 2 properties"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := printPropertyTable(&out, nil); err != nil {
		t.Fatalf("print empty: %v", err)
	}
	if out.String() != "No properties found.\n" {
		t.Errorf("empty table = %q", out.String())
	}
}

func TestPrintPropertySummary(t *testing.T) {
	year := 1962
	p := &property.Property{
		ID: 7, Title: "Ranch", Address: "9 Elm", City: "Tulsa", State: "OK", ZipCode: "74103",
		Price: 250000, Bedrooms: 3, Bathrooms: 2, SquareFeet: 1400, YearBuilt: &year,
		PropertyType: "House", Status: property.StatusActive, ViewCount: 12,
	}

	var out bytes.Buffer
	if err := printPropertySummary(&out, p); err != nil {
		t.Fatalf("print: %v", err)
	}
	for _, want := range []string{"Property #7: Ranch", "Address:  9 Elm, Tulsa, OK 74103", "Built:    1962", "Views:    12"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
	if strings.Contains(out.String(), "Premium") || strings.Contains(out.String(), "Lot") {
		t.Errorf("summary shows unset fields:\n%s", out.String())
	}
}
