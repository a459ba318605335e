package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestContentHash(t *testing.T) {
	h1 := ContentHash("profile text")
	h2 := ContentHash("profile text")
	h3 := ContentHash("profile text, edited")

	if h1 != h2 {
		t.Errorf("ContentHash() not deterministic: %s vs %s", h1, h2)
	}
	if h1 == h3 {
		t.Errorf("ContentHash() produced same hash for different text")
	}
	if len(h1) != 64 {
		t.Errorf("ContentHash() length = %d, want 64 hex characters", len(h1))
	}
}

func TestEditionID(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Service
		wantSame bool
	}{
		{
			name:     "same series and year",
			a:        Service{Series: "ICSE", Year: 2024},
			b:        Service{Series: "ICSE", Year: 2024},
			wantSame: true,
		},
		{
			name:     "series compared case-insensitively",
			a:        Service{Series: "icse", Year: 2024},
			b:        Service{Series: " ICSE ", Year: 2024},
			wantSame: true,
		},
		{
			name:     "different year",
			a:        Service{Series: "ICSE", Year: 2023},
			b:        Service{Series: "ICSE", Year: 2024},
			wantSame: false,
		},
		{
			name:     "different series",
			a:        Service{Series: "ICSE", Year: 2024},
			b:        Service{Series: "FSE", Year: 2024},
			wantSame: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			same := tt.a.EditionID() == tt.b.EditionID()
			if same != tt.wantSame {
				t.Errorf("EditionID equality = %v, want %v", same, tt.wantSame)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ada Lovelace", "ada lovelace"},
		{"  ADA   lovelace\t", "ada lovelace"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
