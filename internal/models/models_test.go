package models

import (
	"errors"
	"testing"

	"github.com/euphonyfm/euphony/internal/shared"
)

func vector(v float64) FeatureVector {
	vec := make(FeatureVector, NumFeatures)
	for i := range vec {
		vec[i] = v
	}
	return vec
}

func TestFeatureVector(t *testing.T) {
	t.Run("valid length", func(t *testing.T) {
		if err := vector(0.5).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("wrong length", func(t *testing.T) {
		if err := (FeatureVector{1, 2, 3}).Validate(); err == nil {
			t.Error("expected error for short vector")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if err := (FeatureVector{}).Validate(); err == nil {
			t.Error("expected error for empty vector")
		}
	})
}

func TestTrackIndex(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		n    int
		ok   bool
	}{
		{"plain", "7", 7, true},
		{"zero padded", "07", 7, true},
		{"slash total", "7/12", 7, true},
		{"whitespace", " 3 ", 3, true},
		{"empty", "", 0, false},
		{"garbage", "A1", 0, false},
		{"negative", "-2", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := Metadata{TrackNumber: tt.raw}.TrackIndex()
			if n != tt.n || ok != tt.ok {
				t.Errorf("TrackIndex(%q) = %d, %v, want %d, %v", tt.raw, n, ok, tt.n, tt.ok)
			}
		})
	}
}

func TestSongValidate(t *testing.T) {
	t.Run("analyzed with full vector", func(t *testing.T) {
		s := &Song{Path: "a.flac", Features: vector(1), Analyzed: true, Version: FeatureVersion}
		if err := s.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("analyzed without features", func(t *testing.T) {
		s := &Song{Path: "a.flac", Analyzed: true}
		if err := s.Validate(); err == nil {
			t.Error("expected error for analyzed song without features")
		}
	})

	t.Run("unanalyzed with features", func(t *testing.T) {
		s := &Song{Path: "a.flac", Features: vector(1)}
		if err := s.Validate(); err == nil {
			t.Error("expected error for unanalyzed song carrying features")
		}
	})

	t.Run("unanalyzed placeholder", func(t *testing.T) {
		s := &Song{Path: "a.flac"}
		if err := s.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		s := &Song{Features: vector(1), Analyzed: true}
		if err := s.Validate(); err == nil {
			t.Error("expected error for empty path")
		}
	})
}

func TestRemotePath(t *testing.T) {
	t.Run("plain path passes through", func(t *testing.T) {
		s := &Song{Path: "music/song.flac"}
		got, err := s.RemotePath()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "music/song.flac" {
			t.Errorf("RemotePath = %q", got)
		}
	})

	t.Run("cue entry rebuilds from track tag", func(t *testing.T) {
		s := &Song{
			Path: "music/album.cue/CUE_TRACK002",
			Meta: Metadata{TrackNumber: "2"},
		}
		got, err := s.RemotePath()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "music/album.cue/CUE_TRACK002" {
			t.Errorf("RemotePath = %q", got)
		}
	})

	t.Run("cue entry without track tag fails", func(t *testing.T) {
		s := &Song{Path: "music/album.cue/CUE_TRACK002"}
		if _, err := s.RemotePath(); !errors.Is(err, shared.ErrNoTrackIndex) {
			t.Errorf("expected ErrNoTrackIndex, got %v", err)
		}
	})
}

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		name string
		song Song
		want string
	}{
		{"artist and title", Song{Meta: Metadata{Title: "Aja", Artist: "Steely Dan"}}, "Steely Dan - Aja"},
		{"title only", Song{Meta: Metadata{Title: "Aja"}}, "Aja"},
		{"no tags", Song{Path: "music/aja.flac"}, "music/aja.flac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.song.DisplayTitle(); got != tt.want {
				t.Errorf("DisplayTitle = %q, want %q", got, tt.want)
			}
		})
	}
}
