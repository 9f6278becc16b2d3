package queue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/shared"
	tu "github.com/euphonyfm/euphony/internal/testing"
)

func song(path string) *models.Song {
	return &models.Song{Path: path, Features: tu.Vector(0), Analyzed: true, Version: models.FeatureVersion}
}

func target(paths ...string) []*models.Song {
	out := make([]*models.Song, len(paths))
	for i, p := range paths {
		out[i] = song(p)
	}
	return out
}

func assertQueue(t *testing.T, client *tu.MockQueueClient, want ...string) {
	t.Helper()
	got := client.QueuePaths()
	if len(got) != len(want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queue = %v, want %v", got, want)
		}
	}
}

func TestReconcileReplace(t *testing.T) {
	t.Run("replaces everything but the anchor", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"x.flac", "y.flac", "z.flac"}, 1)
		client.Random = true

		res, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			target("y.flac", "n1.flac", "n2.flac"),
			Options{Mode: Replace},
		)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}

		assertQueue(t, client, "y.flac", "n1.flac", "n2.flac")
		if client.CurrentPos() != 0 {
			t.Errorf("anchor moved to position %d, want 0", client.CurrentPos())
		}
		if client.Random {
			t.Error("expected random mode to be disabled")
		}
		if len(res.Additions) != 2 {
			t.Errorf("additions = %v", res.Additions)
		}
	})

	t.Run("anchor already first", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"y.flac", "z.flac"}, 0)

		_, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			target("y.flac", "n1.flac"),
			Options{Mode: Replace},
		)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}

		assertQueue(t, client, "y.flac", "n1.flac")
		if client.CurrentPos() != 0 {
			t.Errorf("anchor moved to position %d, want 0", client.CurrentPos())
		}
	})

	t.Run("anchor-only queue, anchor-only target", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"y.flac"}, 0)

		res, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			target("y.flac"),
			Options{Mode: Replace},
		)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if len(res.Mutations) != 0 {
			t.Errorf("expected no mutations, got %v", res.Mutations)
		}
		assertQueue(t, client, "y.flac")
	})

	t.Run("mutation count is linear in the target", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"a", "b", "c", "d", "y"}, 4)

		res, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			target("y", "n1", "n2", "n3"),
			Options{Mode: Replace},
		)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		// One delete ahead of the anchor, none behind it, three inserts.
		if len(res.Mutations) != 4 {
			t.Errorf("expected 4 mutations, got %v", res.Mutations)
		}
		assertQueue(t, client, "y", "n1", "n2", "n3")
	})
}

func TestReconcilePreserve(t *testing.T) {
	t.Run("keeps the queue and restores the anchor's follower", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"a.flac", "b.flac", "c.flac"}, 0)

		_, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			target("a.flac", "n1.flac", "n2.flac"),
			Options{Mode: Preserve},
		)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}

		assertQueue(t, client, "a.flac", "b.flac", "n1.flac", "n2.flac", "c.flac")
		if client.CurrentPos() != 0 {
			t.Errorf("anchor moved to position %d, want 0", client.CurrentPos())
		}
	})

	t.Run("album block stays adjacent to the anchor", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"t1.flac", "t2.flac", "t3.flac", "other.flac"}, 0)
		albums := map[string]string{
			"t1.flac": "X", "t2.flac": "X", "t3.flac": "X", "other.flac": "Y",
		}

		_, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			target("t1.flac", "n1.flac"),
			Options{Mode: Preserve, AlbumOf: func(p string) string { return albums[p] }},
		)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}

		assertQueue(t, client, "t1.flac", "t2.flac", "t3.flac", "n1.flac", "other.flac")
	})

	t.Run("anchor at the end of the queue", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"a.flac", "y.flac"}, 1)

		res, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			target("y.flac", "n1.flac"),
			Options{Mode: Preserve},
		)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}

		assertQueue(t, client, "a.flac", "y.flac", "n1.flac")
		// Nothing followed the anchor, so nothing needs moving back.
		for _, m := range res.Mutations {
			if _, ok := m.(MoveRange); ok {
				t.Errorf("unexpected move: %v", m)
			}
		}
	})

	t.Run("anchor follower from a different album stays put", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"t1.flac", "other.flac"}, 0)
		albums := map[string]string{"t1.flac": "X", "other.flac": "Y"}

		_, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			target("t1.flac", "n1.flac"),
			Options{Mode: Preserve, AlbumOf: func(p string) string { return albums[p] }},
		)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}

		assertQueue(t, client, "t1.flac", "n1.flac", "other.flac")
	})
}

func TestReconcileDryRun(t *testing.T) {
	client := tu.NewMockQueueClient([]string{"x.flac", "y.flac", "z.flac"}, 1)
	client.Random = true

	res, err := NewReconciler(client, nil).Reconcile(
		context.Background(),
		target("y.flac", "n1.flac"),
		Options{Mode: Replace, DryRun: true},
	)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	assertQueue(t, client, "x.flac", "y.flac", "z.flac")
	if len(client.Ops) != 0 {
		t.Errorf("dry run issued mutations: %v", client.Ops)
	}
	if !client.Random {
		t.Error("dry run must not touch random mode")
	}
	if len(res.Additions) != 1 || res.Additions[0] != "n1.flac" {
		t.Errorf("additions = %v", res.Additions)
	}
	if len(res.Mutations) == 0 {
		t.Error("expected planned mutations in the result")
	}
}

func TestReconcileErrors(t *testing.T) {
	t.Run("nothing playing", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"a.flac"}, -1)

		_, err := NewReconciler(client, nil).Reconcile(
			context.Background(), target("a.flac"), Options{},
		)
		if !errors.Is(err, shared.ErrNoAnchor) {
			t.Errorf("expected ErrNoAnchor, got %v", err)
		}
		assertQueue(t, client, "a.flac")
	})

	t.Run("target does not start with the anchor", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"a.flac", "b.flac"}, 0)

		_, err := NewReconciler(client, nil).Reconcile(
			context.Background(), target("b.flac", "n1.flac"), Options{},
		)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if len(client.Ops) != 0 {
			t.Errorf("expected no mutations, got %v", client.Ops)
		}
	})

	t.Run("empty target", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"a.flac"}, 0)

		_, err := NewReconciler(client, nil).Reconcile(context.Background(), nil, Options{})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("failed primitive aborts and leaves partial state", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"x.flac", "y.flac"}, 1)
		client.FailAt = 2

		_, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			target("y.flac", "n1.flac", "n2.flac"),
			Options{Mode: Replace},
		)
		if err == nil {
			t.Fatal("expected error from failing primitive")
		}
		if !strings.Contains(err.Error(), "partially mutated") {
			t.Errorf("error should flag partial mutation, got %v", err)
		}
		// The first delete went through; the queue is partially mutated by
		// design and no rollback is attempted.
		if len(client.Ops) != 1 {
			t.Errorf("expected exactly 1 applied mutation, got %v", client.Ops)
		}
		assertQueue(t, client, "y.flac")
	})

}

func TestReconcileCuePaths(t *testing.T) {
	t.Run("cue anchor matches its canonical entry", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"album.cue/cue_track1"}, 0)

		cue := song("album.cue/CUE_TRACK001")
		cue.Meta.TrackNumber = "1"
		next := song("album.cue/CUE_TRACK002")
		next.Meta.TrackNumber = "2"

		_, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			[]*models.Song{cue, next},
			Options{Mode: Replace},
		)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		assertQueue(t, client, "album.cue/cue_track1", "album.cue/CUE_TRACK002")
	})

	t.Run("cue addition without track tag fails before mutating", func(t *testing.T) {
		client := tu.NewMockQueueClient([]string{"a.flac"}, 0)

		bad := song("album.cue/CUE_TRACK002")
		bad.Meta.TrackNumber = ""

		_, err := NewReconciler(client, nil).Reconcile(
			context.Background(),
			[]*models.Song{song("a.flac"), bad},
			Options{Mode: Replace},
		)
		if !errors.Is(err, shared.ErrNoTrackIndex) {
			t.Errorf("expected ErrNoTrackIndex, got %v", err)
		}
		if len(client.Ops) != 0 {
			t.Errorf("expected no mutations, got %v", client.Ops)
		}
	})
}
