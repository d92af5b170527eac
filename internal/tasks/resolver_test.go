package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/setlistx/internal/models"
	tu "github.com/desertthunder/setlistx/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver(t *testing.T) {
	ctx := context.Background()
	cred := models.NewCredential("tok")

	t.Run("clamps concurrency", func(t *testing.T) {
		assert.Equal(t, DefaultConcurrency, NewResolver(ResolverOptions{Logger: quiet}).workers)
		assert.Equal(t, MaxConcurrency, NewResolver(ResolverOptions{Concurrency: 50, Logger: quiet}).workers)
		assert.Equal(t, 1, NewResolver(ResolverOptions{Concurrency: 1, Logger: quiet}).workers)
	})

	t.Run("one match per song in order", func(t *testing.T) {
		songs := []string{"Creep", "Unknown", "Creep", "Airbag"}
		svc := tu.NewMockService(models.Spotify, map[string]string{"Creep": "c1", "Airbag": "a1"})

		matches := NewResolver(ResolverOptions{Concurrency: 4, Logger: quiet}).Resolve(ctx, svc, songs, "Radiohead", cred, nil)
		require.Len(t, matches, 4)
		assert.Equal(t, models.TrackMatch{Title: "Creep", Artist: "Radiohead", Found: true, PlatformID: "c1"}, matches[0])
		assert.Equal(t, models.TrackMatch{Title: "Unknown", Artist: "Radiohead"}, matches[1])
		assert.Equal(t, "c1", matches[2].PlatformID)
		assert.Equal(t, "a1", matches[3].PlatformID)
		assert.Equal(t, []string{"c1", "c1", "a1"}, models.FoundIDs(matches))
		assert.Len(t, svc.Searches(), 4)
	})

	t.Run("search errors mark only that song", func(t *testing.T) {
		svc := tu.NewMockService(models.Deezer, map[string]string{"A": "1", "C": "3"})
		svc.SearchErrs = map[string]error{"B": errors.New("connection reset")}

		matches := NewResolver(ResolverOptions{Logger: quiet}).Resolve(ctx, svc, []string{"A", "B", "C"}, "X", cred, nil)
		assert.True(t, matches[0].Found)
		assert.False(t, matches[1].Found)
		assert.EqualError(t, matches[1].Err, "connection reset")
		assert.True(t, matches[2].Found)
	})

	t.Run("blank titles are not searched", func(t *testing.T) {
		svc := tu.NewMockService(models.Spotify, map[string]string{"": "x"})

		matches := NewResolver(ResolverOptions{Logger: quiet}).Resolve(ctx, svc, []string{" "}, "X", cred, nil)
		assert.False(t, matches[0].Found)
		assert.Empty(t, svc.Searches())
	})

	t.Run("cancelled context marks every song", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		svc := tu.NewMockService(models.Spotify, map[string]string{"A": "1"})

		matches := NewResolver(ResolverOptions{Logger: quiet}).Resolve(cctx, svc, []string{"A", "B"}, "X", cred, nil)
		require.Len(t, matches, 2)
		for _, m := range matches {
			assert.False(t, m.Found)
			assert.ErrorIs(t, m.Err, context.Canceled)
		}
		assert.Empty(t, svc.Searches())
	})

	t.Run("rate limited searches still resolve", func(t *testing.T) {
		svc := tu.NewMockService(models.YouTube, map[string]string{"A": "1", "B": "2", "C": "3"})

		matches := NewResolver(ResolverOptions{RateLimit: 200, Logger: quiet}).Resolve(ctx, svc, []string{"A", "B", "C"}, "X", cred, nil)
		assert.Equal(t, []string{"1", "2", "3"}, models.FoundIDs(matches))
	})

	t.Run("empty setlist", func(t *testing.T) {
		svc := tu.NewMockService(models.Spotify, nil)
		assert.Empty(t, NewResolver(ResolverOptions{Logger: quiet}).Resolve(ctx, svc, nil, "X", cred, nil))
	})
}
