package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
)

// testLinkStoreContract runs the behaviour every LinkStore must provide.
func testLinkStoreContract(t *testing.T, newStore func(t *testing.T) LinkStore) {
	t.Helper()

	createdAt := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	t.Run("put then get", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		inserted, err := store.PutIfAbsent(ctx, &model.Link{
			ShortCode: "Ab12Cd",
			LongURL:   "https://example.com/page",
			CreatedAt: createdAt,
		})
		if err != nil {
			t.Fatalf("PutIfAbsent() error = %v", err)
		}
		if !inserted {
			t.Fatal("PutIfAbsent() = false for a new code")
		}

		link, err := store.Get(ctx, "Ab12Cd")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if link.ShortCode != "Ab12Cd" || link.LongURL != "https://example.com/page" {
			t.Errorf("Get() = %+v", link)
		}
		if link.ClickCount != 0 {
			t.Errorf("Get() ClickCount = %d, want 0", link.ClickCount)
		}
		if !link.CreatedAt.Equal(createdAt) {
			t.Errorf("Get() CreatedAt = %v, want %v", link.CreatedAt, createdAt)
		}
	})

	t.Run("put on taken code keeps original", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		first := &model.Link{ShortCode: "dup123", LongURL: "https://first.example", CreatedAt: createdAt}
		second := &model.Link{ShortCode: "dup123", LongURL: "https://second.example", CreatedAt: createdAt}

		if _, err := store.PutIfAbsent(ctx, first); err != nil {
			t.Fatalf("PutIfAbsent(first) error = %v", err)
		}

		inserted, err := store.PutIfAbsent(ctx, second)
		if err != nil {
			t.Fatalf("PutIfAbsent(second) error = %v", err)
		}
		if inserted {
			t.Error("PutIfAbsent(second) = true, want false")
		}

		link, err := store.Get(ctx, "dup123")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if link.LongURL != "https://first.example" {
			t.Errorf("Get() LongURL = %s, want https://first.example", link.LongURL)
		}
	})

	t.Run("get unknown code", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Get(context.Background(), "zzzzzz")
		if !errors.Is(err, apperrors.ErrLinkNotFound) {
			t.Errorf("Get() error = %v, want ErrLinkNotFound", err)
		}
	})

	t.Run("increment unknown code", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		err := store.IncrementCounter(ctx, "zzzzzz", model.FieldClickCount, 1)
		if !errors.Is(err, apperrors.ErrLinkNotFound) {
			t.Errorf("IncrementCounter() error = %v, want ErrLinkNotFound", err)
		}

		if _, err := store.Get(ctx, "zzzzzz"); !errors.Is(err, apperrors.ErrLinkNotFound) {
			t.Errorf("IncrementCounter() on unknown code must not create it, Get() error = %v", err)
		}
	})

	t.Run("increment rejects bad arguments", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if _, err := store.PutIfAbsent(ctx, &model.Link{ShortCode: "cnt001", LongURL: "https://example.com", CreatedAt: createdAt}); err != nil {
			t.Fatalf("PutIfAbsent() error = %v", err)
		}

		if err := store.IncrementCounter(ctx, "cnt001", "long_url", 1); !errors.Is(err, apperrors.ErrUnknownCounter) {
			t.Errorf("IncrementCounter(long_url) error = %v, want ErrUnknownCounter", err)
		}
		if err := store.IncrementCounter(ctx, "cnt001", model.FieldClickCount, -1); !errors.Is(err, apperrors.ErrNegativeDelta) {
			t.Errorf("IncrementCounter(-1) error = %v, want ErrNegativeDelta", err)
		}
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if _, err := store.PutIfAbsent(ctx, &model.Link{ShortCode: "hot001", LongURL: "https://example.com", CreatedAt: createdAt}); err != nil {
			t.Fatalf("PutIfAbsent() error = %v", err)
		}

		const workers = 50
		var wg sync.WaitGroup
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := store.IncrementCounter(ctx, "hot001", model.FieldClickCount, 1); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			t.Errorf("IncrementCounter() error = %v", err)
		}

		link, err := store.Get(ctx, "hot001")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if link.ClickCount != workers {
			t.Errorf("ClickCount = %d, want %d", link.ClickCount, workers)
		}
	})

	t.Run("concurrent puts on one code insert once", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const workers = 20
		var wg sync.WaitGroup
		var inserted atomic.Int32

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := store.PutIfAbsent(ctx, &model.Link{
					ShortCode: "race01",
					LongURL:   "https://example.com/race",
					CreatedAt: createdAt,
				})
				if err != nil {
					t.Errorf("PutIfAbsent() error = %v", err)
					return
				}
				if ok {
					inserted.Add(1)
				}
			}()
		}
		wg.Wait()

		if got := inserted.Load(); got != 1 {
			t.Errorf("PutIfAbsent() succeeded %d times, want 1", got)
		}
	})
}
