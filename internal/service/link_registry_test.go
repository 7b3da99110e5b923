package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/Kosench/shortlink/internal/errors"
	"github.com/Kosench/shortlink/internal/model"
	"github.com/Kosench/shortlink/internal/repository"
	"github.com/Kosench/shortlink/internal/utils"
)

// sequenceGenerator returns the given codes in order and then repeats the last one.
type sequenceGenerator struct {
	mu    sync.Mutex
	codes []string
	calls int
}

func newSequenceGenerator(codes ...string) *sequenceGenerator {
	return &sequenceGenerator{codes: codes}
}

func (g *sequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.calls
	if i >= len(g.codes) {
		i = len(g.codes) - 1
	}
	g.calls++
	return g.codes[i]
}

// mockLinkStore wraps the in-memory store with failure injection.
type mockLinkStore struct {
	*repository.MemoryLinkStore
	failPut       bool
	failGet       bool
	failIncrement bool
}

func newMockLinkStore() *mockLinkStore {
	return &mockLinkStore{MemoryLinkStore: repository.NewMemoryLinkStore()}
}

func (m *mockLinkStore) PutIfAbsent(ctx context.Context, link *model.Link) (bool, error) {
	if m.failPut {
		return false, errors.New("database error")
	}
	return m.MemoryLinkStore.PutIfAbsent(ctx, link)
}

func (m *mockLinkStore) Get(ctx context.Context, shortCode string) (*model.Link, error) {
	if m.failGet {
		return nil, errors.New("database error")
	}
	return m.MemoryLinkStore.Get(ctx, shortCode)
}

func (m *mockLinkStore) IncrementCounter(ctx context.Context, shortCode, field string, delta int64) error {
	if m.failIncrement {
		return errors.New("database error")
	}
	return m.MemoryLinkStore.IncrementCounter(ctx, shortCode, field, delta)
}

type recordingObserver struct {
	mu         sync.Mutex
	attempts   int
	collisions []string
	created    []string
	resolved   []string
	failures   []string
}

func (o *recordingObserver) CreateAttempt(_ context.Context, _ int, _ string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts++
}

func (o *recordingObserver) CollisionRetry(_ context.Context, _ int, code string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.collisions = append(o.collisions, code)
}

func (o *recordingObserver) Created(_ context.Context, link *model.Link) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created = append(o.created, link.ShortCode)
}

func (o *recordingObserver) Resolved(_ context.Context, code, _ string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolved = append(o.resolved, code)
}

func (o *recordingObserver) Failed(_ context.Context, op string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, op)
}

func seed(t *testing.T, store repository.LinkStore, code, longURL string) {
	t.Helper()
	ok, err := store.PutIfAbsent(context.Background(), &model.Link{ShortCode: code, LongURL: longURL, CreatedAt: time.Now()})
	if err != nil || !ok {
		t.Fatalf("seed %s: inserted = %v, err = %v", code, ok, err)
	}
}

func TestNewLinkRegistry(t *testing.T) {
	store := newMockLinkStore()

	registry := NewLinkRegistry(store, utils.NewRandomGenerator(0))

	if registry.store == nil {
		t.Error("LinkRegistry.store not set correctly")
	}

	if registry.maxAttempts != DefaultMaxAttempts {
		t.Errorf("LinkRegistry.maxAttempts = %d, want %d", registry.maxAttempts, DefaultMaxAttempts)
	}

	if _, ok := registry.observer.(NopObserver); !ok {
		t.Errorf("LinkRegistry.observer = %T, want NopObserver", registry.observer)
	}

	custom := NewLinkRegistry(store, utils.NewRandomGenerator(0), WithMaxAttempts(0), WithObserver(nil))
	if custom.maxAttempts != DefaultMaxAttempts {
		t.Error("WithMaxAttempts(0) should keep the default")
	}
	if custom.observer == nil {
		t.Error("WithObserver(nil) should keep the default observer")
	}
}

func TestLinkRegistry_Create(t *testing.T) {
	tests := []struct {
		name    string
		longURL string
		wantErr bool
	}{
		{
			name:    "valid URL",
			longURL: "https://example.com/page",
		},
		{
			name:    "opaque target",
			longURL: "not-a-url",
		},
		{
			name:    "empty URL",
			longURL: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockLinkStore()
			registry := NewLinkRegistry(store, utils.NewRandomGenerator(0))

			link, err := registry.Create(context.Background(), tt.longURL)

			if tt.wantErr {
				if !apperrors.IsValidationError(err) {
					t.Fatalf("Create() error = %v, want validation error", err)
				}
				if store.Len() != 0 {
					t.Errorf("Create() persisted %d links on validation failure", store.Len())
				}
				return
			}

			if err != nil {
				t.Fatalf("Create() unexpected error = %v", err)
			}

			if !utils.IsShortCode(link.ShortCode) {
				t.Errorf("Create() ShortCode = %q is not a 6 character code", link.ShortCode)
			}

			if link.LongURL != tt.longURL {
				t.Errorf("Create() LongURL = %s, want %s", link.LongURL, tt.longURL)
			}

			if link.ClickCount != 0 {
				t.Errorf("Create() ClickCount = %d, want 0", link.ClickCount)
			}

			if link.CreatedAt.IsZero() {
				t.Error("Create() CreatedAt is zero")
			}

			if store.Len() != 1 {
				t.Errorf("store has %d links, want 1", store.Len())
			}
		})
	}
}

func TestLinkRegistry_Create_RetriesCollisions(t *testing.T) {
	store := newMockLinkStore()
	seed(t, store, "aaaaaa", "https://taken.example/a")
	seed(t, store, "bbbbbb", "https://taken.example/b")

	observer := &recordingObserver{}
	generator := newSequenceGenerator("aaaaaa", "bbbbbb", "cccccc")
	registry := NewLinkRegistry(store, generator, WithObserver(observer))

	link, err := registry.Create(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Create() with retry logic failed: %v", err)
	}

	if link.ShortCode != "cccccc" {
		t.Errorf("Create() ShortCode = %s, want cccccc", link.ShortCode)
	}

	if observer.attempts != 3 {
		t.Errorf("observer saw %d attempts, want 3", observer.attempts)
	}

	if fmt.Sprint(observer.collisions) != "[aaaaaa bbbbbb]" {
		t.Errorf("observer collisions = %v", observer.collisions)
	}

	taken, err := store.Get(context.Background(), "aaaaaa")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if taken.LongURL != "https://taken.example/a" {
		t.Errorf("existing mapping was overwritten: %s", taken.LongURL)
	}
}

func TestLinkRegistry_Create_CapacityExhausted(t *testing.T) {
	store := newMockLinkStore()
	seed(t, store, "aaaaaa", "https://taken.example")

	observer := &recordingObserver{}
	generator := newSequenceGenerator("aaaaaa")
	registry := NewLinkRegistry(store, generator, WithObserver(observer))

	_, err := registry.Create(context.Background(), "https://example.com")
	if !apperrors.IsCapacityError(err) {
		t.Fatalf("Create() error = %v, want capacity error", err)
	}

	if generator.calls != DefaultMaxAttempts {
		t.Errorf("generator called %d times, want %d", generator.calls, DefaultMaxAttempts)
	}

	if store.Len() != 1 {
		t.Errorf("store has %d links, want 1", store.Len())
	}

	if fmt.Sprint(observer.failures) != "[create]" {
		t.Errorf("observer failures = %v", observer.failures)
	}
}

func TestLinkRegistry_Create_SkipsReservedCodes(t *testing.T) {
	store := newMockLinkStore()
	generator := newSequenceGenerator("create", "Ab12Cd")
	registry := NewLinkRegistry(store, generator, WithReservedCodes("create"))

	link, err := registry.Create(context.Background(), "https://example.com/page")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if link.ShortCode != "Ab12Cd" {
		t.Errorf("Create() ShortCode = %s, want Ab12Cd", link.ShortCode)
	}

	if _, err := store.Get(context.Background(), "create"); !apperrors.IsNotFound(err) {
		t.Errorf("reserved code was persisted: %v", err)
	}
}

func TestLinkRegistry_Create_StoreError(t *testing.T) {
	store := newMockLinkStore()
	store.failPut = true
	generator := newSequenceGenerator("Ab12Cd", "Ef34Gh")
	registry := NewLinkRegistry(store, generator)

	_, err := registry.Create(context.Background(), "https://example.com")
	if !apperrors.IsStoreError(err) {
		t.Fatalf("Create() error = %v, want store error", err)
	}

	if generator.calls != 1 {
		t.Errorf("store errors must not be retried, generator called %d times", generator.calls)
	}
}

func TestLinkRegistry_Create_UsesClock(t *testing.T) {
	fixed := time.Date(2026, 10, 17, 9, 30, 0, 0, time.FixedZone("UTC+3", 3*60*60))
	registry := NewLinkRegistry(newMockLinkStore(), utils.NewRandomGenerator(0), WithClock(func() time.Time { return fixed }))

	link, err := registry.Create(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !link.CreatedAt.Equal(fixed) || link.CreatedAt.Location() != time.UTC {
		t.Errorf("Create() CreatedAt = %v, want %v in UTC", link.CreatedAt, fixed)
	}
}

func TestLinkRegistry_Scenario(t *testing.T) {
	ctx := context.Background()
	store := newMockLinkStore()
	observer := &recordingObserver{}
	registry := NewLinkRegistry(store, newSequenceGenerator("Ab12Cd"), WithObserver(observer))

	link, err := registry.Create(ctx, "https://example.com/page")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if link.ShortCode != "Ab12Cd" || link.ClickCount != 0 {
		t.Fatalf("Create() = %+v", link)
	}

	longURL, err := registry.Resolve(ctx, "Ab12Cd")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if longURL != "https://example.com/page" {
		t.Errorf("Resolve() = %s, want https://example.com/page", longURL)
	}

	stored, err := store.Get(ctx, "Ab12Cd")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.ClickCount != 1 {
		t.Errorf("ClickCount = %d, want 1", stored.ClickCount)
	}

	_, err = registry.Resolve(ctx, "zzzzzz")
	if !apperrors.IsNotFound(err) {
		t.Errorf("Resolve(zzzzzz) error = %v, want not found", err)
	}

	if store.Len() != 1 {
		t.Errorf("store has %d links after failed resolve, want 1", store.Len())
	}

	if fmt.Sprint(observer.created) != "[Ab12Cd]" || fmt.Sprint(observer.resolved) != "[Ab12Cd]" {
		t.Errorf("observer created = %v, resolved = %v", observer.created, observer.resolved)
	}
	if fmt.Sprint(observer.failures) != "[resolve]" {
		t.Errorf("observer failures = %v", observer.failures)
	}
}

func TestLinkRegistry_Resolve_Errors(t *testing.T) {
	t.Run("store failure on read", func(t *testing.T) {
		store := newMockLinkStore()
		seed(t, store, "Ab12Cd", "https://example.com")
		store.failGet = true

		_, err := NewLinkRegistry(store, utils.NewRandomGenerator(0)).Resolve(context.Background(), "Ab12Cd")
		if !apperrors.IsStoreError(err) {
			t.Errorf("Resolve() error = %v, want store error", err)
		}
	})

	t.Run("store failure on increment", func(t *testing.T) {
		store := newMockLinkStore()
		seed(t, store, "Ab12Cd", "https://example.com")
		store.failIncrement = true

		_, err := NewLinkRegistry(store, utils.NewRandomGenerator(0)).Resolve(context.Background(), "Ab12Cd")
		if !apperrors.IsStoreError(err) {
			t.Errorf("Resolve() error = %v, want store error", err)
		}
	})

	t.Run("empty code is simply unknown", func(t *testing.T) {
		_, err := NewLinkRegistry(newMockLinkStore(), utils.NewRandomGenerator(0)).Resolve(context.Background(), "")
		if !errors.Is(err, apperrors.ErrLinkNotFound) {
			t.Errorf("Resolve(\"\") error = %v, want ErrLinkNotFound", err)
		}
	})
}

func TestLinkRegistry_Resolve_RepeatedReadsAreStable(t *testing.T) {
	ctx := context.Background()
	store := newMockLinkStore()
	registry := NewLinkRegistry(store, utils.NewRandomGenerator(0))

	link, err := registry.Create(ctx, "https://example.com/stable")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		got, err := registry.Resolve(ctx, link.ShortCode)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got != "https://example.com/stable" {
			t.Fatalf("Resolve() = %s on call %d", got, i)
		}
	}

	stats, err := registry.Stats(ctx, link.ShortCode)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.ClickCount != 10 {
		t.Errorf("ClickCount = %d, want 10", stats.ClickCount)
	}
}

func TestLinkRegistry_Stats(t *testing.T) {
	ctx := context.Background()
	store := newMockLinkStore()
	seed(t, store, "Ab12Cd", "https://example.com")
	registry := NewLinkRegistry(store, utils.NewRandomGenerator(0))

	for i := 0; i < 3; i++ {
		if _, err := registry.Stats(ctx, "Ab12Cd"); err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
	}

	link, err := registry.Stats(ctx, "Ab12Cd")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if link.ClickCount != 0 {
		t.Errorf("Stats() must not count visits, ClickCount = %d", link.ClickCount)
	}

	if _, err := registry.Stats(ctx, "zzzzzz"); !apperrors.IsNotFound(err) {
		t.Errorf("Stats(zzzzzz) error = %v, want not found", err)
	}
}

func TestLinkRegistry_ConcurrentCreatesAreUnique(t *testing.T) {
	ctx := context.Background()
	store := newMockLinkStore()
	registry := NewLinkRegistry(store, utils.NewRandomGenerator(0))

	const n = 200
	links := make([]*model.Link, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			link, err := registry.Create(ctx, fmt.Sprintf("https://example.com/%d", i))
			if err != nil {
				t.Errorf("Create() error = %v", err)
				return
			}
			links[i] = link
		}(i)
	}
	wg.Wait()

	seen := make(map[string]string)
	for i, link := range links {
		if link == nil {
			continue
		}
		if other, dup := seen[link.ShortCode]; dup {
			t.Errorf("short code %s returned for both %s and %s", link.ShortCode, other, link.LongURL)
		}
		seen[link.ShortCode] = link.LongURL

		got, err := registry.Resolve(ctx, link.ShortCode)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if want := fmt.Sprintf("https://example.com/%d", i); got != want {
			t.Errorf("Resolve(%s) = %s, want %s", link.ShortCode, got, want)
		}
	}

	if store.Len() != n {
		t.Errorf("store has %d links, want %d", store.Len(), n)
	}
}

func TestLinkRegistry_ConcurrentCreatorsRacingOnOneCode(t *testing.T) {
	ctx := context.Background()
	store := newMockLinkStore()
	registry := NewLinkRegistry(store, newSequenceGenerator("AAAAAA"))

	const n = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []string
		exhausted int
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			longURL := fmt.Sprintf("https://example.com/%d", i)
			_, err := registry.Create(ctx, longURL)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded = append(succeeded, longURL)
			case apperrors.IsCapacityError(err):
				exhausted++
			default:
				t.Errorf("Create() unexpected error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if len(succeeded) != 1 || exhausted != n-1 {
		t.Fatalf("succeeded = %d, exhausted = %d; want 1 and %d", len(succeeded), exhausted, n-1)
	}

	link, err := store.Get(ctx, "AAAAAA")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if link.LongURL != succeeded[0] {
		t.Errorf("stored LongURL = %s, want winner %s", link.LongURL, succeeded[0])
	}
}

func TestLinkRegistry_ConcurrentResolvesCountEveryClick(t *testing.T) {
	ctx := context.Background()
	store := newMockLinkStore()
	seed(t, store, "hot001", "https://example.com/popular")
	if err := store.IncrementCounter(ctx, "hot001", model.FieldClickCount, 7); err != nil {
		t.Fatalf("IncrementCounter() error = %v", err)
	}
	registry := NewLinkRegistry(store, utils.NewRandomGenerator(0))

	const k = 500
	var wg sync.WaitGroup

	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := registry.Resolve(ctx, "hot001")
			if err != nil {
				t.Errorf("Resolve() error = %v", err)
				return
			}
			if got != "https://example.com/popular" {
				t.Errorf("Resolve() = %s", got)
			}
		}()
	}
	wg.Wait()

	link, err := store.Get(ctx, "hot001")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if link.ClickCount != 7+k {
		t.Errorf("ClickCount = %d, want %d", link.ClickCount, 7+k)
	}
}
