package memstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/boddenberg/loanhub/internal/catalog"
	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/infra/memstore"
)

func seededStore(t *testing.T) *memstore.ProductStore {
	t.Helper()
	s := memstore.NewProductStore()
	n, err := s.ReplaceAll(context.Background(), domain.SampleProducts())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 6 {
		t.Fatalf("expected 6 seeded products, got %d", n)
	}
	return s
}

func TestProductStore_ListDefaultOrder(t *testing.T) {
	s := seededStore(t)

	got, err := s.ListProducts(context.Background(), catalog.Criteria{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 products, got %d", len(got))
	}
	if got[0].Name != "Home Loan Prime" {
		t.Errorf("expected highest rated first, got '%s'", got[0].Name)
	}
	for _, p := range got {
		if p.ID == "" {
			t.Errorf("product '%s' has no id", p.Name)
		}
		if p.CreatedAt.IsZero() {
			t.Errorf("product '%s' has no createdAt", p.Name)
		}
	}
}

func TestProductStore_ListByType(t *testing.T) {
	s := seededStore(t)

	got, err := s.ListProducts(context.Background(), catalog.Criteria{Type: domain.ProductHomeLoan})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].Type != domain.ProductHomeLoan {
		t.Fatalf("expected exactly one home loan, got %+v", got)
	}
}

func TestProductStore_GetProduct(t *testing.T) {
	s := seededStore(t)
	all, _ := s.ListProducts(context.Background(), catalog.Criteria{})

	got, err := s.GetProduct(context.Background(), all[2].ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Name != all[2].Name {
		t.Errorf("expected '%s', got '%s'", all[2].Name, got.Name)
	}

	_, err = s.GetProduct(context.Background(), "missing")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductStore_ReplaceAllDropsPrevious(t *testing.T) {
	s := seededStore(t)
	before, _ := s.ListProducts(context.Background(), catalog.Criteria{})

	if _, err := s.ReplaceAll(context.Background(), domain.SampleProducts()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	after, _ := s.ListProducts(context.Background(), catalog.Criteria{})
	if len(after) != 6 {
		t.Fatalf("expected 6 products after reseed, got %d", len(after))
	}
	if _, err := s.GetProduct(context.Background(), before[0].ID); err == nil {
		t.Error("expected old ids to be gone after reseed")
	}
}

func TestProductStore_ConcurrentReads(t *testing.T) {
	s := seededStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ListProducts(context.Background(), catalog.Criteria{Sort: catalog.SortByMaxAmount}); err != nil {
				t.Errorf("list: %v", err)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.ReplaceAll(context.Background(), domain.SampleProducts())
	}()
	wg.Wait()
}

func TestUserStore_CreateAndLookup(t *testing.T) {
	s := memstore.NewUserStore()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, &domain.User{Name: "Asha", Email: "Asha@Example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	if created.Email != "asha@example.com" {
		t.Errorf("expected lower-cased email, got '%s'", created.Email)
	}

	byEmail, err := s.GetUserByEmail(ctx, "ASHA@example.com")
	if err != nil || byEmail == nil {
		t.Fatalf("expected user by email, got %v / %v", byEmail, err)
	}
	if byEmail.ID != created.ID {
		t.Errorf("expected id '%s', got '%s'", created.ID, byEmail.ID)
	}

	byID, err := s.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("expected user by id, got %v", err)
	}
	if byID.Name != "Asha" {
		t.Errorf("expected name 'Asha', got '%s'", byID.Name)
	}
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	s := memstore.NewUserStore()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, &domain.User{Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := s.CreateUser(ctx, &domain.User{Name: "B", Email: "A@EXAMPLE.COM"})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserStore_MissingUser(t *testing.T) {
	s := memstore.NewUserStore()

	u, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	if err != nil || u != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", u, err)
	}

	_, err = s.GetUserByID(context.Background(), "nope")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
