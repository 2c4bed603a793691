package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
	"github.com/dropDatabas3/bookjohn/internal/store/memory"
)

func seedBookService(t *testing.T) *BookService {
	t.Helper()
	svc := NewBookService(memory.NewBookStore())
	ctx := context.Background()
	for _, in := range []repository.CreateBookInput{
		{Title: "Dune", Author: "Frank Herbert", ISBN: "d-1", PublicationYear: 1965, Genre: "Science Fiction"},
		{Title: "Dune Messiah", Author: "Frank Herbert", ISBN: "d-2", PublicationYear: 1969, Genre: "Science Fiction"},
		{Title: "Neuromancer", Author: "William Gibson", ISBN: "n-1", PublicationYear: 1984, Genre: "fiction"},
	} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	return svc
}

func TestBookCreate_Validation(t *testing.T) {
	svc := NewBookService(memory.NewBookStore())
	ctx := context.Background()

	cases := []struct {
		name string
		in   repository.CreateBookInput
	}{
		{"missing title", repository.CreateBookInput{Author: "A", ISBN: "1", PublicationYear: 2000}},
		{"missing author", repository.CreateBookInput{Title: "T", ISBN: "1", PublicationYear: 2000}},
		{"missing isbn", repository.CreateBookInput{Title: "T", Author: "A", PublicationYear: 2000}},
		{"non-positive year", repository.CreateBookInput{Title: "T", Author: "A", ISBN: "1"}},
	}
	for _, c := range cases {
		if _, err := svc.Create(ctx, c.in); !errors.Is(err, repository.ErrInvalidInput) {
			t.Fatalf("%s: %v", c.name, err)
		}
	}
}

func TestBookList_Filters(t *testing.T) {
	svc := seedBookService(t)
	ctx := context.Background()

	all, err := svc.List(ctx, "", "")
	if err != nil || len(all) != 3 {
		t.Fatalf("unfiltered: %d err=%v", len(all), err)
	}

	byAuthor, err := svc.List(ctx, "herbert", "")
	if err != nil || len(byAuthor) != 2 {
		t.Fatalf("author filter: %d err=%v", len(byAuthor), err)
	}

	byGenre, err := svc.List(ctx, "", "FICTION")
	if err != nil || len(byGenre) != 3 {
		t.Fatalf("genre filter (case-insensitive substring): %d err=%v", len(byGenre), err)
	}

	// ambos filtros se intersectan
	both, err := svc.List(ctx, "gibson", "fiction")
	if err != nil || len(both) != 1 || both[0].Title != "Neuromancer" {
		t.Fatalf("intersection: %v err=%v", both, err)
	}

	none, err := svc.List(ctx, "herbert", "romance")
	if err != nil || len(none) != 0 {
		t.Fatalf("empty intersection: %v err=%v", none, err)
	}
}

func TestBookUpdateDelete(t *testing.T) {
	svc := seedBookService(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, 999, repository.CreateBookInput{
		Title: "T", Author: "A", ISBN: "x", PublicationYear: 2000,
	}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}

	removed, err := svc.Delete(ctx, 1)
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	n, _ := svc.Count(ctx)
	if n != 2 {
		t.Fatalf("count after delete: %d", n)
	}
}
