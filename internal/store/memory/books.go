package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
)

// BookStore mantiene el catálogo por ID más un índice por ISBN para la
// unicidad. Los filtros por autor/género son linear scan.
type BookStore struct {
	mu     sync.RWMutex
	byID   map[int64]*repository.Book
	byISBN map[string]int64
	nextID int64

	now func() time.Time
}

// NewBookStore crea un store vacío.
func NewBookStore() *BookStore {
	return &BookStore{
		byID:   make(map[int64]*repository.Book),
		byISBN: make(map[string]int64),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.BookRepository = (*BookStore)(nil)

func cloneBook(b *repository.Book) *repository.Book {
	cp := *b
	return &cp
}

func (s *BookStore) sortedLocked(keep func(*repository.Book) bool) []repository.Book {
	out := make([]repository.Book, 0, len(s.byID))
	for _, b := range s.byID {
		if keep == nil || keep(b) {
			out = append(out, *cloneBook(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *BookStore) List(_ context.Context) ([]repository.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(nil), nil
}

func (s *BookStore) ListByAuthor(_ context.Context, author string) ([]repository.Book, error) {
	needle := strings.ToLower(author)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(b *repository.Book) bool {
		return strings.Contains(strings.ToLower(b.Author), needle)
	}), nil
}

func (s *BookStore) ListByGenre(_ context.Context, genre string) ([]repository.Book, error) {
	needle := strings.ToLower(genre)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(b *repository.Book) bool {
		// sin género no matchea nunca
		return b.Genre != "" && strings.Contains(strings.ToLower(b.Genre), needle)
	}), nil
}

func (s *BookStore) GetByID(_ context.Context, id int64) (*repository.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", id, repository.ErrNotFound)
	}
	return cloneBook(b), nil
}

func (s *BookStore) Create(_ context.Context, input repository.CreateBookInput) (*repository.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byISBN[input.ISBN]; ok {
		return nil, fmt.Errorf("isbn %q: %w", input.ISBN, repository.ErrConflict)
	}

	now := s.now()
	b := &repository.Book{
		ID:              s.nextID,
		Title:           input.Title,
		Author:          input.Author,
		ISBN:            input.ISBN,
		PublicationYear: input.PublicationYear,
		Genre:           input.Genre,
		Description:     input.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.nextID++

	s.byID[b.ID] = b
	s.byISBN[b.ISBN] = b.ID
	return cloneBook(b), nil
}

func (s *BookStore) Update(_ context.Context, id int64, input repository.UpdateBookInput) (*repository.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", id, repository.ErrNotFound)
	}
	if otherID, ok := s.byISBN[input.ISBN]; ok && otherID != id {
		return nil, fmt.Errorf("isbn %q: %w", input.ISBN, repository.ErrConflict)
	}

	delete(s.byISBN, b.ISBN)

	b.Title = input.Title
	b.Author = input.Author
	b.ISBN = input.ISBN
	b.PublicationYear = input.PublicationYear
	b.Genre = input.Genre
	b.Description = input.Description
	b.UpdatedAt = s.now()

	s.byISBN[b.ISBN] = id
	return cloneBook(b), nil
}

func (s *BookStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	delete(s.byID, id)
	delete(s.byISBN, b.ISBN)
	return true, nil
}

func (s *BookStore) ExistsByISBN(_ context.Context, isbn string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byISBN[isbn]
	return ok, nil
}

func (s *BookStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}
