package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/lectio/lectio/internal/cache"
	"github.com/lectio/lectio/internal/events"
	"github.com/lectio/lectio/internal/model"
	"github.com/lectio/lectio/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

// fakeBookStore is an in-memory BookStore.
type fakeBookStore struct {
	mu     sync.Mutex
	books  []*model.Book
	gets   int
	failOn string
}

func (f *fakeBookStore) fail(op string) error {
	if f.failOn == op {
		return errStoreDown
	}
	return nil
}

func (f *fakeBookStore) CreateBook(_ context.Context, book *model.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("create"); err != nil {
		return err
	}
	book.ID = int64(len(f.books) + 1)
	clone := *book
	f.books = append(f.books, &clone)
	return nil
}

func (f *fakeBookStore) GetBookByID(_ context.Context, id int64) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if err := f.fail("get"); err != nil {
		return nil, err
	}
	for _, b := range f.books {
		if b.ID == id {
			clone := *b
			return &clone, nil
		}
	}
	return nil, repository.ErrBookNotFound
}

func (f *fakeBookStore) ListBooks(_ context.Context, start, limit int) ([]*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("list"); err != nil {
		return nil, err
	}
	if start >= len(f.books) {
		return nil, nil
	}
	end := start + limit
	if end > len(f.books) {
		end = len(f.books)
	}
	return append([]*model.Book(nil), f.books[start:end]...), nil
}

func (f *fakeBookStore) ListAllBooks(_ context.Context) ([]*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("list"); err != nil {
		return nil, err
	}
	return append([]*model.Book(nil), f.books...), nil
}

func (f *fakeBookStore) CountBooks(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("count"); err != nil {
		return 0, err
	}
	return int64(len(f.books)), nil
}

// fakeBookCache is an in-memory BookCache.
type fakeBookCache struct {
	mu       sync.Mutex
	books    map[int64]*model.Book
	negative map[int64]bool
	broken   bool
	setFails bool
	deletes  int
}

func newFakeBookCache() *fakeBookCache {
	return &fakeBookCache{books: map[int64]*model.Book{}, negative: map[int64]bool{}}
}

func (f *fakeBookCache) GetBook(_ context.Context, id int64) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken {
		return nil, errors.New("redis down")
	}
	b, ok := f.books[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookCache) SetBook(_ context.Context, book *model.Book, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setFails {
		return errors.New("redis write failed")
	}
	clone := *book
	f.books[book.ID] = &clone
	delete(f.negative, book.ID)
	return nil
}

func (f *fakeBookCache) IsNegativelyCached(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.negative[id], nil
}

func (f *fakeBookCache) SetNegativeCache(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.negative[id] = true
	return nil
}

func (f *fakeBookCache) DeleteBook(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.books, id)
	delete(f.negative, id)
	return nil
}

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User
	lists  []model.UserList
	failOn string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*model.User{}}
}

func (f *fakeUserStore) CreateUserWithLists(_ context.Context, user *model.User, lists []model.UserList) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "create" {
		return errStoreDown
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	clone := *user
	f.users[user.ID] = &clone
	for _, l := range lists {
		l.UserID = user.ID
		f.lists = append(f.lists, l)
	}
	return nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "list" {
		return nil, errStoreDown
	}
	var out []*model.User
	for id := int64(1); id <= f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeUserStore) UpdateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range f.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	hash := existing.PasswordHash
	clone := *user
	clone.PasswordHash = hash
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) ListUserLists(_ context.Context, userID int64) ([]*model.UserList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.UserList
	for i := range f.lists {
		if f.lists[i].UserID == userID {
			l := f.lists[i]
			out = append(out, &l)
		}
	}
	return out, nil
}

func (f *fakeUserStore) listCount(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.lists {
		if l.UserID == userID {
			n++
		}
	}
	return n
}

// fakeClubStore is an in-memory ClubStore with the same subscribe semantics
// as the SQL transaction.
type fakeClubStore struct {
	mu     sync.Mutex
	clubs  []*model.Club
	subs   map[model.ClubSubscription]bool
	failOn string
}

func newFakeClubStore() *fakeClubStore {
	return &fakeClubStore{subs: map[model.ClubSubscription]bool{}}
}

func (f *fakeClubStore) CreateClub(_ context.Context, club *model.Club) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "create" {
		return errStoreDown
	}
	club.ID = int64(len(f.clubs) + 1)
	club.Subscribers = 0
	clone := *club
	f.clubs = append(f.clubs, &clone)
	return nil
}

func (f *fakeClubStore) GetClubByID(_ context.Context, id int64) (*model.Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clubs {
		if c.ID == id {
			clone := *c
			return &clone, nil
		}
	}
	return nil, repository.ErrClubNotFound
}

func (f *fakeClubStore) ListClubs(_ context.Context) ([]*model.Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "list" {
		return nil, errStoreDown
	}
	return append([]*model.Club(nil), f.clubs...), nil
}

func (f *fakeClubStore) Subscribe(_ context.Context, sub model.ClubSubscription) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn == "subscribe" {
		return 0, errStoreDown
	}
	if f.subs[sub] {
		return 0, repository.ErrAlreadySubscribed
	}
	for _, c := range f.clubs {
		if c.ID == sub.ClubID {
			f.subs[sub] = true
			c.Subscribers++
			return c.Subscribers, nil
		}
	}
	return 0, repository.ErrClubNotFound
}

func (f *fakeClubStore) subscribers(id int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.clubs {
		if c.ID == id {
			return c.Subscribers
		}
	}
	return -1
}

// fakeHasher prefixes passwords instead of hashing them.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Verify(password, encoded string) (bool, error) {
	if !strings.HasPrefix(encoded, "hashed:") {
		return false, errors.New("unknown hash format")
	}
	return encoded == "hashed:"+password, nil
}

// recordingSink captures published events.
type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingSink) PublishAsync(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSink) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
