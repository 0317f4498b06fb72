//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lectio/lectio/internal/model"
	"github.com/lectio/lectio/internal/testutil"
)

func newTestRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo
}

// ============================================================================
// Books
// ============================================================================

func TestIntegrationRepository_CreateAndGetBook(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	book := testutil.NewTestBook(t, "Dune")
	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("create book: %v", err)
	}
	if book.ID == 0 {
		t.Fatal("expected server-assigned book ID")
	}

	loaded, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if loaded.Title != book.Title || loaded.ISBN != book.ISBN || loaded.Pages != book.Pages {
		t.Errorf("loaded book = %+v, want %+v", loaded, book)
	}
	if len(loaded.Genres) != 2 || loaded.Genres[0] != "Fiction" || loaded.Genres[1] != "Classic" {
		t.Errorf("genres = %v, want [Fiction Classic]", loaded.Genres)
	}

	if _, err := repo.GetBookByID(ctx, book.ID+1000); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestIntegrationRepository_BookWithoutGenres(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	book := testutil.NewTestBook(t, "Untagged")
	book.Genres = nil
	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("create book: %v", err)
	}

	loaded, err := repo.GetBookByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if loaded.Genres == nil || len(loaded.Genres) != 0 {
		t.Errorf("genres = %#v, want empty slice", loaded.Genres)
	}
}

func TestIntegrationRepository_ListBooksWindow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	titles := []string{"A", "B", "C", "D", "E"}
	for _, title := range titles {
		if err := repo.CreateBook(ctx, testutil.NewTestBook(t, title)); err != nil {
			t.Fatalf("create book %s: %v", title, err)
		}
	}

	count, err := repo.CountBooks(ctx)
	if err != nil {
		t.Fatalf("count books: %v", err)
	}
	if count != int64(len(titles)) {
		t.Errorf("count = %d, want %d", count, len(titles))
	}

	page, err := repo.ListBooks(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(page) != 2 || page[0].Title != "C" || page[1].Title != "D" {
		t.Errorf("window = %v, want [C D]", bookTitles(page))
	}

	past, err := repo.ListBooks(ctx, 10, 2)
	if err != nil {
		t.Fatalf("list books past end: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("expected empty window past end, got %v", bookTitles(past))
	}

	all, err := repo.ListAllBooks(ctx)
	if err != nil {
		t.Fatalf("list all books: %v", err)
	}
	if len(all) != len(titles) {
		t.Errorf("all = %v, want %v", bookTitles(all), titles)
	}
}

func bookTitles(books []*model.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

// ============================================================================
// Users
// ============================================================================

func TestIntegrationRepository_CreateUserWithLists(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t, "Ada")
	lists := []model.UserList{{Name: model.ListPending}, {Name: model.ListFinished}}
	if err := repo.CreateUserWithLists(ctx, user, lists); err != nil {
		t.Fatalf("create user: %v", err)
	}

	stored, err := repo.ListUserLists(ctx, user.ID)
	if err != nil {
		t.Fatalf("list user lists: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(stored))
	}
	for _, l := range stored {
		if l.UserID != user.ID {
			t.Errorf("list %q owned by %d, want %d", l.Name, l.UserID, user.ID)
		}
	}

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.Role != model.RoleStudent {
		t.Errorf("user by email = %+v", byEmail)
	}
}

func TestIntegrationRepository_DuplicateEmailRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	first := testutil.NewTestUser(t, "Ada")
	if err := repo.CreateUserWithLists(ctx, first, []model.UserList{{Name: model.ListPending}}); err != nil {
		t.Fatalf("create first user: %v", err)
	}

	second := testutil.NewTestUser(t, "Grace")
	second.Email = first.Email
	err := repo.CreateUserWithLists(ctx, second, []model.UserList{{Name: model.ListPending}})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user after rollback, got %d", len(users))
	}

	var lists int
	if err := repo.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM user_lists`).Scan(&lists); err != nil {
		t.Fatalf("count lists: %v", err)
	}
	if lists != 1 {
		t.Errorf("expected 1 list after rollback, got %d", lists)
	}
}

func TestIntegrationRepository_UpdateAndDeleteUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t, "Ada")
	if err := repo.CreateUserWithLists(ctx, user, nil); err != nil {
		t.Fatalf("create user: %v", err)
	}
	originalHash := user.PasswordHash

	photo := "https://example.com/ada.png"
	user.FirstName = "Augusta"
	user.Role = model.RoleLibrarian
	user.Photo = &photo
	user.PasswordHash = "ignored"
	if err := repo.UpdateUser(ctx, user); err != nil {
		t.Fatalf("update user: %v", err)
	}

	loaded, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if loaded.FirstName != "Augusta" || loaded.Role != model.RoleLibrarian {
		t.Errorf("update not applied: %+v", loaded)
	}
	if loaded.Photo == nil || *loaded.Photo != photo {
		t.Errorf("photo = %v, want %q", loaded.Photo, photo)
	}
	if loaded.PasswordHash != originalHash {
		t.Error("update must not touch the stored password")
	}

	missing := *user
	missing.ID = user.ID + 1000
	if err := repo.UpdateUser(ctx, &missing); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound on update, got %v", err)
	}

	if err := repo.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := repo.GetUserByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got %v", err)
	}
	if err := repo.DeleteUser(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

// ============================================================================
// Clubs
// ============================================================================

func TestIntegrationRepository_CreateClub(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	club := testutil.NewTestClubWithReading(t, "Readers", 1, 1_700_000_000_000)
	if err := repo.CreateClub(ctx, club); err != nil {
		t.Fatalf("create club: %v", err)
	}
	if club.ID == 0 || club.Subscribers != 0 {
		t.Errorf("club = %+v, want assigned ID and zero subscribers", club)
	}

	half := testutil.NewTestClub(t, "Half")
	bookID := int64(1)
	half.BookID = &bookID
	if err := repo.CreateClub(ctx, half); !errors.Is(err, ErrInvalidReading) {
		t.Errorf("expected ErrInvalidReading, got %v", err)
	}

	clubs, err := repo.ListClubs(ctx)
	if err != nil {
		t.Fatalf("list clubs: %v", err)
	}
	if len(clubs) != 1 {
		t.Errorf("expected 1 club, got %d", len(clubs))
	}
}

func TestIntegrationRepository_Subscribe(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	club := testutil.NewTestClub(t, "Readers")
	if err := repo.CreateClub(ctx, club); err != nil {
		t.Fatalf("create club: %v", err)
	}

	sub := model.ClubSubscription{UserID: 7, ClubID: club.ID}
	count, err := repo.Subscribe(ctx, sub)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if count != 1 {
		t.Errorf("subscribers = %d, want 1", count)
	}

	if _, err := repo.Subscribe(ctx, sub); !errors.Is(err, ErrAlreadySubscribed) {
		t.Errorf("expected ErrAlreadySubscribed, got %v", err)
	}

	loaded, err := repo.GetClubByID(ctx, club.ID)
	if err != nil {
		t.Fatalf("get club: %v", err)
	}
	if loaded.Subscribers != 1 {
		t.Errorf("duplicate subscribe changed counter to %d", loaded.Subscribers)
	}

	var rows int
	err = repo.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM club_subscriptions WHERE user_id = $1 AND club_id = $2`,
		sub.UserID, sub.ClubID,
	).Scan(&rows)
	if err != nil {
		t.Fatalf("count subscriptions: %v", err)
	}
	if rows != 1 {
		t.Errorf("subscription rows = %d, want 1", rows)
	}

	if _, err := repo.Subscribe(ctx, model.ClubSubscription{UserID: 7, ClubID: club.ID + 1000}); !errors.Is(err, ErrClubNotFound) {
		t.Errorf("expected ErrClubNotFound, got %v", err)
	}
}

func TestIntegrationRepository_ConcurrentSubscribe(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	club := testutil.NewTestClub(t, "Busy")
	if err := repo.CreateClub(ctx, club); err != nil {
		t.Fatalf("create club: %v", err)
	}

	const users = 20
	var wg sync.WaitGroup
	errs := make(chan error, users)
	for i := 1; i <= users; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := repo.Subscribe(ctx, model.ClubSubscription{UserID: userID, ClubID: club.ID}); err != nil {
				errs <- err
			}
		}(int64(i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("subscribe: %v", err)
	}

	loaded, err := repo.GetClubByID(ctx, club.ID)
	if err != nil {
		t.Fatalf("get club: %v", err)
	}
	if loaded.Subscribers != users {
		t.Errorf("subscribers = %d, want %d", loaded.Subscribers, users)
	}
}
