package collection

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/store"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func addManga(t *testing.T, db *store.Store, titles ...string) []int64 {
	t.Helper()
	ids := make([]int64, len(titles))
	for i, title := range titles {
		id, err := db.PutManga(domain.Manga{Title: title, Favorite: true})
		if err != nil {
			t.Fatalf("PutManga: %v", err)
		}
		ids[i] = id
	}
	return ids
}

func TestService_CreateTrimsAndStamps(t *testing.T) {
	db := openStore(t)
	svc := NewService(db, nil)
	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	if _, err := svc.Create("  ", ""); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("blank name = %v, want ErrInvalidName", err)
	}

	id, err := svc.Create(" Favourites ", " best of ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Favourites" || got.Description != "best of" {
		t.Errorf("collection = %+v", got)
	}
	if !got.CreatedAt.Equal(fixed) || !got.UpdatedAt.Equal(fixed) {
		t.Errorf("timestamps = %v, %v; want %v", got.CreatedAt, got.UpdatedAt, fixed)
	}

	if err := svc.Update(id, "", "x"); !errors.Is(err, domain.ErrInvalidName) {
		t.Errorf("update blank = %v, want ErrInvalidName", err)
	}
}

func TestService_ItemsReorderAndBadges(t *testing.T) {
	db := openStore(t)
	svc := NewService(db, nil)
	manga := addManga(t, db, "A", "B", "C")

	cid, err := svc.Create("Reading list", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	var items []int64
	for _, m := range manga {
		id, err := svc.AddManga(cid, m, "")
		if err != nil {
			t.Fatalf("AddManga: %v", err)
		}
		items = append(items, id)
	}
	if _, err := svc.AddManga(cid, manga[0], ""); !errors.Is(err, domain.ErrDuplicateItem) {
		t.Errorf("duplicate add = %v, want ErrDuplicateItem", err)
	}

	if err := svc.Reorder([]int64{items[2], items[0], items[1]}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if err := svc.SetBadge(items[0], "  new  "); err != nil {
		t.Fatalf("SetBadge: %v", err)
	}

	full, err := svc.WithItems(cid)
	if err != nil {
		t.Fatalf("WithItems: %v", err)
	}
	var titles, badges []string
	for _, it := range full.Items {
		titles = append(titles, it.Manga.Title)
		badges = append(badges, it.Item.Badge)
	}
	if diff := cmp.Diff([]string{"C", "A", "B"}, titles); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", "new", ""}, badges); diff != "" {
		t.Errorf("badges (-want +got):\n%s", diff)
	}

	if err := svc.RemoveManga(cid, manga[1]); err != nil {
		t.Fatalf("RemoveManga: %v", err)
	}
	in, err := svc.ForManga(manga[1])
	if err != nil {
		t.Fatalf("ForManga: %v", err)
	}
	if len(in) != 0 {
		t.Errorf("ForManga after remove = %+v", in)
	}
}

func TestService_CategoriesAndCover(t *testing.T) {
	db := openStore(t)
	svc := NewService(db, nil)
	manga := addManga(t, db, "A")
	cid, _ := svc.Create("Linked", "")

	if err := svc.SetCategories(cid, []int64{3, 5}); err != nil {
		t.Fatalf("SetCategories: %v", err)
	}
	if diff := cmp.Diff([]int64{3, 5}, svc.Categories(cid)); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}

	if err := svc.SetCover(cid, manga[0]); err != nil {
		t.Fatalf("SetCover: %v", err)
	}
	c, _ := svc.Get(cid)
	if c.CoverMangaID == nil || *c.CoverMangaID != manga[0] {
		t.Errorf("cover = %v, want %d", c.CoverMangaID, manga[0])
	}

	if err := svc.Delete(cid); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(cid); !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Errorf("Get after delete = %v", err)
	}
}

// missingManga hides one manga from lookups.
type missingManga struct {
	*store.Store
	hidden int64
}

func (m missingManga) Manga(id int64) (domain.Manga, error) {
	if id == m.hidden {
		return domain.Manga{}, fmt.Errorf("manga %d: %w", id, domain.ErrMangaNotFound)
	}
	return m.Store.Manga(id)
}

func TestService_WithItemsSkipsMissingManga(t *testing.T) {
	db := openStore(t)
	manga := addManga(t, db, "A", "B")
	svc := NewService(missingManga{Store: db, hidden: manga[0]}, nil)

	cid, _ := svc.Create("Gaps", "")
	svc.AddManga(cid, manga[0], "")
	svc.AddManga(cid, manga[1], "")

	full, err := svc.WithItems(cid)
	if err != nil {
		t.Fatalf("WithItems: %v", err)
	}
	if len(full.Items) != 1 || full.Items[0].Manga.Title != "B" {
		t.Errorf("items = %+v, want only B", full.Items)
	}
}
