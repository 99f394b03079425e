package domain

import "time"

// Collection is a user-curated, ordered group of manga.
type Collection struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CoverMangaID *int64    `json:"cover_manga_id,omitempty"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CollectionItem places a manga inside a collection.
type CollectionItem struct {
	ID           int64  `json:"id"`
	CollectionID int64  `json:"collection_id"`
	MangaID      int64  `json:"manga_id"`
	SortOrder    int    `json:"sort_order"`
	Badge        string `json:"badge,omitempty"`
}

// CollectionUpdate is a partial collection update; nil fields are left untouched.
type CollectionUpdate struct {
	ID           int64
	Name         *string
	Description  *string
	CoverMangaID *int64
	SortOrder    *int
}

// CollectionItemUpdate is a partial item update; nil fields are left untouched.
type CollectionItemUpdate struct {
	ID        int64
	SortOrder *int
	Badge     *string
}

// CollectionItemWithManga joins an item to its manga.
type CollectionItemWithManga struct {
	Item  CollectionItem
	Manga Manga
}

// CollectionWithItems is a collection and its items ordered by sort order.
type CollectionWithItems struct {
	Collection Collection
	Items      []CollectionItemWithManga
}
