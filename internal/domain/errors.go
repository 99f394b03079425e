package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrMangaNotFound indicates the requested manga does not exist
	ErrMangaNotFound = errors.New("manga not found")

	// ErrCategoryNotFound indicates the requested category does not exist
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCollectionNotFound indicates the requested collection does not exist
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCollectionItemNotFound indicates the requested collection item does not exist
	ErrCollectionItemNotFound = errors.New("collection item not found")

	// ErrHistoryNotFound indicates the requested history record does not exist
	ErrHistoryNotFound = errors.New("history record not found")

	// ErrDuplicateItem indicates the manga is already part of the collection
	ErrDuplicateItem = errors.New("manga already in collection")

	// ErrInvalidName indicates a blank or otherwise unusable name
	ErrInvalidName = errors.New("name must not be blank")

	// ErrDuplicateName indicates another category already uses the name
	ErrDuplicateName = errors.New("name already in use")

	// ErrSystemCategory indicates an operation that is not allowed on the default category
	ErrSystemCategory = errors.New("operation not allowed on the default category")
)
