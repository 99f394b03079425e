package category

import "github.com/mmcdole/shelf/internal/domain"

// HideEmptyDefault hides the system category when no library manga is
// uncategorized. It reports whether the category was changed.
func (s *Service) HideEmptyDefault() (bool, error) {
	if err := s.store.EnsureSystemCategory(); err != nil {
		return false, err
	}
	def, err := s.store.Category(domain.UncategorizedID)
	if err != nil {
		return false, err
	}
	library, err := s.store.LibraryManga()
	if err != nil {
		return false, err
	}
	for _, m := range library {
		if m.IsUncategorized() {
			return false, nil
		}
	}
	if def.Hidden {
		return false, nil
	}
	if err := s.SetHidden(domain.UncategorizedID, true); err != nil {
		return false, err
	}
	s.logger.Info("hid empty default category")
	return true, nil
}
