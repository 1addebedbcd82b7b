package cabinet

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/pillbox/internal/model"
)

func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := s.view(ctx, func(st stores) error {
		var err error
		categories, err = st.categories.List()
		return err
	})
	return categories, err
}

func (s *Service) AddCategory(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("category", "name is required")
	}

	var created *model.Category
	err := s.mutate(ctx, func(st stores) error {
		existing, err := st.categories.GetByName(name)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflict("category %q already exists", name)
		}
		if s.opts.CategoryLimit > 0 {
			count, err := st.categories.Count()
			if err != nil {
				return err
			}
			if count >= s.opts.CategoryLimit {
				return conflict("category limit of %d reached", s.opts.CategoryLimit)
			}
		}
		created, err = st.categories.Create(name)
		if err != nil {
			return err
		}
		return s.record(st, model.Action{Type: model.ActionAddCategory, Name: name},
			fmt.Sprintf("Added category %s", name))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RemoveCategory deletes the category only. Medicines filed under it keep
// the name.
func (s *Service) RemoveCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("category", "name is required")
	}

	return s.mutate(ctx, func(st stores) error {
		removed, err := st.categories.Delete(name)
		if err != nil {
			return err
		}
		if !removed {
			return notFound("category", name)
		}
		return s.record(st, model.Action{Type: model.ActionRemoveCategory, Name: name},
			fmt.Sprintf("Removed category %s", name))
	})
}
