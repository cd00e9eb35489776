package reconciliation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"batch-reconciliation-backend/internal/templates"
)

func (s *ReconciliationService) ListTemplates(ctx context.Context) ([]templates.Template, error) {
	return s.templateStore.Load(ctx, s.templateKey)
}

func (s *ReconciliationService) GetTemplate(ctx context.Context, name string) (templates.Template, error) {
	list, err := s.templateStore.Load(ctx, s.templateKey)
	if err != nil {
		return templates.Template{}, err
	}
	tpl, ok := templates.Find(list, name)
	if !ok {
		return templates.Template{}, fmt.Errorf("%w: %q", templates.ErrNotFound, name)
	}
	return tpl, nil
}

// SaveTemplate stores tpl, replacing any template with the same name.
func (s *ReconciliationService) SaveTemplate(ctx context.Context, tpl templates.Template) (templates.Template, error) {
	tpl.Name = strings.TrimSpace(tpl.Name)
	if tpl.Name == "" {
		return templates.Template{}, templates.ErrInvalidName
	}
	if err := tpl.Mapping.Validate(); err != nil {
		return templates.Template{}, err
	}

	list, err := s.templateStore.Load(ctx, s.templateKey)
	if err != nil {
		return templates.Template{}, err
	}
	tpl.SavedAt = time.Now().UTC()
	if err := s.templateStore.Save(ctx, s.templateKey, templates.Upsert(list, tpl)); err != nil {
		return templates.Template{}, err
	}
	s.log.WithField("template", tpl.Name).Info("mapping template saved")
	return tpl, nil
}

func (s *ReconciliationService) DeleteTemplate(ctx context.Context, name string) error {
	list, err := s.templateStore.Load(ctx, s.templateKey)
	if err != nil {
		return err
	}
	list, ok := templates.Remove(list, name)
	if !ok {
		return fmt.Errorf("%w: %q", templates.ErrNotFound, name)
	}
	return s.templateStore.Save(ctx, s.templateKey, list)
}

// SeedTemplates adds the templates whose names are not stored yet and
// returns how many were added.
func (s *ReconciliationService) SeedTemplates(ctx context.Context, seed []templates.Template) (int, error) {
	list, err := s.templateStore.Load(ctx, s.templateKey)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, tpl := range seed {
		if _, exists := templates.Find(list, tpl.Name); exists {
			continue
		}
		if tpl.SavedAt.IsZero() {
			tpl.SavedAt = time.Now().UTC()
		}
		list = append(list, tpl)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.templateStore.Save(ctx, s.templateKey, list)
}
