package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// MasterDataService manages the reference records the core resolves
// against: persons, projects, items and units.
type MasterDataService struct {
	store storage.Store
}

// NewMasterDataService creates a MasterDataService with the given storage
// backend.
func NewMasterDataService(store storage.Store) *MasterDataService {
	return &MasterDataService{store: store}
}

// CreatePerson validates and persists a person. Legal persons need a
// company name; natural persons need a first name.
func (s *MasterDataService) CreatePerson(ctx context.Context, p *models.Person) (*models.Person, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.LastName = strings.TrimSpace(p.LastName)
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	if p.IsLegal && p.CompanyName == "" {
		return nil, apperr.New(apperr.Invalid, "a legal person needs a company name")
	}
	if !p.IsLegal && p.Name == "" {
		return nil, apperr.New(apperr.Invalid, "a natural person needs a name")
	}
	if err := s.store.CreatePerson(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPerson retrieves a person.
func (s *MasterDataService) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	p, err := s.store.GetPerson(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "person not found: %d", id)
	}
	return p, err
}

// ListPersons returns every person.
func (s *MasterDataService) ListPersons(ctx context.Context) ([]models.Person, error) {
	return s.store.ListPersons(ctx)
}

// CreateProject validates and persists a project. A non-zero parent must
// exist.
func (s *MasterDataService) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return nil, apperr.New(apperr.Invalid, "project title is required")
	}
	if p.ParentID != 0 {
		if _, err := s.store.GetProject(ctx, p.ParentID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, apperr.New(apperr.NotFound, "project not found: %d", p.ParentID)
			}
			return nil, err
		}
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProject retrieves a project.
func (s *MasterDataService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "project not found: %d", id)
	}
	return p, err
}

// ListProjects returns every project.
func (s *MasterDataService) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.store.ListProjects(ctx)
}

// UpdateProject rewrites a project. Reparenting a project under one of its
// own descendants is rejected.
func (s *MasterDataService) UpdateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return nil, apperr.New(apperr.Invalid, "project title is required")
	}
	if p.ParentID == p.ID && p.ID != 0 {
		return nil, apperr.New(apperr.Invalid, "a project cannot be its own parent")
	}
	if p.ParentID != 0 {
		if _, err := s.store.GetProject(ctx, p.ParentID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, apperr.New(apperr.NotFound, "project not found: %d", p.ParentID)
			}
			return nil, err
		}
	}
	if err := s.store.UpdateProject(ctx, p); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, apperr.New(apperr.NotFound, "project not found: %d", p.ID)
		case errors.Is(err, storage.ErrCycle):
			return nil, apperr.New(apperr.Invalid, "reparenting would create a project cycle")
		}
		return nil, err
	}
	return p, nil
}

// CreateItem persists an item.
func (s *MasterDataService) CreateItem(ctx context.Context, i *models.Item) (*models.Item, error) {
	i.Title = strings.TrimSpace(i.Title)
	if i.Title == "" {
		return nil, apperr.New(apperr.Invalid, "item title is required")
	}
	if err := s.store.CreateItem(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// GetItem retrieves an item.
func (s *MasterDataService) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	i, err := s.store.GetItem(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "item not found: %d", id)
	}
	return i, err
}

// ListItems returns every item.
func (s *MasterDataService) ListItems(ctx context.Context) ([]models.Item, error) {
	return s.store.ListItems(ctx)
}

// CreateUnit persists a measurement unit.
func (s *MasterDataService) CreateUnit(ctx context.Context, u *models.Unit) (*models.Unit, error) {
	u.Title = strings.TrimSpace(u.Title)
	if u.Title == "" {
		return nil, apperr.New(apperr.Invalid, "unit title is required")
	}
	if err := s.store.CreateUnit(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUnit retrieves a measurement unit.
func (s *MasterDataService) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	u, err := s.store.GetUnit(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "unit not found: %d", id)
	}
	return u, err
}

// ListUnits returns every measurement unit.
func (s *MasterDataService) ListUnits(ctx context.Context) ([]models.Unit, error) {
	return s.store.ListUnits(ctx)
}
