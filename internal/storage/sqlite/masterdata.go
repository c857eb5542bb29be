package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// CreatePerson persists a new person.
func (s *SQLiteStore) CreatePerson(ctx context.Context, p *models.Person) error {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO persons (name, last_name, company_name, is_legal) VALUES (?, ?, ?, ?)",
		p.Name, p.LastName, p.CompanyName, p.IsLegal,
	)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read person id: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by ID.
func (s *SQLiteStore) GetPerson(ctx context.Context, id int64) (*models.Person, error) {
	p := &models.Person{}
	err := s.q.QueryRowContext(ctx,
		"SELECT id, name, last_name, company_name, is_legal FROM persons WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.LastName, &p.CompanyName, &p.IsLegal)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

// ListPersons returns all persons ordered by id.
func (s *SQLiteStore) ListPersons(ctx context.Context) ([]models.Person, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT id, name, last_name, company_name, is_legal FROM persons ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	var out []models.Person
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.LastName, &p.CompanyName, &p.IsLegal); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %w", err)
	}
	return out, nil
}

// CreateProject persists a new project. ParentID 0 means a root project.
func (s *SQLiteStore) CreateProject(ctx context.Context, p *models.Project) error {
	var parent any
	if p.ParentID != 0 {
		parent = p.ParentID
	}
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO projects (title, parent_id) VALUES (?, ?)", p.Title, parent)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read project id: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (s *SQLiteStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p := &models.Project{}
	var parent sql.NullInt64
	err := s.q.QueryRowContext(ctx,
		"SELECT id, title, parent_id FROM projects WHERE id = ?", id,
	).Scan(&p.ID, &p.Title, &parent)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	p.ParentID = parent.Int64
	return p, nil
}

// ListProjects returns all projects ordered by id.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id, title, parent_id FROM projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		var parent sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Title, &parent); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.ParentID = parent.Int64
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return out, nil
}

// UpdateProject rewrites a project, rejecting reparenting that would
// introduce a cycle.
func (s *SQLiteStore) UpdateProject(ctx context.Context, p *models.Project) error {
	return s.InTx(ctx, func(txStore storage.Store) error {
		ts := txStore.(*SQLiteStore)

		if p.ParentID != 0 {
			if err := ts.checkProjectCycle(ctx, p.ID, p.ParentID); err != nil {
				return err
			}
		}

		var parent any
		if p.ParentID != 0 {
			parent = p.ParentID
		}
		res, err := ts.q.ExecContext(ctx,
			"UPDATE projects SET title = ?, parent_id = ? WHERE id = ?",
			p.Title, parent, p.ID)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check project update: %w", err)
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

// checkProjectCycle walks the parent chain from newParent, bounded by the
// node count, and fails if it reaches id.
func (s *SQLiteStore) checkProjectCycle(ctx context.Context, id, newParent int64) error {
	var total int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(1) FROM projects").Scan(&total); err != nil {
		return fmt.Errorf("failed to count projects: %w", err)
	}

	cur := newParent
	for i := 0; i <= total && cur != 0; i++ {
		if cur == id {
			return storage.ErrCycle
		}
		var parent sql.NullInt64
		err := s.q.QueryRowContext(ctx, "SELECT parent_id FROM projects WHERE id = ?", cur).Scan(&parent)
		if err == sql.ErrNoRows {
			return fmt.Errorf("project parent chain broken at %d: %w", cur, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to walk project parents: %w", err)
		}
		cur = parent.Int64
	}
	return nil
}

// CreateItem persists a new catalog item.
func (s *SQLiteStore) CreateItem(ctx context.Context, i *models.Item) error {
	res, err := s.q.ExecContext(ctx, "INSERT INTO items (title) VALUES (?)", i.Title)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	i.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read item id: %w", err)
	}
	return nil
}

// GetItem retrieves an item by ID.
func (s *SQLiteStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	i := &models.Item{}
	err := s.q.QueryRowContext(ctx, "SELECT id, title FROM items WHERE id = ?", id).Scan(&i.ID, &i.Title)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return i, nil
}

// ListItems returns all items ordered by id.
func (s *SQLiteStore) ListItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id, title FROM items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		var i models.Item
		if err := rows.Scan(&i.ID, &i.Title); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return out, nil
}

// CreateUnit persists a new unit.
func (s *SQLiteStore) CreateUnit(ctx context.Context, u *models.Unit) error {
	res, err := s.q.ExecContext(ctx, "INSERT INTO units (title) VALUES (?)", u.Title)
	if err != nil {
		return fmt.Errorf("failed to insert unit: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read unit id: %w", err)
	}
	return nil
}

// GetUnit retrieves a unit by ID.
func (s *SQLiteStore) GetUnit(ctx context.Context, id int64) (*models.Unit, error) {
	u := &models.Unit{}
	err := s.q.QueryRowContext(ctx, "SELECT id, title FROM units WHERE id = ?", id).Scan(&u.ID, &u.Title)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return u, nil
}

// ListUnits returns all units ordered by id.
func (s *SQLiteStore) ListUnits(ctx context.Context) ([]models.Unit, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id, title FROM units ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var out []models.Unit
	for rows.Next() {
		var u models.Unit
		if err := rows.Scan(&u.ID, &u.Title); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate units: %w", err)
	}
	return out, nil
}
