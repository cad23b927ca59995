package project

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

type memProjects struct {
	items map[string]domain.Project
	err   error
}

func (m *memProjects) GetByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return &p, nil
}

func (m *memProjects) List(_ context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Project
	for _, p := range m.items {
		if filter.Status == "" || string(p.Status) == filter.Status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjects) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	p.ID = "p-new"
	m.items[p.ID] = *p
	return p, nil
}

func (m *memProjects) Update(_ context.Context, p *domain.Project) error {
	if _, ok := m.items[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	m.items[p.ID] = *p
	return nil
}

func (m *memProjects) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(m.items, id)
	return nil
}

var (
	admin  = domain.Actor{UserID: "a", Role: domain.RoleAdmin}
	member = domain.Actor{UserID: "u", Role: domain.RoleUser}
)

func TestProjectMutationsRequireAdmin(t *testing.T) {
	uc := New(&memProjects{items: map[string]domain.Project{}}, nil)
	ctx := context.Background()

	_, err := uc.CreateProject(ctx, member, &domain.Project{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.UpdateProject(ctx, member, &domain.Project{ID: "p", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, uc.DeleteProject(ctx, member, "p"), domain.ErrForbidden)
}

func TestProjectLifecycle(t *testing.T) {
	repo := &memProjects{items: map[string]domain.Project{}}
	uc := New(repo, nil)
	ctx := context.Background()

	created, err := uc.CreateProject(ctx, admin, &domain.Project{Name: " Website "})
	require.NoError(t, err)
	assert.Equal(t, "Website", created.Name)
	assert.Equal(t, domain.ProjectPlanning, created.Status)

	created.Status = domain.ProjectInProgress
	created.Progress = 40
	_, err = uc.UpdateProject(ctx, admin, created)
	require.NoError(t, err)

	list, err := uc.ListProjects(ctx, repository.ProjectFilter{Status: "in-progress"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 40, list[0].Progress)

	require.NoError(t, uc.DeleteProject(ctx, admin, created.ID))
	assert.ErrorIs(t, uc.DeleteProject(ctx, admin, created.ID), domain.ErrProjectNotFound)
}

func TestProjectErrors(t *testing.T) {
	repo := &memProjects{items: map[string]domain.Project{}}
	uc := New(repo, nil)
	ctx := context.Background()

	_, err := uc.CreateProject(ctx, admin, &domain.Project{Name: "X", Progress: 140})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.ListProjects(ctx, repository.ProjectFilter{Status: "archived"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	repo.err = errors.New("db down")
	_, err = uc.ListProjects(ctx, repository.ProjectFilter{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))

	_, err = uc.GetProject(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}
