package project

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

// UseCase manages projects. Only admins may change them.
type UseCase struct {
	projects repository.ProjectRepository
	logger   *zap.Logger
}

func New(projects repository.ProjectRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{projects: projects, logger: logger}
}

func (uc *UseCase) ListProjects(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	if filter.Status != "" && !domain.ProjectStatus(filter.Status).Valid() {
		return nil, domain.Invalid("unknown project status")
	}
	projects, err := uc.projects.List(ctx, filter)
	if err != nil {
		return nil, domain.Unavailable("list projects", err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

func (uc *UseCase) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, id)
	if err != nil {
		return nil, classify("fetch project", err)
	}
	return project, nil
}

func (uc *UseCase) CreateProject(ctx context.Context, actor domain.Actor, project *domain.Project) (*domain.Project, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	created, err := uc.projects.Create(ctx, project)
	if err != nil {
		uc.logger.Error("create project failed", zap.String("name", project.Name), zap.Error(err))
		return nil, domain.Unavailable("create project", err)
	}
	uc.logger.Info("project created", zap.String("project_id", created.ID), zap.String("actor", actor.UserID))
	return created, nil
}

func (uc *UseCase) UpdateProject(ctx context.Context, actor domain.Actor, project *domain.Project) (*domain.Project, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	project.UpdatedAt = time.Now()
	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, classify("update project", err)
	}
	return project, nil
}

func (uc *UseCase) DeleteProject(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if err := uc.projects.Delete(ctx, id); err != nil {
		return classify("delete project", err)
	}
	uc.logger.Info("project deleted", zap.String("project_id", id), zap.String("actor", actor.UserID))
	return nil
}

func classify(op string, err error) error {
	if errors.Is(err, domain.ErrProjectNotFound) {
		return err
	}
	return domain.Unavailable(op, err)
}
