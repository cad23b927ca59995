package report

import (
	"time"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/usecase/board"
)

// Source provides the committed board state.
type Source interface {
	Cards() []domain.Card
	Columns() []domain.Column
}

// UseCase serves reports over the live board.
type UseCase struct {
	source Source
	now    func() time.Time
}

func New(source Source) *UseCase {
	return &UseCase{source: source, now: time.Now}
}

// SetClock overrides the time source.
func (uc *UseCase) SetClock(now func() time.Time) {
	if now != nil {
		uc.now = now
	}
}

// Timeline returns the timeline of the project, or of all cards when
// projectID is empty.
func (uc *UseCase) Timeline(projectID string) []TimelineEntry {
	cards := uc.source.Cards()
	if projectID != "" {
		cards = board.ByProject(cards, projectID)
	}
	return ProjectTimeline(cards, uc.now())
}

func (uc *UseCase) Dashboard(projectID string) Dashboard {
	cards := uc.source.Cards()
	if projectID != "" {
		cards = board.ByProject(cards, projectID)
	}
	return BuildDashboard(cards, uc.source.Columns(), uc.now())
}
