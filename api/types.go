package api

import (
	"context"

	"github.com/mgdrago/anitmated-to-do-list/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	List(ctx context.Context, f domain.Filter) ([]domain.Task, error)
	Create(ctx context.Context, in domain.TaskInput) (domain.Task, error)
	Get(ctx context.Context, id int64) (domain.Task, error)
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (domain.Task, error)
	Reorder(ctx context.Context, ids []int64) error
	SoftDelete(ctx context.Context, id int64) error
	Purge(ctx context.Context) (int64, error)
}
