package services

import (
	"context"
	"database/sql"

	"github.com/charstorm/toposphere/internal/dbx"
	"github.com/charstorm/toposphere/internal/server/models"
	"github.com/charstorm/toposphere/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TodoService is the lifecycle controller for todo lists and their items.
// List operations are scoped directly to the requesting user; item
// operations are scoped transitively through the parent list's owner.
type TodoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewTodoService constructs a TodoService over the shared repositories.
func NewTodoService(db *sql.DB, m repomanager.RepositoryManager) *TodoService {
	return &TodoService{db: db, repomanager: m}
}

// ListLists returns the user's todo lists newest-first with their items
// attached, plus the total count before pagination.
func (s *TodoService) ListLists(ctx context.Context, userID string, search string, limit, offset int) ([]*models.TodoList, int, error) {
	listRepo := s.repomanager.TodoLists(s.db)
	count, err := listRepo.Count(ctx, userID, search)
	if err != nil {
		return nil, 0, err
	}
	lists, err := listRepo.List(ctx, userID, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	items, err := s.repomanager.TodoItems(s.db).ListForUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	byList := make(map[string][]models.TodoItem, len(lists))
	for _, item := range items {
		byList[item.ListID] = append(byList[item.ListID], item)
	}
	for _, list := range lists {
		list.Items = byList[list.ID]
		if list.Items == nil {
			list.Items = []models.TodoItem{}
		}
	}
	return lists, count, nil
}

// CreateList validates the input and stores a new empty list owned by
// userID.
func (s *TodoService) CreateList(ctx context.Context, userID string, in TodoListInput) (*models.TodoList, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	now := timeNow().UTC()
	list := &models.TodoList{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       *in.Title,
		Description: stringOrEmpty(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       []models.TodoItem{},
	}
	if err := s.repomanager.TodoLists(s.db).Create(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetList returns one list with its items, or NotFound when it is absent
// or foreign.
func (s *TodoService) GetList(ctx context.Context, userID string, listID string) (*models.TodoList, error) {
	list, err := s.repomanager.TodoLists(s.db).Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	items, err := s.repomanager.TodoItems(s.db).ListForList(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.TodoItem{}
	}
	list.Items = items
	return list, nil
}

// UpdateList applies a full (PUT) or partial (PATCH) update to a list.
// A full update resets an omitted description to empty.
func (s *TodoService) UpdateList(ctx context.Context, userID string, listID string, in TodoListInput, partial bool) (*models.TodoList, error) {
	if err := in.Validate(partial); err != nil {
		return nil, err
	}

	list, err := s.GetList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		list.Title = *in.Title
	}
	if partial {
		if in.Description != nil {
			list.Description = *in.Description
		}
	} else {
		list.Description = stringOrEmpty(in.Description)
	}
	list.UpdatedAt = timeNow().UTC()

	if err := s.repomanager.TodoLists(s.db).Update(ctx, userID, list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteList removes a list and all of its items in one transaction, so
// no orphan item can ever be observed. A foreign or absent list is
// NotFound before anything is touched.
func (s *TodoService) DeleteList(ctx context.Context, userID string, listID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.TodoLists(tx).Get(ctx, userID, listID); err != nil {
			return err
		}
		if err := s.repomanager.TodoItems(tx).DeleteAllForList(ctx, listID); err != nil {
			return err
		}
		return s.repomanager.TodoLists(tx).Delete(ctx, userID, listID)
	})
}

// ListItems returns the items of one list newest-first. The parent list
// is resolved under the requester's scope first: a foreign list is
// NotFound even when its items exist.
func (s *TodoService) ListItems(ctx context.Context, userID string, listID string) ([]models.TodoItem, error) {
	list, err := s.repomanager.TodoLists(s.db).Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	items, err := s.repomanager.TodoItems(s.db).ListForList(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.TodoItem{}
	}
	return items, nil
}

// CreateItem validates the input and stores a new item under the given
// list. The parent is resolved under the requester's scope; the item may
// be created already completed, in which case completed_at is stamped.
func (s *TodoService) CreateItem(ctx context.Context, userID string, listID string, in TodoItemInput) (*models.TodoItem, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	list, err := s.repomanager.TodoLists(s.db).Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	now := timeNow().UTC()
	item := &models.TodoItem{
		ID:          uuid.NewString(),
		ListID:      list.ID,
		Title:       *in.Title,
		Description: stringOrEmpty(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsCompleted != nil && *in.IsCompleted {
		item.IsCompleted = true
		item.CompletedAt = &now
	}
	if err := s.repomanager.TodoItems(s.db).Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem returns one item, or NotFound when the item is absent or its
// parent list belongs to another user.
func (s *TodoService) GetItem(ctx context.Context, userID string, itemID string) (*models.TodoItem, error) {
	return s.repomanager.TodoItems(s.db).Get(ctx, userID, itemID)
}

// UpdateItem applies a full (PUT) or partial (PATCH) update to an item,
// enforcing the completion invariant: completed_at is non-null exactly
// when is_completed is true. The incomplete→complete transition stamps
// the current time, complete→incomplete clears it, and a no-change
// update leaves the original stamp untouched.
func (s *TodoService) UpdateItem(ctx context.Context, userID string, itemID string, in TodoItemInput, partial bool) (*models.TodoItem, error) {
	if err := in.Validate(partial); err != nil {
		return nil, err
	}

	itemRepo := s.repomanager.TodoItems(s.db)
	item, err := itemRepo.Get(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		item.Title = *in.Title
	}
	if partial {
		if in.Description != nil {
			item.Description = *in.Description
		}
	} else {
		item.Description = stringOrEmpty(in.Description)
	}

	wasCompleted := item.IsCompleted
	nowCompleted := wasCompleted
	if in.IsCompleted != nil {
		nowCompleted = *in.IsCompleted
	} else if !partial {
		nowCompleted = false
	}

	now := timeNow().UTC()
	switch {
	case nowCompleted && !wasCompleted:
		item.IsCompleted = true
		item.CompletedAt = &now
	case !nowCompleted && wasCompleted:
		item.IsCompleted = false
		item.CompletedAt = nil
	}
	item.UpdatedAt = now

	if err := itemRepo.Update(ctx, userID, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes one item under the transitive ownership scope.
func (s *TodoService) DeleteItem(ctx context.Context, userID string, itemID string) error {
	return s.repomanager.TodoItems(s.db).Delete(ctx, userID, itemID)
}
