package services

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/charstorm/toposphere/internal/common"
	"github.com/charstorm/toposphere/internal/dbx"
	"github.com/charstorm/toposphere/internal/server/models"
	"github.com/charstorm/toposphere/internal/server/repositories/notes"
	"github.com/charstorm/toposphere/internal/server/repositories/refreshtokens"
	"github.com/charstorm/toposphere/internal/server/repositories/todoitems"
	"github.com/charstorm/toposphere/internal/server/repositories/todolists"
	"github.com/charstorm/toposphere/internal/server/repositories/users"
)

// newTxDB returns a sqlmock-backed *sql.DB for services that only need
// Begin/Commit to succeed; the fake repositories never touch SQL.
func newTxDB() (*sql.DB, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}
	mock.MatchExpectationsInOrder(false)
	return db, mock, nil
}

type fakeUsersRepo struct {
	byID map[string]*models.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: make(map[string]*models.User)}
}

func (r *fakeUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	cp := *user
	r.byID[user.ID] = &cp
	return user, nil
}

func (r *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsersRepo) EmailTaken(_ context.Context, email string, excludeUserID string) (bool, error) {
	for id, u := range r.byID {
		if u.Email == email && id != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUsersRepo) UpdateProfile(_ context.Context, user *models.User) error {
	stored, ok := r.byID[user.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Email = user.Email
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	return nil
}

func (r *fakeUsersRepo) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	stored, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (r *fakeUsersRepo) Delete(_ context.Context, userID string) error {
	if _, ok := r.byID[userID]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, userID)
	return nil
}

type fakeRefreshRepo struct {
	byToken map[string]*models.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{byToken: make(map[string]*models.RefreshToken)}
}

func (r *fakeRefreshRepo) Create(_ context.Context, userID string, token string, validity time.Duration) error {
	r.byToken[token] = &models.RefreshToken{
		UserID:  userID,
		Token:   token,
		Expires: time.Now().Add(validity),
	}
	return nil
}

func (r *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	t, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.byToken[token]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byToken, token)
	return nil
}

func (r *fakeRefreshRepo) DeleteAllForUser(_ context.Context, userID string) error {
	for token, t := range r.byToken {
		if t.UserID == userID {
			delete(r.byToken, token)
		}
	}
	return nil
}

type fakeNotesRepo struct {
	byID map[string]*models.Note
}

func newFakeNotesRepo() *fakeNotesRepo {
	return &fakeNotesRepo{byID: make(map[string]*models.Note)}
}

func (r *fakeNotesRepo) owned(userID string) []*models.Note {
	var out []*models.Note
	for _, n := range r.byID {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *fakeNotesRepo) List(_ context.Context, userID string, search string, limit, offset int) ([]*models.Note, error) {
	out := r.owned(userID)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotesRepo) Count(_ context.Context, userID string, search string) (int, error) {
	return len(r.owned(userID)), nil
}

func (r *fakeNotesRepo) Get(_ context.Context, userID string, noteID string) (*models.Note, error) {
	n, ok := r.byID[noteID]
	if !ok || n.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotesRepo) Create(_ context.Context, note *models.Note) error {
	cp := *note
	r.byID[note.ID] = &cp
	return nil
}

func (r *fakeNotesRepo) Update(_ context.Context, userID string, note *models.Note) error {
	n, ok := r.byID[note.ID]
	if !ok || n.UserID != userID {
		return common.ErrorNotFound
	}
	cp := *note
	cp.UserID = n.UserID
	r.byID[note.ID] = &cp
	return nil
}

func (r *fakeNotesRepo) Delete(_ context.Context, userID string, noteID string) error {
	n, ok := r.byID[noteID]
	if !ok || n.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.byID, noteID)
	return nil
}

func (r *fakeNotesRepo) DeleteAllForUser(_ context.Context, userID string) error {
	for id, n := range r.byID {
		if n.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

type fakeTodoListsRepo struct {
	byID map[string]*models.TodoList
}

func newFakeTodoListsRepo() *fakeTodoListsRepo {
	return &fakeTodoListsRepo{byID: make(map[string]*models.TodoList)}
}

func (r *fakeTodoListsRepo) owned(userID string) []*models.TodoList {
	var out []*models.TodoList
	for _, l := range r.byID {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *fakeTodoListsRepo) List(_ context.Context, userID string, search string, limit, offset int) ([]*models.TodoList, error) {
	out := r.owned(userID)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTodoListsRepo) Count(_ context.Context, userID string, search string) (int, error) {
	return len(r.owned(userID)), nil
}

func (r *fakeTodoListsRepo) Get(_ context.Context, userID string, listID string) (*models.TodoList, error) {
	l, ok := r.byID[listID]
	if !ok || l.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeTodoListsRepo) Create(_ context.Context, list *models.TodoList) error {
	cp := *list
	r.byID[list.ID] = &cp
	return nil
}

func (r *fakeTodoListsRepo) Update(_ context.Context, userID string, list *models.TodoList) error {
	l, ok := r.byID[list.ID]
	if !ok || l.UserID != userID {
		return common.ErrorNotFound
	}
	cp := *list
	cp.UserID = l.UserID
	r.byID[list.ID] = &cp
	return nil
}

func (r *fakeTodoListsRepo) Delete(_ context.Context, userID string, listID string) error {
	l, ok := r.byID[listID]
	if !ok || l.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.byID, listID)
	return nil
}

func (r *fakeTodoListsRepo) DeleteAllForUser(_ context.Context, userID string) error {
	for id, l := range r.byID {
		if l.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

// fakeTodoItemsRepo resolves transitive ownership through the lists repo,
// the same way the SQL implementation joins todo_lists.
type fakeTodoItemsRepo struct {
	byID  map[string]*models.TodoItem
	lists *fakeTodoListsRepo
}

func newFakeTodoItemsRepo(lists *fakeTodoListsRepo) *fakeTodoItemsRepo {
	return &fakeTodoItemsRepo{byID: make(map[string]*models.TodoItem), lists: lists}
}

func (r *fakeTodoItemsRepo) listOwner(listID string) (string, bool) {
	l, ok := r.lists.byID[listID]
	if !ok {
		return "", false
	}
	return l.UserID, true
}

func sortItems(items []models.TodoItem) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}

func (r *fakeTodoItemsRepo) ListForList(_ context.Context, listID string) ([]models.TodoItem, error) {
	var out []models.TodoItem
	for _, item := range r.byID {
		if item.ListID == listID {
			out = append(out, *item)
		}
	}
	sortItems(out)
	return out, nil
}

func (r *fakeTodoItemsRepo) ListForUser(_ context.Context, userID string) ([]models.TodoItem, error) {
	var out []models.TodoItem
	for _, item := range r.byID {
		if owner, ok := r.listOwner(item.ListID); ok && owner == userID {
			out = append(out, *item)
		}
	}
	sortItems(out)
	return out, nil
}

func (r *fakeTodoItemsRepo) Get(_ context.Context, userID string, itemID string) (*models.TodoItem, error) {
	item, ok := r.byID[itemID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if owner, ok := r.listOwner(item.ListID); !ok || owner != userID {
		return nil, common.ErrorNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeTodoItemsRepo) Create(_ context.Context, item *models.TodoItem) error {
	cp := *item
	r.byID[item.ID] = &cp
	return nil
}

func (r *fakeTodoItemsRepo) Update(_ context.Context, userID string, item *models.TodoItem) error {
	stored, ok := r.byID[item.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if owner, ok := r.listOwner(stored.ListID); !ok || owner != userID {
		return common.ErrorNotFound
	}
	cp := *item
	cp.ListID = stored.ListID
	r.byID[item.ID] = &cp
	return nil
}

func (r *fakeTodoItemsRepo) Delete(_ context.Context, userID string, itemID string) error {
	stored, ok := r.byID[itemID]
	if !ok {
		return common.ErrorNotFound
	}
	if owner, ok := r.listOwner(stored.ListID); !ok || owner != userID {
		return common.ErrorNotFound
	}
	delete(r.byID, itemID)
	return nil
}

func (r *fakeTodoItemsRepo) DeleteAllForList(_ context.Context, listID string) error {
	for id, item := range r.byID {
		if item.ListID == listID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *fakeTodoItemsRepo) DeleteAllForUser(_ context.Context, userID string) error {
	for id, item := range r.byID {
		if owner, ok := r.listOwner(item.ListID); ok && owner == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

// fakeRepoManager hands out the same fakes for every DBTX, which makes
// "inside the transaction" and "outside" indistinguishable to the
// service under test.
type fakeRepoManager struct {
	users     *fakeUsersRepo
	refresh   *fakeRefreshRepo
	notes     *fakeNotesRepo
	todoLists *fakeTodoListsRepo
	todoItems *fakeTodoItemsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	lists := newFakeTodoListsRepo()
	return &fakeRepoManager{
		users:     newFakeUsersRepo(),
		refresh:   newFakeRefreshRepo(),
		notes:     newFakeNotesRepo(),
		todoLists: lists,
		todoItems: newFakeTodoItemsRepo(lists),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Notes(dbx.DBTX) notes.Repository                 { return m.notes }
func (m *fakeRepoManager) TodoLists(dbx.DBTX) todolists.Repository         { return m.todoLists }
func (m *fakeRepoManager) TodoItems(dbx.DBTX) todoitems.Repository         { return m.todoItems }
