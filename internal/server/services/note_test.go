package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charstorm/toposphere/internal/common"
	"github.com/charstorm/toposphere/internal/server/models"
)

func newNoteServiceForTest(t *testing.T) (*NoteService, *fakeRepoManager) {
	t.Helper()
	db, _, err := newTxDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := newFakeRepoManager()
	return NewNoteService(db, m), m
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestNoteService_Create(t *testing.T) {
	s, m := newNoteServiceForTest(t)
	ctx := context.Background()

	note, err := s.Create(ctx, "u1", NoteInput{Title: strptr("groceries"), Content: strptr("milk")})
	require.NoError(t, err)

	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "u1", note.UserID)
	assert.Equal(t, "groceries", note.Title)
	assert.Equal(t, "milk", note.Content)
	assert.False(t, note.CreatedAt.IsZero())
	assert.Equal(t, note.CreatedAt, note.UpdatedAt)

	stored, err := m.notes.Get(ctx, "u1", note.ID)
	require.NoError(t, err)
	assert.Equal(t, "groceries", stored.Title)
}

func TestNoteService_Create_ContentOptional(t *testing.T) {
	s, _ := newNoteServiceForTest(t)

	note, err := s.Create(context.Background(), "u1", NoteInput{Title: strptr("bare")})
	require.NoError(t, err)
	assert.Equal(t, "", note.Content)
}

func TestNoteService_Create_Validation(t *testing.T) {
	s, _ := newNoteServiceForTest(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   NoteInput
	}{
		{"missing title", NoteInput{Content: strptr("x")}},
		{"blank title", NoteInput{Title: strptr("   ")}},
		{"title over 200 characters", NoteInput{Title: strptr(strings.Repeat("a", 201))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, "u1", tt.in)
			var ve *common.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, "title")
		})
	}
}

func TestNoteService_Create_TitleLengthInRunes(t *testing.T) {
	s, _ := newNoteServiceForTest(t)
	ctx := context.Background()

	// 200 two-byte runes stay within the 200-character column limit
	note, err := s.Create(ctx, "u1", NoteInput{Title: strptr(strings.Repeat("é", 200))})
	require.NoError(t, err)
	assert.Equal(t, 200, len([]rune(note.Title)))

	_, err = s.Create(ctx, "u1", NoteInput{Title: strptr(strings.Repeat("é", 201))})
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "title")
}

func TestNoteService_Get_CrossTenant(t *testing.T) {
	s, m := newNoteServiceForTest(t)
	ctx := context.Background()
	require.NoError(t, m.notes.Create(ctx, &models.Note{ID: "n1", UserID: "u1", Title: "secret"}))

	note, err := s.Get(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, "secret", note.Title)

	// another tenant cannot tell this note apart from a missing one
	_, err = s.Get(ctx, "u2", "n1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestNoteService_Update(t *testing.T) {
	s, m := newNoteServiceForTest(t)
	ctx := context.Background()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, m.notes.Create(ctx, &models.Note{
		ID: "n1", UserID: "u1", Title: "old", Content: "body",
		CreatedAt: created, UpdatedAt: created,
	}))

	// PUT without content resets it
	note, err := s.Update(ctx, "u1", "n1", NoteInput{Title: strptr("new")}, false)
	require.NoError(t, err)
	assert.Equal(t, "new", note.Title)
	assert.Equal(t, "", note.Content)
	assert.True(t, note.UpdatedAt.After(created))
	assert.Equal(t, created, note.CreatedAt)

	// PATCH with only content keeps the title
	note, err = s.Update(ctx, "u1", "n1", NoteInput{Content: strptr("restored")}, true)
	require.NoError(t, err)
	assert.Equal(t, "new", note.Title)
	assert.Equal(t, "restored", note.Content)
}

func TestNoteService_Update_CrossTenant(t *testing.T) {
	s, m := newNoteServiceForTest(t)
	ctx := context.Background()
	require.NoError(t, m.notes.Create(ctx, &models.Note{ID: "n1", UserID: "u1", Title: "t"}))

	_, err := s.Update(ctx, "u2", "n1", NoteInput{Title: strptr("hijack")}, false)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	stored, err := m.notes.Get(ctx, "u1", "n1")
	require.NoError(t, err)
	assert.Equal(t, "t", stored.Title)
}

func TestNoteService_Delete(t *testing.T) {
	s, m := newNoteServiceForTest(t)
	ctx := context.Background()
	require.NoError(t, m.notes.Create(ctx, &models.Note{ID: "n1", UserID: "u1"}))

	require.NoError(t, s.Delete(ctx, "u1", "n1"))

	// repeated delete is NotFound, not a silent no-op
	assert.ErrorIs(t, s.Delete(ctx, "u1", "n1"), common.ErrorNotFound)
}

func TestNoteService_List(t *testing.T) {
	s, m := newNoteServiceForTest(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, m.notes.Create(ctx, &models.Note{
			ID: id, UserID: "u1", Title: id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, m.notes.Create(ctx, &models.Note{ID: "x1", UserID: "u2", Title: "foreign"}))

	notes, count, err := s.List(ctx, "u1", "", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, notes, 2)
	// newest first
	assert.Equal(t, "n3", notes[0].ID)
	assert.Equal(t, "n2", notes[1].ID)

	notes, count, err = s.List(ctx, "u1", "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.Len(t, notes, 1)
	assert.Equal(t, "n1", notes[0].ID)
}
