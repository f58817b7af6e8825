package document

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNew_PopulatesIdentityAndTimestamps(t *testing.T) {
	doc := New("Notes", "/tmp/notes.md", "# Notes\n")

	require.Equal(t, int64(0), doc.ID)
	require.Equal(t, "Notes", doc.Title)
	require.Equal(t, "/tmp/notes.md", doc.Path)
	require.Equal(t, "# Notes\n", doc.Body)
	require.False(t, doc.CreatedAt.IsZero())
	require.Equal(t, doc.CreatedAt, doc.UpdatedAt)

	_, err := uuid.Parse(doc.GUID)
	require.NoError(t, err, "GUID should be a valid uuid")
}

func TestNew_GUIDsAreUnique(t *testing.T) {
	first := New("a", "", "")
	second := New("b", "", "")
	require.NotEqual(t, first.GUID, second.GUID)
}

func TestRevisionSource_Valid(t *testing.T) {
	require.True(t, SourceManual.Valid())
	require.True(t, SourceAssist.Valid())
	require.False(t, RevisionSource("firebase").Valid())
	require.False(t, RevisionSource("").Valid())
}

func TestNotFoundError_Message(t *testing.T) {
	byGUID := &NotFoundError{GUID: "abc"}
	require.Equal(t, "document abc not found", byGUID.Error())

	byPath := &NotFoundError{Path: "/tmp/x.md"}
	require.Equal(t, `document not found for path "/tmp/x.md"`, byPath.Error())
}
