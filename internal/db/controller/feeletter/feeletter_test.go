package feeletter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	require.NoError(t, db.AutoMigrate(&models.FeeLetter{}))

	return db
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	letter, err := Create(db, "fees-2026.pdf", "Q3 fee letter", "Alice Wong")
	require.NoError(t, err)
	assert.NotZero(t, letter.LetterID)
	assert.Equal(t, "Q3 fee letter", letter.Comment)
	assert.NotEmpty(t, letter.S3ObjectID)

	// comment falls back to the file name
	letter, err = Create(db, "fees-2025.pdf", "  ", "Alice Wong")
	require.NoError(t, err)
	assert.Equal(t, "fees-2025.pdf", letter.Comment)

	_, err = Create(db, "", "note", "Alice Wong")
	assert.ErrorIs(t, err, ErrFileNameEmpty)
}

func TestCreate_ObjectIDsUnique(t *testing.T) {
	db := setupTestDB(t)

	a, err := Create(db, "a.pdf", "", "Alice Wong")
	require.NoError(t, err)

	b, err := Create(db, "b.pdf", "", "Alice Wong")
	require.NoError(t, err)

	assert.NotEqual(t, a.S3ObjectID, b.S3ObjectID)
}

func TestQuery(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 3; i++ {
		_, err := Create(db, fmt.Sprintf("fees-%d.pdf", i), fmt.Sprintf("Quarterly letter %d", i), "Alice Wong")
		require.NoError(t, err)
	}

	_, err := Create(db, "other.pdf", "Ad hoc note", "Bob Chan")
	require.NoError(t, err)

	list, total, err := Query(db, QueryParams{Comment: "quarterly"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, "fees-2.pdf", list[0].FileName, "newest first")

	list, total, err = Query(db, QueryParams{UploadUserName: "Bob Chan"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "other.pdf", list[0].FileName)

	list, _, err = Query(db, QueryParams{Comment: "quarterly", PageNum: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "fees-0.pdf", list[0].FileName)
}

func TestRemove(t *testing.T) {
	db := setupTestDB(t)

	letter, err := Create(db, "fees.pdf", "", "Alice Wong")
	require.NoError(t, err)

	removed, err := Remove(db, letter.LetterID)
	require.NoError(t, err)
	assert.Equal(t, letter.S3ObjectID, removed.S3ObjectID,
		"removed record is returned so the payload can be cleaned up")

	_, err = Get(db, letter.LetterID)
	assert.ErrorIs(t, err, ErrLetterNotFound)

	_, err = Remove(db, letter.LetterID)
	assert.ErrorIs(t, err, ErrLetterNotFound)
}
