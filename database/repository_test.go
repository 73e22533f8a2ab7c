package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/models"
	"roster/storage"
)

func recordFixture(name, secret string) models.Record {
	return models.NewRecord(name, secret)
}

func TestRecordRepository_AddAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	bob := recordFixture("Bob", "pw1")
	sue := recordFixture("Sue", "pw2")

	bobID, err := repo.AddRecord(ctx, bob)
	require.NoError(t, err)
	sueID, err := repo.AddRecord(ctx, sue)
	require.NoError(t, err)

	assert.NotZero(t, bobID)
	assert.Greater(t, sueID, bobID)
	assert.True(t, bob.IsTransient(), "AddRecord must not mutate its argument")

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Record{
		{ID: bobID, Name: "Bob", Secret: "pw1"},
		{ID: sueID, Name: "Sue", Secret: "pw2"},
	}, records)
}

func TestRecordRepository_ListEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)

	records, err := repo.ListRecords(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestRecordRepository_ListIsStable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Bob", "Sue", "Ann"} {
		_, err := repo.AddRecord(ctx, recordFixture(name, "pw"))
		require.NoError(t, err)
	}

	first, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	second, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecordRepository_GetRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	id, err := repo.AddRecord(ctx, recordFixture("Bob", "pw1"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      int
		want    models.Record
		wantErr error
	}{
		{name: "Existing record", id: id, want: models.Record{ID: id, Name: "Bob", Secret: "pw1"}},
		{name: "Unassigned id", id: models.UnassignedID, wantErr: storage.ErrRecordNotFound},
		{name: "Unknown id", id: id + 100, wantErr: storage.ErrRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetRecord(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordRepository_UpdateRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	id, err := repo.AddRecord(ctx, recordFixture("Bob", "pw1"))
	require.NoError(t, err)

	n, err := repo.UpdateRecord(ctx, models.Record{ID: id, Name: "Robert", Secret: "pw9"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Robert", got.Name)

	n, err = repo.UpdateRecord(ctx, models.Record{ID: id + 100, Name: "Nobody", Secret: "x"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecordRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	bobID, err := repo.AddRecord(ctx, recordFixture("Bob", "pw1"))
	require.NoError(t, err)
	_, err = repo.AddRecord(ctx, recordFixture("Sue", "pw2"))
	require.NoError(t, err)

	n, err := repo.DeleteRecord(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.DeleteRecord(ctx, bobID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordRepository_ClosedConnection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()
	db.Close()

	_, err := repo.AddRecord(ctx, recordFixture("Bob", "pw1"))
	assert.ErrorIs(t, err, storage.ErrConnectionUnavailable)

	_, err = repo.GetRecord(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrConnectionUnavailable)

	_, err = repo.ListRecords(ctx)
	assert.ErrorIs(t, err, storage.ErrConnectionUnavailable)

	_, err = repo.UpdateRecord(ctx, models.Record{ID: 1, Name: "Bob", Secret: "pw"})
	assert.ErrorIs(t, err, storage.ErrConnectionUnavailable)

	_, err = repo.DeleteRecord(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrConnectionUnavailable)

	_, err = repo.DeleteAll(ctx)
	assert.ErrorIs(t, err, storage.ErrConnectionUnavailable)
}

func TestRecordRepository_QueryFailed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()

	conn, err := db.Handle()
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, "DROP TABLE people")
	require.NoError(t, err)

	_, err = repo.ListRecords(ctx)
	assert.ErrorIs(t, err, storage.ErrQueryFailed)

	_, err = repo.AddRecord(ctx, recordFixture("Bob", "pw1"))
	assert.ErrorIs(t, err, storage.ErrQueryFailed)

	_, err = repo.GetRecord(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrQueryFailed)
	assert.NotErrorIs(t, err, storage.ErrRecordNotFound)
}
