package db

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := Open("sqlite://"+filepath.Join(t.TempDir(), "test.db"), PoolConfig{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = Close(conn) })
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate database: %v", err)
	}
	return conn
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(openTestDB(t), false)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func date(month time.Month, day int) time.Time {
	return time.Date(2020, month, day, 12, 0, 0, 0, time.UTC)
}

func seedArchive(t *testing.T, store *Store, id int64, username, team string, created time.Time) {
	t.Helper()
	record := Archive{
		ID:       id,
		Content:  []byte(strconv.FormatInt(id, 10)),
		Username: username,
		Team:     team,
		Created:  created,
	}
	if err := store.DB(context.Background()).Create(&record).Error; err != nil {
		t.Fatalf("seed archive %d: %v", id, err)
	}
}

func seedChoice(t *testing.T, store *Store, archiveID int64, username string, created time.Time) int64 {
	t.Helper()
	record := ChoiceHistory{
		ArchiveID: archiveID,
		Username:  username,
		Created:   created,
	}
	if err := store.DB(context.Background()).Omit("Archive").Create(&record).Error; err != nil {
		t.Fatalf("seed choice for %d: %v", archiveID, err)
	}
	return record.ID
}

// seedTeams inserts the archives used across the store tests: one for ABC
// and two for SRZ2.
func seedTeams(t *testing.T, store *Store) {
	t.Helper()
	seedArchive(t, store, 8888888888, "someone_else", "ABC", date(time.August, 8))
	seedArchive(t, store, 2222222222, "a_colleague", "SRZ2", date(time.February, 2))
	seedArchive(t, store, 1111111111, "test_user", "SRZ2", date(time.January, 1))
}
