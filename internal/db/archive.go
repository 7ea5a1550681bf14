package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Archive is an uploaded ZIP. Rows are never updated or deleted.
type Archive struct {
	ID       int64     `gorm:"primaryKey"`
	Content  []byte    `gorm:"not null"`
	Username string    `gorm:"size:255;not null;index"`
	Team     string    `gorm:"size:255;not null;index"`
	Created  time.Time `gorm:"not null;autoCreateTime"`
}

func (Archive) TableName() string {
	return "archive"
}

// InsertArchive stores content uploaded by username on behalf of team.
func (s *Store) InsertArchive(ctx context.Context, content []byte, username, team string) (int64, error) {
	var id int64
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		id, err = insertArchive(tx, content, username, team)
		return err
	})
	return id, err
}

// UploadArchive inserts an archive and, when choose is set, records it as
// the team's chosen archive in the same transaction.
func (s *Store) UploadArchive(ctx context.Context, content []byte, username, team string, choose bool) (int64, error) {
	var archiveID int64
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		archiveID, err = insertArchive(tx, content, username, team)
		if err != nil {
			return err
		}
		if !choose {
			return nil
		}
		_, err = insertChoice(tx, archiveID, username)
		return err
	})
	return archiveID, err
}

func insertArchive(tx *gorm.DB, content []byte, username, team string) (int64, error) {
	if content == nil {
		content = []byte{}
	}
	record := Archive{
		Content:  content,
		Username: username,
		Team:     team,
	}
	if err := tx.Create(&record).Error; err != nil {
		return 0, fmt.Errorf("insert archive: %w", err)
	}
	return record.ID, nil
}

// GetArchive returns the content of archive id provided it belongs to team.
func (s *Store) GetArchive(ctx context.Context, id int64, team string) ([]byte, error) {
	var record Archive
	err := s.db.WithContext(ctx).
		Select("content").
		Where("id = ? AND team = ?", id, team).
		Take(&record).Error
	if err != nil {
		return nil, notFound(err)
	}
	return record.Content, nil
}

// ListUploads returns the archives uploaded by username or by anyone in
// team, newest first. Content is not loaded.
func (s *Store) ListUploads(ctx context.Context, username, team string) ([]Archive, error) {
	var uploads []Archive
	query := s.db.WithContext(ctx).Select("id", "username", "team", "created")
	if team != "" {
		query = query.Where("username = ? OR team = ?", username, team)
	} else {
		query = query.Where("username = ?", username)
	}
	if err := query.Order("created DESC").Order("id DESC").Find(&uploads).Error; err != nil {
		return nil, err
	}
	return uploads, nil
}
