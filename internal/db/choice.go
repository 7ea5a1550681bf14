package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ChoiceHistory is the append-only ledger of chosen archives. A team's
// current choice is its entry with the latest Created, ties going to the
// higher ID.
type ChoiceHistory struct {
	ID        int64     `gorm:"primaryKey"`
	ArchiveID int64     `gorm:"not null;index"`
	Archive   *Archive  `gorm:"foreignKey:ArchiveID"`
	Username  string    `gorm:"size:255;not null"`
	Created   time.Time `gorm:"not null;autoCreateTime;index"`
}

func (ChoiceHistory) TableName() string {
	return "choice_history"
}

// RecordChoice appends a ledger entry choosing archiveID. The archive must
// belong to team; otherwise ErrNotFound is returned and nothing is written.
func (s *Store) RecordChoice(ctx context.Context, archiveID int64, username, team string) (int64, error) {
	var choiceID int64
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Archive{}).
			Where("id = ? AND team = ?", archiveID, team).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		var err error
		choiceID, err = insertChoice(tx, archiveID, username)
		return err
	})
	return choiceID, err
}

func insertChoice(tx *gorm.DB, archiveID int64, username string) (int64, error) {
	record := ChoiceHistory{
		ArchiveID: archiveID,
		Username:  username,
	}
	if err := tx.Omit("Archive").Create(&record).Error; err != nil {
		return 0, fmt.Errorf("insert choice: %w", err)
	}
	return record.ID, nil
}

// LatestTeamChoice returns the ledger entry currently in force for team.
func (s *Store) LatestTeamChoice(ctx context.Context, team string) (ChoiceHistory, error) {
	var choice ChoiceHistory
	err := s.db.WithContext(ctx).
		Joins("JOIN archive ON archive.id = choice_history.archive_id").
		Where("archive.team = ?", team).
		Order("choice_history.created DESC").
		Order("choice_history.id DESC").
		Take(&choice).Error
	if err != nil {
		return ChoiceHistory{}, notFound(err)
	}
	return choice, nil
}
