package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Session is a named snapshot of every team's chosen archive at the moment
// it was created.
type Session struct {
	ID       int64     `gorm:"primaryKey"`
	Name     string    `gorm:"size:255;not null;uniqueIndex"`
	Username string    `gorm:"size:255;not null"`
	Created  time.Time `gorm:"not null;autoCreateTime"`
}

func (Session) TableName() string {
	return "session"
}

// ChoiceForSession binds a ledger entry to a session.
type ChoiceForSession struct {
	ChoiceID  int64          `gorm:"primaryKey;autoIncrement:false"`
	Choice    *ChoiceHistory `gorm:"foreignKey:ChoiceID"`
	SessionID int64          `gorm:"primaryKey;autoIncrement:false;index"`
	Session   *Session       `gorm:"foreignKey:SessionID"`
}

func (ChoiceForSession) TableName() string {
	return "choice_for_session"
}

// CreateSession records a new session together with each team's current
// choice. The session row and its memberships commit or fail together.
func (s *Store) CreateSession(ctx context.Context, name, username string) (int64, error) {
	var sessionID int64
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		latest, err := latestChoices(tx, nil)
		if err != nil {
			return err
		}

		record := Session{
			Name:     name,
			Username: username,
		}
		if err := tx.Create(&record).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("session %q: %w", name, ErrDuplicate)
			}
			return fmt.Errorf("insert session: %w", err)
		}
		sessionID = record.ID

		teams := make([]string, 0, len(latest))
		for team := range latest {
			teams = append(teams, team)
		}
		sort.Strings(teams)

		if len(teams) == 0 {
			return nil
		}
		members := make([]ChoiceForSession, 0, len(teams))
		for _, team := range teams {
			members = append(members, ChoiceForSession{
				ChoiceID:  latest[team].ChoiceID,
				SessionID: sessionID,
			})
		}
		if err := tx.Omit("Choice", "Session").Create(&members).Error; err != nil {
			return fmt.Errorf("insert session choices: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sessionID, nil
}

func (s *Store) GetSession(ctx context.Context, id int64) (Session, error) {
	var session Session
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&session).Error; err != nil {
		return Session{}, notFound(err)
	}
	return session, nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	err := s.db.WithContext(ctx).
		Order("created DESC").
		Order("id DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionChoiceIDs returns the ledger entry ids bound to session id.
func (s *Store) SessionChoiceIDs(ctx context.Context, id int64) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&ChoiceForSession{}).
		Where("session_id = ?", id).
		Order("choice_id").
		Pluck("choice_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
