package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Submission is a team's chosen archive.
type Submission struct {
	ArchiveID int64
	Content   []byte
}

// SubmissionInfo describes a team's chosen archive without its content.
type SubmissionInfo struct {
	Team      string
	ArchiveID int64
	ChosenAt  time.Time
}

type chosenRow struct {
	Team      string
	ArchiveID int64
	ChoiceID  int64
	ChosenAt  time.Time
}

// latestChoices picks each team's latest ledger entry, optionally limited to
// the entries bound to a session.
//
// Rows come back ordered by team then choice time ascending and are folded
// into a map, so a later entry for a team replaces an earlier one. Grouping
// in SQL is avoided because engines disagree on which row survives a GROUP BY.
func latestChoices(tx *gorm.DB, sessionID *int64) (map[string]chosenRow, error) {
	query := tx.Table("archive").
		Select("archive.team AS team, archive.id AS archive_id, choice_history.id AS choice_id, choice_history.created AS chosen_at").
		Joins("JOIN choice_history ON choice_history.archive_id = archive.id")
	if sessionID != nil {
		query = query.
			Joins("JOIN choice_for_session ON choice_for_session.choice_id = choice_history.id").
			Where("choice_for_session.session_id = ?", *sessionID)
	}

	var rows []chosenRow
	err := query.
		Order("archive.team").
		Order("choice_history.created ASC").
		Order("choice_history.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query choices: %w", err)
	}

	latest := make(map[string]chosenRow, len(rows))
	for _, row := range rows {
		latest[row.Team] = row
	}
	return latest, nil
}

// ChosenSubmissions maps each team to its chosen archive. With a session id
// only that session's bindings are considered. No choices yields an empty
// map.
func (s *Store) ChosenSubmissions(ctx context.Context, sessionID *int64) (map[string]Submission, error) {
	var result map[string]Submission
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = chosenSubmissions(tx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SessionSubmissions loads session id and its bound submissions in one
// transaction. An unknown id returns ErrNotFound.
func (s *Store) SessionSubmissions(ctx context.Context, id int64) (Session, map[string]Submission, error) {
	var (
		session Session
		result  map[string]Submission
	)
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&session).Error; err != nil {
			return notFound(err)
		}
		var err error
		result, err = chosenSubmissions(tx, &session.ID)
		return err
	})
	if err != nil {
		return Session{}, nil, err
	}
	return session, result, nil
}

func chosenSubmissions(tx *gorm.DB, sessionID *int64) (map[string]Submission, error) {
	result := make(map[string]Submission)
	latest, err := latestChoices(tx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return result, nil
	}

	ids := make([]int64, 0, len(latest))
	for _, row := range latest {
		ids = append(ids, row.ArchiveID)
	}
	var archives []Archive
	if err := tx.Select("id", "content").Where("id IN ?", ids).Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("load archives: %w", err)
	}
	content := make(map[int64][]byte, len(archives))
	for _, archive := range archives {
		content[archive.ID] = archive.Content
	}

	for team, row := range latest {
		result[team] = Submission{
			ArchiveID: row.ArchiveID,
			Content:   content[row.ArchiveID],
		}
	}
	return result, nil
}

// ChosenSubmissionsInfo lists each team's chosen archive sorted by team.
func (s *Store) ChosenSubmissionsInfo(ctx context.Context, sessionID *int64) ([]SubmissionInfo, error) {
	latest, err := latestChoices(s.db.WithContext(ctx), sessionID)
	if err != nil {
		return nil, err
	}
	infos := make([]SubmissionInfo, 0, len(latest))
	for team, row := range latest {
		infos = append(infos, SubmissionInfo{
			Team:      team,
			ArchiveID: row.ArchiveID,
			ChosenAt:  row.ChosenAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Team < infos[j].Team
	})
	return infos, nil
}

// Summarise renders one "TEAM: archive_id" line per team, sorted by team.
func Summarise(submissions map[string]Submission) string {
	teams := make([]string, 0, len(submissions))
	for team := range submissions {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	var b strings.Builder
	for _, team := range teams {
		fmt.Fprintf(&b, "%s: %d\n", team, submissions[team].ArchiveID)
	}
	return b.String()
}
