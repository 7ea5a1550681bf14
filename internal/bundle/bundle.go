// Package bundle writes the ZIP-of-ZIPs handed to match runners: one member
// archive per team plus a summary of which archive each team chose.
package bundle

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"code-submitter/internal/db"
)

// SummaryName is the bundle entry holding the team to archive id listing.
const SummaryName = "summary.txt"

// EntryName is the bundle entry name for team's archive. Teams differing
// only in case share an entry name, which Write rejects.
func EntryName(team string) string {
	return strings.ToUpper(team) + ".zip"
}

// Write streams the bundle for submissions to w. Team entries are written in
// team order and followed by the summary. Nothing is written when two teams
// share an entry name.
func Write(w io.Writer, submissions map[string]db.Submission) error {
	return write(w, submissions, time.Now().UTC())
}

func write(w io.Writer, submissions map[string]db.Submission, modified time.Time) error {
	teams := make([]string, 0, len(submissions))
	for team := range submissions {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	owners := make(map[string]string, len(teams))
	for _, team := range teams {
		name := EntryName(team)
		if other, ok := owners[name]; ok {
			return fmt.Errorf("teams %q and %q both map to bundle entry %s", other, team, name)
		}
		owners[name] = team
	}

	zw := zip.NewWriter(w)
	for _, team := range teams {
		// Member archives are already compressed.
		if err := writeEntry(zw, EntryName(team), submissions[team].Content, zip.Store, modified); err != nil {
			return err
		}
	}
	if err := writeEntry(zw, SummaryName, []byte(db.Summarise(submissions)), zip.Deflate, modified); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish bundle: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, content []byte, method uint16, modified time.Time) error {
	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("create bundle entry %s: %w", name, err)
	}
	if _, err := entry.Write(content); err != nil {
		return fmt.Errorf("write bundle entry %s: %w", name, err)
	}
	return nil
}
