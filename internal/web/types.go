package web

import "code-submitter/internal/db"

// HomeData is everything the home page shows to the signed-in user.
type HomeData struct {
	Username    string
	Team        string
	IsBlueshirt bool

	// Chosen is the team's current choice, nil when the team has not chosen.
	Chosen  *db.ChoiceHistory
	Uploads []db.Archive

	// Blueshirt only.
	Submissions []db.SubmissionInfo
	Sessions    []db.Session
}
