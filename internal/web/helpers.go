package web

import (
	"strconv"
	"time"
)

func formatID(value int64) string {
	return strconv.FormatInt(value, 10)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02 15:04:05")
}

func archiveURL(id int64) string {
	return "/archive/" + formatID(id)
}

func sessionDownloadURL(id int64) string {
	return "/download-submissions/" + formatID(id)
}
