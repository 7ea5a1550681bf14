package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"

	"code-submitter/internal/auth"
	"code-submitter/internal/bundle"
	"code-submitter/internal/db"
	"code-submitter/internal/web"
)

const zipContentType = "application/zip"

type archiveURI struct {
	ArchiveID int64 `uri:"archive_id" binding:"required"`
}

type sessionURI struct {
	SessionID int64 `uri:"session_id" binding:"required"`
}

type chooseRequest struct {
	ArchiveID int64 `form:"archive_id" binding:"required,gt=0"`
}

type createSessionRequest struct {
	Name string `form:"name" binding:"required,session_name"`
}

func (s *Server) handleHome(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)
	data := web.HomeData{
		Username:    user.Username,
		Team:        user.Team,
		IsBlueshirt: currentScopes(c).Has(auth.ScopeBlueshirt),
	}

	if user.HasTeam() {
		chosen, err := s.store.LatestTeamChoice(ctx, user.Team)
		switch {
		case err == nil:
			data.Chosen = &chosen
		case !errors.Is(err, db.ErrNotFound):
			s.internalError(c, "load chosen archive", err)
			return
		}
	}

	uploads, err := s.store.ListUploads(ctx, user.Username, user.Team)
	if err != nil {
		s.internalError(c, "list uploads", err)
		return
	}
	data.Uploads = uploads

	if data.IsBlueshirt {
		if data.Submissions, err = s.store.ChosenSubmissionsInfo(ctx, nil); err != nil {
			s.internalError(c, "list chosen submissions", err)
			return
		}
		if data.Sessions, err = s.store.ListSessions(ctx); err != nil {
			s.internalError(c, "list sessions", err)
			return
		}
	}

	templ.Handler(web.Home(data)).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) handleUpload(c *gin.Context) {
	user := currentUser(c)
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	header, err := c.FormFile("archive")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload must be at most %d bytes", tooLarge.Limit))
			return
		}
		c.String(http.StatusBadRequest, "Must upload a file")
		return
	}

	if err := checkContentType(header.Header.Get("Content-Type")); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	file, err := header.Open()
	if err != nil {
		c.String(http.StatusBadRequest, "Must upload a file")
		return
	}
	content, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		c.String(http.StatusBadRequest, "Must upload a file")
		return
	}

	if err := validateArchive(content, s.cfg.RequiredFilesInArchive); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	choose := c.PostForm("choose") != ""
	archiveID, err := s.store.UploadArchive(c.Request.Context(), content, user.Username, user.Team, choose)
	if err != nil {
		s.internalError(c, "store upload", err)
		return
	}
	slog.Info("archive uploaded",
		"request_id", requestID(c),
		"archive_id", archiveID,
		"username", user.Username,
		"team", user.Team,
		"bytes", len(content),
		"chosen", choose,
	)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) handleChoose(c *gin.Context) {
	user := currentUser(c)
	var req chooseRequest
	if !bindForm(c, &req, bindMessages{
		"ArchiveID": {
			"required": "Must choose an archive",
			"gt":       "Must choose an archive",
		},
	}, "Must choose an archive") {
		return
	}

	choiceID, err := s.store.RecordChoice(c.Request.Context(), req.ArchiveID, user.Username, user.Team)
	if errors.Is(err, db.ErrNotFound) {
		c.String(http.StatusNotFound, fmt.Sprintf("%d is not a valid archive id", req.ArchiveID))
		return
	}
	if err != nil {
		s.internalError(c, "record choice", err)
		return
	}
	slog.Info("archive chosen",
		"request_id", requestID(c),
		"choice_id", choiceID,
		"archive_id", req.ArchiveID,
		"username", user.Username,
		"team", user.Team,
	)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) handleArchive(c *gin.Context) {
	var uri archiveURI
	if !bindURI(c, &uri) {
		return
	}
	content, err := s.store.GetArchive(c.Request.Context(), uri.ArchiveID, currentUser(c).Team)
	if errors.Is(err, db.ErrNotFound) {
		c.String(http.StatusNotFound, fmt.Sprintf("%d is not a valid archive id", uri.ArchiveID))
		return
	}
	if err != nil {
		s.internalError(c, "load archive", err)
		return
	}
	sendZip(c, fmt.Sprintf("upload-%d.zip", uri.ArchiveID), content)
}

func (s *Server) handleCreateSession(c *gin.Context) {
	user := currentUser(c)
	var req createSessionRequest
	if !bindForm(c, &req, bindMessages{
		"Name": {
			"required":     "Must provide a session name",
			"session_name": "Session name must be at most 255 characters without slashes, quotes or control characters",
		},
	}, "") {
		return
	}

	name := strings.TrimSpace(req.Name)
	sessionID, err := s.store.CreateSession(c.Request.Context(), name, user.Username)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			slog.Error("session name already in use",
				"request_id", requestID(c),
				"name", name,
				"username", user.Username,
			)
		}
		s.internalError(c, "create session", err)
		return
	}
	slog.Info("session created",
		"request_id", requestID(c),
		"session_id", sessionID,
		"name", name,
		"username", user.Username,
	)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) handleDownloadSubmissions(c *gin.Context) {
	submissions, err := s.store.ChosenSubmissions(c.Request.Context(), nil)
	if err != nil {
		s.internalError(c, "load chosen submissions", err)
		return
	}
	filename := "submissions-" + time.Now().UTC().Format("20060102T150405Z") + ".zip"
	s.sendBundle(c, filename, submissions)
}

func (s *Server) handleDownloadSessionSubmissions(c *gin.Context) {
	var uri sessionURI
	if !bindURI(c, &uri) {
		return
	}
	session, submissions, err := s.store.SessionSubmissions(c.Request.Context(), uri.SessionID)
	if errors.Is(err, db.ErrNotFound) {
		c.String(http.StatusNotFound, fmt.Sprintf("%d is not a valid session id", uri.SessionID))
		return
	}
	if err != nil {
		s.internalError(c, "load session submissions", err)
		return
	}
	s.sendBundle(c, "submissions-"+session.Name+".zip", submissions)
}

func (s *Server) sendBundle(c *gin.Context, filename string, submissions map[string]db.Submission) {
	var buf bytes.Buffer
	if err := bundle.Write(&buf, submissions); err != nil {
		s.internalError(c, "build bundle", err)
		return
	}
	sendZip(c, filename, buf.Bytes())
}

func sendZip(c *gin.Context, filename string, content []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, zipContentType, content)
}

func (s *Server) internalError(c *gin.Context, action string, err error) {
	slog.Error("request failed",
		"request_id", requestID(c),
		"action", action,
		"error", err,
	)
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
