package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"code-submitter/internal/auth"
	"code-submitter/internal/config"
	"code-submitter/internal/db"
)

type Server struct {
	store     *db.Store
	validator auth.Validator
	cfg       config.Config
}

func New(store *db.Store, validator auth.Validator, cfg config.Config) *Server {
	registerValidators()
	return &Server{
		store:     store,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.MaxMultipartMemory = s.cfg.MaxUploadBytes
	router.Use(requestLogger(), gin.Recovery())

	router.GET("/health-check", s.handleHealthCheck)

	authed := router.Group("/", s.authenticate())
	{
		authed.GET("/", s.handleHome)
		authed.POST("/upload", requireTeam(uploadNeedsTeamMessage), s.handleUpload)
		authed.POST("/choose", requireTeam(chooseNeedsTeamMessage), s.handleChoose)
		authed.GET("/archive/:archive_id", requireTeam(downloadNeedsTeamMessage), s.handleArchive)
	}

	blueshirt := authed.Group("/", requireScope(auth.ScopeBlueshirt))
	{
		blueshirt.POST("/create-session", s.handleCreateSession)
		blueshirt.GET("/download-submissions", s.handleDownloadSubmissions)
		blueshirt.GET("/download-submissions/:session_id", s.handleDownloadSessionSubmissions)
	}
	return router
}

func (s *Server) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"server": "ok"})
}
