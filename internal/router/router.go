package router

import (
	"campus-vote/internal/config"
	"campus-vote/internal/handler"
	"campus-vote/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures Gin engine, templates and static resources.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// static files, uploaded avatars and templates
	r.Static("/static", "./web/static")
	r.Static("/uploads", cfg.Upload.Dir)
	r.LoadHTMLGlob("web/templates/*")

	RegisterRoutes(r, cfg, db)
	return r
}

// RegisterRoutes wires the full route table onto an engine. Split out from
// SetupRouter so tests can register routes on an engine with stub templates.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, db *gorm.DB) {
	authHandler := handler.NewAuthHandler(db, cfg.Session.Secret, cfg.Session.CookieName, cfg.Session.ExpireHours)
	r.GET("/", authHandler.Index)
	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// every page below needs a logged-in student; the student row is
	// re-loaded from the store on each request
	authed := r.Group("")
	authed.Use(middleware.RequireLogin(cfg.Session.Secret, cfg.Session.CookieName, db))

	voteHandler := handler.NewVoteHandler(db)
	authed.GET("/student_dashboard", voteHandler.StudentDashboard)
	authed.GET("/vote", voteHandler.VoteForm)
	authed.POST("/submit_vote", voteHandler.SubmitVote)
	authed.GET("/ballot_summary", voteHandler.BallotSummary)

	resultsHandler := handler.NewResultsHandler(db)
	authed.GET("/results", resultsHandler.Results)
	authed.GET("/live_vote_count", resultsHandler.LiveVoteCount)

	profileHandler := handler.NewProfileHandler(db, cfg.Security.BcryptCost)
	authed.GET("/student/profile", profileHandler.Profile)
	authed.POST("/student/change_password", profileHandler.ChangePassword)

	// admin-only pages
	admin := authed.Group("")
	admin.Use(middleware.RequireAdmin())

	adminHandler := handler.NewAdminHandler(db)
	admin.GET("/admin_dashboard", adminHandler.Dashboard)
	admin.GET("/manage_positions", adminHandler.ManagePositions)
	admin.POST("/manage_positions", adminHandler.ManagePositions)
	admin.GET("/manage_candidates", adminHandler.ManageCandidates)
	admin.POST("/manage_candidates", adminHandler.ManageCandidates)
	admin.GET("/election_settings", adminHandler.ElectionSettings)
	admin.POST("/election_settings", adminHandler.ElectionSettings)
	admin.GET("/audit_log", adminHandler.AuditLog)
	admin.GET("/admin/votes", adminHandler.Votes)
	admin.GET("/admin/delete_vote/:id", adminHandler.DeleteVoteForm)
	admin.POST("/admin/delete_vote/:id", adminHandler.DeleteVote)

	studentAdmin := handler.NewStudentAdminHandler(db, cfg.App.DefaultPassword, cfg.Security.BcryptCost, cfg.App.RegnoStart)
	admin.POST("/add_student", studentAdmin.Add)
	admin.POST("/edit_student/:regno", studentAdmin.Edit)
	admin.POST("/delete_student/:regno", studentAdmin.Delete)
	admin.POST("/reset_vote/:regno", studentAdmin.ResetVote)
	admin.POST("/admin/reset_password/:regno", studentAdmin.ResetPassword)

	avatarHandler := handler.NewAvatarHandler(db, cfg.Upload.Dir)
	admin.POST("/upload_avatar", avatarHandler.Upload)

	exportHandler := handler.NewExportHandler(db)
	admin.GET("/admin/export/votes.csv", exportHandler.VotesCSV)
	admin.GET("/admin/export/votes.xlsx", exportHandler.VotesXLSX)
	admin.GET("/admin/export/students.csv", exportHandler.StudentsCSV)
}
