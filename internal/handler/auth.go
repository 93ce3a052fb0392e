package handler

import (
	"net/http"
	"strings"
	"time"

	"campus-vote/internal/models"
	"campus-vote/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves login, logout and the role-based root redirect.
type AuthHandler struct {
	DB         *gorm.DB
	Secret     string
	CookieName string
	TokenTTL   time.Duration
}

func NewAuthHandler(db *gorm.DB, secret, cookieName string, ttlHours int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		DB:         db,
		Secret:     secret,
		CookieName: cookieName,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
	}
}

// Index redirects to the dashboard matching the session's role, or to the
// login page when there is no usable session.
func (h *AuthHandler) Index(c *gin.Context) {
	tokenStr, err := c.Cookie(h.CookieName)
	if err != nil || tokenStr == "" {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	claims, err := util.ParseSession(h.Secret, tokenStr)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var student models.Student
	if err := h.DB.Where("regno = ?", claims.Regno).First(&student).Error; err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if student.IsAdmin() {
		c.Redirect(http.StatusFound, "/admin_dashboard")
	} else {
		c.Redirect(http.StatusFound, "/student_dashboard")
	}
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Campus Vote - Login",
		"flash": util.PopFlash(c),
	})
}

// Login checks the submitted credentials and establishes the session cookie.
// Every failure path shows the same generic message, so a missing regno is
// indistinguishable from a wrong password.
func (h *AuthHandler) Login(c *gin.Context) {
	regno := strings.TrimSpace(c.PostForm("regno"))
	password := c.PostForm("password")

	var student models.Student
	err := h.DB.Where("regno = ?", regno).First(&student).Error
	if err != nil || !util.CheckPassword(password, student.PasswordHash) {
		util.SetFlash(c, "Invalid registration number or password")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	token, err := util.GenerateSession(h.Secret, student.Regno, h.TokenTTL)
	if err != nil {
		util.SetFlash(c, "Login failed, please try again.")
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.SetCookie(h.CookieName, token, int(h.TokenTTL.Seconds()), "/", "", false, true)

	if student.IsAdmin() {
		c.Redirect(http.StatusFound, "/admin_dashboard")
	} else {
		c.Redirect(http.StatusFound, "/student_dashboard")
	}
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}
