package middleware

import (
	"net/http"
	"time"

	"campus-vote/internal/models"
	"campus-vote/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CurrentStudentKey is the context key holding the authenticated *models.Student.
const CurrentStudentKey = "currentStudent"

// RequireLogin verifies the session cookie and loads the student row into the
// request context. The cookie only identifies the regno; role and voted state
// always come from the freshly loaded row.
func RequireLogin(secret, cookieName string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(cookieName)
		if err != nil || tokenStr == "" {
			util.SetFlash(c, "Please log in.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		claims, err := util.ParseSession(secret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.SetFlash(c, "Session expired, please log in again.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		var student models.Student
		if err := db.Where("regno = ?", claims.Regno).First(&student).Error; err != nil {
			util.SetFlash(c, "Please log in.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(CurrentStudentKey, &student)
		c.Next()
	}
}

// RequireAdmin aborts with a notice unless the loaded student has the admin
// role. Must run after RequireLogin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		student := CurrentStudent(c)
		if student == nil || !student.IsAdmin() {
			util.SetFlash(c, "Admin access required.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentStudent returns the student loaded by RequireLogin, or nil.
func CurrentStudent(c *gin.Context) *models.Student {
	v, ok := c.Get(CurrentStudentKey)
	if !ok {
		return nil
	}
	student, ok := v.(*models.Student)
	if !ok {
		return nil
	}
	return student
}
