package handler_test

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"campus-vote/internal/config"
	"campus-vote/internal/database"
	"campus-vote/internal/models"
	"campus-vote/internal/router"
	"campus-vote/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// page templates are stubbed out: these tests assert on redirects, cookies
// and database state, not rendered markup.
var pageNames = []string{
	"login.html", "student_dashboard.html", "vote.html", "ballot_summary.html",
	"results.html", "live_vote_count.html", "admin_dashboard.html",
	"manage_positions.html", "manage_candidates.html", "election_settings.html",
	"audit_log.html", "admin_votes.html", "delete_vote.html", "profile.html",
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Session:  config.SessionConfig{Secret: "test-secret", CookieName: "cv_session", ExpireHours: 1},
		Security: config.SecurityConfig{BcryptCost: 4},
		Upload:   config.UploadConfig{Dir: t.TempDir()},
		App:      config.AppSubConfig{DefaultPassword: "voter123", RegnoStart: 1001},
	}
}

// newTestApp builds a routed engine over a freshly seeded database.
func newTestApp(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig(t)

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db, cfg); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := gin.New()
	tpl := template.New("pages")
	for _, name := range pageNames {
		template.Must(tpl.New(name).Parse("ok"))
	}
	r.SetHTMLTemplate(tpl)
	router.RegisterRoutes(r, cfg, db)

	return r, db
}

func doGet(t *testing.T, r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doPost(t *testing.T, r *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// login authenticates and returns the cookies to attach to later requests.
func login(t *testing.T, r *gin.Engine, regno, password string) []*http.Cookie {
	t.Helper()
	w := doPost(t, r, "/login", url.Values{"regno": {regno}, "password": {password}}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("login status = %d, want 302", w.Code)
	}
	cookies := w.Result().Cookies()
	for _, c := range cookies {
		if c.Name == "cv_session" && c.Value != "" {
			return cookies
		}
	}
	t.Fatalf("login for %s set no session cookie (redirected to %s)", regno, w.Header().Get("Location"))
	return nil
}

func flashCookie(w *httptest.ResponseRecorder) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == "cv_flash" {
			return c.Value
		}
	}
	return ""
}

func TestLoginRedirectsByStoredRole(t *testing.T) {
	r, _ := newTestApp(t)

	w := doPost(t, r, "/login", url.Values{"regno": {"admin"}, "password": {"admin"}}, nil)
	if loc := w.Header().Get("Location"); loc != "/admin_dashboard" {
		t.Errorf("admin login redirect = %q, want /admin_dashboard", loc)
	}

	w = doPost(t, r, "/login", url.Values{"regno": {"S1001"}, "password": {"alice123"}}, nil)
	if loc := w.Header().Get("Location"); loc != "/student_dashboard" {
		t.Errorf("student login redirect = %q, want /student_dashboard", loc)
	}
}

func TestLoginFailureIsGeneric(t *testing.T) {
	r, _ := newTestApp(t)

	wrongPassword := doPost(t, r, "/login", url.Values{"regno": {"S1001"}, "password": {"nope"}}, nil)
	unknownRegno := doPost(t, r, "/login", url.Values{"regno": {"S9999"}, "password": {"nope"}}, nil)

	for name, w := range map[string]*httptest.ResponseRecorder{
		"wrong password": wrongPassword,
		"unknown regno":  unknownRegno,
	} {
		if loc := w.Header().Get("Location"); loc != "/login" {
			t.Errorf("%s: redirect = %q, want /login", name, loc)
		}
	}

	a, b := flashCookie(wrongPassword), flashCookie(unknownRegno)
	if a == "" || a != b {
		t.Errorf("failure notices differ: %q vs %q, want identical generic message", a, b)
	}
}

func TestUnauthenticatedRequestsRedirectToLogin(t *testing.T) {
	r, _ := newTestApp(t)

	for _, path := range []string{"/student_dashboard", "/vote", "/results", "/admin_dashboard"} {
		w := doGet(t, r, path, nil)
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
			t.Errorf("GET %s = %d -> %q, want 302 -> /login", path, w.Code, w.Header().Get("Location"))
		}
	}
}

func TestAdminPagesRejectStudents(t *testing.T) {
	r, _ := newTestApp(t)
	cookies := login(t, r, "S1001", "alice123")

	w := doGet(t, r, "/admin_dashboard", cookies)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("student on admin page = %d -> %q, want 302 -> /login", w.Code, w.Header().Get("Location"))
	}
}

func TestSubmitVoteRecordsBallotsAndFlag(t *testing.T) {
	r, db := newTestApp(t)
	cookies := login(t, r, "S1001", "alice123")

	w := doPost(t, r, "/submit_vote",
		url.Values{"position_1": {"1"}, "position_2": {"3"}}, cookies)
	if loc := w.Header().Get("Location"); loc != "/ballot_summary" {
		t.Fatalf("submit redirect = %q, want /ballot_summary", loc)
	}

	var student models.Student
	if err := db.First(&student, "regno = ?", "S1001").Error; err != nil {
		t.Fatalf("load student: %v", err)
	}
	if !student.Voted {
		t.Error("voted flag not set after submission")
	}

	var count int64
	db.Model(&models.Ballot{}).Where("student_regno = ?", "S1001").Count(&count)
	if count != 2 {
		t.Errorf("ballots = %d, want 2 (one per position)", count)
	}

	var perPosition int64
	db.Model(&models.Ballot{}).Where("student_regno = ? AND position_id = ?", "S1001", 1).Count(&perPosition)
	if perPosition != 1 {
		t.Errorf("ballots for position 1 = %d, want exactly 1", perPosition)
	}

	var audits int64
	db.Model(&models.AuditEntry{}).Where("action = ? AND user = ?", "Vote Cast", "S1001").Count(&audits)
	if audits != 1 {
		t.Errorf("vote cast audit entries = %d, want 1", audits)
	}
}

func TestSubmitVoteTwiceCreatesNoDuplicates(t *testing.T) {
	r, db := newTestApp(t)
	cookies := login(t, r, "S1001", "alice123")

	doPost(t, r, "/submit_vote", url.Values{"position_1": {"1"}}, cookies)

	// resubmission must fail cleanly instead of inflating the tally
	w := doPost(t, r, "/submit_vote", url.Values{"position_1": {"2"}}, cookies)
	if loc := w.Header().Get("Location"); loc != "/ballot_summary" {
		t.Errorf("second submit redirect = %q, want /ballot_summary", loc)
	}

	var count int64
	db.Model(&models.Ballot{}).Where("student_regno = ?", "S1001").Count(&count)
	if count != 1 {
		t.Errorf("ballots after double submit = %d, want 1", count)
	}
	var forJane int64
	db.Model(&models.Ballot{}).Where("student_regno = ? AND candidate_id = ?", "S1001", 2).Count(&forJane)
	if forJane != 0 {
		t.Errorf("second submission recorded %d ballots, want 0", forJane)
	}
}

func TestSubmitVoteRejectsMismatchedCandidate(t *testing.T) {
	r, db := newTestApp(t)
	cookies := login(t, r, "S1001", "alice123")

	// candidate 3 (Emily Davis) runs for Secretary, not President
	w := doPost(t, r, "/submit_vote", url.Values{"position_1": {"3"}}, cookies)
	if loc := w.Header().Get("Location"); loc != "/vote" {
		t.Errorf("mismatched submit redirect = %q, want /vote", loc)
	}

	var count int64
	db.Model(&models.Ballot{}).Count(&count)
	if count != 0 {
		t.Errorf("ballots = %d, want 0 after rejected submission", count)
	}
	var student models.Student
	db.First(&student, "regno = ?", "S1001")
	if student.Voted {
		t.Error("voted flag set even though the submission was rejected")
	}
}

func TestVoteFormRedirectsAfterVoting(t *testing.T) {
	r, db := newTestApp(t)
	cookies := login(t, r, "S1001", "alice123")

	db.Model(&models.Student{}).Where("regno = ?", "S1001").Update("voted", true)

	w := doGet(t, r, "/vote", cookies)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/ballot_summary" {
		t.Errorf("GET /vote after voting = %d -> %q, want 302 -> /ballot_summary",
			w.Code, w.Header().Get("Location"))
	}
}

func TestDeleteVoteRequiresRemark(t *testing.T) {
	r, db := newTestApp(t)
	cookies := login(t, r, "admin", "admin")

	ballot := models.Ballot{StudentRegno: "S1001", PositionID: 1, CandidateID: 1}
	if err := db.Create(&ballot).Error; err != nil {
		t.Fatalf("create ballot: %v", err)
	}

	w := doPost(t, r, "/admin/delete_vote/1", url.Values{"remark": {"   "}}, cookies)
	if loc := w.Header().Get("Location"); loc != "/admin/delete_vote/1" {
		t.Errorf("redirect without remark = %q, want /admin/delete_vote/1", loc)
	}
	var count int64
	db.Model(&models.Ballot{}).Count(&count)
	if count != 1 {
		t.Fatalf("ballot deleted without a remark")
	}

	doPost(t, r, "/admin/delete_vote/1", url.Values{"remark": {"duplicate submission"}}, cookies)
	db.Model(&models.Ballot{}).Count(&count)
	if count != 0 {
		t.Errorf("ballots = %d after remarked delete, want 0", count)
	}
	var audits int64
	db.Model(&models.AuditEntry{}).Where("action = ?", "Delete Vote").Count(&audits)
	if audits != 1 {
		t.Errorf("delete vote audit entries = %d, want 1", audits)
	}
}

func TestDeleteVoteUnknownID(t *testing.T) {
	r, _ := newTestApp(t)
	cookies := login(t, r, "admin", "admin")

	w := doPost(t, r, "/admin/delete_vote/999", url.Values{"remark": {"x"}}, cookies)
	if loc := w.Header().Get("Location"); loc != "/admin_dashboard" {
		t.Errorf("unknown vote redirect = %q, want /admin_dashboard", loc)
	}
}

func TestResetVoteClearsBallotsAndFlag(t *testing.T) {
	r, db := newTestApp(t)

	studentCookies := login(t, r, "S1001", "alice123")
	doPost(t, r, "/submit_vote", url.Values{"position_1": {"1"}, "position_2": {"3"}}, studentCookies)

	adminCookies := login(t, r, "admin", "admin")

	// remark is mandatory for a reset as well
	doPost(t, r, "/reset_vote/S1001", nil, adminCookies)
	var count int64
	db.Model(&models.Ballot{}).Where("student_regno = ?", "S1001").Count(&count)
	if count != 2 {
		t.Fatalf("ballots removed without a remark")
	}

	doPost(t, r, "/reset_vote/S1001", url.Values{"remark": {"student request"}}, adminCookies)
	db.Model(&models.Ballot{}).Where("student_regno = ?", "S1001").Count(&count)
	if count != 0 {
		t.Errorf("ballots after reset = %d, want 0", count)
	}
	var student models.Student
	db.First(&student, "regno = ?", "S1001")
	if student.Voted {
		t.Error("voted flag still set after reset")
	}
}

func TestAddStudentGeneratesRegnoAndDefaultPassword(t *testing.T) {
	r, db := newTestApp(t)
	cookies := login(t, r, "admin", "admin")

	doPost(t, r, "/add_student",
		url.Values{"name": {"New Kid"}, "course": {"IT"}, "batch": {"2023"}}, cookies)

	var student models.Student
	if err := db.First(&student, "regno = ?", "IT2023_1001").Error; err != nil {
		t.Fatalf("generated student not found: %v", err)
	}
	if !util.CheckPassword("voter123", student.PasswordHash) {
		t.Error("new student's password is not the default one")
	}
	if student.Role != models.RoleStudent {
		t.Errorf("new student role = %q, want student", student.Role)
	}

	doPost(t, r, "/add_student",
		url.Values{"name": {"Next Kid"}, "course": {"IT"}, "batch": {"2023"}}, cookies)
	if err := db.First(&models.Student{}, "regno = ?", "IT2023_1002").Error; err != nil {
		t.Errorf("second generated regno not IT2023_1002: %v", err)
	}
}

func TestChangePasswordVerifiesOldPassword(t *testing.T) {
	r, db := newTestApp(t)
	cookies := login(t, r, "S1001", "alice123")

	doPost(t, r, "/student/change_password",
		url.Values{"old_password": {"wrong"}, "new_password": {"newpass1"}}, cookies)
	var student models.Student
	db.First(&student, "regno = ?", "S1001")
	if util.CheckPassword("newpass1", student.PasswordHash) {
		t.Fatal("password changed despite wrong old password")
	}

	doPost(t, r, "/student/change_password",
		url.Values{"old_password": {"alice123"}, "new_password": {"newpass1"}}, cookies)
	db.First(&student, "regno = ?", "S1001")
	if !util.CheckPassword("newpass1", student.PasswordHash) {
		t.Error("password not changed with correct old password")
	}
}
