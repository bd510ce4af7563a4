package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fairuzullah/edu_lms/database"
	"github.com/fairuzullah/edu_lms/handlers"
	"github.com/fairuzullah/edu_lms/models"
	"github.com/fairuzullah/edu_lms/routes"
	"github.com/fairuzullah/edu_lms/storage"
	ws "github.com/fairuzullah/edu_lms/websocket"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "lms.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := storage.New(t.TempDir(), "http://localhost:8080")
	hub := ws.NewHub()
	go hub.Run()

	h := handlers.New(db, store, hub)

	app := fiber.New()
	routes.AuthRoutes(app, h)
	routes.ProfileRoutes(app, h)
	routes.CourseRoutes(app, h)
	routes.MaterialRoutes(app, h)
	routes.AssessmentRoutes(app, h)
	routes.SubmissionRoutes(app, h)
	routes.ClassRoutes(app, h)
	routes.UploadRoutes(app, h)

	return app, db
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 && raw[0] == '{' {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func doRequestList(t *testing.T, app *fiber.App, method, path, token string) (*http.Response, []map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var out []map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

// register creates an account through the API and returns its token.
func register(t *testing.T, app *fiber.App, email, role string) string {
	t.Helper()

	resp, body := doRequest(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"email":     email,
		"password":  "Password@123",
		"full_name": "Test " + role,
		"role":      role,
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register %s: status %d, body %v", email, resp.StatusCode, body)
	}

	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in response", email)
	}
	return token
}

// registerAdmin seeds an admin row directly; admin accounts cannot be
// self-registered through the API.
func registerAdmin(t *testing.T, app *fiber.App, db *gorm.DB, email string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Password@123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{Email: email, PasswordHash: string(hash), FullName: "Test admin", Role: models.RoleAdmin}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	resp, body := doRequest(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":    email,
		"password": "Password@123",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("admin login: status %d, body %v", resp.StatusCode, body)
	}
	return body["token"].(string)
}

// createCourse provisions a published course owned by the token's educator
// and returns its id as it appears in paths.
func createCourse(t *testing.T, app *fiber.App, token, title string) string {
	t.Helper()

	resp, body := doRequest(t, app, "POST", "/api/courses", token, fiber.Map{
		"title":       title,
		"description": "test course",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create course: status %d, body %v", resp.StatusCode, body)
	}
	id := jsonID(t, body, "course")

	resp, body = doRequest(t, app, "PUT", "/api/courses/"+id, token, fiber.Map{"is_published": true})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("publish course: status %d, body %v", resp.StatusCode, body)
	}
	return id
}

func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}

func jsonID(t *testing.T, body map[string]interface{}, key string) string {
	t.Helper()

	obj, ok := body[key].(map[string]interface{})
	if !ok {
		t.Fatalf("no %q object in response %v", key, body)
	}
	id, ok := obj["id"].(float64)
	if !ok {
		t.Fatalf("no id in %q object %v", key, obj)
	}
	return fmt.Sprintf("%d", int(id))
}
