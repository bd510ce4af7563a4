package handlers_test

import (
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRegisterAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doRequest(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"email":     "amina@example.com",
		"password":  "Secret@123",
		"full_name": "Amina Yusuf",
		"role":      "educator",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register: status %d, body %v", resp.StatusCode, body)
	}
	if body["token"] == "" || body["token"] == nil {
		t.Fatal("register should issue a token")
	}
	user := body["user"].(map[string]interface{})
	if user["role"] != "educator" {
		t.Fatalf("role = %v, want educator", user["role"])
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("password must never appear in responses")
	}

	resp, body = doRequest(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "amina@example.com",
		"password": "Secret@123",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login: status %d, body %v", resp.StatusCode, body)
	}
	if body["token"] == "" || body["token"] == nil {
		t.Fatal("login should issue a token")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "dup@example.com", "learner")

	resp, body := doRequest(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"email":     "dup@example.com",
		"password":  "Another@123",
		"full_name": "Second Account",
	})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("duplicate email: status %d, body %v", resp.StatusCode, body)
	}
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newTestApp(t)

	cases := []fiber.Map{
		{"email": "not-an-email", "password": "Secret@123", "full_name": "X"},
		{"email": "short@example.com", "password": "short", "full_name": "X"},
		{"email": "norole@example.com", "password": "Secret@123", "full_name": "X", "role": "admin"},
		{"email": "noname@example.com", "password": "Secret@123"},
	}
	for _, payload := range cases {
		resp, _ := doRequest(t, app, "POST", "/api/auth/register", "", payload)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("payload %v: status %d, want 400", payload, resp.StatusCode)
		}
	}
}

func TestRegisterDefaultsToLearner(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doRequest(t, app, "POST", "/api/auth/register", "", fiber.Map{
		"email":     "plain@example.com",
		"password":  "Secret@123",
		"full_name": "Plain User",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register: status %d, body %v", resp.StatusCode, body)
	}
	user := body["user"].(map[string]interface{})
	if user["role"] != "learner" {
		t.Fatalf("role = %v, want learner", user["role"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "victim@example.com", "learner")

	resp, body := doRequest(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "victim@example.com",
		"password": "WrongPassword1",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("wrong password: status %d, body %v", resp.StatusCode, body)
	}

	resp, body = doRequest(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":    "ghost@example.com",
		"password": "WrongPassword1",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("unknown email: status %d, body %v", resp.StatusCode, body)
	}
}

func TestLoginWrongPortal(t *testing.T) {
	app, _ := newTestApp(t)
	register(t, app, "teach@example.com", "educator")

	resp, body := doRequest(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email":          "teach@example.com",
		"password":       "Password@123",
		"requested_role": "learner",
	})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("wrong portal: status %d, body %v", resp.StatusCode, body)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "registered as educator") {
		t.Fatalf("unexpected error message: %q", msg)
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doRequest(t, app, "GET", "/api/profile", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("missing token: status %d, want 401", resp.StatusCode)
	}

	resp, _ = doRequest(t, app, "GET", "/api/profile", "not-a-token", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("garbage token: status %d, want 401", resp.StatusCode)
	}
}
