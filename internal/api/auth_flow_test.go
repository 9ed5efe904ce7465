package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRegisterLoginAndChangePassword(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)

	response, body := requestJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    "anna@example.com",
		"password": "correct-horse-battery",
	})
	if response.StatusCode != fiber.StatusCreated {
		t.Fatalf("register status = %d, body %s", response.StatusCode, string(body))
	}
	registered := struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}{}
	decodeJSON(t, body, &registered)
	if registered.Role != "patient" {
		t.Fatalf("registered role = %q, want patient", registered.Role)
	}
	authCookie := authCookieFrom(t, response)

	response, _ = requestJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "anna@example.com",
		"password": "wrong-password",
	})
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("login with wrong password status = %d, want 401", response.StatusCode)
	}

	response, _ = requestJSON(t, app, http.MethodPost, "/api/auth/change-password", authCookie, fiber.Map{
		"currentPassword": "wrong-password",
		"newPassword":     "another-long-password",
	})
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("change password with wrong current status = %d, want 401", response.StatusCode)
	}

	response, _ = requestJSON(t, app, http.MethodPost, "/api/auth/change-password", authCookie, fiber.Map{
		"currentPassword": "correct-horse-battery",
		"newPassword":     "another-long-password",
	})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("change password status = %d, want 200", response.StatusCode)
	}

	response, _ = requestJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "anna@example.com",
		"password": "correct-horse-battery",
	})
	if response.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("login with retired password status = %d, want 401", response.StatusCode)
	}

	response, _ = requestJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "anna@example.com",
		"password": "another-long-password",
	})
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("login with new password status = %d, want 200", response.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)
	registerPatient(t, app, "taken@example.com")

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{name: "duplicate email", email: "taken@example.com", password: "correct-horse-battery", wantStatus: fiber.StatusConflict},
		{name: "duplicate email different case", email: "Taken@Example.com", password: "correct-horse-battery", wantStatus: fiber.StatusConflict},
		{name: "invalid email", email: "not-an-email", password: "correct-horse-battery", wantStatus: fiber.StatusBadRequest},
		{name: "short password", email: "new@example.com", password: "short", wantStatus: fiber.StatusBadRequest},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			response, body := requestJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
				"email":    test.email,
				"password": test.password,
			})
			if response.StatusCode != test.wantStatus {
				t.Fatalf("register status = %d, want %d, body %s", response.StatusCode, test.wantStatus, string(body))
			}
		})
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/measurements"},
		{http.MethodPost, "/api/measurements"},
		{http.MethodPatch, "/api/measurements/some-id"},
		{http.MethodDelete, "/api/measurements/some-id"},
		{http.MethodPost, "/api/measurements/some-id/outlier"},
		{http.MethodGet, "/api/stats/compliance"},
	}

	for _, route := range paths {
		response, _ := requestJSON(t, app, route.method, route.path, "", nil)
		if response.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("%s %s status = %d, want 401", route.method, route.path, response.StatusCode)
		}
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t)
	authCookie := registerPatient(t, app, "leaving@example.com")

	response, _ := requestJSON(t, app, http.MethodPost, "/api/auth/logout", authCookie, nil)
	if response.StatusCode != fiber.StatusOK {
		t.Fatalf("logout status = %d, want 200", response.StatusCode)
	}

	cleared := false
	for _, cookie := range response.Cookies() {
		if cookie.Name == authCookieName && cookie.Value == "" {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout did not clear the auth cookie")
	}
}
