// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

//go:build integration

package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

// sendForm issues a form-encoded request against the API server,
// optionally carrying a session cookie, and decodes the JSON body.
func sendForm(method, path string, form url.Values, cookie *http.Cookie) (int, map[string]string, []*http.Cookie) {
	GinkgoHelper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(suiteCtx, method, apiServer.URL+path, body)
	Expect(err).NotTo(HaveOccurred())
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := apiServer.Client().Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	decoded := map[string]string{}
	Expect(json.NewDecoder(resp.Body).Decode(&decoded)).To(Succeed())
	return resp.StatusCode, decoded, resp.Cookies()
}

func register(email, password string) {
	GinkgoHelper()
	status, body, _ := sendForm(http.MethodPost, "/api/users", url.Values{
		"email":    {email},
		"password": {password},
	}, nil)
	Expect(status).To(Equal(http.StatusCreated))
	Expect(body["message"]).To(Equal("user created"))
}

func login(email, password string) *http.Cookie {
	GinkgoHelper()
	status, _, cookies := sendForm(http.MethodPost, "/api/auth_session/login", url.Values{
		"email":    {email},
		"password": {password},
	}, nil)
	Expect(status).To(Equal(http.StatusOK))
	for _, c := range cookies {
		if c.Name == cookieName {
			return c
		}
	}
	Fail("login response did not set the session cookie")
	return nil
}

var _ = Describe("Authentication flows", func() {
	Describe("Registration", func() {
		It("creates an account and rejects a duplicate email", func() {
			register("reg@example.com", "a decent password")

			status, body, _ := sendForm(http.MethodPost, "/api/users", url.Values{
				"email":    {"reg@example.com"},
				"password": {"a different password"},
			}, nil)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body["message"]).To(Equal("email already registered"))
		})

		It("rejects a request without a password", func() {
			status, body, _ := sendForm(http.MethodPost, "/api/users", url.Values{
				"email": {"nopass@example.com"},
			}, nil)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body["error"]).To(Equal("password missing"))
		})
	})

	Describe("Session lifecycle", func() {
		It("logs in, resolves the current user, and logs out", func() {
			register("session@example.com", "a decent password")
			cookie := login("session@example.com", "a decent password")

			status, body, _ := sendForm(http.MethodGet, "/api/users/me", nil, cookie)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body["email"]).To(Equal("session@example.com"))
			Expect(body["id"]).To(HaveLen(26), "user id should be a ULID")

			status, _, _ = sendForm(http.MethodDelete, "/api/auth_session/logout", nil, cookie)
			Expect(status).To(Equal(http.StatusOK))

			status, _, _ = sendForm(http.MethodGet, "/api/users/me", nil, cookie)
			Expect(status).To(Equal(http.StatusForbidden))
		})

		It("refuses a protected route without a session", func() {
			status, body, _ := sendForm(http.MethodGet, "/api/users/me", nil, nil)
			Expect(status).To(Equal(http.StatusForbidden))
			Expect(body["error"]).To(Equal("Forbidden"))
		})

		It("rejects login with a wrong password", func() {
			register("wrongpw@example.com", "the real password")

			status, body, _ := sendForm(http.MethodPost, "/api/auth_session/login", url.Values{
				"email":    {"wrongpw@example.com"},
				"password": {"not the password"},
			}, nil)
			Expect(status).To(Equal(http.StatusUnauthorized))
			Expect(body["error"]).To(Equal("wrong password"))
		})
	})

	Describe("Password reset", func() {
		It("rotates the password with a single-use token", func() {
			register("reset@example.com", "the old password")

			status, body, _ := sendForm(http.MethodPost, "/api/reset_password", url.Values{
				"email": {"reset@example.com"},
			}, nil)
			Expect(status).To(Equal(http.StatusOK))
			token := body["reset_token"]
			Expect(token).NotTo(BeEmpty())

			status, body, _ = sendForm(http.MethodPut, "/api/reset_password", url.Values{
				"email":        {"reset@example.com"},
				"reset_token":  {token},
				"new_password": {"the new password"},
			}, nil)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body["message"]).To(Equal("Password updated"))

			// Consumed token is dead
			status, _, _ = sendForm(http.MethodPut, "/api/reset_password", url.Values{
				"email":        {"reset@example.com"},
				"reset_token":  {token},
				"new_password": {"yet another password"},
			}, nil)
			Expect(status).To(Equal(http.StatusForbidden))

			login("reset@example.com", "the new password")
		})

		It("refuses to issue a token for an unknown email", func() {
			status, _, _ := sendForm(http.MethodPost, "/api/reset_password", url.Values{
				"email": {"unknown@example.com"},
			}, nil)
			Expect(status).To(Equal(http.StatusForbidden))
		})
	})
})
