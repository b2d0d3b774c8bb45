package web

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler/login"
)

// AuthMiddleware gates every route behind a valid session. Static files
// and the login page stay open; JSON endpoints answer 401 in the
// envelope, pages redirect to the login form.
func AuthMiddleware(c *fiber.Ctx) error {
	originalURL := strings.ToLower(c.OriginalURL())

	if strings.HasPrefix(originalURL, "/static") || strings.HasPrefix(originalURL, "/checkalive") {
		return c.Next()
	}

	isLoginPage := IsLoginPage(c)

	data, ok := handler.ReadSession(c)
	if !ok {
		if isLoginPage {
			return c.Next()
		}

		if strings.HasPrefix(originalURL, handler.APIPrefix) {
			return handler.Fail(c, fiber.StatusUnauthorized, "Session expired, please login again")
		}

		return c.Redirect(login.Path)
	}

	if isLoginPage {
		return c.Redirect("/console")
	}

	handler.StoreSessionUser(c, &data.User)

	return c.Next()
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())
	return strings.HasPrefix(originalURL, login.Path)
}
