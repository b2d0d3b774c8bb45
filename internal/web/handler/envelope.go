// Package handler holds the shared pieces of the web handlers: the JSON
// response envelope, route constants and the session user accessor.
package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/session"
)

// Response is the envelope every JSON endpoint answers with. Exactly one
// of Data and PageInfoData is set on success; ErrMessage is set on
// failure.
type Response struct {
	Success      bool        `json:"success"`
	Data         interface{} `json:"data,omitempty"`
	PageInfoData *PageInfo   `json:"pageInfoData,omitempty"`
	ErrMessage   string      `json:"errMessage,omitempty"`
}

// PageInfo carries one page of a paged result.
type PageInfo struct {
	List     interface{} `json:"list"`
	Total    int64       `json:"total"`
	PageNum  int         `json:"pageNum"`
	PageSize int         `json:"pageSize"`
}

// OK answers a successful request with a plain data payload.
func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(Response{Success: true, Data: data})
}

// OKPage answers a successful paged request.
func OKPage(c *fiber.Ctx, list interface{}, total int64, pageNum, pageSize int) error {
	return c.JSON(Response{
		Success: true,
		PageInfoData: &PageInfo{
			List:     list,
			Total:    total,
			PageNum:  pageNum,
			PageSize: pageSize,
		},
	})
}

// Fail answers a failed request. The envelope carries the message; the
// HTTP status stays meaningful for clients that only look at it.
func Fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Response{Success: false, ErrMessage: msg})
}

// SessionUser returns the authenticated user stored by the auth
// middleware, or nil when the request is unauthenticated.
func SessionUser(c *fiber.Ctx) *models.User {
	u, ok := c.Locals(LocalsUserKey).(*models.User)
	if !ok {
		return nil
	}

	return u
}

// StoreSessionUser places the authenticated user into fiber.Locals.
func StoreSessionUser(c *fiber.Ctx, u *models.User) {
	c.Locals(LocalsUserKey, u)
}

// ReadSession loads the session data behind the request's session
// cookie. Returns false when there is no valid session.
func ReadSession(c *fiber.Ctx) (*session.Data, bool) {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return nil, false
	}

	data := new(session.Data)
	if err := data.Read(sessionID); err != nil || data.User.ID == 0 {
		return nil, false
	}

	return data, true
}
