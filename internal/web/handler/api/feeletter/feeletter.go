// Package feeletter serves the fee letter endpoints under
// /api/groupCompany/feeLetter: paged queries, multipart uploads,
// downloads and removal.
package feeletter

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/config"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/controller/feeletter"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/policy"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/storage"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler"
)

// Path is the route group prefix of the fee letter endpoints.
const Path = "/api/groupCompany/feeLetter"

// Service is the fee letter handler service.
type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	store *storage.LetterStore
}

// Handler is the fee letter handler.
var Handler = Service{}

// Init initializes the fee letter handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, store *storage.LetterStore) error {
	if app == nil || cfg == nil || db == nil || store == nil {
		return errors.New("app, cfg, db or store is nil")
	}

	s.cfg = cfg
	s.db = db
	s.store = store

	app.Route(Path, func(router fiber.Router) {
		router.Post("/queryFeeLetterByCondition", s.Query)
		router.Post("/uploadFeeLetter", s.Upload)
		router.Get("/downloadFileByLetterId", s.Download)
		router.Delete("/removeByLetterId", s.Remove)
	})

	return nil
}

type queryRequest struct {
	Comment        string `json:"comment"`
	UploadUserName string `json:"uploadUserName"`
	PageNum        int    `json:"pageNum"`
	PageSize       int    `json:"pageSize"`
}

// Query handles the paged fee letter search.
func (s *Service) Query(c *fiber.Ctx) error {
	req := new(queryRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	list, total, err := feeletter.Query(s.db, feeletter.QueryParams{
		Comment:        req.Comment,
		UploadUserName: req.UploadUserName,
		PageNum:        req.PageNum,
		PageSize:       req.PageSize,
	})
	if err != nil {
		log.Error().Err(err).Msg("fee letter query failed")
		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}

	pageNum := req.PageNum
	if pageNum < 1 {
		pageNum = 1
	}

	pageSize := req.PageSize
	if pageSize < 1 || pageSize > feeletter.MaxPageSize {
		pageSize = feeletter.DefaultPageSize
	}

	return handler.OKPage(c, list, total, pageNum, pageSize)
}

// Upload handles the multipart fee letter upload. The metadata row is
// created first to obtain the object id; if the payload write fails the
// row is rolled back so no orphan metadata remains.
func (s *Service) Upload(c *fiber.Ctx) error {
	u := handler.SessionUser(c)
	if u == nil || !policy.CanPerform(policy.ActionUpload, policy.ParseRole(u.GroupCompanyRole), nil, u.UserName) {
		return handler.Fail(c, fiber.StatusForbidden, handler.ErrMsgPermissionDenied)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Please select a file to upload")
	}

	letter, err := feeletter.Create(s.db, fileHeader.Filename, c.FormValue("comment"), u.UserName)
	if err != nil {
		if errors.Is(err, feeletter.ErrFileNameEmpty) {
			return handler.Fail(c, fiber.StatusBadRequest, "Please select a file to upload")
		}

		log.Error().Err(err).Msg("fee letter create failed")

		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}

	defer func() {
		_ = src.Close()
	}()

	if err := s.store.Save(letter.S3ObjectID, src); err != nil {
		log.Error().Err(err).Str("objectId", letter.S3ObjectID).Msg("fee letter payload write failed")

		// roll the metadata back so the list never shows a letter
		// without a payload
		if _, rmErr := feeletter.Remove(s.db, letter.LetterID); rmErr != nil {
			log.Error().Err(rmErr).Msg("fee letter metadata rollback failed")
		}

		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}

	return handler.OK(c, letter)
}

// Download streams the payload of one letter with its original file name.
func (s *Service) Download(c *fiber.Ctx) error {
	letterID, err := strconv.ParseUint(c.Query("letterId"), 10, 64)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid letterId")
	}

	letter, err := feeletter.Get(s.db, letterID)
	if err != nil {
		return failLetter(c, err)
	}

	payload, err := s.store.Open(letter.S3ObjectID)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return handler.Fail(c, fiber.StatusNotFound, "Fee letter file is missing")
		}

		log.Error().Err(err).Msg("fee letter payload read failed")

		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+letter.FileName+`"`)
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)

	return c.SendStream(payload)
}

// Remove deletes a letter's metadata row and payload.
func (s *Service) Remove(c *fiber.Ctx) error {
	u := handler.SessionUser(c)
	if u == nil || !policy.CanPerform(policy.ActionDelete, policy.ParseRole(u.GroupCompanyRole), &policy.Ownership{}, u.UserName) {
		return handler.Fail(c, fiber.StatusForbidden, handler.ErrMsgPermissionDenied)
	}

	letterID, err := strconv.ParseUint(c.Query("letterId"), 10, 64)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid letterId")
	}

	letter, err := feeletter.Remove(s.db, letterID)
	if err != nil {
		return failLetter(c, err)
	}

	if err := s.store.Remove(letter.S3ObjectID); err != nil {
		log.Error().Err(err).Str("objectId", letter.S3ObjectID).Msg("fee letter payload delete failed")
	}

	return handler.OK(c, nil)
}

func failLetter(c *fiber.Ctx, err error) error {
	if errors.Is(err, feeletter.ErrLetterNotFound) {
		return handler.Fail(c, fiber.StatusNotFound, "Fee letter not found")
	}

	log.Error().Err(err).Msg("fee letter operation failed")

	return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
}
