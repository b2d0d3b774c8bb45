package groupcompany

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/config"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.GroupCompanyMapping{},
		&models.GfasAccount{},
		&models.MappingAuditLog{},
	))

	return db
}

// newTestApp wires the handler behind a stub auth middleware that stores
// the given user, mirroring what the real middleware does after a login.
func newTestApp(t *testing.T, db *gorm.DB, u *models.User) *fiber.App {
	t.Helper()

	app := fiber.New()

	if u != nil {
		app.Use(func(c *fiber.Ctx) error {
			handler.StoreSessionUser(c, u)
			return c.Next()
		})
	}

	var s Service
	require.NoError(t, s.Init(app, &config.Config{}, db))

	return app
}

func jsonRequest(t *testing.T, app *fiber.App, method, target string, body interface{}) (*http.Response, handler.Response) {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	var env handler.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	return resp, env
}

func writer() *models.User {
	return &models.User{ID: 1, UserName: "Vivian Fung", GroupCompanyRole: "WRITE"}
}

func validBody() fiber.Map {
	return fiber.Map{
		"gfasAccountNo":   "abc123",
		"headGroupId":     1,
		"headGroupName":   "Acme",
		"wiGroupId":       2,
		"wiGroupName":     "Acme WI",
		"fundClass":       "FQIF - B",
		"pensionCategory": "MPF- Direct",
		"portfolioNature": "Pension",
		"memberChoice":    "Member Choice",
		"agent":           "Direct",
		"globalClient":    "N",
	}
}

func TestQuery_RequiresSearchCriteria(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db, writer())

	resp, env := jsonRequest(t, app, http.MethodPost, Path+"/queryGroupCompanyNameMappingFuzzy",
		fiber.Map{"pageNum": 1, "pageSize": 20})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, handler.ErrMsgSearchCriteriaRequired, env.ErrMessage)

	// column filters alone do not qualify as criteria
	resp, env = jsonRequest(t, app, http.MethodPost, Path+"/queryGroupCompanyNameMappingFuzzy",
		fiber.Map{"headGroupNameFilter": "acme"})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, handler.ErrMsgSearchCriteriaRequired, env.ErrMessage)
}

func TestQuery_ReturnsPage(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.GroupCompanyMapping{
		GfasAccountNo: "ABC123", GfasAccountName: "ACME",
		HeadGroupID: 1, HeadGroupName: "Acme",
		WIGroupID: 2, WIGroupName: "Acme WI",
		FundClass: "FQIF - B", PensionCategory: "MPF- Direct",
		PortfolioNature: "Pension", MemberChoice: "Member Choice",
		Agent: "Direct", GlobalClient: "N",
	}).Error)

	app := newTestApp(t, db, writer())

	resp, env := jsonRequest(t, app, http.MethodPost, Path+"/queryGroupCompanyNameMappingFuzzy",
		fiber.Map{"headGroupName": "acm"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
	require.NotNil(t, env.PageInfoData)
	assert.EqualValues(t, 1, env.PageInfoData.Total)
	assert.Equal(t, 1, env.PageInfoData.PageNum)
}

func TestAdd_RequiresWriteRole(t *testing.T) {
	db := setupTestDB(t)

	app := newTestApp(t, db, &models.User{ID: 2, UserName: "Reader", GroupCompanyRole: "READ"})

	resp, env := jsonRequest(t, app, http.MethodPost, Path+"/addGroupCompanyMapping", validBody())
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, handler.ErrMsgPermissionDenied, env.ErrMessage)

	// no session at all
	app = newTestApp(t, db, nil)

	resp, _ = jsonRequest(t, app, http.MethodPost, Path+"/addGroupCompanyMapping", validBody())
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdd_ResolvesNameServerSide(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.GfasAccount{
		AccountNo: "ABC123", AccountName: "ACME LIMITED",
	}).Error)

	app := newTestApp(t, db, writer())

	body := validBody()
	body["gfasAccountName"] = "SPOOFED NAME"

	resp, env := jsonRequest(t, app, http.MethodPost, Path+"/addGroupCompanyMapping", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var stored models.GroupCompanyMapping
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, "ABC123", stored.GfasAccountNo, "account no is uppercased")
	assert.Equal(t, "ACME LIMITED", stored.GfasAccountName, "client supplied names are ignored")
	assert.Equal(t, "Vivian Fung", stored.CreatedBy)

	var audit models.MappingAuditLog
	require.NoError(t, db.First(&audit).Error)
	assert.Equal(t, models.AuditActionAdd, audit.Action)
}

func TestAdd_UnknownAccountRejected(t *testing.T) {
	db := setupTestDB(t)
	app := newTestApp(t, db, writer())

	resp, env := jsonRequest(t, app, http.MethodPost, Path+"/addGroupCompanyMapping", validBody())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "GFAS account not found", env.ErrMessage)
}

func TestRemove_OwnershipGate(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.GroupCompanyMapping{
		MappingID:     77,
		GfasAccountNo: "ABC123", GfasAccountName: "ACME",
		HeadGroupID: 1, HeadGroupName: "Acme",
		WIGroupID: 2, WIGroupName: "Acme WI",
		FundClass: "FQIF - B", PensionCategory: "MPF- Direct",
		PortfolioNature: "Pension", MemberChoice: "Member Choice",
		Agent: "Direct", GlobalClient: "N",
		RM: "Somebody Else",
	}).Error)

	// a writer who does not own the record
	app := newTestApp(t, db, writer())

	resp, env := jsonRequest(t, app, http.MethodDelete, Path+"/removeGroupMapping?mappingId=77", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, handler.ErrMsgPermissionDenied, env.ErrMessage)

	// admins may delete anything
	app = newTestApp(t, db, &models.User{ID: 3, UserName: "Root", GroupCompanyRole: "ADMIN"})

	resp, env = jsonRequest(t, app, http.MethodDelete, Path+"/removeGroupMapping?mappingId=77&bulk=true", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var audit models.MappingAuditLog
	require.NoError(t, db.First(&audit).Error)
	assert.Equal(t, models.AuditActionBulkDelete, audit.Action)
}

func TestAuditLog_RoleGate(t *testing.T) {
	db := setupTestDB(t)

	app := newTestApp(t, db, nil)

	resp, _ := jsonRequest(t, app, http.MethodPost, Path+"/mappingAuditLog",
		fiber.Map{"gfasAccountNo": "ABC123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	app = newTestApp(t, db, &models.User{ID: 2, UserName: "Reader", GroupCompanyRole: "READ"})

	resp, _ = jsonRequest(t, app, http.MethodPost, Path+"/mappingAuditLog",
		fiber.Map{"gfasAccountNo": "ABC123"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	app = newTestApp(t, db, writer())

	resp, env := jsonRequest(t, app, http.MethodPost, Path+"/mappingAuditLog",
		fiber.Map{"gfasAccountNo": "ABC123"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	// the initial fetch carries no criteria and must succeed
	resp, env = jsonRequest(t, app, http.MethodPost, Path+"/mappingAuditLog", fiber.Map{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
	require.NotNil(t, env.PageInfoData)
}

func TestAuditLog_SearchByAccountName(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.MappingAuditLog{
		GfasAccountNo:   "ABC123",
		GfasAccountName: "ACME LIMITED",
		Action:          models.AuditActionAdd,
		CreatedUserName: "Vivian Fung",
	}).Error)
	require.NoError(t, db.Create(&models.MappingAuditLog{
		GfasAccountNo:   "XYZ900",
		GfasAccountName: "ZENITH HOLDINGS",
		Action:          models.AuditActionAdd,
		CreatedUserName: "Vivian Fung",
	}).Error)

	app := newTestApp(t, db, writer())

	resp, env := jsonRequest(t, app, http.MethodPost, Path+"/mappingAuditLog",
		fiber.Map{"gfasAccountName": "acme"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
	require.NotNil(t, env.PageInfoData)
	assert.EqualValues(t, 1, env.PageInfoData.Total)
}

func TestQueryGfasAccountName(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.GfasAccount{
		AccountNo: models.SentinelAccountNo, AltID: "ALT01", AccountName: "SHARED ONE",
	}).Error)

	app := newTestApp(t, db, writer())

	// sentinel without alt id
	target := Path + "/queryGfasAccountName?gfasAccountNo=CCC+111111"

	resp, env := jsonRequest(t, app, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Alt Id is required for this GFAS account", env.ErrMessage)

	resp, env = jsonRequest(t, app, http.MethodGet, target+"&alternativeId=ALT01", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "SHARED ONE", data["gfasAccountName"])
}
