// Package gateway is the HTTP client of the Group Company console. It
// speaks the JSON envelope of the /api endpoints, carries the session
// cookie across requests and never retries a failed call.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

// DefaultTimeout bounds every request. Operations are not cancellable
// from the screens once dispatched, so the bound is generous.
const DefaultTimeout = 60 * time.Second

// RequestError is a server-rejected call: the envelope arrived but
// carried success=false.
type RequestError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("request rejected with status %d", e.StatusCode)
}

// envelope mirrors the wire format of every JSON endpoint.
type envelope struct {
	Success      bool            `json:"success"`
	Data         json.RawMessage `json:"data"`
	PageInfoData json.RawMessage `json:"pageInfoData"`
	ErrMessage   string          `json:"errMessage"`
}

// Page is one page of a paged result, with the row payload left raw for
// the caller to decode.
type Page struct {
	List     json.RawMessage `json:"list"`
	Total    int64           `json:"total"`
	PageNum  int             `json:"pageNum"`
	PageSize int             `json:"pageSize"`
}

// Client talks to the console backend.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a gateway client for the given base URL. The client owns
// a cookie jar, so a Login call authenticates every later request.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base url")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cookie jar")
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		base: base,
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			// login answers with a redirect; following it would just
			// fetch the console page
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

func (c *Client) url(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path

	return u.String()
}

// Login authenticates against the login form and stores the session
// cookie in the jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{
		"username": {username},
		"password": {password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/login"), strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to build login request")
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "login request failed")
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	// success redirects to the console; a re-rendered login page means
	// rejected credentials
	if resp.StatusCode != http.StatusFound {
		return &RequestError{StatusCode: resp.StatusCode, Message: "Invalid username or password"}
	}

	return nil
}

// call performs one JSON request and unwraps the envelope. Exactly one
// of data and page is filled depending on the endpoint shape.
func (c *Client) call(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request body")
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	env := new(envelope)
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return nil, errors.Wrap(err, "failed to decode response envelope")
	}

	if !env.Success {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: env.ErrMessage}
	}

	return env, nil
}

func (c *Client) callData(ctx context.Context, method, path string, body, out interface{}) error {
	env, err := c.call(ctx, method, path, body)
	if err != nil {
		return err
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}

	return errors.Wrap(json.Unmarshal(env.Data, out), "failed to decode response data")
}

func (c *Client) callPage(ctx context.Context, path string, body, list interface{}) (*Page, error) {
	env, err := c.call(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	page := new(Page)
	if err := json.Unmarshal(env.PageInfoData, page); err != nil {
		return nil, errors.Wrap(err, "failed to decode page info")
	}

	if list != nil && len(page.List) > 0 {
		if err := json.Unmarshal(page.List, list); err != nil {
			return nil, errors.Wrap(err, "failed to decode page list")
		}
	}

	return page, nil
}

// MappingQuery is the body of the mapping search endpoint.
type MappingQuery struct {
	HeadGroupName string `json:"headGroupName,omitempty"`
	GfasAccountNo string `json:"gfasAccountNo,omitempty"`
	RM            string `json:"rm,omitempty"`
	WIGroupName   string `json:"wiGroupName,omitempty"`
	FundClass     string `json:"fundClass,omitempty"`
	GlobalClient  string `json:"globalClient,omitempty"`

	HeadGroupNameFilter         string `json:"headGroupNameFilter,omitempty"`
	WIGroupNameFilter           string `json:"wiGroupNameFilter,omitempty"`
	WICustomizedGroupNameFilter string `json:"wiCustomizedGroupNameFilter,omitempty"`

	PageNum  int `json:"pageNum"`
	PageSize int `json:"pageSize"`
}

// QueryMappings runs the paged fuzzy mapping search.
func (c *Client) QueryMappings(ctx context.Context, q MappingQuery) ([]models.GroupCompanyMapping, *Page, error) {
	var list []models.GroupCompanyMapping

	page, err := c.callPage(ctx, "/api/groupCompany/queryGroupCompanyNameMappingFuzzy", q, &list)
	if err != nil {
		return nil, nil, err
	}

	return list, page, nil
}

// AddMapping creates a mapping record.
func (c *Client) AddMapping(ctx context.Context, m *models.GroupCompanyMapping) error {
	return c.callData(ctx, http.MethodPost, "/api/groupCompany/addGroupCompanyMapping", m, m)
}

// SaveMapping updates a mapping record.
func (c *Client) SaveMapping(ctx context.Context, m *models.GroupCompanyMapping) error {
	return c.callData(ctx, http.MethodPut, "/api/groupCompany/saveGroupMapping", m, m)
}

// RemoveMapping deletes one mapping. bulk marks the call as part of a
// bulk delete for the audit trail.
func (c *Client) RemoveMapping(ctx context.Context, mappingID uint64, bulk bool) error {
	path := "/api/groupCompany/removeGroupMapping?mappingId=" + strconv.FormatUint(mappingID, 10)
	if bulk {
		path += "&bulk=true"
	}

	return c.callData(ctx, http.MethodDelete, path, nil, nil)
}

// GfasAccountName resolves the account name for the add workflow.
func (c *Client) GfasAccountName(ctx context.Context, accountNo, altID string) (string, error) {
	path := "/api/groupCompany/queryGfasAccountName?gfasAccountNo=" + url.QueryEscape(accountNo) +
		"&alternativeId=" + url.QueryEscape(altID)

	var out struct {
		GfasAccountName string `json:"gfasAccountName"`
	}

	if err := c.callData(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", err
	}

	return out.GfasAccountName, nil
}

// GroupSuggestion is one typeahead hit.
type GroupSuggestion struct {
	GroupID   uint64 `json:"groupId"`
	GroupName string `json:"groupName"`
}

// group kind → typeahead endpoint
var typeaheadPaths = map[string]string{
	"headGroup":         "/api/groupCompany/headGroup/queryHeadGroupFuzzy",
	"wiGroup":           "/api/groupCompany/wiGroup/queryWIGroupFuzzy",
	"wiCustomizedGroup": "/api/groupCompany/wiCustomizedGroup/queryWICustomizedGroupFuzzy",
}

// GroupTypeahead fetches name suggestions for one group kind. The
// returned total counts every match on the server, which can exceed the
// length of the capped suggestion list.
func (c *Client) GroupTypeahead(ctx context.Context, kind, term string) ([]GroupSuggestion, int64, error) {
	path, ok := typeaheadPaths[kind]
	if !ok {
		return nil, 0, errors.Errorf("unknown group kind %q", kind)
	}

	var list []GroupSuggestion

	page, err := c.callPage(ctx, path, map[string]string{"groupName": term}, &list)
	if err != nil {
		return nil, 0, err
	}

	return list, page.Total, nil
}

// UserRoleInfo is the per-session role bootstrap payload.
type UserRoleInfo struct {
	GroupCompanyRole string `json:"groupCompanyRole"`
	UserID           uint64 `json:"userId"`
	UserName         string `json:"userName"`
}

// UserRole fetches the role info of the logged-in session.
func (c *Client) UserRole(ctx context.Context) (*UserRoleInfo, error) {
	info := new(UserRoleInfo)

	if err := c.callData(ctx, http.MethodGet, "/api/common/queryGroupCompanyUserRole", nil, info); err != nil {
		return nil, err
	}

	return info, nil
}

// ReferenceValues fetches the dropdown values of one category.
func (c *Client) ReferenceValues(ctx context.Context, category string) ([]string, error) {
	var values []string

	path := "/api/common/queryImrReferenceByCategory?category=" + url.QueryEscape(category)
	if err := c.callData(ctx, http.MethodGet, path, nil, &values); err != nil {
		return nil, err
	}

	return values, nil
}

// UsersByDepartments fetches the RM dropdown entries.
func (c *Client) UsersByDepartments(ctx context.Context, departments []string) ([]UserRoleInfo, error) {
	var list []UserRoleInfo

	path := "/api/common/queryUserByDepartments?departments=" + url.QueryEscape(strings.Join(departments, ","))
	if err := c.callData(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}

	return list, nil
}

// QueryAuditLog fetches the audit trail, filtered by account number
// and/or name. Both filters may be empty for the initial fetch.
func (c *Client) QueryAuditLog(ctx context.Context, accountNo, accountName string, pageNum, pageSize int) ([]models.MappingAuditLog, *Page, error) {
	body := map[string]interface{}{
		"gfasAccountNo":   accountNo,
		"gfasAccountName": accountName,
		"pageNum":         pageNum,
		"pageSize":        pageSize,
	}

	var list []models.MappingAuditLog

	page, err := c.callPage(ctx, "/api/groupCompany/mappingAuditLog", body, &list)
	if err != nil {
		return nil, nil, err
	}

	return list, page, nil
}

// FeeLetterQuery is the body of the fee letter search endpoint.
type FeeLetterQuery struct {
	Comment        string `json:"comment,omitempty"`
	UploadUserName string `json:"uploadUserName,omitempty"`
	PageNum        int    `json:"pageNum"`
	PageSize       int    `json:"pageSize"`
}

// QueryFeeLetters runs the paged fee letter search.
func (c *Client) QueryFeeLetters(ctx context.Context, q FeeLetterQuery) ([]models.FeeLetter, *Page, error) {
	var list []models.FeeLetter

	page, err := c.callPage(ctx, "/api/groupCompany/feeLetter/queryFeeLetterByCondition", q, &list)
	if err != nil {
		return nil, nil, err
	}

	return list, page, nil
}

// UploadFeeLetter uploads a letter payload with an optional comment.
func (c *Client) UploadFeeLetter(ctx context.Context, fileName, comment string, payload io.Reader) (*models.FeeLetter, error) {
	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build multipart body")
	}

	if _, err := io.Copy(part, payload); err != nil {
		return nil, errors.Wrap(err, "failed to buffer upload payload")
	}

	if err := writer.WriteField("comment", comment); err != nil {
		return nil, errors.Wrap(err, "failed to write comment field")
	}

	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finish multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/groupCompany/feeLetter/uploadFeeLetter"), buf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build upload request")
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "upload request failed")
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	env := new(envelope)
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil {
		return nil, errors.Wrap(err, "failed to decode response envelope")
	}

	if !env.Success {
		return nil, &RequestError{StatusCode: resp.StatusCode, Message: env.ErrMessage}
	}

	letter := new(models.FeeLetter)
	if err := json.Unmarshal(env.Data, letter); err != nil {
		return nil, errors.Wrap(err, "failed to decode uploaded letter")
	}

	return letter, nil
}

// DownloadFeeLetter fetches a letter payload. The file name comes from
// the Content-Disposition header, falling back to the given default
// when the header is absent or unparsable.
func (c *Client) DownloadFeeLetter(ctx context.Context, letterID uint64, fallbackName string) ([]byte, string, error) {
	path := "/api/groupCompany/feeLetter/downloadFileByLetterId?letterId=" + strconv.FormatUint(letterID, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to build download request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "download request failed")
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		env := new(envelope)
		if err := json.NewDecoder(resp.Body).Decode(env); err == nil && env.ErrMessage != "" {
			return nil, "", &RequestError{StatusCode: resp.StatusCode, Message: env.ErrMessage}
		}

		return nil, "", &RequestError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read download payload")
	}

	name := fallbackName

	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			name = params["filename"]
		}
	}

	return body, name, nil
}

// RemoveFeeLetter deletes one letter.
func (c *Client) RemoveFeeLetter(ctx context.Context, letterID uint64) error {
	path := "/api/groupCompany/feeLetter/removeByLetterId?letterId=" + strconv.FormatUint(letterID, 10)

	return c.callData(ctx, http.MethodDelete, path, nil, nil)
}
