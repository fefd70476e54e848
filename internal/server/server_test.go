package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-parser-web/internal/config"
	"github.com/jonathan/resume-parser-web/internal/dashboard"
	"github.com/jonathan/resume-parser-web/internal/parserapi"
	"github.com/jonathan/resume-parser-web/internal/server/ratelimit"
	"github.com/jonathan/resume-parser-web/internal/types"
	"github.com/jonathan/resume-parser-web/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeParser stands in for the remote parsing API.
type fakeParser struct {
	mu        sync.Mutex
	records   []types.ResumeRecord
	listErr   error
	uploadErr error
	uploads   []parserapi.UploadInput
	scopes    []parserapi.Scope

	// when set, Upload signals started and waits for release
	started chan struct{}
	release chan struct{}
}

func (f *fakeParser) Upload(ctx context.Context, in parserapi.UploadInput) (*parserapi.UploadResult, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, in)
	started, release, err := f.started, f.release, f.uploadErr
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	raw := json.RawMessage(`{"candidate_name":"Ada Lovelace","email_id":"ada@example.com","skills":["Go"]}`)
	rec := &types.ResumeRecord{CandidateName: "Ada Lovelace", EmailID: "ada@example.com", Skills: []string{"Go"}}
	return &parserapi.UploadResult{Record: rec, Raw: raw}, nil
}

func (f *fakeParser) ListResumes(_ context.Context, scope parserapi.Scope) ([]types.ResumeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopes = append(f.scopes, scope)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeParser) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func (f *fakeParser) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scopes)
}

func sampleRecords() []types.ResumeRecord {
	return []types.ResumeRecord{
		{CandidateName: "Alice Smith", EmailID: "alice@example.com", UserID: "user_1"},
		{CandidateName: "Bob Jones", EmailID: "bob@corp.io", UserID: "user_1", PhoneNumber: "555-0100",
			Education: []types.Education{{InstitutionName: "MIT", CGPA: types.NumberScalar("3.9")}},
			Skills:    []string{"Go", "SQL"}},
		{CandidateName: "alice cooper", EmailID: "ac@music.net", UserID: "user_1"},
	}
}

type testEnv struct {
	server *Server
	parser *fakeParser
	jwt    *JWTService
}

func newTestEnv(t *testing.T, cfg Config, deps Deps) *testEnv {
	t.Helper()
	parser := &fakeParser{records: sampleRecords()}
	jwtService := NewJWTService(&config.JWTConfig{Secret: testSecret, ExpirationHours: 1})

	deps.Parser = parser
	deps.Tokens = jwtService.AsTokenValidator()
	if deps.Views == nil {
		deps.Views = dashboard.NewStore(time.Minute, 0)
	}

	s, err := New(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.views.Stop()
		s.limiter.Stop()
	})
	return &testEnv{server: s, parser: parser, jwt: jwtService}
}

func (e *testEnv) token(t *testing.T, id types.Identity) string {
	t.Helper()
	tok, err := e.jwt.GenerateToken(id)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, path string, id *types.Identity) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if id != nil {
		req.AddCookie(&http.Cookie{Name: "__session", Value: e.token(t, *id)})
	}
	return e.do(req)
}

func multipartUpload(t *testing.T, method, path, filename, contentType string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.7 fake"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func doc(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return d
}

var (
	alice = types.Identity{UserID: "user_1", FirstName: "Alice"}
	admin = types.Identity{UserID: dashboard.LegacyAdminUserID}
)

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})

	w := env.get(t, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestID_ReusesValidIncomingID(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "0f8fad5b-d9cb-469f-a165-70867728950e")
	assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", env.do(req).Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", env.do(req).Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	open := newTestEnv(t, Config{}, Deps{})
	req := httptest.NewRequest(http.MethodOptions, "/api/resumes", nil)
	w := open.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	restricted := newTestEnv(t, Config{AllowedOrigins: []string{"https://app.example.com"}}, Deps{})
	req = httptest.NewRequest(http.MethodOptions, "/api/resumes", nil)
	req.Header.Set("Origin", "https://app.example.com")
	assert.Equal(t, "https://app.example.com", restricted.do(req).Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/resumes", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	assert.Empty(t, restricted.do(req).Header().Get("Access-Control-Allow-Origin"))
}

func TestLanding(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})

	w := env.get(t, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	d := doc(t, w)
	assert.Equal(t, 1, d.Find("#landing #sign-in").Length())
	assert.Equal(t, 1, d.Find("#landing #sign-up").Length())
	assert.Equal(t, 0, d.Find("#go-to-parser").Length())

	w = env.get(t, "/", &alice)
	require.Equal(t, http.StatusOK, w.Code)
	d = doc(t, w)
	assert.Equal(t, "Go to Parser", strings.TrimSpace(d.Find("#go-to-parser").Text()))
	assert.Equal(t, "Welcome, Alice", strings.TrimSpace(d.Find("#greeting").Text()))

	w = env.get(t, "/", &types.Identity{UserID: "user_9"})
	assert.Equal(t, "Welcome, User", strings.TrimSpace(doc(t, w).Find("#greeting").Text()))
}

func TestSignInRedirect(t *testing.T) {
	env := newTestEnv(t, Config{SignInURL: "https://accounts.example.com/sign-in", SignUpURL: "https://accounts.example.com/sign-up"}, Deps{})

	w := env.get(t, "/sign-in", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://accounts.example.com/sign-in", w.Header().Get("Location"))

	w = env.get(t, "/sign-up", nil)
	assert.Equal(t, "https://accounts.example.com/sign-up", w.Header().Get("Location"))

	unconfigured := newTestEnv(t, Config{}, Deps{})
	w = unconfigured.get(t, "/sign-in", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "No identity provider is configured")
}

func TestPagesRequireSession(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})

	for _, path := range []string{"/parser", "/dashboard", "/dashboard/abc"} {
		w := env.get(t, path, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/sign-in", w.Header().Get("Location"), path)
	}
	assert.Zero(t, env.parser.fetchCount())
}

func TestParserPage_UploadSuccess(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})

	req := multipartUpload(t, http.MethodPost, "/parser", "resume.pdf", types.MIMETypePDF)
	req.AddCookie(&http.Cookie{Name: "__session", Value: env.token(t, alice)})
	w := env.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	d := doc(t, w)
	assert.Contains(t, d.Find("#extracted-data").Text(), `"candidate_name": "Ada Lovelace"`)
	assert.Contains(t, d.Find(".notification.success").Text(), "Resume Parsed!")
	assert.Equal(t, 0, d.Find("#upload-error").Length())

	require.Equal(t, 1, env.parser.uploadCount())
	got := env.parser.uploads[0]
	assert.Equal(t, "resume.pdf", got.Filename)
	assert.Equal(t, types.MIMETypePDF, got.ContentType)
	assert.Equal(t, "user_1", got.UserID)
}

func TestParserPage_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		wantMsg     string
	}{
		{name: "plain text", filename: "notes.txt", contentType: "text/plain", wantMsg: upload.MsgInvalidType},
		{name: "legacy word", filename: "resume.doc", contentType: "application/msword", wantMsg: upload.MsgInvalidType},
		{name: "no file", wantMsg: upload.MsgNoFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Config{}, Deps{})

			req := multipartUpload(t, http.MethodPost, "/parser", tt.filename, tt.contentType)
			req.AddCookie(&http.Cookie{Name: "__session", Value: env.token(t, alice)})
			w := env.do(req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, strings.TrimSpace(doc(t, w).Find("#upload-error").Text()))
			assert.Zero(t, env.parser.uploadCount(), "no request may reach the parser")
		})
	}
}

func TestParserPage_FileTooLarge(t *testing.T) {
	env := newTestEnv(t, Config{MaxUploadBytes: 64}, Deps{})

	req := multipartUpload(t, http.MethodPost, "/parser", "resume.pdf", types.MIMETypePDF)
	req.AddCookie(&http.Cookie{Name: "__session", Value: env.token(t, alice)})
	w := env.do(req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, upload.TooLargeMessage(64), strings.TrimSpace(doc(t, w).Find("#upload-error").Text()))
	assert.Zero(t, env.parser.uploadCount())
}

func TestAPIUpload_FileTooLarge(t *testing.T) {
	env := newTestEnv(t, Config{MaxUploadBytes: 64}, Deps{})

	req := multipartUpload(t, http.MethodPost, "/api/upload", "resume.pdf", types.MIMETypePDF)
	req.Header.Set("Authorization", "Bearer "+env.token(t, alice))
	w := env.do(req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, upload.TooLargeMessage(64), resp.Error)
	assert.Zero(t, env.parser.uploadCount())
}

func TestParserPage_RemoteFailure(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})
	env.parser.uploadErr = &parserapi.Error{Op: parserapi.OpUpload, StatusCode: http.StatusBadRequest, Message: "Invalid file"}

	req := multipartUpload(t, http.MethodPost, "/parser", "resume.pdf", types.MIMETypePDF)
	req.AddCookie(&http.Cookie{Name: "__session", Value: env.token(t, alice)})
	w := env.do(req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	d := doc(t, w)
	assert.Equal(t, "File upload failed: Invalid file. Please try again.", strings.TrimSpace(d.Find("#upload-error").Text()))
	assert.Contains(t, d.Find(".notification.error").Text(), "Upload Failed!")
	assert.Equal(t, 0, d.Find("#extracted-data").Length())
}

func TestAPIUpload(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})

	req := multipartUpload(t, http.MethodPost, "/api/upload", "cv.docx", types.MIMETypeDOCX)
	req.Header.Set("Authorization", "Bearer "+env.token(t, alice))
	w := env.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, `{"candidate_name":"Ada Lovelace","email_id":"ada@example.com","skills":["Go"]}`, string(resp.ExtractedData))
	require.NotNil(t, resp.Notification)
	assert.Equal(t, "Resume Parsed!", resp.Notification.Title)
}

func TestAPIUpload_Unauthorized(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})

	w := env.do(multipartUpload(t, http.MethodPost, "/api/upload", "cv.pdf", types.MIMETypePDF))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, env.parser.uploadCount())
}

func TestAPIUpload_TransportFailure(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})
	env.parser.uploadErr = &parserapi.Error{Op: parserapi.OpUpload, Message: "HTTP request failed", Cause: errors.New("connection refused")}

	req := multipartUpload(t, http.MethodPost, "/api/upload", "cv.pdf", types.MIMETypePDF)
	req.Header.Set("Authorization", "Bearer "+env.token(t, alice))
	w := env.do(req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, upload.MsgTransportError, resp.Error)
	assert.Equal(t, "Upload Error!", resp.Notification.Title)
	assert.Empty(t, resp.ExtractedData)
}

func TestAPIUpload_SecondSubmitWhilePendingIsRejected(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})
	env.parser.started = make(chan struct{})
	env.parser.release = make(chan struct{})
	token := env.token(t, alice)

	first := make(chan int, 1)
	go func() {
		req := multipartUpload(t, http.MethodPost, "/api/upload", "a.pdf", types.MIMETypePDF)
		req.Header.Set("Authorization", "Bearer "+token)
		first <- env.do(req).Code
	}()
	<-env.parser.started

	req := multipartUpload(t, http.MethodPost, "/api/upload", "b.pdf", types.MIMETypePDF)
	req.Header.Set("Authorization", "Bearer "+token)
	w := env.do(req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), upload.MsgInFlight)

	close(env.parser.release)
	assert.Equal(t, http.StatusOK, <-first)
	assert.Equal(t, 1, env.parser.uploadCount())
}

func TestAPIUpload_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled: true,
		Rules:   []ratelimit.Rule{{Method: "POST", Path: "/api/upload", Limit: 1, Window: time.Hour}},
	})
	env := newTestEnv(t, Config{}, Deps{Limiter: limiter})
	token := env.token(t, alice)

	send := func() *httptest.ResponseRecorder {
		req := multipartUpload(t, http.MethodPost, "/api/upload", "a.pdf", types.MIMETypePDF)
		req.Header.Set("Authorization", "Bearer "+token)
		return env.do(req)
	}

	assert.Equal(t, http.StatusOK, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, 1, env.parser.uploadCount())
}

// openDashboard follows the fetch redirect and returns the view URL.
func openDashboard(t *testing.T, env *testEnv, id types.Identity) string {
	t.Helper()
	w := env.get(t, "/dashboard", &id)
	require.Equal(t, http.StatusSeeOther, w.Code)
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/dashboard/"), loc)
	return loc
}

func TestDashboard_FilterSelectAndClose(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})
	view := openDashboard(t, env, alice)

	w := env.get(t, view, &alice)
	require.Equal(t, http.StatusOK, w.Code)
	d := doc(t, w)
	assert.Equal(t, 3, d.Find("#resumes tbody tr").Length())
	assert.Equal(t, 0, d.Find("#filterType option[value='']:not([disabled])").Length(), "Show All is for administrators")

	w = env.get(t, view+"?facet=candidate_name&value=", &alice)
	d = doc(t, w)
	var options []string
	d.Find("#filterValue option").Each(func(_ int, s *goquery.Selection) {
		options = append(options, s.Text())
	})
	assert.Equal(t, []string{"All Candidate Names", "Alice Smith", "Bob Jones", "alice cooper"}, options)

	w = env.get(t, view+"?facet=candidate_name&value=alice", &alice)
	d = doc(t, w)
	require.Equal(t, 2, d.Find("#resumes tbody tr").Length())
	assert.Equal(t, "Alice Smith", d.Find("#resumes tbody tr td").First().Text())

	w = env.get(t, view+"?selected=1", &alice)
	d = doc(t, w)
	assert.Equal(t, "alice cooper", strings.TrimSpace(d.Find("#detail h2").Text()))
	assert.Contains(t, d.Find("#detail").Text(), "Phone Number: N/A")
	assert.Equal(t, 2, d.Find("#resumes tbody tr").Length(), "selection keeps the filter")

	w = env.get(t, view+"?close=1", &alice)
	d = doc(t, w)
	assert.Equal(t, 0, d.Find("#detail").Length())
	assert.Equal(t, 2, d.Find("#resumes tbody tr").Length())

	w = env.get(t, view+"?facet=candidate_name&value=", &alice)
	assert.Equal(t, 3, doc(t, w).Find("#resumes tbody tr").Length())

	assert.Equal(t, 1, env.parser.fetchCount(), "filtering never fetches")
	assert.Equal(t, parserapi.Scope{UserID: "user_1", CurrentUserID: "user_1"}, env.parser.scopes[0])
}

func TestDashboard_DetailModal(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})
	view := openDashboard(t, env, alice)

	w := env.get(t, view+"?selected=1", &alice)
	require.Equal(t, http.StatusOK, w.Code)
	detail := doc(t, w).Find("#detail")

	assert.Equal(t, "Bob Jones", strings.TrimSpace(detail.Find("h2").Text()))
	assert.Contains(t, detail.Text(), "Phone Number: 555-0100")
	assert.Contains(t, detail.Find(".education").Text(), "CGPA: 3.9")
	assert.Contains(t, detail.Find(".education").Text(), "Duration: N/A")
	assert.Equal(t, "Go, SQL", strings.TrimSpace(detail.Find("#skills").Text()))
	assert.Equal(t, 0, detail.Find(".experience").Length())

	w = env.get(t, view+"?selected=7", &alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, doc(t, w).Find("#detail").Length())
}

func TestDashboard_AdminSeesEveryUser(t *testing.T) {
	tests := []struct {
		name string
		id   types.Identity
		deps Deps
	}{
		{name: "legacy allow-list", id: admin},
		{name: "role claim", id: types.Identity{UserID: "user_ops", Role: types.RoleAdmin}},
		{name: "configured allow-list", id: types.Identity{UserID: "user_lead"}, deps: Deps{Authorizer: dashboard.NewAuthorizer([]string{"user_lead"})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Config{}, tt.deps)
			view := openDashboard(t, env, tt.id)

			require.Equal(t, 1, env.parser.fetchCount())
			assert.Equal(t, parserapi.Scope{UserID: "", CurrentUserID: tt.id.UserID}, env.parser.scopes[0])

			d := doc(t, env.get(t, view, &tt.id))
			assert.Equal(t, "Show All", d.Find("#filterType option[value='']").Text())
		})
	}
}

func TestDashboard_FetchFailure(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})
	env.parser.listErr = &parserapi.Error{Op: parserapi.OpListResumes, StatusCode: http.StatusInternalServerError, Message: "HTTP status 500"}

	view := openDashboard(t, env, alice)
	w := env.get(t, view, &alice)
	require.Equal(t, http.StatusOK, w.Code)

	d := doc(t, w)
	assert.Equal(t, dashboard.MsgFetchFailed, strings.TrimSpace(d.Find("#fetch-error").Text()))
	assert.Equal(t, dashboard.MsgEmpty, strings.TrimSpace(d.Find("#empty").Text()))
	assert.Equal(t, 0, d.Find("#resumes").Length())
	assert.NotContains(t, w.Body.String(), "Loading resume data")
}

func TestDashboard_ViewBelongsToItsOwner(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})
	view := openDashboard(t, env, alice)

	w := env.get(t, view, &types.Identity{UserID: "user_2"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.get(t, "/dashboard/does-not-exist", &alice)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIResumes(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})

	req := httptest.NewRequest(http.MethodGet, "/api/resumes?facet=email_id&value=EXAMPLE", nil)
	req.Header.Set("Authorization", "Bearer "+env.token(t, alice))
	w := env.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ResumeListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Resumes, 1)
	assert.Equal(t, "alice@example.com", resp.Resumes[0].EmailID)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, dashboard.FacetEmail, resp.Facet)
	assert.False(t, resp.Admin)
	assert.Equal(t, []string{"ac@music.net", "alice@example.com", "bob@corp.io"}, resp.Facets.Emails)
}

func TestAPIResumes_FetchFailure(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})
	env.parser.listErr = &parserapi.Error{Op: parserapi.OpListResumes, Message: "HTTP request failed", Cause: io.ErrUnexpectedEOF}

	req := httptest.NewRequest(http.MethodGet, "/api/resumes", nil)
	req.Header.Set("Authorization", "Bearer "+env.token(t, alice))
	w := env.do(req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var resp ResumeListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dashboard.MsgFetchError, resp.Error)
	assert.Empty(t, resp.Resumes)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	env := newTestEnv(t, Config{}, Deps{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{}, Deps{})
	assert.Error(t, err)

	_, err = New(Config{}, Deps{Parser: &fakeParser{}})
	assert.Error(t, err)
}
