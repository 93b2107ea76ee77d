package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/service"
	"github.com/MKhiriev/go-blog/internal/utils"
	"github.com/MKhiriev/go-blog/models"
	"github.com/go-chi/chi/v5"
)

// ─────────────────────────────────────────────
// Service fakes
// ─────────────────────────────────────────────

// fakeAuthService implements service.AuthService. Unset functions behave
// like an empty store: anonymous visitors, flashes are accepted.
type fakeAuthService struct {
	authenticateFn func(ctx context.Context, email, password string) (models.User, error)
	signInFn       func(ctx context.Context, current *models.Session, user models.User) (models.Session, models.Token, error)
	signOutFn      func(ctx context.Context, session *models.Session) error
	resolveFn      func(ctx context.Context, cookie string) (*models.RequestContext, error)

	flashes []models.Flash
	signOut int
}

func (f *fakeAuthService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	if f.authenticateFn == nil {
		return models.User{}, service.ErrInvalidCredentials
	}
	return f.authenticateFn(ctx, email, password)
}

func (f *fakeAuthService) SignIn(ctx context.Context, current *models.Session, user models.User) (models.Session, models.Token, error) {
	if f.signInFn == nil {
		return models.Session{ID: "signed-in", UserID: user.UserID}, models.Token{SignedString: "signed-in-token"}, nil
	}
	return f.signInFn(ctx, current, user)
}

func (f *fakeAuthService) SignOut(ctx context.Context, session *models.Session) error {
	f.signOut++
	if f.signOutFn == nil {
		return nil
	}
	return f.signOutFn(ctx, session)
}

func (f *fakeAuthService) Resolve(ctx context.Context, cookie string) (*models.RequestContext, error) {
	if f.resolveFn == nil {
		return &models.RequestContext{Identity: models.Anonymous()}, nil
	}
	return f.resolveFn(ctx, cookie)
}

func (f *fakeAuthService) AddFlash(_ context.Context, session *models.Session, flash models.Flash) (models.Session, models.Token, error) {
	f.flashes = append(f.flashes, flash)
	s := models.Session{ID: "flash-session"}
	if session != nil {
		s = *session
	}
	s.Flashes = append(s.Flashes, flash)
	return s, models.Token{SignedString: "flash-token"}, nil
}

func (f *fakeAuthService) PurgeExpiredSessions(context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeAuthService) lastFlash() models.Flash {
	if len(f.flashes) == 0 {
		return models.Flash{}
	}
	return f.flashes[len(f.flashes)-1]
}

// fakeAccountService implements service.AccountService.
type fakeAccountService struct {
	signUpFn          func(ctx context.Context, input models.SignUpInput) (models.User, error)
	profileFn         func(ctx context.Context, identity models.Identity) (models.User, error)
	updateProfileFn   func(ctx context.Context, identity models.Identity, input models.ProfileInput) (models.User, error)
	changePasswordFn  func(ctx context.Context, identity models.Identity, input models.ChangePasswordInput) error
	forgotPasswordFn  func(ctx context.Context, email, host string) error
	resetPasswordFn   func(ctx context.Context, token string, input models.ResetPasswordInput) error
	checkResetTokenFn func(ctx context.Context, token string) error
	deleteAccountFn   func(ctx context.Context, identity models.Identity) error
}

func (f *fakeAccountService) SignUp(ctx context.Context, input models.SignUpInput) (models.User, error) {
	return f.signUpFn(ctx, input)
}

func (f *fakeAccountService) Profile(ctx context.Context, identity models.Identity) (models.User, error) {
	if f.profileFn == nil {
		return models.User{UserID: identity.UserID, Username: identity.Username, Email: identity.Email}, nil
	}
	return f.profileFn(ctx, identity)
}

func (f *fakeAccountService) UpdateProfile(ctx context.Context, identity models.Identity, input models.ProfileInput) (models.User, error) {
	return f.updateProfileFn(ctx, identity, input)
}

func (f *fakeAccountService) ChangePassword(ctx context.Context, identity models.Identity, input models.ChangePasswordInput) error {
	return f.changePasswordFn(ctx, identity, input)
}

func (f *fakeAccountService) ForgotPassword(ctx context.Context, email, host string) error {
	return f.forgotPasswordFn(ctx, email, host)
}

func (f *fakeAccountService) ResetPassword(ctx context.Context, token string, input models.ResetPasswordInput) error {
	return f.resetPasswordFn(ctx, token, input)
}

func (f *fakeAccountService) CheckResetToken(ctx context.Context, token string) error {
	return f.checkResetTokenFn(ctx, token)
}

func (f *fakeAccountService) DeleteAccount(ctx context.Context, identity models.Identity) error {
	return f.deleteAccountFn(ctx, identity)
}

// fakePostService implements service.PostService.
type fakePostService struct {
	createFn       func(ctx context.Context, identity models.Identity, input models.PostInput) (models.Post, error)
	getFn          func(ctx context.Context, identity models.Identity, postID string) (models.Post, error)
	getForEditFn   func(ctx context.Context, identity models.Identity, postID string) (models.Post, error)
	updateFn       func(ctx context.Context, identity models.Identity, postID string, patch models.PostPatch) (models.Post, error)
	deleteFn       func(ctx context.Context, identity models.Identity, postID string) error
	listPublicFn   func(ctx context.Context, page, limit int) (models.PostPage, error)
	listByAuthorFn func(ctx context.Context, viewer models.Identity, authorID int64, page, limit int) (models.PostPage, error)
}

func (f *fakePostService) Create(ctx context.Context, identity models.Identity, input models.PostInput) (models.Post, error) {
	return f.createFn(ctx, identity, input)
}

func (f *fakePostService) Get(ctx context.Context, identity models.Identity, postID string) (models.Post, error) {
	return f.getFn(ctx, identity, postID)
}

func (f *fakePostService) GetForEdit(ctx context.Context, identity models.Identity, postID string) (models.Post, error) {
	return f.getForEditFn(ctx, identity, postID)
}

func (f *fakePostService) Update(ctx context.Context, identity models.Identity, postID string, patch models.PostPatch) (models.Post, error) {
	return f.updateFn(ctx, identity, postID, patch)
}

func (f *fakePostService) Delete(ctx context.Context, identity models.Identity, postID string) error {
	return f.deleteFn(ctx, identity, postID)
}

func (f *fakePostService) ListPublic(ctx context.Context, page, limit int) (models.PostPage, error) {
	return f.listPublicFn(ctx, page, limit)
}

func (f *fakePostService) ListByAuthor(ctx context.Context, viewer models.Identity, authorID int64, page, limit int) (models.PostPage, error) {
	return f.listByAuthorFn(ctx, viewer, authorID, page, limit)
}

// fakeCategoryService implements service.CategoryService.
type fakeCategoryService struct {
	categories []models.Category
	err        error
}

func (f *fakeCategoryService) Seed(context.Context) error { return nil }

func (f *fakeCategoryService) List(context.Context) ([]models.Category, error) {
	return f.categories, f.err
}

// mockAppInfoService implements service.AppInfoService for testing.
type mockAppInfoService struct {
	version string
	build   models.AppBuildInfo
}

func (m *mockAppInfoService) GetAppVersion(_ context.Context) string {
	return m.version
}

func (m *mockAppInfoService) GetBuildInfo(_ context.Context) models.AppBuildInfo {
	return m.build
}

// ─────────────────────────────────────────────
// Renderer fake
// ─────────────────────────────────────────────

// recordingRenderer remembers the last rendered view and writes its name
// as the body.
type recordingRenderer struct {
	name   string
	status int
	view   View
}

func (r *recordingRenderer) Render(w http.ResponseWriter, status int, name string, view View) error {
	r.name, r.status, r.view = name, status, view
	w.WriteHeader(status)
	_, err := w.Write([]byte(name))
	return err
}

// ─────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────

type handlerFixture struct {
	auth       *fakeAuthService
	account    *fakeAccountService
	posts      *fakePostService
	categories *fakeCategoryService
	renderer   *recordingRenderer
	handler    *Handler
}

func testConfig() config.StructuredConfig {
	var cfg config.StructuredConfig
	cfg.Server.RateLimit = config.RateLimit{PerMinute: 0, Burst: 1}
	return cfg
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	f := &handlerFixture{
		auth:       &fakeAuthService{},
		account:    &fakeAccountService{},
		posts:      &fakePostService{},
		categories: &fakeCategoryService{categories: []models.Category{{ID: 1, Name: "IT"}, {ID: 2, Name: "sport"}}},
		renderer:   &recordingRenderer{},
	}
	services := &service.Services{
		AuthService:     f.auth,
		AccountService:  f.account,
		PostService:     f.posts,
		CategoryService: f.categories,
		AppInfoService:  &mockAppInfoService{version: "test-version"},
	}
	f.handler = NewHandler(services, f.renderer, testConfig(), logger.Nop())
	return f
}

var (
	annIdentity = models.Identity{UserID: 1, Username: "ann", Email: "ann@example.com", Authenticated: true}
	annSession  = &models.Session{ID: "ann-session", UserID: 1}
)

// asAnn attaches a signed-in request context to r.
func asAnn(r *http.Request) *http.Request {
	rc := &models.RequestContext{Session: annSession, Identity: annIdentity}
	return r.WithContext(utils.WithRequestContext(r.Context(), rc))
}

// withURLParam sets a chi route parameter on r.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func postForm(target string, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
