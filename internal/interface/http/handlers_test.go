package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-course-platform/internal/application"
	"github.com/oksasatya/go-course-platform/internal/domain/entity"
	"github.com/oksasatya/go-course-platform/internal/infrastructure/memory"
	handlers "github.com/oksasatya/go-course-platform/internal/interface/http"
	"github.com/oksasatya/go-course-platform/internal/interface/middleware"
	"github.com/oksasatya/go-course-platform/internal/router"
	"github.com/oksasatya/go-course-platform/internal/router/modules"
	"github.com/oksasatya/go-course-platform/pkg/helpers"
	"github.com/oksasatya/go-course-platform/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type fakePictures struct{ got []byte }

func (f *fakePictures) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	f.got = b
	return "https://cdn.test/" + objectPath, err
}

type env struct {
	engine   *gin.Engine
	store    *memory.CredentialStore
	catalog  *memory.Store
	pictures *fakePictures
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := helpers.NopLogger()
	tokens, err := helpers.NewTokenIssuer(helpers.JWTOptions{SecurityKey: "0123456789abcdef0123456789abcdef", Issuer: "courses", Audience: "api"})
	require.NoError(t, err)

	store := memory.NewCredentialStore(helpers.DefaultPasswordPolicy(), bcrypt.MinCost)
	data := memory.NewStore()
	catalog := memory.NewCatalogFactory(data)
	pics := &fakePictures{}

	auth := application.NewAuthService(store, tokens, pics, nil, logger)
	courses := application.NewCourseService(catalog, nil, "", logger)
	exams := application.NewExamService(catalog, logger)

	r := gin.New()
	reg := router.NewRegistry(r)
	reg.Use(middleware.RequestIDMiddleware())
	reg.Add(
		modules.NewAuthModule(handlers.NewAuthHandler(auth, logger), tokens),
		modules.NewCourseModule(handlers.NewCourseHandler(courses, logger), tokens),
		modules.NewExamModule(handlers.NewExamHandler(exams, logger), tokens),
	)
	reg.RegisterAll()
	return &env{engine: r, store: store, catalog: data, pictures: pics}
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   json.RawMessage `json:"error"`
}

func (e *env) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(t, req)
}

func (e *env) serve(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	var out envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func registerBody(email, name, password string) map[string]any {
	return map[string]any{
		"email": email, "user_name": name, "password": password,
		"first_name": "Ada", "last_name": "Lovelace",
	}
}

func (e *env) login(t *testing.T, path, email, password string) string {
	t.Helper()
	code, out := e.do(t, http.MethodPost, path, "", map[string]any{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, string(out.Error))
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &data))
	return data.Token
}

func TestAuthEndpoints(t *testing.T) {
	e := newEnv(t)

	code, out := e.do(t, http.MethodPost, "/api/authentication/register/regular", "", registerBody("ada@x.io", "ada", "Passw0rd!"))
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, out.Success)

	code, out = e.do(t, http.MethodPost, "/api/authentication/register/regular", "", registerBody("ada@x.io", "ada2", "Passw0rd!"))
	require.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"reasons":["Email 'ada@x.io' is already taken."]}`, string(out.Error))

	code, out = e.do(t, http.MethodPost, "/api/authentication/register/regular", "", map[string]any{"email": "bad"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid payload", out.Message)

	code, _ = e.do(t, http.MethodPost, "/api/authentication/regular-user", "", map[string]any{"email": "ada@x.io", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.do(t, http.MethodPost, "/api/authentication/company-user", "", map[string]any{"email": "ada@x.io", "password": "Passw0rd!"})
	assert.Equal(t, http.StatusNotFound, code)

	token := e.login(t, "/api/authentication/regular-user", "ada@x.io", "Passw0rd!")

	code, _ = e.do(t, http.MethodPut, "/api/authentication/password", "", map[string]any{"current_password": "Passw0rd!", "new_password": "N3wPass!"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, out = e.do(t, http.MethodPut, "/api/authentication/password", token, map[string]any{"current_password": "wrong", "new_password": "N3wPass!"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"reasons":["Incorrect password."]}`, string(out.Error))

	code, _ = e.do(t, http.MethodPut, "/api/authentication/password", token, map[string]any{"current_password": "Passw0rd!", "new_password": "N3wPass!"})
	require.Equal(t, http.StatusOK, code)
	e.login(t, "/api/authentication/regular-user", "ada@x.io", "N3wPass!")

	code, _ = e.do(t, http.MethodDelete, "/api/authentication/user", token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodDelete, "/api/authentication/user", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func pictureRequest(t *testing.T, token, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="picture"; filename="me.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/authentication/picture", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUpdatePicture(t *testing.T) {
	e := newEnv(t)
	code, _ := e.do(t, http.MethodPost, "/api/authentication/register/regular", "", registerBody("ada@x.io", "ada", "Passw0rd!"))
	require.Equal(t, http.StatusCreated, code)
	token := e.login(t, "/api/authentication/regular-user", "ada@x.io", "Passw0rd!")

	code, _ = e.serve(t, pictureRequest(t, token, "text/plain", []byte("hi")))
	assert.Equal(t, http.StatusBadRequest, code)

	code, out := e.serve(t, pictureRequest(t, token, "image/png", []byte("png-bytes")))
	require.Equal(t, http.StatusOK, code)
	var data struct {
		PictureURL string `json:"picture_url"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &data))
	assert.Contains(t, data.PictureURL, "https://cdn.test/pictures/")
	assert.Equal(t, []byte("png-bytes"), e.pictures.got)

	ident, err := e.store.FindByEmail(context.Background(), "ada@x.io")
	require.NoError(t, err)
	assert.Equal(t, data.PictureURL, ident.Base().PictureURL)
}

func TestCourseAndExamEndpoints(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	code, _ := e.do(t, http.MethodPost, "/api/authentication/register/company", "", map[string]any{
		"email": "hr@acme.io", "user_name": "acme", "password": "Passw0rd!", "company_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, code)
	code, _ = e.do(t, http.MethodPost, "/api/authentication/register/regular", "", registerBody("ada@x.io", "ada", "Passw0rd!"))
	require.Equal(t, http.StatusCreated, code)
	companyToken := e.login(t, "/api/authentication/company-user", "hr@acme.io", "Passw0rd!")
	userToken := e.login(t, "/api/authentication/regular-user", "ada@x.io", "Passw0rd!")

	newCourse := map[string]any{"title": "Go", "duration_in_hours": 3, "difficulty_level": "beginner", "skills": []string{"go"}}
	code, _ = e.do(t, http.MethodPost, "/api/courses", userToken, newCourse)
	assert.Equal(t, http.StatusForbidden, code)

	code, out := e.do(t, http.MethodPost, "/api/courses", companyToken, map[string]any{"title": "Go", "duration_in_hours": 3, "difficulty_level": "expert"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid payload", out.Message)

	code, out = e.do(t, http.MethodPost, "/api/courses", companyToken, newCourse)
	require.Equal(t, http.StatusCreated, code)
	var course entity.Course
	require.NoError(t, json.Unmarshal(out.Data, &course))
	assert.Len(t, course.Skills, 1)

	code, out = e.do(t, http.MethodGet, "/api/courses?q=go&with_skills=true", "", nil)
	require.Equal(t, http.StatusOK, code)
	var items []entity.Course
	require.NoError(t, json.Unmarshal(out.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "go", items[0].Skills[0].Name)

	code, _ = e.do(t, http.MethodGet, "/api/courses?difficulty=expert", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(t, http.MethodGet, "/api/courses/"+course.ID, "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = e.do(t, http.MethodGet, "/api/courses/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, out = e.do(t, http.MethodGet, "/api/courses/search?q=go", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, out.Meta["count"])

	cat := memory.NewCatalog(e.catalog)
	require.NoError(t, cat.Exams().Add(ctx, entity.Exam{ID: "e1", CourseID: course.ID, Title: "Final", PassingScore: 60}))
	require.NoError(t, cat.Commit(ctx))

	code, _ = e.do(t, http.MethodPost, "/api/exams/e1/attempts", userToken, map[string]any{"score": 101})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(t, http.MethodPost, "/api/exams/nope/attempts", userToken, map[string]any{"score": 70})
	assert.Equal(t, http.StatusNotFound, code)

	code, out = e.do(t, http.MethodPost, "/api/exams/e1/attempts", userToken, map[string]any{"score": 0})
	require.Equal(t, http.StatusOK, code)
	var attempt entity.UserExam
	require.NoError(t, json.Unmarshal(out.Data, &attempt))
	assert.False(t, attempt.IsPassed)
	assert.Equal(t, 1, attempt.AttemptCount)

	code, out = e.do(t, http.MethodGet, "/api/exams/attempts", userToken, nil)
	require.Equal(t, http.StatusOK, code)
	var attempts []entity.UserExam
	require.NoError(t, json.Unmarshal(out.Data, &attempts))
	require.Len(t, attempts, 1)
	assert.Equal(t, "Final", attempts[0].Exam.Title)
}
