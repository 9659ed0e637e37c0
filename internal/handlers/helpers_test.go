package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shariar-hasan/instaflow/backend/internal/middleware"
	"github.com/shariar-hasan/instaflow/backend/internal/models"
	"github.com/shariar-hasan/instaflow/backend/internal/notifier"
	"github.com/shariar-hasan/instaflow/backend/internal/realtime"
	"github.com/shariar-hasan/instaflow/backend/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	e             *echo.Echo
	clock         *fakeClock
	users         *fakeUserRepo
	posts         *fakePostRepo
	stories       *fakeStoryRepo
	messages      *fakeMessageRepo
	notifications *fakeNotificationRepo
	notifier      *notifier.Notifier
	hub           *realtime.Hub
	uploader      *storage.Uploader
}

func newTestEnv(t *testing.T, users ...*models.User) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	clock := &fakeClock{}
	userRepo := newFakeUserRepo(users...)
	notificationRepo := &fakeNotificationRepo{}

	uploader, err := storage.NewUploader(t.TempDir())
	require.NoError(t, err)

	return &testEnv{
		e:             echo.New(),
		clock:         clock,
		users:         userRepo,
		posts:         newFakePostRepo(clock),
		stories:       newFakeStoryRepo(clock),
		messages:      newFakeMessageRepo(clock, userRepo),
		notifications: notificationRepo,
		notifier:      notifier.New(notificationRepo, log),
		hub:           realtime.NewHub(log),
		uploader:      uploader,
	}
}

func (env *testEnv) userHandler() *UserHandler {
	return NewUserHandler(env.users, env.posts, env.stories, env.notifier, env.uploader)
}

func (env *testEnv) postHandler() *PostHandler {
	return NewPostHandler(env.posts, env.users, env.notifier, env.uploader)
}

func (env *testEnv) storyHandler() *StoryHandler {
	return NewStoryHandler(env.stories, env.users, env.notifier, env.uploader)
}

func (env *testEnv) messageHandler() *MessageHandler {
	return NewMessageHandler(env.messages, env.users, env.notifier, env.hub, env.uploader)
}

// drainNotifications stops the notifier and returns everything it
// persisted. Call at most once per test, after the handlers under test
// have run.
func (env *testEnv) drainNotifications() []*models.Notification {
	env.notifier.Close()
	return env.notifications.all()
}

// newContext builds an echo context for req acting as user. A nil user
// simulates a request where the access gate did not resolve anyone.
func (env *testEnv) newContext(req *http.Request, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.ContextKeyUser, user)
		c.Set(middleware.ContextKeyUserID, user.ID)
	}
	return c, rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func formRequest(method, target, form string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

// multipartRequest builds a multipart request with optional form fields
// and a single file part carrying an explicit Content-Type
func multipartRequest(t *testing.T, method, target string, fields map[string]string, fileField, fileName, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+fileName+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

// httpError unwraps the echo error returned by a handler
func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return he
}
