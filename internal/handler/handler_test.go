package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/harxxhilgg/univent/internal/handler"
	"github.com/harxxhilgg/univent/internal/models"
	pkgerrors "github.com/harxxhilgg/univent/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	signupFn func(ctx context.Context, username, email, password string) (*models.User, string, error)
	loginFn  func(ctx context.Context, email, password string) (*models.User, string, error)
	deleteFn func(ctx context.Context, email string) error
}

func (f *fakeAuthService) Signup(ctx context.Context, username, email, password string) (*models.User, string, error) {
	return f.signupFn(ctx, username, email, password)
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeAuthService) DeleteAccount(ctx context.Context, email string) error {
	return f.deleteFn(ctx, email)
}

type fakeEventService struct {
	createFn       func(ctx context.Context, event models.Event) (*models.Event, error)
	getAllFn       func(ctx context.Context) ([]models.Event, error)
	getByCreatorFn func(ctx context.Context, email string) ([]models.Event, error)
	uploadFn       func(ctx context.Context, image []byte, filename string) (string, error)
}

func (f *fakeEventService) Create(ctx context.Context, event models.Event) (*models.Event, error) {
	return f.createFn(ctx, event)
}

func (f *fakeEventService) GetAll(ctx context.Context) ([]models.Event, error) {
	return f.getAllFn(ctx)
}

func (f *fakeEventService) GetByCreator(ctx context.Context, email string) ([]models.Event, error) {
	return f.getByCreatorFn(ctx, email)
}

func (f *fakeEventService) UploadImage(ctx context.Context, image []byte, filename string) (string, error) {
	return f.uploadFn(ctx, image, filename)
}

func newRouter(auth *fakeAuthService, events *fakeEventService) *mux.Router {
	h := handler.NewHandler(auth, events)
	r := mux.NewRouter()
	h.RegisterAuthRoutes(r.PathPrefix("/api/auth").Subrouter())
	ev := r.PathPrefix("/api/events").Subrouter()
	h.RegisterEventRoutes(ev, ev)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLoginHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		auth := &fakeAuthService{
			loginFn: func(ctx context.Context, email, password string) (*models.User, string, error) {
				assert.Equal(t, "a@b.com", email)
				assert.Equal(t, "hunter22", password)
				return &models.User{ID: 1, Username: "Bo", Email: email}, "tok123", nil
			},
		}
		rec := doJSON(t, newRouter(auth, &fakeEventService{}), http.MethodPost, "/api/auth/login",
			map[string]string{"email": "a@b.com", "password": "hunter22"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var resp struct {
			Message string      `json:"message"`
			Token   string      `json:"token"`
			User    models.User `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Login successful", resp.Message)
		assert.Equal(t, "tok123", resp.Token)
		assert.Equal(t, "a@b.com", resp.User.Email)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		auth := &fakeAuthService{
			loginFn: func(ctx context.Context, email, password string) (*models.User, string, error) {
				return nil, "", pkgerrors.ErrInvalidCredentials
			},
		}
		rec := doJSON(t, newRouter(auth, &fakeEventService{}), http.MethodPost, "/api/auth/login",
			map[string]string{"email": "a@b.com", "password": "wrong"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		auth := &fakeAuthService{}
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		newRouter(auth, &fakeEventService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSignupHandler(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		auth := &fakeAuthService{
			signupFn: func(ctx context.Context, username, email, password string) (*models.User, string, error) {
				return &models.User{ID: 2, Username: username, Email: email}, "tok456", nil
			},
		}
		rec := doJSON(t, newRouter(auth, &fakeEventService{}), http.MethodPost, "/api/auth/signup",
			map[string]string{"username": "Bo", "email": "a@b.com", "password": "hunter22"})

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Message string      `json:"message"`
			Token   string      `json:"token"`
			User    models.User `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "User created successfully", resp.Message)
		assert.Equal(t, "tok456", resp.Token)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		auth := &fakeAuthService{
			signupFn: func(ctx context.Context, username, email, password string) (*models.User, string, error) {
				return nil, "", pkgerrors.ErrEmailTaken
			},
		}
		rec := doJSON(t, newRouter(auth, &fakeEventService{}), http.MethodPost, "/api/auth/signup",
			map[string]string{"username": "Bo", "email": "a@b.com", "password": "hunter22"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		// The app matches on this message to tell "taken" apart from other 400s.
		assert.Contains(t, resp.Message, "already registered")
	})
}

func TestDeleteAccountHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		auth := &fakeAuthService{
			deleteFn: func(ctx context.Context, email string) error {
				assert.Equal(t, "a@b.com", email)
				return nil
			},
		}
		rec := doJSON(t, newRouter(auth, &fakeEventService{}), http.MethodDelete, "/api/auth/deleteAccount",
			map[string]string{"email": "a@b.com"})

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("GuestForbidden", func(t *testing.T) {
		auth := &fakeAuthService{
			deleteFn: func(ctx context.Context, email string) error {
				return pkgerrors.ErrGuestRestricted
			},
		}
		rec := doJSON(t, newRouter(auth, &fakeEventService{}), http.MethodDelete, "/api/auth/deleteAccount",
			map[string]string{"email": "user.guest@univent.com"})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestCreateEventHandler(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		events := &fakeEventService{
			createFn: func(ctx context.Context, event models.Event) (*models.Event, error) {
				event.ID = 7
				return &event, nil
			},
		}
		rec := doJSON(t, newRouter(&fakeAuthService{}, events), http.MethodPost, "/api/events/create",
			models.Event{
				Title:          "Tech Meetup",
				Organizer:      "CS Club",
				EventDate:      "2026-09-12",
				EventTime:      "18:00",
				Location:       "Main Hall",
				CreatedByEmail: "a@b.com",
			})

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Message string       `json:"message"`
			Event   models.Event `json:"event"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int32(7), resp.Event.ID)
	})

	t.Run("DuplicateTitle", func(t *testing.T) {
		events := &fakeEventService{
			createFn: func(ctx context.Context, event models.Event) (*models.Event, error) {
				return nil, pkgerrors.ErrEventExists
			},
		}
		rec := doJSON(t, newRouter(&fakeAuthService{}, events), http.MethodPost, "/api/events/create",
			models.Event{Title: "Tech Meetup"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GuestForbidden", func(t *testing.T) {
		events := &fakeEventService{
			createFn: func(ctx context.Context, event models.Event) (*models.Event, error) {
				return nil, pkgerrors.ErrGuestRestricted
			},
		}
		rec := doJSON(t, newRouter(&fakeAuthService{}, events), http.MethodPost, "/api/events/create",
			models.Event{Title: "Tech Meetup"})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGetAllEventsHandler(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		events := &fakeEventService{
			getAllFn: func(ctx context.Context) ([]models.Event, error) {
				return []models.Event{{ID: 1, Title: "Tech Meetup"}}, nil
			},
		}
		rec := doJSON(t, newRouter(&fakeAuthService{}, events), http.MethodGet, "/api/events/getAllEvents", nil)

		assert.Equal(t, http.StatusOK, rec.Code)

		var list []models.Event
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "Tech Meetup", list[0].Title)
	})

	t.Run("EmptyListIsArray", func(t *testing.T) {
		events := &fakeEventService{
			getAllFn: func(ctx context.Context) ([]models.Event, error) {
				return nil, nil
			},
		}
		rec := doJSON(t, newRouter(&fakeAuthService{}, events), http.MethodGet, "/api/events/getAllEvents", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		// nil slices must serialize as [], not null, for the list screens.
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})
}

func TestGetEventsByUserHandler(t *testing.T) {
	events := &fakeEventService{
		getByCreatorFn: func(ctx context.Context, email string) ([]models.Event, error) {
			assert.Equal(t, "a@b.com", email)
			return []models.Event{{ID: 2, CreatedByEmail: email}}, nil
		},
	}
	rec := doJSON(t, newRouter(&fakeAuthService{}, events), http.MethodGet, "/api/events/user/a@b.com", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var list []models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestUploadImageHandler(t *testing.T) {
	buildForm := func(t *testing.T, field string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile(field, "poster.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("png-bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		return &buf, mw.FormDataContentType()
	}

	t.Run("Success", func(t *testing.T) {
		events := &fakeEventService{
			uploadFn: func(ctx context.Context, image []byte, filename string) (string, error) {
				assert.Equal(t, []byte("png-bytes"), image)
				assert.Equal(t, "poster.png", filename)
				return "https://i.ibb.co/x/poster.png", nil
			},
		}
		body, contentType := buildForm(t, "image")
		req := httptest.NewRequest(http.MethodPost, "/api/events/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newRouter(&fakeAuthService{}, events).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			URL string `json:"url"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "https://i.ibb.co/x/poster.png", resp.URL)
	})

	t.Run("MissingFile", func(t *testing.T) {
		body, contentType := buildForm(t, "not-image")
		req := httptest.NewRequest(http.MethodPost, "/api/events/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newRouter(&fakeAuthService{}, &fakeEventService{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
