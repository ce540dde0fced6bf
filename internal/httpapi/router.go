package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/cors"

	"storyshare/internal/domain"
	"storyshare/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Auth     *service.AuthService
	Friends  *service.FriendsService
	Stories  *service.StoryService
	Comments *service.CommentService
	Ratings  *service.RatingService
	Users    *service.UsersService
	Reset    *service.PasswordResetService
	Email    *service.EmailService

	PublicURL    *url.URL
	CookieSecure bool
	TokenTTL     time.Duration
	CORSOrigin   string

	GoogleClientID string
	AppleServiceID string
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &api{
		logger:         logger,
		isProd:         opts.IsProd,
		dbPing:         opts.DBPing,
		authSvc:        opts.Auth,
		friendsSvc:     opts.Friends,
		storySvc:       opts.Stories,
		commentSvc:     opts.Comments,
		ratingSvc:      opts.Ratings,
		usersSvc:       opts.Users,
		resetSvc:       opts.Reset,
		emailSvc:       opts.Email,
		publicURL:      opts.PublicURL,
		cookieSecure:   opts.CookieSecure,
		tokenTTL:       opts.TokenTTL,
		googleClientID: opts.GoogleClientID,
		appleServiceID: opts.AppleServiceID,
		loginLimiter:   newLoginLimiter(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealthz)

	apiMux := http.NewServeMux()

	// users
	apiMux.HandleFunc("POST /api/v1/users/signup", a.handleSignup)
	apiMux.HandleFunc("POST /api/v1/users/login", a.handleLogin)
	apiMux.HandleFunc("GET /api/v1/users/logout", a.handleLogout)
	apiMux.HandleFunc("POST /api/v1/users/logout", a.handleLogout)
	apiMux.HandleFunc("GET /api/v1/users/isLoggedIn", a.handleIsLoggedIn)
	apiMux.HandleFunc("POST /api/v1/users/forgotPassword", a.handleForgotPassword)
	apiMux.HandleFunc("PATCH /api/v1/users/resetPassword/{token}", a.handleResetPassword)
	apiMux.HandleFunc("POST /api/v1/users/googleLogin", a.handleGoogleLogin)
	apiMux.HandleFunc("POST /api/v1/users/appleLogin", a.handleAppleLogin)

	apiMux.HandleFunc("PATCH /api/v1/users/updatePassword", a.requireAuth(a.handleUpdatePassword))
	apiMux.HandleFunc("PATCH /api/v1/users/updateProfile", a.requireAuth(a.handleUpdateProfile))
	apiMux.HandleFunc("DELETE /api/v1/users/{id}/disableUser", a.requireAuth(a.handleDisableUser))

	// addFriend is the historical alias of sendFriendRequest
	apiMux.HandleFunc("POST /api/v1/users/{id}/addFriend", a.requireAuth(a.handleSendFriendRequest))
	apiMux.HandleFunc("POST /api/v1/users/{id}/sendFriendRequest", a.requireAuth(a.handleSendFriendRequest))
	apiMux.HandleFunc("POST /api/v1/users/{id}/cancelFriendRequest", a.requireAuth(a.handleCancelFriendRequest))
	apiMux.HandleFunc("POST /api/v1/users/{id}/acceptFriendRequest", a.requireAuth(a.handleAcceptFriendRequest))
	apiMux.HandleFunc("GET /api/v1/users/getFriends", a.requireAuth(a.handleGetFriends))
	apiMux.HandleFunc("DELETE /api/v1/users/{id}/removeFriend", a.requireAuth(a.handleRemoveFriend))

	apiMux.HandleFunc("POST /api/v1/users/createStory", a.requireAuth(a.handleCreateStory))
	apiMux.HandleFunc("GET /api/v1/users/getMyStories", a.requireAuth(a.handleGetMyStories))
	apiMux.HandleFunc("GET /api/v1/users/{id}/getUserStories", a.requireAuth(a.handleGetUserStories))
	apiMux.HandleFunc("GET /api/v1/users/getFriendsStories", a.requireAuth(a.handleGetFriendsStories))

	apiMux.HandleFunc("GET /api/v1/users/{$}", a.requireAuth(a.requireRole(a.handleListUsers, domain.RoleAdmin)))

	// stories
	apiMux.HandleFunc("GET /api/v1/stories/{id}/getStory", a.requireAuth(a.handleGetStory))
	apiMux.HandleFunc("PATCH /api/v1/stories/{id}/toggleRateStory", a.requireAuth(a.handleToggleRateStory))
	apiMux.HandleFunc("POST /api/v1/stories/{id}/addComment", a.requireAuth(a.handleAddComment))
	apiMux.HandleFunc("GET /api/v1/stories/{id}/getComments", a.requireAuth(a.handleGetComments))
	apiMux.HandleFunc("PATCH /api/v1/stories/{id}/updateStory", a.requireAuth(a.handleUpdateStory))
	apiMux.HandleFunc("DELETE /api/v1/stories/{id}/disableStory", a.requireAuth(a.handleDisableStory))
	apiMux.HandleFunc("GET /api/v1/stories/{$}", a.requireAuth(a.requireRole(a.handleListStories, domain.RoleAdmin)))
	apiMux.HandleFunc("DELETE /api/v1/stories/{id}/removeStory", a.requireAuth(a.requireRole(a.handleRemoveStory, domain.RoleAdmin)))

	// comments
	apiMux.HandleFunc("PATCH /api/v1/comments/{id}/toggleRateComment", a.requireAuth(a.handleToggleRateComment))
	apiMux.HandleFunc("PATCH /api/v1/comments/{id}/updateComment", a.requireAuth(a.handleUpdateComment))
	apiMux.HandleFunc("DELETE /api/v1/comments/{id}/disableComment", a.requireAuth(a.handleDisableComment))
	apiMux.HandleFunc("DELETE /api/v1/comments/{id}/removeComment", a.requireAuth(a.requireRole(a.handleRemoveComment, domain.RoleAdmin)))

	// unmatched /api routes answer with the envelope, not the mux default
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := apiMux.Handler(r)
		if pattern == "" {
			WriteFail(w, http.StatusNotFound, "can't find "+r.URL.Path+" on this server")
			return
		}
		h.ServeHTTP(w, r)
	})

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler.ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})

	var h http.Handler = root
	if opts.CORSOrigin != "" {
		h = cors.New(cors.Options{
			AllowedOrigins:   []string{opts.CORSOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
		}).Handler(h)
	}
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	authSvc    *service.AuthService
	friendsSvc *service.FriendsService
	storySvc   *service.StoryService
	commentSvc *service.CommentService
	ratingSvc  *service.RatingService
	usersSvc   *service.UsersService
	resetSvc   *service.PasswordResetService
	emailSvc   *service.EmailService

	publicURL    *url.URL
	cookieSecure bool
	tokenTTL     time.Duration

	googleClientID string
	appleServiceID string

	loginLimiter *loginLimiter
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
