package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"tribune/internal/accounts"
	"tribune/internal/auth"
	"tribune/internal/database/boltstore"
	"tribune/internal/events"
	"tribune/internal/feed"
	"tribune/internal/identity"
	"tribune/internal/join"
	"tribune/internal/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler *Handler
	store   *boltstore.Store
	authSvc *auth.Service
	modSvc  *moderation.Service
	joinSvc *join.Service

	member    *identity.Principal
	manager   *identity.Principal
	president *identity.Principal
	founder   *identity.Principal
}

func newFixture(t *testing.T) *fixture {
	store, err := boltstore.Open(boltstore.Options{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	users := store.UserStore()
	modStore := store.ModerationStore()
	policy := identity.NewPolicy("founder@example.com")

	accountsSvc := accounts.NewService(users, policy)
	accountsSvc.SetAudit(modStore)

	authSvc, err := auth.NewService(users, store.SessionStore(), auth.Config{
		JWTSecret: "test-secret-not-for-production-use",
	})
	require.NoError(t, err)

	modSvc := moderation.NewService(modStore, policy)
	feedSvc := feed.NewService(modStore, users)
	eventsSvc := events.NewService(store.EventStore(), policy)
	joinSvc := join.NewService(store.JoinStore(), policy)

	h := NewHandler(authSvc, accountsSvc, users, policy)
	h.SetModeration(modSvc, modStore)
	h.SetFeed(feedSvc)
	h.SetEvents(eventsSvc)
	h.SetJoin(joinSvc)

	f := &fixture{
		handler: h,
		store:   store,
		authSvc: authSvc,
		modSvc:  modSvc,
		joinSvc: joinSvc,
		member: &identity.Principal{
			ID: "member", Email: "member@example.com", DisplayName: "Member",
			Role: identity.RoleMember, CreatedAt: time.Now(),
		},
		manager: &identity.Principal{
			ID: "manager", Email: "manager@example.com", DisplayName: "Manager",
			Role: identity.RoleMediaManager, CreatedAt: time.Now(),
		},
		president: &identity.Principal{
			ID: "president", Email: "president@example.com", DisplayName: "President",
			Role: identity.RolePresident, CreatedAt: time.Now(),
		},
		founder: &identity.Principal{
			ID: "founder", Email: "founder@example.com", DisplayName: "Founder",
			Role: identity.RolePresident, CreatedAt: time.Now(),
		},
	}
	ctx := context.Background()
	for _, p := range []*identity.Principal{f.member, f.manager, f.president, f.founder} {
		require.NoError(t, users.CreateUser(ctx, *p))
	}
	return f
}

// request builds a JSON request, optionally authenticated as p, with path
// values populated from pathValues.
func request(method, target string, body any, p *identity.Principal, pathValues map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func TestAuthHandlers(t *testing.T) {
	f := newFixture(t)

	t.Run("signup issues a session and returns the member", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleSignup(rec, request(http.MethodPost, "/api/signup", map[string]string{
			"email":        "newbie@example.com",
			"display_name": "Newbie",
			"password":     "password123",
		}, nil, nil))

		require.Equal(t, http.StatusCreated, rec.Code)
		var body principalView
		decodeBody(t, rec, &body)
		assert.Equal(t, "newbie@example.com", body.Email)
		assert.Equal(t, "member", body.Role)
		assert.Equal(t, "normal", body.Status)

		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
	})

	t.Run("duplicate signup conflicts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleSignup(rec, request(http.MethodPost, "/api/signup", map[string]string{
			"email":    "newbie@example.com",
			"password": "password123",
		}, nil, nil))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("login with bad credentials", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleLogin(rec, request(http.MethodPost, "/api/login", map[string]string{
			"email":    "newbie@example.com",
			"password": "wrong",
		}, nil, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me requires a session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleMe(rec, request(http.MethodGet, "/api/me", nil, nil, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me returns the derived status", func(t *testing.T) {
		until := time.Now().Add(time.Hour)
		timedOut := *f.member
		timedOut.Suspended = true
		timedOut.TimeoutUntil = &until

		rec := httptest.NewRecorder()
		f.handler.HandleMe(rec, request(http.MethodGet, "/api/me", nil, &timedOut, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body principalView
		decodeBody(t, rec, &body)
		assert.Equal(t, "timed_out", body.Status)
		require.NotNil(t, body.TimeoutUntil)
	})

	t.Run("logout always succeeds", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleLogout(rec, request(http.MethodPost, "/api/logout", nil, nil, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}

func TestVoiceHandlers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("publish requires auth", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleVoiceCreate(rec, request(http.MethodPost, "/api/voices", map[string]string{
			"title": "Anonymous", "body": "nope",
		}, nil, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("publish requires a title", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleVoiceCreate(rec, request(http.MethodPost, "/api/voices", map[string]string{
			"body": "no title",
		}, f.member, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	var voiceID string
	t.Run("member publishes a voice", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleVoiceCreate(rec, request(http.MethodPost, "/api/voices", map[string]string{
			"title": "First post", "body": "Hello everyone",
		}, f.member, nil))

		require.Equal(t, http.StatusCreated, rec.Code)
		var v moderation.Voice
		decodeBody(t, rec, &v)
		assert.Equal(t, f.member.ID, v.AuthorID)
		assert.Equal(t, moderation.VoiceStateNormal, v.State)
		voiceID = v.ID
	})

	t.Run("feed lists the voice", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleFeed(rec, request(http.MethodGet, "/api/feed", nil, nil, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Voices []moderation.Voice `json:"voices"`
		}
		decodeBody(t, rec, &body)
		require.Len(t, body.Voices, 1)
		assert.Equal(t, voiceID, body.Voices[0].ID)
	})

	t.Run("get by id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleVoiceGet(rec, request(http.MethodGet, "/api/voices/"+voiceID, nil, nil, map[string]string{"id": voiceID}))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("reporting flags after three distinct reporters", func(t *testing.T) {
		for i := 0; i < moderation.ReportThreshold; i++ {
			reporter := &identity.Principal{ID: fmt.Sprintf("reporter%d", i), Role: identity.RoleMember}
			rec := httptest.NewRecorder()
			f.handler.HandleReport(rec, request(http.MethodPost, "/api/voices/"+voiceID+"/report", map[string]string{
				"reason": "spam",
			}, reporter, map[string]string{"id": voiceID}))
			require.Equal(t, http.StatusOK, rec.Code)
		}

		v, err := f.store.ModerationStore().GetVoice(ctx, voiceID)
		require.NoError(t, err)
		assert.Equal(t, moderation.VoiceStateUnderReview, v.State)
	})

	t.Run("flagged voice leaves the feed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleFeed(rec, request(http.MethodGet, "/api/feed", nil, nil, nil))
		var body struct {
			Voices []moderation.Voice `json:"voices"`
		}
		decodeBody(t, rec, &body)
		assert.Empty(t, body.Voices)
	})

	t.Run("flagged voice is 404 for strangers but visible to its author", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleVoiceGet(rec, request(http.MethodGet, "/api/voices/"+voiceID, nil, nil, map[string]string{"id": voiceID}))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = httptest.NewRecorder()
		f.handler.HandleVoiceGet(rec, request(http.MethodGet, "/api/voices/"+voiceID, nil, f.member, map[string]string{"id": voiceID}))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		f.handler.HandleVoiceGet(rec, request(http.MethodGet, "/api/voices/"+voiceID, nil, f.manager, map[string]string{"id": voiceID}))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("self report rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleReport(rec, request(http.MethodPost, "/api/voices/"+voiceID+"/report", map[string]string{
			"reason": "testing",
		}, f.member, map[string]string{"id": voiceID}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate report conflicts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		reporter := &identity.Principal{ID: "reporter0", Role: identity.RoleMember}
		f.handler.HandleReport(rec, request(http.MethodPost, "/api/voices/"+voiceID+"/report", map[string]string{
			"reason": "again",
		}, reporter, map[string]string{"id": voiceID}))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("author deletes the voice", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleVoiceDelete(rec, request(http.MethodDelete, "/api/voices/"+voiceID, nil, f.member, map[string]string{"id": voiceID}))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		f.handler.HandleVoiceGet(rec, request(http.MethodGet, "/api/voices/"+voiceID, nil, f.member, map[string]string{"id": voiceID}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminUserHandlers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("member cannot suspend", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleSuspendUser(rec, request(http.MethodPost, "/api/admin/users/manager/suspend", nil, f.member, map[string]string{"id": "manager"}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("president suspends and restores", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleSuspendUser(rec, request(http.MethodPost, "/api/admin/users/member/suspend", nil, f.president, map[string]string{"id": "member"}))
		require.Equal(t, http.StatusOK, rec.Code)

		target, err := f.store.UserStore().GetUser(ctx, f.member.ID)
		require.NoError(t, err)
		assert.True(t, target.Suspended)

		rec = httptest.NewRecorder()
		f.handler.HandleRestoreUser(rec, request(http.MethodPost, "/api/admin/users/member/restore", nil, f.president, map[string]string{"id": "member"}))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("timeout validates minutes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleTimeoutUser(rec, request(http.MethodPost, "/api/admin/users/member/timeout", map[string]int{
			"minutes": 0,
		}, f.president, map[string]string{"id": "member"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = httptest.NewRecorder()
		f.handler.HandleTimeoutUser(rec, request(http.MethodPost, "/api/admin/users/member/timeout", map[string]int{
			"minutes": 15,
		}, f.president, map[string]string{"id": "member"}))
		require.Equal(t, http.StatusOK, rec.Code)

		target, err := f.store.UserStore().GetUser(ctx, f.member.ID)
		require.NoError(t, err)
		require.NotNil(t, target.TimeoutUntil)
	})

	t.Run("protected account rejected with 403", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleSuspendUser(rec, request(http.MethodPost, "/api/admin/users/founder/suspend", nil, f.president, map[string]string{"id": "founder"}))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		f.handler.HandleDeleteUser(rec, request(http.MethodDelete, "/api/admin/users/founder", nil, f.president, map[string]string{"id": "founder"}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("role update", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleUpdateRole(rec, request(http.MethodPost, "/api/admin/users/member/role", map[string]string{
			"role": "media_manager",
		}, f.president, map[string]string{"id": "member"}))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		f.handler.HandleUpdateRole(rec, request(http.MethodPost, "/api/admin/users/member/role", map[string]string{
			"role": "overlord",
		}, f.president, map[string]string{"id": "member"}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete bans the email", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleDeleteUser(rec, request(http.MethodDelete, "/api/admin/users/member", nil, f.president, map[string]string{"id": "member"}))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		f.handler.HandleBanList(rec, request(http.MethodGet, "/api/admin/bans", nil, f.president, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Bans []identity.BanRecord `json:"bans"`
		}
		decodeBody(t, rec, &body)
		require.Len(t, body.Bans, 1)
		assert.Equal(t, f.member.Email, body.Bans[0].Email)
	})

	t.Run("audit log is president only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleAuditLog(rec, request(http.MethodGet, "/api/admin/audit", nil, f.manager, nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		f.handler.HandleAuditLog(rec, request(http.MethodGet, "/api/admin/audit", nil, f.president, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Entries []moderation.AuditEntry `json:"entries"`
		}
		decodeBody(t, rec, &body)
		assert.NotEmpty(t, body.Entries)
	})

	t.Run("user list shows derived statuses", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleAdminUserList(rec, request(http.MethodGet, "/api/admin/users", nil, f.president, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Users []principalView `json:"users"`
		}
		decodeBody(t, rec, &body)
		// member was deleted above
		assert.Len(t, body.Users, 3)
	})
}

func TestAdminVoiceHandlers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	voice, err := f.modSvc.Publish(ctx, f.member, "Contested", "body", "")
	require.NoError(t, err)

	t.Run("member cannot hide", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleHideVoice(rec, request(http.MethodPost, "/api/admin/voices/"+voice.ID+"/hide", nil, f.member, map[string]string{"id": voice.ID}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("manager hides and unhides", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleHideVoice(rec, request(http.MethodPost, "/api/admin/voices/"+voice.ID+"/hide", nil, f.manager, map[string]string{"id": voice.ID}))
		require.Equal(t, http.StatusOK, rec.Code)

		v, err := f.store.ModerationStore().GetVoice(ctx, voice.ID)
		require.NoError(t, err)
		assert.True(t, v.Hidden)

		rec = httptest.NewRecorder()
		f.handler.HandleUnhideVoice(rec, request(http.MethodPost, "/api/admin/voices/"+voice.ID+"/unhide", nil, f.manager, map[string]string{"id": voice.ID}))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("restore is president only and clears review", func(t *testing.T) {
		for i := 0; i < moderation.ReportThreshold; i++ {
			reporter := &identity.Principal{ID: fmt.Sprintf("reporter%d", i), Role: identity.RoleMember}
			require.NoError(t, f.modSvc.SubmitReport(ctx, reporter, voice.ID, "spam"))
		}

		rec := httptest.NewRecorder()
		f.handler.HandleRestoreVoice(rec, request(http.MethodPost, "/api/admin/voices/"+voice.ID+"/restore", nil, f.manager, map[string]string{"id": voice.ID}))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		f.handler.HandleRestoreVoice(rec, request(http.MethodPost, "/api/admin/voices/"+voice.ID+"/restore", nil, f.president, map[string]string{"id": voice.ID}))
		require.Equal(t, http.StatusOK, rec.Code)

		v, err := f.store.ModerationStore().GetVoice(ctx, voice.ID)
		require.NoError(t, err)
		assert.Equal(t, moderation.VoiceStateNormal, v.State)
	})

	t.Run("missing voice is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleHideVoice(rec, request(http.MethodPost, "/api/admin/voices/nope/hide", nil, f.manager, map[string]string{"id": "nope"}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestJoinHandlers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("valid application", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleJoinSubmit(rec, request(http.MethodPost, "/api/join", map[string]string{
			"name": "Alice", "email": "alice@example.com", "message": "Hi!",
		}, nil, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("honeypot pretends success without storing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleJoinSubmit(rec, request(http.MethodPost, "/api/join", map[string]string{
			"name": "Bot", "email": "bot@example.com", "website": "https://spam.example",
		}, nil, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		reqs, err := f.store.JoinStore().ListJoinRequests(ctx)
		require.NoError(t, err)
		assert.Len(t, reqs, 1, "only the real application is stored")
	})

	t.Run("invalid application", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleJoinSubmit(rec, request(http.MethodPost, "/api/join", map[string]string{
			"email": "missing-name@example.com",
		}, nil, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list and dismiss are president only", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleJoinRequestList(rec, request(http.MethodGet, "/api/admin/join-requests", nil, f.member, nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		f.handler.HandleJoinRequestList(rec, request(http.MethodGet, "/api/admin/join-requests", nil, f.president, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Requests []join.Request `json:"requests"`
		}
		decodeBody(t, rec, &body)
		require.Len(t, body.Requests, 1)

		rec = httptest.NewRecorder()
		f.handler.HandleJoinRequestDismiss(rec, request(http.MethodDelete, "/api/admin/join-requests/"+body.Requests[0].ID, nil, f.president, map[string]string{"id": body.Requests[0].ID}))
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestEventHandlers(t *testing.T) {
	f := newFixture(t)

	t.Run("member cannot create", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleEventCreate(rec, request(http.MethodPost, "/api/events", map[string]string{
			"title": "Pub night", "starts_at": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		}, f.member, nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("bad timestamp rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleEventCreate(rec, request(http.MethodPost, "/api/events", map[string]string{
			"title": "Pub night", "starts_at": "next friday",
		}, f.manager, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	var eventID string
	t.Run("manager creates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleEventCreate(rec, request(http.MethodPost, "/api/events", map[string]string{
			"title":     "Pub night",
			"location":  "The Crown",
			"starts_at": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		}, f.manager, nil))
		require.Equal(t, http.StatusCreated, rec.Code)

		var ev events.Event
		decodeBody(t, rec, &ev)
		assert.Equal(t, f.manager.ID, ev.CreatedBy)
		eventID = ev.ID
	})

	t.Run("list is public", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleEventList(rec, request(http.MethodGet, "/api/events", nil, nil, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Events []events.Event `json:"events"`
		}
		decodeBody(t, rec, &body)
		assert.Len(t, body.Events, 1)
	})

	t.Run("delete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleEventDelete(rec, request(http.MethodDelete, "/api/events/"+eventID, nil, f.manager, map[string]string{"id": eventID}))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSuspendedPage(t *testing.T) {
	f := newFixture(t)

	t.Run("anonymous view", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleSuspendedPage(rec, request(http.MethodGet, "/suspended", nil, nil, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("timed out principal sees the deadline", func(t *testing.T) {
		until := time.Now().Add(time.Hour)
		p := *f.member
		p.Suspended = true
		p.TimeoutUntil = &until

		rec := httptest.NewRecorder()
		f.handler.HandleSuspendedPage(rec, request(http.MethodGet, "/suspended", nil, &p, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		decodeBody(t, rec, &body)
		assert.Equal(t, "timed_out", body["account_status"])
		assert.Contains(t, body, "timeout_until")
	})
}
