package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/application"
	"github.com/nthomsencph/wikiworlds/internal/domain"
	"github.com/nthomsencph/wikiworlds/internal/timeline"
	"github.com/rs/zerolog"
)

const sessionCookieName = "ww_session"

type contextKey string

const identityKey contextKey = "identity"

type Handler struct {
	auth    *application.AuthService
	tenancy *application.TenancyService
	catalog *application.CatalogService
	content *application.ContentService
	logger  zerolog.Logger
}

func NewRouter(auth *application.AuthService, tenancy *application.TenancyService, catalog *application.CatalogService, content *application.ContentService, logger zerolog.Logger) http.Handler {
	h := &Handler{auth: auth, tenancy: tenancy, catalog: catalog, content: content, logger: logger}
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", h.handleRegister)
		api.Post("/auth/login", h.handleLogin)
		api.Post("/auth/logout", h.handleLogout)

		api.Group(func(authed chi.Router) {
			authed.Use(h.requireAuth)

			authed.Get("/auth/whoami", h.handleWhoAmI)
			authed.Get("/activity", h.handleListActivity)

			authed.Get("/weaves", h.handleListWeaves)
			authed.Post("/weaves", h.handleCreateWeave)
			authed.Get("/weaves/{weaveID}", h.handleGetWeave)
			authed.Post("/weaves/{weaveID}/users", h.handleInviteWeaveUser)
			authed.Get("/weaves/{weaveID}/worlds", h.handleListWeaveWorlds)
			authed.Post("/weaves/{weaveID}/worlds", h.handleCreateWorld)

			authed.Get("/worlds", h.handleListWorlds)
			authed.Get("/worlds/{worldID}", h.handleGetWorld)
			authed.Put("/worlds/{worldID}", h.handleUpdateWorld)
			authed.Delete("/worlds/{worldID}", h.handleDeleteWorld)
			authed.Get("/worlds/{worldID}/members", h.handleListWorldMembers)
			authed.Post("/worlds/{worldID}/members", h.handleAddWorldMember)
			authed.Delete("/worlds/{worldID}/members/{userID}", h.handleRemoveWorldMember)

			authed.Get("/worlds/{worldID}/entry-types", h.handleListEntryTypes)
			authed.Post("/worlds/{worldID}/entry-types", h.handleCreateEntryType)
			authed.Get("/entry-types/{entryTypeID}", h.handleGetEntryType)
			authed.Put("/entry-types/{entryTypeID}", h.handleUpdateEntryType)
			authed.Delete("/entry-types/{entryTypeID}", h.handleDeleteEntryType)
			authed.Get("/entry-types/{entryTypeID}/fields", h.handleListFieldDefinitions)
			authed.Post("/entry-types/{entryTypeID}/fields", h.handleCreateFieldDefinition)
			authed.Post("/entry-types/{entryTypeID}/fields/reorder", h.handleReorderFieldDefinitions)
			authed.Put("/fields/{fieldID}", h.handleUpdateFieldDefinition)
			authed.Delete("/fields/{fieldID}", h.handleDeleteFieldDefinition)

			authed.Get("/worlds/{worldID}/entries", h.handleListEntries)
			authed.Post("/worlds/{worldID}/entries", h.handleCreateEntry)
			authed.Get("/worlds/{worldID}/entries/roots", h.handleListRootEntries)
			authed.Get("/worlds/{worldID}/entries/by-slug/{slug}", h.handleGetEntryBySlug)
			authed.Post("/worlds/{worldID}/character-counts", h.handleCharacterCounts)
			authed.Get("/entries/{entryID}", h.handleGetEntry)
			authed.Put("/entries/{entryID}", h.handleUpdateEntry)
			authed.Delete("/entries/{entryID}", h.handleDeleteEntry)
			authed.Post("/entries/{entryID}/move", h.handleMoveEntry)
			authed.Get("/entries/{entryID}/children", h.handleListChildren)
			authed.Get("/entries/{entryID}/ancestors", h.handleListAncestors)

			authed.Get("/entries/{entryID}/values", h.handleListFieldValues)
			authed.Put("/entries/{entryID}/values", h.handleSetFieldValue)
			authed.Get("/entries/{entryID}/values/{fieldID}/history", h.handleFieldValueHistory)
			authed.Get("/entries/{entryID}/values/{fieldID}/overlaps", h.handleFieldValueOverlaps)
			authed.Delete("/entries/{entryID}/values/{valueID}", h.handleDeleteFieldValue)

			authed.Get("/entries/{entryID}/blocks", h.handleListBlocks)
			authed.Post("/entries/{entryID}/blocks", h.handleCreateBlock)
			authed.Post("/entries/{entryID}/blocks/batch", h.handleCreateBlocks)
			authed.Put("/blocks/{blockID}", h.handleUpdateBlock)
			authed.Delete("/blocks/{blockID}", h.handleDeleteBlock)

			authed.Get("/worlds/{worldID}/reference-types", h.handleListReferenceTypes)
			authed.Post("/worlds/{worldID}/reference-types", h.handleCreateReferenceType)
			authed.Get("/entries/{entryID}/references", h.handleListReferences)
			authed.Post("/entries/{entryID}/references", h.handleCreateReference)
			authed.Delete("/entries/{entryID}/references/{referenceID}", h.handleDeleteReference)
		})
	})

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := h.authenticateRequest(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

// authenticateRequest tries a bearer API token first, then the session
// cookie.
func (h *Handler) authenticateRequest(r *http.Request) (domain.Identity, bool) {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[7:])
		identity, err := h.auth.AuthenticateBearerToken(r.Context(), token)
		if err == nil {
			return identity, true
		}
	}

	c, err := r.Cookie(sessionCookieName)
	if err == nil && strings.TrimSpace(c.Value) != "" {
		identity, authErr := h.auth.AuthenticateSession(r.Context(), c.Value)
		if authErr == nil {
			return identity, true
		}
	}

	return domain.Identity{}, false
}

func identityFromContext(ctx context.Context) domain.Identity {
	identity, _ := ctx.Value(identityKey).(domain.Identity)
	return identity
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	u, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": u.ID, "email": u.Email})
}

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Mode      string `json:"mode"`
	TokenName string `json:"token_name"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = "token"
	}

	if mode == "session" {
		u, token, err := h.auth.LoginWithSession(r.Context(), req.Email, req.Password, 12*time.Hour)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
			return
		}
		h.setSessionCookie(w, token)
		writeJSON(w, http.StatusOK, map[string]any{"user_id": u.ID, "email": u.Email, "mode": "session"})
		return
	}

	u, token, err := h.auth.LoginWithAPIToken(r.Context(), req.Email, req.Password, req.TokenName, nil)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": u.ID, "email": u.Email, "token": token, "mode": "token"})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookieName)
	if err == nil && c.Value != "" {
		_ = h.auth.LogoutSession(r.Context(), c.Value)
		h.clearSessionCookie(w)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     identity.User.ID,
		"email":  identity.User.Email,
		"weaves": identity.Weaves,
		"worlds": identity.Worlds,
	})
}

func (h *Handler) handleListActivity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.auth.ListActivityLogs(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

type createWeaveRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *Handler) handleCreateWeave(w http.ResponseWriter, r *http.Request) {
	var req createWeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	weave, err := h.tenancy.CreateWeave(r.Context(), identityFromContext(r.Context()), req.Name, req.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, weave)
}

func (h *Handler) handleListWeaves(w http.ResponseWriter, r *http.Request) {
	weaves, err := h.tenancy.ListWeaves(r.Context(), identityFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weaves)
}

func (h *Handler) handleGetWeave(w http.ResponseWriter, r *http.Request) {
	weaveID, err := pathUUID(r, "weaveID")
	if err != nil {
		writeError(w, err)
		return
	}
	weave, err := h.tenancy.GetWeave(r.Context(), identityFromContext(r.Context()), weaveID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weave)
}

type inviteWeaveUserRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

func (h *Handler) handleInviteWeaveUser(w http.ResponseWriter, r *http.Request) {
	weaveID, err := pathUUID(r, "weaveID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req inviteWeaveUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	member, err := h.tenancy.InviteWeaveUser(r.Context(), identityFromContext(r.Context()), weaveID, req.UserID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

type createWorldRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (h *Handler) handleCreateWorld(w http.ResponseWriter, r *http.Request) {
	weaveID, err := pathUUID(r, "weaveID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createWorldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	world, err := h.tenancy.CreateWorld(r.Context(), identityFromContext(r.Context()), weaveID, req.Name, req.Slug, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, world)
}

func (h *Handler) handleListWeaveWorlds(w http.ResponseWriter, r *http.Request) {
	weaveID, err := pathUUID(r, "weaveID")
	if err != nil {
		writeError(w, err)
		return
	}
	worlds, err := h.tenancy.ListWorlds(r.Context(), identityFromContext(r.Context()), &weaveID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, worlds)
}

func (h *Handler) handleListWorlds(w http.ResponseWriter, r *http.Request) {
	worlds, err := h.tenancy.ListWorlds(r.Context(), identityFromContext(r.Context()), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, worlds)
}

func (h *Handler) handleGetWorld(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	world, err := h.tenancy.GetWorld(r.Context(), identityFromContext(r.Context()), worldID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, world)
}

type updateWorldRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

func (h *Handler) handleUpdateWorld(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateWorldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	world, err := h.tenancy.UpdateWorld(r.Context(), identityFromContext(r.Context()), domain.World{
		ID:          worldID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, world)
}

func (h *Handler) handleDeleteWorld(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.tenancy.DeleteWorld(r.Context(), identityFromContext(r.Context()), worldID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type addWorldMemberRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

func (h *Handler) handleAddWorldMember(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req addWorldMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	member, err := h.tenancy.AddWorldMember(r.Context(), identityFromContext(r.Context()), worldID, req.UserID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *Handler) handleListWorldMembers(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	members, err := h.tenancy.ListWorldMembers(r.Context(), identityFromContext(r.Context()), worldID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handler) handleRemoveWorldMember(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.tenancy.RemoveWorldMember(r.Context(), identityFromContext(r.Context()), worldID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleListEntryTypes(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	types, err := h.catalog.ListEntryTypes(r.Context(), identityFromContext(r.Context()), worldID, queryInt(r, "skip", 0), queryInt(r, "limit", 100))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

type entryTypeRequest struct {
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	ParentID      *uuid.UUID `json:"parent_id"`
	DefaultTitle  string     `json:"default_title"`
	TitleProperty string     `json:"title_property"`
}

func (h *Handler) handleCreateEntryType(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req entryTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	created, err := h.catalog.CreateEntryType(r.Context(), identityFromContext(r.Context()), domain.EntryType{
		WorldID:       worldID,
		Name:          req.Name,
		Slug:          req.Slug,
		ParentID:      req.ParentID,
		DefaultTitle:  req.DefaultTitle,
		TitleProperty: req.TitleProperty,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetEntryType(w http.ResponseWriter, r *http.Request) {
	entryTypeID, err := pathUUID(r, "entryTypeID")
	if err != nil {
		writeError(w, err)
		return
	}
	et, err := h.catalog.GetEntryType(r.Context(), identityFromContext(r.Context()), entryTypeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, et)
}

func (h *Handler) handleUpdateEntryType(w http.ResponseWriter, r *http.Request) {
	entryTypeID, err := pathUUID(r, "entryTypeID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req entryTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	updated, err := h.catalog.UpdateEntryType(r.Context(), identityFromContext(r.Context()), domain.EntryType{
		ID:            entryTypeID,
		Name:          req.Name,
		Slug:          req.Slug,
		ParentID:      req.ParentID,
		DefaultTitle:  req.DefaultTitle,
		TitleProperty: req.TitleProperty,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteEntryType(w http.ResponseWriter, r *http.Request) {
	entryTypeID, err := pathUUID(r, "entryTypeID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteEntryType(r.Context(), identityFromContext(r.Context()), entryTypeID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleListFieldDefinitions(w http.ResponseWriter, r *http.Request) {
	entryTypeID, err := pathUUID(r, "entryTypeID")
	if err != nil {
		writeError(w, err)
		return
	}
	defs, err := h.catalog.ListFieldDefinitions(r.Context(), identityFromContext(r.Context()), entryTypeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, defs)
}

type fieldDefinitionRequest struct {
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	Description   string         `json:"description"`
	FieldType     string         `json:"field_type"`
	Config        map[string]any `json:"config"`
	IsRequired    bool           `json:"is_required"`
	IsTemporal    bool           `json:"is_temporal"`
	DefaultValue  map[string]any `json:"default_value"`
	ShowInTable   bool           `json:"show_in_table"`
	ShowInPreview bool           `json:"show_in_preview"`
}

func (h *Handler) handleCreateFieldDefinition(w http.ResponseWriter, r *http.Request) {
	entryTypeID, err := pathUUID(r, "entryTypeID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req fieldDefinitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	created, err := h.catalog.CreateFieldDefinition(r.Context(), identityFromContext(r.Context()), domain.FieldDefinition{
		EntryTypeID:   entryTypeID,
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		FieldType:     domain.FieldType(req.FieldType),
		Config:        req.Config,
		IsRequired:    req.IsRequired,
		IsTemporal:    req.IsTemporal,
		DefaultValue:  req.DefaultValue,
		ShowInTable:   req.ShowInTable,
		ShowInPreview: req.ShowInPreview,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type reorderFieldsRequest struct {
	OrderedIDs []uuid.UUID `json:"ordered_ids"`
}

func (h *Handler) handleReorderFieldDefinitions(w http.ResponseWriter, r *http.Request) {
	entryTypeID, err := pathUUID(r, "entryTypeID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req reorderFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	if err := h.catalog.ReorderFieldDefinitions(r.Context(), identityFromContext(r.Context()), entryTypeID, req.OrderedIDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleUpdateFieldDefinition(w http.ResponseWriter, r *http.Request) {
	fieldID, err := pathUUID(r, "fieldID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req fieldDefinitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	updated, err := h.catalog.UpdateFieldDefinition(r.Context(), identityFromContext(r.Context()), domain.FieldDefinition{
		ID:            fieldID,
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Config:        req.Config,
		IsRequired:    req.IsRequired,
		DefaultValue:  req.DefaultValue,
		ShowInTable:   req.ShowInTable,
		ShowInPreview: req.ShowInPreview,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteFieldDefinition(w http.ResponseWriter, r *http.Request) {
	fieldID, err := pathUUID(r, "fieldID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteFieldDefinition(r.Context(), identityFromContext(r.Context()), fieldID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type entryRequest struct {
	EntryTypeID uuid.UUID         `json:"entry_type_id"`
	ParentID    *uuid.UUID        `json:"parent_id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Icon        string            `json:"icon"`
	CoverImage  string            `json:"cover_image"`
	Timeline    timeline.Interval `json:"timeline"`
	Position    float64           `json:"position"`
}

func (h *Handler) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	entry, err := h.content.CreateEntry(r.Context(), identityFromContext(r.Context()), domain.Entry{
		WorldID:     worldID,
		EntryTypeID: req.EntryTypeID,
		Title:       req.Title,
		Slug:        req.Slug,
		Icon:        req.Icon,
		CoverImage:  req.CoverImage,
		Timeline:    req.Timeline,
		Position:    req.Position,
	}, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleListEntries(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	filter := domain.EntryFilter{
		Skip:  queryInt(r, "skip", 0),
		Limit: queryInt(r, "limit", 100),
	}
	if id, ok, err := queryUUID(r, "entry_type_id"); err != nil {
		writeError(w, err)
		return
	} else if ok {
		filter.EntryTypeID = &id
	}
	if year, ok, err := queryYear(r); err != nil {
		writeError(w, err)
		return
	} else if ok {
		filter.TimelineYear = &year
	}
	entries, err := h.content.ListEntries(r.Context(), identityFromContext(r.Context()), worldID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleListRootEntries(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	var entryTypeID *uuid.UUID
	if id, ok, err := queryUUID(r, "entry_type_id"); err != nil {
		writeError(w, err)
		return
	} else if ok {
		entryTypeID = &id
	}
	entries, err := h.content.ListRootEntries(r.Context(), identityFromContext(r.Context()), worldID, entryTypeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := h.content.GetEntry(r.Context(), identityFromContext(r.Context()), entryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleGetEntryBySlug(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := h.content.GetEntryBySlug(r.Context(), identityFromContext(r.Context()), worldID, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	entry, err := h.content.UpdateEntry(r.Context(), identityFromContext(r.Context()), domain.Entry{
		ID:         entryID,
		Title:      req.Title,
		Slug:       req.Slug,
		Icon:       req.Icon,
		CoverImage: req.CoverImage,
		Timeline:   req.Timeline,
		Position:   req.Position,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type moveEntryRequest struct {
	NewParentID *uuid.UUID `json:"new_parent_id"`
}

func (h *Handler) handleMoveEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req moveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	entry, err := h.content.MoveEntry(r.Context(), identityFromContext(r.Context()), entryID, req.NewParentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	recursive := r.URL.Query().Get("recursive") == "true"
	if err := h.content.DeleteEntry(r.Context(), identityFromContext(r.Context()), entryID, recursive); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleListChildren(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	recursive := r.URL.Query().Get("recursive") == "true"
	entries, err := h.content.ListChildren(r.Context(), identityFromContext(r.Context()), entryID, recursive)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleListAncestors(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.content.ListAncestors(r.Context(), identityFromContext(r.Context()), entryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type characterCountsRequest struct {
	EntryIDs []uuid.UUID `json:"entry_ids"`
}

func (h *Handler) handleCharacterCounts(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req characterCountsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	counts, err := h.content.CharacterCounts(r.Context(), identityFromContext(r.Context()), worldID, req.EntryIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

type setFieldValueRequest struct {
	FieldDefinitionID uuid.UUID         `json:"field_definition_id"`
	Value             map[string]any    `json:"value"`
	Timeline          timeline.Interval `json:"timeline"`
}

func (h *Handler) handleSetFieldValue(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req setFieldValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	value, err := h.content.SetFieldValue(r.Context(), identityFromContext(r.Context()), domain.FieldValue{
		EntryID:           entryID,
		FieldDefinitionID: req.FieldDefinitionID,
		Value:             req.Value,
		Timeline:          req.Timeline,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, value)
}

func (h *Handler) handleListFieldValues(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	var timelineYear *int
	if year, ok, err := queryYear(r); err != nil {
		writeError(w, err)
		return
	} else if ok {
		timelineYear = &year
	}
	values, err := h.content.ListFieldValues(r.Context(), identityFromContext(r.Context()), entryID, timelineYear)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (h *Handler) handleFieldValueHistory(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	fieldID, err := pathUUID(r, "fieldID")
	if err != nil {
		writeError(w, err)
		return
	}
	history, err := h.content.ListFieldValueHistory(r.Context(), identityFromContext(r.Context()), entryID, fieldID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) handleFieldValueOverlaps(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	fieldID, err := pathUUID(r, "fieldID")
	if err != nil {
		writeError(w, err)
		return
	}
	overlaps, err := h.content.DetectFieldValueOverlaps(r.Context(), identityFromContext(r.Context()), entryID, fieldID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overlaps)
}

func (h *Handler) handleDeleteFieldValue(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	valueID, err := pathUUID(r, "valueID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.content.DeleteFieldValue(r.Context(), identityFromContext(r.Context()), entryID, valueID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type blockRequest struct {
	ParentBlockID   *uuid.UUID        `json:"parent_block_id"`
	BlockType       string            `json:"block_type"`
	Content         map[string]any    `json:"content"`
	Timeline        timeline.Interval `json:"timeline"`
	Position        float64           `json:"position"`
	IsCollapsed     bool              `json:"is_collapsed"`
	BackgroundColor string            `json:"background_color"`
	TextColor       string            `json:"text_color"`
}

func (req blockRequest) block() domain.Block {
	return domain.Block{
		ParentBlockID:   req.ParentBlockID,
		BlockType:       domain.BlockType(req.BlockType),
		Content:         req.Content,
		Timeline:        req.Timeline,
		Position:        req.Position,
		IsCollapsed:     req.IsCollapsed,
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
	}
}

func (h *Handler) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	value := req.block()
	value.EntryID = entryID
	block, err := h.content.CreateBlock(r.Context(), identityFromContext(r.Context()), value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

type createBlocksRequest struct {
	Blocks []blockRequest `json:"blocks"`
}

func (h *Handler) handleCreateBlocks(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createBlocksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	values := make([]domain.Block, 0, len(req.Blocks))
	for _, b := range req.Blocks {
		values = append(values, b.block())
	}
	blocks, err := h.content.CreateBlocks(r.Context(), identityFromContext(r.Context()), entryID, values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, blocks)
}

func (h *Handler) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	var timelineYear *int
	if year, ok, err := queryYear(r); err != nil {
		writeError(w, err)
		return
	} else if ok {
		timelineYear = &year
	}
	blocks, err := h.content.ListEntryBlocks(r.Context(), identityFromContext(r.Context()), entryID, timelineYear)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}

func (h *Handler) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	blockID, err := pathUUID(r, "blockID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	value := req.block()
	value.ID = blockID
	block, err := h.content.UpdateBlock(r.Context(), identityFromContext(r.Context()), value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func (h *Handler) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	blockID, err := pathUUID(r, "blockID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.content.DeleteBlock(r.Context(), identityFromContext(r.Context()), blockID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type referenceTypeRequest struct {
	Name        string `json:"name"`
	InverseName string `json:"inverse_name"`
	Slug        string `json:"slug"`
	InverseSlug string `json:"inverse_slug"`
	Description string `json:"description"`
}

func (h *Handler) handleCreateReferenceType(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req referenceTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	created, err := h.content.CreateReferenceType(r.Context(), identityFromContext(r.Context()), domain.ReferenceType{
		WorldID:     worldID,
		Name:        req.Name,
		InverseName: req.InverseName,
		Slug:        req.Slug,
		InverseSlug: req.InverseSlug,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleListReferenceTypes(w http.ResponseWriter, r *http.Request) {
	worldID, err := pathUUID(r, "worldID")
	if err != nil {
		writeError(w, err)
		return
	}
	types, err := h.content.ListReferenceTypes(r.Context(), identityFromContext(r.Context()), worldID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

type createReferenceRequest struct {
	ReferenceTypeID uuid.UUID         `json:"reference_type_id"`
	TargetEntryID   uuid.UUID         `json:"target_entry_id"`
	Timeline        timeline.Interval `json:"timeline"`
}

func (h *Handler) handleCreateReference(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createReferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidPayload(w)
		return
	}
	reference, err := h.content.CreateReference(r.Context(), identityFromContext(r.Context()), domain.Reference{
		ReferenceTypeID: req.ReferenceTypeID,
		SourceEntryID:   entryID,
		TargetEntryID:   req.TargetEntryID,
		Timeline:        req.Timeline,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reference)
}

func (h *Handler) handleListReferences(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	incoming := r.URL.Query().Get("direction") == "incoming"
	var timelineYear *int
	if year, ok, err := queryYear(r); err != nil {
		writeError(w, err)
		return
	} else if ok {
		timelineYear = &year
	}
	references, err := h.content.ListEntryReferences(r.Context(), identityFromContext(r.Context()), entryID, incoming, timelineYear)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, references)
}

func (h *Handler) handleDeleteReference(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryID")
	if err != nil {
		writeError(w, err)
		return
	}
	referenceID, err := pathUUID(r, "referenceID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.content.DeleteReference(r.Context(), identityFromContext(r.Context()), entryID, referenceID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

var errBadParam = errors.New("invalid parameter")

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		return uuid.Nil, errBadParam
	}
	return id, nil
}

func queryUUID(r *http.Request, key string) (uuid.UUID, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, errBadParam
	}
	return id, true, nil
}

func queryYear(r *http.Request) (int, bool, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, false, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, errBadParam
	}
	return year, true, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeInvalidPayload(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
}

// writeError maps sentinel domain errors onto HTTP statuses. Anything
// else is treated as a validation failure.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateSlug):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvariant):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
