package handlers

import (
	"net/http"
	"strings"

	"github.com/wolfman30/pochita-booking/internal/backend"
	"github.com/wolfman30/pochita-booking/internal/rut"
)

// AuthHandler signs visitors in and out of the clinic backend.
type AuthHandler struct {
	base
}

// NewAuthHandler creates the identity endpoints.
func NewAuthHandler(d Deps) *AuthHandler {
	return &AuthHandler{base: newBase(d)}
}

type loginResponse struct {
	User     *backend.User `json:"user"`
	Redirect string        `json:"redirect"`
}

// Login exchanges credentials for a token pair kept in the session.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds backend.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		jsonError(w, "Ingrese usuario y contraseña", http.StatusBadRequest)
		return
	}

	toks, err := h.Backend.Login(r.Context(), creds)
	if err != nil {
		if be, ok := backend.AsError(err); ok && (be.Kind == backend.KindUnauthorized || be.Kind == backend.KindValidation) {
			jsonError(w, backend.UserMessage(be, "Credenciales inválidas"), http.StatusUnauthorized)
			return
		}
		h.backendError(w, "login", err, "Credenciales inválidas")
		return
	}

	sess := h.currentSession(r)
	if err := h.Sessions.SignIn(r.Context(), sess, toks, nil); err != nil {
		h.Logger.Error("failed to store session tokens", "error", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	user, err := h.userClient(r).Me(r.Context())
	if err != nil {
		h.backendError(w, "me", err, "No se pudo obtener el perfil")
		return
	}
	sess.User = user
	if err := h.Sessions.Save(r.Context(), sess); err != nil {
		h.Logger.Error("failed to store session profile", "error", err)
	}
	h.Logger.Info("user signed in", "user_id", user.ID, "role", user.Role)
	writeJSON(w, http.StatusOK, loginResponse{User: user, Redirect: "/dashboard/"})
}

// Register creates a client account. The RUT is checked and normalized
// before it reaches the backend.
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg backend.Registration
	if err := decodeJSON(r, &reg); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	fields := map[string][]string{}
	if !rut.Valid(reg.RUT) {
		fields["rut"] = []string{"RUT inválido"}
	}
	if reg.Password != reg.PasswordConfirm {
		fields["password_confirm"] = []string{"Las contraseñas no coinciden"}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": firstFieldMessage(fields), "fields": fields})
		return
	}
	if reg.RUT != "" {
		reg.RUT = rut.Format(reg.RUT)
	}
	if reg.Role == "" {
		reg.Role = backend.RoleClient
	}

	user, err := h.Backend.Register(r.Context(), reg)
	if err != nil {
		h.backendError(w, "register", err, "Error al registrar usuario")
		return
	}
	h.Logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":     user,
		"message":  "Registro exitoso. Ahora puede iniciar sesión.",
		"redirect": h.LoginPath,
	})
}

func firstFieldMessage(fields map[string][]string) string {
	for _, key := range []string{"rut", "password_confirm"} {
		if msgs := fields[key]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "Datos inválidos"
}

// Logout revokes the refresh token and clears the session. It always
// succeeds for the caller.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := h.currentSession(r)
	if err := h.userClient(r).Logout(r.Context()); err != nil {
		h.Logger.Warn("logout failed", "error", err)
	}
	if err := h.Sessions.SignOut(r.Context(), sess); err != nil {
		h.Logger.Warn("failed to clear session", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": h.LoginPath})
}

// Me refreshes the cached profile from the backend.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userClient(r).Me(r.Context())
	if err != nil {
		h.backendError(w, "me", err, "No se pudo obtener el perfil")
		return
	}
	sess := h.currentSession(r)
	sess.User = user
	if err := h.Sessions.Save(r.Context(), sess); err != nil {
		h.Logger.Warn("failed to cache profile", "error", err)
	}
	writeJSON(w, http.StatusOK, user)
}

// Veterinarians lists the bookable veterinarians.
// GET /api/veterinarians
func (h *AuthHandler) Veterinarians(w http.ResponseWriter, r *http.Request) {
	vets, err := h.Backend.ListVeterinarians(r.Context())
	if err != nil {
		h.backendError(w, "list_veterinarians", err, "Error al cargar veterinarios")
		return
	}
	type vetView struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email,omitempty"`
	}
	out := make([]vetView, 0, len(vets))
	for _, v := range vets {
		out = append(out, vetView{ID: v.ID, Name: v.FullName(), Email: v.Email})
	}
	writeJSON(w, http.StatusOK, out)
}

// ValidateRUT checks and formats a Chilean RUT.
// GET /api/rut/validate?rut=
func (h *AuthHandler) ValidateRUT(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("rut")
	resp := map[string]any{"valid": rut.Valid(raw)}
	if raw != "" && resp["valid"] == true {
		resp["formatted"] = rut.Format(raw)
	}
	writeJSON(w, http.StatusOK, resp)
}
