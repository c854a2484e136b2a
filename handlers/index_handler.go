package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ctfboard/scoreboard/services"
	"github.com/ctfboard/scoreboard/session"
	"github.com/golang-jwt/jwt/v4"
)

// SessionCookieName carries the session id between requests.
const SessionCookieName = "scoreboard_session"

// IndexHandler serves the public registration and login actions.
type IndexHandler struct {
	registration services.RegistrationService
	login        services.LoginService
	configGate   services.ConfigGate
	sessions     session.Store
	jwtSecret    []byte
	logger       *slog.Logger
}

func NewIndexHandler(
	registration services.RegistrationService,
	login services.LoginService,
	configGate services.ConfigGate,
	sessions session.Store,
	jwtSecret string,
	logger *slog.Logger,
) *IndexHandler {
	return &IndexHandler{
		registration: registration,
		login:        login,
		configGate:   configGate,
		sessions:     sessions,
		jwtSecret:    []byte(jwtSecret),
		logger:       logger,
	}
}

type registerRequest struct {
	TeamName     string   `json:"teamname"`
	Password     string   `json:"password"`
	Token        string   `json:"token"`
	Logo         string   `json:"logo"`
	IsCustomLogo bool     `json:"isCustomLogo"`
	LogoType     string   `json:"logoType"`
	Names        []string `json:"names"`
	Emails       []string `json:"emails"`
}

type loginRequest struct {
	TeamID   int    `json:"team_id"`
	TeamName string `json:"teamname"`
	Password string `json:"password"`
}

// RegisterTeam handles the register_team action: a new team without roster
// data.
func (h *IndexHandler) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, false)
}

// RegisterNames handles the register_names action: registration with a roster
// of paired player names and emails.
func (h *IndexHandler) RegisterNames(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, true)
}

func (h *IndexHandler) register(w http.ResponseWriter, r *http.Request, withRoster bool) {
	var req registerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, h.logger, err)
		return
	}
	if req.Password == "" {
		badRequestResponse(w, h.logger, errors.New("password is required"))
		return
	}
	if withRoster && len(req.Names) != len(req.Emails) {
		badRequestResponse(w, h.logger, errors.New("names and emails must have the same length"))
		return
	}

	sess, err := h.openSession(w, r)
	if err != nil {
		mapServiceError(w, h.logger, err)
		return
	}

	// LogoType is a client claim about the file extension; validation and the
	// stored extension come from sniffing the decoded bytes, so the hint is
	// dropped here.
	input := services.RegisterInput{
		TeamName:     req.TeamName,
		Password:     req.Password,
		Token:        req.Token,
		Logo:         req.Logo,
		IsCustomLogo: req.IsCustomLogo,
		WithRoster:   withRoster,
		Names:        req.Names,
		Emails:       req.Emails,
	}

	result, err := h.registration.Register(r.Context(), sess, input, clientIP(r))
	if err != nil {
		mapServiceError(w, h.logger, err)
		return
	}

	h.writeLoginSuccess(w, sess, result, "Registration successful")
}

// LoginTeam handles the login_team action. Which identifier the caller must
// supply depends on the login_select flag: "1" means direct numeric team id,
// anything else means login by team name.
func (h *IndexHandler) LoginTeam(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, h.logger, err)
		return
	}

	loginSelect, err := h.configGate.Get(r.Context(), services.FlagLoginSelect)
	if err != nil {
		mapServiceError(w, h.logger, err)
		return
	}

	teamID := req.TeamID
	if loginSelect != services.LoginSelectByID {
		teamID, err = h.login.ResolveTeamID(r.Context(), req.TeamName)
		if err != nil {
			mapServiceError(w, h.logger, err)
			return
		}
	}

	sess, err := h.openSession(w, r)
	if err != nil {
		mapServiceError(w, h.logger, err)
		return
	}

	result, err := h.login.Login(r.Context(), sess, teamID, req.Password, clientIP(r))
	if err != nil {
		mapServiceError(w, h.logger, err)
		return
	}

	h.writeLoginSuccess(w, sess, result, "Login successful")
}

// Me returns the authenticated team's session identity. Guarded by the JWT
// middleware.
func (h *IndexHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, err := h.openSession(w, r)
	if err != nil || !sess.IsActive() {
		mapServiceError(w, h.logger, services.ErrLoginFailed)
		return
	}

	identity := sess.Identity()
	response := jsonResponse{
		"team_id":    identity.TeamID,
		"name":       identity.Name,
		"csrf_token": identity.CSRFToken,
		"admin":      identity.Admin,
	}
	if err := writeJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("failed to write response", slog.Any("error", err))
	}
}

func (h *IndexHandler) openSession(w http.ResponseWriter, r *http.Request) (*session.Handle, error) {
	var id string
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		id = cookie.Value
	}
	sess, err := session.Open(r.Context(), h.sessions, id)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return sess, nil
}

func (h *IndexHandler) writeLoginSuccess(w http.ResponseWriter, sess *session.Handle, result *services.LoginResult, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID(),
		Path:     "/",
		MaxAge:   int(session.DefaultTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	role := "team"
	if result.Team.IsAdmin {
		role = "admin"
	}
	claims := jwt.MapClaims{
		"team_id": result.Team.ID,
		"name":    result.Team.Name,
		"role":    role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	if err != nil {
		mapServiceError(w, h.logger, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	response := actionResult{
		Status:   "ok",
		Message:  message,
		Redirect: result.Redirect,
		Token:    tokenString,
	}
	if err := writeJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("failed to write response", slog.Any("error", err))
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
