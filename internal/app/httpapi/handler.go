// Package httpapi exposes the REST API.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	app "github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/domain/target"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/metrics"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/services/accounts"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/services/savings"
	apperrors "github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/errors"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/pkg/logger"
)

// handler bundles the HTTP endpoints.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// New returns the service router: public account endpoints under /api,
// bearer-protected user endpoints under /api/v1.
func New(application *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.Use(corsMiddleware, metricsMiddleware)

	r.HandleFunc("/", h.welcome).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// OPTIONS is registered alongside POST so preflight requests reach
	// the CORS middleware, which answers them before the handler runs.
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/signup", h.signup).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/login", h.login).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/verify-account", h.verifyAccount).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/resend-verification", h.resendVerification).Methods(http.MethodPost, http.MethodOptions)

	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(authMiddleware(application.Tokens, log))
	protected.HandleFunc("/user", h.user).Methods(http.MethodGet)
	protected.HandleFunc("/user/target", h.listTargets).Methods(http.MethodGet)
	protected.HandleFunc("/user/target", h.createTarget).Methods(http.MethodPost, http.MethodOptions)
	protected.HandleFunc("/user/pay", h.deposit).Methods(http.MethodPost, http.MethodOptions)

	return r
}

func (h *handler) welcome(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, true, "Welcome to the PiggyVest API!")
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FirstName   string `json:"fname"`
		LastName    string `json:"lname"`
		DateOfBirth string `json:"dob"`
		Region      string `json:"region"`
		Email       string `json:"email"`
		Tell        string `json:"tell"`
		Password    string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, apperrors.Validation("Invalid request body"))
		return
	}

	created, err := h.app.Accounts.Signup(r.Context(), accounts.SignupParams{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		DateOfBirth: payload.DateOfBirth,
		Region:      payload.Region,
		Email:       payload.Email,
		Tell:        payload.Tell,
		Password:    payload.Password,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	metrics.RecordSignup()
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User created successfully. Please check your email/SMS for verification code.",
		"user":    created,
	})
}

func (h *handler) verifyAccount(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, apperrors.Validation("Invalid request body"))
		return
	}

	if err := h.app.Accounts.Verify(r.Context(), payload.Token); err != nil {
		h.writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, true, "Account verified successfully! You can now log in.")
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmailOrPhone string `json:"email_or_phone"`
		Password     string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, apperrors.Validation("Invalid request body"))
		return
	}

	u, token, err := h.app.Accounts.Login(r.Context(), payload.EmailOrPhone, payload.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Logged in successfully",
		"isVerified": true,
		"token":      token,
		"user":       u,
	})
}

func (h *handler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmailOrPhone string `json:"email_or_phone"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, apperrors.Validation("Invalid request body"))
		return
	}

	message, err := h.app.Accounts.Resend(r.Context(), payload.EmailOrPhone)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, true, message)
}

func (h *handler) user(w http.ResponseWriter, r *http.Request) {
	summary, err := h.app.Savings.Summarize(r.Context(), GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *handler) listTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := h.app.Savings.ListTargets(r.Context(), GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if targets == nil {
		targets = []target.Target{}
	}
	writeJSON(w, http.StatusOK, targets)
}

func (h *handler) createTarget(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string   `json:"name"`
		Description string   `json:"des"`
		Objective   float64  `json:"objective"`
		Deadline    string   `json:"deadline"`
		Fine        *float64 `json:"fine"`
		Category    string   `json:"category"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, apperrors.Validation("Invalid request body"))
		return
	}

	created, err := h.app.Savings.CreateTarget(r.Context(), GetUserID(r.Context()), savings.CreateTargetParams{
		Name:        payload.Name,
		Description: payload.Description,
		Objective:   payload.Objective,
		Deadline:    payload.Deadline,
		Fine:        payload.Fine,
		Category:    payload.Category,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Target created successfully",
		"target":  created,
	})
}

func (h *handler) deposit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TargetID string  `json:"targetId"`
		Amount   float64 `json:"amount"`
		Number   string  `json:"number"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, apperrors.Validation("Invalid request body"))
		return
	}

	updated, tx, err := h.app.Savings.Deposit(r.Context(), GetUserID(r.Context()), payload.TargetID, payload.Amount, payload.Number)
	if err != nil {
		h.writeError(w, err)
		return
	}

	metrics.RecordDeposit()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Deposited to target successfully",
		"transaction": tx,
		"target":      updated,
	})
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, success bool, message string) {
	writeJSON(w, status, map[string]interface{}{"success": success, "message": message})
}

// writeError converts a service error into the response envelope.
// Anything that is not a ServiceError becomes a generic 500 so no
// internal detail reaches the caller.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	svcErr := apperrors.GetServiceError(err)
	if svcErr == nil {
		h.log.WithError(err).Error("unclassified error")
		svcErr = apperrors.Internal("Internal server error. Please try again later.", err)
	}
	if svcErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}

	body := map[string]interface{}{"success": false, "message": svcErr.Message}
	for k, v := range svcErr.Details {
		body[k] = v
	}
	writeJSON(w, svcErr.HTTPStatus, body)
}
