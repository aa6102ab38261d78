package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"membership-backend/internal/domain"
	"membership-backend/internal/service"
)

// maxBodyBytes bounds request bodies; applications carry a few free-text fields at most.
const maxBodyBytes = 64 << 10

type ApplicationHandler struct {
	appSvc service.ApplicationService
}

func NewApplicationHandler(appSvc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appSvc: appSvc}
}

type createApplicationResponse struct {
	Application *domain.Application `json:"application"`
	Created     bool                `json:"created"`
}

type approveRequest struct {
	VerificationCode string `json:"verification_code"`
}

type approveResponse struct {
	Application *domain.Application `json:"application"`
	Member      *domain.Member      `json:"member"`
}

type applicationResponse struct {
	Application *domain.Application `json:"application"`
}

func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var input domain.ApplicationInput
	if err := decodeBody(w, r, &input); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	app, created, err := h.appSvc.CreateApplication(r.Context(), input)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	// The token belongs in the sponsor's inbox only.
	view := *app
	view.Token = ""
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, createApplicationResponse{Application: &view, Created: created})
}

func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.appSvc.GetApplication(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationResponse{Application: app})
}

func (h *ApplicationHandler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req approveRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.appSvc.ApproveApplication(r.Context(), mux.Vars(r)["token"], claims.MemberID, req.VerificationCode)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, approveResponse{Application: res.Application, Member: res.Member})
}

func (h *ApplicationHandler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	app, err := h.appSvc.RejectApplication(r.Context(), mux.Vars(r)["token"], claims.MemberID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationResponse{Application: app})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
