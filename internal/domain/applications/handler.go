package applications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"adoptapaw-service/internal/domain/dogs"
	"adoptapaw-service/internal/domain/users"
	"adoptapaw-service/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Adoptante
	r.Route("/applications", func(ar chi.Router) {
		ar.Post("/", submitHandler(svc))
		ar.Get("/", listMineHandler(svc))
		ar.Get("/{applicationID}", getHandler(svc))
	})

	// Consola admin
	r.Route("/admin/applications", func(ar chi.Router) {
		ar.Get("/", adminListHandler(svc))
		ar.Patch("/{applicationID}", transitionHandler(svc))
	})
}

type submitRequest struct {
	DogID string `json:"dogId"`
}

type transitionRequest struct {
	Status         string `json:"status"`
	HomeVisitDate  string `json:"homeVisitDate"`
	FinalVisitDate string `json:"finalVisitDate"`
}

type applicationResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	DogID          string     `json:"dogId"`
	Status         Status     `json:"status"`
	HomeVisitDate  *time.Time `json:"homeVisitDate,omitempty"`
	FinalVisitDate *time.Time `json:"finalVisitDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type adminApplicationResponse struct {
	applicationResponse
	User applicantSummary `json:"user"`
	Dog  dogSummary       `json:"dog"`
}

// applicantSummary es la vista del adoptante para la consola admin.
// Nunca incluye el hash de password.
type applicantSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}

type dogSummary struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Breed    string      `json:"breed"`
	Status   dogs.Status `json:"status"`
	ImageURL string      `json:"imageUrl"`
}

// submitHandler crea una solicitud de adopción.
// @Summary      Submit adoption application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body body submitRequest true "dog to adopt"
// @Success      201 {object} applicationResponse
// @Router       /applications [post]
func submitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.DogID) == "" {
			http.Error(w, "dogId is required", http.StatusBadRequest)
			return
		}

		a, err := svc.Submit(r.Context(), claims.UserID, req.DogID)
		if err != nil {
			writeSubmitError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toApplicationResponse(a))
	}
}

func listMineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID, r.URL.Query().Get("dogId"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]applicationResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toApplicationResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		actor := Actor{UserID: claims.UserID, Role: users.Role(claims.Role)}
		a, err := svc.GetByID(r.Context(), actor, chi.URLParam(r, "applicationID"))
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, ErrForbidden):
				http.Error(w, err.Error(), http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

// adminListHandler lista todas las solicitudes con user+dog embebidos.
// @Summary      List all applications (admin)
// @Tags         applications
// @Produce      json
// @Param        q query string false "free-text filter"
// @Param        status query string false "exact status filter"
// @Success      200 {array} adminApplicationResponse
// @Router       /admin/applications [get]
func adminListHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		actor := Actor{UserID: claims.UserID, Role: users.Role(claims.Role)}
		f := AdminFilter{
			Query:  r.URL.Query().Get("q"),
			Status: Status(r.URL.Query().Get("status")),
		}

		views, err := svc.ListAll(r.Context(), actor, f)
		if err != nil {
			switch {
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden - admin role required", http.StatusForbidden)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		out := make([]adminApplicationResponse, 0, len(views))
		for _, v := range views {
			out = append(out, toAdminResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// transitionHandler mueve una solicitud al status pedido.
// @Summary      Transition application status (admin)
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        applicationID path string true "application id"
// @Param        body body transitionRequest true "target status and visit dates"
// @Success      200 {object} applicationResponse
// @Router       /admin/applications/{applicationID} [patch]
func transitionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req transitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		target := Status(strings.TrimSpace(req.Status))
		if !IsValid(target) {
			http.Error(w, "invalid status value", http.StatusBadRequest)
			return
		}

		// El PATCH trae la fecha que corresponda al destino; la otra se ignora.
		var rawDate string
		switch target {
		case StatusHomeVisitScheduled:
			rawDate = req.HomeVisitDate
		case StatusFinalVisitScheduled:
			rawDate = req.FinalVisitDate
		}

		var visitDate *time.Time
		if strings.TrimSpace(rawDate) != "" {
			t, err := parseVisitDate(rawDate)
			if err != nil {
				http.Error(w, "visit date must be RFC3339 or YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			visitDate = &t
		}

		actor := Actor{UserID: claims.UserID, Role: users.Role(claims.Role)}
		a, err := svc.Transition(r.Context(), actor, chi.URLParam(r, "applicationID"), target, visitDate)
		if err != nil {
			writeTransitionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

func writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNotVerified),
		errors.Is(err, ErrDogUnavailable),
		errors.Is(err, ErrDuplicateApplication):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrDogNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden - admin role required", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrMissingDate), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseVisitDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func toApplicationResponse(a Application) applicationResponse {
	return applicationResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		DogID:          a.DogID,
		Status:         a.Status,
		HomeVisitDate:  a.HomeVisitDate,
		FinalVisitDate: a.FinalVisitDate,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toAdminResponse(v AdminView) adminApplicationResponse {
	return adminApplicationResponse{
		applicationResponse: toApplicationResponse(v.Application),
		User: applicantSummary{
			ID:       v.User.ID,
			Name:     v.User.Name,
			Email:    v.User.Email,
			Phone:    v.User.Phone,
			Address:  v.User.Address,
			Verified: v.User.Verified,
		},
		Dog: dogSummary{
			ID:       v.Dog.ID,
			Name:     v.Dog.Name,
			Breed:    v.Dog.Breed,
			Status:   v.Dog.Status,
			ImageURL: v.Dog.ImageURL,
		},
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo;
// extraer un helper compartido recién vale la pena si sigue repitiéndose.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
