package dogs

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"adoptapaw-service/internal/middleware"
	"adoptapaw-service/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Catálogo público
	r.Route("/dogs", func(dr chi.Router) {
		dr.Get("/", listDogsHandler(svc))
		dr.Get("/{dogID}", getDogHandler(svc))

		// Override directo de status (solo admin)
		dr.Patch("/{dogID}", setStatusHandler(svc))
	})

	// Alta de perros desde la consola admin
	r.Post("/admin/dogs", createDogHandler(svc))
}

type createDogRequest struct {
	Name          string `json:"name"`
	Breed         string `json:"breed"`
	Age           string `json:"age"`
	Gender        string `json:"gender"`
	Location      string `json:"location"`
	ContactNumber string `json:"contactNumber"`
	OwnerName     string `json:"ownerName"`
	ImageURL      string `json:"imageUrl"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type dogResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Breed         string    `json:"breed"`
	Age           string    `json:"age"`
	Gender        Gender    `json:"gender"`
	Location      string    `json:"location"`
	ContactNumber string    `json:"contactNumber"`
	OwnerName     string    `json:"ownerName"`
	ImageURL      string    `json:"imageUrl"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func createDogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.Role != auth.RoleAdmin {
			http.Error(w, "forbidden - admin role required", http.StatusForbidden)
			return
		}

		var req createDogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.Create(r.Context(), CreateInput{
			Name:          req.Name,
			Breed:         req.Breed,
			Age:           req.Age,
			Gender:        req.Gender,
			Location:      req.Location,
			ContactNumber: req.ContactNumber,
			OwnerName:     req.OwnerName,
			ImageURL:      req.ImageURL,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toDogResponse(d))
	}
}

func listDogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), ListFilter{
			Status: Status(r.URL.Query().Get("status")),
		})
		if err != nil {
			if errors.Is(err, ErrInvalidStatus) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]dogResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDogResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getDogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.GetByID(r.Context(), chi.URLParam(r, "dogID"))
		if err != nil {
			http.Error(w, "dog not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toDogResponse(d))
	}
}

func setStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.Role != auth.RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req setStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		d, err := svc.SetStatus(r.Context(), chi.URLParam(r, "dogID"), Status(strings.TrimSpace(req.Status)))
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidStatus):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
				http.Error(w, "dog not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toDogResponse(d))
	}
}

func toDogResponse(d Dog) dogResponse {
	return dogResponse{
		ID:            d.ID,
		Name:          d.Name,
		Breed:         d.Breed,
		Age:           d.Age,
		Gender:        d.Gender,
		Location:      d.Location,
		ContactNumber: d.ContactNumber,
		OwnerName:     d.OwnerName,
		ImageURL:      d.ImageURL,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo;
// ver el comentario equivalente en applications.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
