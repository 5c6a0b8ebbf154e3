package tenants

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/assetgrid/assetgrid/pkg/httpserver"
	"github.com/assetgrid/assetgrid/pkg/tenant"
)

// Router exposes the administrative tenant API. It is meant to be mounted
// outside the tenant-resolution middleware; callers act on tenants they name
// explicitly, not on the one in their request context.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Post("/", createHandler(svc))
	r.Get("/{id}", getHandler(svc))
	r.Patch("/{id}", updateHandler(svc))
	r.Delete("/{id}", deactivateHandler(svc))

	return r
}

func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params RegisterParams
		if err := httpserver.DecodeJSON(r, &params); err != nil {
			httpserver.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		t, err := svc.Register(r.Context(), params)
		if err != nil {
			writeError(w, err)
			return
		}
		httpserver.JSON(w, http.StatusCreated, t)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpserver.JSONError(w, http.StatusBadRequest, "invalid tenant id")
			return
		}

		t, err := svc.GetByIdentifier(r.Context(), id.String())
		if err != nil {
			writeError(w, err)
			return
		}
		httpserver.JSON(w, http.StatusOK, t)
	}
}

func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpserver.JSONError(w, http.StatusBadRequest, "invalid tenant id")
			return
		}

		var params UpdateParams
		if err := httpserver.DecodeJSON(r, &params); err != nil {
			httpserver.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		t, err := svc.Update(r.Context(), id, params)
		if err != nil {
			writeError(w, err)
			return
		}
		httpserver.JSON(w, http.StatusOK, t)
	}
}

func deactivateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httpserver.JSONError(w, http.StatusBadRequest, "invalid tenant id")
			return
		}

		if err := svc.Deactivate(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenant.ErrTenantNotFound):
		httpserver.JSONError(w, http.StatusNotFound, "tenant not found")
	case errors.Is(err, ErrSubdomainTaken):
		httpserver.JSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidSubdomain),
		errors.Is(err, ErrNameRequired),
		errors.Is(err, tenant.ErrInvalidIdentifier):
		httpserver.JSONError(w, http.StatusBadRequest, err.Error())
	default:
		httpserver.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}
