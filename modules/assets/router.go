package assets

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/assetgrid/assetgrid/pkg/httpserver"
	"github.com/assetgrid/assetgrid/pkg/tenant"
)

// Router exposes the asset API for the tenant resolved by the middleware
// chain.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		var params CreateParams
		if err := httpserver.DecodeJSON(req, &params); err != nil {
			httpserver.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := svc.Create(req.Context(), params)
		if err != nil {
			writeError(w, err)
			return
		}
		httpserver.JSON(w, http.StatusCreated, a)
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		filter := ListFilter{Status: req.URL.Query().Get("status")}
		if raw := req.URL.Query().Get("category_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				httpserver.JSONError(w, http.StatusBadRequest, "invalid category_id")
				return
			}
			filter.CategoryID = &id
		}
		if raw := req.URL.Query().Get("assigned_to"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				httpserver.JSONError(w, http.StatusBadRequest, "invalid assigned_to")
				return
			}
			filter.AssignedTo = &id
		}

		out, err := svc.List(req.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}
		if out == nil {
			out = []*Asset{}
		}
		httpserver.JSON(w, http.StatusOK, out)
	})

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			id, ok := parseID(w, req)
			if !ok {
				return
			}
			a, err := svc.Get(req.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			httpserver.JSON(w, http.StatusOK, a)
		})

		r.Patch("/", func(w http.ResponseWriter, req *http.Request) {
			id, ok := parseID(w, req)
			if !ok {
				return
			}
			var params UpdateParams
			if err := httpserver.DecodeJSON(req, &params); err != nil {
				httpserver.JSONError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			a, err := svc.Update(req.Context(), id, params)
			if err != nil {
				writeError(w, err)
				return
			}
			httpserver.JSON(w, http.StatusOK, a)
		})

		r.Delete("/", func(w http.ResponseWriter, req *http.Request) {
			id, ok := parseID(w, req)
			if !ok {
				return
			}
			if err := svc.Delete(req.Context(), id); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}

func parseID(w http.ResponseWriter, req *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		httpserver.JSONError(w, http.StatusBadRequest, "invalid asset id")
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenant.ErrNoTenantInContext):
		httpserver.JSONError(w, http.StatusForbidden, "tenant context required")
	case errors.Is(err, ErrAssetNotFound):
		httpserver.JSONError(w, http.StatusNotFound, "asset not found")
	case errors.Is(err, ErrTagTaken):
		httpserver.JSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrQuotaExhausted):
		httpserver.JSONError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrTagRequired),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrUnknownUser):
		httpserver.JSONError(w, http.StatusBadRequest, err.Error())
	default:
		httpserver.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}
