package webhooks

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/assetgrid/assetgrid/pkg/httpserver"
	"github.com/assetgrid/assetgrid/pkg/tenant"
	"github.com/assetgrid/assetgrid/pkg/webhook"
)

// createResponse carries the secret alongside the registration in the one
// place it is ever exposed.
type createResponse struct {
	*webhook.Registration
	Secret string `json:"secret"`
}

// Router exposes webhook registration management for the tenant resolved by
// the middleware chain.
func Router(svc *Service) chi.Router {
	r := chi.NewRouter()

	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		var params CreateParams
		if err := httpserver.DecodeJSON(req, &params); err != nil {
			httpserver.JSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		reg, secret, err := svc.Create(req.Context(), params)
		if err != nil {
			writeError(w, err)
			return
		}
		httpserver.JSON(w, http.StatusCreated, createResponse{Registration: reg, Secret: secret})
	})

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		regs, err := svc.List(req.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if regs == nil {
			regs = []*webhook.Registration{}
		}
		httpserver.JSON(w, http.StatusOK, regs)
	})

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			id, ok := parseID(w, req)
			if !ok {
				return
			}
			reg, err := svc.Get(req.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			httpserver.JSON(w, http.StatusOK, reg)
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
			reg, err := svc.Update(req.Context(), id, params)
			if err != nil {
				writeError(w, err)
				return
			}
			httpserver.JSON(w, http.StatusOK, reg)
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

		r.Post("/reactivate", func(w http.ResponseWriter, req *http.Request) {
			id, ok := parseID(w, req)
			if !ok {
				return
			}
			reg, err := svc.Reactivate(req.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			httpserver.JSON(w, http.StatusOK, reg)
		})

		r.Post("/test", func(w http.ResponseWriter, req *http.Request) {
			id, ok := parseID(w, req)
			if !ok {
				return
			}
			if err := svc.TestSend(req.Context(), id); err != nil {
				if errors.Is(err, webhook.ErrDeliveryFailed) || errors.Is(err, webhook.ErrInactiveRegistration) {
					httpserver.JSON(w, http.StatusOK, map[string]any{
						"delivered": false,
						"error":     err.Error(),
					})
					return
				}
				writeError(w, err)
				return
			}
			httpserver.JSON(w, http.StatusOK, map[string]any{"delivered": true})
		})
	})

	return r
}

func parseID(w http.ResponseWriter, req *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		httpserver.JSONError(w, http.StatusBadRequest, "invalid webhook id")
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenant.ErrNoTenantInContext):
		httpserver.JSONError(w, http.StatusForbidden, "tenant context required")
	case errors.Is(err, webhook.ErrRegistrationNotFound):
		httpserver.JSONError(w, http.StatusNotFound, "webhook not found")
	case errors.Is(err, webhook.ErrInvalidURL), errors.Is(err, ErrEventsRequired):
		httpserver.JSONError(w, http.StatusBadRequest, err.Error())
	default:
		httpserver.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}
