package compatibility

import "github.com/go-chi/chi/v5"

// Routes is mounted at /api/compatibility.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeChart)
	r.Get("/{group}", h.ServeGroup)
	return r
}
