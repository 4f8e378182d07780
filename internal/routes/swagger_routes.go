package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "solifin/docs"
)

const swaggerIndex = "/swagger/index.html"

func RegisterSwaggerRoutes(r chi.Router) {
	redirect := func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, swaggerIndex, http.StatusMovedPermanently)
	}
	r.Get("/swagger", redirect)
	r.Get("/swagger/", redirect)

	// Publications are long; start with every tag collapsed.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(false),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
		httpSwagger.PersistAuthorization(true),
	))
}
