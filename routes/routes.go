package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"platelog/controllers"
)

func SetupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Recognition pipeline
	r.Post("/analysis", controllers.AnalyzeImage)
	r.Post("/analysis/confirm", controllers.ConfirmDish)

	// Nutrition log
	r.Post("/entries", controllers.CreateEntry)
	r.Get("/entries", controllers.GetEntries)
	r.Get("/entries/{entry_id}", controllers.GetEntry)
	r.Delete("/entries/{entry_id}", controllers.DeleteEntry)
	r.Delete("/entries", controllers.DeleteAllEntries)

	// Reports and advice
	r.Get("/reports", controllers.GetReport)
	r.Post("/advice", controllers.GetAdvice)

	// Server-Sent Events stream of log changes
	r.Get("/sse/entries", EntriesSSE)

	return r
}
