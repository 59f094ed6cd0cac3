package handlers

import "github.com/go-chi/chi/v5"

// Register вешает страницу и её формы на роутер
func (h *PageHandler) Register(r chi.Router) {
	r.Get("/", h.Index)             // GET /
	r.Get("/static/app.css", h.CSS) // GET /static/app.css
	r.Post("/view", h.SetView)      // POST /view

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.AddTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Post("/complete", h.CompleteTask) // POST /tasks/{id}/complete
			r.Post("/delete", h.DeleteTask)     // POST /tasks/{id}/delete
		})
	})

	r.Post("/history/{id}/delete", h.DeleteHistoryTask) // POST /history/{id}/delete
}

// Register вешает JSON API; роутер обычно смонтирован на /api
func (s *TaskHandler) Register(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.GetTasks)  // GET /tasks
		r.Post("/", s.PostTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.DeleteTask)         // DELETE /tasks/{id}
			r.Post("/complete", s.CompleteTask) // POST /tasks/{id}/complete
		})
	})

	r.Get("/history", s.GetHistory)                // GET /history
	r.Delete("/history/{id}", s.DeleteHistoryTask) // DELETE /history/{id}
	r.Get("/summary", s.GetSummary)                // GET /summary
	r.Get("/view", s.GetView)                      // GET /view
	r.Put("/view", s.PutView)                      // PUT /view
}
