package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/unicorn-emporium/internal/models"
	"github.com/terra-clan/unicorn-emporium/internal/quiz"
)

// Academy handlers

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	modules := s.academy.ListModules()

	// the listing carries titles and summaries only
	for i := range modules {
		modules[i].Content = ""
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"modules": modules,
		"total":   len(modules),
	})
}

func (s *Server) handleGetModule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "module id must be a positive integer")
		return
	}

	module, ok := s.academy.GetModule(id)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "module not found")
		return
	}
	respondJSON(w, http.StatusOK, module)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	questions := s.academy.Questions()

	public := make([]models.PublicQuestion, len(questions))
	for i, q := range questions {
		public[i] = q.Public()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"questions":     public,
		"total":         len(public),
		"passThreshold": quiz.PassThreshold,
	})
}

func (s *Server) handleScoreQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	questions := s.academy.Questions()
	if len(req.Answers) > len(questions) {
		respondError(w, http.StatusBadRequest, "validation_error", "more answers than questions")
		return
	}

	score := quiz.Score(questions, req.Answers)
	respondJSON(w, http.StatusOK, quiz.NewResult(score, len(questions)))
}
