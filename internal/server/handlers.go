package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/virtualta/virtualta/internal/retriever"
	"github.com/virtualta/virtualta/pkg/types"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req types.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	chunks, err := s.retriever.Retrieve(ctx, req.Question)
	if err != nil {
		if errors.Is(err, retriever.ErrEmptyQuestion) {
			writeError(w, http.StatusBadRequest, "question must not be empty")
			return
		}
		log.Printf("server: retrieval failed: %v", err)
		writeError(w, http.StatusInternalServerError, "search error: "+err.Error())
		return
	}

	ans, err := s.assembler.Assemble(ctx, req.Question, chunks)
	if err != nil {
		log.Printf("server: generation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "generation error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "healthy",
		"index_vectors":        s.corpus.Size(),
		"metadata_entries":     s.corpus.MetadataLen(),
		"generator_configured": s.generatorName != "",
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "VirtualTA RAG API",
		"version": Version,
		"endpoints": map[string]string{
			"query":  "/query",
			"health": "/health",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
