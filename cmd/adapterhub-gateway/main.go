// Command adapterhub-gateway is a thin HTTP front door over the video and
// speech-to-text adapters: one route submits a Kling generation job,
// another polls it, a third transcribes an uploaded audio clip through
// Deepgram. It exists to give the adapters an HTTP-reachable demo
// surface, not as a production API gateway.
package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/adapterhub/commonrt/pkg/adapter"
	"github.com/adapterhub/commonrt/pkg/stt/deepgram"
	"github.com/adapterhub/commonrt/pkg/video/kling"
)

func main() {
	klingClient, err := kling.New(kling.Config{})
	if err != nil {
		log.Fatalf("kling: %v", err)
	}
	deepgramClient, err := deepgram.New(deepgram.Config{})
	if err != nil {
		log.Fatalf("deepgram: %v", err)
	}

	srv := &server{kling: klingClient, deepgram: deepgramClient}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/", handleIndex)
	r.Post("/v1/video/generate", srv.handleGenerate)
	r.Get("/v1/video/jobs/{jobID}", srv.handlePoll)
	r.Post("/v1/stt/transcribe", srv.handleTranscribe)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("adapterhub-gateway listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}

type server struct {
	kling    *kling.Client
	deepgram *deepgram.Client
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{
		"service": "adapterhub-gateway",
		"version": "1.0.0",
	})
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt      string `json:"prompt"`
		AspectRatio string `json:"aspect_ratio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobID, warnings, err := s.kling.Generate(r.Context(), adapter.GenerationConfig{
		Prompt:      req.Prompt,
		AspectRatio: adapter.AspectRatio(req.AspectRatio),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id":   jobID,
		"warnings": warnings,
	})
}

func (s *server) handlePoll(w http.ResponseWriter, r *http.Request) {
	jobID := adapter.JobID(chi.URLParam(r, "jobID"))

	status, err := s.kling.Poll(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]interface{}{
		"job_id": status.JobID,
		"state":  status.State,
	}
	if status.State == adapter.JobSucceeded {
		result, err := s.kling.VideoResult(r.Context(), jobID)
		if err != nil {
			writeError(w, err)
			return
		}
		resp["videos"] = result.Videos
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transcript, err := s.deepgram.Transcribe(r.Context(), audio, deepgram.TranscriptionOptions{
		MimeType: r.Header.Get("Content-Type"),
		ModelID:  r.URL.Query().Get("model"),
		Language: r.URL.Query().Get("language"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(transcript)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if adapter.IsVideoError(err, adapter.VideoInvalidInput) || adapter.IsSTTError(err, adapter.STTInvalidInput) {
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
