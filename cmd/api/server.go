package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"robocall-qa-go/internal/elevenlabs"
	"robocall-qa-go/internal/logger"
	"robocall-qa-go/internal/processor"
	"robocall-qa-go/internal/transcript"
	"robocall-qa-go/internal/types"
)

const maxBody = 10 << 20

type server struct {
	proc *processor.Processor
	log  *logger.Logger
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.log.WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/format", s.handleFormat)
	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

type formatResponse struct {
	ConversationID string                `json:"conversation_id,omitempty"`
	Lines          []types.FormattedLine `json:"lines"`
	Text           string                `json:"text"`
}

func (s *server) handleFormat(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "format")
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	doc, ok := decodeDocument(w, r, reqLog)
	if !ok {
		return
	}
	lines := transcript.FormatDocument(doc)
	reqLog.WithField("lines", len(lines)).Info("transcript formatted")
	writeJSON(w, http.StatusOK, formatResponse{
		ConversationID: doc.ConversationID,
		Lines:          lines,
		Text:           transcript.Text(lines),
	}, reqLog)
}

func (s *server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	reqLog := s.log.WithRequest(r).WithField("handler", "evaluate")
	reqLog.Info("evaluate request received")

	var (
		res processor.Result
		err error
	)
	switch r.Method {
	case http.MethodGet:
		id := r.URL.Query().Get("conversation_id")
		if id == "" {
			reqLog.Warn("missing conversation_id")
			http.Error(w, "missing conversation_id", http.StatusBadRequest)
			return
		}
		withAudio, _ := strconv.ParseBool(r.URL.Query().Get("audio"))
		reqLog = reqLog.WithField("conversation_id", id)
		res, err = s.proc.ProcessConversation(r.Context(), id, withAudio)
	case http.MethodPost:
		doc, ok := decodeDocument(w, r, reqLog)
		if !ok {
			return
		}
		res, err = s.proc.ProcessDocument(r.Context(), doc)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reqLog = reqLog.WithField("duration_ms", res.DurationMs)
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		reqLog.WithError(err).WithField("status", status).Warn("processor returned error")
	} else {
		reqLog.Info("processor finished")
	}
	writeJSON(w, status, res, reqLog)
}

// statusFor maps platform failures onto gateway statuses; a missing
// conversation stays a 404.
func statusFor(err error) int {
	var serr *elevenlabs.StatusError
	if errors.As(err, &serr) {
		if serr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func decodeDocument(w http.ResponseWriter, r *http.Request, log *logrus.Entry) (types.ConversationDocument, bool) {
	var doc types.ConversationDocument
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&doc); err != nil {
		log.WithError(err).Warn("invalid conversation body")
		http.Error(w, "invalid conversation JSON", http.StatusBadRequest)
		return doc, false
	}
	return doc, true
}

func writeJSON(w http.ResponseWriter, status int, v any, log *logrus.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}
