package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Aakash-star320/mimevoice/internal/command"
	"github.com/Aakash-star320/mimevoice/internal/command/cmdstore"
	"github.com/Aakash-star320/mimevoice/internal/observe"
	"github.com/Aakash-star320/mimevoice/internal/transcript"
	"github.com/Aakash-star320/mimevoice/pkg/provider/stt"
)

// createCommandRequest is the body for POST .../commands.
type createCommandRequest struct {
	CommandName   string `json:"command_name"`
	HasParameter  bool   `json:"has_parameter"`
	ParameterName string `json:"parameter_name"`
	WorkflowID    string `json:"workflow_id"`
}

// resolveRequest is the body for POST .../resolve and each stream frame.
type resolveRequest struct {
	Utterance string `json:"utterance"`
}

// resolveResponse pairs the match result with any corrections applied to the
// utterance before resolution.
type resolveResponse struct {
	Result      command.MatchResult     `json:"result"`
	Corrections []transcript.Correction `json:"corrections,omitempty"`
}

// transcribeResponse is the body for POST .../transcribe.
type transcribeResponse struct {
	Transcript  *stt.Transcript         `json:"transcript"`
	Result      command.MatchResult     `json:"result"`
	Corrections []transcript.Correction `json:"corrections,omitempty"`
}

// errorResponse is the body for all non-2xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateCommand(w http.ResponseWriter, r *http.Request) {
	var req createCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	def := &cmdstore.Definition{
		UserID:        r.PathValue("userID"),
		CommandName:   req.CommandName,
		HasParameter:  req.HasParameter,
		ParameterName: req.ParameterName,
		WorkflowID:    req.WorkflowID,
	}
	if err := def.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.Create(r.Context(), def); err != nil {
		s.metrics.RecordStoreError(r.Context(), "create")
		observe.Logger(r.Context()).Error("create command failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("create command failed"))
		return
	}

	writeJSON(w, http.StatusCreated, def)
}

func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	defs, err := s.store.List(r.Context(), r.PathValue("userID"))
	if err != nil {
		s.metrics.RecordStoreError(r.Context(), "list")
		observe.Logger(r.Context()).Error("list commands failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("list commands failed"))
		return
	}
	if defs == nil {
		defs = []cmdstore.Definition{}
	}
	writeJSON(w, http.StatusOK, defs)
}

func (s *Server) handleDeleteCommand(w http.ResponseWriter, r *http.Request) {
	// Get-then-delete so a command belonging to another user cannot be
	// removed through a guessed ID.
	id := r.PathValue("commandID")
	def, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.metrics.RecordStoreError(r.Context(), "get")
		writeError(w, http.StatusInternalServerError, errors.New("delete command failed"))
		return
	}
	if def != nil && def.UserID != r.PathValue("userID") {
		writeError(w, http.StatusNotFound, errors.New("command not found"))
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.metrics.RecordStoreError(r.Context(), "delete")
		observe.Logger(r.Context()).Error("delete command failed", "error", err, "command_id", id)
		writeError(w, http.StatusInternalServerError, errors.New("delete command failed"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	// Typed input is taken literally: no correction pass.
	result, err := s.resolveUtterance(r.Context(), r.PathValue("userID"), req.Utterance, false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("resolve failed"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.stt == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no transcription provider configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Errorf("audio exceeds %d bytes", int64(maxAudioBytes)))
			return
		}
		writeError(w, http.StatusBadRequest, errors.New(`missing multipart file field "audio"`))
		return
	}
	defer file.Close()

	start := time.Now()
	tr, err := s.stt.Transcribe(r.Context(), file, stt.TranscribeOptions{
		Filename: header.Filename,
		Language: r.FormValue("language"),
	})
	s.metrics.TranscribeDuration.Record(r.Context(), time.Since(start).Seconds())
	if err != nil {
		observe.Logger(r.Context()).Error("transcription failed", "error", err)
		writeError(w, http.StatusBadGateway, errors.New("transcription failed"))
		return
	}

	resolved, err := s.resolveUtterance(r.Context(), r.PathValue("userID"), tr.Text, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("resolve failed"))
		return
	}

	writeJSON(w, http.StatusOK, transcribeResponse{
		Transcript:  tr,
		Result:      resolved.Result,
		Corrections: resolved.Corrections,
	})
}

// resolveUtterance fetches the user's commands, optionally corrects the
// utterance against them, and runs the resolver. The command list is fetched
// fresh on every call so edits apply immediately.
func (s *Server) resolveUtterance(ctx context.Context, userID, utterance string, correct bool) (resolveResponse, error) {
	defs, err := s.store.List(ctx, userID)
	if err != nil {
		s.metrics.RecordStoreError(ctx, "list")
		observe.Logger(ctx).Error("list commands failed", "error", err)
		return resolveResponse{}, err
	}

	var corrections []transcript.Correction
	if correct && s.corrector != nil {
		utterance, corrections = s.corrector.Correct(utterance, vocabulary(defs))
	}

	start := time.Now()
	result := s.resolver.Resolve(utterance, cmdstore.Templates(defs))
	s.metrics.ResolveDuration.Record(ctx, time.Since(start).Seconds())
	s.metrics.RecordMatchResult(ctx, outcome(result))

	return resolveResponse{Result: result, Corrections: corrections}, nil
}

// vocabulary extracts the correction vocabulary from a command list: the
// normalized phrases, minus the slot example for slotted commands so that
// spoken slot values are never "corrected" into the example. Stripping works
// on normalized forms, so a parameter whose casing or punctuation differs
// from its occurrence in the phrase is still removed.
func vocabulary(defs []cmdstore.Definition) []string {
	vocab := make([]string, 0, len(defs))
	for _, def := range defs {
		phrase := command.Normalize(def.CommandName)
		if def.HasParameter {
			if param := command.Normalize(def.ParameterName); param != "" {
				phrase = strings.Join(strings.Fields(
					strings.ReplaceAll(phrase, param, " ")), " ")
			}
		}
		if phrase != "" {
			vocab = append(vocab, phrase)
		}
	}
	return vocab
}

// outcome maps a match result onto the metrics outcome attribute.
func outcome(res command.MatchResult) string {
	switch {
	case !res.Success:
		return "miss"
	case res.Parameter != "":
		return "slotted"
	default:
		return "exact"
	}
}

// writeJSON encodes v with the given status. Encoding failures are logged and
// otherwise dropped: the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("server: encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
