package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sashob/springbox/pkg/buildinfo"
	apperrors "github.com/sashob/springbox/pkg/errors"
	"github.com/sashob/springbox/pkg/graph"
	"github.com/sashob/springbox/pkg/pipeline"
)

// maxGraphBody bounds POST bodies. Neighborhood graphs are small; anything
// beyond this is a mistake or abuse.
const maxGraphBody = 4 << 20

var formatContentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"built":   buildinfo.Date,
	})
}

// handleArticleLayout computes a layout for a stored article neighborhood.
// Physics parameters come from query params, falling back to the server's
// configured defaults.
func (s *Server) handleArticleLayout(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "article name is required"))
		return
	}

	opts, format, err := s.optionsFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Article = name

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeArtifact(w, result, format)
}

// layoutRequest is the POST /api/layout body.
type layoutRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

func (s *Server) handleGraphLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGraphBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	opts := s.mergeDefaults(req.Options)
	format := pipeline.FormatJSON
	if len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}
	opts.Formats = []string{format}

	result, err := s.runner.ExecuteGraph(r.Context(), req.Graph, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeArtifact(w, result, format)
}

// optionsFromQuery parses physics and render parameters from the URL query.
// The selected format is returned separately; each request renders one format.
func (s *Server) optionsFromQuery(r *http.Request) (pipeline.Options, string, error) {
	opts := s.cfg.PipelineOptions()
	q := r.URL.Query()

	parse := func(key string, dst *float64) error {
		v := q.Get(key)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid %s %q", key, v)
		}
		*dst = f
		return nil
	}
	for key, dst := range map[string]*float64{
		"width":     &opts.Width,
		"height":    &opts.Height,
		"charge":    &opts.Charge,
		"mass":      &opts.Mass,
		"time_step": &opts.TimeStep,
	} {
		if err := parse(key, dst); err != nil {
			return pipeline.Options{}, "", err
		}
	}
	for key, dst := range map[string]*int{
		"iterations": &opts.Iterations,
		"depth":      &opts.Depth,
	} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return pipeline.Options{}, "", apperrors.New(apperrors.ErrCodeInvalidInput, "invalid %s %q", key, v)
			}
			*dst = n
		}
	}

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	opts.Formats = []string{format}
	opts.Labels = q.Get("labels") == "true"
	opts.Edges = q.Get("edges") == "true"
	opts.Refresh = q.Get("refresh") == "true"
	return opts, format, nil
}

// mergeDefaults fills unset request options from the server configuration.
func (s *Server) mergeDefaults(opts pipeline.Options) pipeline.Options {
	defaults := s.cfg.PipelineOptions()
	if opts.Width == 0 {
		opts.Width = defaults.Width
	}
	if opts.Height == 0 {
		opts.Height = defaults.Height
	}
	if opts.Charge == 0 {
		opts.Charge = defaults.Charge
	}
	if opts.Mass == 0 {
		opts.Mass = defaults.Mass
	}
	if opts.TimeStep == 0 {
		opts.TimeStep = defaults.TimeStep
	}
	if opts.Iterations == 0 {
		opts.Iterations = defaults.Iterations
	}
	return opts
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) writeArtifact(w http.ResponseWriter, result *pipeline.Result, format string) {
	data, ok := result.Artifacts[format]
	if !ok {
		s.writeError(w, nil, apperrors.New(apperrors.ErrCodeInternal, "missing %s artifact", format))
		return
	}
	w.Header().Set("Content-Type", formatContentTypes[format])
	w.Header().Set("X-Graph-Hash", result.GraphHash)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	status := statusForCode(code)

	if r != nil {
		id, _ := r.Context().Value(requestIDKey).(string)
		if status >= 500 {
			s.logger.Error("request failed", "id", id, "code", code, "err", err)
		} else {
			s.logger.Debug("request rejected", "id", id, "code", code, "err", err)
		}
	}

	s.writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: err.Error(),
	}})
}

func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeInvalidGraph,
		apperrors.ErrCodeInvalidPhysics,
		apperrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeArticleNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeStore, apperrors.ErrCodeCache:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
