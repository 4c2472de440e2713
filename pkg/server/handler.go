package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-sinkform/pkg/i18n"
	"github.com/goliatone/go-sinkform/pkg/logging"
	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/openapi"
	"github.com/goliatone/go-sinkform/pkg/render"
	"github.com/goliatone/go-sinkform/pkg/renderers/jsonview"
	"github.com/goliatone/go-sinkform/pkg/renderers/vanilla"
	"github.com/goliatone/go-sinkform/pkg/sink"
	"github.com/goliatone/go-sinkform/pkg/validation"
)

// maxBodyBytes bounds decoded request bodies.
const maxBodyBytes = 1 << 20

var errMissingSinks = errors.New("server: no sink registry configured")

type listResponse struct {
	Data []sinkSummary `json:"data"`
}

type sinkSummary struct {
	Type    string             `json:"type"`
	Columns []model.ColumnView `json:"columns"`
}

type columnsResponse struct {
	Data []model.ColumnView `json:"data"`
}

// renderRequest is the optional body of POST .../form: values to prefill and
// server side errors to display.
type renderRequest struct {
	Values map[string]any      `json:"values"`
	Errors map[string][]string `json:"errors"`
}

type validateResponse struct {
	Valid        bool                `json:"valid"`
	Issues       []validation.Issue  `json:"issues,omitempty"`
	SchemaIssues []openapi.Issue     `json:"schemaIssues,omitempty"`
	Errors       map[string][]string `json:"errors,omitempty"`
	FormErrors   []string            `json:"formErrors,omitempty"`
}

type checkResponse struct {
	OK bool `json:"ok"`
}

// DefaultRenderers returns the JSON, YAML and HTML renderers.
func DefaultRenderers() (*render.Registry, error) {
	html, err := vanilla.New()
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(jsonview.New(), jsonview.NewYAML(), html)
}

// Handler builds the sink API with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds the sink API from a pre-constructed Options value.
// Routes are served under opts.RoutePath.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	h := &handler{opts: opts}
	if h.opts.Renderers == nil {
		renderers, err := DefaultRenderers()
		if err != nil {
			return failing(h.opts.Logger, err)
		}
		h.opts.Renderers = renderers
	}

	route := strings.TrimRight(opts.RoutePath, "/")
	index := route
	if index == "" {
		index = "/{$}"
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+index, h.list)
	mux.HandleFunc("GET "+route+"/openapi.json", h.document)
	mux.HandleFunc("GET "+route+"/{type}/form", h.form)
	mux.HandleFunc("POST "+route+"/{type}/form", h.form)
	mux.HandleFunc("GET "+route+"/{type}/fields", h.fields)
	mux.HandleFunc("GET "+route+"/{type}/schema", h.schema)
	mux.HandleFunc("POST "+route+"/{type}/validate", h.validate)
	mux.HandleFunc("POST "+route+"/{type}/check", h.check)
	return h.wrap(mux)
}

type handler struct {
	opts Options
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *handler) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		logger := h.opts.Logger.With(
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		if h.opts.Guard != nil {
			if err := h.opts.Guard(r); err != nil {
				logger.Info("request rejected", zap.Error(err))
				writeGuardError(w, err)
				return
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), logger)))
		logger.Debug("request served", zap.Int("status", rec.status))
	})
}

func failing(logger *zap.Logger, err error) http.Handler {
	logger.Error("sink api unavailable", zap.Error(err))
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, err, http.StatusInternalServerError)
	})
}

func (h *handler) locale(q url.Values) string {
	if locale := strings.TrimSpace(q.Get("locale")); locale != "" {
		return locale
	}
	return h.opts.DefaultLocale
}

func (h *handler) descriptor(r *http.Request) (sink.Descriptor, string, error) {
	if h.opts.Sinks == nil {
		return nil, "", errMissingSinks
	}
	locale := h.locale(r.URL.Query())
	desc, err := h.opts.Sinks.Descriptor(r.PathValue("type"), locale)
	if errors.Is(err, sink.ErrUnknownSink) {
		return nil, "", StatusError{Code: http.StatusNotFound, Err: err}
	}
	return desc, locale, err
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	if h.opts.Sinks == nil {
		writeError(w, errMissingSinks, http.StatusInternalServerError)
		return
	}
	locale := h.locale(r.URL.Query())
	out := listResponse{Data: []sinkSummary{}}
	for _, kind := range h.opts.Sinks.List() {
		desc, err := h.opts.Sinks.Descriptor(kind, locale)
		if err != nil {
			logging.From(r.Context()).Error("load descriptor", zap.String("sink", kind), zap.Error(err))
			writeError(w, err, http.StatusInternalServerError)
			return
		}
		out.Data = append(out.Data, sinkSummary{
			Type:    desc.Type(),
			Columns: model.ColumnViews(desc.TableColumns(), model.RowState{}),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) document(w http.ResponseWriter, r *http.Request) {
	if h.opts.Sinks == nil {
		writeError(w, errMissingSinks, http.StatusInternalServerError)
		return
	}
	doc, err := openapi.Document(h.opts.Sinks, h.locale(r.URL.Query()), h.opts.Version)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *handler) form(w http.ResponseWriter, r *http.Request) {
	desc, locale, err := h.descriptor(r)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	formCtx, err := formContext(q)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	var body renderRequest
	if r.Method == http.MethodPost {
		if err := decodeBody(r, &body); err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
		formCtx.CurrentValues = mergeValues(formCtx.CurrentValues, body.Values)
	}

	format := strings.TrimSpace(q.Get("format"))
	if format == "" {
		format = h.opts.DefaultFormat
	}
	if _, err := h.opts.Renderers.Get(format); err != nil {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: err}, http.StatusBadRequest)
		return
	}

	view := desc.GetForm(sink.ParseMode(q.Get("mode")), formCtx)
	mapping := render.MapErrorPayload(view, body.Errors)
	opts := render.RenderOptions{
		Title:      desc.Type(),
		Locale:     locale,
		Context:    formCtx,
		Values:     body.Values,
		Errors:     mapping.Fields,
		FormErrors: mapping.Form,
	}
	opts.Hidden = render.MergeHiddenFields(nil, render.ContextHidden(opts)...)

	out, contentType, err := h.opts.Renderers.Render(r.Context(), format, view, opts)
	if err != nil {
		logging.From(r.Context()).Error("render form",
			zap.String("sink", desc.Type()),
			zap.String("format", format),
			zap.Error(err),
		)
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(out)
}

func (h *handler) fields(w http.ResponseWriter, r *http.Request) {
	desc, _, err := h.descriptor(r)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	formCtx, err := formContext(q)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	columns := desc.FieldListColumns(formCtx.DataType, formCtx.CurrentValues)
	writeJSON(w, http.StatusOK, columnsResponse{Data: model.ColumnViews(columns, formCtx.State())})
}

func (h *handler) schema(w http.ResponseWriter, r *http.Request) {
	desc, _, err := h.descriptor(r)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, openapi.SinkSchema(desc))
}

func (h *handler) validate(w http.ResponseWriter, r *http.Request) {
	desc, locale, err := h.descriptor(r)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	formCtx, err := formContext(r.URL.Query())
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	var values map[string]any
	if err := decodeBody(r, &values); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	formCtx.CurrentValues = mergeValues(formCtx.CurrentValues, values)

	view := desc.GetForm(sink.ModeForm, formCtx)
	result := validation.Validate(view.Fields, values,
		validation.WithTranslator(i18n.Bind(h.opts.Translator, locale)),
		validation.WithState(formCtx.State()),
	)
	schemaIssues := openapi.Check(openapi.SinkSchema(desc), anyMap(values))
	mapping := render.MapErrorPayload(view, result.Errors())

	writeJSON(w, http.StatusOK, validateResponse{
		Valid:        result.Valid && len(schemaIssues) == 0,
		Issues:       result.Issues,
		SchemaIssues: schemaIssues,
		Errors:       mapping.Fields,
		FormErrors:   mapping.Form,
	})
}

func (h *handler) check(w http.ResponseWriter, r *http.Request) {
	desc, _, err := h.descriptor(r)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	var values map[string]any
	if err := decodeBody(r, &values); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if err := h.opts.Checker(r.Context(), desc.Type(), values, h.opts.ConnectTimeout); err != nil {
		logging.From(r.Context()).Warn("connection check failed",
			zap.String("sink", desc.Type()),
			zap.Error(err),
		)
		code := statusOf(err, http.StatusBadGateway)
		writeJSON(w, code, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{OK: true})
}

// formContext reads isEdit, status, inlongGroupId and dataType from the
// query. A status is copied into the current values, where descriptors read
// it from.
func formContext(q url.Values) (model.FormContext, error) {
	ctx := model.FormContext{
		InlongGroupID: strings.TrimSpace(q.Get("inlongGroupId")),
		DataType:      strings.TrimSpace(q.Get("dataType")),
	}
	if raw := strings.TrimSpace(q.Get("isEdit")); raw != "" {
		isEdit, err := strconv.ParseBool(raw)
		if err != nil {
			return model.FormContext{}, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("server: invalid isEdit %q", raw)}
		}
		ctx.IsEdit = isEdit
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			return model.FormContext{}, StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("server: invalid status %q", raw)}
		}
		ctx.CurrentValues = map[string]any{model.StatusKey: status}
	}
	return ctx, nil
}

// mergeValues overlays values on base. A status already in base wins so the
// query string decides the lifecycle state.
func mergeValues(base, values map[string]any) map[string]any {
	if len(base) == 0 {
		return values
	}
	out := make(map[string]any, len(base)+len(values))
	for key, value := range values {
		out[key] = value
	}
	for key, value := range base {
		out[key] = value
	}
	return out
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf("server: decode body: %w", err)}
	}
	return nil
}

// anyMap keeps a nil map from reaching the schema check as a typed nil.
func anyMap(values map[string]any) any {
	if values == nil {
		return map[string]any{}
	}
	return values
}
