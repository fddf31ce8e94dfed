package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"cis/internal/identifier/models"
	"cis/internal/lifecycle"
	"cis/internal/sctid"
	dErrors "cis/pkg/domain-errors"
	"cis/pkg/platform/httputil"
	"cis/pkg/platform/middleware/metadata"
	"cis/pkg/requestcontext"
)

// Service defines the identifier operations exposed over HTTP.
type Service interface {
	Generate(ctx context.Context, op models.Operation) (*models.SCTIDRecord, error)
	Reserve(ctx context.Context, op models.Operation) (*models.SCTIDRecord, error)
	Register(ctx context.Context, op models.Operation) (*models.SCTIDRecord, error)
	Deprecate(ctx context.Context, op models.Operation) (*models.SCTIDRecord, error)
	Release(ctx context.Context, op models.Operation) (*models.SCTIDRecord, error)
	Publish(ctx context.Context, op models.Operation) (*models.SCTIDRecord, error)
	Pregenerate(ctx context.Context, namespace int64, partitionID string, quantity int) ([]*models.SCTIDRecord, error)
	GetByID(ctx context.Context, id string) (*models.SCTIDRecord, error)
	GetBySystemID(ctx context.Context, namespace int64, systemID string) (*models.SCTIDRecord, error)
	Query(ctx context.Context, filter models.SCTIDFilter, limit, offset int) ([]*models.SCTIDRecord, error)
	CheckSCTID(ctx context.Context, id string) sctid.Report
	RegisterNamespace(ctx context.Context, ns models.Namespace) (*models.Namespace, error)

	GenerateSchemeIDs(ctx context.Context, op models.SchemeOperation) ([]*models.SchemeIDRecord, error)
	ReserveSchemeIDs(ctx context.Context, op models.SchemeOperation) ([]*models.SchemeIDRecord, error)
	RegisterSchemeIDs(ctx context.Context, op models.SchemeOperation) ([]*models.SchemeIDRecord, error)
	UpdateSchemeIDs(ctx context.Context, op models.SchemeOperation, action lifecycle.Action) ([]*models.SchemeIDRecord, error)
	PregenerateSchemeIDs(ctx context.Context, scheme string, quantity int) ([]*models.SchemeIDRecord, error)
	GetSchemeIDs(ctx context.Context, scheme string, ids []string) ([]*models.SchemeIDRecord, error)
	GetSchemeIDsBySystemIDs(ctx context.Context, scheme string, systemIDs []string) ([]*models.SchemeIDRecord, error)
}

// Handler wires identifier endpoints to the allocation engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts identifier endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/sct/check/{sctid}", h.HandleCheck)
	r.Get("/sct/ids/{sctid}", h.HandleGetSCTID)
	r.Get("/sct/ids", h.HandleQuery)
	r.Get("/sct/namespaces/{namespace}/systemids/{systemId}", h.HandleGetBySystemID)
	r.Post("/sct/{action}", h.HandleSCTIDAction)

	r.Get("/scheme/{scheme}/ids", h.HandleGetSchemeIDs)
	r.Get("/scheme/{scheme}/systemids", h.HandleGetSchemeIDsBySystemIDs)
	r.Post("/scheme/{scheme}/{action}", h.HandleSchemeAction)
}

// RegisterAdmin mounts namespace provisioning and the pool pregeneration
// endpoints. Callers wrap r with operator authentication.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/sct/namespaces", h.HandleRegisterNamespace)
	r.Post("/sct/pregenerate", h.HandlePregenerate)
	r.Post("/scheme/{scheme}/pregenerate", h.HandlePregenerateSchemeIDs)
}

// HandleCheck handles GET /sct/check/{sctid}. The report is returned with
// 200 whether or not the identifier is valid.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	report := h.service.CheckSCTID(r.Context(), chi.URLParam(r, "sctid"))
	httputil.WriteJSON(w, http.StatusOK, report)
}

// HandleGetSCTID handles GET /sct/ids/{sctid}.
func (h *Handler) HandleGetSCTID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rec, err := h.service.GetByID(ctx, chi.URLParam(r, "sctid"))
	if err != nil {
		h.fail(ctx, w, "sctid lookup failed", err, "sctid", chi.URLParam(r, "sctid"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleGetBySystemID handles GET /sct/namespaces/{namespace}/systemids/{systemId}.
func (h *Handler) HandleGetBySystemID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	namespace, err := strconv.ParseInt(chi.URLParam(r, "namespace"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "namespace must be an integer"))
		return
	}
	rec, err := h.service.GetBySystemID(ctx, namespace, chi.URLParam(r, "systemId"))
	if err != nil {
		h.fail(ctx, w, "system id lookup failed", err, "namespace", namespace)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleQuery handles GET /sct/ids with optional namespace, partitionId,
// status, systemId, author, jobId, limit and skip parameters.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, limit, offset, err := parseQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	recs, err := h.service.Query(ctx, filter, limit, offset)
	if err != nil {
		h.fail(ctx, w, "sctid query failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RecordsResponse[*models.SCTIDRecord]{Items: nonNil(recs)})
}

// HandleSCTIDAction handles POST /sct/{action}.
func (h *Handler) HandleSCTIDAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	action, err := lifecycle.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown action "+chi.URLParam(r, "action")))
		return
	}

	var req SCTIDRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	op := req.Operation(metadata.Software(requestcontext.UserAgent(ctx)))

	var call func(context.Context, models.Operation) (*models.SCTIDRecord, error)
	switch action {
	case lifecycle.ActionGenerate:
		call = h.service.Generate
	case lifecycle.ActionReserve:
		call = h.service.Reserve
	case lifecycle.ActionRegister:
		call = h.service.Register
	case lifecycle.ActionDeprecate:
		call = h.service.Deprecate
	case lifecycle.ActionRelease:
		call = h.service.Release
	case lifecycle.ActionPublish:
		call = h.service.Publish
	}

	rec, err := call(ctx, op)
	if err != nil {
		h.fail(ctx, w, "sctid "+action.Verb()+" failed", err,
			"namespace", op.Namespace,
			"partition_id", op.PartitionID,
			"sctid", op.SCTID,
		)
		return
	}

	h.logger.InfoContext(ctx, "sctid "+action.Verb(),
		"request_id", requestcontext.RequestID(ctx),
		"sctid", rec.SCTID,
		"status", rec.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandlePregenerate handles POST /sct/pregenerate.
func (h *Handler) HandlePregenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req PregenerateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	recs, err := h.service.Pregenerate(ctx, req.Namespace, req.PartitionID, req.Quantity)
	if err != nil {
		h.fail(ctx, w, "sctid pregenerate failed", err, "namespace", req.Namespace, "partition_id", req.PartitionID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RecordsResponse[*models.SCTIDRecord]{Items: nonNil(recs)})
}

// HandleRegisterNamespace handles POST /sct/namespaces: it records the
// namespace and opens its partitions for allocation.
func (h *Handler) HandleRegisterNamespace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req NamespaceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	ns, err := h.service.RegisterNamespace(ctx, req.Namespace())
	if err != nil {
		h.fail(ctx, w, "namespace registration failed", err, "namespace", *req.ID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ns)
}

// HandleSchemeAction handles POST /scheme/{scheme}/{action}.
func (h *Handler) HandleSchemeAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	schemeName := chi.URLParam(r, "scheme")

	action, err := lifecycle.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown action "+chi.URLParam(r, "action")))
		return
	}

	var req SchemeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	op := req.Operation(schemeName, metadata.Software(requestcontext.UserAgent(ctx)))

	var recs []*models.SchemeIDRecord
	switch action {
	case lifecycle.ActionGenerate:
		recs, err = h.service.GenerateSchemeIDs(ctx, op)
	case lifecycle.ActionReserve:
		recs, err = h.service.ReserveSchemeIDs(ctx, op)
	case lifecycle.ActionRegister:
		recs, err = h.service.RegisterSchemeIDs(ctx, op)
	default:
		recs, err = h.service.UpdateSchemeIDs(ctx, op, action)
	}
	if err != nil {
		h.fail(ctx, w, "scheme "+action.Verb()+" failed", err, "scheme", schemeName)
		return
	}

	h.logger.InfoContext(ctx, "scheme ids "+action.Verb(),
		"request_id", requestcontext.RequestID(ctx),
		"scheme", schemeName,
		"count", len(recs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, RecordsResponse[*models.SchemeIDRecord]{Items: nonNil(recs)})
}

// HandlePregenerateSchemeIDs handles POST /scheme/{scheme}/pregenerate.
func (h *Handler) HandlePregenerateSchemeIDs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schemeName := chi.URLParam(r, "scheme")
	var req PregenerateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	recs, err := h.service.PregenerateSchemeIDs(ctx, schemeName, req.Quantity)
	if err != nil {
		h.fail(ctx, w, "scheme pregenerate failed", err, "scheme", schemeName)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RecordsResponse[*models.SchemeIDRecord]{Items: nonNil(recs)})
}

// HandleGetSchemeIDs handles GET /scheme/{scheme}/ids?schemeIds=a,b.
func (h *Handler) HandleGetSchemeIDs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schemeName := chi.URLParam(r, "scheme")
	ids := splitList(r.URL.Query().Get("schemeIds"))
	if len(ids) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "schemeIds is required"))
		return
	}
	recs, err := h.service.GetSchemeIDs(ctx, schemeName, ids)
	if err != nil {
		h.fail(ctx, w, "scheme id lookup failed", err, "scheme", schemeName)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RecordsResponse[*models.SchemeIDRecord]{Items: nonNil(recs)})
}

// HandleGetSchemeIDsBySystemIDs handles GET /scheme/{scheme}/systemids?systemIds=a,b.
func (h *Handler) HandleGetSchemeIDsBySystemIDs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	schemeName := chi.URLParam(r, "scheme")
	systemIDs := splitList(r.URL.Query().Get("systemIds"))
	if len(systemIDs) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "systemIds is required"))
		return
	}
	recs, err := h.service.GetSchemeIDsBySystemIDs(ctx, schemeName, systemIDs)
	if err != nil {
		h.fail(ctx, w, "scheme system id lookup failed", err, "scheme", schemeName)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RecordsResponse[*models.SchemeIDRecord]{Items: nonNil(recs)})
}

// fail logs err at a level matching its code and writes the error envelope.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, args ...any) {
	args = append(args, "request_id", requestcontext.RequestID(ctx), "error", err)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.InfoContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}

func parseQuery(r *http.Request) (models.SCTIDFilter, int, int, error) {
	q := r.URL.Query()
	filter := models.SCTIDFilter{
		PartitionID: q.Get("partitionId"),
		SystemID:    q.Get("systemId"),
		Author:      q.Get("author"),
	}
	if v := q.Get("namespace"); v != "" {
		ns, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, 0, 0, dErrors.New(dErrors.CodeBadRequest, "namespace must be an integer")
		}
		filter.Namespace = &ns
	}
	if v := q.Get("jobId"); v != "" {
		job, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, 0, 0, dErrors.New(dErrors.CodeBadRequest, "jobId must be an integer")
		}
		filter.JobID = &job
	}
	if v := q.Get("status"); v != "" {
		status, err := lifecycle.ParseStatus(v)
		if err != nil {
			return filter, 0, 0, err
		}
		filter.Status = status
	}
	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		return filter, 0, 0, err
	}
	offset, err := intParam(q.Get("skip"), "skip")
	if err != nil {
		return filter, 0, 0, err
	}
	return filter, limit, offset, nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, name+" must be an integer")
	}
	return n, nil
}
