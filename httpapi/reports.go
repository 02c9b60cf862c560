package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	messengercommand "github.com/goliatone/go-messenger/command"
	"github.com/goliatone/go-messenger/core"
	messengerquery "github.com/goliatone/go-messenger/query"
)

const maxReportRequestBytes = 64 << 10

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	if s.deps.Queries.ListReports == nil {
		s.writeError(w, r, unavailable("list reports"))
		return
	}
	filter, err := parseReportFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	msg := messengerquery.ListReportsMessage{Filter: filter}
	if err := msg.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.deps.Queries.ListReports.Query(r.Context(), msg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if page.Items == nil {
		page.Items = []core.IterationReport{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Commands.CreateReport == nil {
		s.writeError(w, r, unavailable("create report"))
		return
	}
	var req core.CreateReportRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportRequestBytes))
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, r, goerrors.Wrap(err, goerrors.CategoryBadInput, "httpapi: invalid report request body").
			WithCode(http.StatusBadRequest).
			WithTextCode(core.TextCodeBadInput))
		return
	}
	msg := messengercommand.CreateReportMessage{Request: req}
	if err := msg.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	collector := gocmd.NewResult[core.IterationReport]()
	ctx := gocmd.ContextWithResult(r.Context(), collector)
	if err := s.deps.Commands.CreateReport.Execute(ctx, msg); err != nil {
		s.writeError(w, r, err)
		return
	}
	report, ok := collector.Load()
	if !ok {
		s.writeError(w, r, unavailable("create report result"))
		return
	}
	w.Header().Set("Location", "/api/reports/"+report.ID)
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Queries.GetReportDetail == nil {
		s.writeError(w, r, unavailable("get report"))
		return
	}
	msg := messengerquery.GetReportDetailMessage{ReportID: chi.URLParam(r, "id")}
	if err := msg.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := s.deps.Queries.GetReportDetail.Query(r.Context(), msg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// buildReport analyses live tracker data. Nothing is persisted.
func (s *Server) buildReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.Queries.BuildReport == nil {
		s.writeError(w, r, unavailable("build report"))
		return
	}
	msg := messengerquery.BuildReportMessage{IterationName: chi.URLParam(r, "name")}
	if err := msg.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	detail, err := s.deps.Queries.BuildReport.Query(r.Context(), msg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func parseReportFilter(r *http.Request) (core.ReportFilter, error) {
	values := r.URL.Query()
	filter := core.ReportFilter{IterationName: strings.TrimSpace(values.Get("iteration_name"))}
	for _, param := range []struct {
		name   string
		target *int
	}{
		{name: "limit", target: &filter.Limit},
		{name: "offset", target: &filter.Offset},
	} {
		raw := strings.TrimSpace(values.Get(param.name))
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return core.ReportFilter{}, goerrors.NewValidation("httpapi: invalid query parameter", goerrors.FieldError{
				Field:   param.name,
				Message: "must be an integer",
			}).
				WithCode(http.StatusBadRequest).
				WithTextCode(core.TextCodeBadInput)
		}
		*param.target = parsed
	}
	return filter, nil
}

func unavailable(operation string) error {
	return goerrors.New("httpapi: "+operation+" is not configured", goerrors.CategoryInternal).
		WithCode(http.StatusServiceUnavailable).
		WithTextCode(core.TextCodeInternal)
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
