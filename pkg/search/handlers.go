package search

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/recordsearch/pkg/httputil"
)

// Handler exposes the search service over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates an HTTP handler backed by the given service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the search endpoints on the router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/search/{type}", h.SearchRecords).Methods(http.MethodGet)
	router.HandleFunc("/search/{type}/columns", h.ListColumns).Methods(http.MethodGet)
}

// Query parameters reserved for search options rather than criteria.
const (
	paramOrder  = "order"
	paramLimit  = "limit"
	paramOffset = "offset"
)

// SearchRecords handles GET /search/{type}.
//
// Every query parameter except the reserved option keys becomes a
// criteria entry, in the order the parameters appear in the URL.
func (h *Handler) SearchRecords(w http.ResponseWriter, r *http.Request) {
	typeID := mux.Vars(r)["type"]

	criteria, opts, err := parseSearchQuery(r.URL.RawQuery)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	records, err := h.service.Search(r.Context(), typeID, criteria, opts)
	if err != nil {
		writeSearchError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"record_type": typeID,
		"count":       len(records),
		"records":     records,
	})
}

// ListColumns handles GET /search/{type}/columns. It reports the
// searchable key set of a registered record type, range columns expanded
// to their bound keys.
func (h *Handler) ListColumns(w http.ResponseWriter, r *http.Request) {
	typeID := mux.Vars(r)["type"]

	sch, ok := h.service.Registry().Lookup(typeID)
	if !ok {
		httputil.WriteNotFoundError(w, "record type not registered: "+typeID)
		return
	}

	httputil.WriteSuccess(w, map[string]any{
		"record_type": typeID,
		"columns":     sch.SearchColumnNames(),
	})
}

// parseSearchQuery walks the raw query left to right so criteria keep the
// caller's ordering. url.Values would lose it.
func parseSearchQuery(rawQuery string) (*Criteria, *Options, error) {
	criteria := NewCriteria()
	opts := &Options{}

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(key)
		if err != nil {
			return nil, nil, err
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			return nil, nil, err
		}

		switch key {
		case paramOrder:
			opts.Order = append(opts.Order, value)
		case paramLimit, paramOffset:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, nil, err
			}
			if opts.Extra == nil {
				opts.Extra = make(map[string]any)
			}
			opts.Extra[key] = n
		default:
			criteria.Set(key, value)
		}
	}
	return criteria, opts, nil
}

func writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case IsNotRegistered(err):
		httputil.WriteNotFoundError(w, err.Error())
	case IsArgumentConflict(err):
		httputil.WriteConflict(w, err.Error())
	case IsUnknownSearchColumn(err), IsInvalidRangeValue(err):
		httputil.WriteBadRequest(w, err.Error())
	default:
		httputil.WriteInternalError(w, err)
	}
}
