/*
Package api serves read-only HTTP access to the registry.

Every request runs registry view operations against a single registry
snapshot, nothing served here changes registry state. Namespaces in paths are given either as Neo addresses or as
node type tags of the identity tokens created at bootstrap (e.g. Vehicle).
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/motorid/registry/common"
	"github.com/motorid/registry/deploy"
	"github.com/motorid/registry/mapper"
	"github.com/motorid/registry/nft"
	"github.com/motorid/registry/nodes"
	"github.com/motorid/registry/registry"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Viewer runs read-only registry operations.
type Viewer interface {
	ViewFunc(ctx context.Context, caller util.Uint160, f func(registry.Call) error) error
}

var errNodeNotFound = errors.New("node not found")

// Prm groups handler parameters.
type Prm struct {
	Registry Viewer
	// Gatherer serves /metrics. The endpoint is not registered if nil.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type handler struct {
	reg Viewer
	log *zap.Logger
}

// NewRouter returns HTTP handler of the read API.
func NewRouter(prm Prm) http.Handler {
	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}
	h := &handler{reg: prm.Registry, log: prm.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/nodes/{ns}/{id}", h.handleNode)
	r.Get("/nodes/{ns}/{id}/info/{attr}", h.handleInfo)
	r.Get("/links/{ns}/{id}", h.handleLinks)
	r.Get("/modules", h.handleModules)
	if prm.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(prm.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Node is the response of GET /nodes/{ns}/{id}.
type Node struct {
	Namespace   string            `json:"namespace"`
	ID          uint64            `json:"id"`
	Type        string            `json:"type"`
	Parent      uint64            `json:"parent,omitempty"`
	Owner       string            `json:"owner"`
	Beneficiary string            `json:"beneficiary"`
	Infos       map[string]string `json:"infos"`
}

// Info is the response of GET /nodes/{ns}/{id}/info/{attr}.
type Info struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// Links is the response of GET /links/{ns}/{id}. NodeLink is set only if
// the target namespace is given in the "to" query parameter.
type Links struct {
	Link     uint64 `json:"link"`
	NodeLink uint64 `json:"nodeLink,omitempty"`
}

// Module is an element of the GET /modules response.
type Module struct {
	Name       string   `json:"name"`
	Version    string   `json:"version"`
	Address    string   `json:"address"`
	Operations []string `json:"operations"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) handleNode(w http.ResponseWriter, r *http.Request) {
	p, ok := h.nodeParams(w, r)
	if !ok {
		return
	}

	res := Node{Namespace: common.AddressString(p.Namespace), ID: p.ID, Infos: make(map[string]string)}
	err := h.reg.ViewFunc(r.Context(), util.Uint160{}, func(call registry.Call) error {
		if err := exists(call, p); err != nil {
			return err
		}
		var err error
		if res.Type, err = view[string](call, nodes.OpGetNodeType, p); err != nil {
			return err
		}
		if res.Parent, err = view[uint64](call, nodes.OpGetParentNode, p); err != nil {
			return err
		}
		owner, err := view[util.Uint160](call, nft.OpOwnerOf, nft.TokenParams{Namespace: p.Namespace, ID: p.ID})
		if err != nil {
			return err
		}
		res.Owner = common.AddressString(owner)
		beneficiary, err := view[util.Uint160](call, mapper.OpGetBeneficiary, p)
		if err != nil {
			return err
		}
		res.Beneficiary = common.AddressString(beneficiary)
		infos, err := view[[]nodes.AttributeInfoPair](call, nodes.OpGetInfos, p)
		if err != nil {
			return err
		}
		for _, pair := range infos {
			res.Infos[pair.Attribute] = pair.Info
		}
		return nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	p, ok := h.nodeParams(w, r)
	if !ok {
		return
	}
	var (
		attr = chi.URLParam(r, "attr")
		v    string
	)
	err := h.reg.ViewFunc(r.Context(), util.Uint160{}, func(call registry.Call) error {
		if err := exists(call, p); err != nil {
			return err
		}
		var err error
		v, err = view[string](call, nodes.OpGetInfo, nodes.InfoParams{Namespace: p.Namespace, ID: p.ID, Attribute: attr})
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Info{Attribute: attr, Value: v})
}

func (h *handler) handleLinks(w http.ResponseWriter, r *http.Request) {
	p, ok := h.nodeParams(w, r)
	if !ok {
		return
	}
	var nsB *util.Uint160
	if to := r.URL.Query().Get("to"); to != "" {
		ns, err := parseNamespace(to)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		nsB = &ns
	}

	var res Links
	err := h.reg.ViewFunc(r.Context(), util.Uint160{}, func(call registry.Call) error {
		var err error
		if res.Link, err = view[uint64](call, mapper.OpGetLink, p); err != nil {
			return err
		}
		if nsB != nil {
			res.NodeLink, err = view[uint64](call, mapper.OpGetNodeLink,
				mapper.NodeLinkParams{NamespaceA: p.Namespace, NamespaceB: *nsB, ID: p.ID})
		}
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) handleModules(w http.ResponseWriter, r *http.Request) {
	var infos []registry.ModuleInfo
	err := h.reg.ViewFunc(r.Context(), util.Uint160{}, func(call registry.Call) error {
		var err error
		infos, err = view[[]registry.ModuleInfo](call, registry.OpModules, nil)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	res := make([]Module, 0, len(infos))
	for _, m := range infos {
		ops := make([]string, len(m.Selectors))
		for i := range m.Selectors {
			ops[i] = m.Selectors[i].String()
		}
		res = append(res, Module{
			Name:       m.Name,
			Version:    common.VersionString(m.Version),
			Address:    common.AddressString(m.Address),
			Operations: ops,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) nodeParams(w http.ResponseWriter, r *http.Request) (nodes.NodeParams, bool) {
	ns, err := parseNamespace(chi.URLParam(r, "ns"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nodes.NodeParams{}, false
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid node id"})
		return nodes.NodeParams{}, false
	}
	return nodes.NodeParams{Namespace: ns, ID: id}, true
}

func exists(call registry.Call, p nodes.NodeParams) error {
	ok, err := view[bool](call, nft.OpExists, nft.TokenParams{Namespace: p.Namespace, ID: p.ID})
	if err != nil {
		return err
	}
	if !ok {
		return errNodeNotFound
	}
	return nil
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error("registry view failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request", middleware.GetReqID(r.Context())))
	})
}

func view[T any](call registry.Call, sig string, args any) (T, error) {
	var zero T
	res, err := call(sig, args)
	if err != nil {
		return zero, err
	}
	t, ok := res.(T)
	if !ok {
		return zero, errors.New("unexpected result type of " + sig)
	}
	return t, nil
}

func parseNamespace(s string) (util.Uint160, error) {
	if ns, err := address.StringToUint160(s); err == nil {
		return ns, nil
	}
	for _, tag := range deploy.Tags() {
		if tag == s {
			return deploy.Namespace(tag), nil
		}
	}
	return util.Uint160{}, errors.New("unknown namespace " + strconv.Quote(s))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrOperationNotExist):
		return http.StatusNotImplemented
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, common.ErrStateConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
