package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/identity-db-sync/internal/http/types"
	"github.com/canonical/identity-db-sync/internal/logging"
	"github.com/canonical/identity-db-sync/internal/monitoring"
	"github.com/canonical/identity-db-sync/internal/tracing"
	idtypes "github.com/canonical/identity-db-sync/internal/types"
)

type API struct {
	registry RegistryInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/groups", a.handleListGroups)
	mux.Get("/api/v0/groups/{group_id}", a.handleGetGroup)
}

// handleListGroups lists the relevant groups, optionally only those granting ?role=.
func (a *API) handleListGroups(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "groups.API.handleListGroups")
	defer span.End()

	role := r.URL.Query().Get("role")

	groups := make([]idtypes.Group, 0, a.registry.Len())
	for _, g := range a.registry.Groups() {
		if role != "" && g.Role != role {
			continue
		}
		groups = append(groups, g)
	}

	types.WriteJSON(w, types.Response{
		Data:    groups,
		Message: "List of relevant groups",
		Status:  http.StatusOK,
		Meta:    &types.Pagination{Size: len(groups)},
	})
}

func (a *API) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "groups.API.handleGetGroup")
	defer span.End()

	groupID := chi.URLParam(r, "group_id")

	group, ok := a.registry.Get(groupID)
	if !ok {
		a.logger.Debugf("group %s is not relevant", groupID)
		types.WriteJSON(w, types.Response{
			Status:  http.StatusNotFound,
			Message: NewGroupNotFoundError(groupID, "GetGroup").Error(),
		})
		return
	}

	types.WriteJSON(w, types.Response{
		Data:    []idtypes.Group{group},
		Message: "Group details",
		Status:  http.StatusOK,
	})
}

func NewAPI(registry RegistryInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.registry = registry

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
