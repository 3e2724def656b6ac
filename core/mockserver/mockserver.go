/*
Package mockserver serves in-memory JSON collections as a REST api

It is meant for testing code that talks to REST backends without running one.
Each collection gets the usual routes, with the plural of the resource name as
path:

	GET    {prefix}/widgets          list, query parameters filter by property
	GET    {prefix}/widgets/{id}     read
	POST   {prefix}/widgets          create, returns http.StatusCreated
	PUT    {prefix}/widgets/{id}     update
	DELETE {prefix}/widgets/{id}     delete, returns http.StatusNoContent

Resources can be nested. A collection "fleet/vehicle" is served at
{prefix}/fleets/{fleet_id}/vehicles and its items carry the property fleet_id.
A singleton "fleet/settings" is served at {prefix}/fleets/{fleet_id}/settings
with GET, PUT and DELETE, one item per fleet.

Items without identifier get a uuid on creation. Bodies are validated if the
collection names a schema.
*/
package mockserver

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/relabs-tech/utilities/core"
	"github.com/relabs-tech/utilities/core/dataservice"
	"github.com/relabs-tech/utilities/core/logger"
	"github.com/relabs-tech/utilities/core/schema"
)

// Item is a JSON object as stored by the server
type Item = map[string]interface{}

// DefaultIDProperty is the property holding the identifier of an item
const DefaultIDProperty = "id"

// Collection configures one collection
type Collection struct {
	// Resource is the singular resource name, e.g. "widget", or a path of
	// singular names for nested resources, e.g. "fleet/vehicle"
	Resource string `json:"resource"`
	// IDProperty defaults to DefaultIDProperty
	IDProperty string `json:"id_property,omitempty"`
	// SchemaID is optional. If set, POST and PUT bodies must be valid for it.
	SchemaID string `json:"schema_id,omitempty"`
	// Operations limits the routes which are served. Empty means all.
	Operations []core.Operation `json:"operations,omitempty"`
	// Items is the initial data set. Items of nested resources carry the
	// identifiers of their owners, e.g. "fleet_id".
	Items []Item `json:"items,omitempty"`
}

// Singleton configures a resource which exists at most once per owner
type Singleton struct {
	// Resource is the singular resource name, e.g. "settings" or "fleet/settings"
	Resource string `json:"resource"`
	// SchemaID is optional. If set, PUT bodies must be valid for it.
	SchemaID string `json:"schema_id,omitempty"`
	// Operations limits the routes which are served, out of read, update and
	// delete. Empty means all.
	Operations []core.Operation `json:"operations,omitempty"`
	// Items is the initial data set, at most one per owner
	Items []Item `json:"items,omitempty"`
}

// Builder is a builder helper for the Server
type Builder struct {
	// Prefix is prepended to all routes, e.g. "/api"
	Prefix      string
	Collections []Collection
	Singletons  []Singleton
	// Validator is required if any collection has a SchemaID
	Validator *schema.Validator
	// Router is optional, a new one is created if nil
	Router *mux.Router
}

// Server serves the collections
type Server struct {
	router      *mux.Router
	validator   *schema.Validator
	collections map[string]*collection
}

type collection struct {
	resource   string
	this       string
	owners     []string
	idProperty string
	schemaID   string
	singleton  bool
	operations map[core.Operation]bool
	store      *dataservice.MemoryStore[Item]
}

// New creates a new server. It panics on invalid configuration.
func New(b *Builder) *Server {
	router := b.Router
	if router == nil {
		router = mux.NewRouter()
	}
	s := &Server{
		router:      router,
		validator:   b.Validator,
		collections: map[string]*collection{},
	}

	logger.AddRequestID(router)
	router.Use(corsMiddleware)
	router.Use(func(h http.Handler) http.Handler {
		return handlers.CompressHandler(h)
	})

	for _, c := range b.Collections {
		idProperty := c.IDProperty
		if idProperty == "" {
			idProperty = DefaultIDProperty
		}
		col := s.newCollection(c.Resource, c.SchemaID, c.Operations, false)
		col.idProperty = idProperty
		col.store = dataservice.NewMemoryStore(col.itemID, c.Items...).WithIDGenerator(func(item Item, newID string) Item {
			item[idProperty] = newID
			return item
		})
		s.handleCollection(b.Prefix, col)
	}

	for _, c := range b.Singletons {
		col := s.newCollection(c.Resource, c.SchemaID, c.Operations, true)
		col.store = dataservice.NewMemoryStore(col.ownerKey)
		for _, item := range c.Items {
			if _, ok := col.store.InsertIfAbsent(item); !ok {
				panic("mockserver: more than one item per owner for singleton " + c.Resource)
			}
		}
		s.handleSingleton(b.Prefix, col)
	}
	return s
}

func (s *Server) newCollection(resource, schemaID string, operations []core.Operation, singleton bool) *collection {
	if schemaID != "" && (s.validator == nil || !s.validator.HasSchema(schemaID)) {
		panic(fmt.Sprintf("mockserver: unknown schema %s for resource %s", schemaID, resource))
	}
	if _, ok := s.collections[resource]; ok {
		panic("mockserver: duplicate resource " + resource)
	}
	resources := strings.Split(resource, "/")
	col := &collection{
		resource:   resource,
		this:       resources[len(resources)-1],
		owners:     resources[:len(resources)-1],
		schemaID:   schemaID,
		singleton:  singleton,
		operations: map[core.Operation]bool{},
	}
	for _, op := range operations {
		switch op {
		case core.OperationList, core.OperationCreate:
			if singleton {
				panic(fmt.Sprintf("mockserver: operation %s is not valid for singleton %s", op, resource))
			}
		case core.OperationRead, core.OperationUpdate, core.OperationDelete:
		default:
			panic(fmt.Sprintf("mockserver: invalid operation %s for resource %s", op, resource))
		}
		col.operations[op] = true
	}
	s.collections[resource] = col
	return col
}

// Router returns the router serving the collections
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Items returns the current data set of resource
func (s *Server) Items(resource string) []Item {
	col, ok := s.collections[resource]
	if !ok {
		return nil
	}
	return col.store.List()
}

// Resources returns the names of all resources, sorted
func (s *Server) Resources() []string {
	var resources []string
	for resource := range s.collections {
		resources = append(resources, resource)
	}
	sort.Strings(resources)
	return resources
}

func corsMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method, "(handled by CORS middleware)")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func (col *collection) allows(op core.Operation) bool {
	return len(col.operations) == 0 || col.operations[op]
}

func (col *collection) itemID(item Item) string {
	if v, ok := item[col.idProperty]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// ownerKey identifies the owners of item, it is empty for top level resources
func (col *collection) ownerKey(item Item) string {
	var key []string
	for _, owner := range col.owners {
		key = append(key, owner+"_id="+fmt.Sprint(item[owner+"_id"]))
	}
	return strings.Join(key, "/")
}

// ownedBy returns true if item belongs to the owners named in the route variables
func (col *collection) ownedBy(item Item, vars map[string]string) bool {
	for _, owner := range col.owners {
		if v, ok := item[owner+"_id"]; !ok || fmt.Sprint(v) != vars[owner+"_id"] {
			return false
		}
	}
	return true
}

// own sets the owner properties of item from the route variables. It returns false if
// item already names different owners.
func (col *collection) own(item Item, vars map[string]string) bool {
	for _, owner := range col.owners {
		property := owner + "_id"
		if v, ok := item[property]; ok && v != nil && fmt.Sprint(v) != vars[property] {
			return false
		}
		item[property] = vars[property]
	}
	return true
}

// ownerRoute returns the route prefix of the owners, e.g. /fleets/{fleet_id}
func (col *collection) ownerRoute(prefix string) string {
	route := prefix
	for _, owner := range col.owners {
		route += "/" + core.Plural(owner) + "/{" + owner + "_id}"
	}
	return route
}

// parentExists returns false if the immediate owner is a served collection without
// the item named in vars
func (s *Server) parentExists(col *collection, vars map[string]string) bool {
	if len(col.owners) == 0 {
		return true
	}
	parent, ok := s.collections[strings.Join(col.owners, "/")]
	if !ok || parent.singleton {
		return true
	}
	item, ok := parent.store.Get(vars[col.owners[len(col.owners)-1]+"_id"])
	return ok && parent.ownedBy(item, vars)
}

func (s *Server) handleCollection(prefix string, col *collection) {
	listRoute := col.ownerRoute(prefix) + "/" + core.Plural(col.this)
	itemRoute := listRoute + "/{id}"

	logger.Default().Debugln("mock collection", col.resource)
	logger.Default().Debugln("  handle routes:", listRoute, "GET,POST")
	logger.Default().Debugln("  handle routes:", itemRoute, "GET,PUT,DELETE")

	if col.allows(core.OperationList) {
		s.router.HandleFunc(listRoute, func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
			s.list(w, r, col)
		}).Methods(http.MethodOptions, http.MethodGet)
	}

	if col.allows(core.OperationCreate) {
		s.router.HandleFunc(listRoute, func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
			s.create(w, r, col)
		}).Methods(http.MethodOptions, http.MethodPost)
	}

	if col.allows(core.OperationRead) {
		s.router.HandleFunc(itemRoute, func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
			s.read(w, r, col)
		}).Methods(http.MethodOptions, http.MethodGet)
	}

	if col.allows(core.OperationUpdate) {
		s.router.HandleFunc(itemRoute, func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
			s.update(w, r, col)
		}).Methods(http.MethodOptions, http.MethodPut)
	}

	if col.allows(core.OperationDelete) {
		s.router.HandleFunc(itemRoute, func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
			s.delete(w, r, col)
		}).Methods(http.MethodOptions, http.MethodDelete)
	}
}

func (s *Server) handleSingleton(prefix string, col *collection) {
	singletonRoute := col.ownerRoute(prefix) + "/" + col.this

	logger.Default().Debugln("mock singleton", col.resource)
	logger.Default().Debugln("  handle singleton routes:", singletonRoute, "GET,PUT,DELETE")

	if col.allows(core.OperationRead) {
		s.router.HandleFunc(singletonRoute, func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
			s.readSingleton(w, r, col)
		}).Methods(http.MethodOptions, http.MethodGet)
	}

	if col.allows(core.OperationUpdate) {
		s.router.HandleFunc(singletonRoute, func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
			s.updateSingleton(w, r, col)
		}).Methods(http.MethodOptions, http.MethodPut)
	}

	if col.allows(core.OperationDelete) {
		s.router.HandleFunc(singletonRoute, func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)
			s.deleteSingleton(w, r, col)
		}).Methods(http.MethodOptions, http.MethodDelete)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, col *collection) {
	vars := mux.Vars(r)
	if !s.parentExists(col, vars) {
		http.Error(w, "owner not found", http.StatusNotFound)
		return
	}
	query := r.URL.Query()
	result := []Item{}
	for _, item := range col.store.List() {
		if col.ownedBy(item, vars) && matches(item, query) {
			result = append(result, item)
		}
	}
	writeJSON(w, r, http.StatusOK, result)
}

func matches(item Item, query map[string][]string) bool {
	for key, values := range query {
		v, ok := item[key]
		if !ok {
			return false
		}
		found := false
		for _, value := range values {
			if fmt.Sprint(v) == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *Server) read(w http.ResponseWriter, r *http.Request, col *collection) {
	vars := mux.Vars(r)
	item, ok := col.store.Get(vars["id"])
	if !ok || !col.ownedBy(item, vars) {
		http.Error(w, fmt.Sprintf("%s %s not found", col.resource, vars["id"]), http.StatusNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, col *collection) {
	vars := mux.Vars(r)
	item, ok := s.readBody(w, r, col)
	if !ok {
		return
	}
	if !col.own(item, vars) {
		http.Error(w, "owner in body does not match path", http.StatusBadRequest)
		return
	}
	if !s.parentExists(col, vars) {
		http.Error(w, "owner not found", http.StatusNotFound)
		return
	}
	stored, ok := col.store.InsertIfAbsent(item)
	if !ok {
		http.Error(w, fmt.Sprintf("%s %s already exists", col.resource, col.itemID(stored)), http.StatusConflict)
		return
	}
	writeJSON(w, r, http.StatusCreated, stored)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, col *collection) {
	vars := mux.Vars(r)
	id := vars["id"]
	item, ok := s.readBody(w, r, col)
	if !ok {
		return
	}
	if bodyID, ok := item[col.idProperty]; ok && bodyID != nil && fmt.Sprint(bodyID) != id {
		http.Error(w, fmt.Sprintf("%s in body does not match path", col.idProperty), http.StatusBadRequest)
		return
	}
	if !col.own(item, vars) {
		http.Error(w, "owner in body does not match path", http.StatusBadRequest)
		return
	}
	owned := true
	updated, ok := col.store.Modify(id, func(existing Item) Item {
		if !col.ownedBy(existing, vars) {
			owned = false
			return existing
		}
		// keep the identifier as stored, it may be a number
		item[col.idProperty] = existing[col.idProperty]
		return item
	})
	if !ok || !owned {
		http.Error(w, fmt.Sprintf("%s %s not found", col.resource, id), http.StatusNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request, col *collection) {
	vars := mux.Vars(r)
	_, ok := col.store.RemoveIf(vars["id"], func(existing Item) bool {
		return col.ownedBy(existing, vars)
	})
	if !ok {
		http.Error(w, fmt.Sprintf("%s %s not found", col.resource, vars["id"]), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) singletonKey(col *collection, vars map[string]string) string {
	key := Item{}
	col.own(key, vars)
	return col.ownerKey(key)
}

func (s *Server) readSingleton(w http.ResponseWriter, r *http.Request, col *collection) {
	item, ok := col.store.Get(s.singletonKey(col, mux.Vars(r)))
	if !ok {
		http.Error(w, col.resource+" not found", http.StatusNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) updateSingleton(w http.ResponseWriter, r *http.Request, col *collection) {
	vars := mux.Vars(r)
	item, ok := s.readBody(w, r, col)
	if !ok {
		return
	}
	if !col.own(item, vars) {
		http.Error(w, "owner in body does not match path", http.StatusBadRequest)
		return
	}
	if !s.parentExists(col, vars) {
		http.Error(w, "owner not found", http.StatusNotFound)
		return
	}
	col.store.Put(item)
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) deleteSingleton(w http.ResponseWriter, r *http.Request, col *collection) {
	if _, ok := col.store.RemoveID(s.singletonKey(col, mux.Vars(r))); !ok {
		http.Error(w, col.resource+" not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request, col *collection) (Item, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if col.schemaID != "" {
		if err := s.validator.ValidateBytes(body, col.schemaID); err != nil {
			logger.FromContext(r.Context()).WithError(err).Infoln("rejected invalid body for", col.resource)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
	}
	var item Item
	if err := json.Unmarshal(body, &item); err != nil || item == nil {
		http.Error(w, "body must be a JSON object", http.StatusBadRequest)
		return nil, false
	}
	return item, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, value interface{}) {
	body, err := json.Marshal(value)
	if err != nil {
		logger.FromContext(r.Context()).WithError(err).Errorln("cannot marshal response")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
