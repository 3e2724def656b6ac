package dataservice

import (
	"net/url"
	"strings"

	"github.com/relabs-tech/utilities/core/promise"
)

// DataService is the contract for a collection of domain objects of caller shape C
type DataService[C any] interface {
	List(params map[string]string) *promise.Future[[]C]
	Read(id string) *promise.Future[C]
	Create(domainObject C) *promise.Future[C]
	Update(domainObject C) *promise.Future[C]
	Delete(domainObject C) *promise.Future[struct{}]
}

// ResourceBuilder is a helper builder for NewResource
type ResourceBuilder[S, C any] struct {
	// Endpoint is the collection path, for example "/api/widgets". Items
	// live at Endpoint + "/" + id.
	Endpoint string
	// Transport is used unless UseMock is set
	Transport Transport
	// Transform is optional
	Transform *Transform[S, C]
	// ID returns the identifier of a domain object
	ID func(C) string
	// UseMock selects the mock path for all operations. Store must be set then.
	UseMock bool
	Store   *MemoryStore[S]
	// LogRequests logs every operation
	LogRequests bool
	Options     []Option
}

// Resource is a DataService for one REST collection
type Resource[S, C any] struct {
	behavior    *Behavior[S, C]
	transport   Transport
	endpoint    string
	id          func(C) string
	useMock     bool
	store       *MemoryStore[S]
	logRequests bool
}

var _ DataService[struct{}] = (*Resource[struct{}, struct{}])(nil)

// NewResource creates a new resource data service
func NewResource[S, C any](rb *ResourceBuilder[S, C]) *Resource[S, C] {
	if rb.UseMock && rb.Store == nil {
		panic("dataservice: resource " + rb.Endpoint + " uses mock data but has no store")
	}
	if rb.ID == nil {
		panic("dataservice: resource " + rb.Endpoint + " has no ID function")
	}
	return &Resource[S, C]{
		behavior:    New(rb.Transport, rb.Transform, rb.Options...),
		transport:   rb.Transport,
		endpoint:    strings.TrimSuffix(rb.Endpoint, "/"),
		id:          rb.ID,
		useMock:     rb.UseMock,
		store:       rb.Store,
		logRequests: rb.LogRequests,
	}
}

// Behavior returns the underlying behavior
func (r *Resource[S, C]) Behavior() *Behavior[S, C] {
	return r.behavior
}

// ItemPath returns the endpoint of the item with the given identifier
func (r *Resource[S, C]) ItemPath(id string) string {
	return r.endpoint + "/" + url.PathEscape(id)
}

// ChildEndpoint returns the endpoint of a resource owned by the item with the given
// identifier, e.g. "/api/fleets/f1/vehicles" for id "f1" and child "vehicles"
func (r *Resource[S, C]) ChildEndpoint(id, child string) string {
	return r.ItemPath(id) + "/" + strings.Trim(child, "/")
}

// NewChildResource creates the resource for a collection owned by the item parentID
// of parent. rb.Endpoint is relative to the item, e.g. "vehicles". A nil rb.Transport
// defaults to the transport of parent.
func NewChildResource[S, C, PS, PC any](parent *Resource[PS, PC], parentID string, rb *ResourceBuilder[S, C]) *Resource[S, C] {
	child := *rb
	child.Endpoint = parent.ChildEndpoint(parentID, rb.Endpoint)
	if child.Transport == nil {
		child.Transport = parent.transport
	}
	return NewResource(&child)
}

// List lists the collection. On the network path, params are sent as query parameters.
func (r *Resource[S, C]) List(params map[string]string) *promise.Future[[]C] {
	cfg := ListConfig[S]{
		Endpoint:    r.endpoint,
		Params:      params,
		UseMock:     r.useMock,
		LogRequests: r.logRequests,
	}
	if r.useMock {
		cfg.GetMockData = r.store.List
	}
	return r.behavior.GetList(cfg)
}

// Read reads the item with the given identifier
func (r *Resource[S, C]) Read(id string) *promise.Future[C] {
	cfg := ItemConfig[S]{
		Endpoint:    r.ItemPath(id),
		UseMock:     r.useMock,
		LogRequests: r.logRequests,
	}
	if r.useMock {
		item, ok := r.store.Get(id)
		if !ok {
			return promise.Rejected[C](ErrNotFound)
		}
		cfg.GetMockData = func() S { return item }
	}
	return r.behavior.GetItem(cfg)
}

// Create creates domainObject in the collection
func (r *Resource[S, C]) Create(domainObject C) *promise.Future[C] {
	cfg := CreateConfig[S, C]{
		DomainObject: domainObject,
		Endpoint:     r.endpoint,
		UseMock:      r.useMock,
		LogRequests:  r.logRequests,
	}
	if r.useMock {
		cfg.AddMockData = r.store.Add
	}
	return r.behavior.Create(cfg)
}

// Update updates domainObject at its item path
func (r *Resource[S, C]) Update(domainObject C) *promise.Future[C] {
	cfg := UpdateConfig[S, C]{
		DomainObject: domainObject,
		Endpoint:     r.ItemPath(r.id(domainObject)),
		UseMock:      r.useMock,
		LogRequests:  r.logRequests,
	}
	if r.useMock {
		cfg.UpdateMockData = r.store.Update
	}
	return r.behavior.Update(cfg)
}

// Delete deletes domainObject at its item path
func (r *Resource[S, C]) Delete(domainObject C) *promise.Future[struct{}] {
	cfg := DeleteConfig[S, C]{
		DomainObject: domainObject,
		Endpoint:     r.ItemPath(r.id(domainObject)),
		UseMock:      r.useMock,
		LogRequests:  r.logRequests,
	}
	if r.useMock {
		cfg.RemoveMockData = r.store.Remove
	}
	return r.behavior.Delete(cfg)
}

// ParentDataService is a DataService whose items own further data services.
// Children is typically a struct with one field per child resource.
type ParentDataService[C, Children any] interface {
	DataService[C]
	ChildContracts(id string) Children
}

// ParentResource is a Resource with child resources
type ParentResource[S, C, Children any] struct {
	*Resource[S, C]
	children func(parent *Resource[S, C], id string) Children
}

var _ ParentDataService[struct{}, struct{}] = (*ParentResource[struct{}, struct{}, struct{}])(nil)

// NewParentResource creates a resource whose child resources are built by children,
// usually with NewChildResource and NewChildSingleton
func NewParentResource[S, C, Children any](rb *ResourceBuilder[S, C],
	children func(parent *Resource[S, C], id string) Children) *ParentResource[S, C, Children] {
	if children == nil {
		panic("dataservice: parent resource " + rb.Endpoint + " has no children function")
	}
	return &ParentResource[S, C, Children]{
		Resource: NewResource(rb),
		children: children,
	}
}

// ChildContracts returns the child resources of the item with the given identifier
func (p *ParentResource[S, C, Children]) ChildContracts(id string) Children {
	return p.children(p.Resource, id)
}
