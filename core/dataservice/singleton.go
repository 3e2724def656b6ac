package dataservice

import (
	"strings"

	"github.com/relabs-tech/utilities/core/promise"
)

// SingletonDataService is the contract for a resource which exists exactly once,
// like the settings of an application or the profile of a user
type SingletonDataService[C any] interface {
	Get() *promise.Future[C]
	Update(domainObject C) *promise.Future[C]
}

// SingletonBuilder is a helper builder for NewSingleton
type SingletonBuilder[S, C any] struct {
	// Endpoint is the path of the resource, for example "/api/settings"
	Endpoint string
	// Transport is used unless UseMock is set
	Transport Transport
	// Transform is optional
	Transform *Transform[S, C]
	// UseMock selects the mock path for all operations. Item must be set then.
	UseMock bool
	Item    *MemoryItem[S]
	// LogRequests logs every operation
	LogRequests bool
	Options     []Option
}

// Singleton is a SingletonDataService for one REST resource
type Singleton[S, C any] struct {
	behavior    *Behavior[S, C]
	endpoint    string
	useMock     bool
	item        *MemoryItem[S]
	logRequests bool
}

var _ SingletonDataService[struct{}] = (*Singleton[struct{}, struct{}])(nil)

// NewSingleton creates a new singleton data service
func NewSingleton[S, C any](sb *SingletonBuilder[S, C]) *Singleton[S, C] {
	if sb.UseMock && sb.Item == nil {
		panic("dataservice: singleton " + sb.Endpoint + " uses mock data but has no item")
	}
	return &Singleton[S, C]{
		behavior:    New(sb.Transport, sb.Transform, sb.Options...),
		endpoint:    strings.TrimSuffix(sb.Endpoint, "/"),
		useMock:     sb.UseMock,
		item:        sb.Item,
		logRequests: sb.LogRequests,
	}
}

// NewChildSingleton creates the singleton owned by the item parentID of parent.
// sb.Endpoint is relative to the item, e.g. "settings". A nil sb.Transport defaults
// to the transport of parent.
func NewChildSingleton[S, C, PS, PC any](parent *Resource[PS, PC], parentID string, sb *SingletonBuilder[S, C]) *Singleton[S, C] {
	child := *sb
	child.Endpoint = parent.ChildEndpoint(parentID, sb.Endpoint)
	if child.Transport == nil {
		child.Transport = parent.transport
	}
	return NewSingleton(&child)
}

// Behavior returns the underlying behavior
func (s *Singleton[S, C]) Behavior() *Behavior[S, C] {
	return s.behavior
}

// Endpoint returns the path of the resource
func (s *Singleton[S, C]) Endpoint() string {
	return s.endpoint
}

// Get reads the resource
func (s *Singleton[S, C]) Get() *promise.Future[C] {
	cfg := ItemConfig[S]{
		Endpoint:    s.endpoint,
		UseMock:     s.useMock,
		LogRequests: s.logRequests,
	}
	if s.useMock {
		cfg.GetMockData = s.item.Get
	}
	return s.behavior.GetItem(cfg)
}

// Update replaces the resource with domainObject
func (s *Singleton[S, C]) Update(domainObject C) *promise.Future[C] {
	cfg := UpdateConfig[S, C]{
		DomainObject: domainObject,
		Endpoint:     s.endpoint,
		UseMock:      s.useMock,
		LogRequests:  s.logRequests,
	}
	if s.useMock {
		cfg.UpdateMockData = s.item.Set
	}
	return s.behavior.Update(cfg)
}
