package dataservice

import (
	"time"

	"github.com/relabs-tech/utilities/core"
	"github.com/relabs-tech/utilities/core/logger"
	"github.com/relabs-tech/utilities/core/promise"
	"github.com/sirupsen/logrus"
)

// Transport is the HTTP capability a Behavior needs. client.Client implements it.
//
// Any non-2xx status or transport failure must be returned as error.
type Transport interface {
	RawGet(path string, params map[string]string, result interface{}) (int, error)
	RawPost(path string, body interface{}, result interface{}) (int, error)
	RawPut(path string, body interface{}, result interface{}) (int, error)
	RawDelete(path string) (int, error)
}

// ListConfig configures GetList
type ListConfig[S any] struct {
	Endpoint    string
	Params      map[string]string
	UseMock     bool
	GetMockData func() []S
	LogRequests bool
}

// ItemConfig configures GetItem
type ItemConfig[S any] struct {
	Endpoint    string
	UseMock     bool
	GetMockData func() S
	LogRequests bool
}

// CreateConfig configures Create
type CreateConfig[S, C any] struct {
	DomainObject C
	Endpoint     string
	UseMock      bool
	AddMockData  func(S)
	LogRequests  bool
}

// UpdateConfig configures Update
type UpdateConfig[S, C any] struct {
	DomainObject   C
	Endpoint       string
	UseMock        bool
	UpdateMockData func(S)
	LogRequests    bool
}

// DeleteConfig configures Delete
type DeleteConfig[S, C any] struct {
	DomainObject   C
	Endpoint       string
	UseMock        bool
	RemoveMockData func(S)
	LogRequests    bool
}

// Behavior implements the data access operations for one collection of domain objects.
//
// A Behavior keeps no state between calls. It is safe for concurrent use as long as
// the transport and the mock accessors are.
type Behavior[S, C any] struct {
	transport  Transport
	fromServer func(S) (C, error)
	toServer   func(C) (S, error)
	log        *logrus.Entry
	metrics    *Metrics
}

// Option configures a Behavior
type Option func(*options)

type options struct {
	log     *logrus.Entry
	metrics *Metrics
}

// WithLogger sets the logger used for LogRequests
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMetrics makes the behavior record operations in m
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New creates a behavior. transform may be nil, in which case both directions
// are the identity.
func New[S, C any](transport Transport, transform *Transform[S, C], opts ...Option) *Behavior[S, C] {
	o := options{log: logger.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	t := transform.resolve()
	return &Behavior[S, C]{
		transport:  transport,
		fromServer: t.FromServer,
		toServer:   t.ToServer,
		log:        o.log,
		metrics:    o.metrics,
	}
}

// GetList returns the list of domain objects, converted with FromServer in order.
//
// On the mock path the list comes from GetMockData, otherwise from a GET request
// to Endpoint with Params as query parameters.
func (b *Behavior[S, C]) GetList(cfg ListConfig[S]) *promise.Future[[]C] {
	if cfg.UseMock {
		if cfg.GetMockData == nil {
			return promise.Rejected[[]C](ErrMissingMockAccessor)
		}
		start := b.begin(core.OperationList, core.ModeMock, cfg.Endpoint, cfg.LogRequests)
		result, err := fromServerAll(b.fromServer, cfg.GetMockData())
		b.end(core.OperationList, core.ModeMock, cfg.Endpoint, cfg.LogRequests, start, err)
		return settled(result, err)
	}
	if err := b.checkNetwork(cfg.Endpoint); err != nil {
		return promise.Rejected[[]C](err)
	}
	return promise.Go(func() ([]C, error) {
		start := b.begin(core.OperationList, core.ModeNetwork, cfg.Endpoint, cfg.LogRequests)
		var body []S
		_, err := b.transport.RawGet(cfg.Endpoint, cfg.Params, &body)
		var result []C
		if err == nil {
			result, err = fromServerAll(b.fromServer, body)
		}
		b.end(core.OperationList, core.ModeNetwork, cfg.Endpoint, cfg.LogRequests, start, err)
		return result, err
	})
}

// GetItem returns a single domain object, converted once with FromServer.
func (b *Behavior[S, C]) GetItem(cfg ItemConfig[S]) *promise.Future[C] {
	if cfg.UseMock {
		if cfg.GetMockData == nil {
			return promise.Rejected[C](ErrMissingMockAccessor)
		}
		start := b.begin(core.OperationRead, core.ModeMock, cfg.Endpoint, cfg.LogRequests)
		result, err := b.fromServer(cfg.GetMockData())
		b.end(core.OperationRead, core.ModeMock, cfg.Endpoint, cfg.LogRequests, start, err)
		return settled(result, err)
	}
	if err := b.checkNetwork(cfg.Endpoint); err != nil {
		return promise.Rejected[C](err)
	}
	return promise.Go(func() (C, error) {
		start := b.begin(core.OperationRead, core.ModeNetwork, cfg.Endpoint, cfg.LogRequests)
		result, err := b.receive(func(body *S) error {
			_, err := b.transport.RawGet(cfg.Endpoint, nil, body)
			return err
		})
		b.end(core.OperationRead, core.ModeNetwork, cfg.Endpoint, cfg.LogRequests, start, err)
		return result, err
	})
}

// Create creates a new domain object.
//
// On the mock path, AddMockData receives ToServer(DomainObject) and the future
// resolves with the original DomainObject. On the network path, ToServer(DomainObject)
// is posted to Endpoint and the future resolves with FromServer of the response.
func (b *Behavior[S, C]) Create(cfg CreateConfig[S, C]) *promise.Future[C] {
	if cfg.UseMock {
		return mutateMock(b, core.OperationCreate, cfg.Endpoint, cfg.LogRequests, cfg.DomainObject, cfg.AddMockData)
	}
	return b.send(core.OperationCreate, cfg.Endpoint, cfg.LogRequests, cfg.DomainObject, Transport.RawPost)
}

// Update updates an existing domain object. It mirrors Create, using UpdateMockData
// on the mock path and a PUT request on the network path.
func (b *Behavior[S, C]) Update(cfg UpdateConfig[S, C]) *promise.Future[C] {
	if cfg.UseMock {
		return mutateMock(b, core.OperationUpdate, cfg.Endpoint, cfg.LogRequests, cfg.DomainObject, cfg.UpdateMockData)
	}
	return b.send(core.OperationUpdate, cfg.Endpoint, cfg.LogRequests, cfg.DomainObject, Transport.RawPut)
}

// Delete deletes a domain object.
//
// On the mock path RemoveMockData receives ToServer(DomainObject). On the network
// path a DELETE request is sent to Endpoint; the domain object is not sent.
func (b *Behavior[S, C]) Delete(cfg DeleteConfig[S, C]) *promise.Future[struct{}] {
	if cfg.UseMock {
		f := mutateMock(b, core.OperationDelete, cfg.Endpoint, cfg.LogRequests, cfg.DomainObject, cfg.RemoveMockData)
		_, err := f.Wait() // the mock path settles synchronously
		return settled(struct{}{}, err)
	}
	if err := b.checkNetwork(cfg.Endpoint); err != nil {
		return promise.Rejected[struct{}](err)
	}
	return promise.Go(func() (struct{}, error) {
		start := b.begin(core.OperationDelete, core.ModeNetwork, cfg.Endpoint, cfg.LogRequests)
		_, err := b.transport.RawDelete(cfg.Endpoint)
		b.end(core.OperationDelete, core.ModeNetwork, cfg.Endpoint, cfg.LogRequests, start, err)
		return struct{}{}, err
	})
}

func mutateMock[S, C any](b *Behavior[S, C], op core.Operation, endpoint string, logRequests bool, domainObject C, mutate func(S)) *promise.Future[C] {
	if mutate == nil {
		return promise.Rejected[C](ErrMissingMockAccessor)
	}
	start := b.begin(op, core.ModeMock, endpoint, logRequests)
	s, err := b.toServer(domainObject)
	if err == nil {
		mutate(s)
	}
	b.end(op, core.ModeMock, endpoint, logRequests, start, err)
	return settled(domainObject, err)
}

// send converts domainObject with ToServer and sends it with request, a method
// expression of Transport
func (b *Behavior[S, C]) send(op core.Operation, endpoint string, logRequests bool, domainObject C,
	request func(t Transport, path string, body interface{}, result interface{}) (int, error)) *promise.Future[C] {
	if err := b.checkNetwork(endpoint); err != nil {
		return promise.Rejected[C](err)
	}
	s, err := b.toServer(domainObject)
	if err != nil {
		return promise.Rejected[C](err)
	}
	return promise.Go(func() (C, error) {
		start := b.begin(op, core.ModeNetwork, endpoint, logRequests)
		result, err := b.receive(func(body *S) error {
			_, err := request(b.transport, endpoint, s, body)
			return err
		})
		b.end(op, core.ModeNetwork, endpoint, logRequests, start, err)
		return result, err
	})
}

// checkNetwork returns the contract violation preventing a network request, if any
func (b *Behavior[S, C]) checkNetwork(endpoint string) error {
	if endpoint == "" {
		return ErrMissingEndpoint
	}
	if b.transport == nil {
		return ErrMissingTransport
	}
	return nil
}

// receive runs request and converts the decoded body with FromServer
func (b *Behavior[S, C]) receive(request func(body *S) error) (C, error) {
	var body S
	if err := request(&body); err != nil {
		var zero C
		return zero, err
	}
	return b.fromServer(body)
}

func (b *Behavior[S, C]) begin(op core.Operation, mode core.Mode, endpoint string, logRequests bool) time.Time {
	if logRequests {
		b.log.WithFields(logrus.Fields{
			"operation": op,
			"mode":      mode,
			"endpoint":  endpoint,
		}).Infoln("request")
	}
	return time.Now()
}

func (b *Behavior[S, C]) end(op core.Operation, mode core.Mode, endpoint string, logRequests bool, start time.Time, err error) {
	duration := time.Since(start)
	b.metrics.observe(op, mode, duration, err)
	if !logRequests {
		return
	}
	rlog := b.log.WithFields(logrus.Fields{
		"operation": op,
		"mode":      mode,
		"endpoint":  endpoint,
		"duration":  duration,
	})
	if err != nil {
		rlog.WithError(err).Errorln("request failed")
		return
	}
	rlog.Infoln("request done")
}

func settled[T any](value T, err error) *promise.Future[T] {
	if err != nil {
		return promise.Rejected[T](err)
	}
	return promise.Resolved(value)
}
