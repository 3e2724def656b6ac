package dataservice_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/relabs-tech/utilities/core/client"
	"github.com/relabs-tech/utilities/core/dataservice"
	"github.com/relabs-tech/utilities/core/mockserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// widgetRecord is the shape of a widget on the wire
type widgetRecord struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Widget is the shape the application works with
type Widget struct {
	ID    string
	Title string
}

var widgetTransform = &dataservice.Transform[widgetRecord, Widget]{
	FromServer: dataservice.Func(func(r widgetRecord) Widget {
		return Widget{ID: r.ID, Title: strings.ToUpper(r.Name)}
	}),
	ToServer: dataservice.Func(func(w Widget) widgetRecord {
		return widgetRecord{ID: w.ID, Name: strings.ToLower(w.Title)}
	}),
}

func widgetID(w Widget) string { return w.ID }

type ResourceTestSuite struct {
	suite.Suite
	server   *mockserver.Server
	widgets  *dataservice.Resource[widgetRecord, Widget]
	requests []string
}

func TestResourceTestSuite(t *testing.T) {
	suite.Run(t, &ResourceTestSuite{})
}

func (s *ResourceTestSuite) SetupTest() {
	s.requests = nil
	s.server = mockserver.New(&mockserver.Builder{
		Prefix: "/api",
		Collections: []mockserver.Collection{{
			Resource: "widget",
			Items: []mockserver.Item{
				{"id": "1", "name": "first", "color": "red"},
				{"id": "2", "name": "second", "color": "blue"},
			},
		}},
	})
	s.server.Router().Use(func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.requests = append(s.requests, r.Method+" "+r.URL.Path)
			h.ServeHTTP(w, r)
		})
	})
	s.widgets = dataservice.NewResource(&dataservice.ResourceBuilder[widgetRecord, Widget]{
		Endpoint:  "/api/widgets",
		Transport: client.NewWithRouter(s.server.Router()),
		Transform: widgetTransform,
		ID:        widgetID,
	})
}

func (s *ResourceTestSuite) TestList() {
	list, err := s.widgets.List(nil).Wait()
	s.Require().NoError(err)
	s.Equal([]Widget{{"1", "FIRST"}, {"2", "SECOND"}}, list)

	list, err = s.widgets.List(map[string]string{"color": "blue"}).Wait()
	s.Require().NoError(err)
	s.Equal([]Widget{{"2", "SECOND"}}, list)
}

func (s *ResourceTestSuite) TestRead() {
	w, err := s.widgets.Read("2").Wait()
	s.Require().NoError(err)
	s.Equal(Widget{"2", "SECOND"}, w)

	_, err = s.widgets.Read("3").Wait()
	var statusErr *client.StatusError
	s.Require().True(errors.As(err, &statusErr))
	s.Equal(http.StatusNotFound, statusErr.Status)
}

func (s *ResourceTestSuite) TestCreateUpdateDelete() {
	created, err := s.widgets.Create(Widget{Title: "Third"}).Wait()
	s.Require().NoError(err)
	s.NotEmpty(created.ID)
	s.Equal("THIRD", created.Title)
	s.Len(s.server.Items("widget"), 3)

	updated, err := s.widgets.Update(Widget{ID: created.ID, Title: "Renamed"}).Wait()
	s.Require().NoError(err)
	s.Equal(Widget{created.ID, "RENAMED"}, updated)
	s.Equal("renamed", s.server.Items("widget")[2]["name"])

	_, err = s.widgets.Delete(updated).Wait()
	s.Require().NoError(err)
	s.Len(s.server.Items("widget"), 2)

	s.Equal([]string{
		"POST /api/widgets",
		"PUT /api/widgets/" + created.ID,
		"DELETE /api/widgets/" + created.ID,
	}, s.requests)
}

func TestResourceMock(t *testing.T) {
	store := dataservice.NewMemoryStore(func(r widgetRecord) string { return r.ID },
		widgetRecord{"1", "first"},
		widgetRecord{"2", "second"},
	)
	widgets := dataservice.NewResource(&dataservice.ResourceBuilder[widgetRecord, Widget]{
		Endpoint:  "/api/widgets",
		Transform: widgetTransform,
		ID:        widgetID,
		UseMock:   true,
		Store:     store,
	})

	list, err := widgets.List(nil).Wait()
	require.NoError(t, err)
	assert.Equal(t, []Widget{{"1", "FIRST"}, {"2", "SECOND"}}, list)

	w, err := widgets.Read("1").Wait()
	require.NoError(t, err)
	assert.Equal(t, Widget{"1", "FIRST"}, w)

	_, err = widgets.Read("9").Wait()
	assert.ErrorIs(t, err, dataservice.ErrNotFound)

	// the mock path resolves with the object it was given
	created, err := widgets.Create(Widget{ID: "3", Title: "Third"}).Wait()
	require.NoError(t, err)
	assert.Equal(t, Widget{ID: "3", Title: "Third"}, created)
	stored, ok := store.Get("3")
	require.True(t, ok)
	assert.Equal(t, "third", stored.Name)

	_, err = widgets.Update(Widget{ID: "1", Title: "One"}).Wait()
	require.NoError(t, err)
	stored, _ = store.Get("1")
	assert.Equal(t, "one", stored.Name)

	_, err = widgets.Delete(Widget{ID: "2"}).Wait()
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
}

func TestResourcePanics(t *testing.T) {
	assert.Panics(t, func() {
		dataservice.NewResource(&dataservice.ResourceBuilder[widgetRecord, Widget]{
			Endpoint: "/api/widgets",
			ID:       widgetID,
			UseMock:  true,
		})
	})
	assert.Panics(t, func() {
		dataservice.NewResource(&dataservice.ResourceBuilder[widgetRecord, Widget]{
			Endpoint: "/api/widgets",
		})
	})
}

func TestItemPath(t *testing.T) {
	widgets := dataservice.NewResource(&dataservice.ResourceBuilder[widgetRecord, Widget]{
		Endpoint: "/api/widgets/",
		ID:       widgetID,
	})
	assert.Equal(t, "/api/widgets/a%2Fb", widgets.ItemPath("a/b"))
}
