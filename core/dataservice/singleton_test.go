package dataservice_test

import (
	"testing"

	"github.com/relabs-tech/utilities/core/client"
	"github.com/relabs-tech/utilities/core/dataservice"
	"github.com/relabs-tech/utilities/core/mockserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fleet struct {
	ID string `json:"id,omitempty"`
}

type vehicle struct {
	ID      string `json:"id,omitempty"`
	FleetID string `json:"fleet_id,omitempty"`
	Name    string `json:"name"`
}

type fleetSettings struct {
	Color string `json:"color"`
}

// fleetChildren are the data services owned by one fleet
type fleetChildren struct {
	Vehicles dataservice.DataService[vehicle]
	Settings dataservice.SingletonDataService[fleetSettings]
}

func newFleetBackend() *mockserver.Server {
	return mockserver.New(&mockserver.Builder{
		Prefix: "/api",
		Collections: []mockserver.Collection{
			{Resource: "fleet", Items: []mockserver.Item{{"id": "f1"}, {"id": "f2"}}},
			{
				Resource: "fleet/vehicle",
				Items: []mockserver.Item{
					{"id": "v1", "fleet_id": "f1", "name": "truck"},
					{"id": "v2", "fleet_id": "f2", "name": "van"},
				},
			},
		},
		Singletons: []mockserver.Singleton{
			{Resource: "fleet/settings", Items: []mockserver.Item{{"fleet_id": "f1", "color": "red"}}},
			{Resource: "settings", Items: []mockserver.Item{{"color": "white"}}},
		},
	})
}

func newFleets(transport dataservice.Transport) *dataservice.ParentResource[fleet, fleet, fleetChildren] {
	return dataservice.NewParentResource(&dataservice.ResourceBuilder[fleet, fleet]{
		Endpoint:  "/api/fleets",
		Transport: transport,
		ID:        func(f fleet) string { return f.ID },
	}, func(parent *dataservice.Resource[fleet, fleet], id string) fleetChildren {
		return fleetChildren{
			Vehicles: dataservice.NewChildResource(parent, id, &dataservice.ResourceBuilder[vehicle, vehicle]{
				Endpoint: "vehicles",
				ID:       func(v vehicle) string { return v.ID },
			}),
			Settings: dataservice.NewChildSingleton(parent, id, &dataservice.SingletonBuilder[fleetSettings, fleetSettings]{
				Endpoint: "settings",
			}),
		}
	})
}

func TestSingletonNetwork(t *testing.T) {
	backend := newFleetBackend()
	settings := dataservice.NewSingleton(&dataservice.SingletonBuilder[fleetSettings, fleetSettings]{
		Endpoint:  "/api/settings/",
		Transport: client.NewWithRouter(backend.Router()),
	})
	assert.Equal(t, "/api/settings", settings.Endpoint())

	s, err := settings.Get().Wait()
	require.NoError(t, err)
	assert.Equal(t, fleetSettings{"white"}, s)

	s, err = settings.Update(fleetSettings{"black"}).Wait()
	require.NoError(t, err)
	assert.Equal(t, fleetSettings{"black"}, s)
	assert.Equal(t, []mockserver.Item{{"color": "black"}}, backend.Items("settings"))
}

func TestSingletonMock(t *testing.T) {
	item := dataservice.NewMemoryItem(fleetSettings{"red"})
	settings := dataservice.NewSingleton(&dataservice.SingletonBuilder[fleetSettings, fleetSettings]{
		Endpoint: "/api/settings",
		UseMock:  true,
		Item:     item,
	})

	s, err := settings.Get().Wait()
	require.NoError(t, err)
	assert.Equal(t, fleetSettings{"red"}, s)

	_, err = settings.Update(fleetSettings{"blue"}).Wait()
	require.NoError(t, err)
	assert.Equal(t, fleetSettings{"blue"}, item.Get())

	assert.Panics(t, func() {
		dataservice.NewSingleton(&dataservice.SingletonBuilder[fleetSettings, fleetSettings]{UseMock: true})
	})
}

func TestChildResources(t *testing.T) {
	backend := newFleetBackend()
	fleets := newFleets(client.NewWithRouter(backend.Router()))

	list, err := fleets.List(nil).Wait()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	f1 := fleets.ChildContracts("f1")
	vehicles, err := f1.Vehicles.List(nil).Wait()
	require.NoError(t, err)
	assert.Equal(t, []vehicle{{"v1", "f1", "truck"}}, vehicles)

	created, err := f1.Vehicles.Create(vehicle{Name: "bus"}).Wait()
	require.NoError(t, err)
	assert.Equal(t, "f1", created.FleetID)
	assert.NotEmpty(t, created.ID)

	_, err = f1.Vehicles.Delete(created).Wait()
	require.NoError(t, err)
	assert.Len(t, backend.Items("fleet/vehicle"), 2)

	settings, err := f1.Settings.Get().Wait()
	require.NoError(t, err)
	assert.Equal(t, fleetSettings{"red"}, settings)

	f2 := fleets.ChildContracts("f2")
	_, err = f2.Settings.Get().Wait()
	require.Error(t, err)
	_, err = f2.Settings.Update(fleetSettings{"green"}).Wait()
	require.NoError(t, err)
	settings, err = f2.Settings.Get().Wait()
	require.NoError(t, err)
	assert.Equal(t, fleetSettings{"green"}, settings)
}

func TestChildResourceMock(t *testing.T) {
	stores := map[string]*dataservice.MemoryStore[vehicle]{
		"f1": dataservice.NewMemoryStore(func(v vehicle) string { return v.ID }, vehicle{"v1", "f1", "truck"}),
	}
	parent := dataservice.NewResource(&dataservice.ResourceBuilder[fleet, fleet]{
		Endpoint: "/api/fleets",
		ID:       func(f fleet) string { return f.ID },
	})
	vehicles := dataservice.NewChildResource(parent, "f1", &dataservice.ResourceBuilder[vehicle, vehicle]{
		Endpoint: "/vehicles/",
		ID:       func(v vehicle) string { return v.ID },
		UseMock:  true,
		Store:    stores["f1"],
	})
	assert.Equal(t, "/api/fleets/f1/vehicles/v1", vehicles.ItemPath("v1"))

	list, err := vehicles.List(nil).Wait()
	require.NoError(t, err)
	assert.Equal(t, []vehicle{{"v1", "f1", "truck"}}, list)

	assert.Panics(t, func() {
		dataservice.NewParentResource[fleet, fleet, fleetChildren](&dataservice.ResourceBuilder[fleet, fleet]{
			ID: func(f fleet) string { return f.ID },
		}, nil)
	})
}
