/*
Package dataservice provides uniform access to collections of domain objects

A Behavior offers the five operations GetList, GetItem, Create, Update and Delete.
Each operation either talks to a REST endpoint through a Transport, or, when the
operation config sets UseMock, calls the mock accessor functions supplied with
the config against a data set owned by the caller. Both paths return a
*promise.Future, so calling code does not care which path was taken.

Data is converted between its server shape S, the representation used on the
wire and in the mock data set, and its caller shape C with a Transform. Reads
apply FromServer to whatever the server or the mock data set returned. Writes
apply ToServer to the domain object before sending or storing it. On the mock
path, Create and Update resolve with the caller's original domain object, not
with a transformed echo.

A Resource binds a Behavior to one REST collection and optionally to a
MemoryStore, which is what most applications want:

	widgets := dataservice.NewResource(&dataservice.ResourceBuilder[Widget, Widget]{
		Endpoint:  "/api/widgets",
		Transport: client.NewWithURL("https://example.com"),
		ID:        func(w Widget) string { return w.ID },
	})
	list, err := widgets.List(nil).Wait()
*/
package dataservice
