// Package connector maps entities onto the remote REST API.
//
// A Client signs every request with a fresh WSSE token, resolves entity
// kinds to collection paths through a registry.Registry, and hydrates
// responses back into entities:
//
//	client, err := connector.New(cfg, model.Registry())
//	c := &model.Case{Title: "Intake"}
//	if _, err := client.WriteObject(ctx, c); err != nil { ... } // POST cases, c.ID assigned
//	docs, err := connector.GetLinkedEntities[model.Document](ctx, client, c)
//
// Callers depend on the API interface. Provider keeps one lazily built
// instance per process and lets tests swap the factory;
// connectortest provides a fake server and a recording double.
package connector
