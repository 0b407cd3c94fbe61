// Package connectortest provides doubles for the connector package.
//
// Server is an in-process fake of the remote API built on gin. It verifies
// WSSE signatures, stores collections in memory, understands the LINK and
// patch verbs and records every request as sent:
//
//	srv := connectortest.NewServer(t, model.Registry())
//	srv.Seed("cases", 42, map[string]any{"title": "T"})
//	client, _ := connector.New(srv.Config(), model.Registry())
//
// Recorder implements connector.API directly, for code that only needs the
// connector's contract:
//
//	rec := connectortest.NewRecorder(model.Registry())
//	provider.SetFactory(rec.Factory())
package connectortest
