// Package entity defines the contract between domain records and the REST
// mapping layer.
//
// An entity lists its fields explicitly. Each Field binds a wire name to a
// pointer on the instance and says whether the value is sent on create and
// update (Sendable) or only filled from server responses (ReadOnly):
//
//	func (c *Case) Fields() entity.Fields {
//	    return entity.Fields{
//	        entity.ReadOnly("id", &c.ID),
//	        entity.Sendable("title", &c.Title),
//	    }
//	}
//
// Encode builds a request body from the sendable fields. Hydrate, Decode and
// DecodeList assign response JSON onto instances. JSON keys are matched to
// field names after lowering their first letter on both sides; unknown keys
// are ignored.
package entity
