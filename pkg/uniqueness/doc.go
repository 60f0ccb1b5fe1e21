// Package uniqueness answers "is this value already taken" for form fields.
//
// A Store looks values up in memory, Postgres, Redis or MongoDB. Middleware
// exposes a store at the page location in the wire format formvalidator
// expects, and StoreConfirmer plugs a store directly into a Form:
//
//	store := uniqueness.NewMemory("username", "email")
//	r.Use(uniqueness.Middleware(store))
//
//	form, _ := formvalidator.NewForm(doc, "signup",
//		formvalidator.WithConfirmer(uniqueness.NewStoreConfirmer(store)))
package uniqueness
