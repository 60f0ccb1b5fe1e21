// Package formvalidator validates the fields of an HTML form held on the server
// and reports every resulting DOM change as id-addressed patches.
//
// A Form wraps one form element of a dom.Document. Fields are registered with
// local rules (required, length bounds and up to two patterns) and an optional
// remote check that asks a Confirmer whether the value is already in use.
// Remote checks are debounced per field and carry a sequence number, so only the
// answer to the latest value is ever applied. Confirmation fields repeat the
// value of a primary field and revalidate whenever the primary does. An
// Aggregator keeps the submit control disabled until all attached fields are
// valid.
//
// Events are delivered with Form.Input, Form.Change and Form.Click. They run one
// at a time together with confirmation results:
//
//	form, err := formvalidator.NewForm(doc, "signup", formvalidator.WithConfirmer(c))
//	if err != nil {
//		return err
//	}
//	defer form.Close()
//
//	email, err := form.Field("email", formvalidator.Subject{Name: "email address"},
//		formvalidator.Rules{Required: true, MaxLength: formvalidator.Int(254)},
//		formvalidator.WithRemoteCheck(formvalidator.RemoteCheck{
//			Mode:          formvalidator.ModeExists,
//			ExistsMessage: "This email address is already registered.",
//		}),
//	)
//	...
//	patches, err := form.Input(ctx, "email", "jane@example.com")
//
// Patches produced by confirmation results are only published to subscribers.
// Form.Subscribe returns the subscriber together with a snapshot of the form
// taken under the same lock, so a new stream starts from the current state.
//
// Forms can also be declared in YAML with LoadDefinition and Definition.Build,
// and the same definition re-validates submitted values with
// Definition.ValidateValues.
package formvalidator
