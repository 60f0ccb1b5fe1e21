// Package validator holds the rule primitives behind field validation.
//
// A Rule couples a Check with the ValidationError reported when the check
// fails. First stops at the first failure, which is how live field validation
// picks the single message shown next to an input; Apply collects every
// failure.
//
//	err := validator.First(
//	    validator.Required("username", v),
//	    validator.MaxLen("username", v, 30),
//	    validator.Matches("username", v, usernameRe),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//	    _ = errs[0].Code // "required", "max_length", ...
//	}
package validator
