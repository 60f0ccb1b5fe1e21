// Package async runs a function in its own goroutine and hands back a Future
// for its result.
//
// Confirmation requests use it so a confirmer that ignores its context cannot
// hold a field past the request timeout:
//
//	ctx, cancel := context.WithTimeout(context.Background(), timeout)
//	defer cancel()
//
//	res, err := async.Async(ctx, value, confirm).AwaitContext(ctx)
package async
