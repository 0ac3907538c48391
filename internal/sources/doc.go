// Package sources contains the clients for the two upstream APIs the
// synchronizer reads from: the user directory and the credit card generator.
//
// Both clients absorb upstream failures. A network error, a non-200 status or
// a payload of the wrong shape is logged and reported to the caller as an
// empty result, never as an error.
package sources
