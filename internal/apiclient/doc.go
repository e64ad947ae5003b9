// Package apiclient implements the HTTP request core for the merchant backend.
//
// Client builds requests (URL, ordered query, JSON body), attaches the bearer
// token from a TokenSource, classifies HTTP outcomes into structured Errors,
// and notifies a registered hook when the backend reports the session dead
// (401). Resource clients narrow successful payloads into their declared
// shapes via Payload.Decode.
package apiclient
