// Package resources provides the typed per-resource clients of the merchant
// backend: orders, invoices, products, suppliers, team and tax profile.
//
// Each client is a thin wrapper over the request core with fixed paths and
// declared response shapes. Responses are narrowed at this boundary; a body
// that does not match the declared shape surfaces as a malformed-response
// error from apiclient.
package resources
