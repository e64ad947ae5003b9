// Package session holds the authenticated identity of the running application
// and its persistence.
//
// Provides the Session model, the Store contract, and two backends: FileStore
// (JSON on disk, atomic writes) and RedisStore (service deployments). Both
// tolerate the legacy bare-token format and upgrade it on load. A corrupt or
// missing store degrades to "logged out", never to a hard failure.
package session
