// Package auth owns the session lifecycle.
//
// Manager is the single writer of session state: it initializes from the
// store at startup, performs login/logout/refresh against the backend, and
// reacts to terminal auth failures (401, expiry) by clearing state and
// steering the front end to the sign-in route. Guard implements the
// route-guard check the view layer runs before rendering protected views.
package auth
