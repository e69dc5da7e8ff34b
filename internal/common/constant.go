package common

// SessionCookieName is the cookie that carries the signed session token
// between the browser/CLI and the API server.
const SessionCookieName = "token"
