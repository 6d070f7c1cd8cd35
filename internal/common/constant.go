package common

// SessionHeaderName is the request header carrying the session token.
const SessionHeaderName = "sessionid"
