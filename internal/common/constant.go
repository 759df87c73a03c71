package common

// AuthorizationHeaderName carries the bearer access token on requests to the
// file-serving API.
const AuthorizationHeaderName = "Authorization"

// EnvPrefix prefixes every environment variable read by the client config.
const EnvPrefix = "CLUBATTACH_"
