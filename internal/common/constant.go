package common

// AuthorizationHeaderName carries the bearer token on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header.
const BearerPrefix = "Bearer "

// DefaultArtist is stored when an upload names no artist.
const DefaultArtist = "Anonymous"
