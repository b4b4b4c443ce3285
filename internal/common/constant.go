package common

// AccessTokenFieldName is the request field (JSON body, query string or gRPC
// metadata key) that carries the access token.
const AccessTokenFieldName = "access_token"
