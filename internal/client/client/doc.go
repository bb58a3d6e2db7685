// Package client is the gRPC client of the remote entry store.
//
// GRPCClient implements store.Store, so the data-access facade can run on
// top of it unchanged. It keeps the session token obtained from Register or
// Login, attaches it to every call through interceptors, and maps gRPC
// status codes back onto the sentinel errors in internal/common:
//
//	AlreadyExists      -> common.ErrorUniqueViolation
//	FailedPrecondition -> common.ErrorForeignKeyViolation
//	NotFound           -> common.ErrorNotFound
//	InvalidArgument    -> common.ErrorInvalidArgument
//	PermissionDenied   -> common.ErrorForbidden
//	Unauthenticated    -> common.ErrorUnauthorized
//	Unavailable        -> ErrUnavailable
//
// Watch keeps the server stream open across transport failures, reopening
// it with exponential backoff until its context ends.
package client
