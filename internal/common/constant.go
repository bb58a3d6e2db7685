package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DateLayout is the calendar-date format used for entry dates on the wire
// and in storage.
const DateLayout = "2006-01-02"
