// Package discovery maintains the live, ranked registry of provider
// entries. A discovery cycle scans credentials, pairs them with the
// model catalog, verifies the pairs under a bounded worker pool (or
// assumes them valid when probing is disabled), and stores the ranked
// result in a TTL-bound cache. Between cycles the router patches entry
// statuses in place as real requests reveal new facts.
package discovery
