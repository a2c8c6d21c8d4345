// Package providers defines the backend client capability shared by
// the discovery engine and the router, the typed error taxonomy used
// to classify backend failures, and the wire-level helpers the
// per-vendor subpackages are built from.
//
// Each supported provider type lives in its own subpackage and
// implements BackendClient. The parent package owns the shared probe
// protocol (a two-step ping plus structured-output check) so that all
// vendors verify credentials the same way.
package providers
