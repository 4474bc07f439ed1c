// Package googlenl provides an Annotator backed by the Google Cloud Natural
// Language API. One annotateText call per document extracts entities,
// per-entity sentiment and document sentiment together.
//
// Credentials are resolved in order: an explicit service account file, an
// API key, then application default credentials.
package googlenl
