// Package npm is a client for the npm registry and the two CDNs that serve
// npm packages file by file: unpkg and jsDelivr.
//
// The registry answers package metadata ("packuments") and search; the
// CDNs answer per-version file listings and serve the files themselves.
package npm
