// Package integration holds end-to-end tests that drive the resolve and install
// flow through the Google adapters against local fake APIs.
package integration
