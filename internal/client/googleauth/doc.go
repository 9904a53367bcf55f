// Package googleauth builds authenticated client options for the Google
// Drive and Sheets adapters.
package googleauth
