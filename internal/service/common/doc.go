// Package common holds helpers shared by several services.
//
// It detects the current system actor (hostname/username) for the install
// receipt and bounds remote calls with the configured timeout.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
