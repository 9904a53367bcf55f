// Package bootstrap wires settings, remote clients and the interactive prompt
// into the resolve and install flow run by the setup-package CLI.
package bootstrap
