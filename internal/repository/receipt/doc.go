// Package receipt implements persistence for the install Receipt.
//
// The FileRepository stores and loads the receipt as JSON inside the content
// root so `setup-package status` can report what the last run installed.
package receipt
