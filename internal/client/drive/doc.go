// Package drive lists and downloads bundles stored in a Google Drive folder.
package drive
