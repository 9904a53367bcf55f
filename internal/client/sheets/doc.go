// Package sheets reads version rows from a Google Sheets worksheet.
package sheets
