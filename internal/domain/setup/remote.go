package setup

// Row is one record of the remote tabular source keyed by column header.
// Values are strings or numbers as returned by the source.
type Row map[string]any

// Entry is a file listed in the remote file store.
type Entry struct {
	// ID is the file store identifier used for downloads.
	ID string
	// Name is the file name as shown in the folder.
	Name string
	// Size is the file size in bytes, zero when unknown.
	Size int64
}
