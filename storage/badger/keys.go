package badger

// Key prefix for record-set documents
const recordSetPrefix = "recset"

// makeRecordSetKey generates the key holding a whole collection document.
func makeRecordSetKey(name string) []byte {
	return []byte(recordSetPrefix + ":" + name)
}
