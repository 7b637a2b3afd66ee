// Package catalog implements the book and review repositories on top of a
// storage.Collection. Repositories hold no state of their own; every call
// goes to the underlying collection.
package catalog
