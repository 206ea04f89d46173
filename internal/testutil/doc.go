// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when constructing transcripts and fake backends.
// They are not intended for production usage.
package testutil
