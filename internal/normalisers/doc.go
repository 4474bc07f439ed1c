// Package normalisers provides implementations of the Normaliser interface.
// Each normaliser turns fetched HTML into the plain text that the annotation
// service and the lexical statistics run over.
package normalisers
