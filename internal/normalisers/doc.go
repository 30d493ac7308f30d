// Package normalisers provides the source normalisers. Each one turns a
// single kind of study material (PDF, lecture transcript, raw text) into
// domain.NormalizedDocument records ready for chunking.
package normalisers
