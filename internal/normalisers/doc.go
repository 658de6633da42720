// Package normalisers holds the Extractor implementations that turn fetched
// pages into essays. Each normaliser knows the layout of one site.
package normalisers
