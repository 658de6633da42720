// Package file provides the TOML-backed ConfigStore.
//
// The file is read into flat dot-notation keys ("scrape.base_url") and
// written back as nested tables, so hand-edited files and files written by
// "essaycorpus config set" look the same.
package file
