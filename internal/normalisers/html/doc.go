// Package html provides the essay Extractor for the essay site's HTML pages.
// It flattens the page's essay table into canonical text, pulls out the
// publication date and the trailing attribution, and discovers essay links
// on the index page.
package html
