// Package exportimg provides HTML-to-image engine adapters for go-sheetsnap.
//
// WKHTMLToImageEngine shells out to the wkhtmltoimage executable and is the
// default engine. ChromiumEngine drives a shared headless Chromium instance
// and captures a full-page screenshot. Both consume the sanitized markup file
// produced by the export pipeline and write the image to the requested path.
package exportimg
