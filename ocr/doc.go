// Package ocr defines the contract between the page scanner and an OCR
// provider. Pages arrive as in-memory images; engines receive them encoded
// as PNG together with language and resolution hints.
package ocr
