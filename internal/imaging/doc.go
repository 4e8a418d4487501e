// Package imaging resolves image references into self-contained data URIs
// for the inference backend.
//
// An image reference is one of:
//   - a data URI ("data:image/png;base64,..."), passed through unchanged
//   - an http or https URL, fetched with a single GET
//   - a filesystem path, read relative to the process working directory
//
// # MIME Type Resolution
//
// The MIME type of the encoded image is chosen by an ordered list of
// strategies; the first one that answers wins:
//   - URLs: Content-Type header, then the URL path extension
//   - Local files: the file extension
//
// Only image/png, image/jpeg, image/gif and image/webp are produced. When no
// strategy answers, image/jpeg is used.
//
// # Placeholder Mask
//
// The backend's calling convention always carries a mask next to the image.
// PlaceholderMask supplies a fully transparent 10x10 PNG for tasks that do
// not use one.
//
// # Error Handling
//
// Resolve returns *FileReadError for unreadable local files and *FetchError
// for failed downloads, including non-2xx responses. No partial state is kept.
package imaging
