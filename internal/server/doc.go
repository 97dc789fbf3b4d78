// Package server implements the HTTP upload surface.
//
// # Routes
//
//   - GET /: upload form
//   - POST /: accept an image in the multipart field "file", extract its
//     text, segment it and respond with the rendered result page
//   - GET /uploads/{filename}: serve a stored upload or segment crop
//
// # Responses
//
// Upload failures are reported as 200 text/plain bodies:
//
//	No file part                      the request has no "file" field
//	No selected file                  the field has an empty filename
//	File <path> was not saved properly
//	An error occurred: <message>      extraction, segmentation or rendering failed
//
// Uploads are stored as <upload dir>/<base name of the client filename>. A
// second upload with the same name replaces the first; concurrent uploads
// with the same name race.
package server
