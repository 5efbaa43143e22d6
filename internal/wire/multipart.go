package wire

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FormField is one ordered (name, value) pair of a multipart body.
type FormField struct {
	Name  string
	Value string
}

// FilePart describes the single file block of an upload body.
type FilePart struct {
	FieldName string
	Path      string
	MIMEType  string
}

// EncodeMultipart builds a multipart/form-data body: one block per field,
// then one file block with a filename attribute and a Content-Type header,
// terminated by the closing boundary. The exact byte layout is part of the
// wire contract, so the body is written by hand rather than through
// mime/multipart, whose header ordering and terminators differ.
//
// Reading the file is the only failure mode; the error is returned as-is
// and the encoder never retries.
func EncodeMultipart(boundary string, fields []FormField, file FilePart) ([]byte, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("wire: read upload %s: %w", file.Path, err)
	}

	var buf bytes.Buffer
	for _, f := range fields {
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Disposition: form-data; name=%q\r\n", f.Name)
		buf.WriteString("\r\n")
		buf.WriteString(f.Value)
		buf.WriteString("\r\n")
	}

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Disposition: form-data; name=%q; filename=%q\r\n",
		file.FieldName, filepath.Base(file.Path))
	fmt.Fprintf(&buf, "Content-Type: %s\r\n", file.MIMEType)
	buf.WriteString("\r\n")
	buf.Write(data)
	fmt.Fprintf(&buf, "\r\n--%s--", boundary)

	return buf.Bytes(), nil
}

// Boundary returns a random multipart boundary.
func Boundary() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return "botwire" + hex.EncodeToString(b[:])
}

// mimeByExtension is the fixed lookup table for upload helpers. Anything
// not listed falls back to text/plain, which is known to mislabel some
// uploads; the fallback is kept deliberately so callers can rely on it.
var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
}

// MIMEForPath infers the MIME type of a local file from its extension.
func MIMEForPath(path string) string {
	if typ, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return typ
	}
	return "text/plain"
}
