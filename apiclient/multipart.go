package apiclient

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
)

// MultipartBody is a multipart/form-data request body. Pass it as the
// Body field of a Request; the content type (with boundary) is set
// automatically.
type MultipartBody struct {
	// Fields are simple key-value form fields.
	Fields map[string]string
	// Files are file upload parts.
	Files []FileField
}

// FileField is one file part of a multipart request.
type FileField struct {
	// Name is the form field name (e.g. "file").
	Name string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType is the part MIME type. Empty means
	// application/octet-stream.
	ContentType string
	// Data is the file content. Used when Reader is nil.
	Data []byte
	// Reader supplies the content for large files.
	Reader io.Reader
}

// encode builds the multipart payload and its content-type header.
func (m *MultipartBody) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.Files {
		part, err := createFilePart(w, f)
		if err != nil {
			return nil, "", err
		}
		if f.Reader != nil {
			if _, err := io.Copy(part, f.Reader); err != nil {
				return nil, "", err
			}
		} else if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func createFilePart(w *multipart.Writer, f FileField) (io.Writer, error) {
	if f.ContentType == "" {
		return w.CreateFormFile(f.Name, f.FileName)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		`form-data; name="`+escapeQuotes(f.Name)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
	header.Set("Content-Type", f.ContentType)
	return w.CreatePart(header)
}

// escapeQuotes escapes quote and backslash in header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
