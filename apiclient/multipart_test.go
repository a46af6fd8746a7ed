package apiclient

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

func TestMultipartBody_Encode(t *testing.T) {
	body := &MultipartBody{
		Fields: map[string]string{"kind": "fastq", "sample": "ecoli-01"},
		Files: []FileField{{
			Name:     "file",
			FileName: "reads.fastq",
			Data:     []byte("@read1\nACGT\n"),
		}},
	}

	data, contentType, err := body.encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data; boundary=") {
		t.Errorf("content type = %q", contentType)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	reader := multipart.NewReader(bytes.NewReader(data), params["boundary"])

	found := map[string]string{}
	var fileName, fileContent string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		content, _ := io.ReadAll(part)
		if part.FileName() != "" {
			fileName = part.FileName()
			fileContent = string(content)
		} else {
			found[part.FormName()] = string(content)
		}
	}

	if found["kind"] != "fastq" || found["sample"] != "ecoli-01" {
		t.Errorf("fields = %v", found)
	}
	if fileName != "reads.fastq" {
		t.Errorf("file name = %q", fileName)
	}
	if fileContent != "@read1\nACGT\n" {
		t.Errorf("file content = %q", fileContent)
	}
}

func TestMultipartBody_CustomPartContentType(t *testing.T) {
	body := &MultipartBody{
		Files: []FileField{{
			Name:        "audio",
			FileName:    "run.wav",
			ContentType: "audio/wav",
			Data:        []byte{0x52, 0x49, 0x46, 0x46},
		}},
	}

	data, contentType, err := body.encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, params, _ := mime.ParseMediaType(contentType)
	reader := multipart.NewReader(bytes.NewReader(data), params["boundary"])
	part, err := reader.NextPart()
	if err != nil {
		t.Fatalf("next part: %v", err)
	}
	if got := part.Header.Get("Content-Type"); got != "audio/wav" {
		t.Errorf("part content type = %q", got)
	}
}

func TestMultipartBody_ReaderFile(t *testing.T) {
	body := &MultipartBody{
		Files: []FileField{{
			Name:     "file",
			FileName: "big.bin",
			Reader:   strings.NewReader("streamed content"),
		}},
	}

	data, contentType, err := body.encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, params, _ := mime.ParseMediaType(contentType)
	reader := multipart.NewReader(bytes.NewReader(data), params["boundary"])
	part, err := reader.NextPart()
	if err != nil {
		t.Fatalf("next part: %v", err)
	}
	content, _ := io.ReadAll(part)
	if string(content) != "streamed content" {
		t.Errorf("content = %q", content)
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := escapeQuotes(`a"b\c`); got != `a\"b\\c` {
		t.Errorf("escapeQuotes = %q", got)
	}
}
