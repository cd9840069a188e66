package entity

import "fmt"

type UploadedFile struct {
	Name    string
	Content []byte
}

// IngestError rejects a whole uploaded file.
type IngestError struct {
	Class    ErrorClass
	FileName string
	Detail   string
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("%s: %s | %s", e.Class, e.FileName, e.Detail)
}
