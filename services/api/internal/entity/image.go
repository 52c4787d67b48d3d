package entity

import "time"

type Image struct {
	ID         string    `json:"_id"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	Data       string    `json:"data"`
	Type       string    `json:"type"`
	CourseID   string    `json:"courseId"`
	UploadedAt time.Time `json:"uploadedAt"`
	UploadedBy string    `json:"uploadedBy"`
}

// ImageData is the image embedded into course reads.
type ImageData struct {
	ID       string `json:"_id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Data     string `json:"data"`
}

type ImageUpload struct {
	CourseRef  string
	DataURL    string
	Filename   string
	UploadedBy string
}

type ImageUploadResult struct {
	ImageID  string  `json:"imageId"`
	ImageURL string  `json:"imageUrl"`
	Course   *Course `json:"course"`
}
