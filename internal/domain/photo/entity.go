package photo

import (
	"strings"
	"time"
)

// Photo is one uploaded image. Filename and DownloadToken are unique and
// never change after insert; only DownloadCount is updated.
type Photo struct {
	ID            int64     `gorm:"column:id;primaryKey" json:"id"`
	Filename      string    `gorm:"column:filename;size:255;not null;uniqueIndex" json:"filename"`
	OriginalName  string    `gorm:"column:original_name;size:255;not null" json:"original_name"`
	FilePath      string    `gorm:"column:file_path;size:512;not null" json:"-"` // backend location, not exposed
	FileSize      int64     `gorm:"column:file_size;not null" json:"file_size"`
	MimeType      string    `gorm:"column:mime_type;size:100;not null" json:"mime_type"`
	DownloadToken string    `gorm:"column:download_token;size:64;not null;uniqueIndex" json:"download_token"`
	DownloadCount int64     `gorm:"column:download_count;not null;default:0" json:"download_count"`
	UploadDate    time.Time `gorm:"column:upload_date;not null;autoCreateTime;index" json:"upload_date"`
}

func (Photo) TableName() string { return "photos" }

// View is a Photo plus the URLs a client needs to display it.
type View struct {
	Photo
	ImageURL  string `json:"imageUrl"`
	StaticURL string `json:"staticUrl"`
}

// Links builds public URLs for one server base URL.
type Links struct {
	APIBase    string // e.g. http://host:5050/api
	StaticBase string // e.g. http://host:5050/uploads
}

func NewLinks(baseURL string) Links {
	base := strings.TrimRight(baseURL, "/")
	return Links{APIBase: base + "/api", StaticBase: base + "/uploads"}
}

func (l Links) Image(filename string) string  { return l.APIBase + "/image/" + filename }
func (l Links) Static(filename string) string { return l.StaticBase + "/" + filename }

func (l Links) View(p *Photo) View {
	return View{Photo: *p, ImageURL: l.Image(p.Filename), StaticURL: l.Static(p.Filename)}
}
