package video

import "time"

type Video struct {
	ID            string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	DestinationID string    `gorm:"column:destination_id;type:varchar(32);not null;index" json:"destination_id"`
	Title         string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description   string    `gorm:"column:description;type:text;not null" json:"description"`
	FilePath      string    `gorm:"column:file_path;type:text;not null" json:"file_path"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (Video) TableName() string {
	return "youtube_videos"
}

// Listing is a video row with its download link. DownloadURL is nil when
// the link could not be signed.
type Listing struct {
	*Video
	DownloadURL *string `json:"download_url"`
}
