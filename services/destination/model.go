package destination

import (
	"strings"
	"time"
)

type Platform string

const (
	Reddit   Platform = "Reddit"
	Facebook Platform = "Facebook"
	YouTube  Platform = "YouTube"
	Other    Platform = "Other"
)

// ParsePlatform accepts the four known platforms, ignoring case.
func ParsePlatform(s string) (Platform, bool) {
	for _, p := range []Platform{Reddit, Facebook, YouTube, Other} {
		if strings.EqualFold(string(p), s) {
			return p, true
		}
	}
	return "", false
}

type Destination struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Platform  Platform  `gorm:"column:platform;type:varchar(20);not null;index" json:"platform"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	URL       *string   `gorm:"column:url;type:text" json:"url"`
	Prompt    *string   `gorm:"column:prompt;type:text" json:"prompt"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Destination) TableName() string {
	return "posting_destinations"
}
