package status

import (
	"time"

	"autotasking/pkg/daykey"
)

type Platform string

const (
	Reddit   Platform = "reddit"
	Facebook Platform = "facebook"
	YouTube  Platform = "youtube"
)

// tracker describes where a platform keeps its completion rows.
type tracker struct {
	table  string
	entity string
	// param is the request field carrying the entity id.
	param string
}

var trackers = map[Platform]tracker{
	Reddit:   {table: "reddit_task_status", entity: "destination_id", param: "destinationId"},
	Facebook: {table: "facebook_task_status", entity: "destination_id", param: "destinationId"},
	YouTube:  {table: "youtube_task_status", entity: "video_id", param: "videoId"},
}

type RedditTaskStatus struct {
	ID            string     `gorm:"column:id;primaryKey;type:varchar(32)"`
	InternID      string     `gorm:"column:intern_id;type:varchar(32);not null;uniqueIndex:ux_reddit_task_status,priority:1"`
	DestinationID string     `gorm:"column:destination_id;type:varchar(32);not null;uniqueIndex:ux_reddit_task_status,priority:2"`
	TaskDate      daykey.Key `gorm:"column:task_date;not null;uniqueIndex:ux_reddit_task_status,priority:3;index"`
	Completed     bool       `gorm:"column:completed;not null;default:false"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null"`
}

func (RedditTaskStatus) TableName() string { return "reddit_task_status" }

type FacebookTaskStatus struct {
	ID            string     `gorm:"column:id;primaryKey;type:varchar(32)"`
	InternID      string     `gorm:"column:intern_id;type:varchar(32);not null;uniqueIndex:ux_facebook_task_status,priority:1"`
	DestinationID string     `gorm:"column:destination_id;type:varchar(32);not null;uniqueIndex:ux_facebook_task_status,priority:2"`
	TaskDate      daykey.Key `gorm:"column:task_date;not null;uniqueIndex:ux_facebook_task_status,priority:3;index"`
	Completed     bool       `gorm:"column:completed;not null;default:false"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null"`
}

func (FacebookTaskStatus) TableName() string { return "facebook_task_status" }

type YoutubeTaskStatus struct {
	ID          string     `gorm:"column:id;primaryKey;type:varchar(32)"`
	InternID    string     `gorm:"column:intern_id;type:varchar(32);not null;uniqueIndex:ux_youtube_task_status,priority:1"`
	VideoID     string     `gorm:"column:video_id;type:varchar(32);not null;uniqueIndex:ux_youtube_task_status,priority:2"`
	TaskDate    daykey.Key `gorm:"column:task_date;not null;uniqueIndex:ux_youtube_task_status,priority:3;index"`
	Completed   bool       `gorm:"column:completed;not null;default:false"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
}

func (YoutubeTaskStatus) TableName() string { return "youtube_task_status" }

// Models lists the tables to migrate.
func Models() []any {
	return []any{&RedditTaskStatus{}, &FacebookTaskStatus{}, &YoutubeTaskStatus{}}
}

// Record is a completion row read back from any platform table.
type Record struct {
	ID          string     `json:"id"`
	InternID    string     `json:"intern_id"`
	EntityID    string     `json:"entity_id"`
	TaskDate    daykey.Key `json:"task_date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Item struct {
	EntityID  string
	Completed bool
}
