package task

import (
	"time"

	"autotasking/pkg/daykey"

	"gorm.io/datatypes"
)

type Task struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Title     string    `gorm:"column:title;type:text;not null" json:"title"`
	InternID  string    `gorm:"column:intern_id;type:varchar(32);not null;index:idx_tasks_intern_created,priority:1" json:"intern_id"`
	BatchID   *string   `gorm:"column:batch_id;type:varchar(32);index" json:"batch_id"`
	Position  int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_tasks_intern_created,priority:2" json:"created_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskBatch records one generation run. The unique (intern_id, task_date)
// index allows a single generated batch per intern per day.
type TaskBatch struct {
	ID           string         `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	InternID     string         `gorm:"column:intern_id;type:varchar(32);not null;uniqueIndex:ux_task_batches_intern_day,priority:1" json:"intern_id"`
	TaskDate     daykey.Key     `gorm:"column:task_date;not null;uniqueIndex:ux_task_batches_intern_day,priority:2" json:"task_date"`
	Model        string         `gorm:"column:model;type:varchar(100)" json:"model"`
	Destinations datatypes.JSON `gorm:"column:destinations" json:"destinations"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null" json:"created_at"`
}

func (TaskBatch) TableName() string {
	return "task_batches"
}
