package notes

import "time"

// Category groups journal entries.
type Category string

const (
	CategoryJobSearch     Category = "job-search"
	CategoryInterviewPrep Category = "interview-prep"
	CategoryNetworking    Category = "networking"
	CategorySkills        Category = "skills"
	CategoryReflection    Category = "reflection"
	CategoryOther         Category = "other"
)

var Categories = []Category{
	CategoryJobSearch,
	CategoryInterviewPrep,
	CategoryNetworking,
	CategorySkills,
	CategoryReflection,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Note struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	JobID     *int64    `json:"jobId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Patch struct {
	Title    *string
	Content  *string
	Category *Category
}
