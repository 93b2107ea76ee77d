package models

// Category is a tag that can be attached to many posts.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TableName returns the name of the database table
// associated with the Category model.
func (c Category) TableName() string {
	return "categories"
}

// DefaultCategories is the vocabulary seeded into an empty catalogue.
var DefaultCategories = []string{"IT", "sport", "politics", "business", "science", "entertainment"}
