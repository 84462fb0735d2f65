package model

import "strings"

// Folder is a taxonomy entry naming a folder path bookmarks can live under.
// Names are unique case-insensitively.
type Folder struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Order int    `json:"order"`
}

// Tag is a taxonomy entry for a user-visible tag. Names are unique
// case-insensitively.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Order int    `json:"order"`
}

// NewFolder creates a Folder with a generated UUID.
func NewFolder(name string, order int) Folder {
	return Folder{ID: GenerateUUID(), Name: name, Order: order}
}

// NewTag creates a Tag with a generated UUID.
func NewTag(name string, order int) Tag {
	return Tag{ID: GenerateUUID(), Name: name, Order: order}
}

// FindFolder looks up a folder by name, case-insensitively.
// Returns nil if not found.
func FindFolder(folders []Folder, name string) *Folder {
	for i := range folders {
		if strings.EqualFold(folders[i].Name, name) {
			return &folders[i]
		}
	}
	return nil
}

// FindTag looks up a tag by name, case-insensitively.
// Returns nil if not found.
func FindTag(tags []Tag, name string) *Tag {
	for i := range tags {
		if strings.EqualFold(tags[i].Name, name) {
			return &tags[i]
		}
	}
	return nil
}
