package internal

import (
	"encoding/json"
	"errors"
	"strings"
)

// Submission represents an incoming testimonial submitted through the
// public API key endpoint
type Submission struct {
	ProductID   string   `json:"product_id,omitempty"`
	ProductName string   `json:"product_name,omitempty"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Rating      int      `json:"rating,omitempty"`
	AuthorName  string   `json:"author_name,omitempty"`
	YoutubeURL  string   `json:"youtube_url,omitempty"`
	ImageURLs   []string `json:"image_urls,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Validate validates Submission input
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return errors.New("title is required")
	}
	if len(s.Title) > 255 {
		return errors.New("title must be 1-255 characters")
	}
	if strings.TrimSpace(s.Content) == "" {
		return errors.New("content is required")
	}
	if len(s.Content) > 10000 {
		return errors.New("content must be 1-10000 characters")
	}
	if s.Rating < 0 || s.Rating > 5 {
		return errors.New("rating must be 0-5")
	}
	if len(s.ProductID) > 100 {
		return errors.New("product_id must be 0-100 characters")
	}
	if len(s.ProductName) > 255 {
		return errors.New("product_name must be 0-255 characters")
	}
	if len(s.AuthorName) > 100 {
		return errors.New("author_name must be 0-100 characters")
	}
	if s.YoutubeURL != "" && !strings.HasPrefix(s.YoutubeURL, "http://") && !strings.HasPrefix(s.YoutubeURL, "https://") {
		return errors.New("youtube_url must be an http(s) URL")
	}
	if len(s.ImageURLs) > 10 {
		return errors.New("image_urls must contain at most 10 entries")
	}
	for _, u := range s.ImageURLs {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return errors.New("image_urls entries must be http(s) URLs")
		}
	}
	if len(s.Category) > 100 {
		return errors.New("category must be 0-100 characters")
	}
	if len(s.Tags) > 20 {
		return errors.New("tags must contain at most 20 entries")
	}
	for _, t := range s.Tags {
		if strings.TrimSpace(t) == "" {
			return errors.New("tags entries must not be empty")
		}
		if len(t) > 100 {
			return errors.New("tags entries must be 1-100 characters")
		}
	}
	return nil
}

// ParseSubmission parses JSON into Submission
func ParseSubmission(data []byte) (*Submission, error) {
	var s Submission
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
