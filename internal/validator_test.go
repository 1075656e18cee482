package internal

import (
	"strings"
	"testing"
)

func validSubmission() *Submission {
	return &Submission{
		Title:   "Great product",
		Content: "Saved us hours every week",
		Rating:  5,
	}
}

func TestSubmission_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Submission)
		wantErr bool
	}{
		{"valid minimal", func(s *Submission) {}, false},
		{"missing title", func(s *Submission) { s.Title = "" }, true},
		{"whitespace title", func(s *Submission) { s.Title = "   " }, true},
		{"title too long", func(s *Submission) { s.Title = strings.Repeat("a", 256) }, true},
		{"missing content", func(s *Submission) { s.Content = "" }, true},
		{"content too long", func(s *Submission) { s.Content = strings.Repeat("a", 10001) }, true},
		{"rating too high", func(s *Submission) { s.Rating = 6 }, true},
		{"rating negative", func(s *Submission) { s.Rating = -1 }, true},
		{"rating zero", func(s *Submission) { s.Rating = 0 }, false},
		{"bad youtube url", func(s *Submission) { s.YoutubeURL = "javascript:alert(1)" }, true},
		{"good youtube url", func(s *Submission) { s.YoutubeURL = "https://youtube.com/watch?v=x" }, false},
		{"bad image url", func(s *Submission) { s.ImageURLs = []string{"ftp://example.com/a.png"} }, true},
		{"too many images", func(s *Submission) {
			s.ImageURLs = make([]string, 11)
			for i := range s.ImageURLs {
				s.ImageURLs[i] = "https://example.com/a.png"
			}
		}, true},
		{"empty tag", func(s *Submission) { s.Tags = []string{" "} }, true},
		{"with taxonomy", func(s *Submission) { s.Category = "SaaS"; s.Tags = []string{"fast"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			tt.modify(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseSubmission(t *testing.T) {
	data := []byte(`{"title":"Great","content":"Works well","rating":4,"tags":["fast","cheap"]}`)

	s, err := ParseSubmission(data)
	if err != nil {
		t.Fatalf("ParseSubmission() error = %v, want nil", err)
	}
	if s.Title != "Great" || s.Rating != 4 || len(s.Tags) != 2 {
		t.Errorf("ParseSubmission() = %+v, unexpected fields", s)
	}

	if _, err := ParseSubmission([]byte(`not json`)); err == nil {
		t.Error("ParseSubmission() invalid JSON error = nil, want error")
	}
	if _, err := ParseSubmission([]byte(`{"content":"no title"}`)); err == nil {
		t.Error("ParseSubmission() missing title error = nil, want error")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SaaS Tools", "saas-tools"},
		{"  Fast   Delivery  ", "fast-delivery"},
		{"snake_case_name", "snake-case-name"},
		{"Hello, World!", "hello-world"},
		{"--already-sluggy--", "already-sluggy"},
		{"ALLCAPS123", "allcaps123"},
		{"Café", "cafe"},
		{"Crème Brûlée", "creme-brulee"},
		{"Señor García", "senor-garcia"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
